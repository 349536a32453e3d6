package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/constants"
	"github.com/teampulse/project-management-api/internal/database"
	"github.com/teampulse/project-management-api/internal/models"
	"github.com/teampulse/project-management-api/internal/repository"
	"github.com/teampulse/project-management-api/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Department{},
		&models.Worker{},
		&models.Project{},
		&models.Task{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	userRepo := repository.NewUserRepository(suite.db)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo)
	suite.handler = NewTaskHandler(taskService, zap.NewNop())

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) createTestUser(email string, superuser bool) *models.User {
	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: "hashedpassword",
		IsSuperuser:  superuser,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestProject(title string, ownerID *uint64, developers ...models.User) *models.Project {
	project := &models.Project{
		Title:      title,
		Priority:   models.PriorityMedium,
		Status:     models.StatusPending,
		Deadline:   time.Now().Add(24 * time.Hour),
		OwnerID:    ownerID,
		Developers: developers,
	}
	suite.db.Create(project)
	return project
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, projectID uint64, assigneeID *uint64) *models.Task {
	task := &models.Task{
		Title:      title,
		Priority:   models.PriorityMedium,
		Status:     models.StatusPending,
		Deadline:   time.Now().Add(24 * time.Hour),
		ProjectID:  projectID,
		AssigneeID: assigneeID,
	}
	suite.db.Create(task)
	return task
}

func (suite *TaskHandlerTestSuite) createCallerContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyCaller, auth.Caller{
		UserID:      user.ID,
		Email:       user.Email,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
	})

	return c, w
}

func (suite *TaskHandlerTestSuite) setIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

// TestCreateTask_StampsCreator verifies the caller is recorded as the
// creator
func (suite *TaskHandlerTestSuite) TestCreateTask_StampsCreator() {
	alice := suite.createTestUser("alice@example.com", false)
	bob := suite.createTestUser("bob@example.com", false)
	project := suite.createTestProject("P", &alice.ID)

	// A created_by_id in the payload must be ignored
	body := fmt.Sprintf(`{"title":"T","deadline":"%s","project_id":%d,"created_by_id":%d}`,
		time.Now().Add(24*time.Hour).Format(time.RFC3339), project.ID, bob.ID)

	c, w := suite.createCallerContext("POST", "/api/tasks", []byte(body), alice)
	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), float64(alice.ID), response["created_by_id"])
}

// TestCreateTask_UnknownProject verifies tasks cannot dangle
func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownProject() {
	alice := suite.createTestUser("alice@example.com", false)

	body := fmt.Sprintf(`{"title":"T","deadline":"%s","project_id":9999}`,
		time.Now().Add(24*time.Hour).Format(time.RFC3339))

	c, w := suite.createCallerContext("POST", "/api/tasks", []byte(body), alice)
	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateTask_UnknownAssignee verifies the assignee must exist
func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownAssignee() {
	alice := suite.createTestUser("alice@example.com", false)
	project := suite.createTestProject("P", &alice.ID)

	body := fmt.Sprintf(`{"title":"T","deadline":"%s","project_id":%d,"assignee_id":9999}`,
		time.Now().Add(24*time.Hour).Format(time.RFC3339), project.ID)

	c, w := suite.createCallerContext("POST", "/api/tasks", []byte(body), alice)
	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestListTasks_NoFallbackForEmptyScope verifies a user with no visible
// tasks gets an empty list, never the full table
func (suite *TaskHandlerTestSuite) TestListTasks_NoFallbackForEmptyScope() {
	alice := suite.createTestUser("alice@example.com", false)
	outsider := suite.createTestUser("outsider@example.com", false)
	project := suite.createTestProject("P", &alice.ID)
	suite.createTestTask("T1", project.ID, &alice.ID)
	suite.createTestTask("T2", project.ID, nil)

	c, w := suite.createCallerContext("GET", "/api/tasks", nil, outsider)
	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response["tasks"], 0)
}

// TestListTasks_AssigneeSeesTask verifies assignment grants visibility
// even without project membership
func (suite *TaskHandlerTestSuite) TestListTasks_AssigneeSeesTask() {
	alice := suite.createTestUser("alice@example.com", false)
	bob := suite.createTestUser("bob@example.com", false)
	project := suite.createTestProject("P", &alice.ID)
	mine := suite.createTestTask("Mine", project.ID, &bob.ID)
	suite.createTestTask("Not mine", project.ID, &alice.ID)

	c, w := suite.createCallerContext("GET", "/api/tasks", nil, bob)
	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	assert.Equal(suite.T(), mine.Title, tasks[0].(map[string]interface{})["title"])
}

// TestListTasks_ProjectMemberSeesAllProjectTasks verifies project
// visibility pulls in every task of the project
func (suite *TaskHandlerTestSuite) TestListTasks_ProjectMemberSeesAllProjectTasks() {
	alice := suite.createTestUser("alice@example.com", false)
	bob := suite.createTestUser("bob@example.com", false)
	project := suite.createTestProject("P", &alice.ID, *bob)
	suite.createTestTask("T1", project.ID, &alice.ID)
	suite.createTestTask("T2", project.ID, nil)

	c, w := suite.createCallerContext("GET", "/api/tasks", nil, bob)
	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), response["tasks"], 2)
}

// TestListTasks_UnionOfAssignmentAndProjects runs the full visibility
// scenario: caller owns P1, develops on P2 and has no relation to P3
func (suite *TaskHandlerTestSuite) TestListTasks_UnionOfAssignmentAndProjects() {
	alice := suite.createTestUser("alice@example.com", false)
	bob := suite.createTestUser("bob@example.com", false)

	p1 := suite.createTestProject("P1", &alice.ID)
	p2 := suite.createTestProject("P2", &bob.ID, *alice)
	p3 := suite.createTestProject("P3", &bob.ID)

	suite.createTestTask("P1 task", p1.ID, nil)
	suite.createTestTask("P2 task", p2.ID, &bob.ID)
	suite.createTestTask("P3 assigned to me", p3.ID, &alice.ID)
	suite.createTestTask("P3 hidden", p3.ID, &bob.ID)

	c, w := suite.createCallerContext("GET", "/api/tasks", nil, alice)
	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	titles := map[string]bool{}
	for _, raw := range response["tasks"].([]interface{}) {
		titles[raw.(map[string]interface{})["title"].(string)] = true
	}
	assert.Len(suite.T(), titles, 3)
	assert.True(suite.T(), titles["P1 task"])
	assert.True(suite.T(), titles["P2 task"])
	assert.True(suite.T(), titles["P3 assigned to me"])
	assert.False(suite.T(), titles["P3 hidden"])
}

// TestGetTask_OutsideScope verifies invisible tasks read as 404
func (suite *TaskHandlerTestSuite) TestGetTask_OutsideScope() {
	alice := suite.createTestUser("alice@example.com", false)
	outsider := suite.createTestUser("outsider@example.com", false)
	project := suite.createTestProject("P", &alice.ID)
	task := suite.createTestTask("Hidden", project.ID, &alice.ID)

	c, w := suite.createCallerContext("GET", "/api/tasks/1", nil, outsider)
	suite.setIDParam(c, task.ID)
	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateTask_NullAssigneeUnassigns verifies assignee_id: null clears
// the assignment while omitting it keeps it
func (suite *TaskHandlerTestSuite) TestUpdateTask_NullAssigneeUnassigns() {
	alice := suite.createTestUser("alice@example.com", false)
	project := suite.createTestProject("P", &alice.ID)
	task := suite.createTestTask("T", project.ID, &alice.ID)

	// Omitted assignee_id keeps the assignment
	c, w := suite.createCallerContext("PATCH", "/api/tasks/1", []byte(`{"title":"Renamed"}`), alice)
	suite.setIDParam(c, task.ID)
	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.Task
	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	assert.NotNil(suite.T(), reloaded.AssigneeID)

	// Explicit null clears it
	c, w = suite.createCallerContext("PATCH", "/api/tasks/1", []byte(`{"assignee_id":null}`), alice)
	suite.setIDParam(c, task.ID)
	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	suite.Require().NoError(suite.db.First(&reloaded, task.ID).Error)
	assert.Nil(suite.T(), reloaded.AssigneeID)
}

// TestDeleteTask_Success verifies deletion inside the visible set
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	alice := suite.createTestUser("alice@example.com", false)
	project := suite.createTestProject("P", &alice.ID)
	task := suite.createTestTask("T", project.ID, nil)

	c, w := suite.createCallerContext("DELETE", "/api/tasks/1", nil, alice)
	suite.setIDParam(c, task.ID)
	suite.handler.DeleteTask(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(suite.T(), http.StatusNoContent, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
