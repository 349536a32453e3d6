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

// UserHandlerTestSuite defines the test suite for UserHandler
type UserHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *UserHandler
}

// SetupTest runs before each test
func (suite *UserHandlerTestSuite) SetupTest() {
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

	userRepo := repository.NewUserRepository(suite.db)
	roleRepo := repository.NewRoleRepository(suite.db)
	userService := services.NewUserService(userRepo, roleRepo)
	suite.handler = NewUserHandler(userService, zap.NewNop())

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *UserHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *UserHandlerTestSuite) createTestUser(email string, superuser bool) *models.User {
	user := &models.User{
		Email:        email,
		Username:     email,
		PasswordHash: "hashedpassword",
		IsSuperuser:  superuser,
	}
	suite.db.Create(user)
	return user
}

func (suite *UserHandlerTestSuite) createTestRole(name string) *models.Role {
	role := &models.Role{Name: name}
	suite.db.Create(role)
	return role
}

func (suite *UserHandlerTestSuite) assignRole(user *models.User, role *models.Role) {
	suite.Require().NoError(suite.db.Model(user).Association("Roles").Append(role))
}

func (suite *UserHandlerTestSuite) userRoles(userID uint64) []models.Role {
	var user models.User
	suite.Require().NoError(suite.db.Preload("Roles").First(&user, userID).Error)
	return user.Roles
}

func (suite *UserHandlerTestSuite) createCallerContext(method, url string, body []byte, user *models.User) (*gin.Context, *httptest.ResponseRecorder) {
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
	if user != nil {
		c.Set(constants.ContextKeyCaller, auth.Caller{
			UserID:      user.ID,
			Email:       user.Email,
			IsStaff:     user.IsStaff,
			IsSuperuser: user.IsSuperuser,
		})
	}

	return c, w
}

func (suite *UserHandlerTestSuite) setIDParam(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}
}

// TestRegister_Success verifies open registration
func (suite *UserHandlerTestSuite) TestRegister_Success() {
	body := `{"email":"new@example.com","username":"newbie","password":"longenough"}`

	c, w := suite.createCallerContext("POST", "/api/users", []byte(body), nil)
	suite.handler.Register(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new@example.com", response["email"])
	assert.NotContains(suite.T(), w.Body.String(), "password")
}

// TestRegister_ShortPassword verifies the minimum password length
func (suite *UserHandlerTestSuite) TestRegister_ShortPassword() {
	body := `{"email":"new@example.com","username":"newbie","password":"short"}`

	c, w := suite.createCallerContext("POST", "/api/users", []byte(body), nil)
	suite.handler.Register(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestRegister_DuplicateEmail verifies email uniqueness
func (suite *UserHandlerTestSuite) TestRegister_DuplicateEmail() {
	suite.createTestUser("taken@example.com", false)
	body := `{"email":"taken@example.com","username":"other","password":"longenough"}`

	c, w := suite.createCallerContext("POST", "/api/users", []byte(body), nil)
	suite.handler.Register(c)

	assert.Equal(suite.T(), http.StatusConflict, w.Code)
}

// TestListUsers_SelfOnly verifies non-superusers see only themselves
func (suite *UserHandlerTestSuite) TestListUsers_SelfOnly() {
	alice := suite.createTestUser("alice@example.com", false)
	suite.createTestUser("bob@example.com", false)

	c, w := suite.createCallerContext("GET", "/api/users", nil, alice)
	suite.handler.ListUsers(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	users := response["users"].([]interface{})
	assert.Len(suite.T(), users, 1)
	first := users[0].(map[string]interface{})
	assert.Equal(suite.T(), alice.Email, first["email"])
}

// TestGetUser_OtherReadsAsNotFound verifies foreign accounts are
// indistinguishable from missing ones
func (suite *UserHandlerTestSuite) TestGetUser_OtherReadsAsNotFound() {
	alice := suite.createTestUser("alice@example.com", false)
	bob := suite.createTestUser("bob@example.com", false)

	c, w := suite.createCallerContext("GET", "/api/users/2", nil, alice)
	suite.setIDParam(c, bob.ID)
	suite.handler.GetUser(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateUser_SelfCannotEscalatePrivileges verifies a non-privileged
// user cannot grant themselves the staff or superuser flag
func (suite *UserHandlerTestSuite) TestUpdateUser_SelfCannotEscalatePrivileges() {
	alice := suite.createTestUser("alice@example.com", false)

	body := `{"is_superuser":true,"is_staff":true}`
	c, w := suite.createCallerContext("PATCH", "/api/users/1", []byte(body), alice)
	suite.setIDParam(c, alice.ID)
	suite.handler.UpdateUser(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	var reloaded models.User
	suite.Require().NoError(suite.db.First(&reloaded, alice.ID).Error)
	assert.False(suite.T(), reloaded.IsSuperuser)
	assert.False(suite.T(), reloaded.IsStaff)
}

// TestUpdateUser_SelfProfilePatchStillAllowed verifies the privilege gate
// does not block ordinary self-service edits
func (suite *UserHandlerTestSuite) TestUpdateUser_SelfProfilePatchStillAllowed() {
	alice := suite.createTestUser("alice@example.com", false)

	body := `{"first_name":"Alice"}`
	c, w := suite.createCallerContext("PATCH", "/api/users/1", []byte(body), alice)
	suite.setIDParam(c, alice.ID)
	suite.handler.UpdateUser(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.User
	suite.Require().NoError(suite.db.First(&reloaded, alice.ID).Error)
	assert.Equal(suite.T(), "Alice", reloaded.FirstName)
}

// TestUpdateUser_SuperuserGrantsStaffFlag verifies privileged callers may
// change the flags
func (suite *UserHandlerTestSuite) TestUpdateUser_SuperuserGrantsStaffFlag() {
	admin := suite.createTestUser("admin@example.com", true)
	alice := suite.createTestUser("alice@example.com", false)

	body := `{"is_staff":true}`
	c, w := suite.createCallerContext("PATCH", "/api/users/2", []byte(body), admin)
	suite.setIDParam(c, alice.ID)
	suite.handler.UpdateUser(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var reloaded models.User
	suite.Require().NoError(suite.db.First(&reloaded, alice.ID).Error)
	assert.True(suite.T(), reloaded.IsStaff)
}

// TestDeleteUser_NullsProjectReferences verifies owned projects survive
// with cleared references
func (suite *UserHandlerTestSuite) TestDeleteUser_NullsProjectReferences() {
	admin := suite.createTestUser("admin@example.com", true)
	alice := suite.createTestUser("alice@example.com", false)

	project := &models.Project{
		Title:       "Orphaned",
		Priority:    models.PriorityMedium,
		Status:      models.StatusPending,
		Deadline:    time.Now().Add(24 * time.Hour),
		OwnerID:     &alice.ID,
		CreatedByID: &alice.ID,
	}
	suite.Require().NoError(suite.db.Create(project).Error)

	task := &models.Task{
		Title:      "Still here",
		Priority:   models.PriorityMedium,
		Status:     models.StatusPending,
		Deadline:   time.Now().Add(24 * time.Hour),
		ProjectID:  project.ID,
		AssigneeID: &alice.ID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	c, w := suite.createCallerContext("DELETE", "/api/users/2", nil, admin)
	suite.setIDParam(c, alice.ID)
	suite.handler.DeleteUser(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(suite.T(), http.StatusNoContent, w.Code)

	var reloadedProject models.Project
	suite.Require().NoError(suite.db.First(&reloadedProject, project.ID).Error)
	assert.Nil(suite.T(), reloadedProject.OwnerID)
	assert.Nil(suite.T(), reloadedProject.CreatedByID)

	var reloadedTask models.Task
	suite.Require().NoError(suite.db.First(&reloadedTask, task.ID).Error)
	assert.Nil(suite.T(), reloadedTask.AssigneeID)
}

// TestAddRole_Idempotent verifies adding a held role twice succeeds
// without duplicating
func (suite *UserHandlerTestSuite) TestAddRole_Idempotent() {
	admin := suite.createTestUser("admin@example.com", true)
	alice := suite.createTestUser("alice@example.com", false)
	role := suite.createTestRole("developer")

	body := fmt.Sprintf(`{"role_id":%d}`, role.ID)

	for i := 0; i < 2; i++ {
		c, w := suite.createCallerContext("POST", "/api/users/2/add_role", []byte(body), admin)
		suite.setIDParam(c, alice.ID)
		suite.handler.AddRole(c)
		assert.Equal(suite.T(), http.StatusOK, w.Code)
	}

	assert.Len(suite.T(), suite.userRoles(alice.ID), 1)
}

// TestRemoveRole_NotAssigned verifies removing an unheld role fails
func (suite *UserHandlerTestSuite) TestRemoveRole_NotAssigned() {
	admin := suite.createTestUser("admin@example.com", true)
	alice := suite.createTestUser("alice@example.com", false)
	role := suite.createTestRole("developer")

	body := fmt.Sprintf(`{"role_id":%d}`, role.ID)

	c, w := suite.createCallerContext("POST", "/api/users/2/remove_role", []byte(body), admin)
	suite.setIDParam(c, alice.ID)
	suite.handler.RemoveRole(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestRemoveRole_Success verifies removal of a held role
func (suite *UserHandlerTestSuite) TestRemoveRole_Success() {
	admin := suite.createTestUser("admin@example.com", true)
	alice := suite.createTestUser("alice@example.com", false)
	role := suite.createTestRole("developer")
	suite.assignRole(alice, role)

	body := fmt.Sprintf(`{"role_id":%d}`, role.ID)

	c, w := suite.createCallerContext("POST", "/api/users/2/remove_role", []byte(body), admin)
	suite.setIDParam(c, alice.ID)
	suite.handler.RemoveRole(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Empty(suite.T(), suite.userRoles(alice.ID))
}

// TestUpdateRoles_ReturnsPreviousAndCurrent verifies the replace
// operation reports both sides of the change
func (suite *UserHandlerTestSuite) TestUpdateRoles_ReturnsPreviousAndCurrent() {
	admin := suite.createTestUser("admin@example.com", true)
	alice := suite.createTestUser("alice@example.com", false)
	oldRole := suite.createTestRole("intern")
	newRole := suite.createTestRole("developer")
	suite.assignRole(alice, oldRole)

	body := fmt.Sprintf(`{"role_ids":[%d]}`, newRole.ID)

	c, w := suite.createCallerContext("POST", "/api/users/2/update_roles", []byte(body), admin)
	suite.setIDParam(c, alice.ID)
	suite.handler.UpdateRoles(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	previous := response["previous_roles"].([]interface{})
	current := response["current_roles"].([]interface{})
	assert.Len(suite.T(), previous, 1)
	assert.Len(suite.T(), current, 1)
	assert.Equal(suite.T(), "intern", previous[0].(map[string]interface{})["name"])
	assert.Equal(suite.T(), "developer", current[0].(map[string]interface{})["name"])
}

// TestUpdateRoles_UnknownRoleLeavesMembershipUntouched verifies one bad
// role ID rejects the whole replacement
func (suite *UserHandlerTestSuite) TestUpdateRoles_UnknownRoleLeavesMembershipUntouched() {
	admin := suite.createTestUser("admin@example.com", true)
	alice := suite.createTestUser("alice@example.com", false)
	role := suite.createTestRole("intern")
	suite.assignRole(alice, role)

	body := fmt.Sprintf(`{"role_ids":[%d,9999]}`, role.ID)

	c, w := suite.createCallerContext("POST", "/api/users/2/update_roles", []byte(body), admin)
	suite.setIDParam(c, alice.ID)
	suite.handler.UpdateRoles(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	roles := suite.userRoles(alice.ID)
	assert.Len(suite.T(), roles, 1)
	assert.Equal(suite.T(), "intern", roles[0].Name)
}

func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
