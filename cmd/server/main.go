package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/teampulse/project-management-api/internal/auth"
	"github.com/teampulse/project-management-api/internal/config"
	"github.com/teampulse/project-management-api/internal/database"
	"github.com/teampulse/project-management-api/internal/handlers"
	"github.com/teampulse/project-management-api/internal/middleware"
	"github.com/teampulse/project-management-api/internal/repository"
	"github.com/teampulse/project-management-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.GinMode)

	if err := database.Connect(cfg); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		logger.Fatal("failed to add indexes", zap.Error(err))
	}

	db := database.GetDB()

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	workerRepo := repository.NewWorkerRepository(db)

	tokens := auth.NewTokenManager(
		[]byte(cfg.Auth.JWTSecret),
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	authService := services.NewAuthService(userRepo, tokens, cfg.Auth.PermissionOverrides, logger)
	userService := services.NewUserService(userRepo, roleRepo)
	projectService := services.NewProjectService(projectRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo)
	roleService := services.NewRoleService(roleRepo)
	departmentService := services.NewDepartmentService(departmentRepo)
	workerService := services.NewWorkerService(workerRepo, userRepo, departmentRepo)

	authHandler := handlers.NewAuthHandler(authService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	projectHandler := handlers.NewProjectHandler(projectService, logger)
	taskHandler := handlers.NewTaskHandler(taskService, logger)
	roleHandler := handlers.NewRoleHandler(roleService, logger)
	departmentHandler := handlers.NewDepartmentHandler(departmentService, logger)
	workerHandler := handlers.NewWorkerHandler(workerService, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		// Token endpoints
		api.POST("/token", authHandler.Login)
		api.POST("/token/refresh", authHandler.Refresh)

		// User routes; registration is open
		users := api.Group("/users")
		{
			users.POST("", userHandler.Register)
			users.GET("", middleware.RequireAuth(tokens), userHandler.ListUsers)
			users.GET("/:id", middleware.RequireAuth(tokens), userHandler.GetUser)
			users.PUT("/:id", middleware.RequireAuth(tokens), userHandler.UpdateUser)
			users.PATCH("/:id", middleware.RequireAuth(tokens), userHandler.UpdateUser)
			users.DELETE("/:id", middleware.RequireAuth(tokens), userHandler.DeleteUser)

			// Role-management actions are staff-only
			users.POST("/:id/update_roles", middleware.RequireAuth(tokens), middleware.RequireStaff(), userHandler.UpdateRoles)
			users.POST("/:id/add_role", middleware.RequireAuth(tokens), middleware.RequireStaff(), userHandler.AddRole)
			users.POST("/:id/remove_role", middleware.RequireAuth(tokens), middleware.RequireStaff(), userHandler.RemoveRole)
		}

		projects := api.Group("/projects", middleware.RequireAuth(tokens))
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.GET("/:id/tasks", projectHandler.ListProjectTasks)
		}

		tasks := api.Group("/tasks", middleware.RequireAuth(tokens))
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		roles := api.Group("/roles", middleware.RequireAuth(tokens), middleware.RequireStaff())
		{
			roles.POST("", roleHandler.CreateRole)
			roles.GET("", roleHandler.ListRoles)
			roles.GET("/:id", roleHandler.GetRole)
			roles.PUT("/:id", roleHandler.UpdateRole)
			roles.PATCH("/:id", roleHandler.UpdateRole)
			roles.DELETE("/:id", roleHandler.DeleteRole)
		}

		departments := api.Group("/departments", middleware.RequireAuth(tokens))
		{
			departments.POST("", departmentHandler.CreateDepartment)
			departments.GET("", departmentHandler.ListDepartments)
			departments.GET("/:id", departmentHandler.GetDepartment)
			departments.PUT("/:id", departmentHandler.UpdateDepartment)
			departments.PATCH("/:id", departmentHandler.UpdateDepartment)
			departments.DELETE("/:id", departmentHandler.DeleteDepartment)
		}

		workers := api.Group("/workers", middleware.RequireAuth(tokens))
		{
			workers.POST("", workerHandler.CreateWorker)
			workers.GET("", workerHandler.ListWorkers)
			workers.GET("/:id", workerHandler.GetWorker)
			workers.PUT("/:id", workerHandler.UpdateWorker)
			workers.PATCH("/:id", workerHandler.UpdateWorker)
			workers.DELETE("/:id", workerHandler.DeleteWorker)
		}
	}

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
