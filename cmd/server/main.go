package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cogniboard/cogniboard-api/internal/auth"
	"github.com/cogniboard/cogniboard-api/internal/config"
	"github.com/cogniboard/cogniboard-api/internal/database"
	"github.com/cogniboard/cogniboard-api/internal/handlers"
	"github.com/cogniboard/cogniboard-api/internal/middleware"
	"github.com/cogniboard/cogniboard-api/internal/repository"
	"github.com/cogniboard/cogniboard-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/rueidis"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "cogniboard",
	Short:         "CogniBoard project and task tracking API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		gin.SetMode(cfg.GinMode)

		if err := database.Connect(cfg); err != nil {
			return err
		}
		if err := database.Migrate(); err != nil {
			return err
		}

		// Token revocation store: Redis when configured, in-process otherwise
		var revoker auth.TokenRevoker
		if cfg.RedisAddr != "" {
			redisClient, err := rueidis.NewClient(rueidis.ClientOption{
				InitAddress: []string{cfg.RedisAddr},
			})
			if err != nil {
				return err
			}
			defer redisClient.Close()
			revoker = auth.NewRedisRevoker(redisClient)
		} else {
			revoker = auth.NewMemoryRevoker()
		}

		tokens := auth.NewTokenManager(
			cfg.JWTSecret,
			time.Duration(cfg.TokenTTLHours)*time.Hour,
			revoker,
		)

		r := buildRouter(tokens)

		srv := &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: r,
		}

		go func() {
			log.Printf("Server starting on %s", cfg.ListenAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("server stopped: %v", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return err
		}

		log.Println("Server shut down gracefully")
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		if err := database.Connect(cfg); err != nil {
			return err
		}
		return database.Migrate()
	},
}

func buildRouter(tokens *auth.TokenManager) *gin.Engine {
	db := database.GetDB()

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := services.NewAuthService(userRepo)
	projectService := services.NewProjectService(projectRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo)
	commentService := services.NewCommentService(commentRepo, taskRepo)

	authHandler := handlers.NewAuthHandler(authService, tokens)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commentHandler := handlers.NewCommentHandler(commentService)

	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "CogniBoard API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public unless noted)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", middleware.RequireAuth(tokens), authHandler.Logout)
			authGroup.GET("/me", middleware.RequireAuth(tokens), authHandler.GetCurrentUser)
			authGroup.GET("/users", middleware.RequireAuth(tokens), authHandler.ListUsers)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth(tokens))
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", middleware.RequireProjectMember(), projectHandler.GetProject)
			projects.PATCH("/:id", middleware.RequireProjectMember(), middleware.RequireProjectOwner(), projectHandler.UpdateProject)
			projects.DELETE("/:id", middleware.RequireProjectMember(), middleware.RequireProjectOwner(), projectHandler.DeleteProject)
			projects.GET("/:id/members", middleware.RequireProjectMember(), projectHandler.ListMembers)
			projects.POST("/:id/members", middleware.RequireProjectMember(), middleware.RequireProjectOwner(), projectHandler.AddMember)
			projects.PATCH("/:id/members/:user_id", middleware.RequireProjectMember(), middleware.RequireProjectOwner(), projectHandler.UpdateMemberRole)
			projects.DELETE("/:id/members/:user_id", middleware.RequireProjectMember(), middleware.RequireProjectOwner(), projectHandler.RemoveMember)
			projects.GET("/:id/tasks", middleware.RequireProjectMember(), taskHandler.ListProjectTasks)
			projects.POST("/:id/tasks", middleware.RequireProjectMember(), taskHandler.CreateProjectTask)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(tokens))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), taskHandler.DeleteTask)
			tasks.GET("/:id/comments", middleware.RequireTaskAccess(), commentHandler.ListTaskComments)
			tasks.POST("/:id/comments", middleware.RequireTaskAccess(), commentHandler.CreateTaskComment)
		}

		// Comment routes (protected)
		comments := api.Group("/comments")
		comments.Use(middleware.RequireAuth(tokens))
		{
			comments.PATCH("/:id", commentHandler.UpdateComment)
			comments.DELETE("/:id", commentHandler.DeleteComment)
		}
	}

	return r
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
