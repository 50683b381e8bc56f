package main

import (
	"context"
	"log"

	"form-builder-backend/internal/config"
	"form-builder-backend/internal/database"
	"form-builder-backend/internal/handlers"
	"form-builder-backend/internal/middleware"
	"form-builder-backend/internal/services"
	"form-builder-backend/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// @title           Form Builder API
// @version         1.0
// @description     Form builder backend: admins design forms, respondents submit answers, owners export responses
// @host            localhost:8080
// @BasePath        /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter "Bearer {token}"

func main() {
	cfg := config.Load()
	handlers.HideInternalErrors(cfg.Production())

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	store, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("failed to init upload storage: %v", err)
	}

	var drive *storage.DriveClient
	if cfg.DriveConfigured() {
		drive, err = storage.NewDriveClient(context.Background(),
			cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRefreshToken, cfg.DriveRootFolderID)
		if err != nil {
			log.Fatalf("failed to init drive client: %v", err)
		}
	} else {
		log.Println("google drive credentials not set, uploads stay local only")
	}

	authService := services.NewAuthService(db, cfg.JWTSecret)
	formService := services.NewFormService(db)
	submissionService := services.NewSubmissionService(db, store, drive)
	responseService := services.NewResponseService(db)

	authHandler := handlers.NewAuthHandler(authService)
	formHandler := handlers.NewFormHandler(formService)
	responseHandler := handlers.NewResponseHandler(submissionService, responseService, store)
	uploadHandler := handlers.NewUploadHandler(store)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.Static("/uploads", store.Dir())

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		forms := api.Group("/forms")
		{
			forms.GET("", middleware.JWTAuth(authService), formHandler.ListForms)
			forms.POST("", middleware.JWTAuth(authService), middleware.RequireAdmin(), formHandler.CreateForm)
			forms.GET("/:id", middleware.JWTAuth(authService), formHandler.GetForm)
			forms.PUT("/:id", middleware.JWTAuth(authService), formHandler.UpdateForm)
			forms.DELETE("/:id", middleware.JWTAuth(authService), formHandler.DeleteForm)

			forms.GET("/:id/public", formHandler.GetPublicForm)
			forms.POST("/:id/responses", middleware.OptionalAuth(authService), responseHandler.SubmitResponse)
			forms.GET("/:id/responses", middleware.JWTAuth(authService), responseHandler.ListResponses)
			forms.GET("/:id/csv", middleware.JWTAuth(authService), responseHandler.ExportCSV)
		}

		upload := api.Group("/upload")
		upload.Use(middleware.JWTAuth(authService))
		{
			upload.POST("/image", uploadHandler.UploadImage)
			upload.POST("/images", uploadHandler.UploadImages)
			upload.DELETE("/image", uploadHandler.DeleteImage)
		}
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
