package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"form-builder-backend/internal/middleware"
	"form-builder-backend/internal/models"
	"form-builder-backend/internal/services"
	"form-builder-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRouter wires the full API the same way main does, against an
// in-memory database and a throwaway upload dir. No drive client.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Form{},
		&models.Question{},
		&models.Response{},
		&models.Answer{},
	))
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	authService := services.NewAuthService(db, "test-secret")
	formService := services.NewFormService(db)
	submissionService := services.NewSubmissionService(db, store, nil)
	responseService := services.NewResponseService(db)

	authHandler := NewAuthHandler(authService)
	formHandler := NewFormHandler(formService)
	responseHandler := NewResponseHandler(submissionService, responseService, store)
	uploadHandler := NewUploadHandler(store)

	r := gin.New()
	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	forms := api.Group("/forms")
	forms.GET("", middleware.JWTAuth(authService), formHandler.ListForms)
	forms.POST("", middleware.JWTAuth(authService), middleware.RequireAdmin(), formHandler.CreateForm)
	forms.GET("/:id", middleware.JWTAuth(authService), formHandler.GetForm)
	forms.PUT("/:id", middleware.JWTAuth(authService), formHandler.UpdateForm)
	forms.DELETE("/:id", middleware.JWTAuth(authService), formHandler.DeleteForm)
	forms.GET("/:id/public", formHandler.GetPublicForm)
	forms.POST("/:id/responses", middleware.OptionalAuth(authService), responseHandler.SubmitResponse)
	forms.GET("/:id/responses", middleware.JWTAuth(authService), responseHandler.ListResponses)
	forms.GET("/:id/csv", middleware.JWTAuth(authService), responseHandler.ExportCSV)

	upload := api.Group("/upload")
	upload.Use(middleware.JWTAuth(authService))
	upload.POST("/image", uploadHandler.UploadImage)
	upload.POST("/images", uploadHandler.UploadImages)
	upload.DELETE("/image", uploadHandler.DeleteImage)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, r *gin.Engine, name, email, role string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &body)
	require.NotEmpty(t, body.Token)
	return body.Token
}
