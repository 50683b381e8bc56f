package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"form-builder-backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// UploadHandler serves the standalone file-store helpers used by the form
// designer, independent of any question or answer.
type UploadHandler struct {
	store *storage.LocalStore
}

func NewUploadHandler(store *storage.LocalStore) *UploadHandler {
	return &UploadHandler{store: store}
}

var allowedUploadExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".txt": true,
}

// UploadImage godoc
// @Summary      Upload a single file
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "File"
// @Success      200 {object} map[string]string
// @Failure      400 {object} ErrorResponse
// @Router       /api/upload/image [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fh, err = c.FormFile("image")
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "no file provided"})
		return
	}

	if fh.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "file too large (max 10MB)"})
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedUploadExts[ext] {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "unsupported file format"})
		return
	}

	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "failed to read file"})
		return
	}
	defer src.Close()

	file, err := h.store.Save("image", fh.Filename, src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": file.URL})
}

// UploadImages godoc
// @Summary      Upload multiple files
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        images formData file true "Files"
// @Success      200 {object} map[string][]string
// @Failure      400 {object} ErrorResponse
// @Router       /api/upload/images [post]
func (h *UploadHandler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "no files provided"})
		return
	}

	headers := form.File["images"]
	if len(headers) == 0 {
		headers = form.File["files"]
	}
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "no files provided"})
		return
	}

	urls := []string{}
	for _, fh := range headers {
		if fh.Size > maxUploadSize {
			continue
		}
		if !allowedUploadExts[strings.ToLower(filepath.Ext(fh.Filename))] {
			continue
		}
		src, err := fh.Open()
		if err != nil {
			continue
		}
		file, err := h.store.Save("images", fh.Filename, src)
		src.Close()
		if err != nil {
			continue
		}
		urls = append(urls, file.URL)
	}

	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

type DeleteImageRequest struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// DeleteImage godoc
// @Summary      Delete an uploaded file
// @Tags         upload
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body DeleteImageRequest true "File url or name"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/upload/image [delete]
func (h *UploadHandler) DeleteImage(c *gin.Context) {
	var req DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}

	name := req.Filename
	if name == "" {
		name = filepath.Base(req.URL)
	}
	if name == "" || name == "." {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "url or filename required"})
		return
	}

	if err := h.store.Delete(name); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "file not found"})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "file deleted"})
}
