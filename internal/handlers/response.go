package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"form-builder-backend/internal/services"
	"form-builder-backend/internal/storage"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 10 << 20 // per file

type ResponseHandler struct {
	submissionService *services.SubmissionService
	responseService   *services.ResponseService
	store             *storage.LocalStore
}

func NewResponseHandler(submissionService *services.SubmissionService, responseService *services.ResponseService, store *storage.LocalStore) *ResponseHandler {
	return &ResponseHandler{
		submissionService: submissionService,
		responseService:   responseService,
		store:             store,
	}
}

// SubmitResponse godoc
// @Summary      Submit a response to a form
// @Description  Multipart: "answers" JSON array plus files tagged image_<questionId>_<n> / file_<questionId>_<n>
// @Tags         responses
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path int true "Form ID"
// @Success      201 {object} map[string]interface{}
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/forms/{id}/responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	formID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid form id"})
		return
	}

	var answers []services.AnswerInput
	if raw := c.PostForm("answers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &answers); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid answers payload"})
			return
		}
	}

	rc := services.RespondentContext{
		Email: c.PostForm("email"),
		IP:    c.ClientIP(),
	}
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			rc.UserID = &id
		}
	}

	files := h.saveUploads(c)

	result, err := h.submissionService.SubmitResponse(c.Request.Context(), formID, rc, answers, files)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Response submitted successfully",
		"response": gin.H{
			"id":          result.Response.ID,
			"formId":      formID,
			"submittedAt": result.Response.SubmittedAt,
		},
		"answersProcessed": result.AnswersProcessed,
	})
}

// saveUploads writes every multipart file to the local store, keeping its
// field tag so the pipeline can match files to questions. One bad file is
// logged and skipped, not fatal.
func (h *ResponseHandler) saveUploads(c *gin.Context) []storage.SavedFile {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}

	var saved []storage.SavedFile
	for field, headers := range form.File {
		for _, fh := range headers {
			if fh.Size > maxUploadSize {
				log.Printf("upload %s too large (%d bytes), skipping", fh.Filename, fh.Size)
				continue
			}
			src, err := fh.Open()
			if err != nil {
				log.Printf("cannot open upload %s: %v", fh.Filename, err)
				continue
			}
			file, err := h.store.Save(field, fh.Filename, src)
			src.Close()
			if err != nil {
				log.Printf("cannot store upload %s: %v", fh.Filename, err)
				continue
			}
			saved = append(saved, file)
		}
	}
	return saved
}

// ListResponses godoc
// @Summary      List responses to a form
// @Description  Responses with decoded answers joined to their questions (owner or admin)
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Form ID"
// @Success      200 {array} services.ResponsePayload
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/forms/{id}/responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	callerID, isAdmin := callerIdentity(c)
	formID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid form id"})
		return
	}

	responses, err := h.responseService.ListResponses(formID, callerID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses)
}

// ExportCSV godoc
// @Summary      Export responses as CSV
// @Description  One row per response, one column per question (owner or admin)
// @Tags         responses
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id path int true "Form ID"
// @Success      200 {string} string
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/forms/{id}/csv [get]
func (h *ResponseHandler) ExportCSV(c *gin.Context) {
	callerID, isAdmin := callerIdentity(c)
	formID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid form id"})
		return
	}

	content, err := h.responseService.ExportCSV(formID, callerID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=form_responses_%d.csv", formID))
	c.Data(http.StatusOK, "text/csv", []byte(content))
}
