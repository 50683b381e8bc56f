package handlers

import (
	"net/http"
	"strconv"

	"form-builder-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	formService *services.FormService
}

func NewFormHandler(formService *services.FormService) *FormHandler {
	return &FormHandler{formService: formService}
}

type FormRequest struct {
	Title                  string                `json:"title"`
	Description            string                `json:"description"`
	AllowMultipleResponses *bool                 `json:"allow_multiple_responses"`
	RequireEmail           *bool                 `json:"require_email"`
	Fields                 []services.FieldInput `json:"fields"`
}

// CreateForm godoc
// @Summary      Create a form
// @Description  Create a form with its ordered question list (admin only)
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body FormRequest true "Form definition"
// @Success      200 {object} map[string]interface{}
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Router       /api/forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	callerID, _ := callerIdentity(c)

	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}

	form, err := h.formService.CreateForm(callerID, req.Title, req.Description,
		req.AllowMultipleResponses, req.RequireEmail, req.Fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"form": form})
}

// ListForms godoc
// @Summary      List forms
// @Description  Forms owned by the caller, or every form for admins
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} map[string]interface{}
// @Router       /api/forms [get]
func (h *FormHandler) ListForms(c *gin.Context) {
	callerID, isAdmin := callerIdentity(c)

	forms, err := h.formService.ListForms(callerID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"forms": forms})
}

// GetForm godoc
// @Summary      Get a form
// @Description  Full form with decoded question detail (owner or admin)
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Form ID"
// @Success      200 {object} map[string]interface{}
// @Failure      404 {object} ErrorResponse
// @Router       /api/forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	callerID, isAdmin := callerIdentity(c)
	formID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid form id"})
		return
	}

	form, err := h.formService.GetForm(formID, callerID, isAdmin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"form": form})
}

// GetPublicForm godoc
// @Summary      Get the public projection of a form
// @Description  Reduced form for respondents, no auth and no owner metadata
// @Tags         forms
// @Produce      json
// @Param        id path int true "Form ID"
// @Success      200 {object} services.PublicFormPayload
// @Failure      404 {object} ErrorResponse
// @Router       /api/forms/{id}/public [get]
func (h *FormHandler) GetPublicForm(c *gin.Context) {
	formID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid form id"})
		return
	}

	form, err := h.formService.GetPublicForm(formID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, form)
}

// UpdateForm godoc
// @Summary      Update a form
// @Description  Replace title, description and the entire question set
// @Tags         forms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Form ID"
// @Param        request body FormRequest true "Form definition"
// @Success      200 {object} map[string]interface{}
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/forms/{id} [put]
func (h *FormHandler) UpdateForm(c *gin.Context) {
	callerID, isAdmin := callerIdentity(c)
	formID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid form id"})
		return
	}

	var req FormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		return
	}

	form, err := h.formService.UpdateForm(formID, callerID, isAdmin, req.Title, req.Description, req.Fields)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"form": form})
}

// DeleteForm godoc
// @Summary      Delete a form
// @Description  Cascade delete: questions, responses and answers go with it
// @Tags         forms
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Form ID"
// @Success      200 {object} MessageResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	callerID, isAdmin := callerIdentity(c)
	formID, err := parseID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid form id"})
		return
	}

	if err := h.formService.DeleteForm(formID, callerID, isAdmin); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Form deleted successfully"})
}

func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
