package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/http/response"
	"github.com/farmassist/farmassist-backend/internal/services"
)

type FieldHandler struct {
	fieldService services.FieldService
}

func NewFieldHandler(fieldService services.FieldService) *FieldHandler {
	return &FieldHandler{fieldService: fieldService}
}

func (fh *FieldHandler) Create(c *gin.Context) {
	var req services.FieldInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	field, err := fh.fieldService.Create(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, field)
}

func (fh *FieldHandler) List(c *gin.Context) {
	fields, err := fh.fieldService.ListByUser(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		if response.DomainError(err) {
			response.RespondFromError(c, err)
			return
		}
		fields = []fallback.FieldRecord{}
	}
	if fields == nil {
		fields = []fallback.FieldRecord{}
	}
	response.RespondOK(c, gin.H{"fields": fields})
}

func (fh *FieldHandler) Monitor(c *gin.Context) {
	data, err := fh.fieldService.Monitor(c.Request.Context(), c.Query("field_id"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, data)
}
