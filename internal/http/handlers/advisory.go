package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/http/response"
	"github.com/farmassist/farmassist-backend/internal/services"
)

type AdvisoryHandler struct {
	advisoryService services.AdvisoryService
}

func NewAdvisoryHandler(advisoryService services.AdvisoryService) *AdvisoryHandler {
	return &AdvisoryHandler{advisoryService: advisoryService}
}

func (ah *AdvisoryHandler) FertilizerRecommendations(c *gin.Context) {
	advice, err := ah.advisoryService.FertilizerRecommendations(c.Request.Context(), c.Query("field_id"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, advice)
}

func (ah *AdvisoryHandler) LogIrrigation(c *gin.Context) {
	var req services.IrrigationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	record, err := ah.advisoryService.LogIrrigation(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, record)
}

func (ah *AdvisoryHandler) ListIrrigation(c *gin.Context) {
	records, err := ah.advisoryService.ListIrrigation(c.Request.Context(), c.Query("field_id"))
	if err != nil {
		if response.DomainError(err) {
			response.RespondFromError(c, err)
			return
		}
		records = []fallback.IrrigationRecord{}
	}
	if records == nil {
		records = []fallback.IrrigationRecord{}
	}
	response.RespondOK(c, gin.H{"records": records})
}
