package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/http/response"
	"github.com/farmassist/farmassist-backend/internal/services"
)

// maxUploadBytes bounds disease photo uploads.
const maxUploadBytes = 10 << 20

var errTooLarge = errors.New("image exceeds the 10MB upload limit")

type DiseaseHandler struct {
	diseaseService services.DiseaseService
}

func NewDiseaseHandler(diseaseService services.DiseaseService) *DiseaseHandler {
	return &DiseaseHandler{diseaseService: diseaseService}
}

func (dh *DiseaseHandler) Detect(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request",
			err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.RespondError(c, http.StatusBadRequest, "invalid_request",
			errTooLarge)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	defer file.Close()
	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	detection, err := dh.diseaseService.Detect(c.Request.Context(), services.DetectionInput{
		UserID:   c.PostForm("user_id"),
		FieldID:  c.PostForm("field_id"),
		CropType: c.PostForm("crop_type"),
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Image:    image,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, detection)
}

func (dh *DiseaseHandler) ListReports(c *gin.Context) {
	reports, err := dh.diseaseService.ListReports(c.Request.Context(), c.Query("user_id"), c.Query("field_id"))
	if err != nil {
		if response.DomainError(err) {
			response.RespondFromError(c, err)
			return
		}
		reports = []fallback.ReportRecord{}
	}
	if reports == nil {
		reports = []fallback.ReportRecord{}
	}
	response.RespondOK(c, gin.H{"reports": reports})
}

func (dh *DiseaseHandler) UpdateReportStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := dh.diseaseService.UpdateReportStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
