package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/migrate"
	"github.com/farmassist/farmassist-backend/internal/http/response"
)

type AdminHandler struct {
	migrator *migrate.Migrator
}

func NewAdminHandler(migrator *migrate.Migrator) *AdminHandler {
	return &AdminHandler{migrator: migrator}
}

// Migrate copies the relational dataset into the document store. The
// body is optional; {"skip_existing": true} leaves documents that
// already exist untouched.
func (ah *AdminHandler) Migrate(c *gin.Context) {
	if ah.migrator == nil {
		response.RespondError(c, http.StatusServiceUnavailable, "unavailable",
			errors.New("migration requires both backends to be configured"))
		return
	}

	var req struct {
		SkipExisting bool `json:"skip_existing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	summary, err := ah.migrator.Run(c.Request.Context(), migrate.Options{SkipExisting: req.SkipExisting})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	copied, skipped, failed := summary.Totals()
	response.RespondOK(c, gin.H{
		"results": summary.Results,
		"took":    summary.Took,
		"copied":  copied,
		"skipped": skipped,
		"failed":  failed,
	})
}
