package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/db"
)

type HealthHandler struct {
	rel *db.Service
}

func NewHealthHandler(rel *db.Service) *HealthHandler {
	return &HealthHandler{rel: rel}
}

// Check reports process liveness plus the state of the relational
// backend. The endpoint never fails; a down backend shows up in the
// body instead.
func (hh *HealthHandler) Check(c *gin.Context) {
	relational := gin.H{"driver": "none", "status": "disabled"}
	if hh.rel != nil {
		status := "ok"
		if err := hh.rel.Ping(); err != nil {
			status = "unreachable"
		}
		relational = gin.H{"driver": hh.rel.Driver(), "status": status}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"relational": relational,
	})
}
