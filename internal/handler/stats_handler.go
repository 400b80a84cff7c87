package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-records-api/internal/middleware"
	"github.com/noah-isme/school-records-api/internal/models"
	"github.com/noah-isme/school-records-api/pkg/response"
)

type statsService interface {
	Compute(ctx context.Context, actor *models.User) (*models.Stats, bool, error)
}

// StatsHandler serves the teacher summary.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(svc statsService) *StatsHandler {
	return &StatsHandler{service: svc}
}

// Get godoc
// @Summary Roster size and today's attendance by status
// @Description Statuses with no rows today are omitted
// @Tags Stats
// @Produce json
// @Success 200 {object} models.Stats
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, hit, err := h.service.Compute(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, stats)
}
