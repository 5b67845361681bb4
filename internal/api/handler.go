package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vaibhavx77/rover-app/internal/repository"
)

type Handler struct {
	repo repository.HazardRepository
}

func NewHandler(repo repository.HazardRepository) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/hazards", h.listHazards)
	r.GET("/health", h.health)
}

// listHazards returns up to 100 hazards within the given radius of a
// coordinate. Radius defaults to 5000 meters.
func (h *Handler) listHazards(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "lat must be a number",
		})
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "lng must be a number",
		})
		return
	}

	query := repository.RadiusQuery{
		Latitude:  lat,
		Longitude: lng,
	}
	if r := c.Query("radius"); r != "" {
		if radius, err := strconv.ParseFloat(r, 64); err == nil && radius > 0 {
			query.RadiusMeters = radius
		}
	}

	hazards, err := h.repo.FindWithinRadius(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch hazards",
		})
		return
	}

	c.JSON(http.StatusOK, toHazardList(hazards))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
