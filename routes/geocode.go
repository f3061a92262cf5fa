package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"azhome-server/middleware"
	"azhome-server/services"
)

// RegisterGeocodeRoutes adds the client-to-worker distance lookup
func RegisterGeocodeRoutes(r *gin.RouterGroup, distance *services.DistanceService) {
	group := r.Group("/distance")
	group.Use(middleware.AuthMiddleware())

	group.GET("", func(c *gin.Context) {
		from := c.Query("from")
		to := c.Query("to")
		if from == "" || to == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Both from and to addresses are required"})
			return
		}

		result, err := distance.Distance(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, result)
	})
}
