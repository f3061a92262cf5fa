package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"azhome-server/middleware"
	"azhome-server/models"
	"azhome-server/services"
)

type addReviewRequest struct {
	WorkerID uint   `json:"workerId" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Comment  string `json:"comment"`
}

type updateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// RegisterReviewRoutes adds review CRUD and listing endpoints
func RegisterReviewRoutes(r *gin.RouterGroup, reviews *services.ReviewService) {
	// Reading a worker's reviews is public
	r.GET("/workers/:id/reviews", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid worker ID"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		list, total, err := reviews.ListForWorker(uint(id), page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"reviews": list, "total": total, "page": page})
	})

	group := r.Group("/reviews")
	group.Use(middleware.AuthMiddleware())

	group.POST("", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var req addReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Worker ID and rating are required"})
			return
		}

		review, err := reviews.Add(&user, req.WorkerID, req.Rating, req.Comment)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, review)
	})

	group.GET("/mine", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		list, total, err := reviews.ListForClient(user.ID, page, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"reviews": list, "total": total, "page": page})
	})

	group.PUT("/:id", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid review ID"})
			return
		}

		var req updateReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Rating is required"})
			return
		}

		review, err := reviews.Update(&user, uint(id), req.Rating, req.Comment)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, review)
	})

	group.DELETE("/:id", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid review ID"})
			return
		}

		if err := reviews.Delete(&user, uint(id)); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Review deleted")
	})

	// Repair path for the denormalized aggregate
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/workers/:id/recompute-rating", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid worker ID"})
			return
		}

		if err := reviews.RecomputeWorkerRating(uint(id)); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Worker rating recomputed")
	})
}
