package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"azhome-server/middleware"
	"azhome-server/models"
	"azhome-server/services"
)

type createBookingRequest struct {
	WorkerID       uint   `json:"workerId" binding:"required"`
	AvailabilityID uint   `json:"availabilityId" binding:"required"`
	Service        string `json:"service" binding:"required"`
	Address        string `json:"address" binding:"required"`
	Notes          string `json:"notes"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type completeRequest struct {
	Notes string `json:"notes"`
}

// RegisterBookingRoutes adds the booking lifecycle endpoints
func RegisterBookingRoutes(r *gin.RouterGroup, bookings *services.BookingService) {
	group := r.Group("/bookings")
	group.Use(middleware.AuthMiddleware())

	group.POST("", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var req createBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Worker ID, availability ID, service and address are required"})
			return
		}

		booking, err := bookings.Create(&user, services.CreateBookingInput{
			WorkerID:       req.WorkerID,
			AvailabilityID: req.AvailabilityID,
			Service:        models.ServiceType(req.Service),
			Address:        req.Address,
			Notes:          req.Notes,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, booking)
	})

	group.GET("", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		list, err := bookings.ListForClient(user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, list)
	})

	group.GET("/worker", middleware.RequireRoles(models.RoleWorker), func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var status *models.BookingStatus
		if s := c.Query("status"); s != "" {
			bs := models.BookingStatus(s)
			status = &bs
		}

		list, err := bookings.ListForWorker(user.ID, status)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, list)
	})

	group.GET("/all", middleware.RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		filter := services.AdminBookingFilter{}
		if s := c.Query("status"); s != "" {
			status := models.BookingStatus(s)
			filter.Status = &status
		}
		if s := c.Query("service"); s != "" {
			service := models.ServiceType(s)
			filter.Service = &service
		}
		if s := c.Query("workerId"); s != "" {
			id, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid worker ID"})
				return
			}
			uid := uint(id)
			filter.WorkerID = &uid
		}
		if s := c.Query("userId"); s != "" {
			id, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
				return
			}
			uid := uint(id)
			filter.UserID = &uid
		}
		if fromStr, toStr := c.Query("from"), c.Query("to"); fromStr != "" && toStr != "" {
			from, err1 := time.Parse(dateLayout, fromStr)
			to, err2 := time.Parse(dateLayout, toStr)
			if err1 != nil || err2 != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Dates must be in YYYY-MM-DD format"})
				return
			}
			filter.From = &from
			filter.To = &to
		}

		list, err := bookings.ListAll(filter)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, list)
	})

	group.GET("/:id", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, ok := bookingID(c)
		if !ok {
			return
		}

		booking, err := bookings.Get(&user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, booking)
	})

	group.PATCH("/:id/accept", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, ok := bookingID(c)
		if !ok {
			return
		}

		booking, err := bookings.Accept(&user, id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, booking)
	})

	group.PATCH("/:id/reject", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, ok := bookingID(c)
		if !ok {
			return
		}

		var req reasonRequest
		c.ShouldBindJSON(&req)

		booking, err := bookings.Reject(&user, id, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, booking)
	})

	group.PATCH("/:id/cancel", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, ok := bookingID(c)
		if !ok {
			return
		}

		var req reasonRequest
		c.ShouldBindJSON(&req)

		booking, err := bookings.Cancel(&user, id, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, booking)
	})

	group.PATCH("/:id/complete", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, ok := bookingID(c)
		if !ok {
			return
		}

		var req completeRequest
		c.ShouldBindJSON(&req)

		booking, err := bookings.Complete(&user, id, req.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, booking)
	})
}

func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid booking ID"})
		return 0, false
	}
	return uint(id), true
}
