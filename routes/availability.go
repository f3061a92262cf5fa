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

// Slot dates travel as "YYYY-MM-DD"
const dateLayout = "2006-01-02"

type createSlotRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

type updateSlotRequest struct {
	Date      *string `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
}

type bookSlotRequest struct {
	Service string `json:"service" binding:"required"`
	Address string `json:"address" binding:"required"`
	Notes   string `json:"notes"`
}

// RegisterAvailabilityRoutes adds slot management and slot-booking endpoints
func RegisterAvailabilityRoutes(r *gin.RouterGroup, availability *services.AvailabilityService, bookings *services.BookingService) {
	slots := r.Group("/availability")
	slots.Use(middleware.AuthMiddleware())

	slots.POST("", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var req createSlotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Date, start time and end time are required"})
			return
		}

		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Date must be in YYYY-MM-DD format"})
			return
		}

		slot, err := availability.Create(&user, services.CreateSlotInput{
			Date:      date,
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, slot)
	})

	slots.GET("", func(c *gin.Context) {
		filter := services.SlotFilter{}
		if workerID := c.Query("workerId"); workerID != "" {
			id, err := strconv.ParseUint(workerID, 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid worker ID"})
				return
			}
			uid := uint(id)
			filter.WorkerID = &uid
		}
		if dateStr := c.Query("date"); dateStr != "" {
			date, err := time.Parse(dateLayout, dateStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Date must be in YYYY-MM-DD format"})
				return
			}
			filter.Date = &date
		}

		slotList, err := availability.List(filter)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, slotList)
	})

	slots.PUT("/:id", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid slot ID"})
			return
		}

		var req updateSlotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}

		input := services.UpdateSlotInput{
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
		}
		if req.Date != nil {
			date, err := time.Parse(dateLayout, *req.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Date must be in YYYY-MM-DD format"})
				return
			}
			input.Date = &date
		}

		slot, err := availability.Update(&user, uint(id), input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, slot)
	})

	slots.DELETE("/:id", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid slot ID"})
			return
		}

		if err := availability.Delete(&user, uint(id)); err != nil {
			respondError(c, err)
			return
		}
		respondMessage(c, http.StatusOK, "Slot deleted")
	})

	// Booking a slot goes through the same path as POST /bookings so both
	// entry points share the same slot-claiming transaction.
	slots.POST("/:id/book", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid slot ID"})
			return
		}

		var req bookSlotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Service and address are required"})
			return
		}

		slot, err := availability.GetByID(uint(id))
		if err != nil {
			respondError(c, err)
			return
		}

		booking, err := bookings.Create(&user, services.CreateBookingInput{
			WorkerID:       slot.WorkerID,
			AvailabilityID: slot.ID,
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
}
