package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"azhome-server/database"
	"azhome-server/middleware"
	"azhome-server/models"
	"azhome-server/utils"
)

type updateProfileRequest struct {
	FullName   *string  `json:"fullName"`
	Address    *string  `json:"address"`
	Service    *string  `json:"service"`
	HourlyRate *float64 `json:"hourlyRate"`
}

// RegisterUserRoutes adds profile, worker directory and document endpoints
func RegisterUserRoutes(r *gin.RouterGroup, uploads *utils.Uploader) {
	// Worker directory is public so clients can browse before signing up
	r.GET("/workers", func(c *gin.Context) {
		query := database.DB.Preload("WorkerProfile").
			Preload("WorkerProfile.Certificates").
			Preload("WorkerProfile.PastWorks").
			Where("role = ?", models.RoleWorker)

		if service := c.Query("service"); service != "" {
			query = query.Joins("JOIN worker_profiles ON worker_profiles.user_id = users.id").
				Where("worker_profiles.service = ?", service)
		}
		if verified := c.Query("verified"); verified == "true" {
			query = query.Joins("JOIN worker_profiles wp ON wp.user_id = users.id").
				Where("wp.is_verified = ?", true)
		}

		var workers []models.User
		if err := query.Order("users.id").Find(&workers).Error; err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, workers)
	})

	r.GET("/workers/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid worker ID"})
			return
		}

		var worker models.User
		if err := database.DB.Preload("WorkerProfile").
			Preload("WorkerProfile.Certificates").
			Preload("WorkerProfile.PastWorks").
			Where("role = ?", models.RoleWorker).
			First(&worker, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker not found"})
			return
		}
		respondData(c, http.StatusOK, worker)
	})

	r.GET("/services", func(c *gin.Context) {
		respondData(c, http.StatusOK, models.ServiceTypes)
	})

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/users/me", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		respondData(c, http.StatusOK, user)
	})

	protected.PUT("/users/me", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}

		if req.FullName != nil {
			name := strings.TrimSpace(*req.FullName)
			if name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Full name cannot be empty"})
				return
			}
			user.FullName = name
		}
		if req.Address != nil {
			user.Address = strings.TrimSpace(*req.Address)
		}

		updateProfile := user.IsWorker() && user.WorkerProfile != nil && (req.Service != nil || req.HourlyRate != nil)
		if updateProfile {
			if req.Service != nil {
				service := models.ServiceType(*req.Service)
				if !models.IsValidService(service) {
					c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid service"})
					return
				}
				user.WorkerProfile.Service = service
			}
			if req.HourlyRate != nil {
				if *req.HourlyRate <= 0 {
					c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Hourly rate must be positive"})
					return
				}
				user.WorkerProfile.HourlyRate = *req.HourlyRate
			}
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Save(&user).Error; err != nil {
				return err
			}
			if updateProfile {
				return tx.Save(user.WorkerProfile).Error
			}
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}

		respondData(c, http.StatusOK, user)
	})

	protected.POST("/users/me/picture", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)

		header, err := c.FormFile("picture")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No picture provided"})
			return
		}
		if !utils.ValidateImageFile(header) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Picture must be a JPG, PNG or WebP image under 5MB"})
			return
		}

		url, publicID, err := uploads.UploadImage(c.Request.Context(), header, utils.FolderProfiles)
		if err != nil {
			respondError(c, err)
			return
		}

		if user.ProfilePictureID != nil {
			uploads.DestroyImage(c.Request.Context(), *user.ProfilePictureID)
		}
		user.ProfilePictureURL = &url
		user.ProfilePictureID = &publicID
		if err := database.DB.Save(&user).Error; err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, gin.H{"profile_picture_url": url})
	})

	registerWorkerDocumentRoutes(protected, uploads)
	registerAdminUserRoutes(protected, uploads)
}

// registerWorkerDocumentRoutes adds NIC, certificate and past-work uploads.
// Replacing NIC photos resets verification so an admin re-checks the account.
func registerWorkerDocumentRoutes(r *gin.RouterGroup, uploads *utils.Uploader) {
	workers := r.Group("/workers/me")
	workers.Use(middleware.RequireRoles(models.RoleWorker))

	workers.POST("/nic", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		profile := user.WorkerProfile
		if profile == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
			return
		}

		frontHeader, _ := c.FormFile("nic_front")
		backHeader, _ := c.FormFile("nic_back")
		if frontHeader == nil && backHeader == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No files provided"})
			return
		}
		if frontHeader != nil && !utils.ValidateImageFile(frontHeader) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid NIC front image"})
			return
		}
		if backHeader != nil && !utils.ValidateImageFile(backHeader) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid NIC back image"})
			return
		}

		data := gin.H{}
		if frontHeader != nil {
			url, publicID, err := uploads.UploadImage(c.Request.Context(), frontHeader, utils.FolderDocuments)
			if err != nil {
				respondError(c, err)
				return
			}
			if profile.NICFrontID != nil {
				uploads.DestroyImage(c.Request.Context(), *profile.NICFrontID)
			}
			profile.NICFrontURL = &url
			profile.NICFrontID = &publicID
			data["nic_front_url"] = url
		}
		if backHeader != nil {
			url, publicID, err := uploads.UploadImage(c.Request.Context(), backHeader, utils.FolderDocuments)
			if err != nil {
				respondError(c, err)
				return
			}
			if profile.NICBackID != nil {
				uploads.DestroyImage(c.Request.Context(), *profile.NICBackID)
			}
			profile.NICBackURL = &url
			profile.NICBackID = &publicID
			data["nic_back_url"] = url
		}

		// New documents need a fresh admin review
		profile.IsVerified = false
		if err := database.DB.Save(profile).Error; err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, data)
	})

	workers.POST("/certificates", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		profile := user.WorkerProfile
		if profile == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
			return
		}

		header, err := c.FormFile("certificate")
		if err != nil || !utils.ValidateImageFile(header) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A valid certificate image is required"})
			return
		}

		url, publicID, err := uploads.UploadImage(c.Request.Context(), header, utils.FolderDocuments)
		if err != nil {
			respondError(c, err)
			return
		}

		cert := models.Certificate{
			WorkerProfileID:  profile.ID,
			URL:              url,
			PublicID:         publicID,
			Title:            c.PostForm("title"),
			IssuedDate:       c.PostForm("issued_date"),
			IssuingAuthority: c.PostForm("issuing_authority"),
		}
		if err := database.DB.Create(&cert).Error; err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, cert)
	})

	workers.DELETE("/certificates/:id", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		profile := user.WorkerProfile
		if profile == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid certificate ID"})
			return
		}

		var cert models.Certificate
		if err := database.DB.Where("worker_profile_id = ?", profile.ID).First(&cert, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Certificate not found"})
			return
		}

		if err := database.DB.Delete(&cert).Error; err != nil {
			respondError(c, err)
			return
		}
		uploads.DestroyImage(c.Request.Context(), cert.PublicID)
		respondMessage(c, http.StatusOK, "Certificate removed")
	})

	workers.POST("/past-works", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		profile := user.WorkerProfile
		if profile == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
			return
		}

		header, err := c.FormFile("photo")
		if err != nil || !utils.ValidateImageFile(header) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A valid photo is required"})
			return
		}

		url, publicID, err := uploads.UploadImage(c.Request.Context(), header, utils.FolderPastWorks)
		if err != nil {
			respondError(c, err)
			return
		}

		work := models.PastWork{
			WorkerProfileID: profile.ID,
			URL:             url,
			PublicID:        publicID,
			Description:     c.PostForm("description"),
		}
		if err := database.DB.Create(&work).Error; err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusCreated, work)
	})

	workers.DELETE("/past-works/:id", func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		profile := user.WorkerProfile
		if profile == nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
			return
		}

		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid past work ID"})
			return
		}

		var work models.PastWork
		if err := database.DB.Where("worker_profile_id = ?", profile.ID).First(&work, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Past work not found"})
			return
		}

		if err := database.DB.Delete(&work).Error; err != nil {
			respondError(c, err)
			return
		}
		uploads.DestroyImage(c.Request.Context(), work.PublicID)
		respondMessage(c, http.StatusOK, "Past work removed")
	})
}

// registerAdminUserRoutes adds account management endpoints for admins
func registerAdminUserRoutes(r *gin.RouterGroup, uploads *utils.Uploader) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))

	admin.GET("/users", func(c *gin.Context) {
		query := database.DB.Preload("WorkerProfile").Order("id")
		if role := c.Query("role"); role != "" {
			query = query.Where("role = ?", role)
		}

		var users []models.User
		if err := query.Find(&users).Error; err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, users)
	})

	admin.PATCH("/workers/:id/verify", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid worker ID"})
			return
		}

		var profile models.WorkerProfile
		if err := database.DB.Where("user_id = ?", id).First(&profile).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Worker profile not found"})
			return
		}

		var req struct {
			Verified bool `json:"verified"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
			return
		}

		profile.IsVerified = req.Verified
		if err := database.DB.Save(&profile).Error; err != nil {
			respondError(c, err)
			return
		}
		respondData(c, http.StatusOK, profile)
	})

	admin.DELETE("/users/:id", func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
			return
		}

		var user models.User
		if err := database.DB.Preload("WorkerProfile").
			Preload("WorkerProfile.Certificates").
			Preload("WorkerProfile.PastWorks").
			First(&user, id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
			return
		}
		if user.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Admin accounts cannot be deleted"})
			return
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if user.WorkerProfile != nil {
				profileID := user.WorkerProfile.ID
				if err := tx.Where("worker_profile_id = ?", profileID).Delete(&models.Certificate{}).Error; err != nil {
					return err
				}
				if err := tx.Where("worker_profile_id = ?", profileID).Delete(&models.PastWork{}).Error; err != nil {
					return err
				}
				if err := tx.Delete(user.WorkerProfile).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&user).Error
		})
		if err != nil {
			respondError(c, err)
			return
		}

		// Cloudinary cleanup happens after the commit; losing an orphan
		// asset is better than losing the delete.
		ctx := c.Request.Context()
		if user.ProfilePictureID != nil {
			uploads.DestroyImage(ctx, *user.ProfilePictureID)
		}
		if user.WorkerProfile != nil {
			if user.WorkerProfile.NICFrontID != nil {
				uploads.DestroyImage(ctx, *user.WorkerProfile.NICFrontID)
			}
			if user.WorkerProfile.NICBackID != nil {
				uploads.DestroyImage(ctx, *user.WorkerProfile.NICBackID)
			}
			for _, cert := range user.WorkerProfile.Certificates {
				uploads.DestroyImage(ctx, cert.PublicID)
			}
			for _, work := range user.WorkerProfile.PastWorks {
				uploads.DestroyImage(ctx, work.PublicID)
			}
		}

		respondMessage(c, http.StatusOK, "User deleted")
	})
}
