package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"azhome-server/database"
	"azhome-server/middleware"
	"azhome-server/models"
	"azhome-server/services"
	"azhome-server/utils"
)

type registerRequest struct {
	FullName   string  `json:"fullName" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=6"`
	Address    string  `json:"address"`
	Role       string  `json:"role"`
	Service    string  `json:"service"`
	HourlyRate float64 `json:"hourlyRate"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// RegisterAuthRoutes adds registration, login and password reset endpoints
func RegisterAuthRoutes(r *gin.RouterGroup, notifier *services.Notifier) {
	auth := r.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware())

	auth.POST("/register", func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request: " + err.Error()})
			return
		}

		role := models.UserRole(req.Role)
		if req.Role == "" {
			role = models.RoleUser
		}
		if !models.IsValidRole(role) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid role"})
			return
		}
		if role == models.RoleWorker {
			if !models.IsValidService(models.ServiceType(req.Service)) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A valid service is required for worker accounts"})
				return
			}
			if req.HourlyRate <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A positive hourly rate is required for worker accounts"})
				return
			}
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		var existing models.User
		if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "An account with this email already exists"})
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			respondError(c, err)
			return
		}

		user := models.User{
			FullName:     strings.TrimSpace(req.FullName),
			Email:        email,
			PasswordHash: hash,
			Address:      strings.TrimSpace(req.Address),
			Role:         role,
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if role == models.RoleWorker {
				profile := models.WorkerProfile{
					UserID:     user.ID,
					Service:    models.ServiceType(req.Service),
					HourlyRate: req.HourlyRate,
				}
				if err := tx.Create(&profile).Error; err != nil {
					return err
				}
				user.WorkerProfile = &profile
			}
			return nil
		})
		if err != nil {
			respondError(c, err)
			return
		}

		notifier.Welcome(user.Email, user.FullName)

		token, err := utils.GenerateToken(user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		respondData(c, http.StatusCreated, gin.H{"token": token, "user": user})
	})

	auth.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email and password are required"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		var user models.User
		if err := database.DB.Preload("WorkerProfile").Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}

		if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid email or password"})
			return
		}

		token, err := utils.GenerateToken(user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		respondData(c, http.StatusOK, gin.H{"token": token, "user": user})
	})

	auth.POST("/forgot-password", func(c *gin.Context) {
		var req forgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A valid email is required"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		var user models.User
		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
			// Same response either way so the endpoint can't be used to
			// probe which emails are registered.
			respondMessage(c, http.StatusOK, "If that email is registered, a reset code has been sent")
			return
		}

		code, err := utils.GenerateResetCode()
		if err != nil {
			respondError(c, err)
			return
		}

		codeHash, err := utils.HashPassword(code)
		if err != nil {
			respondError(c, err)
			return
		}

		expires := time.Now().Add(time.Hour)
		user.ResetPasswordToken = &codeHash
		user.ResetPasswordExpires = &expires
		if err := database.DB.Save(&user).Error; err != nil {
			respondError(c, err)
			return
		}

		notifier.PasswordReset(user.Email, code)
		respondMessage(c, http.StatusOK, "If that email is registered, a reset code has been sent")
	})

	auth.POST("/reset-password", func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email, code and new password are required"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		var user models.User
		if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or expired reset code"})
			return
		}

		if user.ResetPasswordToken == nil || user.ResetPasswordExpires == nil ||
			time.Now().After(*user.ResetPasswordExpires) ||
			!utils.CheckPasswordHash(req.Code, *user.ResetPasswordToken) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid or expired reset code"})
			return
		}

		hash, err := utils.HashPassword(req.NewPassword)
		if err != nil {
			respondError(c, err)
			return
		}

		user.PasswordHash = hash
		user.ResetPasswordToken = nil
		user.ResetPasswordExpires = nil
		if err := database.DB.Save(&user).Error; err != nil {
			respondError(c, err)
			return
		}

		respondMessage(c, http.StatusOK, "Password has been reset")
	})
}
