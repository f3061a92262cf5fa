package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"azhome-server/config"
	"azhome-server/database"
	"azhome-server/models"
	"azhome-server/utils"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Load()

	dsn := fmt.Sprintf("file:middleware_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		FullName:     "Auth Test",
		Email:        fmt.Sprintf("%s-%s@test.com", t.Name(), role),
		PasswordHash: "hashed",
		Address:      "12 Main Street",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func protectedRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware()}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})
	router.GET("/protected", chain...)
	return router
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	db := setupAuthTest(t)
	user := createUser(t, db, models.RoleUser)

	token, err := utils.GenerateToken(user.ID)
	require.NoError(t, err)

	router := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), fmt.Sprintf("%d", user.ID))
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	setupAuthTest(t)

	router := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	setupAuthTest(t)

	router := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "token-without-bearer-prefix")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	setupAuthTest(t)

	router := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareUnknownUser(t *testing.T) {
	setupAuthTest(t)

	// Token for a user that does not exist in the database
	token, err := utils.GenerateToken(9999)
	require.NoError(t, err)

	router := protectedRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	db := setupAuthTest(t)
	worker := createUser(t, db, models.RoleWorker)
	client := createUser(t, db, models.RoleUser)

	router := protectedRouter(RequireRoles(models.RoleWorker))

	workerToken, err := utils.GenerateToken(worker.ID)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+workerToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	clientToken, err := utils.GenerateToken(client.ID)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+clientToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebSocketAuthMiddlewareQueryToken(t *testing.T) {
	db := setupAuthTest(t)
	user := createUser(t, db, models.RoleUser)

	token, err := utils.GenerateToken(user.ID)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/ws", WebSocketAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetUint("user_id")})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ws?token="+token, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/ws", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
