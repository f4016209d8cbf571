// Package apitest hosts an in-process TaskFlow backend for tests: the same
// REST contract the production API serves, backed by an in-memory SQLite
// database, with per-route fault injection for failure-path tests.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var jwtSecret = []byte("apitest-insecure-secret")

// Server is a fake TaskFlow backend bound to one httptest listener.
type Server struct {
	DB   *gorm.DB
	HTTP *httptest.Server

	mu     sync.Mutex
	faults map[string][]int
	hub    wsHub
}

// New starts a fake backend. It is torn down with the test.
func New(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&userRow{}, &orgRow{}, &projectRow{}, &taskRow{}))

	s := &Server{DB: db, faults: make(map[string][]int)}

	engine := gin.New()
	engine.Use(s.faultMiddleware())
	s.registerRoutes(engine)

	s.HTTP = httptest.NewServer(engine)
	t.Cleanup(s.HTTP.Close)
	return s
}

// URL returns the base URL clients should point at.
func (s *Server) URL() string { return s.HTTP.URL }

// FailNext queues an error status for the next request matching
// "METHOD /path" (exact path). Multiple calls queue multiple failures.
func (s *Server) FailNext(method, path string, status int) {
	key := method + " " + path
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[key] = append(s.faults[key], status)
}

func (s *Server) faultMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Request.Method + " " + c.Request.URL.Path
		s.mu.Lock()
		queue := s.faults[key]
		var status int
		if len(queue) > 0 {
			status = queue[0]
			s.faults[key] = queue[1:]
		}
		s.mu.Unlock()
		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"detail": "injected failure"})
			return
		}
		c.Next()
	}
}

func (s *Server) registerRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := engine.Group("/api/v1/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
		auth.GET("/google", s.handleGoogleRedirect)
	}

	protected := engine.Group("/api/v1")
	protected.Use(s.authMiddleware())
	{
		protected.GET("/auth/me", s.handleMe)
		protected.PATCH("/auth/me", s.handleUpdateMe)
		protected.POST("/auth/change-password", s.handleChangePassword)

		protected.GET("/projects", s.handleListProjects)
		protected.POST("/projects", s.handleCreateProject)
		protected.GET("/projects/:id", s.handleGetProject)
		protected.PATCH("/projects/:id", s.handleUpdateProject)
		protected.DELETE("/projects/:id", s.handleDeleteProject)

		protected.GET("/tasks", s.handleListTasks)
		protected.POST("/tasks", s.handleCreateTask)
		protected.GET("/tasks/:id", s.handleGetTask)
		protected.PATCH("/tasks/:id", s.handleUpdateTask)
		protected.DELETE("/tasks/:id", s.handleDeleteTask)
		protected.PATCH("/tasks/:id/archive", s.handleArchiveTask)

		protected.GET("/analytics/dashboard", s.handleDashboard)
		protected.GET("/analytics/timeseries", s.handleTimeSeries)
	}

	engine.GET("/ws/task-updates", s.handleTaskUpdatesWS)
}

// authMiddleware validates the bearer token and stores the user id in the
// request context.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.Split(header, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		userID, err := parseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

func mintToken(userID int64) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

func parseToken(tokenString string) (int64, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return 0, fmt.Errorf("bad subject: %w", err)
	}
	return userID, nil
}

func (s *Server) currentUser(c *gin.Context) (userRow, bool) {
	userID := c.GetInt64("user_id")
	var user userRow
	if err := s.DB.First(&user, userID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "User not found"})
		return userRow{}, false
	}
	return user, true
}

func detailError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}

// validationError emits the backend's 422 envelope for one bad field.
func validationError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"detail": []gin.H{
			{"loc": []string{"body", field}, "msg": msg, "type": "value_error"},
		},
	})
}

func splitTags(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
