package apitest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	FullName         *string `json:"full_name"`
	OrganizationName *string `json:"organization_name"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detailError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		validationError(c, "email", "field required")
		return
	}
	if len(req.Password) < 8 {
		validationError(c, "password", "ensure this value has at least 8 characters")
		return
	}

	var existing userRow
	if err := s.DB.First(&existing, "email = ?", req.Email).Error; err == nil {
		detailError(c, http.StatusBadRequest, "Email already registered")
		return
	}

	orgName := "Personal"
	if req.OrganizationName != nil && *req.OrganizationName != "" {
		orgName = *req.OrganizationName
	}
	org := orgRow{Name: orgName}
	if err := s.DB.Create(&org).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to create organization")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	user := userRow{
		Email:          req.Email,
		PasswordHash:   string(hash),
		FullName:       req.FullName,
		IsActive:       true,
		OrganizationID: org.ID,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	c.JSON(http.StatusOK, user.toModel(org.Name))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detailError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	var user userRow
	if err := s.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		detailError(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		detailError(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	token, err := mintToken(user.ID)
	if err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleGoogleRedirect(c *gin.Context) {
	c.Redirect(http.StatusTemporaryRedirect, "https://accounts.google.com/o/oauth2/v2/auth")
}

func (s *Server) handleMe(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var org orgRow
	_ = s.DB.First(&org, user.OrganizationID).Error
	c.JSON(http.StatusOK, user.toModel(org.Name))
}

type updateMeRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

func (s *Server) handleUpdateMe(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detailError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if err := s.DB.Save(&user).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}
	var org orgRow
	_ = s.DB.First(&org, user.OrganizationID).Error
	c.JSON(http.StatusOK, user.toModel(org.Name))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detailError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		detailError(c, http.StatusBadRequest, "Incorrect current password")
		return
	}
	if len(req.NewPassword) < 8 {
		validationError(c, "new_password", "ensure this value has at least 8 characters")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}
	user.PasswordHash = string(hash)
	if err := s.DB.Save(&user).Error; err != nil {
		detailError(c, http.StatusInternalServerError, "Failed to update password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
