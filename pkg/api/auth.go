package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookclub/pkg/apierror"
	"bookclub/pkg/models"
)

const refreshCookie = "refreshToken"

type signupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) signup(c *gin.Context) {
	s.createUser(c, models.RoleUser)
}

func (s *Server) adminSignup(c *gin.Context) {
	s.createUser(c, models.RoleAdmin)
}

func (s *Server) createUser(c *gin.Context, role string) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		apierror.Write(c, apierror.BadRequest("Email already registered"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apierror.Write(c, err)
		return
	}

	user := models.User{
		UserUid:  uuid.New().String(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		apierror.Write(c, apierror.Forbidden("Invalid email or password"))
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		apierror.Write(c, apierror.Forbidden("Invalid email or password"))
		return
	}

	accessToken, err := s.tokens.NewAccessToken(user.UserUid, user.Role)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	refreshToken, err := s.tokens.NewRefreshToken(user.UserUid, user.Role)
	if err != nil {
		apierror.Write(c, err)
		return
	}

	c.SetCookie(refreshCookie, refreshToken, int(s.tokens.RefreshTTL().Seconds()), "/api/auth", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"id":          user.UserUid,
		"name":        user.Name,
		"email":       user.Email,
		"role":        user.Role,
		"accessToken": accessToken,
	})
}

func (s *Server) refreshToken(c *gin.Context) {
	raw, err := c.Cookie(refreshCookie)
	if err != nil || raw == "" {
		apierror.Write(c, apierror.Forbidden("Refresh token not found"))
		return
	}

	claims, err := s.tokens.ParseRefreshToken(raw)
	if err != nil {
		apierror.Write(c, apierror.Forbidden("Invalid refresh token"))
		return
	}

	var user models.User
	if err := s.db.Where("user_uid = ?", claims.UserID).First(&user).Error; err != nil {
		apierror.Write(c, apierror.Forbidden("User not found"))
		return
	}

	accessToken, err := s.tokens.NewAccessToken(user.UserUid, user.Role)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, "/api/auth", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (s *Server) getUsers(c *gin.Context) {
	var users []models.User
	if err := s.db.Order("id DESC").Find(&users).Error; err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) deleteUser(c *gin.Context) {
	var user models.User
	if err := s.db.Where("user_uid = ?", c.Param("id")).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierror.Write(c, apierror.NotFound("User not found"))
			return
		}
		apierror.Write(c, err)
		return
	}

	if caller := currentUser(c); caller != nil && caller.UserUid == user.UserUid {
		apierror.Write(c, apierror.BadRequest("Cannot delete your own account"))
		return
	}

	if err := s.db.Delete(&user).Error; err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
