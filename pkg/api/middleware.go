package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bookclub/pkg/apierror"
	"bookclub/pkg/models"
	"bookclub/pkg/token"
)

const userKey = "user"

func (s *Server) authenticateToken(c *gin.Context) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		apierror.Write(c, apierror.Forbidden("Access token not found"))
		return
	}

	claims, err := s.tokens.ParseAccessToken(parts[1])
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			apierror.Write(c, apierror.Forbidden("Access token expired"))
			return
		}
		apierror.Write(c, apierror.Forbidden("Invalid access token"))
		return
	}

	var user models.User
	if err := s.db.Where("user_uid = ?", claims.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierror.Write(c, apierror.Forbidden("User not found"))
			return
		}
		apierror.Write(c, err)
		return
	}

	c.Set(userKey, &user)
	c.Next()
}

func (s *Server) requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != role {
			apierror.Write(c, apierror.Forbidden("Forbidden: Insufficient permissions"))
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
