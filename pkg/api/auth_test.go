package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookclub/pkg/models"
	"bookclub/pkg/token"
)

func seedTestUser(t *testing.T, db *gorm.DB, email, password, role string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatal(err)
	}
	user := models.User{
		UserUid:  uuid.New().String(),
		Name:     "Test User",
		Email:    email,
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return user
}

func TestSignup(t *testing.T) {
	s, _, db := setupTestServer(t)

	c, w := jsonContext(t, "POST", "/api/auth/signup",
		`{"name":"Jane","email":"jane@example.com","password":"secret123"}`)
	s.signup(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response models.User
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, models.RoleUser, response.Role)
	assert.NotEmpty(t, response.UserUid)
	// the hash never leaves the process
	assert.NotContains(t, w.Body.String(), "password")

	var stored models.User
	db.Where("email = ?", "jane@example.com").First(&stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestSignupDuplicateEmail(t *testing.T) {
	s, _, db := setupTestServer(t)
	seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	c, w := jsonContext(t, "POST", "/api/auth/signup",
		`{"name":"Jane","email":"jane@example.com","password":"secret123"}`)
	s.signup(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupShortPassword(t *testing.T) {
	s, _, _ := setupTestServer(t)

	c, w := jsonContext(t, "POST", "/api/auth/signup",
		`{"name":"Jane","email":"jane@example.com","password":"abc"}`)
	s.signup(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminSignup(t *testing.T) {
	s, _, _ := setupTestServer(t)

	c, w := jsonContext(t, "POST", "/api/auth/admin/signup",
		`{"name":"Boss","email":"boss@example.com","password":"secret123"}`)
	s.adminSignup(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response models.User
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, models.RoleAdmin, response.Role)
}

func TestLogin(t *testing.T) {
	s, _, db := setupTestServer(t)
	user := seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	c, w := jsonContext(t, "POST", "/api/auth/login",
		`{"email":"jane@example.com","password":"secret123"}`)
	s.login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, user.UserUid, response["id"])
	assert.NotEmpty(t, response["accessToken"])

	cookies := w.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == refreshCookie && cookie.Value != "" {
			found = true
			assert.True(t, cookie.HttpOnly)
		}
	}
	assert.True(t, found, "refresh token cookie not set")
}

func TestLoginWrongPassword(t *testing.T) {
	s, _, db := setupTestServer(t)
	seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	c, w := jsonContext(t, "POST", "/api/auth/login",
		`{"email":"jane@example.com","password":"wrong-password"}`)
	s.login(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	s, _, _ := setupTestServer(t)

	c, w := jsonContext(t, "POST", "/api/auth/login",
		`{"email":"nobody@example.com","password":"secret123"}`)
	s.login(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefreshToken(t *testing.T) {
	s, _, db := setupTestServer(t)
	user := seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	refresh, err := s.tokens.NewRefreshToken(user.UserUid, user.Role)
	assert.NoError(t, err)

	c, w := jsonContext(t, "POST", "/api/auth/refresh-token", "")
	c.Request.AddCookie(&http.Cookie{Name: refreshCookie, Value: refresh})
	s.refreshToken(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response["accessToken"])

	claims, err := s.tokens.ParseAccessToken(response["accessToken"])
	assert.NoError(t, err)
	assert.Equal(t, user.UserUid, claims.UserID)
}

func TestRefreshTokenMissingCookie(t *testing.T) {
	s, _, _ := setupTestServer(t)

	c, w := jsonContext(t, "POST", "/api/auth/refresh-token", "")
	s.refreshToken(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	s, _, db := setupTestServer(t)
	user := seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	access, err := s.tokens.NewAccessToken(user.UserUid, user.Role)
	assert.NoError(t, err)

	c, w := jsonContext(t, "POST", "/api/auth/refresh-token", "")
	c.Request.AddCookie(&http.Cookie{Name: refreshCookie, Value: access})
	s.refreshToken(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogout(t *testing.T) {
	s, _, _ := setupTestServer(t)

	c, w := jsonContext(t, "POST", "/api/auth/logout", "")
	s.logout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	for _, cookie := range cookies {
		if cookie.Name == refreshCookie {
			assert.Empty(t, cookie.Value)
		}
	}
}

func TestGetUsers(t *testing.T) {
	s, _, db := setupTestServer(t)
	seedTestUser(t, db, "a@example.com", "secret123", models.RoleUser)
	seedTestUser(t, db, "b@example.com", "secret123", models.RoleAdmin)

	c, w := jsonContext(t, "GET", "/api/auth/users", "")
	s.getUsers(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var users []models.User
	json.Unmarshal(w.Body.Bytes(), &users)
	assert.Len(t, users, 2)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestDeleteUser(t *testing.T) {
	s, _, db := setupTestServer(t)
	admin := seedTestUser(t, db, "boss@example.com", "secret123", models.RoleAdmin)
	victim := seedTestUser(t, db, "gone@example.com", "secret123", models.RoleUser)

	c, w := jsonContext(t, "DELETE", "/api/auth/users/"+victim.UserUid, "")
	c.Params = gin.Params{gin.Param{Key: "id", Value: victim.UserUid}}
	c.Set(userKey, &admin)
	s.deleteUser(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDeleteUserSelf(t *testing.T) {
	s, _, db := setupTestServer(t)
	admin := seedTestUser(t, db, "boss@example.com", "secret123", models.RoleAdmin)

	c, w := jsonContext(t, "DELETE", "/api/auth/users/"+admin.UserUid, "")
	c.Params = gin.Params{gin.Param{Key: "id", Value: admin.UserUid}}
	c.Set(userKey, &admin)
	s.deleteUser(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUserNotFound(t *testing.T) {
	s, _, _ := setupTestServer(t)

	c, w := jsonContext(t, "DELETE", "/api/auth/users/missing", "")
	c.Params = gin.Params{gin.Param{Key: "id", Value: "missing"}}
	s.deleteUser(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthenticateToken(t *testing.T) {
	s, _, db := setupTestServer(t)
	user := seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	access, err := s.tokens.NewAccessToken(user.UserUid, user.Role)
	assert.NoError(t, err)

	c, _ := jsonContext(t, "GET", "/api/book", "")
	c.Request.Header.Set("Authorization", "Bearer "+access)
	s.authenticateToken(c)

	assert.False(t, c.IsAborted())
	authenticated := currentUser(c)
	assert.NotNil(t, authenticated)
	assert.Equal(t, user.UserUid, authenticated.UserUid)
}

func TestAuthenticateTokenMissing(t *testing.T) {
	s, _, _ := setupTestServer(t)

	c, w := jsonContext(t, "GET", "/api/book", "")
	s.authenticateToken(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Access token not found", response["error"])
}

func TestAuthenticateTokenInvalid(t *testing.T) {
	s, _, _ := setupTestServer(t)

	c, w := jsonContext(t, "GET", "/api/book", "")
	c.Request.Header.Set("Authorization", "Bearer not-a-token")
	s.authenticateToken(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Invalid access token", response["error"])
}

func TestAuthenticateTokenExpired(t *testing.T) {
	s, _, db := setupTestServer(t)
	user := seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	expired := token.NewManager("test-access-secret", "test-refresh-secret",
		-time.Minute, time.Hour)
	access, err := expired.NewAccessToken(user.UserUid, user.Role)
	assert.NoError(t, err)

	c, w := jsonContext(t, "GET", "/api/book", "")
	c.Request.Header.Set("Authorization", "Bearer "+access)
	s.authenticateToken(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Access token expired", response["error"])
}

func TestAuthenticateTokenDeletedUser(t *testing.T) {
	s, _, db := setupTestServer(t)
	user := seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	access, err := s.tokens.NewAccessToken(user.UserUid, user.Role)
	assert.NoError(t, err)
	db.Delete(&user)

	c, w := jsonContext(t, "GET", "/api/book", "")
	c.Request.Header.Set("Authorization", "Bearer "+access)
	s.authenticateToken(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole(t *testing.T) {
	s, _, db := setupTestServer(t)
	admin := seedTestUser(t, db, "boss@example.com", "secret123", models.RoleAdmin)
	plain := seedTestUser(t, db, "jane@example.com", "secret123", models.RoleUser)

	handler := s.requireRole(models.RoleAdmin)

	c, _ := jsonContext(t, "GET", "/api/auth/users", "")
	c.Set(userKey, &admin)
	handler(c)
	assert.False(t, c.IsAborted())

	c, w := jsonContext(t, "GET", "/api/auth/users", "")
	c.Set(userKey, &plain)
	handler(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = jsonContext(t, "GET", "/api/auth/users", "")
	handler(c)
	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}
