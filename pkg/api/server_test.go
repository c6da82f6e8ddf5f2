package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bookclub/pkg/config"
	"bookclub/pkg/database"
	"bookclub/pkg/models"
	"bookclub/pkg/token"
)

type sentMail struct {
	To      string
	Subject string
	Text    string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(to, subject, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Text: text})
	return nil
}

func setupTestServer(t *testing.T) (*Server, *fakeSender, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal("failed to connect test database")
	}
	if err := database.Migrate(db); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		CORSOrigins: []string{"http://localhost:5173"},
	}
	tokens := token.NewManager("test-access-secret", "test-refresh-secret",
		15*time.Minute, time.Hour)
	sender := &fakeSender{}
	return NewServer(db, cfg, tokens, sender), sender, db
}

func jsonContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func seedTestBook(t *testing.T, db *gorm.DB, copies int) models.Book {
	book := models.Book{
		BookUid:         uuid.New().String(),
		Title:           "Test Book",
		Author:          "Test Author",
		PublishedDate:   time.Now(),
		Genre:           "Fiction",
		AvailableCopies: copies,
	}
	if err := db.Create(&book).Error; err != nil {
		t.Fatal(err)
	}
	return book
}

func seedTestReader(t *testing.T, db *gorm.DB) models.Reader {
	reader := models.Reader{
		ReaderUid:    uuid.New().String(),
		Name:         "Test Reader",
		Email:        uuid.New().String() + "@example.com",
		PhoneNumber:  "0771234567",
		Address:      "Test Address",
		RegisterDate: time.Now(),
	}
	if err := db.Create(&reader).Error; err != nil {
		t.Fatal(err)
	}
	return reader
}
