package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bookclub/pkg/config"
	"bookclub/pkg/lending"
	"bookclub/pkg/mail"
	"bookclub/pkg/models"
	"bookclub/pkg/token"
)

type Server struct {
	db       *gorm.DB
	cfg      *config.Config
	tokens   *token.Manager
	notifier mail.Sender
	lendings *lending.Service
}

func NewServer(db *gorm.DB, cfg *config.Config, tokens *token.Manager, notifier mail.Sender) *Server {
	return &Server{
		db:       db,
		cfg:      cfg,
		tokens:   tokens,
		notifier: notifier,
		lendings: lending.NewService(db),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", s.signup)
	auth.POST("/admin/signup", s.authenticateToken, s.requireRole(models.RoleAdmin), s.adminSignup)
	auth.POST("/login", s.login)
	auth.POST("/refresh-token", s.refreshToken)
	auth.POST("/logout", s.logout)
	auth.GET("/users", s.authenticateToken, s.requireRole(models.RoleAdmin), s.getUsers)
	auth.DELETE("/users/:id", s.authenticateToken, s.requireRole(models.RoleAdmin), s.deleteUser)

	book := api.Group("/book", s.authenticateToken)
	book.POST("", s.createBook)
	book.GET("", s.getBooks)
	book.GET("/count/without-copies", s.getBookCountWithoutCopies)
	book.GET("/count/with-copies", s.getBookCountWithCopies)
	book.GET("/:id", s.getBook)
	book.PUT("/:id", s.updateBook)
	book.DELETE("/:id", s.deleteBook)

	reader := api.Group("/reader", s.authenticateToken)
	reader.POST("", s.createReader)
	reader.GET("", s.getReaders)
	reader.GET("/count", s.getReaderCount)
	reader.GET("/:id", s.getReader)
	reader.PUT("/:id", s.updateReader)
	reader.DELETE("/:id", s.deleteReader)

	lend := api.Group("/lending", s.authenticateToken)
	lend.POST("", s.createLending)
	lend.PATCH("/complete/:id", s.completeLending)
	lend.GET("", s.getLendings)
	lend.GET("/count", s.getLendingCount)
	lend.GET("/history/book/:bookId", s.getLendingHistoryByBook)
	lend.GET("/history/reader/:readerId", s.getLendingHistoryByReader)
	lend.GET("/overdue/lendings", s.getOverdueLendings)
	lend.GET("/overdue/reader/:readerId", s.getOverdueByReader)
	lend.GET("/overdue/count", s.getOverdueCount)
	lend.POST("/overdue/notify/:lendingId", s.notifyOverdue)
	lend.POST("/overdue/notify", s.notifyRaw)
	lend.GET("/:id", s.getLending)
	lend.PUT("/:id", s.updateLending)
	lend.DELETE("/:id", s.deleteLending)

	r.GET("/manage/health", s.healthCheck)

	return r
}

func (s *Server) healthCheck(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
