package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookclub/pkg/apierror"
	"bookclub/pkg/models"
)

type createBookRequest struct {
	Title           string     `json:"title" binding:"required"`
	Author          string     `json:"author" binding:"required"`
	PublishedDate   *time.Time `json:"publishedDate"`
	Genre           string     `json:"genre" binding:"required"`
	AvailableCopies int        `json:"availableCopies" binding:"gte=0"`
}

type updateBookRequest struct {
	Title           *string    `json:"title"`
	Author          *string    `json:"author"`
	PublishedDate   *time.Time `json:"publishedDate"`
	Genre           *string    `json:"genre"`
	AvailableCopies *int       `json:"availableCopies"`
}

func (s *Server) createBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}

	publishedDate := time.Now()
	if req.PublishedDate != nil {
		publishedDate = *req.PublishedDate
	}

	book := models.Book{
		BookUid:         uuid.New().String(),
		Title:           req.Title,
		Author:          req.Author,
		PublishedDate:   publishedDate,
		Genre:           req.Genre,
		AvailableCopies: req.AvailableCopies,
	}
	if err := s.db.Create(&book).Error; err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (s *Server) getBooks(c *gin.Context) {
	var books []models.Book
	if err := s.db.Order("id DESC").Find(&books).Error; err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

func (s *Server) getBook(c *gin.Context) {
	book, err := s.findBook(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) updateBook(c *gin.Context) {
	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}

	book, err := s.findBook(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.PublishedDate != nil {
		book.PublishedDate = *req.PublishedDate
	}
	if req.Genre != nil {
		book.Genre = *req.Genre
	}
	if req.AvailableCopies != nil {
		if *req.AvailableCopies < 0 {
			apierror.Write(c, apierror.BadRequest("availableCopies must not be negative"))
			return
		}
		book.AvailableCopies = *req.AvailableCopies
	}

	if err := s.db.Save(book).Error; err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) deleteBook(c *gin.Context) {
	book, err := s.findBook(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}

	open, err := s.lendings.HasOpenLendingForBook(book.BookUid)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	if open {
		apierror.Write(c, apierror.BadRequest("Cannot delete book with active lendings"))
		return
	}

	if err := s.db.Delete(book).Error; err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

func (s *Server) getBookCountWithoutCopies(c *gin.Context) {
	var count int64
	if err := s.db.Model(&models.Book{}).Count(&count).Error; err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) getBookCountWithCopies(c *gin.Context) {
	var total int64
	err := s.db.Model(&models.Book{}).
		Select("COALESCE(SUM(available_copies), 0)").
		Scan(&total).Error
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

func (s *Server) findBook(bookUid string) (*models.Book, error) {
	var book models.Book
	if err := s.db.Where("book_uid = ?", bookUid).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Book not found")
		}
		return nil, err
	}
	return &book, nil
}
