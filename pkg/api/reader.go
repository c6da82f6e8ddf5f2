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

type createReaderRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Address     string `json:"address" binding:"required"`
}

type updateReaderRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Address     *string `json:"address"`
}

func (s *Server) createReader(c *gin.Context) {
	var req createReaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}

	reader := models.Reader{
		ReaderUid:    uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		RegisterDate: time.Now(),
	}
	if err := s.db.Create(&reader).Error; err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, reader)
}

func (s *Server) getReaders(c *gin.Context) {
	var readers []models.Reader
	if err := s.db.Order("id DESC").Find(&readers).Error; err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, readers)
}

func (s *Server) getReader(c *gin.Context) {
	reader, err := s.findReader(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, reader)
}

func (s *Server) updateReader(c *gin.Context) {
	var req updateReaderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}

	reader, err := s.findReader(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}

	if req.Name != nil {
		reader.Name = *req.Name
	}
	if req.Email != nil {
		reader.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		reader.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		reader.Address = *req.Address
	}

	if err := s.db.Save(reader).Error; err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}
	c.JSON(http.StatusOK, reader)
}

func (s *Server) deleteReader(c *gin.Context) {
	reader, err := s.findReader(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}

	open, err := s.lendings.HasOpenLendingForReader(reader.ReaderUid)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	if open {
		apierror.Write(c, apierror.BadRequest("Cannot delete reader with active lendings"))
		return
	}

	if err := s.db.Delete(reader).Error; err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reader deleted successfully"})
}

func (s *Server) getReaderCount(c *gin.Context) {
	var count int64
	if err := s.db.Model(&models.Reader{}).Count(&count).Error; err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) findReader(readerUid string) (*models.Reader, error) {
	var reader models.Reader
	if err := s.db.Where("reader_uid = ?", readerUid).First(&reader).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Reader not found")
		}
		return nil, err
	}
	return &reader, nil
}
