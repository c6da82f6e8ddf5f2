package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bookclub/pkg/apierror"
	"bookclub/pkg/lending"
	"bookclub/pkg/mail"
)

func (s *Server) createLending(c *gin.Context) {
	var req lending.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}
	created, err := s.lendings.Create(req)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) completeLending(c *gin.Context) {
	completed, err := s.lendings.Complete(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, completed)
}

func (s *Server) getLendings(c *gin.Context) {
	lendings, err := s.lendings.List()
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, lendings)
}

func (s *Server) getLending(c *gin.Context) {
	found, err := s.lendings.Get(c.Param("id"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (s *Server) updateLending(c *gin.Context) {
	var req lending.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}
	updated, err := s.lendings.Update(c.Param("id"), req)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteLending(c *gin.Context) {
	if err := s.lendings.Delete(c.Param("id")); err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Lending deleted successfully"})
}

func (s *Server) getLendingCount(c *gin.Context) {
	count, err := s.lendings.Count()
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) getLendingHistoryByBook(c *gin.Context) {
	lendings, err := s.lendings.HistoryByBook(c.Param("bookId"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, lendings)
}

func (s *Server) getLendingHistoryByReader(c *gin.Context) {
	lendings, err := s.lendings.HistoryByReader(c.Param("readerId"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, lendings)
}

func (s *Server) getOverdueLendings(c *gin.Context) {
	lendings, err := s.lendings.MarkOverdue("")
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, lendings)
}

func (s *Server) getOverdueByReader(c *gin.Context) {
	reader, err := s.findReader(c.Param("readerId"))
	if err != nil {
		apierror.Write(c, err)
		return
	}
	lendings, err := s.lendings.MarkOverdue(reader.ReaderUid)
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, lendings)
}

func (s *Server) getOverdueCount(c *gin.Context) {
	count, err := s.lendings.OverdueCount()
	if err != nil {
		apierror.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overdueCount": count})
}

func (s *Server) notifyOverdue(c *gin.Context) {
	found, err := s.lendings.Get(c.Param("lendingId"))
	if err != nil {
		apierror.Write(c, err)
		return
	}

	reader, err := s.findReader(found.ReaderUid)
	if err != nil || reader.Email == "" {
		apierror.Write(c, apierror.NotFound("Reader or reader email not found"))
		return
	}

	subject, text := mail.ComposeOverdueNotice(found)
	if err := s.notifier.Send(reader.Email, subject, text); err != nil {
		apierror.Write(c, apierror.Unavailable(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}

type notifyRawRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject" binding:"required"`
	Text    string `json:"text" binding:"required"`
}

func (s *Server) notifyRaw(c *gin.Context) {
	var req notifyRawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.Write(c, apierror.BadRequest(err.Error()))
		return
	}
	if err := s.notifier.Send(req.To, req.Subject, req.Text); err != nil {
		apierror.Write(c, apierror.Unavailable(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}
