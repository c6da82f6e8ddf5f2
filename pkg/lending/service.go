package lending

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookclub/pkg/apierror"
	"bookclub/pkg/models"
)

// Service owns the lending lifecycle: borrow, return, overdue
// relabeling and the copy-count side effects on books.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type CreateRequest struct {
	BookID   string     `json:"bookId" binding:"required"`
	ReaderID string     `json:"readerId" binding:"required"`
	DueDate  *time.Time `json:"dueDate"`
}

type UpdateRequest struct {
	DueDate    *time.Time `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate"`
	Status     *string    `json:"status"`
}

// Create borrows a book for a reader. The copy decrement is a
// conditional update, so two borrowers cannot both take the last copy;
// any later failure rolls the decrement back.
func (s *Service) Create(req CreateRequest) (*models.Lending, error) {
	var lending models.Lending
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var book models.Book
		if err := tx.Where("book_uid = ?", req.BookID).First(&book).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Book not found")
			}
			return err
		}

		res := tx.Model(&models.Book{}).
			Where("book_uid = ? AND available_copies >= 1", req.BookID).
			UpdateColumn("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apierror.BadRequest("No available copies for this book")
		}

		var reader models.Reader
		if err := tx.Where("reader_uid = ?", req.ReaderID).First(&reader).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Reader not found")
			}
			return err
		}

		now := time.Now()
		dueDate := now.AddDate(0, 0, 14)
		if req.DueDate != nil {
			dueDate = *req.DueDate
		}

		lending = models.Lending{
			LendingUid: uuid.New().String(),
			BookUid:    book.BookUid,
			BookTitle:  book.Title,
			ReaderUid:  reader.ReaderUid,
			ReaderName: reader.Name,
			BorrowDate: now,
			DueDate:    dueDate,
			Status:     models.StatusBorrowed,
		}
		if err := tx.Create(&lending).Error; err != nil {
			return apierror.BadRequest(err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lending, nil
}

// Complete returns a borrowed book. Completing twice fails; a lending
// whose book was deleted in the meantime still completes.
func (s *Service) Complete(lendingUid string) (*models.Lending, error) {
	var lending models.Lending
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lending_uid = ?", lendingUid).First(&lending).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Lending not found")
			}
			return err
		}
		if lending.ReturnDate != nil {
			return apierror.BadRequest("Lending already completed")
		}

		res := tx.Model(&models.Book{}).
			Where("book_uid = ?", lending.BookUid).
			UpdateColumn("available_copies", gorm.Expr("available_copies + 1"))
		if res.Error != nil {
			return res.Error
		}

		now := time.Now()
		lending.ReturnDate = &now
		lending.Status = models.StatusReturned
		return tx.Save(&lending).Error
	})
	if err != nil {
		return nil, err
	}
	return &lending, nil
}

func (s *Service) Get(lendingUid string) (*models.Lending, error) {
	var lending models.Lending
	if err := s.db.Where("lending_uid = ?", lendingUid).First(&lending).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Lending not found")
		}
		return nil, err
	}
	return &lending, nil
}

func (s *Service) List() ([]models.Lending, error) {
	var lendings []models.Lending
	if err := s.db.Order("id DESC").Find(&lendings).Error; err != nil {
		return nil, err
	}
	return lendings, nil
}

func (s *Service) Update(lendingUid string, req UpdateRequest) (*models.Lending, error) {
	lending, err := s.Get(lendingUid)
	if err != nil {
		return nil, err
	}
	if req.DueDate != nil {
		lending.DueDate = *req.DueDate
	}
	if req.ReturnDate != nil {
		lending.ReturnDate = req.ReturnDate
	}
	if req.Status != nil {
		lending.Status = *req.Status
	}
	if err := s.db.Save(lending).Error; err != nil {
		return nil, apierror.BadRequest(err.Error())
	}
	return lending, nil
}

func (s *Service) Delete(lendingUid string) error {
	lending, err := s.Get(lendingUid)
	if err != nil {
		return err
	}
	if lending.Status != models.StatusReturned {
		return apierror.BadRequest("Only lendings with status 'returned' can be deleted")
	}
	return s.db.Delete(lending).Error
}

// MarkOverdue relabels every open lending whose due date has passed and
// returns the matching set. The stored status is only a cache of this
// predicate, refreshed here before any overdue read. Running the scan
// twice is a no-op the second time. An empty readerUid means all
// readers.
func (s *Service) MarkOverdue(readerUid string) ([]models.Lending, error) {
	now := time.Now()

	update := s.db.Model(&models.Lending{}).
		Where("due_date < ? AND return_date IS NULL", now)
	if readerUid != "" {
		update = update.Where("reader_uid = ?", readerUid)
	}
	if err := update.UpdateColumn("status", models.StatusOverdue).Error; err != nil {
		return nil, err
	}

	query := s.db.Where("due_date < ? AND return_date IS NULL", now)
	if readerUid != "" {
		query = query.Where("reader_uid = ?", readerUid)
	}
	var lendings []models.Lending
	if err := query.Order("id DESC").Find(&lendings).Error; err != nil {
		return nil, err
	}
	return lendings, nil
}

func (s *Service) OverdueCount() (int64, error) {
	var count int64
	err := s.db.Model(&models.Lending{}).
		Where("due_date < ? AND return_date IS NULL", time.Now()).
		Count(&count).Error
	return count, err
}

func (s *Service) Count() (int64, error) {
	var count int64
	err := s.db.Model(&models.Lending{}).Count(&count).Error
	return count, err
}

func (s *Service) HistoryByBook(bookUid string) ([]models.Lending, error) {
	var lendings []models.Lending
	if err := s.db.Where("book_uid = ?", bookUid).Order("id DESC").Find(&lendings).Error; err != nil {
		return nil, err
	}
	return lendings, nil
}

func (s *Service) HistoryByReader(readerUid string) ([]models.Lending, error) {
	var lendings []models.Lending
	if err := s.db.Where("reader_uid = ?", readerUid).Order("id DESC").Find(&lendings).Error; err != nil {
		return nil, err
	}
	return lendings, nil
}

// HasOpenLendingForBook reports whether any lending of the book is not
// yet returned. Book deletion is refused while this holds.
func (s *Service) HasOpenLendingForBook(bookUid string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Lending{}).
		Where("book_uid = ? AND return_date IS NULL", bookUid).
		Count(&count).Error
	return count > 0, err
}

func (s *Service) HasOpenLendingForReader(readerUid string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Lending{}).
		Where("reader_uid = ? AND return_date IS NULL", readerUid).
		Count(&count).Error
	return count > 0, err
}
