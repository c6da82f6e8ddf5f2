package models

import (
	"time"
)

const (
	StatusBorrowed = "borrowed"
	StatusReturned = "returned"
	StatusOverdue  = "overdue"

	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	BookUid         string    `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	Title           string    `gorm:"not null" json:"title"`
	Author          string    `gorm:"not null" json:"author"`
	PublishedDate   time.Time `json:"publishedDate"`
	Genre           string    `gorm:"not null" json:"genre"`
	AvailableCopies int       `gorm:"not null;default:0;check:available_copies >= 0" json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Reader struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	ReaderUid    string    `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	Name         string    `gorm:"size:80;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PhoneNumber  string    `gorm:"size:20;not null" json:"phoneNumber"`
	Address      string    `gorm:"not null" json:"address"`
	RegisterDate time.Time `json:"registerDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BookTitle and ReaderName are snapshots taken when the lending is
// created; they are not refreshed if the book or reader is renamed.
type Lending struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	LendingUid string     `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	BookUid    string     `gorm:"type:uuid;not null" json:"bookId"`
	BookTitle  string     `json:"bookTitle"`
	ReaderUid  string     `gorm:"type:uuid;not null" json:"readerId"`
	ReaderName string     `json:"readerName"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    time.Time  `gorm:"not null" json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     string     `gorm:"size:20;not null;default:'borrowed'" json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserUid   string    `gorm:"type:uuid;uniqueIndex;not null" json:"id"`
	Name      string    `gorm:"size:80;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
