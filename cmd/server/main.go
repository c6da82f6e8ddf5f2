package main

import (
	"errors"
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"bookclub/pkg/api"
	"bookclub/pkg/config"
	"bookclub/pkg/database"
	"bookclub/pkg/mail"
	"bookclub/pkg/models"
	"bookclub/pkg/token"
)

func main() {
	log.Println("Starting book club service...")

	cfg := config.Load()

	db, err := database.Init(cfg)
	if err != nil {
		log.Fatalf("Database init failed: %v", err)
	}

	if err := seedAdmin(db, cfg); err != nil {
		log.Fatalf("Admin seed failed: %v", err)
	}

	tokens := token.NewManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	notifier := mail.NewNotifier(mail.NewSMTPSender(cfg))

	server := api.NewServer(db, cfg, tokens, notifier)

	log.Printf("Book club service starting on :%s", cfg.Port)
	if err := server.Router().Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// seedAdmin creates the bootstrap admin account when configured and
// absent, so the admin-gated signup route has a first caller.
func seedAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		UserUid:  uuid.New().String(),
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: string(hash),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("Created admin user: %s", admin.Email)
	return nil
}
