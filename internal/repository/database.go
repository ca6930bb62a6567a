package repository

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by lookups that matched no row.
	ErrNotFound = gorm.ErrRecordNotFound
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = gorm.ErrDuplicatedKey
)

func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Channel{},
		&models.ChannelMember{},
		&models.ReadCursor{},
	)
}

// SeedAdmin creates the default administrator when no user has that username yet.
func SeedAdmin(users UserRepositoryInterface, username, password string) error {
	if _, err := users.FindByUsername(username); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     username,
		PasswordHash: string(hashed),
		Nickname:     "Administrator",
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
	}
	if err := users.Create(admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	slog.Info("default admin account created", "username", username)
	return nil
}
