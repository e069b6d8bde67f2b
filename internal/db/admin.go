package db

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nebari-dev/quill/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminSeed describes the bootstrap administrator.
type AdminSeed struct {
	Email    string
	Password string
	Name     string
}

// AdminSeedFromEnv reads ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_NAME.
func AdminSeedFromEnv() AdminSeed {
	return AdminSeed{
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
		Name:     os.Getenv("ADMIN_NAME"),
	}
}

// CreateDefaultAdmin creates an admin user from seed when credentials are
// provided and no users exist yet. It returns the created user, or nil when
// nothing was created.
func CreateDefaultAdmin(db *gorm.DB, seed AdminSeed) (*models.User, error) {
	if seed.Email == "" || seed.Password == "" {
		slog.Info("No ADMIN_EMAIL or ADMIN_PASSWORD set, skipping default admin creation")
		return nil, nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Info("Users already exist, skipping default admin creation")
		return nil, nil
	}

	return CreateAdmin(db, seed)
}

// CreateAdmin unconditionally inserts an admin user.
func CreateAdmin(db *gorm.DB, seed AdminSeed) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	name := seed.Name
	if name == "" {
		name = "Administrator"
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	slog.Info("Admin user created", "email", email, "user_id", user.ID)
	return &user, nil
}
