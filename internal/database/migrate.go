package database

import (
	"gorm.io/gorm"

	"github.com/Sirneij/cryptoflow/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Tag{},
		&domain.Question{},
		&domain.QuestionTag{},
		&domain.Answer{},
	)
}
