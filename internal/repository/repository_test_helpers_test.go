package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sirneij/cryptoflow/internal/domain"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Tag{},
		&domain.Question{},
		&domain.QuestionTag{},
		&domain.Answer{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}

func createActiveUserForTest(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:     email,
		Password:  "$argon2id$v=19$m=8,t=1,p=1$c2FsdA$aGFzaA",
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func seedTagsForTest(t *testing.T, db *gorm.DB, ids ...string) {
	t.Helper()
	tags := make([]domain.Tag, 0, len(ids))
	for i, id := range ids {
		tags = append(tags, domain.Tag{
			ID:            id,
			Name:          strings.ToUpper(id[:1]) + id[1:],
			Symbol:        id[:3],
			MarketCapRank: i + 1,
		})
	}
	if err := db.Create(&tags).Error; err != nil {
		t.Fatalf("seed tags: %v", err)
	}
}

func createQuestionForTest(t *testing.T, db *gorm.DB, authorID uuid.UUID, slug string, tagIDs []string) *domain.Question {
	t.Helper()
	repo := NewQuestionRepository(db)
	q := &domain.Question{
		Title:      "Question " + slug,
		Slug:       slug,
		Content:    "<p>body</p>",
		RawContent: "body",
		AuthorID:   authorID,
	}
	if _, err := repo.Create(context.Background(), q, tagIDs); err != nil {
		t.Fatalf("create question %s: %v", slug, err)
	}
	return q
}
