package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sirneij/cryptoflow/internal/domain"
)

// ErrAnswerNotFound covers both an absent answer and one owned by
// somebody else.
var ErrAnswerNotFound = errors.New("answer not found")

type AnswerRepository interface {
	Create(ctx context.Context, answer *domain.Answer) (*domain.AnswerWithAuthor, error)
	ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.AnswerWithAuthor, error)
	Update(ctx context.Context, id, authorID uuid.UUID, content, rawContent string) error
	Delete(ctx context.Context, id, authorID uuid.UUID) error
}

type GormAnswerRepository struct{ db *gorm.DB }

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &GormAnswerRepository{db: db}
}

// Create inserts an answer and re-reads it with its author before the
// transaction commits. A dangling question id surfaces as
// ErrQuestionNotFound via the foreign key.
func (r *GormAnswerRepository) Create(ctx context.Context, answer *domain.Answer) (*domain.AnswerWithAuthor, error) {
	var composed *domain.AnswerWithAuthor
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(answer).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return ErrQuestionNotFound
			}
			return err
		}
		var author domain.User
		if err := tx.First(&author, "id = ?", answer.AuthorID).Error; err != nil {
			return err
		}
		composed = &domain.AnswerWithAuthor{
			ID:         answer.ID,
			Content:    answer.Content,
			RawContent: answer.RawContent,
			Author:     author.Visible(),
			CreatedAt:  answer.CreatedAt,
			UpdatedAt:  answer.UpdatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return composed, nil
}

func (r *GormAnswerRepository) ListByQuestion(ctx context.Context, questionID uuid.UUID) ([]domain.AnswerWithAuthor, error) {
	var answers []domain.Answer
	err := r.db.WithContext(ctx).
		Joins("Author").
		Where("question_id = ?", questionID).
		Order("answers.created_at DESC").
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.AnswerWithAuthor, 0, len(answers))
	for _, a := range answers {
		out = append(out, domain.AnswerWithAuthor{
			ID:         a.ID,
			Content:    a.Content,
			RawContent: a.RawContent,
			Author:     a.Author.Visible(),
			CreatedAt:  a.CreatedAt,
			UpdatedAt:  a.UpdatedAt,
		})
	}
	return out, nil
}

// Update rewrites the answer only if the caller authored it.
func (r *GormAnswerRepository) Update(ctx context.Context, id, authorID uuid.UUID, content, rawContent string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Answer{}).
		Where("id = ? AND author_id = ?", id, authorID).
		Updates(map[string]any{
			"content":     content,
			"raw_content": rawContent,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAnswerNotFound
	}
	return nil
}

// Delete removes the answer only if the caller authored it.
func (r *GormAnswerRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&domain.Answer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAnswerNotFound
	}
	return nil
}
