package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Sirneij/cryptoflow/internal/domain"
)

// ErrQuestionNotFound covers both an absent question and one owned by
// somebody else. Mutations never reveal which.
var ErrQuestionNotFound = errors.New("question not found")

// QuestionUpdate carries the replacement state for an ownership-checked
// update. The tag set always replaces the existing links wholesale.
type QuestionUpdate struct {
	Title      string
	Slug       string
	Content    string
	RawContent string
	TagIDs     []string
}

type QuestionRepository interface {
	Create(ctx context.Context, question *domain.Question, tagIDs []string) (*domain.QuestionWithAuthorAndTags, error)
	Update(ctx context.Context, id, authorID uuid.UUID, upd QuestionUpdate) (*domain.QuestionWithAuthorAndTags, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
	GetBySlug(ctx context.Context, slug string) (*domain.QuestionWithAuthorAndTags, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestionWithAuthorAndTags, error)
	List(ctx context.Context) ([]domain.QuestionWithAuthorAndTags, error)
}

type GormQuestionRepository struct{ db *gorm.DB }

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &GormQuestionRepository{db: db}
}

// Create inserts the question and its tag links and re-reads the
// composed view, all in one transaction. Tag ids are validated inside
// the transaction so a partial insert can never survive an unknown tag,
// and the returned view comes from the write's own snapshot.
func (r *GormQuestionRepository) Create(ctx context.Context, question *domain.Question, tagIDs []string) (*domain.QuestionWithAuthorAndTags, error) {
	var composed *domain.QuestionWithAuthorAndTags
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateTagIDs(tx, tagIDs); err != nil {
			return err
		}
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		if err := replaceQuestionTags(tx, question.ID, tagIDs); err != nil {
			return err
		}
		var err error
		composed, err = r.getOne(tx, "q.id = ?", question.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return composed, nil
}

// Update rewrites the question only if the caller authored it, then
// re-reads the composed view before the transaction commits. The
// author check rides in the WHERE clause, so a stranger's attempt and a
// missing row are indistinguishable: zero rows touched, ErrQuestionNotFound.
func (r *GormQuestionRepository) Update(ctx context.Context, id, authorID uuid.UUID, upd QuestionUpdate) (*domain.QuestionWithAuthorAndTags, error) {
	var composed *domain.QuestionWithAuthorAndTags
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateTagIDs(tx, upd.TagIDs); err != nil {
			return err
		}
		res := tx.Model(&domain.Question{}).
			Where("id = ? AND author_id = ?", id, authorID).
			Updates(map[string]any{
				"title":       upd.Title,
				"slug":        upd.Slug,
				"content":     upd.Content,
				"raw_content": upd.RawContent,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrQuestionNotFound
		}
		if err := tx.Where("question_id = ?", id).Delete(&domain.QuestionTag{}).Error; err != nil {
			return err
		}
		if err := replaceQuestionTags(tx, id, upd.TagIDs); err != nil {
			return err
		}
		var err error
		composed, err = r.getOne(tx, "q.id = ?", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return composed, nil
}

// Delete removes the question only if the caller authored it. Tag links
// and answers follow via ON DELETE CASCADE.
func (r *GormQuestionRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&domain.Question{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (r *GormQuestionRepository) GetBySlug(ctx context.Context, slug string) (*domain.QuestionWithAuthorAndTags, error) {
	return r.getOne(r.db.WithContext(ctx), "q.slug = ?", slug)
}

func (r *GormQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuestionWithAuthorAndTags, error) {
	return r.getOne(r.db.WithContext(ctx), "q.id = ?", id)
}

// getOne runs the composed query on the handle it is given, so the
// write paths can re-read on their own transaction.
func (r *GormQuestionRepository) getOne(db *gorm.DB, cond string, arg any) (*domain.QuestionWithAuthorAndTags, error) {
	var rows []questionRow
	query := fmt.Sprintf(composedQuestionQuery, r.tagAggExpr(), "WHERE "+cond)
	if err := db.Raw(query, arg).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrQuestionNotFound
	}
	composed, err := rows[0].toComposed()
	if err != nil {
		return nil, err
	}
	return composed, nil
}

// List returns every question newest-first, each with its author and
// full tag set. Rows are deduplicated by question id on the client,
// keeping the first occurrence.
func (r *GormQuestionRepository) List(ctx context.Context) ([]domain.QuestionWithAuthorAndTags, error) {
	var rows []questionRow
	query := fmt.Sprintf(composedQuestionQuery, r.tagAggExpr(), "")
	if err := r.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.QuestionWithAuthorAndTags, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		composed, err := row.toComposed()
		if err != nil {
			return nil, err
		}
		if _, ok := seen[composed.ID]; ok {
			continue
		}
		seen[composed.ID] = struct{}{}
		out = append(out, *composed)
	}
	return out, nil
}

func replaceQuestionTags(tx *gorm.DB, questionID uuid.UUID, tagIDs []string) error {
	links := make([]domain.QuestionTag, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		links = append(links, domain.QuestionTag{QuestionID: questionID, TagID: tagID})
	}
	return tx.Create(&links).Error
}

// composedQuestionQuery assembles the full read model in one round
// trip. The first placeholder is the dialect-specific tag aggregation,
// the second an optional WHERE clause. Grouping by the two primary keys
// collapses the tag join back to one row per question.
const composedQuestionQuery = `
SELECT
  q.id, q.title, q.slug, q.content, q.raw_content, q.created_at, q.updated_at,
  u.id AS author_id,
  u.email AS author_email,
  u.first_name AS author_first_name,
  u.last_name AS author_last_name,
  u.is_active AS author_is_active,
  u.is_staff AS author_is_staff,
  u.is_superuser AS author_is_superuser,
  u.thumbnail AS author_thumbnail,
  u.date_joined AS author_date_joined,
  %s AS tags_json
FROM questions q
JOIN users u ON u.id = q.author_id
LEFT JOIN question_tags qt ON qt.question_id = q.id
LEFT JOIN tags t ON t.id = qt.tag_id
%s
GROUP BY q.id, u.id
ORDER BY q.created_at DESC`

func (r *GormQuestionRepository) tagAggExpr() string {
	if r.db.Dialector.Name() == "postgres" {
		return `COALESCE(JSON_AGG(JSON_BUILD_OBJECT(
  'id', t.id, 'name', t.name, 'symbol', t.symbol,
  'image', t.image, 'market_cap_rank', t.market_cap_rank
)) FILTER (WHERE t.id IS NOT NULL), '[]')`
	}
	return `COALESCE(json_group_array(json_object(
  'id', t.id, 'name', t.name, 'symbol', t.symbol,
  'image', t.image, 'market_cap_rank', t.market_cap_rank
)) FILTER (WHERE t.id IS NOT NULL), '[]')`
}

type questionRow struct {
	ID                uuid.UUID
	Title             string
	Slug              string
	Content           string
	RawContent        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	AuthorID          uuid.UUID
	AuthorEmail       string
	AuthorFirstName   string
	AuthorLastName    string
	AuthorIsActive    bool
	AuthorIsStaff     bool
	AuthorIsSuperuser bool
	AuthorThumbnail   *string
	AuthorDateJoined  time.Time
	TagsJSON          string `gorm:"column:tags_json"`
}

func (row questionRow) toComposed() (*domain.QuestionWithAuthorAndTags, error) {
	var tags []domain.Tag
	if err := json.Unmarshal([]byte(row.TagsJSON), &tags); err != nil {
		return nil, fmt.Errorf("decode aggregated tags: %w", err)
	}
	return &domain.QuestionWithAuthorAndTags{
		ID:         row.ID,
		Title:      row.Title,
		Slug:       row.Slug,
		Content:    row.Content,
		RawContent: row.RawContent,
		Author: domain.UserVisible{
			ID:          row.AuthorID,
			Email:       row.AuthorEmail,
			FirstName:   row.AuthorFirstName,
			LastName:    row.AuthorLastName,
			IsActive:    row.AuthorIsActive,
			IsStaff:     row.AuthorIsStaff,
			IsSuperuser: row.AuthorIsSuperuser,
			Thumbnail:   row.AuthorThumbnail,
			DateJoined:  row.AuthorDateJoined,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
		Tags:      tags,
	}, nil
}
