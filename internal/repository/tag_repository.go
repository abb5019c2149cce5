package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sirneij/cryptoflow/internal/domain"
)

// ErrInvalidTag is returned when a referenced tag id or name does not
// exist in the catalogue.
var ErrInvalidTag = errors.New("unknown tag")

type TagRepository interface {
	List(ctx context.Context) ([]domain.Tag, error)
	ValidateIDs(ctx context.Context, ids []string) error
	IDsByName(ctx context.Context, names []string) ([]string, error)
	Upsert(ctx context.Context, tags []domain.Tag) error
}

type GormTagRepository struct{ db *gorm.DB }

func NewTagRepository(db *gorm.DB) TagRepository {
	return &GormTagRepository{db: db}
}

func (r *GormTagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := r.db.WithContext(ctx).
		Order("market_cap_rank asc").Order("id asc").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// ValidateIDs checks that every id exists. An empty set is invalid:
// content must always carry at least one tag.
func (r *GormTagRepository) ValidateIDs(ctx context.Context, ids []string) error {
	return validateTagIDs(r.db.WithContext(ctx), ids)
}

// IDsByName resolves tag names to catalogue ids, preserving input
// order. Names match case-insensitively, so "BITCOIN" finds the
// catalogue's "Bitcoin". Any unknown name fails the whole set.
func (r *GormTagRepository) IDsByName(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, ErrInvalidTag
	}
	lowered := make([]string, len(names))
	for i, name := range names {
		lowered[i] = strings.ToLower(name)
	}
	var tags []domain.Tag
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("LOWER(name) IN ?", lowered).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(tags))
	for _, t := range tags {
		byName[strings.ToLower(t.Name)] = t.ID
	}
	ids := make([]string, 0, len(names))
	for _, name := range lowered {
		id, ok := byName[name]
		if !ok {
			return nil, ErrInvalidTag
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Upsert refreshes the catalogue from the market-data feed. Existing
// rows are updated in place so question links survive a refresh.
func (r *GormTagRepository) Upsert(ctx context.Context, tags []domain.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "symbol", "image", "market_cap_rank"}),
		}).
		Create(&tags).Error
}

func validateTagIDs(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return ErrInvalidTag
	}
	var count int64
	if err := tx.Model(&domain.Tag{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrInvalidTag
	}
	return nil
}
