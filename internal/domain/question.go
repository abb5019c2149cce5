package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Question struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	Slug       string    `gorm:"size:255;index;not null" json:"slug"`
	Content    string    `gorm:"not null" json:"content"`
	RawContent string    `gorm:"not null" json:"raw_content"`
	AuthorID   uuid.UUID `gorm:"type:uuid;index;not null" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// QuestionTag associates a question with 1 to 4 tags. Rows are owned by the
// question repository and replaced wholesale on every question update.
type QuestionTag struct {
	QuestionID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Question   Question  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	TagID      string    `gorm:"size:128;primaryKey"`
	Tag        Tag       `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}

func (QuestionTag) TableName() string { return "question_tags" }

// QuestionWithAuthorAndTags is the composed read model: one question joined
// with its author's visible profile and its full tag set.
type QuestionWithAuthorAndTags struct {
	ID         uuid.UUID   `json:"id"`
	Title      string      `json:"title"`
	Slug       string      `json:"slug"`
	Content    string      `json:"content"`
	RawContent string      `json:"raw_content"`
	Author     UserVisible `json:"author"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Tags       []Tag       `json:"tags"`
}
