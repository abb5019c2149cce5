package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/Sirneij/cryptoflow/internal/domain"
	"github.com/Sirneij/cryptoflow/internal/repository"
)

const maxTagsPerQuestion = 4

type AskQuestionInput struct {
	Title   string
	Content string
	// Tags is a comma-separated list of tag names as shown in the
	// catalogue, e.g. "Bitcoin,Ethereum".
	Tags string
}

type UpdateQuestionInput struct {
	Title   string
	Content string
	// Tags is a comma-separated list of tag ids, e.g. "bitcoin,ethereum".
	Tags string
}

// ContentService owns questions, answers and the tag catalogue. All
// content is authored as markdown; the rendered HTML and the raw source
// are persisted side by side.
type ContentService struct {
	questions repository.QuestionRepository
	answers   repository.AnswerRepository
	tags      repository.TagRepository
	renderer  *MarkdownRenderer
	logger    *slog.Logger
}

func NewContentService(
	questions repository.QuestionRepository,
	answers repository.AnswerRepository,
	tags repository.TagRepository,
	renderer *MarkdownRenderer,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		questions: questions,
		answers:   answers,
		tags:      tags,
		renderer:  renderer,
		logger:    logger,
	}
}

// AskQuestion creates a question from markdown plus 1 to 4 tag names.
func (s *ContentService) AskQuestion(ctx context.Context, authorID uuid.UUID, input AskQuestionInput) (*domain.QuestionWithAuthorAndTags, error) {
	title := strings.TrimSpace(input.Title)
	raw := strings.TrimSpace(input.Content)
	if title == "" || raw == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	names, err := splitTagList(input.Tags)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.tags.IDsByName(ctx, names)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.Render(raw)
	if err != nil {
		return nil, err
	}
	question := &domain.Question{
		Title:      title,
		Slug:       Slugify(title),
		Content:    html,
		RawContent: raw,
		AuthorID:   authorID,
	}
	composed, err := s.questions.Create(ctx, question, tagIDs)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "question created", "question_id", composed.ID, "slug", composed.Slug)
	return composed, nil
}

// UpdateQuestion rewrites a question the caller owns. Tag ids are
// sorted and deduplicated before the link set is replaced.
func (s *ContentService) UpdateQuestion(ctx context.Context, questionID, authorID uuid.UUID, input UpdateQuestionInput) (*domain.QuestionWithAuthorAndTags, error) {
	title := strings.TrimSpace(input.Title)
	raw := strings.TrimSpace(input.Content)
	if title == "" || raw == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}
	tagIDs, err := splitTagList(input.Tags)
	if err != nil {
		return nil, err
	}
	slices.Sort(tagIDs)
	tagIDs = slices.Compact(tagIDs)

	html, err := s.renderer.Render(raw)
	if err != nil {
		return nil, err
	}
	upd := repository.QuestionUpdate{
		Title:      title,
		Slug:       Slugify(title),
		Content:    html,
		RawContent: raw,
		TagIDs:     tagIDs,
	}
	return s.questions.Update(ctx, questionID, authorID, upd)
}

func (s *ContentService) DeleteQuestion(ctx context.Context, questionID, authorID uuid.UUID) error {
	if err := s.questions.Delete(ctx, questionID, authorID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "question deleted", "question_id", questionID)
	return nil
}

func (s *ContentService) GetQuestion(ctx context.Context, slug string) (*domain.QuestionWithAuthorAndTags, error) {
	return s.questions.GetBySlug(ctx, slug)
}

func (s *ContentService) ListQuestions(ctx context.Context) ([]domain.QuestionWithAuthorAndTags, error) {
	return s.questions.List(ctx)
}

// AnswerQuestion posts a markdown answer under an existing question.
func (s *ContentService) AnswerQuestion(ctx context.Context, questionID, authorID uuid.UUID, content string) (*domain.AnswerWithAuthor, error) {
	raw := strings.TrimSpace(content)
	if raw == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	html, err := s.renderer.Render(raw)
	if err != nil {
		return nil, err
	}
	answer := &domain.Answer{
		Content:    html,
		RawContent: raw,
		AuthorID:   authorID,
		QuestionID: questionID,
	}
	composed, err := s.answers.Create(ctx, answer)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "answer created", "answer_id", composed.ID, "question_id", questionID)
	return composed, nil
}

func (s *ContentService) ListAnswers(ctx context.Context, questionID uuid.UUID) ([]domain.AnswerWithAuthor, error) {
	return s.answers.ListByQuestion(ctx, questionID)
}

func (s *ContentService) UpdateAnswer(ctx context.Context, answerID, authorID uuid.UUID, content string) error {
	raw := strings.TrimSpace(content)
	if raw == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	html, err := s.renderer.Render(raw)
	if err != nil {
		return err
	}
	return s.answers.Update(ctx, answerID, authorID, html, raw)
}

func (s *ContentService) DeleteAnswer(ctx context.Context, answerID, authorID uuid.UUID) error {
	return s.answers.Delete(ctx, answerID, authorID)
}

func (s *ContentService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

// RefreshTags replaces catalogue entries from the market-data feed.
func (s *ContentService) RefreshTags(ctx context.Context, tags []domain.Tag) error {
	if err := s.tags.Upsert(ctx, tags); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "tag catalogue refreshed", "count", len(tags))
	return nil
}

// splitTagList parses a comma-separated tag list, lowercasing each
// entry and dropping blanks and duplicates while preserving first-seen
// order. The result must hold between 1 and 4 entries.
func splitTagList(csv string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, part := range strings.Split(csv, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if _, ok := seen[part]; ok {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one tag is required", ErrInvalidInput)
	}
	if len(out) > maxTagsPerQuestion {
		return nil, fmt.Errorf("%w: at most %d tags are allowed", ErrInvalidInput, maxTagsPerQuestion)
	}
	return out, nil
}
