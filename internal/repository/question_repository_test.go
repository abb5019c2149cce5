package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Sirneij/cryptoflow/internal/domain"
)

func TestQuestionCreateAndGetBySlug(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)
	author := createActiveUserForTest(t, db, "asker@example.com")
	seedTagsForTest(t, db, "bitcoin", "ethereum")

	q := createQuestionForTest(t, db, author.ID, "what-is-a-utxo", []string{"bitcoin", "ethereum"})

	got, err := repo.GetBySlug(context.Background(), "what-is-a-utxo")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != q.ID || got.Title != q.Title || got.Content != q.Content {
		t.Fatalf("unexpected question: %+v", got)
	}
	if got.Author.ID != author.ID || got.Author.Email != author.Email {
		t.Fatalf("unexpected author: %+v", got.Author)
	}
	if len(got.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(got.Tags))
	}
	tagIDs := map[string]bool{}
	for _, tag := range got.Tags {
		tagIDs[tag.ID] = true
		if tag.Name == "" || tag.Symbol == "" {
			t.Fatalf("tag fields not carried through aggregation: %+v", tag)
		}
	}
	if !tagIDs["bitcoin"] || !tagIDs["ethereum"] {
		t.Fatalf("unexpected tag set: %v", tagIDs)
	}
}

func TestQuestionCreateReturnsComposedView(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)
	author := createActiveUserForTest(t, db, "asker@example.com")
	seedTagsForTest(t, db, "bitcoin", "ethereum")

	q := &domain.Question{
		Title: "Fresh", Slug: "fresh", Content: "<p>x</p>", RawContent: "x",
		AuthorID: author.ID,
	}
	// The view comes back from the insert's own transaction, complete
	// with author and tags, so no follow-up read can race a delete.
	composed, err := repo.Create(context.Background(), q, []string{"bitcoin", "ethereum"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if composed.ID != q.ID || composed.Slug != "fresh" {
		t.Fatalf("unexpected composed view: %+v", composed)
	}
	if composed.Author.ID != author.ID || composed.Author.Email != author.Email {
		t.Fatalf("author missing from composed view: %+v", composed.Author)
	}
	if len(composed.Tags) != 2 {
		t.Fatalf("tags missing from composed view: %+v", composed.Tags)
	}
}

func TestQuestionCreateUnknownTagRollsBack(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)
	author := createActiveUserForTest(t, db, "asker@example.com")
	seedTagsForTest(t, db, "bitcoin")

	q := &domain.Question{
		Title: "orphan", Slug: "orphan", Content: "<p>x</p>", RawContent: "x",
		AuthorID: author.ID,
	}
	_, err := repo.Create(context.Background(), q, []string{"bitcoin", "dogecoin"})
	if !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}

	var count int64
	if err := db.Model(&domain.Question{}).Count(&count).Error; err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if count != 0 {
		t.Fatalf("question must not survive an invalid tag, got %d rows", count)
	}
}

func TestQuestionCreateRequiresAtLeastOneTag(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)
	author := createActiveUserForTest(t, db, "asker@example.com")

	q := &domain.Question{
		Title: "bare", Slug: "bare", Content: "<p>x</p>", RawContent: "x",
		AuthorID: author.ID,
	}
	if _, err := repo.Create(context.Background(), q, nil); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag for empty tag set, got %v", err)
	}
}

func TestQuestionUpdateOwnershipCheck(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	owner := createActiveUserForTest(t, db, "owner@example.com")
	stranger := createActiveUserForTest(t, db, "stranger@example.com")
	seedTagsForTest(t, db, "bitcoin", "solana")

	q := createQuestionForTest(t, db, owner.ID, "original-slug", []string{"bitcoin"})

	upd := QuestionUpdate{
		Title: "Edited", Slug: "edited-slug",
		Content: "<p>edited</p>", RawContent: "edited",
		TagIDs: []string{"solana"},
	}

	if _, err := repo.Update(ctx, q.ID, stranger.ID, upd); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound for non-owner, got %v", err)
	}

	// A rejected update must leave everything untouched.
	unchanged, err := repo.GetBySlug(ctx, "original-slug")
	if err != nil {
		t.Fatalf("question changed after rejected update: %v", err)
	}
	if len(unchanged.Tags) != 1 || unchanged.Tags[0].ID != "bitcoin" {
		t.Fatalf("tags changed after rejected update: %+v", unchanged.Tags)
	}

	got, err := repo.Update(ctx, q.ID, owner.ID, upd)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if got.Title != "Edited" || got.RawContent != "edited" {
		t.Fatalf("update not applied: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != "solana" {
		t.Fatalf("tags not replaced: %+v", got.Tags)
	}
	if _, err := repo.GetBySlug(ctx, "edited-slug"); err != nil {
		t.Fatalf("get after update: %v", err)
	}
}

func TestQuestionUpdateUnknownTagRollsBack(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	owner := createActiveUserForTest(t, db, "owner@example.com")
	seedTagsForTest(t, db, "bitcoin")

	q := createQuestionForTest(t, db, owner.ID, "stays-put", []string{"bitcoin"})

	_, err := repo.Update(ctx, q.ID, owner.ID, QuestionUpdate{
		Title: "changed", Slug: "changed", Content: "<p>c</p>", RawContent: "c",
		TagIDs: []string{"dogecoin"},
	})
	if !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag, got %v", err)
	}

	got, err := repo.GetBySlug(ctx, "stays-put")
	if err != nil {
		t.Fatalf("question must be unchanged after rollback: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].ID != "bitcoin" {
		t.Fatalf("tags must be unchanged after rollback: %+v", got.Tags)
	}
}

func TestQuestionDeleteOwnershipAndIdempotence(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	owner := createActiveUserForTest(t, db, "owner@example.com")
	stranger := createActiveUserForTest(t, db, "stranger@example.com")
	seedTagsForTest(t, db, "bitcoin")

	q := createQuestionForTest(t, db, owner.ID, "to-delete", []string{"bitcoin"})

	if err := repo.Delete(ctx, q.ID, stranger.ID); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound for non-owner, got %v", err)
	}
	if _, err := repo.GetBySlug(ctx, "to-delete"); err != nil {
		t.Fatalf("question must survive a stranger's delete: %v", err)
	}

	if err := repo.Delete(ctx, q.ID, owner.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := repo.Delete(ctx, q.ID, owner.ID); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound on second delete, got %v", err)
	}

	var links int64
	if err := db.Model(&domain.QuestionTag{}).Where("question_id = ?", q.ID).Count(&links).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 0 {
		t.Fatalf("tag links must cascade with the question, got %d", links)
	}
}

func TestQuestionListNewestFirstAndDistinct(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	author := createActiveUserForTest(t, db, "asker@example.com")
	seedTagsForTest(t, db, "bitcoin", "ethereum", "solana")

	first := createQuestionForTest(t, db, author.ID, "first", []string{"bitcoin"})
	second := createQuestionForTest(t, db, author.ID, "second", []string{"ethereum", "solana"})

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("expected newest-first ordering, got %s then %s", got[0].Slug, got[1].Slug)
	}
	seen := map[uuid.UUID]bool{}
	for _, q := range got {
		if seen[q.ID] {
			t.Fatalf("duplicate question %s in listing", q.ID)
		}
		seen[q.ID] = true
	}
	// Multi-tag questions collapse to one row with the full tag set.
	if len(got[0].Tags) != 2 {
		t.Fatalf("expected 2 tags on multi-tag question, got %+v", got[0].Tags)
	}
}

func TestQuestionGetUnknownSlug(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewQuestionRepository(db)

	if _, err := repo.GetBySlug(context.Background(), "no-such-slug"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}
