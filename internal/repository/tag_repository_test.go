package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/Sirneij/cryptoflow/internal/domain"
)

func TestTagUpsertRefreshesInPlace(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	initial := []domain.Tag{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", MarketCapRank: 1},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", MarketCapRank: 2},
	}
	if err := repo.Upsert(ctx, initial); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	refreshed := []domain.Tag{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", MarketCapRank: 2},
		{ID: "ethereum", Name: "Ethereum", Symbol: "eth", MarketCapRank: 1},
		{ID: "solana", Name: "Solana", Symbol: "sol", MarketCapRank: 3},
	}
	if err := repo.Upsert(ctx, refreshed); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	tags, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	// Ordered by market cap rank, so the refresh must have swapped the
	// first two.
	if tags[0].ID != "ethereum" || tags[1].ID != "bitcoin" || tags[2].ID != "solana" {
		t.Fatalf("unexpected order: %v, %v, %v", tags[0].ID, tags[1].ID, tags[2].ID)
	}
}

func TestTagUpsertEmptyIsNoOp(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewTagRepository(db)

	if err := repo.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("empty upsert: %v", err)
	}
}

func TestTagValidateIDs(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	seedTagsForTest(t, db, "bitcoin", "ethereum")

	if err := repo.ValidateIDs(ctx, []string{"bitcoin", "ethereum"}); err != nil {
		t.Fatalf("valid ids: %v", err)
	}
	if err := repo.ValidateIDs(ctx, []string{"bitcoin", "dogecoin"}); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag for unknown id, got %v", err)
	}
	if err := repo.ValidateIDs(ctx, nil); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag for empty set, got %v", err)
	}
}

func TestTagIDsByName(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewTagRepository(db)
	ctx := context.Background()
	seedTagsForTest(t, db, "bitcoin", "ethereum")

	ids, err := repo.IDsByName(ctx, []string{"Ethereum", "Bitcoin"})
	if err != nil {
		t.Fatalf("resolve names: %v", err)
	}
	if len(ids) != 2 || ids[0] != "ethereum" || ids[1] != "bitcoin" {
		t.Fatalf("expected input order preserved, got %v", ids)
	}

	// Case does not matter: the catalogue stores "Bitcoin".
	ids, err = repo.IDsByName(ctx, []string{"BITCOIN", "ethereum"})
	if err != nil {
		t.Fatalf("resolve mixed-case names: %v", err)
	}
	if len(ids) != 2 || ids[0] != "bitcoin" || ids[1] != "ethereum" {
		t.Fatalf("expected case-insensitive match, got %v", ids)
	}

	if _, err := repo.IDsByName(ctx, []string{"Bitcoin", "Dogecoin"}); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag for unknown name, got %v", err)
	}
	if _, err := repo.IDsByName(ctx, nil); !errors.Is(err, ErrInvalidTag) {
		t.Fatalf("expected ErrInvalidTag for empty set, got %v", err)
	}
}
