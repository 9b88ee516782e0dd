package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/logger"
)

func TestRateMirrorsToChainWhenWalletKnown(t *testing.T) {
	users := newFakeUserRepo()
	chain := newFakeChain()
	uc := NewRatingUsecase(&fakeRatingRepo{}, users, chain, logger.New(0))
	ctx := context.Background()

	rated := domain.User{ID: uuid.New(), WalletAddress: "0x00000000000000000000000000000000000000aa"}
	users.put(rated)

	rating, err := uc.Rate(ctx, uuid.New(), RateInput{RatedID: rated.ID, Score: 5, Comment: "great collaborator"})
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rating.TxHash == "" {
		t.Fatal("rating should carry the broadcast transaction hash")
	}
	if chain.submits != 1 {
		t.Fatalf("chain submits = %d, want 1", chain.submits)
	}

	rep, err := uc.Reputation(ctx, rated.WalletAddress)
	if err != nil {
		t.Fatalf("reputation: %v", err)
	}
	if rep.RatingCount != 1 || rep.AverageScore != 5 {
		t.Fatalf("reputation = %+v, want count 1 average 5", rep)
	}
}

func TestRateSurvivesChainOutage(t *testing.T) {
	users := newFakeUserRepo()
	chain := newFakeChain()
	chain.fail = true
	ratings := &fakeRatingRepo{}
	uc := NewRatingUsecase(ratings, users, chain, logger.New(0))

	rated := domain.User{ID: uuid.New(), WalletAddress: "0x00000000000000000000000000000000000000bb"}
	users.put(rated)

	rating, err := uc.Rate(context.Background(), uuid.New(), RateInput{RatedID: rated.ID, Score: 4})
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rating.TxHash != "" {
		t.Fatal("failed broadcast must not record a hash")
	}

	stored, err := uc.ListForUser(context.Background(), rated.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("got %d ratings, want 1; the off-chain record is the source of truth", len(stored))
	}
}

func TestRateSkipsChainWithoutWallet(t *testing.T) {
	users := newFakeUserRepo()
	chain := newFakeChain()
	uc := NewRatingUsecase(&fakeRatingRepo{}, users, chain, logger.New(0))

	rated := domain.User{ID: uuid.New()}
	users.put(rated)

	rating, err := uc.Rate(context.Background(), uuid.New(), RateInput{RatedID: rated.ID, Score: 3})
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rating.TxHash != "" || chain.submits != 0 {
		t.Fatal("no wallet means no chain call")
	}
}

func TestRateValidation(t *testing.T) {
	users := newFakeUserRepo()
	uc := NewRatingUsecase(&fakeRatingRepo{}, users, newFakeChain(), logger.New(0))
	ctx := context.Background()

	rated := domain.User{ID: uuid.New()}
	users.put(rated)

	if _, err := uc.Rate(ctx, uuid.New(), RateInput{RatedID: rated.ID, Score: 0}); err == nil {
		t.Fatal("score 0 should fail")
	}
	if _, err := uc.Rate(ctx, uuid.New(), RateInput{RatedID: rated.ID, Score: 6}); err == nil {
		t.Fatal("score 6 should fail")
	}
	if _, err := uc.Rate(ctx, rated.ID, RateInput{RatedID: rated.ID, Score: 5}); err == nil {
		t.Fatal("self-rating should fail")
	}
	if _, err := uc.Rate(ctx, uuid.New(), RateInput{RatedID: uuid.New(), Score: 5}); !errors.As(err, &domain.NotFoundError{}) {
		t.Fatalf("unknown rated user: err = %v, want not found", err)
	}
	if _, err := uc.Reputation(ctx, ""); err == nil {
		t.Fatal("blank address should fail")
	}
}
