package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/trusthire/trusthire/internal/domain"
	"github.com/trusthire/trusthire/internal/logger"
)

// RateInput carries a new rating.
type RateInput struct {
	RatedID uuid.UUID
	Score   int
	Comment string
	JobID   *uuid.UUID
}

type RatingUsecase struct {
	ratings RatingRepository
	users   UserRepository
	chain   ReputationChain
	logger  *logger.Logger
}

func NewRatingUsecase(
	ratings RatingRepository,
	users UserRepository,
	chain ReputationChain,
	logger *logger.Logger,
) *RatingUsecase {
	return &RatingUsecase{
		ratings: ratings,
		users:   users,
		chain:   chain,
		logger:  logger,
	}
}

// Rate stores an immutable rating and, when the rated user has a
// wallet address, mirrors it to the reputation contract. The off-chain
// record is the source of truth; a chain failure is logged and the
// rating is kept without a transaction hash.
func (uc *RatingUsecase) Rate(ctx context.Context, raterID uuid.UUID, input RateInput) (domain.Rating, error) {
	if input.Score < 1 || input.Score > 5 {
		return domain.Rating{}, domain.ValidationError{Field: "score", Reason: "must be between 1 and 5"}
	}
	if raterID == input.RatedID {
		return domain.Rating{}, domain.ValidationError{Field: "ratedId", Reason: "cannot rate yourself"}
	}

	rated, err := uc.users.Get(ctx, input.RatedID)
	if err != nil {
		return domain.Rating{}, err
	}

	rating := domain.Rating{
		ID:      uuid.New(),
		RaterID: raterID,
		RatedID: input.RatedID,
		Score:   input.Score,
		Comment: input.Comment,
		JobID:   input.JobID,
	}

	if rated.WalletAddress != "" && uc.chain != nil {
		txHash, err := uc.chain.SubmitRating(ctx, rated.WalletAddress, input.Score)
		if err != nil {
			uc.logger.Warn("rating not mirrored to chain",
				"rated_id", input.RatedID.String(),
				"error", err.Error())
		} else {
			rating.TxHash = txHash
		}
	}

	return uc.ratings.Create(ctx, rating)
}

func (uc *RatingUsecase) ListForUser(ctx context.Context, ratedID uuid.UUID) ([]domain.Rating, error) {
	return uc.ratings.ListForUser(ctx, ratedID)
}

// Reputation reads the on-chain aggregate for a wallet address.
func (uc *RatingUsecase) Reputation(ctx context.Context, address string) (domain.Reputation, error) {
	if address == "" {
		return domain.Reputation{}, domain.ValidationError{Field: "address", Reason: "required"}
	}
	if uc.chain == nil {
		return domain.Reputation{}, domain.ErrChainUnavailable
	}
	return uc.chain.GetReputation(ctx, address)
}
