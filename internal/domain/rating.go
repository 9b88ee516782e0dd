package domain

import (
	"time"

	"github.com/google/uuid"
)

// Rating is an immutable reputation entry. Score is 1..5.
type Rating struct {
	ID        uuid.UUID  `json:"id"`
	RaterID   uuid.UUID  `json:"raterId"`
	RatedID   uuid.UUID  `json:"ratedId"`
	Score     int        `json:"score"`
	Comment   string     `json:"comment,omitempty"`
	JobID     *uuid.UUID `json:"jobId,omitempty"`
	TxHash    string     `json:"txHash,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Reputation is the aggregate read from the chain contract.
type Reputation struct {
	AverageScore float64 `json:"averageScore"`
	RatingCount  int64   `json:"ratingCount"`
}
