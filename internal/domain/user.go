package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is an account with its profile attributes. Role is set at
// sign-up in the same write that creates the account, so a user
// without a role cannot exist.
type User struct {
	ID            uuid.UUID    `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	Role          Role         `json:"role"`
	CompanyName   string       `json:"companyName,omitempty"`
	DID           string       `json:"did,omitempty"`
	WalletAddress string       `json:"walletAddress,omitempty"`
	ResumeKey     string       `json:"resumeKey,omitempty"`
	Credentials   []Credential `json:"credentials,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// Credential is an opaque verifiable-credential document. The issuer,
// type and issuance date are surfaced; the rest of the document is
// kept as-is and never interpreted here.
type Credential struct {
	Issuer   string          `json:"issuer"`
	Type     string          `json:"type"`
	IssuedAt time.Time       `json:"issuanceDate"`
	Document json.RawMessage `json:"document"`
}

// ProfileUpdate carries the mutable profile attributes. Nil fields are
// left untouched.
type ProfileUpdate struct {
	CompanyName   *string      `json:"companyName,omitempty"`
	DID           *string      `json:"did,omitempty"`
	WalletAddress *string      `json:"walletAddress,omitempty"`
	ResumeKey     *string      `json:"resumeKey,omitempty"`
	Credentials   []Credential `json:"credentials,omitempty"`
}
