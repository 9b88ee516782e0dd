package domain

// Role distinguishes the two actor kinds.
type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleEmployer  Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleJobSeeker || r == RoleEmployer
}

// EmploymentType enumerates posting engagement models.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentFreelance  EmploymentType = "freelance"
	EmploymentInternship EmploymentType = "internship"
)

func (t EmploymentType) Valid() bool {
	switch t {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract,
		EmploymentFreelance, EmploymentInternship:
		return true
	}
	return false
}

// Tier is a posting pricing level controlling visibility flags.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierFeatured Tier = "featured"
	TierPremium  Tier = "premium"
)

func (t Tier) Valid() bool {
	return t == TierBasic || t == TierFeatured || t == TierPremium
}

// PaymentStatus tracks the paid state of a non-basic posting. Only a
// payment-confirmation event moves it from pending to completed.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ApplicationStatus enumerates the application lifecycle.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationReviewed  ApplicationStatus = "reviewed"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationHired     ApplicationStatus = "hired"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationInterview,
		ApplicationRejected, ApplicationHired:
		return true
	}
	return false
}

// applicationTransitions is the allowed-transition table. Hired and
// rejected are terminal.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPending:   {ApplicationReviewed, ApplicationInterview, ApplicationRejected, ApplicationHired},
	ApplicationReviewed:  {ApplicationInterview, ApplicationRejected, ApplicationHired},
	ApplicationInterview: {ApplicationHired, ApplicationRejected},
	ApplicationRejected:  {},
	ApplicationHired:     {},
}

// CanTransitionTo reports whether next is reachable from s.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Context keys set by the auth middleware.
const (
	RequesterIDCtxKey   = "th-requesterId"
	RequesterRoleCtxKey = "th-requesterRole"
)
