package leads

import "time"

// Lead is one prospect a campaign may call.
//
// Multi-tenant invariant: WorkspaceID is required on every row.
//
// Score is bounded to [0,100] and only moves through ApplyFeedback so the
// delta table stays the single source of scoring policy.
type Lead struct {
	LeadID      string `json:"lead_id" db:"lead_id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`

	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Company   string `json:"company,omitempty" db:"company"`
	JobTitle  string `json:"job_title,omitempty" db:"job_title"`
	Phone     string `json:"phone" db:"phone"`

	Status Status `json:"status" db:"status"`
	Score  int    `json:"score" db:"score"`

	// DoNotCall is permanent once set (wrong number, removal request).
	DoNotCall bool `json:"do_not_call" db:"do_not_call"`

	// Attempts counts calls placed to this lead so far.
	Attempts int `json:"attempts" db:"attempts"`

	Interests  []string `json:"interests,omitempty" db:"interests"`
	Objections []string `json:"objections,omitempty" db:"objections"`

	NextContactAt *time.Time `json:"next_contact_at,omitempty" db:"next_contact_at"`
	LastContactAt *time.Time `json:"last_contact_at,omitempty" db:"last_contact_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name, tolerating either being empty.
func (l Lead) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	default:
		return l.FirstName + " " + l.LastName
	}
}

// Callable reports whether the lead may be dialed at all.
func (l Lead) Callable() bool {
	return !l.DoNotCall && l.Phone != ""
}

type Status string

const (
	StatusNew           Status = "new"
	StatusContacted     Status = "contacted"
	StatusInterested    Status = "interested"
	StatusCallback      Status = "callback"
	StatusConverted     Status = "converted"
	StatusNotInterested Status = "not_interested"
	StatusUnreachable   Status = "unreachable"
	StatusInvalidNumber Status = "invalid_number"
)
