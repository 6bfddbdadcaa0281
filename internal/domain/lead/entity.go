package lead

import (
	"slices"
	"time"
)

// Status represents a lead's position in the admissions funnel
type Status string

const (
	StatusNew                Status = "new"
	StatusContacted          Status = "contacted"
	StatusQualified          Status = "qualified"
	StatusApplicationStarted Status = "application_started"
	StatusApplied            Status = "applied"
	StatusEnrolled           Status = "enrolled"
	StatusLost               Status = "lost"
)

var statuses = []Status{
	StatusNew, StatusContacted, StatusQualified, StatusApplicationStarted,
	StatusApplied, StatusEnrolled, StatusLost,
}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return slices.Contains(statuses, s)
}

// Source is the channel a lead came from
type Source string

const (
	SourceWebsite     Source = "website"
	SourceReferral    Source = "referral"
	SourceSocialMedia Source = "social_media"
	SourceEvent       Source = "event"
	SourcePartner     Source = "partner"
	SourceAdvertising Source = "advertising"
	SourceOther       Source = "other"
)

// Priority ranks how urgently a lead should be worked
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// AssignmentMethod records how a lead got its advisor
type AssignmentMethod string

const (
	AssignmentManual     AssignmentMethod = "manual"
	AssignmentRoundRobin AssignmentMethod = "round_robin"
	AssignmentAI         AssignmentMethod = "ai"
	AssignmentBulk       AssignmentMethod = "bulk"
)

// Lead represents a prospective student
type Lead struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	// Contact
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Country   string `json:"country,omitempty"`

	// Classification
	Source    Source   `json:"source"`
	Status    Status   `json:"status"`
	Priority  Priority `json:"priority"`
	LeadScore int      `json:"lead_score"`
	AIScore   float64  `json:"ai_score"`

	ProgramInterest []string `json:"program_interest"`
	Tags            []string `json:"tags"`

	// Ownership
	AssignedTo       *string          `json:"assigned_to,omitempty"`
	AssignedAt       *time.Time       `json:"assigned_at,omitempty"`
	AssignmentMethod AssignmentMethod `json:"assignment_method,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins first and last name
func (l *Lead) FullName() string {
	switch {
	case l.FirstName == "":
		return l.LastName
	case l.LastName == "":
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// AssigneeID returns the advisor id or "" when unassigned
func (l *Lead) AssigneeID() string {
	if l.AssignedTo == nil {
		return ""
	}
	return *l.AssignedTo
}

// Activity types
const (
	ActivityAssignment   = "assignment"
	ActivityStatusChange = "status_change"
)

// Activity is an append-only audit entry attached to a lead
type Activity struct {
	ID           string         `json:"id"`
	LeadID       string         `json:"lead_id"`
	ActivityType string         `json:"activity_type"`
	Description  string         `json:"description"`
	Payload      map[string]any `json:"payload,omitempty"`
	PerformedBy  string         `json:"performed_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}
