package lead

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Eligibility is the outcome of a demo eligibility check
type Eligibility int

const (
	// EligibilityUnknown means the check itself failed
	EligibilityUnknown Eligibility = iota
	EligibilityNotEligible
	EligibilityEligible
)

func (e Eligibility) String() string {
	switch e {
	case EligibilityEligible:
		return "eligible"
	case EligibilityNotEligible:
		return "not_eligible"
	default:
		return "unknown"
	}
}

// DemoResolver decides per request whether a caller sees the demo dataset.
// A caller qualifies only with the demo flag set and zero authentic leads.
type DemoResolver struct {
	flags  DemoAccessStore
	leads  LeadStore
	logger *zap.Logger
}

// NewDemoResolver creates demo resolver
func NewDemoResolver(flags DemoAccessStore, leads LeadStore, logger *zap.Logger) *DemoResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DemoResolver{flags: flags, leads: leads, logger: logger}
}

// Check returns the eligibility of userID. The error is set only with EligibilityUnknown.
func (r *DemoResolver) Check(ctx context.Context, userID string) (Eligibility, error) {
	enabled, err := r.flags.HasDemoAccess(ctx, userID)
	if err != nil {
		return EligibilityUnknown, err
	}
	if !enabled {
		return EligibilityNotEligible, nil
	}

	owned, err := r.leads.CountOwned(ctx, userID)
	if err != nil {
		return EligibilityUnknown, err
	}
	if owned > 0 {
		return EligibilityNotEligible, nil
	}
	return EligibilityEligible, nil
}

// ShouldServeDemo folds Check into a decision. Unknown is treated as not eligible.
func (r *DemoResolver) ShouldServeDemo(ctx context.Context, userID string) bool {
	eligibility, err := r.Check(ctx, userID)
	switch eligibility {
	case EligibilityEligible:
		return true
	case EligibilityNotEligible:
		return false
	default:
		r.logger.Warn("demo eligibility check failed, serving authentic data",
			zap.String("user_id", userID), zap.Error(err))
		return false
	}
}

// DemoOwnerID is the owner id carried by every demo lead
const DemoOwnerID = "demo"

func demoTime(day, hour int) time.Time {
	return time.Date(2024, time.September, day, hour, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// DemoLeads returns the fixed demo dataset. Each call returns a fresh copy.
func DemoLeads() []Lead {
	assigned := func(day int) *time.Time { return ptr(demoTime(day, 12)) }
	return []Lead{
		{
			ID: "demo-lead-01", OwnerID: DemoOwnerID,
			FirstName: "Sarah", LastName: "Johnson", Email: "sarah.johnson@example.com", Phone: "+1 555 010 1001",
			City: "Boston", State: "MA", Country: "US",
			Source: SourceWebsite, Status: StatusNew, Priority: PriorityHigh, LeadScore: 85, AIScore: 0.91,
			ProgramInterest: []string{"Computer Science", "Data Science"}, Tags: []string{"scholarship", "fall-intake"},
			CreatedAt: demoTime(2, 9), UpdatedAt: demoTime(2, 9),
		},
		{
			ID: "demo-lead-02", OwnerID: DemoOwnerID,
			FirstName: "Michael", LastName: "Chen", Email: "m.chen@example.com", Phone: "+1 555 010 1002",
			City: "San Francisco", State: "CA", Country: "US",
			Source: SourceReferral, Status: StatusContacted, Priority: PriorityMedium, LeadScore: 72, AIScore: 0.78,
			ProgramInterest: []string{"Business Administration"}, Tags: []string{"mba"},
			AssignedTo: ptr("advisor-anna"), AssignedAt: assigned(4), AssignmentMethod: AssignmentManual,
			CreatedAt: demoTime(3, 10), UpdatedAt: demoTime(4, 12),
		},
		{
			ID: "demo-lead-03", OwnerID: DemoOwnerID,
			FirstName: "Emily", LastName: "Rodriguez", Email: "emily.rodriguez@example.com", Phone: "+1 555 010 1003",
			City: "Austin", State: "TX", Country: "US",
			Source: SourceSocialMedia, Status: StatusQualified, Priority: PriorityHigh, LeadScore: 91, AIScore: 0.95,
			ProgramInterest: []string{"Nursing"}, Tags: []string{"first-generation", "fall-intake"},
			AssignedTo: ptr("advisor-ben"), AssignedAt: assigned(6), AssignmentMethod: AssignmentRoundRobin,
			CreatedAt: demoTime(5, 14), UpdatedAt: demoTime(6, 12),
		},
		{
			ID: "demo-lead-04", OwnerID: DemoOwnerID,
			FirstName: "David", LastName: "Okafor", Email: "david.okafor@example.com", Phone: "+234 800 010 1004",
			City: "Lagos", Country: "NG",
			Source: SourceEvent, Status: StatusApplicationStarted, Priority: PriorityUrgent, LeadScore: 88, AIScore: 0.86,
			ProgramInterest: []string{"Mechanical Engineering", "Computer Science"}, Tags: []string{"international", "visa"},
			AssignedTo: ptr("advisor-anna"), AssignedAt: assigned(9), AssignmentMethod: AssignmentAI,
			CreatedAt: demoTime(8, 11), UpdatedAt: demoTime(9, 12),
		},
		{
			ID: "demo-lead-05", OwnerID: DemoOwnerID,
			FirstName: "Priya", LastName: "Patel", Email: "priya.patel@example.com", Phone: "+1 555 010 1005",
			City: "Chicago", State: "IL", Country: "US",
			Source: SourcePartner, Status: StatusApplied, Priority: PriorityMedium, LeadScore: 79, AIScore: 0.82,
			ProgramInterest: []string{"Data Science"}, Tags: []string{"transfer"},
			AssignedTo: ptr("advisor-ben"), AssignedAt: assigned(11), AssignmentMethod: AssignmentManual,
			CreatedAt: demoTime(10, 16), UpdatedAt: demoTime(11, 12),
		},
		{
			ID: "demo-lead-06", OwnerID: DemoOwnerID,
			FirstName: "James", LastName: "Wilson", Email: "jwilson@example.com", Phone: "+1 555 010 1006",
			City: "Seattle", State: "WA", Country: "US",
			Source: SourceAdvertising, Status: StatusEnrolled, Priority: PriorityLow, LeadScore: 95, AIScore: 0.97,
			ProgramInterest: []string{"Business Administration", "Finance"}, Tags: []string{"mba", "alumni-referral"},
			AssignedTo: ptr("advisor-anna"), AssignedAt: assigned(13), AssignmentMethod: AssignmentManual,
			CreatedAt: demoTime(12, 8), UpdatedAt: demoTime(14, 9),
		},
		{
			ID: "demo-lead-07", OwnerID: DemoOwnerID,
			FirstName: "Sofia", LastName: "García", Email: "sofia.garcia@example.com", Phone: "+34 600 010 107",
			City: "Madrid", Country: "ES",
			Source: SourceWebsite, Status: StatusLost, Priority: PriorityLow, LeadScore: 34, AIScore: 0.21,
			ProgramInterest: []string{"Psychology"}, Tags: []string{"international"},
			CreatedAt: demoTime(15, 13), UpdatedAt: demoTime(20, 10),
		},
		{
			ID: "demo-lead-08", OwnerID: DemoOwnerID,
			FirstName: "Liam", LastName: "O'Brien", Email: "liam.obrien@example.com", Phone: "+353 85 010 1008",
			City: "Dublin", Country: "IE",
			Source: SourceOther, Status: StatusNew, Priority: PriorityMedium, LeadScore: 58, AIScore: 0.55,
			ProgramInterest: []string{"Computer Science"}, Tags: []string{},
			CreatedAt: demoTime(18, 15), UpdatedAt: demoTime(18, 15),
		},
	}
}
