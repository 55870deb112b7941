package report

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an adverse-drug-reaction report.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusReviewed    Status = "reviewed"
	StatusConfirmed   Status = "confirmed"
	StatusRejected    Status = "rejected"
	StatusArchived    Status = "archived"
)

var validStatuses = map[Status]bool{
	StatusPending:     true,
	StatusUnderReview: true,
	StatusReviewed:    true,
	StatusConfirmed:   true,
	StatusRejected:    true,
	StatusArchived:    true,
}

// StatusAll is a query-only pseudo-status meaning "no status filter". It is
// never stored on a report.
const StatusAll Status = "all"

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool { return validStatuses[s] }

// Terminal reports whether s permits no further transition without an
// explicit admin re-open.
func (s Status) Terminal() bool { return s == StatusRejected || s == StatusArchived }

// Severity of a single reported side effect.
type Severity string

const (
	SeverityMild            Severity = "mild"
	SeverityModerate        Severity = "moderate"
	SeveritySevere          Severity = "severe"
	SeverityLifeThreatening Severity = "life-threatening"
)

var severityRank = map[Severity]int{
	SeverityMild:            1,
	SeverityModerate:        2,
	SeveritySevere:          3,
	SeverityLifeThreatening: 4,
}

// Rank returns the ordering weight of the severity
// (mild < moderate < severe < life-threatening). Unknown severities rank 0.
func (s Severity) Rank() int { return severityRank[s] }

// Valid reports whether s is a known severity grade.
func (s Severity) Valid() bool { return severityRank[s] > 0 }

// Priority is the derived urgency classification used to order queues.
// It is always computed by DerivePriority, never set by callers.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// UrgencyLevel is the triage producer's patient-guidance urgency.
type UrgencyLevel string

const (
	UrgencyRoutine UrgencyLevel = "routine"
	UrgencySoon    UrgencyLevel = "soon"
	UrgencyUrgent  UrgencyLevel = "urgent"
)

// Valid reports whether u is a known urgency level.
func (u UrgencyLevel) Valid() bool {
	return u == UrgencyRoutine || u == UrgencySoon || u == UrgencyUrgent
}

// ReviewState is the state of the doctor-review sub-workflow.
type ReviewState string

const (
	ReviewNone      ReviewState = "none"
	ReviewRequested ReviewState = "requested"
	ReviewAnswered  ReviewState = "answered"
)

// Role of the acting user. The engine authorizes on the role it is given;
// it never authenticates.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// Actor identifies who is performing a mutating operation. It is passed
// explicitly into every write path rather than read from ambient state.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// CanReview reports whether the actor may perform doctor-level operations.
func (a Actor) CanReview() bool { return a.Role == RoleDoctor || a.Role == RoleAdmin }

// Medicine is the drug the report is about. The engine treats it as opaque
// data; only the name participates in search.
type Medicine struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Route     string `json:"route,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// SideEffect is one observed reaction.
type SideEffect struct {
	Effect   string   `json:"effect"`
	Severity Severity `json:"severity"`
	Onset    string   `json:"onset,omitempty"`
	Duration string   `json:"duration,omitempty"`
}

// Causality is the triage producer's causality assessment.
type Causality struct {
	Likelihood string `json:"likelihood"`
	Reasoning  string `json:"reasoning,omitempty"`
}

// PatientGuidance carries the producer's advice, including the urgency
// level that feeds priority derivation.
type PatientGuidance struct {
	UrgencyLevel UrgencyLevel `json:"urgency_level"`
	Advice       string       `json:"advice,omitempty"`
}

// TriageMetadata is the fixed shape of AI-produced analysis attached to a
// report. It is produced externally; AttachTriage is the sole ingestion point.
type TriageMetadata struct {
	Summary            string          `json:"summary"`
	SeverityScore      float64         `json:"severity_score"`
	OverallRiskScore   float64         `json:"overall_risk_score"`
	Causality          Causality       `json:"causality_assessment"`
	PatientGuidance    PatientGuidance `json:"patient_guidance"`
	RecommendedActions []string        `json:"recommended_actions,omitempty"`
	AnalyzedAt         time.Time       `json:"analyzed_at"`
}

// ReviewRequest tracks one cycle of the patient-initiated doctor-review
// sub-workflow. ReviewerID and AnsweredAt are set together or not at all.
type ReviewRequest struct {
	State          ReviewState `json:"state"`
	RequestedAt    time.Time   `json:"requested_at"`
	RequestReason  string      `json:"request_reason,omitempty"`
	ReviewerID     *uuid.UUID  `json:"reviewer_id,omitempty"`
	Remarks        string      `json:"remarks,omitempty"`
	Recommendation string      `json:"recommendation,omitempty"`
	ActionRequired bool        `json:"action_required"`
	AgreedWithAI   bool        `json:"agreed_with_ai"`
	AnsweredAt     *time.Time  `json:"answered_at,omitempty"`
}

// Comment is a free-text workflow note. Comments are append-only.
type Comment struct {
	AuthorID  uuid.UUID `json:"author_id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Report maps to the report table. Structured sub-records (medicine, side
// effects, triage, review, comments) are stored as JSONB columns.
type Report struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	ReporterID    uuid.UUID       `db:"reporter_id" json:"reporter_id"`
	PatientName   string          `db:"patient_name" json:"patient_name"`
	Medicine      Medicine        `db:"medicine" json:"medicine"`
	SideEffects   []SideEffect    `db:"side_effects" json:"side_effects"`
	Status        Status          `db:"status" json:"status"`
	Priority      Priority        `db:"priority" json:"priority"`
	Triage        *TriageMetadata `db:"triage" json:"triage,omitempty"`
	DoctorReview  *ReviewRequest  `db:"doctor_review" json:"doctor_review,omitempty"`
	ReviewHistory []ReviewRequest `db:"review_history" json:"review_history,omitempty"`
	Comments      []Comment       `db:"comments" json:"comments,omitempty"`
	VersionID     int             `db:"version_id" json:"version_id"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// GetVersionID returns the current version.
func (r *Report) GetVersionID() int { return r.VersionID }

// SetVersionID sets the current version.
func (r *Report) SetVersionID(v int) { r.VersionID = v }

// ReviewState returns the sub-workflow state, treating an absent review
// record as "none".
func (r *Report) ReviewState() ReviewState {
	if r.DoctorReview == nil {
		return ReviewNone
	}
	return r.DoctorReview.State
}

// MaxSeverity returns the highest-ranked severity among the side effects.
func (r *Report) MaxSeverity() Severity {
	var max Severity
	for _, se := range r.SideEffects {
		if se.Severity.Rank() > max.Rank() {
			max = se.Severity
		}
	}
	return max
}

// HasSeverity reports whether any side effect has exactly the given grade.
func (r *Report) HasSeverity(sev Severity) bool {
	for _, se := range r.SideEffects {
		if se.Severity == sev {
			return true
		}
	}
	return false
}
