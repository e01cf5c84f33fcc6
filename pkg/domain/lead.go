package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultSource is the campaign tag stored on leads that did not name one.
const DefaultSource = "website-lead-form"

// LeadID uniquely identifies a lead. It is assigned by the store.
type LeadID uuid.UUID

// String returns the canonical UUID representation of the ID.
func (id LeadID) String() string { return uuid.UUID(id).String() }

// MarshalText encodes the ID in its canonical UUID form, so JSON and other
// text encoders see a string rather than the underlying byte array.
func (id LeadID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText() //nolint: wrapcheck
}

// UnmarshalText decodes a textual UUID into the ID.
func (id *LeadID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b) //nolint: wrapcheck
}

// ParseLeadID parses the textual form of a LeadID.
func ParseLeadID(s string) (LeadID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return LeadID{}, err //nolint: wrapcheck
	}

	return LeadID(id), nil
}

// Training identifies a training program a lead can express interest in.
type Training string

const (
	TrainingDigitalMarketing  Training = "digital-marketing"
	TrainingDataAnalytics     Training = "data-analytics"
	TrainingWebDevelopment    Training = "web-development"
	TrainingUIUXDesign        Training = "ui-ux-design"
	TrainingProjectManagement Training = "project-management"
	TrainingCyberSecurity     Training = "cyber-security"
)

// Trainings lists every program offered on the lead form, in display order.
func Trainings() []Training {
	return []Training{
		TrainingDigitalMarketing,
		TrainingDataAnalytics,
		TrainingWebDevelopment,
		TrainingUIUXDesign,
		TrainingProjectManagement,
		TrainingCyberSecurity,
	}
}

// Valid reports whether t is one of the offered programs.
func (t Training) Valid() bool {
	for _, known := range Trainings() {
		if t == known {
			return true
		}
	}

	return false
}

// Lead is a prospective student's contact submission.
type Lead struct {
	// ID is assigned by the store on creation and never changes.
	ID LeadID `json:"id"`

	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	// InterestedTraining is nil when the lead did not pick a program.
	InterestedTraining *Training `json:"interested_training"`
	// Source tags the marketing channel that produced the lead.
	Source string `json:"source"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLead carries the fields required to create a lead.
type NewLead struct {
	Name               string
	Email              string
	PhoneNumber        string
	InterestedTraining *Training
	// Source falls back to DefaultSource when empty.
	Source string
}

// SourceOrDefault returns the lead source, or DefaultSource when none was given.
func (n NewLead) SourceOrDefault() string {
	if n.Source == "" {
		return DefaultSource
	}

	return n.Source
}

// LeadStats aggregates lead counts.
type LeadStats struct {
	Total       int64            `json:"total"`
	BySource    map[string]int64 `json:"bySource"`
	RecentCount int64            `json:"recentCount"`
}
