// internal/domain/repair/entity.go
package repair

import (
	"errors"
	"strings"
	"time"
)

// Step represents a wizard step
type Step string

const (
	StepDevice   Step = "device"
	StepIssue    Step = "issue"
	StepSchedule Step = "schedule"
)

// RequestStatus represents the repair request lifecycle
type RequestStatus string

const (
	StatusReceived   RequestStatus = "Received"
	StatusDiagnosing RequestStatus = "Diagnosing"
	StatusInRepair   RequestStatus = "In Repair"
	StatusReady      RequestStatus = "Ready"
	StatusCompleted  RequestStatus = "Completed"
)

// Errors raised by the intake wizard
var (
	ErrAuthRequired      = errors.New("sign-in required")
	ErrValidation        = errors.New("required fields missing")
	ErrNotSubmittable    = errors.New("submission only allowed from the schedule step")
	ErrNotFound          = errors.New("repair request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDiagnosisBusy     = errors.New("a diagnosis is already in progress")
)

// nextRequestStatus is the linear repair path; Completed is terminal
var nextRequestStatus = map[RequestStatus]RequestStatus{
	StatusReceived:   StatusDiagnosing,
	StatusDiagnosing: StatusInRepair,
	StatusInRepair:   StatusReady,
	StatusReady:      StatusCompleted,
}

// IsValid checks if the status is a recognized repair status
func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusReceived, StatusDiagnosing, StatusInRepair, StatusReady, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo allows exactly one step forward along the repair path
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	return nextRequestStatus[s] == next
}

// IntakeForm holds everything entered across the wizard steps. Fields
// survive retreat/advance round-trips; the form is only discarded on
// submission.
type IntakeForm struct {
	DeviceType    string `json:"device_type"`
	Brand         string `json:"brand"`
	Model         string `json:"model"`
	Condition     string `json:"condition"`
	Description   string `json:"description"`
	PreferredDate string `json:"preferred_date"`
	ImageURL      string `json:"image_url"`
}

// Device returns the brand+model composite used on the repair record
func (f *IntakeForm) Device() string {
	return strings.TrimSpace(f.Brand + " " + f.Model)
}

// IntakeSession is the per-owner wizard state, stored whole as one blob
type IntakeSession struct {
	Step        Step       `json:"step"`
	Form        IntakeForm `json:"form"`
	AIDiagnosis string     `json:"ai_diagnosis,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSession starts the wizard at the device step
func NewSession() *IntakeSession {
	now := time.Now().UTC()
	return &IntakeSession{
		Step:      StepDevice,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves to the next step after validating the current step's
// gate. Gate failures leave the step unchanged.
func (s *IntakeSession) Advance() error {
	switch s.Step {
	case StepDevice:
		if s.Form.DeviceType == "" || s.Form.Brand == "" || s.Form.Model == "" || s.Form.Condition == "" {
			return ErrValidation
		}
		s.Step = StepIssue
	case StepIssue:
		if strings.TrimSpace(s.Form.Description) == "" {
			return ErrValidation
		}
		s.Step = StepSchedule
	case StepSchedule:
		return ErrNotSubmittable
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Retreat moves to the previous step; no-op at the device step
func (s *IntakeSession) Retreat() {
	switch s.Step {
	case StepIssue:
		s.Step = StepDevice
	case StepSchedule:
		s.Step = StepIssue
	}
	s.UpdatedAt = time.Now().UTC()
}

// CanSubmit reports whether the wizard has reached the schedule step
func (s *IntakeSession) CanSubmit() bool {
	return s.Step == StepSchedule
}

// RepairRequest is the record produced by a submitted wizard
type RepairRequest struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	UserName      string        `json:"user_name"`
	Device        string        `json:"device"`
	Issue         string        `json:"issue"`
	Status        RequestStatus `json:"status"`
	Date          time.Time     `json:"date"`
	AIDiagnosis   string        `json:"ai_diagnosis,omitempty"`
	EstimatedCost string        `json:"estimated_cost,omitempty"`
	ImageURL      string        `json:"image_url,omitempty"`
}

// TransitionTo applies an administrative status change after validating
// the linear lifecycle
func (r *RepairRequest) TransitionTo(next RequestStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.Status = next
	return nil
}
