// internal/domain/repair/service.go
package repair

import (
	"context"
	"fmt"
	"time"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Diagnoser is the AI collaborator used to enrich intake sessions.
// Implementations never fail hard: on any error they return a fixed
// fallback string.
type Diagnoser interface {
	Diagnose(ctx context.Context, device, issue, imageBase64 string) string
}

// Store is the blob persistence the repair service needs
type Store interface {
	LoadJSON(ctx context.Context, key string, dest interface{}) error
	SaveJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Remove(ctx context.Context, keys ...string) error
	IndexSet(ctx context.Context, key, field, value string) error
	IndexGet(ctx context.Context, key, field string) (string, error)
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// Service handles the repair intake wizard and the repair ledger
type Service struct {
	store     Store
	diagnoser Diagnoser
	config    *config.Config
	log       *logrus.Logger
}

// NewService creates a new repair service
func NewService(store Store, diagnoser Diagnoser, cfg *config.Config, log *logrus.Logger) *Service {
	return &Service{
		store:     store,
		diagnoser: diagnoser,
		config:    cfg,
		log:       log,
	}
}

// UpdateFormRequest carries partial form updates; nil fields are untouched
type UpdateFormRequest struct {
	DeviceType    *string `json:"device_type"`
	Brand         *string `json:"brand"`
	Model         *string `json:"model"`
	Condition     *string `json:"condition"`
	Description   *string `json:"description"`
	PreferredDate *string `json:"preferred_date"`
	ImageURL      *string `json:"image_url"`
}

// DiagnoseRequest asks the collaborator for a diagnosis of the current form
type DiagnoseRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// SubmitResult carries the created record and the navigation hint
type SubmitResult struct {
	Request  *RepairRequest `json:"request"`
	Redirect string         `json:"redirect"`
}

// Session returns the owner's intake session, starting a fresh wizard
// when none exists
func (s *Service) Session(ctx context.Context, ownerKey string) (*IntakeSession, error) {
	return s.loadSession(ctx, ownerKey)
}

// UpdateForm merges the given fields into the session form without
// changing the step
func (s *Service) UpdateForm(ctx context.Context, ownerKey string, req *UpdateFormRequest) (*IntakeSession, error) {
	session, err := s.loadSession(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&session.Form.DeviceType, req.DeviceType)
	applyString(&session.Form.Brand, req.Brand)
	applyString(&session.Form.Model, req.Model)
	applyString(&session.Form.Condition, req.Condition)
	applyString(&session.Form.Description, req.Description)
	applyString(&session.Form.PreferredDate, req.PreferredDate)
	applyString(&session.Form.ImageURL, req.ImageURL)
	session.UpdatedAt = time.Now().UTC()

	if err := s.saveSession(ctx, ownerKey, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Advance moves the wizard forward through its validation gate
func (s *Service) Advance(ctx context.Context, ownerKey string) (*IntakeSession, error) {
	session, err := s.loadSession(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	if err := session.Advance(); err != nil {
		return session, err
	}

	if err := s.saveSession(ctx, ownerKey, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Retreat moves the wizard back one step, keeping all entered fields
func (s *Service) Retreat(ctx context.Context, ownerKey string) (*IntakeSession, error) {
	session, err := s.loadSession(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	session.Retreat()

	if err := s.saveSession(ctx, ownerKey, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RequestDiagnosis asks the AI collaborator for a verdict on the current
// form and stores it as the candidate diagnosis. The wizard step never
// changes and collaborator failures never propagate. Only one call per
// owner may be in flight at a time.
func (s *Service) RequestDiagnosis(ctx context.Context, ownerKey string, req *DiagnoseRequest) (*IntakeSession, error) {
	session, err := s.loadSession(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	guard := fmt.Sprintf("repair:diagnosing:%s", ownerKey)
	acquired, err := s.store.AcquireLock(ctx, guard, s.config.Pulse.RequestTimeout)
	if err == nil && !acquired {
		return session, ErrDiagnosisBusy
	}
	defer func() {
		if err := s.store.ReleaseLock(context.WithoutCancel(ctx), guard); err != nil {
			s.log.WithError(err).Warn("failed to release diagnosis guard")
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, s.config.Pulse.RequestTimeout)
	defer cancel()

	session.AIDiagnosis = s.diagnoser.Diagnose(callCtx, session.Form.Device(), session.Form.Description, req.ImageBase64)
	session.UpdatedAt = time.Now().UTC()

	if err := s.saveSession(ctx, ownerKey, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Submit turns a completed wizard into a repair request, prepends it to
// the user's history and discards the session state
func (s *Service) Submit(ctx context.Context, ownerKey, userID, userName string) (*SubmitResult, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	session, err := s.loadSession(ctx, ownerKey)
	if err != nil {
		return nil, err
	}
	if !session.CanSubmit() {
		return nil, ErrNotSubmittable
	}

	record := &RepairRequest{
		ID:          uuid.NewString(),
		UserID:      userID,
		UserName:    userName,
		Device:      session.Form.Device(),
		Issue:       session.Form.Description,
		Status:      StatusReceived,
		Date:        time.Now().UTC(),
		AIDiagnosis: session.AIDiagnosis,
		ImageURL:    session.Form.ImageURL,
	}

	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	history = append([]RepairRequest{*record}, history...)

	if err := s.saveHistory(ctx, userID, history); err != nil {
		return nil, err
	}

	if err := s.store.IndexSet(ctx, ownerIndexKey, record.ID, userID); err != nil {
		s.log.WithError(err).WithField("repair_id", record.ID).Warn("failed to index repair owner")
	}

	// Wizard state is transient; drop it once the record exists
	if err := s.store.Remove(ctx, ownerKey); err != nil {
		s.log.WithError(err).Warn("failed to discard intake session")
	}

	s.log.WithFields(logrus.Fields{
		"repair_id": record.ID,
		"user_id":   userID,
		"device":    record.Device,
	}).Info("repair request received")

	return &SubmitResult{Request: record, Redirect: "profile"}, nil
}

// History returns the user's repair requests, most recent first
func (s *Service) History(ctx context.Context, userID string) ([]RepairRequest, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	return s.loadHistory(ctx, userID)
}

// UpdateStatus applies an administrative lifecycle change to a request.
// A non-empty estimatedCost is recorded alongside, typically when the
// diagnosis concludes.
func (s *Service) UpdateStatus(ctx context.Context, repairID string, next RequestStatus, estimatedCost string) (*RepairRequest, error) {
	userID, err := s.store.IndexGet(ctx, ownerIndexKey, repairID)
	if err != nil {
		return nil, ErrNotFound
	}

	history, err := s.loadHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range history {
		if history[i].ID != repairID {
			continue
		}
		if err := history[i].TransitionTo(next); err != nil {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, history[i].Status, next)
		}
		if estimatedCost != "" {
			history[i].EstimatedCost = estimatedCost
		}
		if err := s.saveHistory(ctx, userID, history); err != nil {
			return nil, err
		}
		return &history[i], nil
	}

	return nil, ErrNotFound
}

// AdoptGuestSession moves a guest's intake session to the user's key at
// sign-in, so a wizard interrupted by the submit auth gate survives the
// trip through login. The user's own stale session, if any, is replaced.
func (s *Service) AdoptGuestSession(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return nil
	}

	guestKey := OwnerKey("", sessionID)

	var session IntakeSession
	err := s.store.LoadJSON(ctx, guestKey, &session)
	if err == redisdb.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.saveSession(ctx, OwnerKey(userID, ""), &session); err != nil {
		return err
	}
	return s.store.Remove(ctx, guestKey)
}

// ownerIndexKey maps repair ids to owning user ids
const ownerIndexKey = "repairs:owner-index"

// OwnerKey returns the intake session blob key for a wizard owner
func OwnerKey(userID, sessionID string) string {
	if userID != "" {
		return fmt.Sprintf("repair:intake:user:%s", userID)
	}
	return fmt.Sprintf("repair:intake:session:%s", sessionID)
}

func (s *Service) loadSession(ctx context.Context, ownerKey string) (*IntakeSession, error) {
	var session IntakeSession
	err := s.store.LoadJSON(ctx, ownerKey, &session)
	if err == redisdb.ErrKeyNotFound {
		return NewSession(), nil
	}
	if err != nil {
		s.log.WithError(err).WithField("owner", ownerKey).Warn("intake session load failed, starting fresh")
		return NewSession(), nil
	}
	return &session, nil
}

func (s *Service) saveSession(ctx context.Context, ownerKey string, session *IntakeSession) error {
	return s.store.SaveJSON(ctx, ownerKey, session, s.config.Commerce.IntakeSessionTTL)
}

func (s *Service) loadHistory(ctx context.Context, userID string) ([]RepairRequest, error) {
	var history []RepairRequest
	err := s.store.LoadJSON(ctx, historyKey(userID), &history)
	if err == redisdb.ErrKeyNotFound {
		return []RepairRequest{}, nil
	}
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("repair history load failed, starting empty")
		return []RepairRequest{}, nil
	}
	return history, nil
}

func (s *Service) saveHistory(ctx context.Context, userID string, history []RepairRequest) error {
	return s.store.SaveJSON(ctx, historyKey(userID), history, 0)
}

func historyKey(userID string) string {
	return fmt.Sprintf("repairs:user:%s", userID)
}
