// internal/domain/repair/service_test.go
package repair

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackbox-gh/storefront-backend/internal/config"
	redisdb "github.com/blackbox-gh/storefront-backend/internal/infrastructure/database/redis"
)

// memStore keeps blobs, indexes and locks in maps, standing in for Redis
type memStore struct {
	blobs map[string][]byte
	index map[string]map[string]string
	locks map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		blobs: map[string][]byte{},
		index: map[string]map[string]string{},
		locks: map[string]bool{},
	}
}

func (m *memStore) LoadJSON(_ context.Context, key string, dest interface{}) error {
	data, ok := m.blobs[key]
	if !ok {
		return redisdb.ErrKeyNotFound
	}
	return json.Unmarshal(data, dest)
}

func (m *memStore) SaveJSON(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.blobs[key] = data
	return nil
}

func (m *memStore) Remove(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.blobs, key)
	}
	return nil
}

func (m *memStore) IndexSet(_ context.Context, key, field, value string) error {
	if m.index[key] == nil {
		m.index[key] = map[string]string{}
	}
	m.index[key][field] = value
	return nil
}

func (m *memStore) IndexGet(_ context.Context, key, field string) (string, error) {
	value, ok := m.index[key][field]
	if !ok {
		return "", redisdb.ErrKeyNotFound
	}
	return value, nil
}

func (m *memStore) AcquireLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *memStore) ReleaseLock(_ context.Context, key string) error {
	delete(m.locks, key)
	return nil
}

// stubDiagnoser returns a fixed verdict, matching the never-fails contract
type stubDiagnoser struct {
	verdict string
}

func (d *stubDiagnoser) Diagnose(context.Context, string, string, string) string {
	return d.verdict
}

func testService(t *testing.T) (*memStore, *Service) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Commerce.IntakeSessionTTL = time.Hour
	cfg.Pulse.RequestTimeout = time.Second

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := newMemStore()
	return store, NewService(store, &stubDiagnoser{verdict: "Likely a swollen battery."}, cfg, log)
}

func str(s string) *string { return &s }

// completeWizard walks the owner's session to the schedule step
func completeWizard(t *testing.T, svc *Service, ownerKey string) {
	t.Helper()
	ctx := context.Background()

	_, err := svc.UpdateForm(ctx, ownerKey, &UpdateFormRequest{
		DeviceType:  str("Laptop"),
		Brand:       str("Apple"),
		Model:       str("MacBook Pro"),
		Condition:   str("Used"),
		Description: str("Will not power on after a liquid spill"),
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = svc.Advance(ctx, ownerKey)
		require.NoError(t, err)
	}
}

func TestSubmitRequiresSignIn(t *testing.T) {
	store, svc := testService(t)
	ctx := context.Background()

	ownerKey := OwnerKey("", "guest-1")
	completeWizard(t, svc, ownerKey)

	_, err := svc.Submit(ctx, ownerKey, "", "")
	assert.ErrorIs(t, err, ErrAuthRequired)

	// The wizard state survives the rejection
	assert.Contains(t, store.blobs, ownerKey)
	session, err := svc.Session(ctx, ownerKey)
	require.NoError(t, err)
	assert.Equal(t, StepSchedule, session.Step)
	assert.Equal(t, "Apple MacBook Pro", session.Form.Device())
}

func TestSubmitOnlyFromScheduleStep(t *testing.T) {
	_, svc := testService(t)
	ctx := context.Background()

	ownerKey := OwnerKey("U-01", "")
	_, err := svc.UpdateForm(ctx, ownerKey, &UpdateFormRequest{DeviceType: str("Phone")})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, ownerKey, "U-01", "Kwame")
	assert.ErrorIs(t, err, ErrNotSubmittable)
}

func TestSubmitCreatesRecordAndDiscardsSession(t *testing.T) {
	store, svc := testService(t)
	ctx := context.Background()

	ownerKey := OwnerKey("U-01", "")
	completeWizard(t, svc, ownerKey)

	_, err := svc.RequestDiagnosis(ctx, ownerKey, &DiagnoseRequest{})
	require.NoError(t, err)

	result, err := svc.Submit(ctx, ownerKey, "U-01", "Kwame")
	require.NoError(t, err)

	assert.Equal(t, "profile", result.Redirect)
	assert.Equal(t, StatusReceived, result.Request.Status)
	assert.Equal(t, "Apple MacBook Pro", result.Request.Device)
	assert.Equal(t, "Will not power on after a liquid spill", result.Request.Issue)
	assert.Equal(t, "Likely a swollen battery.", result.Request.AIDiagnosis)

	history, err := svc.History(ctx, "U-01")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.Request.ID, history[0].ID)

	// The session blob is gone; the next visit starts a fresh wizard
	assert.NotContains(t, store.blobs, ownerKey)
	session, err := svc.Session(ctx, ownerKey)
	require.NoError(t, err)
	assert.Equal(t, StepDevice, session.Step)
	assert.Empty(t, session.Form.Brand)
}

func TestSubmitPrependsMostRecent(t *testing.T) {
	_, svc := testService(t)
	ctx := context.Background()

	ownerKey := OwnerKey("U-01", "")

	completeWizard(t, svc, ownerKey)
	first, err := svc.Submit(ctx, ownerKey, "U-01", "Kwame")
	require.NoError(t, err)

	completeWizard(t, svc, ownerKey)
	second, err := svc.Submit(ctx, ownerKey, "U-01", "Kwame")
	require.NoError(t, err)

	history, err := svc.History(ctx, "U-01")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.Request.ID, history[0].ID)
	assert.Equal(t, first.Request.ID, history[1].ID)
}

func TestAdoptGuestSession(t *testing.T) {
	store, svc := testService(t)
	ctx := context.Background()

	guestKey := OwnerKey("", "guest-1")
	completeWizard(t, svc, guestKey)

	require.NoError(t, svc.AdoptGuestSession(ctx, "U-01", "guest-1"))

	// The wizard now lives under the user key and the guest key is gone
	assert.NotContains(t, store.blobs, guestKey)
	userKey := OwnerKey("U-01", "")
	session, err := svc.Session(ctx, userKey)
	require.NoError(t, err)
	assert.Equal(t, StepSchedule, session.Step)
	assert.Equal(t, "Apple MacBook Pro", session.Form.Device())

	result, err := svc.Submit(ctx, userKey, "U-01", "Kwame")
	require.NoError(t, err)
	assert.Equal(t, StatusReceived, result.Request.Status)
}

func TestAdoptGuestSessionWithoutGuestState(t *testing.T) {
	store, svc := testService(t)

	require.NoError(t, svc.AdoptGuestSession(context.Background(), "U-01", "guest-1"))
	assert.NotContains(t, store.blobs, OwnerKey("U-01", ""))
}

func TestRequestDiagnosisSingleFlight(t *testing.T) {
	store, svc := testService(t)
	ctx := context.Background()

	ownerKey := OwnerKey("U-01", "")
	completeWizard(t, svc, ownerKey)

	guard := fmt.Sprintf("repair:diagnosing:%s", ownerKey)
	acquired, err := store.AcquireLock(ctx, guard, time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = svc.RequestDiagnosis(ctx, ownerKey, &DiagnoseRequest{})
	assert.ErrorIs(t, err, ErrDiagnosisBusy)

	require.NoError(t, store.ReleaseLock(ctx, guard))

	session, err := svc.RequestDiagnosis(ctx, ownerKey, &DiagnoseRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Likely a swollen battery.", session.AIDiagnosis)
	assert.Equal(t, StepSchedule, session.Step)
	assert.False(t, store.locks[guard], "guard released after the call")
}

func TestUpdateStatusRecordsEstimatedCost(t *testing.T) {
	_, svc := testService(t)
	ctx := context.Background()

	ownerKey := OwnerKey("U-01", "")
	completeWizard(t, svc, ownerKey)
	result, err := svc.Submit(ctx, ownerKey, "U-01", "Kwame")
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, result.Request.ID, StatusDiagnosing, "GHS 450")
	require.NoError(t, err)
	assert.Equal(t, StatusDiagnosing, updated.Status)
	assert.Equal(t, "GHS 450", updated.EstimatedCost)

	// The cost persists into the stored history and survives later
	// transitions that carry no cost
	updated, err = svc.UpdateStatus(ctx, result.Request.ID, StatusInRepair, "")
	require.NoError(t, err)
	assert.Equal(t, StatusInRepair, updated.Status)
	assert.Equal(t, "GHS 450", updated.EstimatedCost)

	history, err := svc.History(ctx, "U-01")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "GHS 450", history[0].EstimatedCost)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	_, svc := testService(t)
	ctx := context.Background()

	ownerKey := OwnerKey("U-01", "")
	completeWizard(t, svc, ownerKey)
	result, err := svc.Submit(ctx, ownerKey, "U-01", "Kwame")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, result.Request.ID, StatusReady, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, "no-such-repair", StatusDiagnosing, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
