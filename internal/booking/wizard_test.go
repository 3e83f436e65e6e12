package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/internal/appointments"
	"github.com/barberpro/barberpro-mobile/internal/cache"
	"github.com/barberpro/barberpro-mobile/internal/validate"
)

var (
	activeService = api.Service{ID: "svc1", Name: "Corte clásico", Duration: 30, Price: 15000, IsActive: true}
	openSlot      = api.TimeSlot{Time: "10:00", Start: "2024-06-01T10:00:00Z", End: "2024-06-01T10:30:00Z", Available: true}
)

func newTestWizard(t *testing.T, handler http.Handler) (*Wizard, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	appts := appointments.NewService(api.NewClient(ts.URL, nil, nil), cache.New(nil), nil, nil)
	return NewWizard(appts, nil), ts
}

func idleWizard(t *testing.T) *Wizard {
	w, _ := newTestWizard(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected")
	}))
	return w
}

func TestStepOrderEnforced(t *testing.T) {
	w := idleWizard(t)

	require.ErrorIs(t, w.SelectStaff(AnyStaff()), ErrNoService)
	require.ErrorIs(t, w.SelectDateTime("2024-06-01", openSlot), ErrNoService)

	require.NoError(t, w.SelectService(activeService))
	require.Equal(t, StepSelectStaff, w.Step())

	require.ErrorIs(t, w.SelectDateTime("2024-06-01", openSlot), ErrStaffUndecided)
	require.ErrorIs(t, w.SelectStaff(StaffSelection{}), ErrStaffUndecided)

	require.NoError(t, w.SelectStaff(ChosenStaff("st1", "Diego")))
	require.Equal(t, StepSelectDateTime, w.Step())

	require.NoError(t, w.SelectDateTime("2024-06-01", openSlot))
	require.Equal(t, StepConfirm, w.Step())
}

func TestInactiveServiceRejected(t *testing.T) {
	w := idleWizard(t)
	svc := activeService
	svc.IsActive = false
	require.ErrorIs(t, w.SelectService(svc), ErrServiceInactive)
	require.Equal(t, StepSelectService, w.Step())
}

func TestUnavailableSlotIsNoOp(t *testing.T) {
	w := idleWizard(t)
	require.NoError(t, w.SelectService(activeService))
	require.NoError(t, w.SelectStaff(AnyStaff()))

	taken := openSlot
	taken.Available = false
	require.ErrorIs(t, w.SelectDateTime("2024-06-01", taken), ErrSlotUnavailable)

	d := w.Draft()
	require.Empty(t, d.Date)
	require.Empty(t, d.SlotStart)
	require.Equal(t, StepSelectDateTime, w.Step())
}

func TestCanCommitRequiresEveryExplicitSelection(t *testing.T) {
	w := idleWizard(t)
	require.False(t, w.CanCommit())

	require.NoError(t, w.SelectService(activeService))
	require.False(t, w.CanCommit())

	require.NoError(t, w.SelectStaff(AnyStaff()))
	require.False(t, w.CanCommit())

	require.NoError(t, w.SelectDateTime("2024-06-01", openSlot))
	require.True(t, w.CanCommit(), "notes are optional")
}

func TestCommitIncompleteDraftNeverReachesNetwork(t *testing.T) {
	w := idleWizard(t)
	require.NoError(t, w.SelectService(activeService))

	_, err := w.Commit(context.Background())
	require.ErrorIs(t, err, ErrStaffUndecided)
}

func TestCommitOmitsOptionalFields(t *testing.T) {
	var body map[string]any
	w, _ := newTestWizard(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(rw).Encode(map[string]any{"id": "ap1", "status": "PENDING"})
	}))

	require.NoError(t, w.SelectService(activeService))
	require.NoError(t, w.SelectStaff(AnyStaff()))
	require.NoError(t, w.SelectDateTime("2024-06-01", openSlot))
	require.NoError(t, w.SetNotes("   "))

	appt, err := w.Commit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ap1", appt.ID)

	require.Equal(t, "svc1", body["serviceId"])
	require.Equal(t, "2024-06-01T10:00:00Z", body["startTime"])
	require.NotContains(t, body, "staffId", "no preference sends no staffId")
	require.NotContains(t, body, "clientNotes", "blank notes send no clientNotes")
}

func TestCommitSendsChosenStaffAndNotes(t *testing.T) {
	var body map[string]any
	w, _ := newTestWizard(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(rw).Encode(map[string]any{"id": "ap2", "status": "PENDING"})
	}))

	require.NoError(t, w.SelectService(activeService))
	require.NoError(t, w.SelectStaff(ChosenStaff("st1", "Diego")))
	require.NoError(t, w.SelectDateTime("2024-06-01", openSlot))
	require.NoError(t, w.SetNotes("Degradado bajo"))

	_, err := w.Commit(context.Background())
	require.NoError(t, err)
	require.Equal(t, "st1", body["staffId"])
	require.Equal(t, "Degradado bajo", body["clientNotes"])
}

func TestCommitSuccessClearsDraft(t *testing.T) {
	w, _ := newTestWizard(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(rw).Encode(map[string]any{"id": "ap1", "status": "PENDING"})
	}))

	require.NoError(t, w.SelectService(activeService))
	require.NoError(t, w.SelectStaff(AnyStaff()))
	require.NoError(t, w.SelectDateTime("2024-06-01", openSlot))

	_, err := w.Commit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StepSelectService, w.Step())
	require.Nil(t, w.Draft().Service)
}

func TestCommitFailureRetainsDraft(t *testing.T) {
	w, _ := newTestWizard(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(rw).Encode(map[string]string{"error": "El horario ya no está disponible"})
	}))

	require.NoError(t, w.SelectService(activeService))
	require.NoError(t, w.SelectStaff(ChosenStaff("st1", "Diego")))
	require.NoError(t, w.SelectDateTime("2024-06-01", openSlot))
	require.NoError(t, w.SetNotes("Degradado bajo"))

	_, err := w.Commit(context.Background())
	require.Error(t, err)

	d := w.Draft()
	require.NotNil(t, d.Service)
	require.Equal(t, "2024-06-01T10:00:00Z", d.SlotStart)
	require.Equal(t, "Degradado bajo", d.Notes)
	require.True(t, w.CanCommit(), "user retries without re-entering steps")
}

func TestReselectingServiceKeepsLaterSteps(t *testing.T) {
	w := idleWizard(t)
	require.NoError(t, w.SelectService(activeService))
	require.NoError(t, w.SelectStaff(ChosenStaff("st1", "Diego")))
	require.NoError(t, w.SelectDateTime("2024-06-01", openSlot))

	other := api.Service{ID: "svc2", Name: "Corte y barba", Duration: 45, Price: 22000, IsActive: true}
	require.NoError(t, w.SelectService(other))

	d := w.Draft()
	require.Equal(t, "svc2", d.Service.ID)
	require.Equal(t, "2024-06-01T10:00:00Z", d.SlotStart)
	_, name, ok := d.Staff.Chosen()
	require.True(t, ok)
	require.Equal(t, "Diego", name)
}

func TestSlotsUseDraftScope(t *testing.T) {
	var got api.AvailableSlotsRequest
	w, _ := newTestWizard(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(rw).Encode(map[string]any{"slots": []any{}})
	}))

	_, err := w.Slots(context.Background(), "2024-06-01")
	require.ErrorIs(t, err, ErrNoService)

	require.NoError(t, w.SelectService(activeService))
	require.NoError(t, w.SelectStaff(ChosenStaff("st1", "Diego")))

	_, err = w.Slots(context.Background(), "2024-06-01")
	require.NoError(t, err)
	require.Equal(t, "svc1", got.ServiceID)
	require.NotNil(t, got.StaffID)
	require.Equal(t, "st1", *got.StaffID)
	require.Equal(t, "2024-06-01", got.Date)
}

func TestNotesBounded(t *testing.T) {
	w := idleWizard(t)
	require.NoError(t, w.SetNotes(strings.Repeat("á", 500)))

	err := w.SetNotes(strings.Repeat("á", 501))
	require.True(t, validate.IsValidation(err))
	require.Equal(t, strings.Repeat("á", 500), w.Draft().Notes, "rejected notes leave the draft unchanged")
}

func TestAbandonDiscardsDraft(t *testing.T) {
	w := idleWizard(t)
	require.NoError(t, w.SelectService(activeService))
	require.NoError(t, w.SelectStaff(AnyStaff()))

	w.Abandon()
	require.Equal(t, StepSelectService, w.Step())
	require.False(t, w.Draft().Staff.Decided())
}

func TestStaffSelectionDisplay(t *testing.T) {
	require.Equal(t, "Sin preferencia", AnyStaff().DisplayName())
	require.Equal(t, "Diego", ChosenStaff("st1", "Diego").DisplayName())
	require.False(t, (StaffSelection{}).Decided())
}
