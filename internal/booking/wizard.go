// Package booking holds the four-step booking wizard: an in-memory
// accumulator for a draft reservation. The draft is volatile and never
// persisted across restarts.
package booking

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/internal/appointments"
	"github.com/barberpro/barberpro-mobile/internal/validate"
	"github.com/barberpro/barberpro-mobile/pkg/logging"
)

// NotesMaxLen bounds the free-text notes on the confirm step.
const NotesMaxLen = 500

var (
	ErrNoService       = errors.New("booking: elegí un servicio primero")
	ErrServiceInactive = errors.New("booking: el servicio no está disponible")
	ErrStaffUndecided  = errors.New("booking: elegí un barbero o sin preferencia")
	ErrNoSlot          = errors.New("booking: elegí fecha y horario")
	ErrSlotUnavailable = errors.New("booking: el horario no está disponible")
)

type staffChoice int

const (
	staffUndecided staffChoice = iota
	staffChosen
	staffAny
)

// StaffSelection distinguishes "user explicitly wants any staff" from "user
// hasn't reached this step". The zero value is undecided.
type StaffSelection struct {
	choice staffChoice
	id     string
	name   string
}

// ChosenStaff selects a specific staff member.
func ChosenStaff(id, name string) StaffSelection {
	return StaffSelection{choice: staffChosen, id: id, name: name}
}

// AnyStaff is the explicit "no preference" sentinel. It is a valid selection,
// distinct from the undecided zero value.
func AnyStaff() StaffSelection {
	return StaffSelection{choice: staffAny}
}

// Decided reports whether the user answered the staff step at all.
func (s StaffSelection) Decided() bool { return s.choice != staffUndecided }

// Chosen returns the selected staff member, if one was chosen specifically.
func (s StaffSelection) Chosen() (id, name string, ok bool) {
	return s.id, s.name, s.choice == staffChosen
}

// DisplayName is the confirm-screen staff label.
func (s StaffSelection) DisplayName() string {
	if s.choice == staffChosen {
		return s.name
	}
	return "Sin preferencia"
}

// ServiceSelection is the service recorded by step one.
type ServiceSelection struct {
	ID       string
	Name     string
	Duration int
	Price    int
}

// Draft is the accumulated reservation. Fields fill strictly in step order;
// SlotStart is only set once a service and a concrete date/time exist.
type Draft struct {
	Service   *ServiceSelection
	Staff     StaffSelection
	Date      string
	SlotLabel string
	SlotStart string
	Notes     string
}

// Step identifies the wizard screen the draft is up to.
type Step int

const (
	StepSelectService Step = iota
	StepSelectStaff
	StepSelectDateTime
	StepConfirm
)

// Wizard drives the draft through its steps and commits it atomically.
type Wizard struct {
	mu     sync.Mutex
	draft  Draft
	appts  *appointments.Service
	logger *logging.Logger
}

// NewWizard creates an idle wizard with an empty draft.
func NewWizard(appts *appointments.Service, logger *logging.Logger) *Wizard {
	if logger == nil {
		logger = logging.Default()
	}
	return &Wizard{appts: appts, logger: logger}
}

// Draft returns a copy of the current draft. Back-navigation reads this to
// re-display earlier selections.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.draft
	if w.draft.Service != nil {
		svc := *w.draft.Service
		d.Service = &svc
	}
	return d
}

// Step returns the first unsatisfied step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return stepOf(w.draft)
}

// SelectService records step one. Re-selecting keeps later selections: going
// back never loses state.
func (w *Wizard) SelectService(svc api.Service) error {
	if !svc.IsActive {
		return ErrServiceInactive
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Service = &ServiceSelection{ID: svc.ID, Name: svc.Name, Duration: svc.Duration, Price: svc.Price}
	return nil
}

// SelectStaff records step two. An undecided selection is rejected; "no
// preference" is accepted.
func (w *Wizard) SelectStaff(sel StaffSelection) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft.Service == nil {
		return ErrNoService
	}
	if !sel.Decided() {
		return ErrStaffUndecided
	}
	w.draft.Staff = sel
	return nil
}

// Slots returns the availability set for the draft's service and staff on
// date. The wizard never computes availability; it only offers what the
// server returned.
func (w *Wizard) Slots(ctx context.Context, date string) ([]api.TimeSlot, error) {
	w.mu.Lock()
	svc := w.draft.Service
	staff := w.draft.Staff
	w.mu.Unlock()

	if svc == nil {
		return nil, ErrNoService
	}
	if !staff.Decided() {
		return nil, ErrStaffUndecided
	}
	var staffID *string
	if id, _, ok := staff.Chosen(); ok {
		staffID = &id
	}
	return w.appts.AvailableSlots(ctx, svc.ID, staffID, date)
}

// SelectDateTime records step three. Selecting an unavailable slot is a
// no-op: the draft is left unchanged.
func (w *Wizard) SelectDateTime(date string, slot api.TimeSlot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.draft.Service == nil {
		return ErrNoService
	}
	if !w.draft.Staff.Decided() {
		return ErrStaffUndecided
	}
	if strings.TrimSpace(date) == "" || slot.Start == "" {
		return ErrNoSlot
	}
	if !slot.Available {
		return ErrSlotUnavailable
	}
	w.draft.Date = date
	w.draft.SlotLabel = slot.Time
	w.draft.SlotStart = slot.Start
	return nil
}

// SetNotes records the optional confirm-step notes.
func (w *Wizard) SetNotes(notes string) error {
	if err := validate.NotesLength(notes, NotesMaxLen); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Notes = notes
	return nil
}

// CanCommit reports whether every required selection is explicit. No field
// is ever coerced or defaulted to reach this point.
func (w *Wizard) CanCommit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return commitError(w.draft) == nil
}

// Commit books the accumulated draft. On success the draft is cleared and
// the wizard returns to idle; on failure the draft is retained so the user
// retries without re-entering earlier steps. An incomplete draft is rejected
// before any network call.
func (w *Wizard) Commit(ctx context.Context) (api.Appointment, error) {
	w.mu.Lock()
	draft := w.draft
	w.mu.Unlock()

	if err := commitError(draft); err != nil {
		return api.Appointment{}, err
	}

	req := api.CreateAppointmentRequest{
		ServiceID: draft.Service.ID,
		StartTime: draft.SlotStart,
	}
	if id, _, ok := draft.Staff.Chosen(); ok {
		req.StaffID = &id
	}
	if notes := strings.TrimSpace(draft.Notes); notes != "" {
		req.ClientNotes = &notes
	}

	appt, err := w.appts.Create(ctx, req)
	if err != nil {
		return api.Appointment{}, err
	}

	w.mu.Lock()
	w.draft = Draft{}
	w.mu.Unlock()
	w.logger.Info("booking committed", "appointment_id", appt.ID)
	return appt, nil
}

// Abandon discards the draft explicitly.
func (w *Wizard) Abandon() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = Draft{}
}

func stepOf(d Draft) Step {
	switch {
	case d.Service == nil:
		return StepSelectService
	case !d.Staff.Decided():
		return StepSelectStaff
	case d.SlotStart == "":
		return StepSelectDateTime
	default:
		return StepConfirm
	}
}

func commitError(d Draft) error {
	switch {
	case d.Service == nil:
		return ErrNoService
	case !d.Staff.Decided():
		return ErrStaffUndecided
	case d.Date == "" || d.SlotStart == "":
		return ErrNoSlot
	default:
		return nil
	}
}
