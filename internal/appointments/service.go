// Package appointments layers the appointment queries and mutation flows
// over the cache and the API gateway.
package appointments

import (
	"context"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/internal/cache"
	"github.com/barberpro/barberpro-mobile/internal/notify"
	"github.com/barberpro/barberpro-mobile/pkg/logging"
)

// prefix is the cache prefix invalidated by every appointment mutation.
const prefix = "appointments"

// Service owns appointment reads and writes.
type Service struct {
	client   *api.Client
	cache    *cache.Store
	notifier notify.Notifier
	logger   *logging.Logger
}

// NewService creates the appointment service.
func NewService(client *api.Client, store *cache.Store, notifier notify.Notifier, logger *logging.Logger) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, cache: store, notifier: notifier, logger: logger}
}

// List returns the filtered appointment listing. Appointment lists use the
// always-refetch-on-mount window; the cache still coalesces concurrent reads.
func (s *Service) List(ctx context.Context, q api.AppointmentQuery) (api.AppointmentsPage, error) {
	key := cache.Key(prefix, q.CacheKey())
	return cache.ReadAs(ctx, s.cache, key, cache.StaleAppointments, func(ctx context.Context) (api.AppointmentsPage, error) {
		return s.client.ListAppointments(ctx, q)
	})
}

// AvailableSlots returns the availability set for (service, date, optional
// staff). The slot computation is server-owned. staffID nil means no
// preference.
func (s *Service) AvailableSlots(ctx context.Context, serviceID string, staffID *string, date string) ([]api.TimeSlot, error) {
	staffKey := "any"
	if staffID != nil {
		staffKey = *staffID
	}
	key := cache.Key("available-slots", serviceID, date, staffKey)
	return cache.ReadAs(ctx, s.cache, key, cache.StaleSlots, func(ctx context.Context) ([]api.TimeSlot, error) {
		return s.client.AvailableSlots(ctx, api.AvailableSlotsRequest{ServiceID: serviceID, StaffID: staffID, Date: date})
	})
}

// Create books an appointment, invalidates the appointments prefix and
// notifies the user. Mutations are never auto-retried.
func (s *Service) Create(ctx context.Context, req api.CreateAppointmentRequest) (api.Appointment, error) {
	appt, err := s.client.CreateAppointment(ctx, req)
	if err != nil {
		s.notifier.Error("Error", api.UserMessage(err))
		return api.Appointment{}, err
	}
	s.cache.Invalidate(prefix)
	s.notifier.Success("Turno reservado", "Tu turno ha sido reservado exitosamente")
	return appt, nil
}

// Cancel requests the CANCELLED transition. The server decides whether the
// transition is legal; the client only hides the action for terminal
// statuses.
func (s *Service) Cancel(ctx context.Context, id string) (api.Appointment, error) {
	status := api.StatusCancelled
	appt, err := s.client.UpdateAppointment(ctx, id, api.UpdateAppointmentRequest{Status: &status})
	if err != nil {
		s.notifier.Error("Error", api.UserMessage(err))
		return api.Appointment{}, err
	}
	s.cache.Invalidate(prefix)
	s.notifier.Success("Turno cancelado", "El turno ha sido cancelado")
	return appt, nil
}

// Update applies a partial appointment update and invalidates the listing.
func (s *Service) Update(ctx context.Context, id string, req api.UpdateAppointmentRequest) (api.Appointment, error) {
	appt, err := s.client.UpdateAppointment(ctx, id, req)
	if err != nil {
		return api.Appointment{}, err
	}
	s.cache.Invalidate(prefix)
	return appt, nil
}

// CanCancel reports whether the cancel action should be offered for an
// appointment in the given status.
func CanCancel(status api.AppointmentStatus) bool {
	return !status.Terminal()
}

// Split partitions appointments into active ones and history (terminal
// statuses), preserving order.
func Split(appts []api.Appointment) (upcoming, past []api.Appointment) {
	for _, a := range appts {
		if a.Status.Terminal() {
			past = append(past, a)
		} else {
			upcoming = append(upcoming, a)
		}
	}
	return upcoming, past
}
