// Package profile covers account self-service: profile edits, password
// changes and the haircut history.
package profile

import (
	"context"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/internal/cache"
	"github.com/barberpro/barberpro-mobile/internal/notify"
	"github.com/barberpro/barberpro-mobile/internal/validate"
)

// Service owns the profile flows.
type Service struct {
	client   *api.Client
	cache    *cache.Store
	notifier notify.Notifier
}

// NewService creates the profile service.
func NewService(client *api.Client, store *cache.Store, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{client: client, cache: store, notifier: notifier}
}

// Update applies a partial profile update and invalidates the user's cached
// detail.
func (s *Service) Update(ctx context.Context, userID string, req api.UpdateUserRequest) (api.AuthUser, error) {
	user, err := s.client.UpdateUser(ctx, userID, req)
	if err != nil {
		s.notifier.Error("Error", api.UserMessage(err))
		return api.AuthUser{}, err
	}
	s.cache.Invalidate(cache.Key("user", userID))
	s.notifier.Success("Perfil actualizado", "Tu perfil ha sido actualizado exitosamente")
	return user, nil
}

// ChangePassword validates the request client-side and changes the account
// password. Invalid input never reaches the network and is surfaced like a
// server error.
func (s *Service) ChangePassword(ctx context.Context, userID string, req api.ChangePasswordRequest) error {
	if err := s.validatePasswordChange(req); err != nil {
		s.notifier.Error("Error", err.Error())
		return err
	}
	if err := s.client.ChangePassword(ctx, userID, req); err != nil {
		s.notifier.Error("Error", api.UserMessage(err))
		return err
	}
	s.notifier.Success("Contraseña actualizada", "Tu contraseña ha sido cambiada exitosamente")
	return nil
}

// Records returns the client's haircut history through the cache.
func (s *Service) Records(ctx context.Context) ([]api.HaircutRecord, error) {
	return cache.ReadAs(ctx, s.cache, cache.Key("records"), cache.StaleDefault, func(ctx context.Context) ([]api.HaircutRecord, error) {
		return s.client.ListRecords(ctx)
	})
}

func (s *Service) validatePasswordChange(req api.ChangePasswordRequest) error {
	if err := validate.Required("contraseña actual", req.CurrentPassword); err != nil {
		return err
	}
	if err := validate.Password(req.NewPassword); err != nil {
		return err
	}
	return validate.PasswordConfirmation(req.NewPassword, req.ConfirmPassword)
}
