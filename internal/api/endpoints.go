package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Login exchanges credentials for a token and user profile. Anonymous.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}
	return Call[LoginResponse](ctx, c, http.MethodPost, "/api/auth/mobile-login", body, SkipAuth())
}

// Register creates an account. It does not return a usable session token;
// callers follow up with Login. Anonymous.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	_, err := c.Do(ctx, http.MethodPost, "/api/auth/register", req, SkipAuth())
	return err
}

// ListServices returns the service catalog. Anonymous.
func (c *Client) ListServices(ctx context.Context, activeOnly bool) ([]Service, error) {
	path := "/api/services?active=" + strconv.FormatBool(activeOnly)
	out, err := Call[servicesResponse](ctx, c, http.MethodGet, path, nil, SkipAuth())
	if err != nil {
		return nil, err
	}
	return out.Services, nil
}

// ListStaff returns the staff roster. Anonymous.
func (c *Client) ListStaff(ctx context.Context) ([]StaffMember, error) {
	out, err := Call[staffResponse](ctx, c, http.MethodGet, "/api/staff", nil, SkipAuth())
	if err != nil {
		return nil, err
	}
	return out.Staff, nil
}

// AvailableSlots returns the slot set for (service, date, optional staff).
// The availability computation is server-owned; the result is opaque.
// Anonymous.
func (c *Client) AvailableSlots(ctx context.Context, req AvailableSlotsRequest) ([]TimeSlot, error) {
	out, err := Call[slotsResponse](ctx, c, http.MethodPost, "/api/appointments/available-slots", req, SkipAuth())
	if err != nil {
		return nil, err
	}
	return out.Slots, nil
}

// ListAppointments returns the filtered appointment listing.
func (c *Client) ListAppointments(ctx context.Context, q AppointmentQuery) (AppointmentsPage, error) {
	path := "/api/appointments"
	if enc := q.encode(); enc != "" {
		path += "?" + enc
	}
	return Call[AppointmentsPage](ctx, c, http.MethodGet, path, nil)
}

// CreateAppointment books an appointment from a committed wizard draft.
func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) (Appointment, error) {
	return Call[Appointment](ctx, c, http.MethodPost, "/api/appointments", req)
}

// UpdateAppointment applies a partial update. The server enforces which
// status transitions are legal.
func (c *Client) UpdateAppointment(ctx context.Context, id string, req UpdateAppointmentRequest) (Appointment, error) {
	return Call[Appointment](ctx, c, http.MethodPatch, "/api/appointments/"+url.PathEscape(id), req)
}

// ListRecords returns the client's haircut history.
func (c *Client) ListRecords(ctx context.Context) ([]HaircutRecord, error) {
	out, err := Call[recordsResponse](ctx, c, http.MethodGet, "/api/records", nil)
	if err != nil {
		return nil, err
	}
	return out.Records, nil
}

// UpdateUser applies a partial profile update.
func (c *Client) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (AuthUser, error) {
	return Call[AuthUser](ctx, c, http.MethodPatch, "/api/users/"+url.PathEscape(id), req)
}

// ChangePassword changes the account password.
func (c *Client) ChangePassword(ctx context.Context, id string, req ChangePasswordRequest) error {
	_, err := c.Do(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id)+"/password", req)
	return err
}

// GetPromotion returns the shop promotion settings. Anonymous.
func (c *Client) GetPromotion(ctx context.Context) (PromotionConfig, error) {
	out, err := Call[promotionResponse](ctx, c, http.MethodGet, "/api/settings/promotion", nil, SkipAuth())
	if err != nil {
		return PromotionConfig{}, err
	}
	return out.Promotion, nil
}

func (q AppointmentQuery) encode() string {
	params := url.Values{}
	if len(q.Status) > 0 {
		parts := make([]string, 0, len(q.Status))
		for _, s := range q.Status {
			parts = append(parts, string(s))
		}
		params.Set("status", strings.Join(parts, ","))
	}
	if q.ClientID != "" {
		params.Set("clientId", q.ClientID)
	}
	if q.StaffID != "" {
		params.Set("staffId", q.StaffID)
	}
	if q.Date != "" {
		params.Set("date", q.Date)
	}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	return params.Encode()
}

// CacheKey is the stable serialization of the query used as a cache-key
// component. Identical queries always serialize identically.
func (q AppointmentQuery) CacheKey() string {
	enc := q.encode()
	if enc == "" {
		return "all"
	}
	return enc
}
