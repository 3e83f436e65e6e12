// Package catalog serves the service catalog, staff roster and promotion
// settings through the read-through cache. All reads are anonymous.
package catalog

import (
	"context"
	"strconv"
	"time"

	"github.com/barberpro/barberpro-mobile/internal/api"
	"github.com/barberpro/barberpro-mobile/internal/cache"
)

// Service answers reference-data queries.
type Service struct {
	client *api.Client
	cache  *cache.Store
}

// NewService creates the catalog service.
func NewService(client *api.Client, store *cache.Store) *Service {
	return &Service{client: client, cache: store}
}

// ListServices returns the service catalog, cached for the long reference
// window.
func (s *Service) ListServices(ctx context.Context, activeOnly bool) ([]api.Service, error) {
	key := cache.Key("services", strconv.FormatBool(activeOnly))
	return cache.ReadAs(ctx, s.cache, key, cache.StaleCatalog, func(ctx context.Context) ([]api.Service, error) {
		return s.client.ListServices(ctx, activeOnly)
	})
}

// ListStaff returns the staff roster, cached for the long reference window.
func (s *Service) ListStaff(ctx context.Context) ([]api.StaffMember, error) {
	return cache.ReadAs(ctx, s.cache, cache.Key("staff"), cache.StaleCatalog, func(ctx context.Context) ([]api.StaffMember, error) {
		return s.client.ListStaff(ctx)
	})
}

// Promotion returns the shop promotion settings.
func (s *Service) Promotion(ctx context.Context) (api.PromotionConfig, error) {
	return cache.ReadAs(ctx, s.cache, cache.Key("promotion"), cache.StalePromotion, func(ctx context.Context) (api.PromotionConfig, error) {
		return s.client.GetPromotion(ctx)
	})
}

// IsPromoActive reports whether the weekly promotion applies on the given
// day.
func IsPromoActive(cfg api.PromotionConfig, now time.Time) bool {
	return cfg.Enabled && int(now.Weekday()) == cfg.Day
}

// DiscountedPrice applies the promotion discount to a service price, floored
// at zero. The bool reports whether a discount applied.
func DiscountedPrice(price int, serviceID string, cfg api.PromotionConfig, now time.Time) (int, bool) {
	if !IsPromoActive(cfg, now) {
		return price, false
	}
	for _, id := range cfg.ServiceIDs {
		if id == serviceID {
			final := price - cfg.Discount
			if final < 0 {
				final = 0
			}
			return final, true
		}
	}
	return price, false
}
