package service

import (
	"context"
	"fmt"
	"strings"

	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/ports"
)

// SettingsService assembles BusinessSettings from key/value rows, read through an optional cache.
type SettingsService struct {
	Store           ports.SettingsStore
	Cache           ports.SettingsCache
	DefaultCurrency string
	Clock           Clock
}

func (s SettingsService) Get(ctx context.Context, ownerUserID int64) (domain.BusinessSettings, error) {
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, ownerUserID); ok {
			return *cached, nil
		}
	}
	kv, err := s.Store.Load(ctx, ownerUserID)
	if err != nil {
		return domain.BusinessSettings{}, fmt.Errorf("load settings: %w", err)
	}
	out := domain.SettingsFromKV(domain.DefaultSettings(s.DefaultCurrency, s.Clock.now()), kv)
	if s.Cache != nil {
		s.Cache.Set(ctx, ownerUserID, out)
	}
	return out, nil
}

func (s SettingsService) Save(ctx context.Context, ownerUserID int64, in domain.BusinessSettings) (domain.BusinessSettings, error) {
	in.CurrencyCode = strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	if in.CurrencyCode == "" {
		in.CurrencyCode = s.DefaultCurrency
	}
	if len(in.CurrencyCode) != 3 {
		return domain.BusinessSettings{}, invalid("currency_code must be a 3-letter code")
	}
	if in.ReportingYear == 0 {
		in.ReportingYear = s.Clock.now().Year()
	}
	if in.ReportingYear < 2000 || in.ReportingYear > 9999 {
		return domain.BusinessSettings{}, invalid("reporting_year %d out of range", in.ReportingYear)
	}
	if strings.TrimSpace(in.BusinessName) == "" {
		return domain.BusinessSettings{}, invalid("business_name is required")
	}
	if err := s.Store.Save(ctx, ownerUserID, in.KV()); err != nil {
		return domain.BusinessSettings{}, fmt.Errorf("save settings: %w", err)
	}
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, ownerUserID)
	}
	return in, nil
}
