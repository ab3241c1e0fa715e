package domain

import (
	"strconv"
	"strings"
	"time"
)

// Settings keys as stored in the key/value table.
const (
	SettingBusinessName    = "business_name"
	SettingBusinessAddress = "business_address"
	SettingBusinessPhone   = "business_phone"
	SettingCurrencyCode    = "currency_code"
	SettingReceiptFooter   = "receipt_footer"
	SettingReportingYear   = "reporting_year"
	SettingLowStockAlerts  = "low_stock_alerts"
	SettingPaymentMethod   = "default_payment_method"
)

// BusinessSettings is the branding and reporting configuration of one account.
type BusinessSettings struct {
	BusinessName         string
	BusinessAddress      string
	BusinessPhone        string
	CurrencyCode         string
	ReceiptFooter        string
	ReportingYear        int
	LowStockAlerts       bool
	DefaultPaymentMethod string
}

// DefaultSettings returns the values used when a key has never been saved.
func DefaultSettings(currency string, now time.Time) BusinessSettings {
	return BusinessSettings{
		BusinessName:         "My Tailoring Shop",
		CurrencyCode:         currency,
		ReportingYear:        now.Year(),
		LowStockAlerts:       true,
		DefaultPaymentMethod: "cash",
	}
}

// SettingsFromKV overlays stored key/value rows on top of base. Unknown keys are ignored.
func SettingsFromKV(base BusinessSettings, kv map[string]string) BusinessSettings {
	s := base
	for k, v := range kv {
		switch k {
		case SettingBusinessName:
			s.BusinessName = v
		case SettingBusinessAddress:
			s.BusinessAddress = v
		case SettingBusinessPhone:
			s.BusinessPhone = v
		case SettingCurrencyCode:
			if v != "" {
				s.CurrencyCode = strings.ToUpper(v)
			}
		case SettingReceiptFooter:
			s.ReceiptFooter = v
		case SettingReportingYear:
			if y, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && y > 0 {
				s.ReportingYear = y
			}
		case SettingLowStockAlerts:
			if b, err := strconv.ParseBool(v); err == nil {
				s.LowStockAlerts = b
			}
		case SettingPaymentMethod:
			if v != "" {
				s.DefaultPaymentMethod = v
			}
		}
	}
	return s
}

// KV flattens settings back into key/value rows.
func (s BusinessSettings) KV() map[string]string {
	return map[string]string{
		SettingBusinessName:    s.BusinessName,
		SettingBusinessAddress: s.BusinessAddress,
		SettingBusinessPhone:   s.BusinessPhone,
		SettingCurrencyCode:    s.CurrencyCode,
		SettingReceiptFooter:   s.ReceiptFooter,
		SettingReportingYear:   strconv.Itoa(s.ReportingYear),
		SettingLowStockAlerts:  strconv.FormatBool(s.LowStockAlerts),
		SettingPaymentMethod:   s.DefaultPaymentMethod,
	}
}
