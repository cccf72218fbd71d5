package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/highroller/payroll-api/internal/models"
	"github.com/highroller/payroll-api/pkg/geocoding"
	"github.com/highroller/payroll-api/pkg/validation"
)

type geocoder interface {
	Enabled() bool
	Lookup(ctx context.Context, address string) (geocoding.Result, error)
}

// AddressCheck reports how an address was judged.
type AddressCheck struct {
	Valid            bool   `json:"valid"`
	Method           string `json:"method"`
	FormattedAddress string `json:"formattedAddress,omitempty"`
}

const (
	addressMethodFormat    = "format"
	addressMethodGeocoding = "geocoding"
	addressMethodFallback  = "fallback"
)

// AddressService validates employee postal addresses, via geocoding when configured.
type AddressService struct {
	geocoder       geocoder
	defaultCountry string
	metrics        *MetricsService
	logger         *zap.Logger
}

// NewAddressService constructs the service. A nil geocoder always uses the fallback rule.
func NewAddressService(geo geocoder, defaultCountry string, metrics *MetricsService, logger *zap.Logger) *AddressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(defaultCountry) == "" {
		defaultCountry = "Philippines"
	}
	return &AddressService{geocoder: geo, defaultCountry: defaultCountry, metrics: metrics, logger: logger}
}

// Validate checks the basic format, then asks the geocoder. NotFound and Error outcomes fall back
// to the zip + province rule.
func (s *AddressService) Validate(ctx context.Context, addr models.Address) AddressCheck {
	if !basicAddressFormat(addr) {
		return AddressCheck{Valid: false, Method: addressMethodFormat}
	}
	if s.geocoder == nil || !s.geocoder.Enabled() {
		return s.fallback(addr)
	}

	country := addr.Country
	if strings.TrimSpace(country) == "" {
		country = s.defaultCountry
	}
	formatted := geocoding.FormatAddress(addr.House, addr.Barangay, addr.City, addr.Province, addr.Zip, country)

	start := time.Now()
	result, err := s.geocoder.Lookup(ctx, formatted)
	s.metrics.ObserveGeocoding(result.Outcome.String(), time.Since(start))
	if err != nil {
		s.logger.Warn("geocoding lookup failed", zap.String("address", formatted), zap.Error(err))
		return s.fallback(addr)
	}
	if result.Outcome == geocoding.OutcomeFound {
		return AddressCheck{Valid: true, Method: addressMethodGeocoding, FormattedAddress: result.FormattedAddress}
	}
	s.logger.Info("geocoding did not confirm address", zap.String("address", formatted), zap.String("status", result.Status))
	return s.fallback(addr)
}

func (s *AddressService) fallback(addr models.Address) AddressCheck {
	return AddressCheck{
		Valid:  validation.IsValidZipCode(addr.Zip) && validation.IsValidProvince(addr.Province),
		Method: addressMethodFallback,
	}
}

func basicAddressFormat(addr models.Address) bool {
	return validation.IsValidLength(addr.House, 200) &&
		validation.IsValidLength(addr.City, 100) &&
		validation.IsValidLength(addr.Province, 50) &&
		strings.TrimSpace(addr.Zip) != ""
}
