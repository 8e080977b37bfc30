package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"buyback/internal/adapters/out/carrier"
	"buyback/internal/core/application/sequence"
	"buyback/internal/core/application/usecases/commands"
	"buyback/internal/core/domain/model/kernel"
	"buyback/internal/core/domain/model/promo"
	"buyback/internal/jobs"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	RedisAddr               string
	KafkaBrokers            []string
	KafkaNotificationsTopic string

	TrackingPrimaryURL     string
	TrackingPrimaryAPIKey  string
	TrackingFallbackURL    string
	TrackingFallbackAPIKey string
	LabelProviderURL       string
	LabelProviderAPIKey    string
	LabelProfiles          []commands.LabelProfile
	DefaultCarrierCode     string
	ProviderTimeout        time.Duration

	TrackingPollSchedule string
	LogLevel             string
	TracingEnabled       bool
	OrderSequenceSeed    int64

	// PromoCodes are created at startup when missing. Existing codes keep
	// their stored usage.
	PromoCodes []*promo.PromoCode
}

// promoSetting is one entry of the PROMO_CODES JSON array.
type promoSetting struct {
	Code               string  `json:"code"`
	UsesLeft           int     `json:"usesLeft"`
	BonusAmount        float64 `json:"bonusAmount"`
	RequiresEmailLabel bool    `json:"requiresEmailLabel"`
}

// profileSetting is one entry of the LABEL_PROFILES JSON array. A profile
// without an origin ships from the warehouse address.
type profileSetting struct {
	Name        string          `json:"name"`
	CarrierCode string          `json:"carrierCode"`
	ServiceCode string          `json:"serviceCode"`
	PackageCode string          `json:"packageCode"`
	WeightOz    float64         `json:"weightOz"`
	Origin      *addressSetting `json:"origin"`
}

type addressSetting struct {
	Name       string `json:"name"`
	Street1    string `json:"street1"`
	Street2    string `json:"street2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

func (a addressSetting) address() (kernel.Address, error) {
	addr, err := kernel.NewAddress(a.Name, a.Street1, a.Street2, a.City, a.State, a.PostalCode, a.Country)
	if err != nil {
		return kernel.Address{}, err
	}
	return addr.WithPhone(a.Phone), nil
}

// LoadConfig reads the configuration through getenv, normally os.Getenv.
func LoadConfig(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPPort:   env("HTTP_PORT", "8080"),
		DBHost:     env("DB_HOST", ""),
		DBPort:     env("DB_PORT", "5432"),
		DBUser:     env("DB_USER", ""),
		DBPassword: env("DB_PASSWORD", ""),
		DBName:     env("DB_NAME", ""),
		DBSslMode:  env("DB_SSLMODE", "disable"),

		RedisAddr:               env("REDIS_ADDR", ""),
		KafkaBrokers:            splitList(env("KAFKA_BROKERS", "")),
		KafkaNotificationsTopic: env("KAFKA_NOTIFICATIONS_TOPIC", "order-notifications"),

		TrackingPrimaryURL:     env("TRACKING_PRIMARY_URL", ""),
		TrackingPrimaryAPIKey:  env("TRACKING_PRIMARY_API_KEY", ""),
		TrackingFallbackURL:    env("TRACKING_FALLBACK_URL", ""),
		TrackingFallbackAPIKey: env("TRACKING_FALLBACK_API_KEY", ""),
		LabelProviderURL:       env("LABEL_PROVIDER_URL", ""),
		LabelProviderAPIKey:    env("LABEL_PROVIDER_API_KEY", ""),
		DefaultCarrierCode:     env("DEFAULT_CARRIER_CODE", "usps"),

		TrackingPollSchedule: env("TRACKING_POLL_SCHEDULE", jobs.DefaultTrackingSchedule),
		LogLevel:             env("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.ProviderTimeout, err = time.ParseDuration(env("PROVIDER_TIMEOUT", carrier.DefaultTimeout.String())); err != nil {
		return Config{}, fmt.Errorf("PROVIDER_TIMEOUT: %w", err)
	}
	if cfg.ProviderTimeout <= 0 {
		return Config{}, errors.New("PROVIDER_TIMEOUT: must be positive")
	}
	if cfg.OrderSequenceSeed, err = strconv.ParseInt(env("ORDER_SEQUENCE_SEED", strconv.Itoa(sequence.DefaultOrderSeed)), 10, 64); err != nil {
		return Config{}, fmt.Errorf("ORDER_SEQUENCE_SEED: %w", err)
	}
	if cfg.TracingEnabled, err = strconv.ParseBool(env("TRACING_ENABLED", "false")); err != nil {
		return Config{}, fmt.Errorf("TRACING_ENABLED: %w", err)
	}

	warehouse := addressSetting{
		Name:       env("WAREHOUSE_NAME", ""),
		Street1:    env("WAREHOUSE_STREET1", ""),
		Street2:    env("WAREHOUSE_STREET2", ""),
		City:       env("WAREHOUSE_CITY", ""),
		State:      env("WAREHOUSE_STATE", ""),
		PostalCode: env("WAREHOUSE_POSTAL_CODE", ""),
		Country:    env("WAREHOUSE_COUNTRY", "US"),
		Phone:      env("WAREHOUSE_PHONE", ""),
	}
	if cfg.LabelProfiles, err = parseLabelProfiles(env("LABEL_PROFILES", ""), warehouse, cfg.DefaultCarrierCode); err != nil {
		return Config{}, fmt.Errorf("LABEL_PROFILES: %w", err)
	}
	if cfg.PromoCodes, err = parsePromoCodes(env("PROMO_CODES", "")); err != nil {
		return Config{}, fmt.Errorf("PROMO_CODES: %w", err)
	}

	return cfg, nil
}

func parsePromoCodes(raw string) ([]*promo.PromoCode, error) {
	if raw == "" {
		return nil, nil
	}
	var settings []promoSetting
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, err
	}

	codes := make([]*promo.PromoCode, 0, len(settings))
	for i, s := range settings {
		code, err := promo.NewPromoCode(s.Code, s.UsesLeft, s.BonusAmount, s.RequiresEmailLabel)
		if err != nil {
			return nil, fmt.Errorf("promo %d: %w", i, err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func parseLabelProfiles(raw string, warehouse addressSetting, defaultCarrier string) ([]commands.LabelProfile, error) {
	if raw == "" {
		return nil, nil
	}
	var settings []profileSetting
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, err
	}

	profiles := make([]commands.LabelProfile, 0, len(settings))
	for i, s := range settings {
		origin := warehouse
		if s.Origin != nil {
			origin = *s.Origin
		}
		addr, err := origin.address()
		if err != nil {
			return nil, fmt.Errorf("profile %d origin: %w", i, err)
		}
		if s.CarrierCode == "" {
			s.CarrierCode = defaultCarrier
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("profile-%d", i+1)
		}
		profiles = append(profiles, commands.LabelProfile{
			Name:        s.Name,
			Origin:      addr,
			CarrierCode: s.CarrierCode,
			ServiceCode: s.ServiceCode,
			PackageCode: s.PackageCode,
			WeightOz:    s.WeightOz,
		})
	}
	return profiles, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
