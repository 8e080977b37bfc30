package cmd_test

import (
	"testing"
	"time"

	"buyback/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := cmd.LoadConfig(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Empty(t, cfg.DBHost)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "usps", cfg.DefaultCarrierCode)
	assert.Equal(t, 20*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "@every 30m", cfg.TrackingPollSchedule)
	assert.Equal(t, int64(100000), cfg.OrderSequenceSeed)
	assert.False(t, cfg.TracingEnabled)
	assert.Nil(t, cfg.LabelProfiles)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := cmd.LoadConfig(envOf(map[string]string{
		"KAFKA_BROKERS":          " kafka-1:9092, ,kafka-2:9092 ",
		"PROVIDER_TIMEOUT":       "5s",
		"ORDER_SEQUENCE_SEED":    "500000",
		"TRACKING_POLL_SCHEDULE": "*/10 * * * *",
		"WAREHOUSE_NAME":         "Receiving",
		"WAREHOUSE_STREET1":      "10 Dock Rd",
		"WAREHOUSE_CITY":         "Reno",
		"WAREHOUSE_STATE":        "NV",
		"WAREHOUSE_POSTAL_CODE":  "89501",
		"LABEL_PROFILES": `[
			{"name": "main", "serviceCode": "usps_priority_mail", "weightOz": 12},
			{"carrierCode": "ups", "origin": {"name": "East", "street1": "2 Pier St", "city": "Newark", "state": "NJ", "postalCode": "07102"}}
		]`,
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, int64(500000), cfg.OrderSequenceSeed)
	assert.Equal(t, "*/10 * * * *", cfg.TrackingPollSchedule)

	require.Len(t, cfg.LabelProfiles, 2)
	assert.Equal(t, "main", cfg.LabelProfiles[0].Name)
	assert.Equal(t, "usps", cfg.LabelProfiles[0].CarrierCode)
	assert.Equal(t, "Reno", cfg.LabelProfiles[0].Origin.City())
	assert.Equal(t, "profile-2", cfg.LabelProfiles[1].Name)
	assert.Equal(t, "ups", cfg.LabelProfiles[1].CarrierCode)
	assert.Equal(t, "Newark", cfg.LabelProfiles[1].Origin.City())
}

func TestLoadConfig_PromoCodes(t *testing.T) {
	cfg, err := cmd.LoadConfig(envOf(map[string]string{
		"PROMO_CODES": `[
			{"code": "fall10", "usesLeft": 100, "bonusAmount": 10},
			{"code": "EMAIL25", "usesLeft": 5, "bonusAmount": 25, "requiresEmailLabel": true}
		]`,
	}))
	require.NoError(t, err)

	require.Len(t, cfg.PromoCodes, 2)
	assert.Equal(t, "FALL10", cfg.PromoCodes[0].Code())
	assert.Equal(t, 100, cfg.PromoCodes[0].UsesLeft())
	assert.False(t, cfg.PromoCodes[0].RequiresEmailLabel())
	assert.Equal(t, 25.0, cfg.PromoCodes[1].BonusAmount())
	assert.True(t, cfg.PromoCodes[1].RequiresEmailLabel())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad timeout":      {"PROVIDER_TIMEOUT": "soon"},
		"negative timeout": {"PROVIDER_TIMEOUT": "-1s"},
		"bad seed":         {"ORDER_SEQUENCE_SEED": "one"},
		"bad tracing flag": {"TRACING_ENABLED": "maybe"},
		"bad profiles":     {"LABEL_PROFILES": "[{"},
		"no origin":        {"LABEL_PROFILES": `[{"name": "main"}]`},
		"bad promos":       {"PROMO_CODES": `{"code": "X"}`},
		"unnamed promo":    {"PROMO_CODES": `[{"usesLeft": 3}]`},
		"negative uses":    {"PROMO_CODES": `[{"code": "X", "usesLeft": -1}]`},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := cmd.LoadConfig(envOf(env))
			require.Error(t, err)
		})
	}
}
