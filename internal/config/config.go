package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	ierr "github.com/vendorgate/vendorgate/internal/errors"
	"github.com/vendorgate/vendorgate/internal/types"
)

// GoogleCertURL is the fixed certificate-metadata URL of the marketplace's
// commerce partner service account. Inbound marketplace tokens must carry
// this exact issuer.
const GoogleCertURL = "https://www.googleapis.com/robot/v1/metadata/x509/cloud-commerce-partner@system.gserviceaccount.com"

// Configuration holds the full application configuration loaded at startup.
type Configuration struct {
	Deployment  DeploymentConfig           `mapstructure:"deployment" validate:"required"`
	Server      ServerConfig               `mapstructure:"server" validate:"required"`
	Logging     LoggingConfig              `mapstructure:"logging"`
	Sentry      SentryConfig               `mapstructure:"sentry"`
	Marketplace MarketplaceConfig          `mapstructure:"marketplace" validate:"required"`
	Email       EmailConfig                `mapstructure:"email"`
	Kafka       KafkaConfig                `mapstructure:"kafka"`
	Products    map[string]ProductSettings `mapstructure:"products"`
}

type DeploymentConfig struct {
	Mode string `mapstructure:"mode"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" default:":8080"`
}

type LoggingConfig struct {
	Level          types.LogLevel `mapstructure:"level" default:"info"`
	FluentdEnabled bool           `mapstructure:"fluentd_enabled"`
	FluentdHost    string         `mapstructure:"fluentd_host"`
	FluentdPort    int            `mapstructure:"fluentd_port"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// MarketplaceConfig configures the procurement backend and the signup
// activation flow.
type MarketplaceConfig struct {
	// ProjectID is the provider project registered with the marketplace,
	// used to build providers/{project}/... resource names.
	ProjectID string `mapstructure:"project_id" validate:"required"`
	// Audience the marketplace token must be minted for.
	Audience string `mapstructure:"audience" validate:"required"`
	// CertURL overrides the trusted issuer / certificate URL. Only set in tests.
	CertURL string `mapstructure:"cert_url"`
	// AutoApproveEntitlements approves pending entitlement creation requests
	// as part of the account activation flow.
	AutoApproveEntitlements bool `mapstructure:"auto_approve_entitlements"`
}

// EffectiveCertURL returns the trusted certificate URL for token verification.
func (m MarketplaceConfig) EffectiveCertURL() string {
	if m.CertURL != "" {
		return m.CertURL
	}

	return GoogleCertURL
}

type EmailConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
	// Recipients receive account lifecycle notifications. Entitlement
	// notifications use the per-product recipient lists instead.
	Recipients []string `mapstructure:"recipients"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ClientID      string   `mapstructure:"client_id"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
}

// ProductSettings is the per-product configuration resolved by the first
// dot-segment of an entitlement's product identifier. Defaults are resolved
// once at load time, not at access time.
type ProductSettings struct {
	AutoApprove     bool     `mapstructure:"auto_approve"`
	EmailRecipients []string `mapstructure:"email_recipients"`
	SlackWebhook    string   `mapstructure:"slack_webhook"`
	EventTopic      string   `mapstructure:"event_topic"`
}

// NewConfig loads configuration from config files and environment variables.
func NewConfig() (*Configuration, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/config")

	// Local development convenience; missing .env files are fine.
	_ = godotenv.Load()

	v.SetEnvPrefix("VENDORGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, ierr.WithError(err).
				WithHint("Failed to read configuration file").
				Mark(ierr.ErrSystem)
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to unmarshal configuration").
			Mark(ierr.ErrSystem)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", "api")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("kafka.client_id", "vendorgate")
}

// Validate checks that required settings are present.
func (c *Configuration) Validate() error {
	if c.Marketplace.ProjectID == "" {
		return ierr.NewError("marketplace.project_id is required").
			WithHint("Set the marketplace provider project id").
			Mark(ierr.ErrValidation)
	}

	if c.Marketplace.Audience == "" {
		return ierr.NewError("marketplace.audience is required").
			WithHint("Set the marketplace token audience").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ProductSettingsFor resolves per-product settings for a product key. A
// missing product resolves to zero-value settings and ok=false so callers
// can decide whether an unconfigured product is an error.
func (c *Configuration) ProductSettingsFor(productKey string) (ProductSettings, bool) {
	settings, ok := c.Products[productKey]
	return settings, ok
}

// GetDefaultConfig returns a minimal configuration suitable for tests and
// scripts that do not load config files.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: "test"},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Marketplace: MarketplaceConfig{
			ProjectID: "test-project",
			Audience:  "test-audience",
		},
		Products: map[string]ProductSettings{},
	}
}
