package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MonitorConfig struct {
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

type AzureConfig struct {
	TenantID       string `mapstructure:"tenant_id" validate:"required"`
	ClientID       string `mapstructure:"client_id" validate:"required"`
	ClientSecret   string `mapstructure:"client_secret" validate:"required"`
	SubscriptionID string `mapstructure:"subscription_id" validate:"required"`
	ResourceGroup  string `mapstructure:"resource_group" validate:"required"`
	StaticSiteName string `mapstructure:"static_site_name" validate:"required"`
	// TokenURL switches token exchange to a plain OAuth2 client-credentials
	// call against this endpoint.
	TokenURL string `mapstructure:"token_url"`
}

type AWSConfig struct {
	Region     string `mapstructure:"region"`
	InstanceID string `mapstructure:"instance_id" validate:"required"`
	PublicDNS  string `mapstructure:"public_dns"`
	PublicIP   string `mapstructure:"public_ip"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Monitor MonitorConfig `mapstructure:"monitor"`
	Azure   AzureConfig   `mapstructure:"azure"`
	AWS     AWSConfig     `mapstructure:"aws"`
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

type LoadOptions struct {
	// ConfigFile is an optional YAML file. Environment variables win over it.
	ConfigFile string
	// AzureProfilePath is an optional ~/.azure/config style file used to
	// fill Azure identifiers left empty by the environment.
	AzureProfilePath string
	AzureProfile     string
}

var envBindings = map[string]string{
	"server.host":             "SERVER_HOST",
	"server.port":             "SERVER_PORT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",
	"server.cors_origins":     "CORS_ORIGINS",
	"log.level":               "LOG_LEVEL",
	"monitor.call_timeout":    "MONITOR_CALL_TIMEOUT",
	"azure.tenant_id":         "AZURE_TENANT_ID",
	"azure.client_id":         "AZURE_CLIENT_ID",
	"azure.client_secret":     "AZURE_CLIENT_SECRET",
	"azure.subscription_id":   "AZURE_SUBSCRIPTION_ID",
	"azure.resource_group":    "AZURE_RESOURCE_GROUP",
	"azure.static_site_name":  "AZURE_STATIC_SITE_NAME",
	"azure.token_url":         "AZURE_TOKEN_URL",
	"aws.region":              "AWS_REGION",
	"aws.instance_id":         "AWS_EC2_INSTANCE_ID",
	"aws.public_dns":          "AWS_EC2_PUBLIC_DNS",
	"aws.public_ip":           "AWS_EC2_PUBLIC_IP",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("monitor.call_timeout", 10*time.Second)
	v.SetDefault("aws.region", "us-east-1")
}

func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if opts.AzureProfilePath != "" {
		profile, err := LoadAzureProfile(opts.AzureProfilePath, opts.AzureProfile)
		if err != nil {
			return nil, err
		}
		profile.applyTo(&cfg.Azure)
	}

	return &cfg, nil
}

// Validate reports every missing required identifier at once.
func (c Config) Validate() error {
	var errs []error
	require := func(value, key string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required (%s)", key, envBindings[key]))
		}
	}

	require(c.Server.Port, "server.port")
	require(c.Azure.TenantID, "azure.tenant_id")
	require(c.Azure.ClientID, "azure.client_id")
	require(c.Azure.ClientSecret, "azure.client_secret")
	require(c.Azure.SubscriptionID, "azure.subscription_id")
	require(c.Azure.ResourceGroup, "azure.resource_group")
	require(c.Azure.StaticSiteName, "azure.static_site_name")
	require(c.AWS.InstanceID, "aws.instance_id")

	if c.Monitor.CallTimeout <= 0 {
		errs = append(errs, errors.New("monitor.call_timeout must be positive"))
	}

	return errors.Join(errs...)
}
