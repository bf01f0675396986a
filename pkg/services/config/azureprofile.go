package config

import (
	"fmt"

	"gopkg.in/ini.v1"
)

const DefaultAzureProfile = "default"

type AzureProfile struct {
	SubscriptionID string
	TenantID       string
	ClientID       string
}

func LoadAzureProfile(path, profile string) (*AzureProfile, error) {
	if profile == "" {
		profile = DefaultAzureProfile
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load Azure config file: %w", err)
	}

	section, err := cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found in Azure config: %w", profile, err)
	}

	return &AzureProfile{
		SubscriptionID: section.Key("subscription").String(),
		TenantID:       section.Key("tenant").String(),
		ClientID:       section.Key("client_id").String(),
	}, nil
}

// applyTo fills only the fields the environment left empty.
func (p *AzureProfile) applyTo(cfg *AzureConfig) {
	if cfg.SubscriptionID == "" {
		cfg.SubscriptionID = p.SubscriptionID
	}
	if cfg.TenantID == "" {
		cfg.TenantID = p.TenantID
	}
	if cfg.ClientID == "" {
		cfg.ClientID = p.ClientID
	}
}
