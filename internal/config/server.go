package config

import (
	"fmt"
	"time"
)

// ServerConfig holds settings for the fixture storefront
type ServerConfig struct {
	Port string
	// NotificationDelay is how long the home page waits before showing the push prompt.
	NotificationDelay time.Duration
	// CartControlDelay is how long the product page waits before showing add-to-cart.
	CartControlDelay time.Duration
	// TownsDelay is how long the towns API takes to answer.
	TownsDelay      time.Duration
	AccountEmail    string
	AccountPassword string
}

// LoadServerConfig loads storefront configuration from environment variables
func LoadServerConfig(getenv func(string) string) (ServerConfig, error) {
	config := ServerConfig{
		Port:            getenv("PORT"),
		AccountEmail:    getenv("SHOP_ACCOUNT_EMAIL"),
		AccountPassword: getenv("SHOP_ACCOUNT_PASSWORD"),
	}

	if config.Port == "" {
		config.Port = "8080" // Default to port 8080
	}
	if config.AccountEmail == "" {
		config.AccountEmail = "shopper@example.com"
	}
	if config.AccountPassword == "" {
		config.AccountPassword = "JUnit5"
	}

	delays := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"SHOP_NOTIFICATION_DELAY", time.Second, &config.NotificationDelay},
		{"SHOP_CART_DELAY", 300 * time.Millisecond, &config.CartControlDelay},
		{"SHOP_TOWNS_DELAY", 500 * time.Millisecond, &config.TownsDelay},
	}
	for _, d := range delays {
		raw := getenv(d.key)
		if raw == "" {
			*d.dst = d.def
			continue
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return config, fmt.Errorf("%s must be a duration: %w", d.key, err)
		}
		if v < 0 {
			return config, fmt.Errorf("%s cannot be negative", d.key)
		}
		*d.dst = v
	}

	return config, nil
}
