package procure

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config/pricing.yaml
var pricingYAML embed.FS

// PricingConfig holds the static pricing model used to simulate supplier
// offers. Externalized so the model stays auditable in one place instead of
// scattered literals.
type PricingConfig struct {
	BasePrices       map[string]float64 `yaml:"base_prices"`
	DefaultBasePrice float64            `yaml:"default_base_price"`

	SupplierMultipliers map[string]float64 `yaml:"supplier_multipliers"`
	DefaultMultiplier   float64            `yaml:"default_multiplier"`

	BaseQuantities      map[string]int `yaml:"base_quantities"`
	DefaultBaseQuantity int            `yaml:"default_base_quantity"`

	DeliveryPatterns    map[string]int `yaml:"delivery_patterns"`
	DefaultDeliveryDays int            `yaml:"default_delivery_days"`
}

// LoadPricingConfig parses the embedded pricing model.
func LoadPricingConfig() (*PricingConfig, error) {
	raw, err := pricingYAML.ReadFile("config/pricing.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded pricing config: %w", err)
	}

	var cfg PricingConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse pricing config: %w", err)
	}

	if cfg.DefaultBasePrice <= 0 || cfg.DefaultBaseQuantity <= 0 || cfg.DefaultDeliveryDays <= 0 {
		return nil, fmt.Errorf("pricing config missing defaults")
	}
	for cat, price := range cfg.BasePrices {
		if price <= 0 {
			return nil, fmt.Errorf("pricing config: base price for %q must be positive", cat)
		}
	}

	return &cfg, nil
}

// BasePrice returns the category base price, falling back to the default for
// unknown categories.
func (c *PricingConfig) BasePrice(category string) float64 {
	if p, ok := c.BasePrices[category]; ok {
		return p
	}
	return c.DefaultBasePrice
}

// Multiplier returns the supplier's price multiplier, 1.0-equivalent default
// for unknown suppliers.
func (c *PricingConfig) Multiplier(supplierID string) float64 {
	if m, ok := c.SupplierMultipliers[supplierID]; ok {
		return m
	}
	return c.DefaultMultiplier
}

// BaseQuantity returns the category inventory baseline.
func (c *PricingConfig) BaseQuantity(category string) int {
	if q, ok := c.BaseQuantities[category]; ok {
		return q
	}
	return c.DefaultBaseQuantity
}

// DeliveryDays maps a supplier's free-text delivery range to a day estimate.
// The pattern table must stay in sync with the supplier dataset's
// delivery_time strings.
func (c *PricingConfig) DeliveryDays(deliveryTime string) int {
	for pattern, days := range c.DeliveryPatterns {
		if strings.Contains(deliveryTime, pattern) {
			return days
		}
	}
	return c.DefaultDeliveryDays
}
