package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// PlatformConfig bounds everything the pricing engine is allowed to emit.
// Prices are integer cents.
type PlatformConfig struct {
	MinPriceCents     int64  `mapstructure:"minPriceCents"`
	MaxPriceCents     int64  `mapstructure:"maxPriceCents"`
	DefaultPriceCents int64  `mapstructure:"defaultPriceCents"`
	DefaultTier       string `mapstructure:"defaultTier"`
}

func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		MinPriceCents:     99,
		MaxPriceCents:     500,
		DefaultPriceCents: 99,
		DefaultTier:       "bronze",
	}
}

// PlatformConfigHolder hot-reloads pricing platform bounds from pricing.yml.
type PlatformConfigHolder struct {
	current atomic.Value // holds PlatformConfig
}

func NewPlatformConfigHolder() (*PlatformConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("pricing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/rightsdesk/config") // Volume-mounted config
	v.AddConfigPath("/etc/rightsdesk")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	v.SetEnvPrefix("RIGHTSDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultPlatformConfig()
		v.SetDefault("pricing.minPriceCents", defaults.MinPriceCents)
		v.SetDefault("pricing.maxPriceCents", defaults.MaxPriceCents)
		v.SetDefault("pricing.defaultPriceCents", defaults.DefaultPriceCents)
		v.SetDefault("pricing.defaultTier", defaults.DefaultTier)
	}

	var cfg PlatformConfig
	if err := v.UnmarshalKey("pricing", &cfg); err != nil {
		return nil, err
	}
	if err := validatePlatformConfig(cfg); err != nil {
		return nil, err
	}

	holder := &PlatformConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated PlatformConfig
		if err := v.UnmarshalKey("pricing", &updated); err != nil {
			log.Printf("[pricing-config] reload failed: %v", err)
			return
		}
		if err := validatePlatformConfig(updated); err != nil {
			log.Printf("[pricing-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[pricing-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticPlatformConfigHolder wraps a fixed config, used by tests.
func NewStaticPlatformConfigHolder(cfg PlatformConfig) *PlatformConfigHolder {
	holder := &PlatformConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *PlatformConfigHolder) Get() PlatformConfig {
	return h.current.Load().(PlatformConfig)
}

func validatePlatformConfig(cfg PlatformConfig) error {
	if cfg.MinPriceCents <= 0 {
		return errors.New("pricing.minPriceCents must be positive")
	}
	if cfg.MaxPriceCents < cfg.MinPriceCents {
		return errors.New("pricing.maxPriceCents cannot be below minPriceCents")
	}
	if cfg.DefaultPriceCents < cfg.MinPriceCents || cfg.DefaultPriceCents > cfg.MaxPriceCents {
		return errors.New("pricing.defaultPriceCents must sit inside the platform band")
	}
	return nil
}
