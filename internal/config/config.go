package config

import (
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/copyleftdev/IBMOLS/internal/optimization/solver"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search struct {
		Problem        string        `env:"SEARCH_PROBLEM" envDefault:"flowshop"`
		Size           int           `env:"SEARCH_SIZE" envDefault:"20"`
		Machines       int           `env:"SEARCH_MACHINES" envDefault:"5"`
		PopulationSize int           `env:"SEARCH_POPULATION_SIZE" envDefault:"20"`
		MaxSteps       int           `env:"SEARCH_MAX_STEPS" envDefault:"100000"`
		Kappa          float64       `env:"SEARCH_KAPPA" envDefault:"0.05"`
		Indicator      string        `env:"SEARCH_INDICATOR" envDefault:"epsilon"`
		Seed           int64         `env:"SEARCH_SEED" envDefault:"1"`
		Timeout        time.Duration `env:"SEARCH_TIMEOUT" envDefault:"0s"`
		// MaxConcurrent caps the searches the server runs at once
		MaxConcurrent int `env:"SEARCH_MAX_CONCURRENT" envDefault:"4"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		}
	}

	if err := cfg.SearchParams().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SearchParams returns the default parameters of a search.
func (c *Config) SearchParams() solver.Params {
	return solver.Params{
		Problem:        c.Search.Problem,
		Size:           c.Search.Size,
		Machines:       c.Search.Machines,
		PopulationSize: c.Search.PopulationSize,
		MaxSteps:       c.Search.MaxSteps,
		Kappa:          c.Search.Kappa,
		Indicator:      c.Search.Indicator,
		Seed:           c.Search.Seed,
		Timeout:        c.Search.Timeout,
	}
}
