package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/libbycheck/internal/catalog"
)

// Config holds everything needed to reach the catalog and pace a run.
type Config struct {
	LibraryID string        `yaml:"library_id"`
	BaseURL   string        `yaml:"base_url"`
	ClientID  string        `yaml:"client_id"`
	Formats   []string      `yaml:"formats"`
	PerPage   int           `yaml:"per_page"`
	Timeout   time.Duration `yaml:"timeout"`
	Delay     time.Duration `yaml:"delay"`
	Shelf     string        `yaml:"shelf"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		LibraryID: "sapln-adelaide",
		BaseURL:   "https://thunder.api.overdrive.com",
		ClientID:  "dewey",
		Formats:   append([]string(nil), catalog.DefaultFormats...),
		PerPage:   24,
		Timeout:   15 * time.Second,
		Delay:     time.Second,
		Shelf:     "to-read",
	}
}

// Load starts from Default, applies the YAML file at path (if path is not
// empty) and then LIBBY_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("LIBBY_LIBRARY_ID", &c.LibraryID)
	str("LIBBY_BASE_URL", &c.BaseURL)
	str("LIBBY_CLIENT_ID", &c.ClientID)
	str("LIBBY_SHELF", &c.Shelf)

	if v, ok := lookup("LIBBY_FORMATS"); ok {
		c.Formats = nil
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				c.Formats = append(c.Formats, f)
			}
		}
	}
	if v, ok := lookup("LIBBY_PER_PAGE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid LIBBY_PER_PAGE: %w", err)
		}
		c.PerPage = n
	}
	if err := dur("LIBBY_TIMEOUT", &c.Timeout); err != nil {
		return err
	}
	return dur("LIBBY_DELAY", &c.Delay)
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	var errs []error
	if c.LibraryID == "" {
		errs = append(errs, errors.New("library id is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if len(c.Formats) == 0 {
		errs = append(errs, errors.New("at least one format is required"))
	}
	if c.PerPage <= 0 {
		errs = append(errs, fmt.Errorf("per page must be positive, got %d", c.PerPage))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.Delay < 0 {
		errs = append(errs, fmt.Errorf("delay must not be negative, got %s", c.Delay))
	}
	return errors.Join(errs...)
}

// Catalog is the part of the configuration the catalog client needs.
func (c Config) Catalog() catalog.Config {
	return catalog.Config{
		BaseURL:   c.BaseURL,
		LibraryID: c.LibraryID,
		ClientID:  c.ClientID,
		Formats:   c.Formats,
		PerPage:   c.PerPage,
		Timeout:   c.Timeout,
	}
}
