package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"subsim/internal/dataset"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig marks configuration errors that abort a run before any
// generation starts.
var ErrInvalidConfig = errors.New("invalid configuration")

// AppConfig holds the complete application configuration.
type AppConfig struct {
	CatalogPath string     `yaml:"catalog" validate:"required"`
	OutputDir   string     `yaml:"output_dir" validate:"required"`
	Generation  Generation `yaml:"generation"`
}

// Generation holds every knob of the dataset generator.
type Generation struct {
	Users       int    `yaml:"users" validate:"gt=0"`
	WatchEvents int    `yaml:"watch_events" validate:"gt=0"`
	StartDate   string `yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string `yaml:"end_date" validate:"required,datetime=2006-01-02"`

	Countries   []string       `yaml:"countries" validate:"min=1,dive,required"`
	AgeGroups   []string       `yaml:"age_groups" validate:"min=1,dive,required"`
	DeviceTypes []string       `yaml:"device_types" validate:"min=1,dive,required"`
	Plans       []dataset.Plan `yaml:"plans" validate:"min=1,dive"`

	CancelProbability     float64 `yaml:"cancel_probability" validate:"gte=0,lte=1"`
	MinSubscriptionMonths int     `yaml:"min_subscription_months" validate:"gte=0"`
	MaxSubscriptionMonths int     `yaml:"max_subscription_months" validate:"gtefield=MinSubscriptionMonths"`
	FallbackMinMinutes    int     `yaml:"fallback_min_minutes" validate:"gt=0"`
	FallbackMaxMinutes    int     `yaml:"fallback_max_minutes" validate:"gtefield=FallbackMinMinutes"`

	Seed    uint64 `yaml:"seed"`
	Workers int    `yaml:"workers" validate:"gt=0"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *AppConfig {
	return &AppConfig{
		CatalogPath: "netflix_with_posters.csv",
		OutputDir:   "out",
		Generation: Generation{
			Users:       12000,
			WatchEvents: 70000,
			StartDate:   "2018-01-01",
			EndDate:     "2025-12-31",
			Countries:   []string{"USA", "India", "UK", "Canada", "Germany", "France", "Brazil", "Australia"},
			AgeGroups:   []string{"18-25", "26-35", "36-45", "46-60", "60+"},
			DeviceTypes: []string{"Mobile", "Web", "TV", "Tablet"},
			Plans: []dataset.Plan{
				{Name: "Basic", Fee: 199},
				{Name: "Standard", Fee: 499},
				{Name: "Premium", Fee: 649},
			},
			CancelProbability:     0.3,
			MinSubscriptionMonths: 6,
			MaxSubscriptionMonths: 60,
			FallbackMinMinutes:    40,
			FallbackMaxMinutes:    180,
			Seed:                  42,
			Workers:               4,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, .env
// files and SUBSIM_* environment variables, in increasing priority.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: config file %s not found", ErrInvalidConfig, path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded configuration file")
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables")
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) applyEnv() error {
	c.CatalogPath = getEnv("SUBSIM_CATALOG", c.CatalogPath)
	c.OutputDir = getEnv("SUBSIM_OUTPUT_DIR", c.OutputDir)

	g := &c.Generation
	g.StartDate = getEnv("SUBSIM_START_DATE", g.StartDate)
	g.EndDate = getEnv("SUBSIM_END_DATE", g.EndDate)
	g.Countries = getEnvList("SUBSIM_COUNTRIES", g.Countries)
	g.AgeGroups = getEnvList("SUBSIM_AGE_GROUPS", g.AgeGroups)
	g.DeviceTypes = getEnvList("SUBSIM_DEVICE_TYPES", g.DeviceTypes)

	var err error
	if g.Users, err = getEnvInt("SUBSIM_USERS", g.Users); err != nil {
		return err
	}
	if g.WatchEvents, err = getEnvInt("SUBSIM_WATCH_EVENTS", g.WatchEvents); err != nil {
		return err
	}
	if g.Workers, err = getEnvInt("SUBSIM_WORKERS", g.Workers); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("SUBSIM_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: SUBSIM_SEED=%q: %v", ErrInvalidConfig, v, err)
		}
		g.Seed = seed
	}
	if v, ok := os.LookupEnv("SUBSIM_CANCEL_PROBABILITY"); ok {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: SUBSIM_CANCEL_PROBABILITY=%q: %v", ErrInvalidConfig, v, err)
		}
		g.CancelProbability = p
	}
	return nil
}

// Validate checks the paths and delegates the generator settings to
// Generation.Validate.
func (c *AppConfig) Validate() error {
	if err := validator.New().StructExcept(c, "Generation"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return c.Generation.Validate()
}

// Validate checks every field and the cross-field constraints the tags cannot
// express. Generate refuses a Generation that fails it.
func (g Generation) Validate() error {
	if err := validator.New().Struct(g); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	start, end, err := g.DateRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("%w: end date %s is before start date %s", ErrInvalidConfig, g.EndDate, g.StartDate)
	}

	seen := make(map[string]bool, len(g.Plans))
	for _, p := range g.Plans {
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate plan %q", ErrInvalidConfig, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// DateRange parses the inclusive global date range.
func (g Generation) DateRange() (time.Time, time.Time, error) {
	start, err := dataset.ParseDate(g.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date: %v", ErrInvalidConfig, err)
	}
	end, err := dataset.ParseDate(g.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date: %v", ErrInvalidConfig, err)
	}
	return start, end, nil
}

// PlanFee resolves the monthly fee of a plan name.
func (g Generation) PlanFee(name string) (int, bool) {
	for _, p := range g.Plans {
		if p.Name == name {
			return p.Fee, true
		}
	}
	return 0, false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, value, err)
	}
	return n, nil
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
