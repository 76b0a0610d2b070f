package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	NowPolicyFrozen        = "frozen"
	NowPolicyPerAssignment = "per_assignment"

	ScorePolicyNoScore = "no_score"
	ScorePolicyZero    = "zero"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	Canvas     Canvas     `yaml:"canvas"`
	Audit      Audit      `yaml:"audit"`
	HTTPServer HTTPServer `yaml:"http_server"`
}

type Canvas struct {
	BaseURL string        `yaml:"base_url" env:"CANVAS_BASE_URL" env-default:"https://canvas.uautonoma.cl/api/v1"`
	WebURL  string        `yaml:"web_url" env:"CANVAS_WEB_URL" env-default:"https://canvas.uautonoma.cl"`
	Token   string        `yaml:"-" env:"TOKEN" env-required:"true"`
	PerPage int           `yaml:"per_page" env:"CANVAS_PER_PAGE" env-default:"100"`
	Timeout time.Duration `yaml:"timeout" env:"CANVAS_TIMEOUT" env-default:"30s"`
}

type Audit struct {
	TimeZone    string        `yaml:"time_zone" env:"AUDIT_TIME_ZONE" env-default:"America/Santiago"`
	GracePeriod time.Duration `yaml:"grace_period" env:"AUDIT_GRACE_PERIOD" env-default:"216h"`
	NowPolicy   string        `yaml:"now_policy" env:"AUDIT_NOW_POLICY" env-default:"frozen"`
	ScorePolicy string        `yaml:"score_policy" env:"AUDIT_SCORE_POLICY" env-default:"no_score"`
	Workers     int           `yaml:"workers" env:"AUDIT_WORKERS" env-default:"1"`
	Roles       Roles         `yaml:"roles"`
}

// Roles holds the enrollment role names queried for the course staff.
type Roles struct {
	Teacher  string `yaml:"teacher" env:"AUDIT_ROLE_TEACHER" env-default:"TeacherEnrollment"`
	Tutor    string `yaml:"tutor" env:"AUDIT_ROLE_TUTOR" env-default:"Tutor social"`
	Director string `yaml:"director" env:"AUDIT_ROLE_DIRECTOR" env-default:"Director"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_SERVER_ADDRESS" env-default:"0.0.0.0:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5m"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"120s"`
}

// Load reads .env (when present), then the yaml file at path (when not
// empty), then the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat("./config/local.yaml"); err == nil {
			configPath = "./config/local.yaml"
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}

// Location resolves the configured display zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Audit.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.Audit.TimeZone, err)
	}
	return loc, nil
}

func (c *Config) validate() error {
	c.Canvas.BaseURL = strings.TrimRight(strings.TrimSpace(c.Canvas.BaseURL), "/")
	c.Canvas.WebURL = strings.TrimRight(strings.TrimSpace(c.Canvas.WebURL), "/")
	if c.Canvas.BaseURL == "" {
		return fmt.Errorf("canvas.base_url is required")
	}
	if c.Canvas.PerPage <= 0 {
		return fmt.Errorf("canvas.per_page must be > 0")
	}
	if c.Audit.GracePeriod < 0 {
		return fmt.Errorf("audit.grace_period must not be negative")
	}
	if c.Audit.Workers < 1 {
		c.Audit.Workers = 1
	}
	switch c.Audit.NowPolicy {
	case NowPolicyFrozen, NowPolicyPerAssignment:
	default:
		return fmt.Errorf("audit.now_policy must be %q or %q", NowPolicyFrozen, NowPolicyPerAssignment)
	}
	switch c.Audit.ScorePolicy {
	case ScorePolicyNoScore, ScorePolicyZero:
	default:
		return fmt.Errorf("audit.score_policy must be %q or %q", ScorePolicyNoScore, ScorePolicyZero)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
