package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"HoopLine/internal/services/scoring"
	"HoopLine/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
		RateLimit       struct {
			RPS   float64 `yaml:"rps" default:"50" validate:"gte=0"`
			Burst int     `yaml:"burst" default:"100" validate:"gte=0"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level     string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format    string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled       bool          `yaml:"enabled"`
			FlushInterval time.Duration `yaml:"flush_interval" default:"30s"`
			Threshold     int           `yaml:"threshold" default:"100" validate:"gte=1"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Topics       struct {
			Matchups    string `yaml:"matchups" default:"matchups"`
			Games       string `yaml:"games" default:"games"`
			Predictions string `yaml:"predictions" default:"predictions"`
			Logs        string `yaml:"logs" default:"logs"`
		} `yaml:"topics"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"hoopline"`
			Workers    int           `yaml:"workers" default:"4" validate:"gte=1"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"hoopline.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"hoopline"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		BaselineTTL time.Duration `yaml:"baseline_ttl" default:"6h"`
		ResponseTTL time.Duration `yaml:"response_ttl" default:"30s"`
	} `yaml:"cache"`
	Advisor struct {
		Mode            string        `yaml:"mode" default:"tags" validate:"oneof=none tags http"`
		URL             string        `yaml:"url" validate:"omitempty,url"`
		Timeout         time.Duration `yaml:"timeout" default:"2s"`
		Retries         int           `yaml:"retries" default:"2" validate:"gte=0"`
		BreakerFailures uint32        `yaml:"breaker_failures" default:"5" validate:"gte=1"`
		BreakerTimeout  time.Duration `yaml:"breaker_timeout" default:"30s"`
	} `yaml:"advisor"`
	Scoring ScoringConfig `yaml:"scoring"`
}

// ScoringConfig is the versioned hyperparameter block.
type ScoringConfig struct {
	Alpha             float64 `yaml:"alpha" default:"3.0"`
	Gamma             float64 `yaml:"gamma" default:"0.05"`
	TauORA            float64 `yaml:"tau_ora" default:"2.0"`
	ConfidenceCeiling float64 `yaml:"confidence_ceiling" default:"0.85"`
	PillarWeights     struct {
		Physics    float64 `yaml:"physics" default:"0.30"`
		Deterrence float64 `yaml:"deterrence" default:"0.30"`
		Positional float64 `yaml:"positional" default:"0.25"`
		Decay      float64 `yaml:"decay" default:"0.15"`
	} `yaml:"pillar_weights"`
	RollingWindow         int     `yaml:"rolling_window" default:"90"`
	MinPeriods            int     `yaml:"min_periods" default:"1"`
	ClipZ                 float64 `yaml:"clip_z" default:"3.0"`
	StdFallbackRating     float64 `yaml:"std_fallback_rating" default:"5.0"`
	StdFallbackShooting   float64 `yaml:"std_fallback_shooting" default:"0.05"`
	StdFallbackTurnover   float64 `yaml:"std_fallback_turnover" default:"0.02"`
	StdFallbackDeterrence float64 `yaml:"std_fallback_deterrence" default:"0.05"`
	IQRFallback           float64 `yaml:"iqr_fallback" default:"0.1"`
	DecayDampThreshold    float64 `yaml:"decay_damp_threshold" default:"0.85"`
	DecayDampFactor       float64 `yaml:"decay_damp_factor" default:"0.9"`
	NudgeMin              float64 `yaml:"nudge_min" default:"1.5"`
	NudgeMax              float64 `yaml:"nudge_max" default:"3.0"`
	Workers               int     `yaml:"workers" default:"8" validate:"gte=1"`
}

// Params converts the block into the immutable scoring hyperparameters.
func (s ScoringConfig) Params() scoring.Params {
	return scoring.Params{
		Alpha:             s.Alpha,
		Gamma:             s.Gamma,
		TauORA:            s.TauORA,
		ConfidenceCeiling: s.ConfidenceCeiling,
		Weights: scoring.Weights{
			Physics:    s.PillarWeights.Physics,
			Deterrence: s.PillarWeights.Deterrence,
			Positional: s.PillarWeights.Positional,
			Decay:      s.PillarWeights.Decay,
		},
		ClipZ:                 s.ClipZ,
		RollingWindow:         s.RollingWindow,
		MinPeriods:            s.MinPeriods,
		StdFallbackRating:     s.StdFallbackRating,
		StdFallbackShooting:   s.StdFallbackShooting,
		StdFallbackTurnover:   s.StdFallbackTurnover,
		StdFallbackDeterrence: s.StdFallbackDeterrence,
		IQRFallback:           s.IQRFallback,
		DecayDampThreshold:    s.DecayDampThreshold,
		DecayDampFactor:       s.DecayDampFactor,
		NudgeMin:              s.NudgeMin,
		NudgeMax:              s.NudgeMax,
	}
}

var validate = validator.New()

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("HOOPLINE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("HOOPLINE_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("HOOPLINE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HOOPLINE_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = util.SplitList(v)
	}
	if v := os.Getenv("HOOPLINE_CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("HOOPLINE_CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("HOOPLINE_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("HOOPLINE_ADVISOR_URL"); v != "" {
		c.Advisor.URL = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks struct constraints and then the scoring hyperparameters.
// A scoring failure is returned as a *scoring.ConfigError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%s failed on %s", verrs[0].Namespace(), verrs[0].Tag())
		}
		return err
	}
	if c.Advisor.Mode == "http" && c.Advisor.URL == "" {
		return fmt.Errorf("advisor.url is required when advisor.mode is http")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return c.Scoring.Params().Validate()
}
