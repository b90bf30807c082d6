package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	ServerHost            string  `mapstructure:"SERVER_HOST" validate:"required"`
	ServerPort            int     `mapstructure:"SERVER_PORT" validate:"required,gte=1023,lte=65535"`
	Backend               string  `mapstructure:"GENERATION_BACKEND" validate:"required,oneof=diffusion imagen"`
	DiffusionBaseURL      string  `mapstructure:"DIFFUSION_BASE_URL" validate:"required,url"`
	DiffusionModel        string  `mapstructure:"DIFFUSION_MODEL" validate:"required"`
	DiffusionTimeout      int     `mapstructure:"DIFFUSION_TIMEOUT_SECONDS" validate:"required,gte=1"`
	GeminiAPI             string  `mapstructure:"GEMINI_API"`
	GeminiModel           string  `mapstructure:"GEMINI_MODEL"`
	FeaturesBaseURL       string  `mapstructure:"FEATURES_BASE_URL" validate:"required,url"`
	FeaturesTimeout       int     `mapstructure:"FEATURES_TIMEOUT_SECONDS" validate:"required,gte=1"`
	OutputDir             string  `mapstructure:"OUTPUT_DIR" validate:"required"`
	DefaultWidth          int     `mapstructure:"DEFAULT_WIDTH" validate:"required"`
	DefaultHeight         int     `mapstructure:"DEFAULT_HEIGHT" validate:"required"`
	DefaultGuidanceScale  float64 `mapstructure:"DEFAULT_GUIDANCE_SCALE" validate:"required,gte=1"`
	HighQualitySteps      int     `mapstructure:"HIGH_QUALITY_STEPS" validate:"required,gte=1"`
	MediumQualitySteps    int     `mapstructure:"MEDIUM_QUALITY_STEPS" validate:"required,gte=1"`
	FastQualitySteps      int     `mapstructure:"FAST_QUALITY_STEPS" validate:"required,gte=1"`
	NegativePrompt        string  `mapstructure:"NEGATIVE_PROMPT"`
	MaxBatchPrompts       int     `mapstructure:"MAX_BATCH_PROMPTS" validate:"required,gte=1"`
	MaxConcurrentGen      int     `mapstructure:"MAX_CONCURRENT_GENERATIONS" validate:"required,gte=1"`
	MinEvaluationImages   int     `mapstructure:"MIN_EVALUATION_IMAGES" validate:"required,gte=2"`
	HistoryLimit          int     `mapstructure:"HISTORY_LIMIT" validate:"required,gte=1"`
	DatabaseDSN           string  `mapstructure:"DB_DSN" validate:"required"`
	RedisAddr             string  `mapstructure:"REDIS_ADDR" validate:"required"`
	RedisDB               int     `mapstructure:"REDIS_DB" validate:"gte=0,lte=16"`
	RataLimitCapacity     float64 `mapstructure:"RATE_LIMITER_CAPACITY" validate:"required,gte=0"`
	RataLimitFillRate     float64 `mapstructure:"RATE_LIMITER_FILL_RATE" validate:"required,gte=0"`
	MaxAllowedSize        int     `mapstructure:"JSON_BODY_MAX_SIZE" validate:"required,gte=0"`
	LogFile               string  `mapstructure:"LOGGING_FILE" validate:"required"`
	ServerShutdownTimeout int     `mapstructure:"SERVER_SHUTDOWN_TIMEOUT" validate:"required,gte=0"`
}

func LoadConfigs(path string) (*Config, error) {

	viper.SetConfigFile(path)
	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var Cfg Config

	err = viper.Unmarshal(&Cfg)
	if err != nil {
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(Cfg)
	if err != nil {
		return nil, err
	}

	return &Cfg, nil

}

// QualitySteps resolves the configured step count for a quality level.
func (c *Config) QualitySteps(quality string) int {
	switch quality {
	case "high":
		return c.HighQualitySteps
	case "fast", "low":
		return c.FastQualitySteps
	default:
		return c.MediumQualitySteps
	}
}
