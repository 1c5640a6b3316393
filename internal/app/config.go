package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scholarai/scholar-backend/internal/platform/envutil"
	"github.com/scholarai/scholar-backend/internal/platform/logger"
)

type Config struct {
	HTTPPort       string   `yaml:"http_port"`
	ServiceName    string   `yaml:"service_name"`
	Environment    string   `yaml:"environment"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	JWTSecretKey string `yaml:"jwt_secret_key"`
	JWTIssuer    string `yaml:"jwt_issuer"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`

	GCPCredentialsFile string `yaml:"gcp_credentials_file"`
	ScratchBucket      string `yaml:"scratch_bucket"`
	SpeechLanguage     string `yaml:"speech_language"`

	GenAIBaseURL        string `yaml:"genai_base_url"`
	GenAIAPIKey         string `yaml:"genai_api_key"`
	GenAIModel          string `yaml:"genai_model"`
	GenAITimeoutSeconds int    `yaml:"genai_timeout_seconds"`

	TranscribeThresholdSeconds float64       `yaml:"transcribe_threshold_seconds"`
	TranscribeAsyncCeiling     time.Duration `yaml:"transcribe_async_ceiling"`

	OtelEnabled      bool    `yaml:"otel_enabled"`
	OtelOTLPEndpoint string  `yaml:"otel_otlp_endpoint"`
	OtelOTLPInsecure bool    `yaml:"otel_otlp_insecure"`
	OtelSampleRatio  float64 `yaml:"otel_sample_ratio"`
}

// LoadConfig reads configuration from the environment, then applies an
// optional YAML overlay named by SCHOLAR_CONFIG_FILE on top.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		HTTPPort:       envutil.GetEnv("HTTP_PORT", "8080"),
		ServiceName:    envutil.GetEnv("SERVICE_NAME", "scholar-backend"),
		Environment:    envutil.GetEnv("ENVIRONMENT", "development"),
		AllowedOrigins: splitCSV(envutil.GetEnv("ALLOWED_ORIGINS", "")),

		JWTSecretKey: envutil.GetEnv("JWT_SECRET_KEY", ""),
		JWTIssuer:    envutil.GetEnv("JWT_ISSUER", "scholar-backend"),

		DBHost:     envutil.GetEnv("DB_HOST", "localhost"),
		DBPort:     envutil.GetEnv("DB_PORT", "5432"),
		DBUser:     envutil.GetEnv("DB_USER", "postgres"),
		DBPassword: envutil.GetEnv("DB_PASSWORD", "postgres"),
		DBName:     envutil.GetEnv("DB_NAME", "scholar"),
		DBSSLMode:  envutil.GetEnv("DB_SSL_MODE", "disable"),

		GCPCredentialsFile: envutil.GetEnv("GCP_CREDENTIALS_FILE", ""),
		ScratchBucket:      envutil.GetEnv("SCRATCH_BUCKET", ""),
		SpeechLanguage:     envutil.GetEnv("SPEECH_LANGUAGE", "en-US"),

		GenAIBaseURL:        envutil.GetEnv("GENAI_BASE_URL", ""),
		GenAIAPIKey:         envutil.GetEnv("GENAI_API_KEY", ""),
		GenAIModel:          envutil.GetEnv("GENAI_MODEL", ""),
		GenAITimeoutSeconds: envutil.GetEnvAsInt("GENAI_TIMEOUT_SECONDS", 180),

		TranscribeThresholdSeconds: float64(envutil.GetEnvAsInt("TRANSCRIBE_THRESHOLD_SECONDS", 55)),
		TranscribeAsyncCeiling:     time.Duration(envutil.GetEnvAsInt("TRANSCRIBE_ASYNC_CEILING_SECONDS", 600)) * time.Second,

		OtelEnabled:      envutil.GetEnvAsBool("OTEL_ENABLED", false),
		OtelOTLPEndpoint: envutil.GetEnv("OTEL_OTLP_ENDPOINT", ""),
		OtelOTLPInsecure: envutil.GetEnvAsBool("OTEL_OTLP_INSECURE", true),
		OtelSampleRatio:  0.1,
	}

	if overlay := strings.TrimSpace(os.Getenv("SCHOLAR_CONFIG_FILE")); overlay != "" {
		raw, err := os.ReadFile(overlay)
		if err != nil {
			return cfg, fmt.Errorf("read config overlay %q: %w", overlay, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config overlay %q: %w", overlay, err)
		}
		log.Info("applied config overlay", "file", overlay)
	}

	if cfg.JWTSecretKey == "" {
		return cfg, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if cfg.GenAIAPIKey == "" {
		log.Warn("GENAI_API_KEY is empty; generation requires per-request X-Genai-Api-Key")
	}
	return cfg, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
