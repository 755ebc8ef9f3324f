package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	WorkDir    string
	SpoolDir   string
	ArchiveTTL time.Duration

	APIMaxRequestBytes int64
	APIRateLimitRPS    int
	APIRateLimitBurst  int
	APIMaxInflight     int
	APIMaxConnections  int

	ClassifierBackend          string
	ClassifierTimeoutSeconds   int
	ClassifierRetryMaxAttempts int
	ClassifierBreakerEnabled   bool

	HFURL   string
	HFModel string
	HFToken string

	OllamaURL   string
	OllamaModel string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3Region     string
	S3UseSSL     bool
	S3PresignTTL time.Duration
}

// Load reads settings from the environment. When CONFIG_FILE names a YAML
// file of KEY: value pairs, those values fill keys the environment leaves
// empty. An unreadable file is logged and ignored.
func Load() Config {
	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			slog.Warn("config_file_ignored", "path", path, "error", err)
		} else {
			src.file = file
		}
	}
	return src.build()
}

// LoadFrom is Load with an explicit YAML file that must be readable. An empty
// path reads the environment only.
func LoadFrom(path string) (Config, error) {
	src := source{}
	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		src.file = file
	}
	return src.build(), nil
}

func (src source) build() Config {
	return Config{
		APIPort:  src.mustEnv("API_PORT", "8080"),
		LogLevel: src.mustEnv("LOG_LEVEL", "info"),

		WorkDir:    src.mustEnv("WORK_DIR", ""),
		SpoolDir:   src.mustEnv("SPOOL_DIR", "./data/spool"),
		ArchiveTTL: src.mustEnvDuration("ARCHIVE_TTL", 30*time.Minute),

		APIMaxRequestBytes: int64(src.mustEnvInt("API_MAX_REQUEST_BYTES", 512<<20)),
		APIRateLimitRPS:    src.mustEnvInt("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst:  src.mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxInflight:     src.mustEnvInt("API_MAX_INFLIGHT", 4),
		APIMaxConnections:  src.mustEnvInt("API_MAX_CONNECTIONS", 128),

		ClassifierBackend:          strings.ToLower(src.mustEnv("CLASSIFIER_BACKEND", "huggingface")),
		ClassifierTimeoutSeconds:   src.mustEnvInt("CLASSIFIER_TIMEOUT_SECONDS", 30),
		ClassifierRetryMaxAttempts: src.mustEnvInt("CLASSIFIER_RETRY_MAX_ATTEMPTS", 1),
		ClassifierBreakerEnabled:   src.mustEnvBool("CLASSIFIER_BREAKER_ENABLED", true),

		HFURL:   src.mustEnv("HF_URL", "https://router.huggingface.co/hf-inference/models"),
		HFModel: src.mustEnv("HF_MODEL", "valhalla/distilbart-mnli-12-3"),
		HFToken: src.mustEnv("HF_TOKEN", ""),

		OllamaURL:   src.mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: src.mustEnv("OLLAMA_MODEL", "llama3.1:8b"),

		OpenAIBaseURL: src.mustEnv("OPENAI_BASE_URL", ""),
		OpenAIAPIKey:  src.mustEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   src.mustEnv("OPENAI_MODEL", "gpt-4o-mini"),

		S3Endpoint:   src.mustEnv("S3_ENDPOINT", ""),
		S3AccessKey:  src.mustEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:  src.mustEnv("S3_SECRET_KEY", ""),
		S3Bucket:     src.mustEnv("S3_BUCKET", "organized-archives"),
		S3Region:     src.mustEnv("S3_REGION", "us-east-1"),
		S3UseSSL:     src.mustEnvBool("S3_USE_SSL", true),
		S3PresignTTL: src.mustEnvDuration("S3_PRESIGN_TTL", time.Hour),
	}
}

type source struct {
	file map[string]string
}

func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make(map[string]string, len(values))
	for key, value := range values {
		if value == nil {
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(key))] = fmt.Sprint(value)
	}
	return out, nil
}

func (s source) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return s.file[key]
}

func (s source) mustEnv(key, fallback string) string {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	return v
}

func (s source) mustEnvInt(key string, fallback int) int {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s source) mustEnvBool(key string, fallback bool) bool {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) mustEnvDuration(key string, fallback time.Duration) time.Duration {
	v := s.lookup(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
