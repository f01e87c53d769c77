package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	AI         AIConfig
	Rasterizer RasterizerConfig
	Upload     UploadConfig
	Store      StoreConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogJSON        bool
	Debug          bool
	AllowOrigins   string
	BodyLimit      int
	RateLimitMax   int
	RateLimitEvery time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type AIConfig struct {
	Provider     string
	GeminiAPIKey string
	GroqAPIKey   string
	BaseURL      string
	Model        string
	Temperature  float32
	TopP         float32
	MaxTokens    int32
	Timeout      time.Duration
}

// RasterizerConfig holds the size-fitting policy for page images.
// Qualities are JPEG quality percentages.
type RasterizerConfig struct {
	MaxImageSizeMB  float64
	RenderScale     float64
	InitialQuality  int
	QualityStep     int
	QualityFloor    int
	ReencodeQuality int
}

// UploadConfig bounds uploaded and hosted PDFs. URLHosts, when set, is the
// only set of hosts resumeUrl may point at. AllowInsecureURLs permits plain
// http and internal addresses and is meant for local development.
type UploadConfig struct {
	MaxFileSize       int64
	URLHosts          []string
	AllowInsecureURLs bool
}

type StoreConfig struct {
	Kind          string
	TTL           time.Duration
	SweepInterval time.Duration
	PersistImages bool
	ImageDir      string
	ImageURLPath  string
	MaxImageMB    float64
}

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"

	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StoreDatabase = "database"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "3000"),
			Env:            getEnv("ENV", "development"),
			LogJSON:        getEnvAsBool("LOG_JSON", false),
			Debug:          getEnvAsBool("DEBUG", false),
			AllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", "*"),
			BodyLimit:      getEnvAsInt("BODY_LIMIT", 50*1024*1024),
			RateLimitMax:   getEnvAsInt("RATE_LIMIT_MAX", 20),
			RateLimitEvery: getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_scanner"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "resumeAnalysis_"),
		},
		AI: AIConfig{
			Provider:     strings.ToLower(getEnv("AI_PROVIDER", ProviderGroq)),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
			BaseURL:      getEnv("AI_BASE_URL", ""),
			Model:        getEnv("AI_MODEL", ""),
			Temperature:  float32(getEnvAsFloat("AI_TEMPERATURE", 1)),
			TopP:         float32(getEnvAsFloat("AI_TOP_P", 1)),
			MaxTokens:    int32(getEnvAsInt("AI_MAX_TOKENS", 4096)),
			Timeout:      getEnvAsDuration("AI_TIMEOUT", "90s"),
		},
		Rasterizer: RasterizerConfig{
			MaxImageSizeMB:  getEnvAsFloat("RASTER_MAX_IMAGE_MB", 4),
			RenderScale:     getEnvAsFloat("RASTER_SCALE", 2),
			InitialQuality:  getEnvAsInt("RASTER_INITIAL_QUALITY", 90),
			QualityStep:     getEnvAsInt("RASTER_QUALITY_STEP", 10),
			QualityFloor:    getEnvAsInt("RASTER_QUALITY_FLOOR", 10),
			ReencodeQuality: getEnvAsInt("RASTER_REENCODE_QUALITY", 90),
		},
		Upload: UploadConfig{
			MaxFileSize:       getEnvAsInt64("MAX_FILE_SIZE", 4*1024*1024),
			URLHosts:          getEnvAsList("RESUME_URL_HOSTS"),
			AllowInsecureURLs: getEnvAsBool("RESUME_URL_ALLOW_INSECURE", false),
		},
		Store: StoreConfig{
			Kind:          strings.ToLower(getEnv("RESULT_STORE", StoreMemory)),
			TTL:           getEnvAsDuration("RESULT_TTL", "24h"),
			SweepInterval: getEnvAsDuration("RESULT_SWEEP_INTERVAL", "1m"),
			PersistImages: getEnvAsBool("PERSIST_IMAGES", false),
			ImageDir:      getEnv("IMAGE_DIR", "./uploads/resume-images"),
			ImageURLPath:  getEnv("IMAGE_URL_PATH", "/resume-images"),
			MaxImageMB:    getEnvAsFloat("PERSIST_MAX_IMAGE_MB", 10),
		},
	}
}

// DefaultRasterizerConfig mirrors the defaults used by Load.
func DefaultRasterizerConfig() RasterizerConfig {
	return RasterizerConfig{
		MaxImageSizeMB:  4,
		RenderScale:     2,
		InitialQuality:  90,
		QualityStep:     10,
		QualityFloor:    10,
		ReencodeQuality: 90,
	}
}

func (c *Config) Validate() error {
	switch c.AI.Provider {
	case ProviderGemini, ProviderGroq:
	default:
		return fmt.Errorf("unknown AI provider %q", c.AI.Provider)
	}

	switch c.Store.Kind {
	case StoreMemory, StoreRedis, StoreDatabase:
	default:
		return fmt.Errorf("unknown result store %q", c.Store.Kind)
	}

	if err := c.Rasterizer.Validate(); err != nil {
		return err
	}

	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}

	return nil
}

func (r RasterizerConfig) Validate() error {
	if r.MaxImageSizeMB <= 0 {
		return fmt.Errorf("max image size must be positive, got %v", r.MaxImageSizeMB)
	}
	if r.RenderScale <= 0 {
		return fmt.Errorf("render scale must be positive, got %v", r.RenderScale)
	}
	for name, q := range map[string]int{
		"initial quality":   r.InitialQuality,
		"quality floor":     r.QualityFloor,
		"re-encode quality": r.ReencodeQuality,
	} {
		if q < 1 || q > 100 {
			return fmt.Errorf("%s must be between 1 and 100, got %d", name, q)
		}
	}
	if r.QualityStep <= 0 {
		return fmt.Errorf("quality step must be positive, got %d", r.QualityStep)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// IsDevelopment reports whether verbose diagnostics should be enabled.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var values []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
