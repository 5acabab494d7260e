package config

import (
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andresuchdata/fbaplan/backend-go/internal/planning"
	"github.com/andresuchdata/fbaplan/backend-go/pkg/logger"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Drive    DriveConfig
	Planning PlanningConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
	MaxUploadMB    int64
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
}

// Enabled reports whether a lookup database is configured at all.
func (c DatabaseConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

type AppConfig struct {
	UploadDir   string
	OutputDir   string
	LookupsFile string
	LogLevel    string
	LogFormat   string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ReportTTLSeconds int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type DriveConfig struct {
	CredentialsFile string
	CredentialsJSON string
	FolderID        string
}

type PlanningConfig struct {
	HorizonDays    int
	ServiceLevel   int
	WindowDays     int
	SlowMovingDays int
	InactiveDays   int
	TopCities      int
	InventoryKeys  []string
	BrandName      string
}

// Params converts the configured defaults into planner controls.
func (c PlanningConfig) Params() planning.Params {
	return planning.Params{
		HorizonDays:    c.HorizonDays,
		ServiceLevel:   planning.ServiceLevel(c.ServiceLevel),
		WindowDays:     c.WindowDays,
		SlowMovingDays: c.SlowMovingDays,
		InactiveDays:   c.InactiveDays,
		TopCities:      c.TopCities,
	}
}

// Keys returns the inventory key preference as planning fields.
func (c PlanningConfig) Keys() []planning.Field {
	out := make([]planning.Field, 0, len(c.InventoryKeys))
	for _, k := range c.InventoryKeys {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, planning.Field(k))
		}
	}
	return out
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		setDefaults(v)
		v.AutomaticEnv()

		instance = build(v)

		ensureDir(instance.App.UploadDir)
		ensureDir(instance.App.OutputDir)
	})

	return instance
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 60)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 120)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SERVER_MAX_UPLOAD_MB", 512)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "fbaplan")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 5)
	v.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
	v.SetDefault("APP_OUTPUT_DIR", "./data/output")
	v.SetDefault("APP_LOOKUPS_FILE", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_REPORT_TTL_SECONDS", 900)
	v.SetDefault("STORAGE_ENABLED", false)
	v.SetDefault("STORAGE_ENDPOINT", "")
	v.SetDefault("STORAGE_ACCESS_KEY", "")
	v.SetDefault("STORAGE_SECRET_KEY", "")
	v.SetDefault("STORAGE_BUCKET", "fbaplan")
	v.SetDefault("STORAGE_REGION", "")
	v.SetDefault("STORAGE_USE_SSL", true)
	v.SetDefault("STORAGE_PREFIX", "reports")
	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("GOOGLE_CREDENTIALS_JSON", "")
	v.SetDefault("DRIVE_FOLDER_ID", "")
	v.SetDefault("PLAN_HORIZON_DAYS", planning.DefaultHorizonDays)
	v.SetDefault("PLAN_SERVICE_LEVEL", int(planning.DefaultServiceLevel))
	v.SetDefault("PLAN_WINDOW_DAYS", planning.FullHistory)
	v.SetDefault("PLAN_SLOW_MOVING_DAYS", planning.DefaultSlowMovingDays)
	v.SetDefault("PLAN_INACTIVE_DAYS", planning.DefaultInactiveDays)
	v.SetDefault("PLAN_TOP_CITIES", planning.DefaultTopCities)
	v.SetDefault("PLAN_INVENTORY_KEYS", []string{"asin", "msku", "sku"})
	v.SetDefault("BRAND_NAME", "")
}

func build(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			MaxUploadMB:    v.GetInt64("SERVER_MAX_UPLOAD_MB"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt("DB_MAX_CONNS"),
		},
		App: AppConfig{
			UploadDir:   v.GetString("APP_UPLOAD_DIR"),
			OutputDir:   v.GetString("APP_OUTPUT_DIR"),
			LookupsFile: v.GetString("APP_LOOKUPS_FILE"),
			LogLevel:    v.GetString("LOG_LEVEL"),
			LogFormat:   v.GetString("LOG_FORMAT"),
		},
		Cache: CacheConfig{
			Enabled:          v.GetBool("CACHE_ENABLED"),
			RedisURL:         v.GetString("REDIS_URL"),
			RedisHost:        v.GetString("REDIS_HOST"),
			RedisPort:        v.GetString("REDIS_PORT"),
			RedisPassword:    v.GetString("REDIS_PASSWORD"),
			RedisDB:          v.GetInt("REDIS_DB"),
			ReportTTLSeconds: v.GetInt("CACHE_REPORT_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:   v.GetBool("STORAGE_ENABLED"),
			Endpoint:  v.GetString("STORAGE_ENDPOINT"),
			AccessKey: v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey: v.GetString("STORAGE_SECRET_KEY"),
			Bucket:    v.GetString("STORAGE_BUCKET"),
			Region:    v.GetString("STORAGE_REGION"),
			UseSSL:    v.GetBool("STORAGE_USE_SSL"),
			Prefix:    v.GetString("STORAGE_PREFIX"),
		},
		Drive: DriveConfig{
			CredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
			CredentialsJSON: v.GetString("GOOGLE_CREDENTIALS_JSON"),
			FolderID:        v.GetString("DRIVE_FOLDER_ID"),
		},
		Planning: PlanningConfig{
			HorizonDays:    v.GetInt("PLAN_HORIZON_DAYS"),
			ServiceLevel:   v.GetInt("PLAN_SERVICE_LEVEL"),
			WindowDays:     v.GetInt("PLAN_WINDOW_DAYS"),
			SlowMovingDays: v.GetInt("PLAN_SLOW_MOVING_DAYS"),
			InactiveDays:   v.GetInt("PLAN_INACTIVE_DAYS"),
			TopCities:      v.GetInt("PLAN_TOP_CITIES"),
			InventoryKeys:  v.GetStringSlice("PLAN_INVENTORY_KEYS"),
			BrandName:      v.GetString("BRAND_NAME"),
		},
	}
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}
}
