package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Planner      PlannerConfig
	Export       ExportConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Planner.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PANTRYPLAN_APP_ENV" required:"true"`
	Port         string `envconfig:"PANTRYPLAN_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"PANTRYPLAN_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"PANTRYPLAN_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"PANTRYPLAN_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma-separated allow list for the web client.
	CORSOrigins []string `envconfig:"PANTRYPLAN_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PANTRYPLAN_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PANTRYPLAN_DB_DSN"`
	Driver string `envconfig:"PANTRYPLAN_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PANTRYPLAN_DB_HOST"`
	LegacyPort     int    `envconfig:"PANTRYPLAN_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PANTRYPLAN_DB_USER"`
	LegacyPassword string `envconfig:"PANTRYPLAN_DB_PASSWORD"`
	LegacyName     string `envconfig:"PANTRYPLAN_DB_NAME"`
	LegacySSLMode  string `envconfig:"PANTRYPLAN_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"PANTRYPLAN_SQLITE_PATH" default:"pantryplan.db"`

	MaxOpenConns    int           `envconfig:"PANTRYPLAN_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PANTRYPLAN_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PANTRYPLAN_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PANTRYPLAN_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PANTRYPLAN_REDIS_URL"`
	Address      string        `envconfig:"PANTRYPLAN_REDIS_ADDR"`
	Password     string        `envconfig:"PANTRYPLAN_REDIS_PASSWORD"`
	DB           int           `envconfig:"PANTRYPLAN_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PANTRYPLAN_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PANTRYPLAN_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PANTRYPLAN_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PANTRYPLAN_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PANTRYPLAN_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"PANTRYPLAN_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"PANTRYPLAN_AUTO_MIGRATE" default:"false"`
	ShortfallCache bool `envconfig:"PANTRYPLAN_SHORTFALL_CACHE" default:"false"`
}

type PlannerConfig struct {
	DefaultServings int           `envconfig:"PANTRYPLAN_DEFAULT_SERVINGS" default:"1"`
	MaxRangeDays    int           `envconfig:"PANTRYPLAN_MAX_RANGE_DAYS" default:"62"`
	CacheTTL        time.Duration `envconfig:"PANTRYPLAN_SHORTFALL_CACHE_TTL" default:"10m"`
}

func (p PlannerConfig) validate() error {
	if p.DefaultServings <= 0 {
		return fmt.Errorf("%s must be greater than zero", EnvDefaultServings)
	}
	if p.MaxRangeDays <= 0 {
		return fmt.Errorf("%s must be greater than zero", EnvMaxRangeDays)
	}
	return nil
}

type ExportConfig struct {
	Region string `envconfig:"PANTRYPLAN_EXPORT_S3_REGION" default:"us-east-1"`
	Bucket string `envconfig:"PANTRYPLAN_EXPORT_S3_BUCKET"`
	Prefix string `envconfig:"PANTRYPLAN_EXPORT_S3_PREFIX" default:"shopping-lists"`
}

// Enabled reports whether exports have somewhere to go.
func (e ExportConfig) Enabled() bool {
	return strings.TrimSpace(e.Bucket) != ""
}

type CronConfig struct {
	Interval time.Duration `envconfig:"PANTRYPLAN_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"PANTRYPLAN_CRON_LOCK_TTL" default:"30m"`
	// ExportWeeks is how many weeks, starting with the current one, each
	// export cycle uploads.
	ExportWeeks int `envconfig:"PANTRYPLAN_CRON_EXPORT_WEEKS" default:"1"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite || db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
