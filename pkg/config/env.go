package config

// EnvPrefix is handed to envconfig; explicit struct tags carry the full names.
const EnvPrefix = "PANTRYPLAN"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv          = "PANTRYPLAN_APP_ENV"
	EnvPort            = "PANTRYPLAN_APP_PORT"
	EnvDBDSN           = "PANTRYPLAN_DB_DSN"
	EnvDBHost          = "PANTRYPLAN_DB_HOST"
	EnvDBPort          = "PANTRYPLAN_DB_PORT"
	EnvDBUser          = "PANTRYPLAN_DB_USER"
	EnvDBPassword      = "PANTRYPLAN_DB_PASSWORD"
	EnvDBName          = "PANTRYPLAN_DB_NAME"
	EnvUseSQLite       = "PANTRYPLAN_USE_SQLITE"
	EnvRedisURL        = "PANTRYPLAN_REDIS_URL"
	EnvShortfallCache  = "PANTRYPLAN_SHORTFALL_CACHE"
	EnvDefaultServings = "PANTRYPLAN_DEFAULT_SERVINGS"
	EnvMaxRangeDays    = "PANTRYPLAN_MAX_RANGE_DAYS"
	EnvExportBucket    = "PANTRYPLAN_EXPORT_S3_BUCKET"
	EnvCronInterval    = "PANTRYPLAN_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
