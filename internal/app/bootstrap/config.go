// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Notification sink names accepted by notify_sink.
const (
	SinkLog   = "log"
	SinkMail  = "mail"
	SinkQueue = "queue"
)

// appConfigKeys defines the configuration keys for hidapi.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: HIDAPI_MONGO_URI, HIDAPI_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "hidapi", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "redis_url", Default: "", Desc: "Redis URL for the notification queue (blank disables Redis)"},

	// Notifications
	{Name: "notify_sink", Default: SinkLog, Desc: "Notification sink: 'log', 'mail' or 'queue'"},
	{Name: "notify_queue_key", Default: "hidapi:notifications", Desc: "Redis list used by the queue sink"},
	{Name: "notify_attempts", Default: 3, Desc: "Delivery attempts before a queued notification is parked"},
	{Name: "notify_timeout", Default: "10s", Desc: "Timeout for one notification delivery"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "info@humanitarian.id", Desc: "From email address"},
	{Name: "mail_from_name", Default: "Humanitarian ID", Desc: "From display name"},
	{Name: "site_name", Default: "Humanitarian ID", Desc: "Site name used in notifications"},
	{Name: "admin_email", Default: "", Desc: "Administrator contact included in notifications"},

	// Directory API
	{Name: "directory_url", Default: "", Desc: "Operations listing URL (blank disables the refresher)"},
	{Name: "directory_token_url", Default: "", Desc: "OAuth2 token URL for the directory API"},
	{Name: "directory_client_id", Default: "", Desc: "OAuth2 client id for the directory API"},
	{Name: "directory_client_secret", Default: "", Desc: "OAuth2 client secret for the directory API"},
	{Name: "directory_id_prefix", Default: "hrinfo:", Desc: "Prefix applied to operation ids"},
	{Name: "directory_refresh", Default: "@every 15m", Desc: "Cron schedule for refreshing operations"},
	{Name: "directory_cache_ttl", Default: "24h", Desc: "How long an operation is kept without being refreshed"},

	// Tokens
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "HS256 signing key for bearer tokens"},
	{Name: "jwt_issuer", Default: "", Desc: "Expected token issuer (blank accepts any)"},

	{Name: "user_id_prefix", Default: "", Desc: "Prefix for generated profile user ids"},

	// Rate limiting
	{Name: "rate_limit_per_minute", Default: 120, Desc: "Requests per minute allowed per actor"},
	{Name: "rate_limit_burst", Default: 30, Desc: "Burst size per actor"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// HIDAPI_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HIDAPI", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		RedisURL: appValues.String("redis_url"),

		NotifySink:     appValues.String("notify_sink"),
		NotifyQueueKey: appValues.String("notify_queue_key"),
		NotifyAttempts: appValues.Int("notify_attempts"),
		NotifyTimeout:  appValues.Duration("notify_timeout", 10*time.Second),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),
		SiteName:     appValues.String("site_name"),
		AdminEmail:   appValues.String("admin_email"),

		DirectoryURL:          appValues.String("directory_url"),
		DirectoryTokenURL:     appValues.String("directory_token_url"),
		DirectoryClientID:     appValues.String("directory_client_id"),
		DirectoryClientSecret: appValues.String("directory_client_secret"),
		DirectoryIDPrefix:     appValues.String("directory_id_prefix"),
		DirectoryRefresh:      appValues.String("directory_refresh"),
		DirectoryCacheTTL:     appValues.Duration("directory_cache_ttl", 24*time.Hour),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		UserIDPrefix: appValues.String("user_id_prefix"),

		RateLimitPerMinute: appValues.Int("rate_limit_per_minute"),
		RateLimitBurst:     appValues.Int("rate_limit_burst"),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env, appCfg)
}

func validateApp(env string, appCfg AppConfig) error {
	if appCfg.MongoDatabase == "" {
		return errors.New("mongo_database is required")
	}

	switch appCfg.NotifySink {
	case SinkLog, SinkMail:
	case SinkQueue:
		if appCfg.RedisURL == "" {
			return errors.New("notify_sink=queue requires redis_url")
		}
	default:
		return fmt.Errorf("unknown notify_sink %q (want log, mail or queue)", appCfg.NotifySink)
	}

	if appCfg.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if env == "prod" && len(appCfg.JWTSecret) < 32 {
		return errors.New("jwt_secret must be at least 32 bytes in prod")
	}

	if appCfg.RateLimitPerMinute <= 0 || appCfg.RateLimitBurst <= 0 {
		return errors.New("rate_limit_per_minute and rate_limit_burst must be positive")
	}

	if appCfg.DirectoryTokenURL != "" && appCfg.DirectoryClientID == "" {
		return errors.New("directory_token_url requires directory_client_id")
	}
	return nil
}
