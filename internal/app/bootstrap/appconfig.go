// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for hidapi.
//
// Values come from config files, HIDAPI_* environment variables or flags
// (loaded in LoadConfig). WAFFLE's CoreConfig covers ports, TLS, logging
// and CORS; everything below is specific to this service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Redis backs the notification queue. Empty disables Redis.
	RedisURL string

	// NotifySink selects where notifications go: "log", "mail" or "queue".
	NotifySink     string
	NotifyQueueKey string
	NotifyAttempts int

	// Email/SMTP configuration
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string

	SiteName   string // Shown in email subjects and bodies
	AdminEmail string // Contact address included in notifications

	// Directory API (operations listing)
	DirectoryURL          string
	DirectoryTokenURL     string
	DirectoryClientID     string
	DirectoryClientSecret string
	DirectoryIDPrefix     string
	DirectoryRefresh      string        // cron spec, e.g. "@every 15m"
	DirectoryCacheTTL     time.Duration // how long an operation survives without being seen

	// Bearer tokens
	JWTSecret string
	JWTIssuer string

	// UserIDPrefix is prepended to generated profile user ids.
	UserIDPrefix string

	// Per-actor write rate limit
	RateLimitPerMinute int
	RateLimitBurst     int

	// Timeout for one notification sink call
	NotifyTimeout time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string
}
