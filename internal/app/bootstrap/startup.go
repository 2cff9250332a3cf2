// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/hidapi/internal/app/store/audit"
	"github.com/dalemusser/hidapi/internal/app/system/auditlog"
	"github.com/dalemusser/hidapi/internal/app/system/directory"
	"github.com/dalemusser/hidapi/internal/app/system/ids"
	"github.com/dalemusser/hidapi/internal/app/system/mailer"
	"github.com/dalemusser/hidapi/internal/app/system/metrics"
	"github.com/dalemusser/hidapi/internal/app/system/notify"
	"github.com/dalemusser/hidapi/internal/app/system/ratelimit"
	"github.com/dalemusser/hidapi/internal/app/system/timeouts"
	"github.com/dalemusser/hidapi/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Runtime holds the long-lived services built at startup and shared by the
// handlers and Shutdown.
type Runtime struct {
	Metrics    *metrics.Metrics
	Operations *directory.Cache
	Refresher  *workers.OperationsRefresher
	Dispatcher *notify.Dispatcher
	Worker     *notify.QueueWorker
	Audit      *auditlog.Logger
	Limiter    *ratelimit.Limiter
	IDs        ids.Issuer
}

// Startup runs one-time initialization after DB connections and schema
// setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Runtime == nil {
		return fmt.Errorf("startup: runtime not allocated")
	}
	rt := deps.Runtime

	timeouts.Configure(timeouts.Config{Notify: appCfg.NotifyTimeout})

	rt.Metrics = metrics.New(prometheus.NewRegistry())
	rt.Audit = auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	rt.Limiter = ratelimit.New(appCfg.RateLimitPerMinute, appCfg.RateLimitBurst, 10*time.Minute)
	rt.IDs = ids.Issuer{Prefix: appCfg.UserIDPrefix}

	var src directory.Source
	if appCfg.DirectoryURL != "" {
		src = directory.NewHTTPSource(directory.HTTPConfig{
			URL:          appCfg.DirectoryURL,
			IDPrefix:     appCfg.DirectoryIDPrefix,
			TokenURL:     appCfg.DirectoryTokenURL,
			ClientID:     appCfg.DirectoryClientID,
			ClientSecret: appCfg.DirectoryClientSecret,
		}, &http.Client{Timeout: timeouts.Long()})
	}
	rt.Operations = directory.NewCache(src, appCfg.DirectoryCacheTTL, logger)
	if src != nil {
		rt.Refresher = workers.NewOperationsRefresher(rt.Operations, logger, appCfg.DirectoryRefresh, rt.Metrics.ObserveRefresh)
		if err := rt.Refresher.Start(); err != nil {
			return err
		}
	} else {
		logger.Warn("directory_url not set; operation names unavailable")
	}

	sinks, worker, err := buildSinks(appCfg, deps.Redis, logger)
	if err != nil {
		return err
	}
	rt.Dispatcher = notify.NewDispatcher(logger, rt.Metrics, sinks...)
	if worker != nil {
		rt.Worker = worker
		rt.Worker.Start()
	}

	logger.Info("startup complete",
		zap.String("notify_sink", appCfg.NotifySink),
		zap.Bool("directory", src != nil))
	return nil
}

// buildSinks returns the dispatcher sinks for the configured notify_sink.
// In queue mode the dispatcher only enqueues and the returned worker
// delivers by email.
func buildSinks(appCfg AppConfig, rdb *redis.Client, logger *zap.Logger) ([]notify.Sink, *notify.QueueWorker, error) {
	switch appCfg.NotifySink {
	case SinkLog, "":
		return []notify.Sink{notify.NewLogSink(logger)}, nil, nil
	case SinkMail:
		return []notify.Sink{newMailSink(appCfg, logger)}, nil, nil
	case SinkQueue:
		if rdb == nil {
			return nil, nil, fmt.Errorf("notify_sink=queue requires redis")
		}
		q := notify.NewRedisQueue(rdb, appCfg.NotifyQueueKey)
		w := notify.NewQueueWorker(q, newMailSink(appCfg, logger), logger, appCfg.NotifyAttempts)
		return []notify.Sink{q}, w, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify_sink %q", appCfg.NotifySink)
	}
}

func newMailSink(appCfg AppConfig, logger *zap.Logger) *notify.MailSink {
	m := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger, nil)
	return notify.NewMailSink(m, appCfg.SiteName)
}
