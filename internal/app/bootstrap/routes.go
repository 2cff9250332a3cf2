// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"

	contactsfeature "github.com/dalemusser/hidapi/internal/app/features/contacts"
	healthfeature "github.com/dalemusser/hidapi/internal/app/features/health"
	listsfeature "github.com/dalemusser/hidapi/internal/app/features/lists"
	profilesfeature "github.com/dalemusser/hidapi/internal/app/features/profiles"
	servicesfeature "github.com/dalemusser/hidapi/internal/app/features/services"
	clientstore "github.com/dalemusser/hidapi/internal/app/store/clients"
	contactstore "github.com/dalemusser/hidapi/internal/app/store/contacts"
	liststore "github.com/dalemusser/hidapi/internal/app/store/lists"
	profilestore "github.com/dalemusser/hidapi/internal/app/store/profiles"
	servicestore "github.com/dalemusser/hidapi/internal/app/store/services"
	"github.com/dalemusser/hidapi/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. Public endpoints are /health and /metrics;
// everything under /v0 requires a bearer token or API client credentials.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	rt := deps.Runtime
	if rt == nil || rt.Metrics == nil {
		return nil, fmt.Errorf("build handler: startup has not run")
	}
	db := deps.MongoDatabase

	contacts := contactstore.New(db)
	profiles := profilestore.New(db)
	lists := liststore.New(db)
	services := servicestore.New(db)

	authn := auth.New(auth.Config{Secret: appCfg.JWTSecret, Issuer: appCfg.JWTIssuer},
		profiles, clientstore.New(db), rt.Limiter, rt.Audit, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(rt.Metrics.Middleware)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, rt.Operations, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", rt.Metrics.Handler())

	contactSaver := &contactsfeature.Saver{
		Contacts:   contacts,
		Profiles:   profiles,
		Notify:     rt.Dispatcher,
		Audit:      rt.Audit,
		Metrics:    rt.Metrics,
		Names:      rt.Operations,
		IDs:        rt.IDs,
		AdminEmail: appCfg.AdminEmail,
		Log:        logger,
	}
	profileSaver := &profilesfeature.Saver{
		Profiles:   profiles,
		Contacts:   contacts,
		Notify:     rt.Dispatcher,
		Audit:      rt.Audit,
		Metrics:    rt.Metrics,
		Names:      rt.Operations,
		AdminEmail: appCfg.AdminEmail,
		Log:        logger,
	}
	listSaver := &listsfeature.Saver{
		Lists:     lists,
		Followers: profiles,
		Audit:     rt.Audit,
		Metrics:   rt.Metrics,
		Log:       logger,
	}
	serviceSaver := &servicesfeature.Saver{
		Services: services,
		Audit:    rt.Audit,
		Metrics:  rt.Metrics,
		Log:      logger,
	}

	r.Route("/v0", func(api chi.Router) {
		api.Use(authn.Middleware)
		api.Mount("/contacts", contactsfeature.Routes(contactsfeature.NewHandler(contactSaver, logger)))
		api.Mount("/profiles", profilesfeature.Routes(profilesfeature.NewHandler(profileSaver, logger)))
		api.Mount("/lists", listsfeature.Routes(listsfeature.NewHandler(listSaver, logger)))
		api.Mount("/services", servicesfeature.Routes(servicesfeature.NewHandler(serviceSaver, logger)))
	})

	return r, nil
}
