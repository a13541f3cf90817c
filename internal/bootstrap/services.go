package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	portal "github.com/mpo-id/portal"
	"github.com/mpo-id/portal/config"
	"github.com/mpo-id/portal/internal/data"
	httpx "github.com/mpo-id/portal/internal/http"
	"github.com/mpo-id/portal/internal/observability/metrics"
	"github.com/mpo-id/portal/internal/ports"
	"github.com/mpo-id/portal/internal/service"
)

// ServiceDeps contains the infrastructure the services are built on.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger

	// Identity overrides the provider selected by Config.Auth.Mode.
	Identity ports.IdentityService
	// Registry overrides the Prometheus registry.
	Registry *prometheus.Registry
}

// ServiceContainer holds the wired application.
type ServiceContainer struct {
	Access    *service.AccessService
	Login     *service.AdminLoginService
	Content   *service.ContentService
	Dashboard *service.DashboardService
	Games     *service.GameService
	Profiles  ports.ProfileStore

	Metrics  *metrics.Recorder
	Registry *prometheus.Registry
	Handler  http.Handler
}

type repositories struct {
	posts        *data.PostRepo
	events       *data.EventRepo
	publications *data.PublicationRepo
	scores       *data.GameScoreRepo
	profiles     *data.ProfileRepo
}

func buildRepositories(db *sql.DB) repositories {
	return repositories{
		posts:        data.NewPostRepo(db),
		events:       data.NewEventRepo(db),
		publications: data.NewPublicationRepo(db),
		scores:       data.NewGameScoreRepo(db),
		profiles:     data.NewProfileRepo(db),
	}
}

// buildObservability registers the portal collectors alongside the Go runtime ones.
func buildObservability(cfg config.ObservabilityConfig, reg *prometheus.Registry) (*metrics.Recorder, *prometheus.Registry) {
	if !cfg.MetricsEnabled {
		return nil, nil
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return metrics.New(reg), reg
}

// NewServices wires repositories, services and the HTTP handler.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require a config")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("service deps require a database")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rec, reg := buildObservability(cfg.Observability, deps.Registry)
	repos := buildRepositories(deps.DB)

	identity := deps.Identity
	if identity == nil {
		var err error
		identity, err = BuildIdentity(IdentityDeps{
			Auth:         cfg.Auth,
			CookieDomain: cfg.HTTP.CookieDomain,
			DB:           deps.DB,
			RedisClient:  deps.RedisClient,
			Metrics:      rec,
			Logger:       logger,
		})
		if err != nil {
			return ServiceContainer{}, fmt.Errorf("build identity provider: %w", err)
		}
	}

	c := ServiceContainer{Profiles: repos.profiles, Metrics: rec, Registry: reg}
	c.Access = service.NewAccessService(service.AccessServiceOptions{
		Identity: identity,
		Profiles: repos.profiles,
		Metrics:  rec,
		Logger:   logger,
	})
	c.Login = service.NewAdminLoginService(service.AdminLoginServiceOptions{
		Identity: identity,
		Access:   c.Access,
		Logger:   logger,
	})
	c.Content = service.NewContentService(service.ContentServiceOptions{
		Posts:        repos.posts,
		Events:       repos.events,
		Publications: repos.publications,
		Logger:       logger,
	})
	c.Dashboard = service.NewDashboardService(service.DashboardServiceOptions{
		Posts:        repos.posts,
		Events:       repos.events,
		Publications: repos.publications,
	})
	c.Games = service.NewGameService(service.GameServiceOptions{Scores: repos.scores, Logger: logger})

	handler, err := buildHTTPHandler(cfg, c, deps.DB, logger)
	if err != nil {
		return ServiceContainer{}, err
	}
	c.Handler = handler
	return c, nil
}

func buildHTTPHandler(cfg *config.AppConfig, c ServiceContainer, db *sql.DB, logger *slog.Logger) (http.Handler, error) {
	templates, err := fs.Sub(portal.TemplateFS, "web/templates")
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	renderer, err := httpx.NewRenderer(httpx.RendererConfig{TemplateFS: templates, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	rs := httpx.RouterServices{
		Handlers: &httpx.Handlers{
			Render:    renderer,
			Login:     c.Login,
			Content:   c.Content,
			Dashboard: c.Dashboard,
			Games:     c.Games,
			Profiles:  c.Profiles,
			Logger:    logger,
		},
		Access:          c.Access,
		Metrics:         c.Metrics,
		MetricsPath:     cfg.Observability.MetricsPath,
		DB:              db,
		CookieDomain:    cfg.HTTP.CookieDomain,
		CookieSecure:    cfg.Auth.CookieSecure,
		LoginRateLimit:  cfg.HTTP.LoginRateLimit,
		LoginRateWindow: cfg.HTTP.LoginRateWindow,
		ScoreRateLimit:  cfg.HTTP.ScoreRateLimit,
		Logger:          logger,
	}
	if c.Registry != nil {
		rs.Gatherer = c.Registry
	}
	return httpx.NewRouter(rs)
}
