package app

import (
	"context"
	"log/slog"

	httpapp "github.com/raventech75/suivi-clients-sub000/internal/app/http"
	"github.com/raventech75/suivi-clients-sub000/internal/config"
	"github.com/raventech75/suivi-clients-sub000/internal/notifier"
	"github.com/raventech75/suivi-clients-sub000/internal/repository"
	portalsvc "github.com/raventech75/suivi-clients-sub000/internal/services/portal_service"
	projectsvc "github.com/raventech75/suivi-clients-sub000/internal/services/project_service"
	statssvc "github.com/raventech75/suivi-clients-sub000/internal/services/stats_service"
	tokensvc "github.com/raventech75/suivi-clients-sub000/internal/services/token_service"
	usersvc "github.com/raventech75/suivi-clients-sub000/internal/services/user_service"
	"github.com/raventech75/suivi-clients-sub000/internal/storage/objectstorage"
	"github.com/raventech75/suivi-clients-sub000/internal/storage/postgresql"
	"github.com/raventech75/suivi-clients-sub000/internal/storage/redis"
	httprouters "github.com/raventech75/suivi-clients-sub000/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
}

func New(log *slog.Logger, cfg *config.Config) *App {
	pool, err := postgresql.New(context.Background(), cfg.DSN)
	if err != nil {
		panic(err)
	}

	redisClient := redis.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)

	userRepo := repository.NewUserRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	tokenRepo := repository.NewRedisTokenRepo(redisClient)

	files := objectstorage.New(cfg.Storage.SupabaseURL, cfg.Storage.ServiceKey, cfg.Storage.Bucket)

	var notify notifier.Notifier = notifier.Noop{}
	if cfg.Webhook.URL != "" {
		notify = notifier.New(log, cfg.Webhook.URL, cfg.Webhook.Timeout)
	}

	tokenService := tokensvc.NewTokenService(tokenRepo, cfg.AppSecret)
	userService := usersvc.NewUserService(log, userRepo, tokenService, cfg.SuperAdmins)
	projectService := projectsvc.NewProjectService(log, projectRepo, notify, files, cfg.Staff, cfg.SuperAdmins)
	portalService := portalsvc.NewPortalService(log, projectRepo, files, notify)
	statsService := statssvc.NewStatsService(log, projectRepo, cfg.SuperAdmins)

	routers := httprouters.NewRouter(log, userService, tokenService, projectService, portalService, statsService)

	server := httpapp.New(log, cfg.SessionKey, cfg.HTTP.Host, cfg.HTTP.Port, routers)

	return &App{
		HTTPServer: server,
	}
}
