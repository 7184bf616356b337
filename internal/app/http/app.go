package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	appmw "github.com/raventech75/suivi-clients-sub000/internal/middleware"
	httprouters "github.com/raventech75/suivi-clients-sub000/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	host    string
	port    string
}

func New(log *slog.Logger, sessionKey, host, port string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	e.Use(session.Middleware(sessions.NewCookieStore([]byte(sessionKey))))

	e.Use(middleware.CORS())
	e.Use(middleware.Recover())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	e.Use(appmw.PrometheusMetrics)

	return &Server{
		log:     log,
		e:       e,
		routers: routers,
		host:    host,
		port:    port,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(fmt.Sprintf(":%s", s.port)); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", op, "http server")

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

func (s *Server) BuildRouters() {
	api := s.e.Group("/api/v1")
	{
		api.POST("/login", s.routers.Login)
		api.POST("/refresh", s.routers.Refresh)

		s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

		swagger := s.e.Group("/swag")
		{
			swagger.GET("/swagger/*", echoSwagger.WrapHandler)
		}

		// Клиентский портал: доступ только по коду проекта, без токена.
		portal := api.Group("/portal/:code")
		{
			portal.GET("", s.routers.PortalProject)
			portal.POST("/messages", s.routers.PortalSendMessage)
			portal.POST("/selection/toggle", s.routers.PortalToggleSelection)
			portal.POST("/selection/validate", s.routers.PortalValidateSelection)
			portal.POST("/contract/sign", s.routers.PortalSignContract)
			portal.POST("/delivery/confirm", s.routers.PortalConfirmDelivery)
			portal.POST("/questionnaire", s.routers.PortalQuestionnaire)
			portal.POST("/music", s.routers.PortalSetMusic)
		}

		staff := api.Group("", appmw.StaffAuth(s.routers.AuthService))
		{
			staff.POST("/register", s.routers.Register)

			staff.POST("/projects", s.routers.CreateProject)
			staff.GET("/projects", s.routers.ListProjects)
			staff.GET("/projects/:id", s.routers.GetProject)
			staff.PATCH("/projects/:id", s.routers.UpdateProject)
			staff.DELETE("/projects/:id", s.routers.DeleteProject)

			staff.PATCH("/projects/:id/status", s.routers.UpdateStatus)
			staff.PATCH("/projects/:id/checklist", s.routers.UpdateChecklist)
			staff.PATCH("/projects/:id/priority", s.routers.SetPriority)
			staff.PATCH("/projects/:id/archive", s.routers.SetArchived)
			staff.POST("/projects/:id/gallery", s.routers.SetGallery)
			staff.POST("/projects/:id/cover", s.routers.UploadCover)

			staff.POST("/projects/:id/albums", s.routers.AddAlbum)
			staff.PATCH("/projects/:id/albums/:album_id", s.routers.UpdateAlbum)
			staff.DELETE("/projects/:id/albums/:album_id", s.routers.DeleteAlbum)

			staff.POST("/projects/:id/messages", s.routers.SendMessage)
			staff.POST("/projects/:id/internal-messages", s.routers.SendInternalMessage)
			staff.POST("/projects/:id/invite", s.routers.Invite)

			staff.GET("/projects/export", s.routers.ExportCSV)
			staff.GET("/stats", s.routers.Stats)
		}
	}
}
