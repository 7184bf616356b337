package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
	"github.com/raventech75/suivi-clients-sub000/internal/domain/rules"
	"github.com/raventech75/suivi-clients-sub000/internal/lib/logger/sl"
	appmw "github.com/raventech75/suivi-clients-sub000/internal/middleware"
	portalsvc "github.com/raventech75/suivi-clients-sub000/internal/services/portal_service"
	projectsvc "github.com/raventech75/suivi-clients-sub000/internal/services/project_service"
	statssvc "github.com/raventech75/suivi-clients-sub000/internal/services/stats_service"
	usersvc "github.com/raventech75/suivi-clients-sub000/internal/services/user_service"
	"github.com/raventech75/suivi-clients-sub000/internal/storage"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto/request"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	_ "github.com/raventech75/suivi-clients-sub000/docs"
)

type UserService interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	RegisterNewUser(ctx context.Context, actor models.Actor, input dto.UserRegisterInput) (uuid.UUID, error)
}

type AuthService interface {
	RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, userID string) error
	ParseActor(tokenString string) (models.Actor, error)
}

type ProjectService interface {
	CreateProject(ctx context.Context, actor models.Actor, req dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	GetProject(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error)
	ListProjects(ctx context.Context, includeArchived bool) (*dto.ProjectListResponse, error)
	ListProjectsByPhotoStatus(ctx context.Context, statuses []string) (*dto.ProjectListResponse, error)
	UpdateProject(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.ProjectResponse, error)
	UpdateChecklist(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateChecklistRequest) (*dto.ProjectResponse, error)
	SetPriority(ctx context.Context, actor models.Actor, id uuid.UUID, isPriority bool) (*dto.ProjectResponse, error)
	SetArchived(ctx context.Context, actor models.Actor, id uuid.UUID, isArchived bool) (*dto.ProjectResponse, error)
	DeleteProject(ctx context.Context, actor models.Actor, id uuid.UUID) error
	AddAlbum(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.CreateAlbumRequest) (*dto.ProjectResponse, error)
	UpdateAlbum(ctx context.Context, actor models.Actor, id, albumID uuid.UUID, req dto.UpdateAlbumRequest) (*dto.ProjectResponse, error)
	DeleteAlbum(ctx context.Context, actor models.Actor, id, albumID uuid.UUID) (*dto.ProjectResponse, error)
	SendMessage(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.SendMessageRequest) error
	SetGallery(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.GalleryImagesRequest) (*dto.ProjectResponse, error)
	UploadCover(ctx context.Context, actor models.Actor, id uuid.UUID, filename, contentType string, data []byte) (*dto.ProjectResponse, error)
	Invite(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type PortalService interface {
	GetByCode(ctx context.Context, code string) (*dto.PortalProjectResponse, error)
	SendMessage(ctx context.Context, code string, req dto.PortalMessageRequest) error
	ToggleSelection(ctx context.Context, code string, req dto.ToggleSelectionRequest) (*dto.ToggleSelectionResponse, error)
	ValidateSelection(ctx context.Context, code string) error
	SignContract(ctx context.Context, code string, req dto.SignContractRequest) (*dto.PortalProjectResponse, error)
	ConfirmDelivery(ctx context.Context, code, medium string) error
	SubmitQuestionnaire(ctx context.Context, code string, req dto.QuestionnaireRequest) error
	SetMusic(ctx context.Context, code string, req dto.MusicRequest) error
}

type StatsService interface {
	Stats(ctx context.Context) (*dto.StatsResponse, error)
	ExportCSV(ctx context.Context, actor models.Actor, includeArchived bool) ([]byte, error)
}

type Routers struct {
	log            *slog.Logger
	UserService    UserService
	AuthService    AuthService
	ProjectService ProjectService
	PortalService  PortalService
	StatsService   StatsService
}

func NewRouter(log *slog.Logger, userService UserService, authService AuthService, projectService ProjectService, portalService PortalService, statsService StatsService) *Routers {
	return &Routers{
		log:            log,
		UserService:    userService,
		AuthService:    authService,
		ProjectService: projectService,
		PortalService:  portalService,
		StatsService:   statsService,
	}
}

// Login godoc
// @Summary Аутентификация сотрудника
// @Description Вход по email и паролю. Возвращает пару JWT-токенов.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток входа"
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	pair, err := r.UserService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		// Инфраструктурные сбои не маскируются под отказ в доступе
		switch {
		case errors.Is(err, usersvc.ErrInvalidCredentials):
			log.Warn("login failed", sl.Err(err))
			return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
		case errors.Is(err, usersvc.ErrRateLimited):
			log.Warn("login throttled", slog.String("email", req.Email))
			return c.JSON(http.StatusTooManyRequests, response.ErrorResponse{Status: "error", Error: "rate_limited"})
		default:
			log.Error("login error", sl.Err(err))
			return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Register godoc
// @Summary Регистрация сотрудника
// @Description Доступна только супер-админам.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.UserRegisterInput true "Данные для регистрации"
// @Success 201 {object} response.Response{data=object{user_id=string}}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Пользователь уже существует"
// @Security ApiKeyAuth
// @Router /api/v1/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UserRegisterInput

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRegisterRequest)
	}

	if err := c.Validate(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_register_request", err.Error()))
	}

	userID, err := r.UserService.RegisterNewUser(c.Request().Context(), appmw.ActorFromContext(c), req)
	if err != nil {
		if errors.Is(err, usersvc.ErrForbidden) {
			log.Warn("registration forbidden", slog.String("email", req.Email))
			return c.JSON(http.StatusForbidden, response.ErrForbidden)
		}

		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists", slog.String("email", req.Email))
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Status:  "error",
			Error:   "internal_error",
			Details: "Internal server error",
		})
	}

	log.Info("user registered successfully", slog.String("user_id", userID.String()))

	return c.JSON(http.StatusCreated, response.Response{
		Status: "success",
		Data: map[string]uuid.UUID{
			"user_id": userID,
		},
	})
}

func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		log.Error("validation bind", sl.Err(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	newTokens, err := r.AuthService.RefreshTokens(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Error("error refresh tokens", sl.Err(err))
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	}

	return c.JSON(http.StatusOK, newTokens)
}

// CreateProject godoc
// @Summary Создание проекта
// @Description Создает свадебный проект и генерирует клиентский код.
// @Tags projects
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "Карточка проекта"
// @Success 201 {object} response.Response{data=dto.CreateProjectResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects [post]
func (r *Routers) CreateProject(c echo.Context) error {
	const op = "http.routers.CreateProject"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateProjectRequest

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.ProjectService.CreateProject(c.Request().Context(), appmw.ActorFromContext(c), req)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(resp))
}

// ListProjects godoc
// @Summary Список проектов
// @Tags projects
// @Produce json
// @Param include_archived query boolean false "Включать архив"
// @Param photo_status query string false "Фильтр по статусам фото-конвейера, через запятую"
// @Success 200 {object} dto.ProjectListResponse
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects [get]
func (r *Routers) ListProjects(c echo.Context) error {
	const op = "http.routers.ListProjects"

	if raw := c.QueryParam("photo_status"); raw != "" {
		resp, err := r.ProjectService.ListProjectsByPhotoStatus(c.Request().Context(), strings.Split(raw, ","))
		if err != nil {
			return r.projectError(c, op, err)
		}

		return c.JSON(http.StatusOK, resp)
	}

	includeArchived := c.QueryParam("include_archived") == "true"

	resp, err := r.ProjectService.ListProjects(c.Request().Context(), includeArchived)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// GetProject godoc
// @Summary Карточка проекта
// @Tags projects
// @Produce json
// @Param id path string true "UUID проекта" format(uuid)
// @Success 200 {object} dto.ProjectResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects/{id} [get]
func (r *Routers) GetProject(c echo.Context) error {
	const op = "http.routers.GetProject"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	resp, err := r.ProjectService.GetProject(c.Request().Context(), id)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// UpdateProject godoc
// @Summary Редактирование карточки
// @Description Частичное обновление. Код проекта неизменяемый.
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "UUID проекта" format(uuid)
// @Param request body dto.UpdateProjectRequest true "Изменяемые поля"
// @Success 200 {object} dto.ProjectResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects/{id} [patch]
func (r *Routers) UpdateProject(c echo.Context) error {
	const op = "http.routers.UpdateProject"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.ProjectService.UpdateProject(c.Request().Context(), appmw.ActorFromContext(c), id, req)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Прямой перевод статуса
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "UUID проекта" format(uuid)
// @Param request body dto.UpdateStatusRequest true "Медиа и статус"
// @Success 200 {object} dto.ProjectResponse
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects/{id}/status [patch]
func (r *Routers) UpdateStatus(c echo.Context) error {
	const op = "http.routers.UpdateStatus"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.ProjectService.UpdateStatus(c.Request().Context(), appmw.ActorFromContext(c), id, req)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// UpdateChecklist godoc
// @Summary Отметки чек-листа
// @Description Процент и статус выводятся из весов выполненных задач.
// @Tags projects
// @Accept json
// @Produce json
// @Param id path string true "UUID проекта" format(uuid)
// @Param request body dto.UpdateChecklistRequest true "Отметки"
// @Success 200 {object} dto.ProjectResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects/{id}/checklist [patch]
func (r *Routers) UpdateChecklist(c echo.Context) error {
	const op = "http.routers.UpdateChecklist"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateChecklistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.ProjectService.UpdateChecklist(c.Request().Context(), appmw.ActorFromContext(c), id, req)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *Routers) SetPriority(c echo.Context) error {
	const op = "http.routers.SetPriority"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.SetPriorityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	resp, err := r.ProjectService.SetPriority(c.Request().Context(), appmw.ActorFromContext(c), id, req.IsPriority)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *Routers) SetArchived(c echo.Context) error {
	const op = "http.routers.SetArchived"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.SetArchivedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	resp, err := r.ProjectService.SetArchived(c.Request().Context(), appmw.ActorFromContext(c), id, req.IsArchived)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// DeleteProject godoc
// @Summary Удаление проекта
// @Description Физическое удаление, только для супер-админов.
// @Tags projects
// @Param id path string true "UUID проекта" format(uuid)
// @Success 204
// @Failure 403 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects/{id} [delete]
func (r *Routers) DeleteProject(c echo.Context) error {
	const op = "http.routers.DeleteProject"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	if err := r.ProjectService.DeleteProject(c.Request().Context(), appmw.ActorFromContext(c), id); err != nil {
		return r.projectError(c, op, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (r *Routers) AddAlbum(c echo.Context) error {
	const op = "http.routers.AddAlbum"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.CreateAlbumRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.ProjectService.AddAlbum(c.Request().Context(), appmw.ActorFromContext(c), id, req)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusCreated, resp)
}

func (r *Routers) UpdateAlbum(c echo.Context) error {
	const op = "http.routers.UpdateAlbum"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	albumID, err := uuid.Parse(c.Param("album_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Status: "error", Error: "invalid album ID format"})
	}

	var req dto.UpdateAlbumRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.ProjectService.UpdateAlbum(c.Request().Context(), appmw.ActorFromContext(c), id, albumID, req)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *Routers) DeleteAlbum(c echo.Context) error {
	const op = "http.routers.DeleteAlbum"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	albumID, err := uuid.Parse(c.Param("album_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Status: "error", Error: "invalid album ID format"})
	}

	resp, err := r.ProjectService.DeleteAlbum(c.Request().Context(), appmw.ActorFromContext(c), id, albumID)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *Routers) SendMessage(c echo.Context) error {
	const op = "http.routers.SendMessage"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.ProjectService.SendMessage(c.Request().Context(), appmw.ActorFromContext(c), id, req); err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.Response{Status: "success"})
}

func (r *Routers) SetGallery(c echo.Context) error {
	const op = "http.routers.SetGallery"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.GalleryImagesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.ProjectService.SetGallery(c.Request().Context(), appmw.ActorFromContext(c), id, req)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// SendInternalMessage то же, что SendMessage, но всегда во внутренний чат
func (r *Routers) SendInternalMessage(c echo.Context) error {
	const op = "http.routers.SendInternalMessage"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}
	req.Internal = true

	if err := r.ProjectService.SendMessage(c.Request().Context(), appmw.ActorFromContext(c), id, req); err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.Response{Status: "success"})
}

// UploadCover godoc
// @Summary Загрузка обложки проекта
// @Tags projects
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "UUID проекта" format(uuid)
// @Param file formData file true "Изображение обложки"
// @Success 200 {object} dto.ProjectResponse
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects/{id}/cover [post]
func (r *Routers) UploadCover(c echo.Context) error {
	const op = "http.routers.UploadCover"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		log.Warn("empty file in request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Status: "error", Error: "file is required"})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Status: "error", Error: "cannot read file"})
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponse{Status: "error", Error: "cannot read file"})
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := r.ProjectService.UploadCover(c.Request().Context(), appmw.ActorFromContext(c), id, file.Filename, contentType, data)
	if err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *Routers) Invite(c echo.Context) error {
	const op = "http.routers.Invite"

	id, err := r.projectID(c)
	if err != nil {
		return err
	}

	if err := r.ProjectService.Invite(c.Request().Context(), appmw.ActorFromContext(c), id); err != nil {
		return r.projectError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "invitation sent"})
}

// Stats godoc
// @Summary Статистика портфеля
// @Tags stats
// @Produce json
// @Success 200 {object} dto.StatsResponse
// @Security ApiKeyAuth
// @Router /api/v1/stats [get]
func (r *Routers) Stats(c echo.Context) error {
	const op = "http.routers.Stats"

	resp, err := r.StatsService.Stats(c.Request().Context())
	if err != nil {
		r.log.Error("failed to compute stats", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}

	return c.JSON(http.StatusOK, resp)
}

// ExportCSV godoc
// @Summary Экспорт проектов в CSV
// @Description Только для супер-админов.
// @Tags stats
// @Produce text/csv
// @Param include_archived query boolean false "Включать архив"
// @Success 200 {string} string "CSV"
// @Failure 403 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/projects/export [get]
func (r *Routers) ExportCSV(c echo.Context) error {
	const op = "http.routers.ExportCSV"

	includeArchived := c.QueryParam("include_archived") == "true"

	data, err := r.StatsService.ExportCSV(c.Request().Context(), appmw.ActorFromContext(c), includeArchived)
	if err != nil {
		if errors.Is(err, statssvc.ErrForbidden) {
			return c.JSON(http.StatusForbidden, response.ErrForbidden)
		}
		r.log.Error("failed to export csv", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="projets.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

// PortalProject godoc
// @Summary Проект глазами клиента
// @Description Доступ по коду проекта, без аккаунта. Ссылки на материалы
// @Description проходят через правила оплаты и архивации.
// @Tags portal
// @Produce json
// @Param code path string true "Код проекта"
// @Success 200 {object} dto.PortalProjectResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/portal/{code} [get]
func (r *Routers) PortalProject(c echo.Context) error {
	const op = "http.routers.PortalProject"

	resp, err := r.PortalService.GetByCode(c.Request().Context(), c.Param("code"))
	if err != nil {
		return r.portalError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *Routers) PortalSendMessage(c echo.Context) error {
	const op = "http.routers.PortalSendMessage"

	var req dto.PortalMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.PortalService.SendMessage(c.Request().Context(), c.Param("code"), req); err != nil {
		return r.portalError(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.Response{Status: "success"})
}

func (r *Routers) PortalToggleSelection(c echo.Context) error {
	const op = "http.routers.PortalToggleSelection"

	var req dto.ToggleSelectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.PortalService.ToggleSelection(c.Request().Context(), c.Param("code"), req)
	if err != nil {
		return r.portalError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *Routers) PortalValidateSelection(c echo.Context) error {
	const op = "http.routers.PortalValidateSelection"

	if err := r.PortalService.ValidateSelection(c.Request().Context(), c.Param("code")); err != nil {
		return r.portalError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

func (r *Routers) PortalSignContract(c echo.Context) error {
	const op = "http.routers.PortalSignContract"

	var req dto.SignContractRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	resp, err := r.PortalService.SignContract(c.Request().Context(), c.Param("code"), req)
	if err != nil {
		return r.portalError(c, op, err)
	}

	return c.JSON(http.StatusOK, resp)
}

func (r *Routers) PortalConfirmDelivery(c echo.Context) error {
	const op = "http.routers.PortalConfirmDelivery"

	var req dto.ConfirmDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.PortalService.ConfirmDelivery(c.Request().Context(), c.Param("code"), req.Medium); err != nil {
		return r.portalError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

func (r *Routers) PortalQuestionnaire(c echo.Context) error {
	const op = "http.routers.PortalQuestionnaire"

	var req dto.QuestionnaireRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.PortalService.SubmitQuestionnaire(c.Request().Context(), c.Param("code"), req); err != nil {
		return r.portalError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

func (r *Routers) PortalSetMusic(c echo.Context) error {
	const op = "http.routers.PortalSetMusic"

	var req dto.MusicRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	if err := r.PortalService.SetMusic(c.Request().Context(), c.Param("code"), req); err != nil {
		return r.portalError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success"})
}

func (r *Routers) projectID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Status: "error",
			Error:  "invalid project ID format",
		})
	}
	return id, nil
}

// projectError единая таблица соответствия доменных ошибок HTTP-статусам.
func (r *Routers) projectError(c echo.Context, op string, err error) error {
	log := r.log.With(slog.String("op", op))

	switch {
	case errors.Is(err, storage.ErrProjectNotFound):
		return c.JSON(http.StatusNotFound, response.ErrProjectNotFound)
	case errors.Is(err, projectsvc.ErrForbidden):
		return c.JSON(http.StatusForbidden, response.ErrForbidden)
	case errors.Is(err, storage.ErrCodeTaken), errors.Is(err, projectsvc.ErrCodeExhausted):
		return c.JSON(http.StatusConflict, response.ErrCodeTaken)
	case errors.Is(err, projectsvc.ErrInvalidStatus),
		errors.Is(err, projectsvc.ErrInvalidMedium),
		errors.Is(err, projectsvc.ErrMediumNotIncluded),
		errors.Is(err, rules.ErrAlbumNameRequired),
		errors.Is(err, models.ErrClientNamesRequired),
		errors.Is(err, models.ErrClientEmailRequired),
		errors.Is(err, models.ErrWeddingDateRequired),
		errors.Is(err, models.ErrMediumRequired):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	case errors.Is(err, projectsvc.ErrAlbumNotFound):
		return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("album_not_found", err.Error()))
	default:
		log.Error("request failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}
}

func (r *Routers) portalError(c echo.Context, op string, err error) error {
	log := r.log.With(slog.String("op", op))

	switch {
	case errors.Is(err, storage.ErrProjectNotFound):
		return c.JSON(http.StatusNotFound, response.ErrProjectNotFound)
	case errors.Is(err, rules.ErrSelectionValidated),
		errors.Is(err, rules.ErrSelectionFull),
		errors.Is(err, portalsvc.ErrContractSigned):
		return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails("conflict", err.Error()))
	case errors.Is(err, rules.ErrSelectionEmpty),
		errors.Is(err, portalsvc.ErrInvalidMedium),
		errors.Is(err, portalsvc.ErrInvalidSignature):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	default:
		log.Error("portal request failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}
}
