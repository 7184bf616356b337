package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
	"github.com/raventech75/suivi-clients-sub000/internal/domain/rules"
	projectsvc "github.com/raventech75/suivi-clients-sub000/internal/services/project_service"
	statssvc "github.com/raventech75/suivi-clients-sub000/internal/services/stats_service"
	usersvc "github.com/raventech75/suivi-clients-sub000/internal/services/user_service"
	"github.com/raventech75/suivi-clients-sub000/internal/storage"
	httpapp "github.com/raventech75/suivi-clients-sub000/internal/transport/http"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockUserService) RegisterNewUser(ctx context.Context, actor models.Actor, input dto.UserRegisterInput) (uuid.UUID, error) {
	args := m.Called(ctx, actor, input)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthService) ParseActor(tokenString string) (models.Actor, error) {
	args := m.Called(tokenString)
	return args.Get(0).(models.Actor), args.Error(1)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) CreateProject(ctx context.Context, actor models.Actor, req dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CreateProjectResponse), args.Error(1)
}

func (m *MockProjectService) GetProject(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) ListProjects(ctx context.Context, includeArchived bool) (*dto.ProjectListResponse, error) {
	args := m.Called(ctx, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectListResponse), args.Error(1)
}

func (m *MockProjectService) ListProjectsByPhotoStatus(ctx context.Context, statuses []string) (*dto.ProjectListResponse, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectListResponse), args.Error(1)
}

func (m *MockProjectService) UpdateProject(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) UpdateChecklist(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateChecklistRequest) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) SetPriority(ctx context.Context, actor models.Actor, id uuid.UUID, isPriority bool) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, isPriority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) SetArchived(ctx context.Context, actor models.Actor, id uuid.UUID, isArchived bool) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, isArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) DeleteProject(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockProjectService) AddAlbum(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.CreateAlbumRequest) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) UpdateAlbum(ctx context.Context, actor models.Actor, id, albumID uuid.UUID, req dto.UpdateAlbumRequest) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, albumID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) DeleteAlbum(ctx context.Context, actor models.Actor, id, albumID uuid.UUID) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, albumID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) SendMessage(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.SendMessageRequest) error {
	args := m.Called(ctx, actor, id, req)
	return args.Error(0)
}

func (m *MockProjectService) SetGallery(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.GalleryImagesRequest) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) UploadCover(ctx context.Context, actor models.Actor, id uuid.UUID, filename, contentType string, data []byte) (*dto.ProjectResponse, error) {
	args := m.Called(ctx, actor, id, filename, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProjectResponse), args.Error(1)
}

func (m *MockProjectService) Invite(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

type MockPortalService struct {
	mock.Mock
}

func (m *MockPortalService) GetByCode(ctx context.Context, code string) (*dto.PortalProjectResponse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PortalProjectResponse), args.Error(1)
}

func (m *MockPortalService) SendMessage(ctx context.Context, code string, req dto.PortalMessageRequest) error {
	args := m.Called(ctx, code, req)
	return args.Error(0)
}

func (m *MockPortalService) ToggleSelection(ctx context.Context, code string, req dto.ToggleSelectionRequest) (*dto.ToggleSelectionResponse, error) {
	args := m.Called(ctx, code, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ToggleSelectionResponse), args.Error(1)
}

func (m *MockPortalService) ValidateSelection(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockPortalService) SignContract(ctx context.Context, code string, req dto.SignContractRequest) (*dto.PortalProjectResponse, error) {
	args := m.Called(ctx, code, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PortalProjectResponse), args.Error(1)
}

func (m *MockPortalService) ConfirmDelivery(ctx context.Context, code, medium string) error {
	args := m.Called(ctx, code, medium)
	return args.Error(0)
}

func (m *MockPortalService) SubmitQuestionnaire(ctx context.Context, code string, req dto.QuestionnaireRequest) error {
	args := m.Called(ctx, code, req)
	return args.Error(0)
}

func (m *MockPortalService) SetMusic(ctx context.Context, code string, req dto.MusicRequest) error {
	args := m.Called(ctx, code, req)
	return args.Error(0)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StatsResponse), args.Error(1)
}

func (m *MockStatsService) ExportCSV(ctx context.Context, actor models.Actor, includeArchived bool) ([]byte, error) {
	args := m.Called(ctx, actor, includeArchived)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type testEnv struct {
	router   *httpapp.Routers
	users    *MockUserService
	auth     *MockAuthService
	projects *MockProjectService
	portal   *MockPortalService
	stats    *MockStatsService
	echo     *echo.Echo
}

func newTestEnv() *testEnv {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	env := &testEnv{
		users:    new(MockUserService),
		auth:     new(MockAuthService),
		projects: new(MockProjectService),
		portal:   new(MockPortalService),
		stats:    new(MockStatsService),
	}

	env.router = httpapp.NewRouter(log, env.users, env.auth, env.projects, env.portal, env.stats)

	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	env.echo = e

	return env
}

func (env *testEnv) request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return env.echo.NewContext(req, rec), rec
}

var staffActor = models.Actor{Email: "sophie@studio.fr"}

func TestLogin(t *testing.T) {
	t.Run("успешный вход", func(t *testing.T) {
		env := newTestEnv()

		pair := &models.TokenPair{AccessToken: "acc", RefreshToken: "ref"}
		env.users.On("Login", mock.Anything, "sophie@studio.fr", "secret").Return(pair, nil)

		c, rec := env.request(http.MethodPost, "/api/v1/login", `{"email":"sophie@studio.fr","password":"secret"}`)

		require.NoError(t, env.router.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "acc")
		env.users.AssertExpectations(t)
	})

	t.Run("неверные учетные данные", func(t *testing.T) {
		env := newTestEnv()

		env.users.On("Login", mock.Anything, "sophie@studio.fr", "wrong").
			Return(nil, usersvc.ErrInvalidCredentials)

		c, rec := env.request(http.MethodPost, "/api/v1/login", `{"email":"sophie@studio.fr","password":"wrong"}`)

		require.NoError(t, env.router.Login(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("перебор паролей блокируется", func(t *testing.T) {
		env := newTestEnv()

		env.users.On("Login", mock.Anything, "sophie@studio.fr", "wrong").
			Return(nil, usersvc.ErrRateLimited)

		c, rec := env.request(http.MethodPost, "/api/v1/login", `{"email":"sophie@studio.fr","password":"wrong"}`)

		require.NoError(t, env.router.Login(c))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Contains(t, rec.Body.String(), "rate_limited")
	})

	t.Run("инфраструктурный сбой не выглядит как отказ в доступе", func(t *testing.T) {
		env := newTestEnv()

		env.users.On("Login", mock.Anything, "sophie@studio.fr", "secret").
			Return(nil, assert.AnError)

		c, rec := env.request(http.MethodPost, "/api/v1/login", `{"email":"sophie@studio.fr","password":"secret"}`)

		require.NoError(t, env.router.Login(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "internal_error")
	})

	t.Run("невалидный email", func(t *testing.T) {
		env := newTestEnv()

		c, rec := env.request(http.MethodPost, "/api/v1/login", `{"email":"not-an-email","password":"secret"}`)

		require.NoError(t, env.router.Login(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.users.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRegisterHandler(t *testing.T) {
	body := `{"name":"Lucie","email":"lucie@studio.fr","password":"password123"}`

	t.Run("регистрация супер-админом", func(t *testing.T) {
		env := newTestEnv()

		env.users.On("RegisterNewUser", mock.Anything, staffActor, mock.Anything).
			Return(uuid.New(), nil)

		c, rec := env.request(http.MethodPost, "/api/v1/register", body)
		c.Set("actor", staffActor)

		require.NoError(t, env.router.Register(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("обычному сотруднику нельзя", func(t *testing.T) {
		env := newTestEnv()

		env.users.On("RegisterNewUser", mock.Anything, mock.Anything, mock.Anything).
			Return(uuid.Nil, usersvc.ErrForbidden)

		c, rec := env.request(http.MethodPost, "/api/v1/register", body)
		c.Set("actor", staffActor)

		require.NoError(t, env.router.Register(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestCreateProjectHandler(t *testing.T) {
	body := `{"client_names":"Marie & Thomas","email":"marie@example.com","wedding_date":"2026-06-20T00:00:00Z","has_photo":true}`

	t.Run("создание проекта", func(t *testing.T) {
		env := newTestEnv()

		resp := &dto.CreateProjectResponse{ID: uuid.New(), Code: "MARIE-482"}
		env.projects.On("CreateProject", mock.Anything, staffActor, mock.Anything).Return(resp, nil)

		c, rec := env.request(http.MethodPost, "/api/v1/projects", body)
		c.Set("actor", staffActor)

		require.NoError(t, env.router.CreateProject(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "MARIE-482")
	})

	t.Run("запрет без прав", func(t *testing.T) {
		env := newTestEnv()

		env.projects.On("CreateProject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, projectsvc.ErrForbidden)

		c, rec := env.request(http.MethodPost, "/api/v1/projects", body)

		require.NoError(t, env.router.CreateProject(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("отсутствует email", func(t *testing.T) {
		env := newTestEnv()

		c, rec := env.request(http.MethodPost, "/api/v1/projects", `{"client_names":"Marie & Thomas"}`)

		require.NoError(t, env.router.CreateProject(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.projects.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("проект без медиа отклоняется как 400", func(t *testing.T) {
		env := newTestEnv()

		env.projects.On("CreateProject", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, models.ErrMediumRequired)

		noMedia := `{"client_names":"Marie & Thomas","email":"marie@example.com","wedding_date":"2026-06-20T00:00:00Z"}`
		c, rec := env.request(http.MethodPost, "/api/v1/projects", noMedia)
		c.Set("actor", staffActor)

		require.NoError(t, env.router.CreateProject(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_request")
	})
}

func TestListProjectsHandler(t *testing.T) {
	t.Run("фильтр по статусам фото", func(t *testing.T) {
		env := newTestEnv()

		resp := &dto.ProjectListResponse{TotalCount: 1}
		env.projects.On("ListProjectsByPhotoStatus", mock.Anything, []string{"editing", "export"}).
			Return(resp, nil)

		c, rec := env.request(http.MethodGet, "/api/v1/projects?photo_status=editing,export", "")

		require.NoError(t, env.router.ListProjects(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		env.projects.AssertNotCalled(t, "ListProjects", mock.Anything, mock.Anything)
	})

	t.Run("неизвестный статус в фильтре", func(t *testing.T) {
		env := newTestEnv()

		env.projects.On("ListProjectsByPhotoStatus", mock.Anything, []string{"nonsense"}).
			Return(nil, projectsvc.ErrInvalidStatus)

		c, rec := env.request(http.MethodGet, "/api/v1/projects?photo_status=nonsense", "")

		require.NoError(t, env.router.ListProjects(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetProjectHandler(t *testing.T) {
	t.Run("проект найден", func(t *testing.T) {
		env := newTestEnv()

		id := uuid.New()
		resp := &dto.ProjectResponse{Urgency: string(rules.UrgencyActive), PhotoPercent: 50}
		env.projects.On("GetProject", mock.Anything, id).Return(resp, nil)

		c, rec := env.request(http.MethodGet, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, env.router.GetProject(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("проект не найден", func(t *testing.T) {
		env := newTestEnv()

		id := uuid.New()
		env.projects.On("GetProject", mock.Anything, id).Return(nil, storage.ErrProjectNotFound)

		c, rec := env.request(http.MethodGet, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, env.router.GetProject(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("кривой UUID", func(t *testing.T) {
		env := newTestEnv()

		c, rec := env.request(http.MethodGet, "/", "")
		c.SetParamNames("id")
		c.SetParamValues("not-a-uuid")

		require.NoError(t, env.router.GetProject(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.projects.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything)
	})
}

func TestUpdateStatusHandler(t *testing.T) {
	t.Run("недопустимый статус", func(t *testing.T) {
		env := newTestEnv()

		id := uuid.New()
		env.projects.On("UpdateStatus", mock.Anything, mock.Anything, id, mock.Anything).
			Return(nil, projectsvc.ErrInvalidStatus)

		c, rec := env.request(http.MethodPut, "/", `{"medium":"photo","status":"grading"}`)
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, env.router.UpdateStatus(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("конвейер невключенного медиа", func(t *testing.T) {
		env := newTestEnv()

		id := uuid.New()
		env.projects.On("UpdateStatus", mock.Anything, mock.Anything, id, mock.Anything).
			Return(nil, projectsvc.ErrMediumNotIncluded)

		c, rec := env.request(http.MethodPut, "/", `{"medium":"video","status":"cutting"}`)
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, env.router.UpdateStatus(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("неизвестный medium отклоняется валидатором", func(t *testing.T) {
		env := newTestEnv()

		c, rec := env.request(http.MethodPut, "/", `{"medium":"drone","status":"editing"}`)
		c.SetParamNames("id")
		c.SetParamValues(uuid.NewString())

		require.NoError(t, env.router.UpdateStatus(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		env.projects.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteProjectHandler(t *testing.T) {
	t.Run("удаление супер-админом", func(t *testing.T) {
		env := newTestEnv()

		id := uuid.New()
		env.projects.On("DeleteProject", mock.Anything, staffActor, id).Return(nil)

		c, rec := env.request(http.MethodDelete, "/", "")
		c.Set("actor", staffActor)
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, env.router.DeleteProject(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("менеджеру нельзя", func(t *testing.T) {
		env := newTestEnv()

		id := uuid.New()
		env.projects.On("DeleteProject", mock.Anything, mock.Anything, id).Return(projectsvc.ErrForbidden)

		c, rec := env.request(http.MethodDelete, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(id.String())

		require.NoError(t, env.router.DeleteProject(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestPortalProjectHandler(t *testing.T) {
	t.Run("по коду", func(t *testing.T) {
		env := newTestEnv()

		resp := &dto.PortalProjectResponse{Code: "MARIE-482", ClientNames: "Marie & Thomas"}
		env.portal.On("GetByCode", mock.Anything, "MARIE-482").Return(resp, nil)

		c, rec := env.request(http.MethodGet, "/", "")
		c.SetParamNames("code")
		c.SetParamValues("MARIE-482")

		require.NoError(t, env.router.PortalProject(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var got dto.PortalProjectResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "MARIE-482", got.Code)
	})

	t.Run("неизвестный код", func(t *testing.T) {
		env := newTestEnv()

		env.portal.On("GetByCode", mock.Anything, "NOBODY-000").Return(nil, storage.ErrProjectNotFound)

		c, rec := env.request(http.MethodGet, "/", "")
		c.SetParamNames("code")
		c.SetParamValues("NOBODY-000")

		require.NoError(t, env.router.PortalProject(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPortalSelectionHandlers(t *testing.T) {
	t.Run("toggle", func(t *testing.T) {
		env := newTestEnv()

		remaining := 19
		resp := &dto.ToggleSelectionResponse{SelectedImages: []string{"img1.jpg"}, Remaining: &remaining}
		env.portal.On("ToggleSelection", mock.Anything, "MARIE-482", dto.ToggleSelectionRequest{Filename: "img1.jpg"}).
			Return(resp, nil)

		c, rec := env.request(http.MethodPost, "/", `{"filename":"img1.jpg"}`)
		c.SetParamNames("code")
		c.SetParamValues("MARIE-482")

		require.NoError(t, env.router.PortalToggleSelection(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "img1.jpg")
	})

	t.Run("выбор уже зафиксирован", func(t *testing.T) {
		env := newTestEnv()

		env.portal.On("ToggleSelection", mock.Anything, "MARIE-482", mock.Anything).
			Return(nil, rules.ErrSelectionValidated)

		c, rec := env.request(http.MethodPost, "/", `{"filename":"img1.jpg"}`)
		c.SetParamNames("code")
		c.SetParamValues("MARIE-482")

		require.NoError(t, env.router.PortalToggleSelection(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("валидация пустого выбора", func(t *testing.T) {
		env := newTestEnv()

		env.portal.On("ValidateSelection", mock.Anything, "MARIE-482").Return(rules.ErrSelectionEmpty)

		c, rec := env.request(http.MethodPost, "/", "")
		c.SetParamNames("code")
		c.SetParamValues("MARIE-482")

		require.NoError(t, env.router.PortalValidateSelection(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportCSVHandler(t *testing.T) {
	t.Run("super admin gets the file", func(t *testing.T) {
		env := newTestEnv()

		csv := []byte("code,client_names\nMARIE-482,Marie & Thomas\n")
		env.stats.On("ExportCSV", mock.Anything, staffActor, true).Return(csv, nil)

		c, rec := env.request(http.MethodGet, "/api/v1/projects/export?include_archived=true", "")
		c.Set("actor", staffActor)

		require.NoError(t, env.router.ExportCSV(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get(echo.HeaderContentType))
		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "projets.csv")
		assert.Equal(t, csv, rec.Body.Bytes())
	})

	t.Run("manager forbidden", func(t *testing.T) {
		env := newTestEnv()

		env.stats.On("ExportCSV", mock.Anything, mock.Anything, false).Return(nil, statssvc.ErrForbidden)

		c, rec := env.request(http.MethodGet, "/api/v1/projects/export", "")

		require.NoError(t, env.router.ExportCSV(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
