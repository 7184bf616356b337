package suite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
	"github.com/raventech75/suivi-clients-sub000/internal/notifier"
	portalsvc "github.com/raventech75/suivi-clients-sub000/internal/services/portal_service"
	projectsvc "github.com/raventech75/suivi-clients-sub000/internal/services/project_service"
	statssvc "github.com/raventech75/suivi-clients-sub000/internal/services/stats_service"
	"github.com/raventech75/suivi-clients-sub000/internal/storage"

	"github.com/google/uuid"
)

// Suite сквозные тесты жизненного цикла проекта: те же сервисы, что в
// продакшене, но поверх памяти вместо Postgres и Supabase.
type Suite struct {
	*testing.T
	Repo     *MemProjectRepo
	Files    *MemObjectStorage
	Projects *projectsvc.ProjectService
	Portal   *portalsvc.PortalService
	Stats    *statssvc.StatsService

	SuperAdmin models.Actor
	Manager    models.Actor
}

const (
	superAdminEmail = "boss@studio.fr"
	managerEmail    = "sophie@studio.fr"
)

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Minute)

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
	})

	repo := NewMemProjectRepo()
	files := NewMemObjectStorage()

	staff := map[string]string{"Sophie": managerEmail}
	superAdmins := []string{superAdminEmail}

	return ctx, &Suite{
		T:          t,
		Repo:       repo,
		Files:      files,
		Projects:   projectsvc.NewProjectService(log, repo, notifier.Noop{}, files, staff, superAdmins),
		Portal:     portalsvc.NewPortalService(log, repo, files, notifier.Noop{}),
		Stats:      statssvc.NewStatsService(log, repo, superAdmins),
		SuperAdmin: models.Actor{Email: superAdminEmail},
		Manager:    models.Actor{Email: managerEmail},
	}
}

// MemProjectRepo потокобезопасное хранилище проектов в памяти. Частичные
// обновления применяются по db-тегам модели, как колонками в Postgres.
type MemProjectRepo struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]models.Project
}

func NewMemProjectRepo() *MemProjectRepo {
	return &MemProjectRepo{projects: make(map[uuid.UUID]models.Project)}
}

func (r *MemProjectRepo) SaveProject(_ context.Context, project models.Project) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.projects {
		if p.Code == project.Code {
			return uuid.Nil, storage.ErrCodeTaken
		}
	}

	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = time.Now()
	project.LastUpdated = project.CreatedAt

	r.projects[project.ID] = project

	return project.ID, nil
}

func (r *MemProjectRepo) GetProjectByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, storage.ErrProjectNotFound
	}

	return &p, nil
}

func (r *MemProjectRepo) GetProjectByCode(_ context.Context, code string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code = strings.ToUpper(strings.TrimSpace(code))
	for _, p := range r.projects {
		if p.Code == code {
			p := p
			return &p, nil
		}
	}

	return nil, storage.ErrProjectNotFound
}

func (r *MemProjectRepo) ListProjects(_ context.Context, includeArchived bool) ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Project
	for _, p := range r.projects {
		if p.IsArchived && !includeArchived {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

func (r *MemProjectRepo) ListProjectsByPhotoStatus(_ context.Context, statuses []string) ([]models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Project
	for _, p := range r.projects {
		for _, s := range statuses {
			if p.StatusPhoto == s {
				out = append(out, p)
				break
			}
		}
	}

	return out, nil
}

func (r *MemProjectRepo) UpdateProjectFields(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return storage.ErrProjectNotFound
	}

	for column, value := range updates {
		if column == "code" {
			return fmt.Errorf("project code is immutable")
		}
		if err := setColumn(&p, column, value); err != nil {
			return err
		}
	}
	p.LastUpdated = time.Now()

	r.projects[id] = p

	return nil
}

func (r *MemProjectRepo) AppendMessage(_ context.Context, id uuid.UUID, column string, msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return storage.ErrProjectNotFound
	}

	switch column {
	case "messages":
		p.Messages = append(p.Messages, msg)
	case "internal_messages":
		p.InternalMessages = append(p.InternalMessages, msg)
	default:
		return fmt.Errorf("unsupported message column %q", column)
	}

	r.projects[id] = p

	return nil
}

func (r *MemProjectRepo) AppendHistory(_ context.Context, id uuid.UUID, entry models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return storage.ErrProjectNotFound
	}

	p.History = append(p.History, entry)
	r.projects[id] = p

	return nil
}

func (r *MemProjectRepo) DeleteProject(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return storage.ErrProjectNotFound
	}

	delete(r.projects, id)

	return nil
}

func setColumn(p *models.Project, column string, value interface{}) error {
	rv := reflect.ValueOf(p).Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		tag := strings.Split(rt.Field(i).Tag.Get("db"), ",")[0]
		if tag != column {
			continue
		}

		fv := rv.Field(i)

		if value == nil {
			fv.Set(reflect.Zero(fv.Type()))
			return nil
		}

		val := reflect.ValueOf(value)
		switch {
		case val.Type().AssignableTo(fv.Type()):
			fv.Set(val)
		case val.Type().ConvertibleTo(fv.Type()):
			fv.Set(val.Convert(fv.Type()))
		case fv.Kind() == reflect.Ptr && val.Type().AssignableTo(fv.Type().Elem()):
			ptr := reflect.New(fv.Type().Elem())
			ptr.Elem().Set(val)
			fv.Set(ptr)
		default:
			return fmt.Errorf("column %q: cannot assign %T", column, value)
		}

		return nil
	}

	return fmt.Errorf("unknown column %q", column)
}

// MemObjectStorage хранит загруженные объекты в памяти
type MemObjectStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func NewMemObjectStorage() *MemObjectStorage {
	return &MemObjectStorage{Objects: make(map[string][]byte)}
}

func (s *MemObjectStorage) Upload(_ context.Context, path, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(data) == 0 {
		return "", fmt.Errorf("empty payload")
	}

	s.Objects[path] = data

	return s.PublicURL(path), nil
}

func (s *MemObjectStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Objects, path)

	return nil
}

func (s *MemObjectStorage) PublicURL(path string) string {
	return "mem://" + path
}
