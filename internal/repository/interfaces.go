package repository

import (
	"context"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	SaveUser(ctx context.Context, user models.User) (uuid.UUID, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserById(ctx context.Context, userID uuid.UUID) (models.User, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, userID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userID, token string) error
	DeleteAllUserTokens(ctx context.Context, userID string) error
}

type ProjectRepository interface {
	SaveProject(ctx context.Context, project models.Project) (uuid.UUID, error)
	GetProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetProjectByCode(ctx context.Context, code string) (*models.Project, error)
	ListProjects(ctx context.Context, includeArchived bool) ([]models.Project, error)
	ListProjectsByPhotoStatus(ctx context.Context, statuses []string) ([]models.Project, error)
	UpdateProjectFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	AppendMessage(ctx context.Context, id uuid.UUID, column string, msg models.Message) error
	AppendHistory(ctx context.Context, id uuid.UUID, entry models.HistoryEntry) error
	DeleteProject(ctx context.Context, id uuid.UUID) error
}
