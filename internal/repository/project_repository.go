package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
	"github.com/raventech75/suivi-clients-sub000/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type ProjectRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewProjectRepository(db *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var projectColumns = []string{
	"id", "code",
	"client_names", "email", "second_email", "phone", "second_phone",
	"address", "city", "postal_code",
	"wedding_date", "venue_name", "venue_zip",
	"has_photo", "has_video",
	"status_photo", "status_video", "progress_photo", "progress_video",
	"checklist_photo", "checklist_video",
	"estimated_delivery_photo", "estimated_delivery_video",
	"manager_name", "manager_email",
	"photographer_name", "photographer_email",
	"videographer_name", "videographer_email",
	"link_photo", "link_video",
	"is_priority", "fast_track_activation_date", "is_archived",
	"total_price", "deposit_amount",
	"messages", "internal_messages", "albums",
	"music", "moodboard",
	"gallery", "selected_images", "max_selection", "selection_validated",
	"questionnaire",
	"photo_delivery_confirmed", "photo_delivery_confirmed_at",
	"video_delivery_confirmed", "video_delivery_confirmed_at",
	"contract_signed", "signature_url", "contract_signed_at",
	"cover_url",
	"history", "created_at", "last_updated",
}

// SaveProject вставляет новый проект. Код проекта уникален, конфликт
// превращается в storage.ErrCodeTaken.
func (r *ProjectRepo) SaveProject(ctx context.Context, p models.Project) (uuid.UUID, error) {
	const op = "repository.project_repository.SaveProject"

	now := time.Now().UTC()

	query, args, err := r.sb.Insert("projects").
		Columns(projectColumns[1:]...).
		Values(
			p.Code,
			p.ClientNames, p.Email, p.SecondEmail, p.Phone, p.SecondPhone,
			p.Address, p.City, p.PostalCode,
			p.WeddingDate, p.VenueName, p.VenueZip,
			p.HasPhoto, p.HasVideo,
			p.StatusPhoto, p.StatusVideo, p.ProgressPhoto, p.ProgressVideo,
			p.CheckListPhoto, p.CheckListVideo,
			p.EstimatedDeliveryPhoto, p.EstimatedDeliveryVideo,
			p.ManagerName, p.ManagerEmail,
			p.PhotographerName, p.PhotographerEmail,
			p.VideographerName, p.VideographerEmail,
			p.LinkPhoto, p.LinkVideo,
			p.IsPriority, p.FastTrackActivationDate, p.IsArchived,
			p.TotalPrice, p.DepositAmount,
			models.MessageList(p.Messages), models.MessageList(p.InternalMessages), models.AlbumList(p.Albums),
			p.Music, p.Moodboard,
			models.GalleryList(p.Gallery), p.SelectedImages, p.MaxSelection, p.SelectionValidated,
			p.Questionnaire,
			p.PhotoDeliveryConfirmed, p.PhotoDeliveryConfirmedAt,
			p.VideoDeliveryConfirmed, p.VideoDeliveryConfirmedAt,
			p.ContractSigned, p.SignatureURL, p.ContractSignedAt,
			p.CoverURL,
			models.HistoryList(p.History), now, now,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id uuid.UUID
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrCodeTaken)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *ProjectRepo) GetProjectByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	const op = "repository.project_repository.GetProjectByID"
	return r.getProject(ctx, op, sq.Eq{"id": id})
}

// GetProjectByCode поиск по клиентскому коду, без учета регистра.
func (r *ProjectRepo) GetProjectByCode(ctx context.Context, code string) (*models.Project, error) {
	const op = "repository.project_repository.GetProjectByCode"
	return r.getProject(ctx, op, sq.Eq{"code": strings.ToUpper(strings.TrimSpace(code))})
}

func (r *ProjectRepo) getProject(ctx context.Context, op string, where sq.Eq) (*models.Project, error) {
	query, args, err := r.sb.Select(projectColumns...).
		From("projects").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	row := r.db.QueryRow(ctx, query, args...)

	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (r *ProjectRepo) ListProjects(ctx context.Context, includeArchived bool) ([]models.Project, error) {
	const op = "repository.project_repository.ListProjects"

	builder := r.sb.Select(projectColumns...).
		From("projects").
		OrderBy("wedding_date DESC")

	if !includeArchived {
		builder = builder.Where(sq.Eq{"is_archived": false})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	return r.queryProjects(ctx, op, query, args)
}

// ListProjectsByPhotoStatus выборка по набору статусов фото-конвейера.
func (r *ProjectRepo) ListProjectsByPhotoStatus(ctx context.Context, statuses []string) ([]models.Project, error) {
	const op = "repository.project_repository.ListProjectsByPhotoStatus"

	query, args, err := r.sb.Select(projectColumns...).
		From("projects").
		Where("status_photo = ANY(?)", pq.Array(statuses)).
		OrderBy("wedding_date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	return r.queryProjects(ctx, op, query, args)
}

func (r *ProjectRepo) queryProjects(ctx context.Context, op, query string, args []interface{}) ([]models.Project, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		projects = append(projects, *p)
	}

	return projects, nil
}

// UpdateProjectFields частичное обновление: последний пишущий побеждает
// в пределах затронутого набора полей. Код проекта не обновляется никогда.
func (r *ProjectRepo) UpdateProjectFields(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	const op = "repository.project_repository.UpdateProjectFields"

	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["code"]; ok {
		return fmt.Errorf("%s: project code is immutable", op)
	}

	builder := r.sb.Update("projects").Where(sq.Eq{"id": id})
	for column, value := range updates {
		builder = builder.Set(column, value)
	}
	builder = builder.Set("last_updated", time.Now().UTC())

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
	}

	return nil
}

// AppendMessage атомарное добавление в jsonb-массив сообщений, чтобы
// конкурентные сообщения разных сторон не затирали друг друга.
func (r *ProjectRepo) AppendMessage(ctx context.Context, id uuid.UUID, column string, msg models.Message) error {
	const op = "repository.project_repository.AppendMessage"

	if column != "messages" && column != "internal_messages" {
		return fmt.Errorf("%s: unsupported message column %q", op, column)
	}

	payload, err := json.Marshal([]models.Message{msg})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.appendJSONB(ctx, op, id, column, payload)
}

// AppendHistory журнал только пополняется, записи не удаляются и не
// переупорядочиваются.
func (r *ProjectRepo) AppendHistory(ctx context.Context, id uuid.UUID, entry models.HistoryEntry) error {
	const op = "repository.project_repository.AppendHistory"

	payload, err := json.Marshal([]models.HistoryEntry{entry})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return r.appendJSONB(ctx, op, id, "history", payload)
}

func (r *ProjectRepo) appendJSONB(ctx context.Context, op string, id uuid.UUID, column string, payload []byte) error {
	query, args, err := r.sb.Update("projects").
		Set(column, sq.Expr(fmt.Sprintf("COALESCE(%s, '[]'::jsonb) || ?::jsonb", column), string(payload))).
		Set("last_updated", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
	}

	return nil
}

func (r *ProjectRepo) DeleteProject(ctx context.Context, id uuid.UUID) error {
	const op = "repository.project_repository.DeleteProject"

	query, args, err := r.sb.Delete("projects").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var (
		p                models.Project
		messages         models.MessageList
		internalMessages models.MessageList
		albums           models.AlbumList
		gallery          models.GalleryList
		history          models.HistoryList
	)

	err := row.Scan(
		&p.ID, &p.Code,
		&p.ClientNames, &p.Email, &p.SecondEmail, &p.Phone, &p.SecondPhone,
		&p.Address, &p.City, &p.PostalCode,
		&p.WeddingDate, &p.VenueName, &p.VenueZip,
		&p.HasPhoto, &p.HasVideo,
		&p.StatusPhoto, &p.StatusVideo, &p.ProgressPhoto, &p.ProgressVideo,
		&p.CheckListPhoto, &p.CheckListVideo,
		&p.EstimatedDeliveryPhoto, &p.EstimatedDeliveryVideo,
		&p.ManagerName, &p.ManagerEmail,
		&p.PhotographerName, &p.PhotographerEmail,
		&p.VideographerName, &p.VideographerEmail,
		&p.LinkPhoto, &p.LinkVideo,
		&p.IsPriority, &p.FastTrackActivationDate, &p.IsArchived,
		&p.TotalPrice, &p.DepositAmount,
		&messages, &internalMessages, &albums,
		&p.Music, &p.Moodboard,
		&gallery, &p.SelectedImages, &p.MaxSelection, &p.SelectionValidated,
		&p.Questionnaire,
		&p.PhotoDeliveryConfirmed, &p.PhotoDeliveryConfirmedAt,
		&p.VideoDeliveryConfirmed, &p.VideoDeliveryConfirmedAt,
		&p.ContractSigned, &p.SignatureURL, &p.ContractSignedAt,
		&p.CoverURL,
		&history, &p.CreatedAt, &p.LastUpdated,
	)
	if err != nil {
		return nil, err
	}

	p.Messages = messages
	p.InternalMessages = internalMessages
	p.Albums = albums
	p.Gallery = gallery
	p.History = history

	return &p, nil
}
