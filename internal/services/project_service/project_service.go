package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
	"github.com/raventech75/suivi-clients-sub000/internal/domain/rules"
	"github.com/raventech75/suivi-clients-sub000/internal/lib/logger/sl"
	"github.com/raventech75/suivi-clients-sub000/internal/metrics"
	"github.com/raventech75/suivi-clients-sub000/internal/notifier"
	"github.com/raventech75/suivi-clients-sub000/internal/repository"
	"github.com/raventech75/suivi-clients-sub000/internal/storage"
	"github.com/raventech75/suivi-clients-sub000/internal/storage/objectstorage"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto"

	"github.com/google/uuid"
)

var (
	ErrForbidden         = errors.New("actor is not allowed to edit this project")
	ErrInvalidStatus     = errors.New("invalid production status")
	ErrInvalidMedium     = errors.New("medium must be photo or video")
	ErrMediumNotIncluded = errors.New("project does not include this medium")
	ErrAlbumNotFound     = errors.New("album not found")
	ErrCodeExhausted     = errors.New("could not generate a unique project code")
)

const codeAttempts = 5

type ProjectService struct {
	log      *slog.Logger
	repo     repository.ProjectRepository
	notifier notifier.Notifier
	files    objectstorage.ObjectStorage

	// справочник имя -> email, подставляется при назначении команды
	staff       map[string]string
	superAdmins []string
}

func NewProjectService(log *slog.Logger, repo repository.ProjectRepository, n notifier.Notifier, files objectstorage.ObjectStorage, staff map[string]string, superAdmins []string) *ProjectService {
	return &ProjectService{
		log:         log,
		repo:        repo,
		notifier:    n,
		files:       files,
		staff:       staff,
		superAdmins: superAdmins,
	}
}

// CreateProject создает проект с кодом вида "MARIE-482". Статусы конвейеров
// выставляются из купленных медиа: waiting если медиа заказано, иначе none.
func (s *ProjectService) CreateProject(ctx context.Context, actor models.Actor, req dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	const op = "project_service.CreateProject"
	log := s.log.With(
		slog.String("op", op),
		slog.String("actor", actor.Email),
	)

	log.Info("creating project", slog.String("client_names", req.ClientNames))

	if actor.IsAnonymous {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	project := models.Project{
		ClientNames:      req.ClientNames,
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		SecondEmail:      strings.ToLower(strings.TrimSpace(req.SecondEmail)),
		Phone:            req.Phone,
		SecondPhone:      req.SecondPhone,
		Address:          req.Address,
		City:             req.City,
		PostalCode:       req.PostalCode,
		WeddingDate:      req.WeddingDate,
		VenueName:        req.VenueName,
		VenueZip:         req.VenueZip,
		HasPhoto:         req.HasPhoto,
		HasVideo:         req.HasVideo,
		StatusPhoto:      initialStatus(req.HasPhoto),
		StatusVideo:      initialStatus(req.HasVideo),
		ManagerName:      req.ManagerName,
		ManagerEmail:     s.staffEmail(req.ManagerName),
		PhotographerName:  req.PhotographerName,
		PhotographerEmail: s.staffEmail(req.PhotographerName),
		VideographerName:  req.VideographerName,
		VideographerEmail: s.staffEmail(req.VideographerName),
		TotalPrice:       req.TotalPrice,
		DepositAmount:    req.DepositAmount,
		MaxSelection:     req.MaxSelection,
	}

	if err := project.Validate(); err != nil {
		log.Warn("invalid project", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		id  uuid.UUID
		err error
	)
	for i := 0; i < codeAttempts; i++ {
		project.Code = generateCode(project.ClientNames)
		id, err = s.repo.SaveProject(ctx, project)
		if err == nil {
			break
		}
		if !errors.Is(err, storage.ErrCodeTaken) {
			log.Error("failed to save project", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	if err != nil {
		log.Error("code space exhausted", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrCodeExhausted)
	}

	s.appendHistory(ctx, id, actor.Email, "Projet créé")
	metrics.ProjectsCreated.Inc()

	log.Info("project created", slog.String("project_id", id.String()), slog.String("code", project.Code))

	return &dto.CreateProjectResponse{ID: id, Code: project.Code}, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error) {
	const op = "project_service.GetProject"

	project, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := toProjectResponse(*project, time.Now())
	return &resp, nil
}

func (s *ProjectService) ListProjects(ctx context.Context, includeArchived bool) (*dto.ProjectListResponse, error) {
	const op = "project_service.ListProjects"

	projects, err := s.repo.ListProjects(ctx, includeArchived)
	if err != nil {
		s.log.Error("failed to list projects", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toProjectListResponse(projects), nil
}

// ListProjectsByPhotoStatus выборка по набору статусов фото-конвейера,
// для планёрки: "что сейчас в ретуши", "что ждет экспорта".
func (s *ProjectService) ListProjectsByPhotoStatus(ctx context.Context, statuses []string) (*dto.ProjectListResponse, error) {
	const op = "project_service.ListProjectsByPhotoStatus"

	for _, status := range statuses {
		if !rules.IsValidPhotoStatus(status) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
		}
	}

	projects, err := s.repo.ListProjectsByPhotoStatus(ctx, statuses)
	if err != nil {
		s.log.Error("failed to list projects by status", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toProjectListResponse(projects), nil
}

func toProjectListResponse(projects []models.Project) *dto.ProjectListResponse {
	now := time.Now()
	resp := &dto.ProjectListResponse{
		Projects:   make([]dto.ProjectResponse, 0, len(projects)),
		TotalCount: len(projects),
	}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, toProjectResponse(p, now))
	}

	return resp
}

// UpdateProject частичное редактирование карточки. Право выдается
// супер-админам и менеджеру проекта.
func (s *ProjectService) UpdateProject(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	const op = "project_service.UpdateProject"
	log := s.log.With(
		slog.String("op", op),
		slog.String("project_id", id.String()),
		slog.String("actor", actor.Email),
	)

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		log.Warn("update rejected", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := make(map[string]interface{})

	if req.ClientNames != nil {
		updates["client_names"] = *req.ClientNames
	}
	if req.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.SecondEmail != nil {
		updates["second_email"] = strings.ToLower(strings.TrimSpace(*req.SecondEmail))
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.SecondPhone != nil {
		updates["second_phone"] = *req.SecondPhone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.WeddingDate != nil {
		updates["wedding_date"] = *req.WeddingDate
	}
	if req.VenueName != nil {
		updates["venue_name"] = *req.VenueName
	}
	if req.VenueZip != nil {
		updates["venue_zip"] = *req.VenueZip
	}
	if req.HasPhoto != nil {
		updates["has_photo"] = *req.HasPhoto
		if *req.HasPhoto && project.StatusPhoto == rules.StatusNone {
			updates["status_photo"] = rules.StatusWaiting
		}
		if !*req.HasPhoto {
			updates["status_photo"] = rules.StatusNone
			updates["progress_photo"] = 0
		}
	}
	if req.HasVideo != nil {
		updates["has_video"] = *req.HasVideo
		if *req.HasVideo && project.StatusVideo == rules.StatusNone {
			updates["status_video"] = rules.StatusWaiting
		}
		if !*req.HasVideo {
			updates["status_video"] = rules.StatusNone
			updates["progress_video"] = 0
		}
	}
	if req.EstimatedDeliveryPhoto != nil {
		updates["estimated_delivery_photo"] = *req.EstimatedDeliveryPhoto
	}
	if req.EstimatedDeliveryVideo != nil {
		updates["estimated_delivery_video"] = *req.EstimatedDeliveryVideo
	}
	if req.ManagerName != nil {
		updates["manager_name"] = *req.ManagerName
		if email := s.staffEmail(*req.ManagerName); email != "" {
			updates["manager_email"] = email
		}
	}
	if req.PhotographerName != nil {
		updates["photographer_name"] = *req.PhotographerName
		if email := s.staffEmail(*req.PhotographerName); email != "" {
			updates["photographer_email"] = email
		}
	}
	if req.VideographerName != nil {
		updates["videographer_name"] = *req.VideographerName
		if email := s.staffEmail(*req.VideographerName); email != "" {
			updates["videographer_email"] = email
		}
	}
	// Явно переданный email команды перекрывает справочник. Переопределять
	// email фиксированных ролей может только супер-админ.
	if req.ManagerEmail != nil || req.PhotographerEmail != nil || req.VideographerEmail != nil {
		if !rules.IsSuperAdmin(actor.Email, s.superAdmins) {
			log.Warn("staff email override rejected")
			return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
		}
		if req.ManagerEmail != nil {
			updates["manager_email"] = strings.ToLower(strings.TrimSpace(*req.ManagerEmail))
		}
		if req.PhotographerEmail != nil {
			updates["photographer_email"] = strings.ToLower(strings.TrimSpace(*req.PhotographerEmail))
		}
		if req.VideographerEmail != nil {
			updates["videographer_email"] = strings.ToLower(strings.TrimSpace(*req.VideographerEmail))
		}
	}
	if req.LinkPhoto != nil {
		updates["link_photo"] = *req.LinkPhoto
	}
	if req.LinkVideo != nil {
		updates["link_video"] = *req.LinkVideo
	}
	if req.TotalPrice != nil {
		updates["total_price"] = *req.TotalPrice
	}
	if req.DepositAmount != nil {
		updates["deposit_amount"] = *req.DepositAmount
	}
	if req.MaxSelection != nil {
		updates["max_selection"] = *req.MaxSelection
	}
	if req.Music != nil {
		updates["music"] = *req.Music
	}
	if req.Moodboard != nil {
		updates["moodboard"] = *req.Moodboard
	}
	if req.CoverURL != nil {
		updates["cover_url"] = *req.CoverURL
	}

	if len(updates) == 0 {
		resp := toProjectResponse(*project, time.Now())
		return &resp, nil
	}

	if err := s.repo.UpdateProjectFields(ctx, id, updates); err != nil {
		log.Error("failed to update project", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, "Fiche projet modifiée")

	log.Info("project updated", slog.Int("fields", len(updates)))

	return s.GetProject(ctx, id)
}

// UpdateStatus прямой перевод статуса конвейера. Процент берется из
// таблицы статусов, чек-лист при этом не трогается.
func (s *ProjectService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateStatusRequest) (*dto.ProjectResponse, error) {
	const op = "project_service.UpdateStatus"
	log := s.log.With(
		slog.String("op", op),
		slog.String("project_id", id.String()),
		slog.String("medium", req.Medium),
		slog.String("status", req.Status),
	)

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := make(map[string]interface{})
	var label string

	switch req.Medium {
	case "photo":
		if !project.HasPhoto {
			return nil, fmt.Errorf("%s: %w", op, ErrMediumNotIncluded)
		}
		info, err := rules.PhotoStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
		}
		updates["status_photo"] = req.Status
		updates["progress_photo"] = info.Percent
		label = "Statut photo: " + info.Label
	case "video":
		if !project.HasVideo {
			return nil, fmt.Errorf("%s: %w", op, ErrMediumNotIncluded)
		}
		info, err := rules.VideoStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
		}
		updates["status_video"] = req.Status
		updates["progress_video"] = info.Percent
		label = "Statut vidéo: " + info.Label
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidMedium)
	}

	if err := s.repo.UpdateProjectFields(ctx, id, updates); err != nil {
		log.Error("failed to update status", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, label)
	s.notifier.Notify(ctx, notifier.EventStepUpdate, map[string]interface{}{
		"project_code": project.Code,
		"client_email": project.Email,
		"medium":       req.Medium,
		"status":       req.Status,
		"label":        label,
	})

	log.Info("status updated")

	return s.GetProject(ctx, id)
}

// UpdateChecklist заменяет отметки чек-листа. Процент выводится из весов
// задач, статус из процента: 0 ожидание, 100 доставлено, между ними
// текущая работа.
func (s *ProjectService) UpdateChecklist(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.UpdateChecklistRequest) (*dto.ProjectResponse, error) {
	const op = "project_service.UpdateChecklist"
	log := s.log.With(
		slog.String("op", op),
		slog.String("project_id", id.String()),
		slog.String("medium", req.Medium),
	)

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := make(map[string]interface{})
	var (
		label   string
		percent int
		status  string
	)

	switch req.Medium {
	case "photo":
		if !project.HasPhoto {
			return nil, fmt.Errorf("%s: %w", op, ErrMediumNotIncluded)
		}
		percent = rules.PercentFromChecklist(rules.PhotoChecklist(), req.Done)
		status = rules.PhotoStatusFromPercent(percent)
		updates["checklist_photo"] = models.Checklist(req.Done)
		updates["progress_photo"] = percent
		updates["status_photo"] = status
		info, _ := rules.PhotoStatus(status)
		label = fmt.Sprintf("Avancement photo: %d%% (%s)", percent, info.Label)
	case "video":
		if !project.HasVideo {
			return nil, fmt.Errorf("%s: %w", op, ErrMediumNotIncluded)
		}
		percent = rules.PercentFromChecklist(rules.VideoChecklist(), req.Done)
		status = rules.VideoStatusFromPercent(percent)
		updates["checklist_video"] = models.Checklist(req.Done)
		updates["progress_video"] = percent
		updates["status_video"] = status
		info, _ := rules.VideoStatus(status)
		label = fmt.Sprintf("Avancement vidéo: %d%% (%s)", percent, info.Label)
	default:
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidMedium)
	}

	if err := s.repo.UpdateProjectFields(ctx, id, updates); err != nil {
		log.Error("failed to update checklist", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, label)
	s.notifier.Notify(ctx, notifier.EventStepUpdate, map[string]interface{}{
		"project_code": project.Code,
		"client_email": project.Email,
		"medium":       req.Medium,
		"status":       status,
		"percent":      percent,
	})

	log.Info("checklist updated", slog.Int("percent", percent), slog.String("status", status))

	return s.GetProject(ctx, id)
}

// SetPriority включает или выключает fast-track. При включении фиксируется
// дата активации и пересчитываются ожидаемые даты доставки (14 дней).
func (s *ProjectService) SetPriority(ctx context.Context, actor models.Actor, id uuid.UUID, isPriority bool) (*dto.ProjectResponse, error) {
	const op = "project_service.SetPriority"

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := map[string]interface{}{"is_priority": isPriority}
	action := "Fast-track désactivé"

	if isPriority {
		now := time.Now().UTC()
		deadline := rules.FastTrackDeadline(now)
		updates["fast_track_activation_date"] = now
		if project.HasPhoto {
			updates["estimated_delivery_photo"] = deadline
		}
		if project.HasVideo {
			updates["estimated_delivery_video"] = deadline
		}
		action = "Fast-track activé"
	} else {
		updates["fast_track_activation_date"] = nil
	}

	if err := s.repo.UpdateProjectFields(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, action)

	return s.GetProject(ctx, id)
}

func (s *ProjectService) SetArchived(ctx context.Context, actor models.Actor, id uuid.UUID, isArchived bool) (*dto.ProjectResponse, error) {
	const op = "project_service.SetArchived"

	if _, err := s.authorize(ctx, actor, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateProjectFields(ctx, id, map[string]interface{}{"is_archived": isArchived}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	action := "Projet désarchivé"
	if isArchived {
		action = "Projet archivé"
	}
	s.appendHistory(ctx, id, actor.Email, action)

	return s.GetProject(ctx, id)
}

// DeleteProject физическое удаление, только для супер-админов.
func (s *ProjectService) DeleteProject(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	const op = "project_service.DeleteProject"
	log := s.log.With(
		slog.String("op", op),
		slog.String("project_id", id.String()),
		slog.String("actor", actor.Email),
	)

	if !rules.CanHardDelete(actor.Email, actor.IsAnonymous, s.superAdmins) {
		log.Warn("hard delete rejected")
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		log.Error("failed to delete project", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("project deleted")
	return nil
}

func (s *ProjectService) AddAlbum(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.CreateAlbumRequest) (*dto.ProjectResponse, error) {
	const op = "project_service.AddAlbum"

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := rules.ValidateNewAlbum(req.Name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	albums := append(models.AlbumList{}, project.Albums...)
	albums = append(albums, models.NewAlbum(req.Name, req.Format, req.Price))

	if err := s.repo.UpdateProjectFields(ctx, id, map[string]interface{}{"albums": albums}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, "Album ajouté: "+req.Name)

	return s.GetProject(ctx, id)
}

func (s *ProjectService) UpdateAlbum(ctx context.Context, actor models.Actor, id, albumID uuid.UUID, req dto.UpdateAlbumRequest) (*dto.ProjectResponse, error) {
	const op = "project_service.UpdateAlbum"

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	albums := append(models.AlbumList{}, project.Albums...)
	found := false
	for i := range albums {
		if albums[i].ID != albumID {
			continue
		}
		found = true
		if req.Name != nil {
			if err := rules.ValidateNewAlbum(*req.Name); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			albums[i].Name = *req.Name
		}
		if req.Format != nil {
			albums[i].Format = *req.Format
		}
		if req.Price != nil {
			albums[i].Price = *req.Price
		}
		if req.Status != nil {
			if _, err := rules.AlbumStatusLabel(*req.Status); err != nil {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatus)
			}
			albums[i].Status = models.AlbumStatus(*req.Status)
		}
		if req.Paid != nil {
			albums[i].Paid = *req.Paid
		}
		if req.PaymentLink != nil {
			albums[i].PaymentLink = *req.PaymentLink
		}
		break
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrAlbumNotFound)
	}

	if err := s.repo.UpdateProjectFields(ctx, id, map[string]interface{}{"albums": albums}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, "Album modifié")

	return s.GetProject(ctx, id)
}

func (s *ProjectService) DeleteAlbum(ctx context.Context, actor models.Actor, id, albumID uuid.UUID) (*dto.ProjectResponse, error) {
	const op = "project_service.DeleteAlbum"

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	albums := make(models.AlbumList, 0, len(project.Albums))
	found := false
	for _, a := range project.Albums {
		if a.ID == albumID {
			found = true
			continue
		}
		albums = append(albums, a)
	}
	if !found {
		return nil, fmt.Errorf("%s: %w", op, ErrAlbumNotFound)
	}

	if err := s.repo.UpdateProjectFields(ctx, id, map[string]interface{}{"albums": albums}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, "Album supprimé")

	return s.GetProject(ctx, id)
}

// SendMessage сообщение от студии: клиентский чат или внутренняя заметка.
func (s *ProjectService) SendMessage(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.SendMessageRequest) error {
	const op = "project_service.SendMessage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("project_id", id.String()),
	)

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := models.Message{
		Author: "admin",
		Text:   req.Text,
		Date:   time.Now().UTC(),
	}

	column := "messages"
	event := notifier.EventNewMessage
	if req.Internal {
		column = "internal_messages"
		event = notifier.EventInternalChat
	}

	if err := s.repo.AppendMessage(ctx, id, column, msg); err != nil {
		log.Error("failed to append message", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Notify(ctx, event, map[string]interface{}{
		"project_code": project.Code,
		"client_email": project.Email,
		"author":       msg.Author,
		"text":         msg.Text,
	})

	return nil
}

// SetGallery заменяет галерею изображений для клиентского отбора.
func (s *ProjectService) SetGallery(ctx context.Context, actor models.Actor, id uuid.UUID, req dto.GalleryImagesRequest) (*dto.ProjectResponse, error) {
	const op = "project_service.SetGallery"

	if _, err := s.authorize(ctx, actor, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	gallery := make(models.GalleryList, 0, len(req.Images))
	for _, img := range req.Images {
		gallery = append(gallery, models.GalleryImage{Filename: img.Filename, URL: img.URL})
	}

	if err := s.repo.UpdateProjectFields(ctx, id, map[string]interface{}{"gallery": gallery}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, fmt.Sprintf("Galerie mise à jour (%d images)", len(gallery)))

	return s.GetProject(ctx, id)
}

// UploadCover загружает обложку проекта в объектное хранилище и
// сохраняет публичный URL. Прежняя обложка удаляется best-effort.
func (s *ProjectService) UploadCover(ctx context.Context, actor models.Actor, id uuid.UUID, filename, contentType string, data []byte) (*dto.ProjectResponse, error) {
	const op = "project_service.UploadCover"

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	path := fmt.Sprintf("covers/%s/%s", project.Code, filename)

	url, err := s.files.Upload(ctx, path, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if old := coverPath(project.CoverURL); old != "" && old != path {
		if err := s.files.Delete(ctx, old); err != nil {
			s.log.Warn("failed to delete previous cover", slog.String("op", op), sl.Err(err))
		}
	}

	if err := s.repo.UpdateProjectFields(ctx, id, map[string]interface{}{"cover_url": url}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, id, actor.Email, "Photo de couverture mise à jour")

	return s.GetProject(ctx, id)
}

// Invite шлет приглашение на портал с кодом проекта.
func (s *ProjectService) Invite(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	const op = "project_service.Invite"

	project, err := s.authorize(ctx, actor, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Notify(ctx, notifier.EventInvite, map[string]interface{}{
		"project_code": project.Code,
		"client_email": project.Email,
		"client_names": project.ClientNames,
	})

	s.appendHistory(ctx, id, actor.Email, "Invitation envoyée")

	return nil
}

// authorize загружает проект и проверяет право актора на редактирование.
func (s *ProjectService) authorize(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !rules.CanEdit(actor.Email, actor.IsAnonymous, project.ManagerEmail, s.superAdmins) {
		return nil, ErrForbidden
	}

	return project, nil
}

// appendHistory журнал best-effort: отказ записи не валит основную операцию.
func (s *ProjectService) appendHistory(ctx context.Context, id uuid.UUID, actor, action string) {
	entry := models.HistoryEntry{
		Date:   time.Now().UTC(),
		Actor:  actor,
		Action: action,
	}
	if err := s.repo.AppendHistory(ctx, id, entry); err != nil {
		s.log.Warn("failed to append history", slog.String("project_id", id.String()), sl.Err(err))
	}
}

// coverPath восстанавливает путь объекта обложки из сохраненного
// публичного URL.
func coverPath(url string) string {
	const marker = "covers/"
	i := strings.Index(url, marker)
	if i < 0 {
		return ""
	}
	return url[i:]
}

func (s *ProjectService) staffEmail(name string) string {
	if name == "" {
		return ""
	}
	return s.staff[name]
}

func initialStatus(has bool) string {
	if has {
		return rules.StatusWaiting
	}
	return rules.StatusNone
}

// generateCode строит код "<PRENOM>-<3 цифры>" из первого имени пары.
func generateCode(clientNames string) string {
	first := firstName(clientNames)
	if first == "" {
		first = "CLIENT"
	}
	return fmt.Sprintf("%s-%03d", first, rand.Intn(900)+100)
}

func firstName(clientNames string) string {
	fields := strings.FieldsFunc(clientNames, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

func toProjectResponse(p models.Project, now time.Time) dto.ProjectResponse {
	finished := rules.IsFinished(p.StatusPhoto, p.StatusVideo)
	urgency := rules.Classify(p.WeddingDate, now, finished)

	days := int(p.WeddingDate.Sub(now).Hours() / 24)

	return dto.ProjectResponse{
		Project:      p,
		Urgency:      string(urgency),
		DaysUntil:    days,
		PhotoPercent: p.ProgressPhoto,
		VideoPercent: p.ProgressVideo,
	}
}
