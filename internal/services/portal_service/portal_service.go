package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
	"github.com/raventech75/suivi-clients-sub000/internal/domain/rules"
	"github.com/raventech75/suivi-clients-sub000/internal/lib/logger/sl"
	"github.com/raventech75/suivi-clients-sub000/internal/notifier"
	"github.com/raventech75/suivi-clients-sub000/internal/repository"
	"github.com/raventech75/suivi-clients-sub000/internal/storage"
	"github.com/raventech75/suivi-clients-sub000/internal/storage/objectstorage"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var (
	ErrInvalidMedium    = errors.New("medium must be photo or video")
	ErrContractSigned   = errors.New("contract already signed")
	ErrInvalidSignature = errors.New("invalid signature payload")
)

const (
	codeCacheTTL     = 10 * time.Minute
	codeCacheCleanup = 30 * time.Minute
)

// PortalService клиентская сторона: доступ по коду проекта, без аккаунта.
type PortalService struct {
	log      *slog.Logger
	repo     repository.ProjectRepository
	files    objectstorage.ObjectStorage
	notifier notifier.Notifier

	// код проекта неизменяемый, кэшируем только соответствие код -> id,
	// сам проект всегда читается свежим
	codes *gocache.Cache
}

func NewPortalService(log *slog.Logger, repo repository.ProjectRepository, files objectstorage.ObjectStorage, n notifier.Notifier) *PortalService {
	return &PortalService{
		log:      log,
		repo:     repo,
		files:    files,
		notifier: n,
		codes:    gocache.New(codeCacheTTL, codeCacheCleanup),
	}
}

// GetByCode возвращает клиентский вид проекта с примененными правилами
// доступа к материалам.
func (s *PortalService) GetByCode(ctx context.Context, code string) (*dto.PortalProjectResponse, error) {
	const op = "portal_service.GetByCode"

	project, err := s.lookup(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := s.toPortalResponse(project, time.Now())
	return resp, nil
}

// SendMessage сообщение клиента в общий чат.
func (s *PortalService) SendMessage(ctx context.Context, code string, req dto.PortalMessageRequest) error {
	const op = "portal_service.SendMessage"

	project, err := s.lookup(ctx, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := models.Message{
		Author: "client",
		Text:   req.Text,
		Date:   time.Now().UTC(),
	}

	if err := s.repo.AppendMessage(ctx, project.ID, "messages", msg); err != nil {
		s.log.Error("failed to append client message", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Notify(ctx, notifier.EventNewMessage, map[string]interface{}{
		"project_code":  project.Code,
		"manager_email": project.ManagerEmail,
		"author":        msg.Author,
		"text":          msg.Text,
	})

	return nil
}

// ToggleSelection переключает файл в отборе клиента.
func (s *PortalService) ToggleSelection(ctx context.Context, code string, req dto.ToggleSelectionRequest) (*dto.ToggleSelectionResponse, error) {
	const op = "portal_service.ToggleSelection"

	project, err := s.lookup(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	selected, err := rules.ToggleSelection(project.SelectedImages, req.Filename, project.MaxSelection, project.SelectionValidated)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateProjectFields(ctx, project.ID, map[string]interface{}{"selected_images": selected}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp := &dto.ToggleSelectionResponse{SelectedImages: selected}
	if project.MaxSelection != nil {
		remaining := *project.MaxSelection - len(selected)
		resp.Remaining = &remaining
	}

	return resp, nil
}

// ValidateSelection фиксирует отбор. Операция необратима со стороны клиента.
func (s *PortalService) ValidateSelection(ctx context.Context, code string) error {
	const op = "portal_service.ValidateSelection"

	project, err := s.lookup(ctx, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := rules.ValidateSelection(project.SelectedImages, project.SelectionValidated); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateProjectFields(ctx, project.ID, map[string]interface{}{"selection_validated": true}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, project.ID, "client", fmt.Sprintf("Sélection validée (%d images)", len(project.SelectedImages)))
	s.notifier.Notify(ctx, notifier.EventStepUpdate, map[string]interface{}{
		"project_code":  project.Code,
		"manager_email": project.ManagerEmail,
		"event":         "selection_validated",
		"count":         len(project.SelectedImages),
	})

	return nil
}

// SignContract принимает PNG-подпись (data URL или чистый base64),
// выкладывает ее в объектное хранилище и помечает контракт подписанным.
func (s *PortalService) SignContract(ctx context.Context, code string, req dto.SignContractRequest) (*dto.PortalProjectResponse, error) {
	const op = "portal_service.SignContract"
	log := s.log.With(slog.String("op", op), slog.String("code", code))

	project, err := s.lookup(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if project.ContractSigned {
		return nil, fmt.Errorf("%s: %w", op, ErrContractSigned)
	}

	data, err := decodeSignature(req.SignatureData)
	if err != nil {
		log.Warn("bad signature payload", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	now := time.Now().UTC()
	path := fmt.Sprintf("signatures/%s/%d.png", project.Code, now.Unix())

	url, err := s.files.Upload(ctx, path, "image/png", data)
	if err != nil {
		log.Error("failed to upload signature", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := map[string]interface{}{
		"contract_signed":    true,
		"signature_url":      url,
		"contract_signed_at": now,
	}
	if err := s.repo.UpdateProjectFields(ctx, project.ID, updates); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, project.ID, "client", "Contrat signé")
	s.notifier.Notify(ctx, notifier.EventStepUpdate, map[string]interface{}{
		"project_code":  project.Code,
		"manager_email": project.ManagerEmail,
		"event":         "contract_signed",
	})

	log.Info("contract signed")

	return s.GetByCode(ctx, code)
}

// ConfirmDelivery клиент подтверждает, что скачал материалы.
func (s *PortalService) ConfirmDelivery(ctx context.Context, code, medium string) error {
	const op = "portal_service.ConfirmDelivery"

	project, err := s.lookup(ctx, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	var updates map[string]interface{}
	var label string

	switch medium {
	case "photo":
		updates = map[string]interface{}{
			"photo_delivery_confirmed":    true,
			"photo_delivery_confirmed_at": now,
		}
		label = "Réception photos confirmée"
	case "video":
		updates = map[string]interface{}{
			"video_delivery_confirmed":    true,
			"video_delivery_confirmed_at": now,
		}
		label = "Réception vidéo confirmée"
	default:
		return fmt.Errorf("%s: %w", op, ErrInvalidMedium)
	}

	if err := s.repo.UpdateProjectFields(ctx, project.ID, updates); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, project.ID, "client", label)

	return nil
}

// SubmitQuestionnaire сохраняет ответы логистической анкеты.
func (s *PortalService) SubmitQuestionnaire(ctx context.Context, code string, req dto.QuestionnaireRequest) error {
	const op = "portal_service.SubmitQuestionnaire"

	project, err := s.lookup(ctx, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateProjectFields(ctx, project.ID, map[string]interface{}{
		"questionnaire": models.Metadata(req.Answers),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, project.ID, "client", "Questionnaire rempli")

	return nil
}

// SetMusic пожелания клиента по музыке для монтажа.
func (s *PortalService) SetMusic(ctx context.Context, code string, req dto.MusicRequest) error {
	const op = "portal_service.SetMusic"

	project, err := s.lookup(ctx, code)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateProjectFields(ctx, project.ID, map[string]interface{}{"music": req.Music}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.appendHistory(ctx, project.ID, "client", "Musique mise à jour")

	return nil
}

// lookup находит проект по коду, кэшируя соответствие код -> id.
func (s *PortalService) lookup(ctx context.Context, code string) (*models.Project, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	if cached, ok := s.codes.Get(normalized); ok {
		id := cached.(uuid.UUID)
		project, err := s.repo.GetProjectByID(ctx, id)
		if err == nil {
			return project, nil
		}
		if !errors.Is(err, storage.ErrProjectNotFound) {
			return nil, err
		}
		s.codes.Delete(normalized)
	}

	project, err := s.repo.GetProjectByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	s.codes.SetDefault(normalized, project.ID)
	return project, nil
}

func (s *PortalService) appendHistory(ctx context.Context, id uuid.UUID, actor, action string) {
	entry := models.HistoryEntry{
		Date:   time.Now().UTC(),
		Actor:  actor,
		Action: action,
	}
	if err := s.repo.AppendHistory(ctx, id, entry); err != nil {
		s.log.Warn("failed to append history", slog.String("project_id", id.String()), sl.Err(err))
	}
}

// toPortalResponse собирает клиентский вид: внутренние данные студии
// не попадают наружу, ссылки проходят через правила доступа.
func (s *PortalService) toPortalResponse(p *models.Project, now time.Time) *dto.PortalProjectResponse {
	resp := &dto.PortalProjectResponse{
		Code:                   p.Code,
		ClientNames:            p.ClientNames,
		WeddingDate:            p.WeddingDate,
		HasPhoto:               p.HasPhoto,
		HasVideo:               p.HasVideo,
		PhotoPercent:           p.ProgressPhoto,
		VideoPercent:           p.ProgressVideo,
		EstimatedDeliveryPhoto: p.EstimatedDeliveryPhoto,
		EstimatedDeliveryVideo: p.EstimatedDeliveryVideo,
		Messages:               p.Messages,
		Gallery:                p.Gallery,
		SelectedImages:         p.SelectedImages,
		MaxSelection:           p.MaxSelection,
		SelectionValidated:     p.SelectionValidated,
		Music:                  p.Music,
		Moodboard:              p.Moodboard,
		Questionnaire:          p.Questionnaire,
		ContractSigned:         p.ContractSigned,
		ContractSignedAt:       p.ContractSignedAt,
		PhotoDeliveryConfirmed: p.PhotoDeliveryConfirmed,
		VideoDeliveryConfirmed: p.VideoDeliveryConfirmed,
		CoverURL:               p.CoverURL,
	}

	if info, err := rules.PhotoStatus(p.StatusPhoto); err == nil {
		resp.PhotoStatusLabel = info.Label
	}
	if info, err := rules.VideoStatus(p.StatusVideo); err == nil {
		resp.VideoStatusLabel = info.Label
	}

	photoAccess := rules.PhotoAccess(p.StatusPhoto, p.LinkPhoto, p.TotalPrice, p.DepositAmount, p.EstimatedDeliveryPhoto, now)
	resp.Photo = dto.PortalDeliverable{
		Viewable:       photoAccess.Viewable,
		TeaserOnly:     photoAccess.TeaserOnly,
		PaymentBlocked: photoAccess.PaymentBlocked,
		ArchiveExpired: photoAccess.ArchiveExpired,
	}
	if photoAccess.Viewable {
		resp.Photo.Link = p.LinkPhoto
	}

	videoAccess := rules.VideoAccess(p.StatusVideo, p.LinkVideo, p.TotalPrice, p.DepositAmount, p.EstimatedDeliveryVideo, now)
	resp.Video = dto.PortalDeliverable{
		Viewable:       videoAccess.Viewable,
		TeaserOnly:     videoAccess.TeaserOnly,
		PaymentBlocked: videoAccess.PaymentBlocked,
		ArchiveExpired: videoAccess.ArchiveExpired,
	}
	if videoAccess.Viewable {
		resp.Video.Link = p.LinkVideo
	}

	for _, album := range p.Albums {
		label, err := rules.AlbumStatusLabel(string(album.Status))
		if err != nil {
			label = string(album.Status)
		}
		resp.Albums = append(resp.Albums, dto.PortalAlbum{
			Name:        album.Name,
			Format:      album.Format,
			Price:       album.Price,
			StatusLabel: label,
			Paid:        album.Paid,
			PaymentLink: album.PaymentLink,
		})
	}

	return resp
}

// decodeSignature принимает "data:image/png;base64,..." либо чистый base64.
func decodeSignature(payload string) ([]byte, error) {
	raw := payload
	if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:") {
		raw = raw[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty signature")
	}
	return data, nil
}
