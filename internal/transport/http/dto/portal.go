package dto

import (
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
)

// PortalProjectResponse клиентский вид проекта: контактные данные команды,
// внутренний чат и финансовая детализация не отдаются.
type PortalProjectResponse struct {
	Code        string    `json:"code"`
	ClientNames string    `json:"client_names"`
	WeddingDate time.Time `json:"wedding_date"`

	HasPhoto         bool   `json:"has_photo"`
	HasVideo         bool   `json:"has_video"`
	PhotoStatusLabel string `json:"photo_status_label,omitempty"`
	VideoStatusLabel string `json:"video_status_label,omitempty"`
	PhotoPercent     int    `json:"photo_percent"`
	VideoPercent     int    `json:"video_percent"`

	EstimatedDeliveryPhoto *time.Time `json:"estimated_delivery_photo,omitempty"`
	EstimatedDeliveryVideo *time.Time `json:"estimated_delivery_video,omitempty"`

	Photo PortalDeliverable `json:"photo"`
	Video PortalDeliverable `json:"video"`

	Messages []models.Message `json:"messages"`
	Albums   []PortalAlbum    `json:"albums"`

	Gallery            []models.GalleryImage `json:"gallery,omitempty"`
	SelectedImages     []string              `json:"selected_images"`
	MaxSelection       *int                  `json:"max_selection,omitempty"`
	SelectionValidated bool                  `json:"selection_validated"`

	Music         string          `json:"music,omitempty"`
	Moodboard     string          `json:"moodboard,omitempty"`
	Questionnaire models.Metadata `json:"questionnaire,omitempty"`

	ContractSigned   bool       `json:"contract_signed"`
	ContractSignedAt *time.Time `json:"contract_signed_at,omitempty"`

	PhotoDeliveryConfirmed bool `json:"photo_delivery_confirmed"`
	VideoDeliveryConfirmed bool `json:"video_delivery_confirmed"`

	CoverURL string `json:"cover_url,omitempty"`
}

// PortalDeliverable результат применения правил доступа к ссылке
type PortalDeliverable struct {
	Link           string `json:"link,omitempty"`
	Viewable       bool   `json:"viewable"`
	TeaserOnly     bool   `json:"teaser_only"`
	PaymentBlocked bool   `json:"payment_blocked"`
	ArchiveExpired bool   `json:"archive_expired"`
}

type PortalAlbum struct {
	Name        string  `json:"name"`
	Format      string  `json:"format,omitempty"`
	Price       float64 `json:"price"`
	StatusLabel string  `json:"status_label"`
	Paid        bool    `json:"paid"`
	PaymentLink string  `json:"payment_link,omitempty"`
}

type PortalMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=5000"`
}

type ToggleSelectionRequest struct {
	Filename string `json:"filename" validate:"required"`
}

type ToggleSelectionResponse struct {
	SelectedImages []string `json:"selected_images"`
	Remaining      *int     `json:"remaining,omitempty"`
}

type SignContractRequest struct {
	// data URL или base64 PNG подписи
	SignatureData string `json:"signature_data" validate:"required"`
}

type ConfirmDeliveryRequest struct {
	Medium string `json:"medium" validate:"required,oneof=photo video"`
}

type QuestionnaireRequest struct {
	Answers map[string]interface{} `json:"answers" validate:"required"`
}

type MusicRequest struct {
	Music string `json:"music" validate:"required,max=5000"`
}
