package dto

import (
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	ClientNames string    `json:"client_names" validate:"required,min=2,max=200"`
	Email       string    `json:"email" validate:"required,email"`
	SecondEmail string    `json:"second_email,omitempty" validate:"omitempty,email"`
	Phone       string    `json:"phone,omitempty"`
	SecondPhone string    `json:"second_phone,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	PostalCode  string    `json:"postal_code,omitempty"`
	WeddingDate time.Time `json:"wedding_date" validate:"required"`
	VenueName   string    `json:"venue_name,omitempty"`
	VenueZip    string    `json:"venue_zip,omitempty"`

	HasPhoto bool `json:"has_photo"`
	HasVideo bool `json:"has_video"`

	ManagerName      string `json:"manager_name,omitempty"`
	PhotographerName string `json:"photographer_name,omitempty"`
	VideographerName string `json:"videographer_name,omitempty"`

	TotalPrice    *float64 `json:"total_price,omitempty" validate:"omitempty,gte=0"`
	DepositAmount *float64 `json:"deposit_amount,omitempty" validate:"omitempty,gte=0"`
	MaxSelection  *int     `json:"max_selection,omitempty" validate:"omitempty,gt=0"`
}

// UpdateProjectRequest: nil значит "поле не трогать", указатель на ноль -
// явное значение. Код проекта отсутствует намеренно, он неизменяемый.
type UpdateProjectRequest struct {
	ClientNames *string    `json:"client_names,omitempty" validate:"omitempty,min=2,max=200"`
	Email       *string    `json:"email,omitempty" validate:"omitempty,email"`
	SecondEmail *string    `json:"second_email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	SecondPhone *string    `json:"second_phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
	City        *string    `json:"city,omitempty"`
	PostalCode  *string    `json:"postal_code,omitempty"`
	WeddingDate *time.Time `json:"wedding_date,omitempty"`
	VenueName   *string    `json:"venue_name,omitempty"`
	VenueZip    *string    `json:"venue_zip,omitempty"`

	HasPhoto *bool `json:"has_photo,omitempty"`
	HasVideo *bool `json:"has_video,omitempty"`

	EstimatedDeliveryPhoto *time.Time `json:"estimated_delivery_photo,omitempty"`
	EstimatedDeliveryVideo *time.Time `json:"estimated_delivery_video,omitempty"`

	// Переопределение email фиксированных ролей доступно только супер-админу
	ManagerName       *string `json:"manager_name,omitempty"`
	ManagerEmail      *string `json:"manager_email,omitempty" validate:"omitempty,email"`
	PhotographerName  *string `json:"photographer_name,omitempty"`
	PhotographerEmail *string `json:"photographer_email,omitempty" validate:"omitempty,email"`
	VideographerName  *string `json:"videographer_name,omitempty"`
	VideographerEmail *string `json:"videographer_email,omitempty" validate:"omitempty,email"`

	LinkPhoto *string `json:"link_photo,omitempty"`
	LinkVideo *string `json:"link_video,omitempty"`

	TotalPrice    *float64 `json:"total_price,omitempty" validate:"omitempty,gte=0"`
	DepositAmount *float64 `json:"deposit_amount,omitempty" validate:"omitempty,gte=0"`
	MaxSelection  *int     `json:"max_selection,omitempty" validate:"omitempty,gt=0"`

	Music     *string `json:"music,omitempty"`
	Moodboard *string `json:"moodboard,omitempty"`
	CoverURL  *string `json:"cover_url,omitempty"`
}

// UpdateStatusRequest прямой перевод статуса конвейера (без чек-листа)
type UpdateStatusRequest struct {
	Medium string `json:"medium" validate:"required,oneof=photo video"`
	Status string `json:"status" validate:"required"`
}

// UpdateChecklistRequest отметки чек-листа, статус и процент выводятся из них
type UpdateChecklistRequest struct {
	Medium string          `json:"medium" validate:"required,oneof=photo video"`
	Done   map[string]bool `json:"done" validate:"required"`
}

type SetPriorityRequest struct {
	IsPriority bool `json:"is_priority"`
}

type SetArchivedRequest struct {
	IsArchived bool `json:"is_archived"`
}

type CreateAlbumRequest struct {
	Name   string  `json:"name" validate:"required,min=1,max=120"`
	Format string  `json:"format,omitempty"`
	Price  float64 `json:"price" validate:"gte=0"`
}

type UpdateAlbumRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Format      *string  `json:"format,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=pending design validation printing sent"`
	Paid        *bool    `json:"paid,omitempty"`
	PaymentLink *string  `json:"payment_link,omitempty" validate:"omitempty,url"`
}

type SendMessageRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=5000"`
	Internal bool   `json:"internal,omitempty"`
}

type GalleryImagesRequest struct {
	Images []GalleryImageInput `json:"images" validate:"required,min=1,dive"`
}

type GalleryImageInput struct {
	Filename string `json:"filename" validate:"required"`
	URL      string `json:"url" validate:"required,url"`
}

type ProjectResponse struct {
	Project models.Project `json:"project"`

	// Производные поля, не хранятся
	Urgency      string `json:"urgency"`
	DaysUntil    int    `json:"days_until_wedding"`
	PhotoPercent int    `json:"photo_percent"`
	VideoPercent int    `json:"video_percent"`
}

type ProjectListResponse struct {
	Projects   []ProjectResponse `json:"projects"`
	TotalCount int               `json:"total_count"`
}

type CreateProjectResponse struct {
	ID   uuid.UUID `json:"id" swaggertype:"string" format:"uuid"`
	Code string    `json:"code"`
}

type StatsResponse struct {
	TotalProjects    int            `json:"total_projects"`
	ActiveProjects   int            `json:"active_projects"`
	ArchivedProjects int            `json:"archived_projects"`
	LateProjects     int            `json:"late_projects"`
	UrgentProjects   int            `json:"urgent_projects"`
	DeliveredPhoto   int            `json:"delivered_photo"`
	DeliveredVideo   int            `json:"delivered_video"`
	ByPhotoStatus    map[string]int `json:"by_photo_status"`
	ByVideoStatus    map[string]int `json:"by_video_status"`
	RevenueTotal     float64        `json:"revenue_total"`
	RevenueDeposits  float64        `json:"revenue_deposits"`
	RevenueOwed      float64        `json:"revenue_owed"`
}
