package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ошибки Validate: транспорт отдает их клиенту как 400, а не 500.
var (
	ErrClientNamesRequired = errors.New("client names are required")
	ErrClientEmailRequired = errors.New("client email is required")
	ErrWeddingDateRequired = errors.New("wedding date is required")
	ErrMediumRequired      = errors.New("project must include at least one medium")
)

// Checklist хранит отметки выполнения задач продакшена (task id -> done)
type Checklist map[string]bool

// Message единое каноничное сообщение чата (клиентского и внутреннего)
type Message struct {
	Author string    `json:"author"` // "admin" или "client"
	Text   string    `json:"text"`
	Date   time.Time `json:"date"`
}

// HistoryEntry запись журнала действий, только добавление
type HistoryEntry struct {
	Date   time.Time `json:"date"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
}

// GalleryImage изображение галереи для клиентского отбора
type GalleryImage struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

type AlbumStatus string

const (
	AlbumStatusPending    AlbumStatus = "pending"
	AlbumStatusDesign     AlbumStatus = "design"
	AlbumStatusValidation AlbumStatus = "validation"
	AlbumStatusPrinting   AlbumStatus = "printing"
	AlbumStatusSent       AlbumStatus = "sent"
)

// Album вложенная сущность проекта
type Album struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Format      string      `json:"format,omitempty"`
	Price       float64     `json:"price"`
	Status      AlbumStatus `json:"status"`
	Paid        bool        `json:"paid"`
	PaymentLink string      `json:"payment_link,omitempty"`
}

// Project один свадебный проект студии
type Project struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Code string    `db:"code" json:"code"` // формат "<firstname>-<3digits>", неизменяемый

	// Клиент
	ClientNames  string `db:"client_names" json:"client_names"`
	Email        string `db:"email" json:"email"`
	SecondEmail  string `db:"second_email" json:"second_email,omitempty"`
	Phone        string `db:"phone" json:"phone,omitempty"`
	SecondPhone  string `db:"second_phone" json:"second_phone,omitempty"`
	Address      string `db:"address" json:"address,omitempty"`
	City         string `db:"city" json:"city,omitempty"`
	PostalCode   string `db:"postal_code" json:"postal_code,omitempty"`

	// Планирование
	WeddingDate time.Time `db:"wedding_date" json:"wedding_date"`
	VenueName   string    `db:"venue_name" json:"venue_name,omitempty"`
	VenueZip    string    `db:"venue_zip" json:"venue_zip,omitempty"`

	// Продакшен
	HasPhoto       bool      `db:"has_photo" json:"has_photo"`
	HasVideo       bool      `db:"has_video" json:"has_video"`
	StatusPhoto    string    `db:"status_photo" json:"status_photo"`
	StatusVideo    string    `db:"status_video" json:"status_video"`
	ProgressPhoto  int       `db:"progress_photo" json:"progress_photo"`
	ProgressVideo  int       `db:"progress_video" json:"progress_video"`
	CheckListPhoto Checklist `db:"checklist_photo" json:"checklist_photo,omitempty"`
	CheckListVideo Checklist `db:"checklist_video" json:"checklist_video,omitempty"`

	EstimatedDeliveryPhoto *time.Time `db:"estimated_delivery_photo" json:"estimated_delivery_photo,omitempty"`
	EstimatedDeliveryVideo *time.Time `db:"estimated_delivery_video" json:"estimated_delivery_video,omitempty"`

	// Команда: имя свободным текстом, email подставляется из справочника,
	// но остаётся независимо редактируемым
	ManagerName       string `db:"manager_name" json:"manager_name,omitempty"`
	ManagerEmail      string `db:"manager_email" json:"manager_email,omitempty"`
	PhotographerName  string `db:"photographer_name" json:"photographer_name,omitempty"`
	PhotographerEmail string `db:"photographer_email" json:"photographer_email,omitempty"`
	VideographerName  string `db:"videographer_name" json:"videographer_name,omitempty"`
	VideographerEmail string `db:"videographer_email" json:"videographer_email,omitempty"`

	// Доставка
	LinkPhoto string `db:"link_photo" json:"link_photo,omitempty"`
	LinkVideo string `db:"link_video" json:"link_video,omitempty"`

	// Опции
	IsPriority              bool       `db:"is_priority" json:"is_priority"`
	FastTrackActivationDate *time.Time `db:"fast_track_activation_date" json:"fast_track_activation_date,omitempty"`
	IsArchived              bool       `db:"is_archived" json:"is_archived"`

	// Финансы: nil означает "контракта/цены ещё нет", ноль - явная цена
	TotalPrice    *float64 `db:"total_price" json:"total_price,omitempty"`
	DepositAmount *float64 `db:"deposit_amount" json:"deposit_amount,omitempty"`

	// Контент и коммуникация
	Messages           []Message      `db:"messages" json:"messages"`
	InternalMessages   []Message      `db:"internal_messages" json:"internal_messages,omitempty"`
	Albums             []Album        `db:"albums" json:"albums"`
	Music              string         `db:"music" json:"music,omitempty"`
	Moodboard          string         `db:"moodboard" json:"moodboard,omitempty"`
	Gallery            []GalleryImage `db:"gallery" json:"gallery,omitempty"`
	SelectedImages     []string       `db:"selected_images" json:"selected_images"`
	MaxSelection       *int           `db:"max_selection" json:"max_selection,omitempty"`
	SelectionValidated bool           `db:"selection_validated" json:"selection_validated"`

	// Анкета логистики
	Questionnaire Metadata `db:"questionnaire" json:"questionnaire,omitempty"`

	// Подтверждение скачивания клиентом
	PhotoDeliveryConfirmed   bool       `db:"photo_delivery_confirmed" json:"photo_delivery_confirmed"`
	PhotoDeliveryConfirmedAt *time.Time `db:"photo_delivery_confirmed_at" json:"photo_delivery_confirmed_at,omitempty"`
	VideoDeliveryConfirmed   bool       `db:"video_delivery_confirmed" json:"video_delivery_confirmed"`
	VideoDeliveryConfirmedAt *time.Time `db:"video_delivery_confirmed_at" json:"video_delivery_confirmed_at,omitempty"`

	// Контракт
	ContractSigned   bool       `db:"contract_signed" json:"contract_signed"`
	SignatureURL     string     `db:"signature_url" json:"signature_url,omitempty"`
	ContractSignedAt *time.Time `db:"contract_signed_at" json:"contract_signed_at,omitempty"`

	CoverURL string `db:"cover_url" json:"cover_url,omitempty"`

	History     []HistoryEntry `db:"history" json:"history"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	LastUpdated time.Time      `db:"last_updated" json:"last_updated"`
}

type Metadata map[string]interface{}

// Value реализует интерфейс driver.Valuer для сериализации в JSONB
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("metadata: expected []byte, got %T", value)
	}
	return json.Unmarshal(b, m)
}

func (c Checklist) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *Checklist) Scan(value interface{}) error {
	return scanJSON(value, c)
}

func scanJSON(value interface{}, dst interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", value, dst)
	}
}

// JSONB-обёртки для срезов, squirrel передаёт их как аргументы запроса

type MessageList []Message

func (l MessageList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Message{})
	}
	return json.Marshal([]Message(l))
}

func (l *MessageList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type AlbumList []Album

func (l AlbumList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Album{})
	}
	return json.Marshal([]Album(l))
}

func (l *AlbumList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type GalleryList []GalleryImage

func (l GalleryList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]GalleryImage{})
	}
	return json.Marshal([]GalleryImage(l))
}

func (l *GalleryList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type HistoryList []HistoryEntry

func (l HistoryList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]HistoryEntry{})
	}
	return json.Marshal([]HistoryEntry(l))
}

func (l *HistoryList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// NewAlbum создает альбом с дефолтами: статус pending, не оплачен
func NewAlbum(name, format string, price float64) Album {
	return Album{
		ID:     uuid.New(),
		Name:   name,
		Format: format,
		Price:  price,
		Status: AlbumStatusPending,
		Paid:   false,
	}
}

// Validate проверяет обязательные поля проекта перед сохранением
func (p *Project) Validate() error {
	if p.ClientNames == "" {
		return ErrClientNamesRequired
	}
	if p.Email == "" {
		return ErrClientEmailRequired
	}
	if p.WeddingDate.IsZero() {
		return ErrWeddingDateRequired
	}
	if !p.HasPhoto && !p.HasVideo {
		return ErrMediumRequired
	}
	return nil
}
