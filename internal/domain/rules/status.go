package rules

import (
	"errors"
	"fmt"
)

// Статусные таблицы: фиксированные упорядоченные соответствия
// код -> {подпись, процент по умолчанию} для фото- и видео-конвейеров.

var ErrUnknownStatus = errors.New("unknown status code")

type StatusInfo struct {
	Label   string
	Percent int
}

const (
	StatusNone      = "none"
	StatusWaiting   = "waiting"
	StatusDelivered = "delivered"

	// photo
	StatusCulling = "culling"
	StatusEditing = "editing"
	StatusExport  = "export"

	// video
	StatusRushes    = "rushes"
	StatusCutting   = "cutting"
	StatusGrading   = "grading"
	StatusRendering = "rendering"
	StatusPartial   = "partial" // тизер доступен до полной доставки
)

var photoStatusOrder = []string{
	StatusNone, StatusWaiting, StatusCulling, StatusEditing, StatusExport, StatusDelivered,
}

var videoStatusOrder = []string{
	StatusNone, StatusWaiting, StatusRushes, StatusCutting, StatusGrading,
	StatusRendering, StatusPartial, StatusDelivered,
}

var photoStatuses = map[string]StatusInfo{
	StatusNone:      {Label: "Non inclus", Percent: 0},
	StatusWaiting:   {Label: "En attente", Percent: 5},
	StatusCulling:   {Label: "Tri des photos", Percent: 25},
	StatusEditing:   {Label: "Retouche", Percent: 50},
	StatusExport:    {Label: "Export", Percent: 80},
	StatusDelivered: {Label: "Livré", Percent: 100},
}

var videoStatuses = map[string]StatusInfo{
	StatusNone:      {Label: "Non inclus", Percent: 0},
	StatusWaiting:   {Label: "En attente", Percent: 5},
	StatusRushes:    {Label: "Dérushage", Percent: 20},
	StatusCutting:   {Label: "Montage", Percent: 45},
	StatusGrading:   {Label: "Étalonnage", Percent: 70},
	StatusRendering: {Label: "Rendu final", Percent: 90},
	StatusPartial:   {Label: "Teaser disponible", Percent: 95},
	StatusDelivered: {Label: "Livré", Percent: 100},
}

var albumStatusLabels = map[string]string{
	"pending":    "En attente",
	"design":     "Conception",
	"validation": "Validation client",
	"printing":   "Impression",
	"sent":       "Expédié",
}

// PhotoStatus возвращает подпись и процент для статуса фото-конвейера.
// Неизвестный код - ошибка целостности данных, тихо рендерить нельзя.
func PhotoStatus(code string) (StatusInfo, error) {
	info, ok := photoStatuses[code]
	if !ok {
		return StatusInfo{}, fmt.Errorf("photo status %q: %w", code, ErrUnknownStatus)
	}
	return info, nil
}

func VideoStatus(code string) (StatusInfo, error) {
	info, ok := videoStatuses[code]
	if !ok {
		return StatusInfo{}, fmt.Errorf("video status %q: %w", code, ErrUnknownStatus)
	}
	return info, nil
}

func AlbumStatusLabel(code string) (string, error) {
	label, ok := albumStatusLabels[code]
	if !ok {
		return "", fmt.Errorf("album status %q: %w", code, ErrUnknownStatus)
	}
	return label, nil
}

func IsValidPhotoStatus(code string) bool {
	_, ok := photoStatuses[code]
	return ok
}

func IsValidVideoStatus(code string) bool {
	_, ok := videoStatuses[code]
	return ok
}

func PhotoStatusOrder() []string {
	return photoStatusOrder
}

func VideoStatusOrder() []string {
	return videoStatusOrder
}
