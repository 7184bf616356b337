package rules

import (
	"errors"
	"strings"
)

// Правила клиентского отбора фотографий и альбомов.

var (
	ErrSelectionValidated = errors.New("selection already validated")
	ErrSelectionFull      = errors.New("selection limit reached")
	ErrSelectionEmpty     = errors.New("selection is empty")
	ErrAlbumNameRequired  = errors.New("album name is required")
)

// ToggleSelection переключает один файл в отборе. Возвращает новый срез;
// исходный не модифицируется. Отказ: отбор уже зафиксирован, либо лимит
// достигнут при добавлении. Повторный клик по выбранному - снятие.
func ToggleSelection(selected []string, filename string, maxSelection *int, validated bool) ([]string, error) {
	if validated {
		return selected, ErrSelectionValidated
	}

	for i, name := range selected {
		if name == filename {
			out := make([]string, 0, len(selected)-1)
			out = append(out, selected[:i]...)
			out = append(out, selected[i+1:]...)
			return out, nil
		}
	}

	if maxSelection != nil && len(selected) >= *maxSelection {
		return selected, ErrSelectionFull
	}

	out := make([]string, len(selected), len(selected)+1)
	copy(out, selected)
	return append(out, filename), nil
}

// ValidateSelection фиксация отбора: нужен хотя бы один файл, обратной
// операции нет.
func ValidateSelection(selected []string, alreadyValidated bool) error {
	if alreadyValidated {
		return ErrSelectionValidated
	}
	if len(selected) == 0 {
		return ErrSelectionEmpty
	}
	return nil
}

// ValidateNewAlbum новый альбом обязан иметь непустое имя.
func ValidateNewAlbum(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrAlbumNameRequired
	}
	return nil
}
