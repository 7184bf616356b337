package rules

import "math"

// Взвешенный чеклист: фиксированные списки задач по каждому медиа.
// Веса положительные, в сумме не обязаны давать 100.

type ChecklistTask struct {
	ID     string
	Label  string
	Weight float64
}

var photoChecklist = []ChecklistTask{
	{ID: "backup", Label: "Sauvegarde des cartes", Weight: 5},
	{ID: "culling", Label: "Tri des photos", Weight: 20},
	{ID: "editing", Label: "Retouche colorimétrique", Weight: 40},
	{ID: "retouch", Label: "Retouches fines", Weight: 15},
	{ID: "export", Label: "Export haute définition", Weight: 10},
	{ID: "gallery", Label: "Mise en ligne de la galerie", Weight: 10},
}

var videoChecklist = []ChecklistTask{
	{ID: "backup", Label: "Sauvegarde des rushes", Weight: 5},
	{ID: "derush", Label: "Dérushage", Weight: 20},
	{ID: "cutting", Label: "Montage", Weight: 35},
	{ID: "grading", Label: "Étalonnage", Weight: 15},
	{ID: "sound", Label: "Mixage son", Weight: 10},
	{ID: "rendering", Label: "Rendu final", Weight: 10},
	{ID: "upload", Label: "Mise en ligne", Weight: 5},
}

func PhotoChecklist() []ChecklistTask {
	return photoChecklist
}

func VideoChecklist() []ChecklistTask {
	return videoChecklist
}

// PercentFromChecklist выводит процент готовности из отмеченных задач:
// round(min(100, completedWeight/totalWeight*100)).
func PercentFromChecklist(tasks []ChecklistTask, done map[string]bool) int {
	var completed, total float64
	for _, t := range tasks {
		total += t.Weight
		if done[t.ID] {
			completed += t.Weight
		}
	}
	if total == 0 {
		return 0
	}
	percent := completed / total * 100
	if percent > 100 {
		percent = 100
	}
	return int(math.Round(percent))
}

// PhotoStatusFromPercent выводит статус из процента (только путь чеклиста).
// Прямой выбор статуса из выпадающего списка сюда не попадает и чеклист
// обратно не пересчитывает.
func PhotoStatusFromPercent(percent int) string {
	return statusFromPercent(percent, StatusEditing)
}

func VideoStatusFromPercent(percent int) string {
	return statusFromPercent(percent, StatusCutting)
}

func statusFromPercent(percent int, inProgress string) string {
	switch {
	case percent <= 0:
		return StatusWaiting
	case percent >= 100:
		return StatusDelivered
	default:
		return inProgress
	}
}
