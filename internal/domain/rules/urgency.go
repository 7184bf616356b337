package rules

import "time"

// Классификация срочности проекта относительно даты свадьбы.

type Urgency string

const (
	UrgencyCompleted Urgency = "completed"
	UrgencyActive    Urgency = "active"
	UrgencyLate      Urgency = "late"
	UrgencyUrgent    Urgency = "urgent"
)

const (
	lateAfter   = 15 * 24 * time.Hour
	urgentAfter = 60 * 24 * time.Hour
)

// IsFinished проект завершен, когда оба медиа доставлены или не куплены.
func IsFinished(statusPhoto, statusVideo string) bool {
	return mediumDone(statusPhoto) && mediumDone(statusVideo)
}

func mediumDone(status string) bool {
	return status == StatusDelivered || status == StatusNone
}

// Classify сравнивает "сейчас" с датой свадьбы, взятой в местную полночь.
// Границы строгие: ровно 15 дней - еще active, 15 дней и 1мс - уже late.
// Флаг приоритета на классификацию не влияет.
func Classify(weddingDate time.Time, now time.Time, finished bool) Urgency {
	if finished {
		return UrgencyCompleted
	}

	midnight := time.Date(
		weddingDate.Year(), weddingDate.Month(), weddingDate.Day(),
		0, 0, 0, 0, weddingDate.Location(),
	)
	elapsed := now.Sub(midnight)

	switch {
	case elapsed > urgentAfter:
		return UrgencyUrgent
	case elapsed > lateAfter:
		return UrgencyLate
	default:
		return UrgencyActive
	}
}

// FastTrackDeadline конец 14-дневного отсчета от активации fast track.
func FastTrackDeadline(activatedAt time.Time) time.Time {
	return activatedAt.Add(14 * 24 * time.Hour)
}
