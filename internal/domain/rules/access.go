package rules

import "time"

// Правила доступа клиента к ссылкам на материалы.

const archiveRetention = 180 * 24 * time.Hour

// DeliverableAccess результат проверки доступа по одному медиа.
type DeliverableAccess struct {
	Viewable       bool `json:"viewable"`
	TeaserOnly     bool `json:"teaser_only"`
	PaymentBlocked bool `json:"payment_blocked"`
	ArchiveExpired bool `json:"archive_expired"`
}

// PaymentBlocked аккаунт заблокирован по оплате: цена задана, больше нуля
// и остаток к оплате положительный. nil цена означает "контракта еще нет".
func PaymentBlocked(totalPrice, depositAmount *float64) bool {
	if totalPrice == nil || *totalPrice <= 0 {
		return false
	}
	var deposit float64
	if depositAmount != nil {
		deposit = *depositAmount
	}
	return *totalPrice-deposit > 0
}

// LinkSet структурный признак "ссылка выложена": длина больше 5.
func LinkSet(link string) bool {
	return len(link) > 5
}

// ArchiveExpired медиа истекло через 6 месяцев после расчетной даты
// доставки. Без даты доставки срок не отсчитывается.
func ArchiveExpired(estimatedDelivery *time.Time, now time.Time) bool {
	if estimatedDelivery == nil {
		return false
	}
	return now.After(estimatedDelivery.Add(archiveRetention))
}

// PhotoAccess доступ к фотогалерее.
func PhotoAccess(status, link string, totalPrice, deposit *float64, estimatedDelivery *time.Time, now time.Time) DeliverableAccess {
	return mediumAccess(status, link, totalPrice, deposit, estimatedDelivery, now, false)
}

// VideoAccess доступ к видео: статус partial открывает только тизер.
func VideoAccess(status, link string, totalPrice, deposit *float64, estimatedDelivery *time.Time, now time.Time) DeliverableAccess {
	return mediumAccess(status, link, totalPrice, deposit, estimatedDelivery, now, true)
}

func mediumAccess(status, link string, totalPrice, deposit *float64, estimatedDelivery *time.Time, now time.Time, allowPartial bool) DeliverableAccess {
	access := DeliverableAccess{
		PaymentBlocked: PaymentBlocked(totalPrice, deposit),
	}

	delivered := status == StatusDelivered
	partial := allowPartial && status == StatusPartial
	if !delivered && !partial {
		return access
	}
	if !LinkSet(link) {
		return access
	}

	// Истечение архива заменяет прямую ссылку платной разблокировкой
	// независимо от блокировки по оплате.
	if delivered && ArchiveExpired(estimatedDelivery, now) {
		access.ArchiveExpired = true
		return access
	}

	if access.PaymentBlocked {
		return access
	}

	access.Viewable = true
	access.TeaserOnly = partial
	return access
}
