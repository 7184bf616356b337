package models

import (
	"time"

	"github.com/google/uuid"
)

// User учетная запись сотрудника студии
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Password  []byte    `db:"password" json:"-"`
	CreatedAt time.Time `db:"created_at,omitempty" json:"created_at,omitempty"`
	LastLogin time.Time `db:"last_login,omitempty" json:"last_login,omitempty"`
}

// Actor текущий действующий субъект запроса: сотрудник или анонимный
// клиент портала. Роли вычисляются правилами, здесь только идентичность.
type Actor struct {
	Email       string `json:"email"`
	IsAnonymous bool   `json:"is_anonymous"`
}
