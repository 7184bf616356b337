package dto

import (
	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
)

// UserRegisterInput содержит данные для регистрации сотрудника студии
type UserRegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

func (input UserRegisterInput) ToDomain(passwordHash []byte) *models.User {
	return &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: passwordHash,
	}
}
