package models

import (
	"time"

	"github.com/agency/backoffice/internal/domain/identity"
)

// UserModel is the persistence model for identity.User
type UserModel struct {
	TenantAggregateModel
	Username       string `gorm:"type:varchar(50);not null"`
	Email          string `gorm:"type:varchar(200)"`
	DisplayName    string `gorm:"type:varchar(200)"`
	PasswordHash   string `gorm:"type:varchar(255);not null"`
	Role           string `gorm:"type:varchar(20);not null"`
	Active         bool   `gorm:"not null;default:true"`
	LastLoginAt    *time.Time
	FailedAttempts int `gorm:"not null;default:0"`
	LockedUntil    *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// UserModelFromDomain maps a user to its row
func UserModelFromDomain(u *identity.User) *UserModel {
	return &UserModel{
		TenantAggregateModel: tenantAggregateModelFromDomain(u.TenantAggregateRoot),
		Username:             u.Username,
		Email:                u.Email,
		DisplayName:          u.DisplayName,
		PasswordHash:         u.PasswordHash,
		Role:                 string(u.Role),
		Active:               u.Active,
		LastLoginAt:          u.LastLoginAt,
		FailedAttempts:       u.FailedAttempts,
		LockedUntil:          u.LockedUntil,
	}
}

// ToDomain converts the row to a user
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.TenantAggregateModel.toDomain(),
		Username:            m.Username,
		Email:               m.Email,
		DisplayName:         m.DisplayName,
		PasswordHash:        m.PasswordHash,
		Role:                identity.Role(m.Role),
		Active:              m.Active,
		LastLoginAt:         m.LastLoginAt,
		FailedAttempts:      m.FailedAttempts,
		LockedUntil:         m.LockedUntil,
	}
}
