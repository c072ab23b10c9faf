package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Principal is a registered account: credentials, tier, and usage counters.
type Principal struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Company      string    `json:"company,omitempty"`
	Tier         string    `gorm:"default:'starter'" json:"tier"`
	APIKeyHash   string    `gorm:"uniqueIndex;not null" json:"-"`
	Role         string    `gorm:"default:'user'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`

	// Usage counters. Monotonic within a billing period; reset only by an
	// explicit period rollover, never by a rejected request.
	RequestsUsed int64      `gorm:"default:0" json:"requests_used"`
	StorageUsed  int64      `gorm:"default:0" json:"storage_used"`
	LastResetAt  *time.Time `json:"last_reset_at,omitempty"`
}

func (p *Principal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (Principal) TableName() string {
	return "principals"
}

// IsAdmin reports whether the principal may reach admin-only routes.
func (p *Principal) IsAdmin() bool {
	return p.Role == "admin"
}
