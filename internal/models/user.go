package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleBuyer      Role = "BUYER"
	RoleSeller     Role = "SELLER"
	RoleSuperadmin Role = "SUPERADMIN"
)

// User is the marketplace account. The relay only needs enough of it to
// attribute messages and resolve counterparts; registration, verification
// and the rest of account management live in the main marketplace service.
type User struct {
	ID        string         `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `json:"name"`
	Email   string `gorm:"uniqueIndex" json:"email"`
	Company string `json:"company"`
	Image   string `json:"image"`

	Role Role `gorm:"type:text;default:'BUYER'" json:"role"`
}
