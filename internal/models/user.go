package models

import "time"

// Role gates which operations an account may invoke
type Role string

const (
	RoleUser  Role = "USER"
	RoleDonor Role = "DONOR"
)

// User is a registered account
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex;column:email" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null;column:password_hash" json:"-"`
	Role         Role      `gorm:"type:varchar(8);not null;column:role" json:"role"`
	CreatedAt    time.Time `gorm:"not null;column:created_at" json:"created_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
