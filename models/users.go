package models

import "time"

type User struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(255); not null"`
	Email     string `gorm:"type:varchar(255); unique;not null"`
	Password  string `gorm:"type:varchar(255); not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Profile holds the per-user flags the session gate needs. Its ID is the user's ID.
type Profile struct {
	ID        uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	FullName  string    `gorm:"type:varchar(255)" json:"full_name"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
