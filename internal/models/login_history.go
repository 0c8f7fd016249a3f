package models

import "time"

// LoginHistory is an append-only audit record of authentication attempts.
// Rows are never updated or deleted by the application.
type LoginHistory struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	LoginTime    time.Time `gorm:"not null" json:"login_time"`
	IsSuccessful bool      `gorm:"not null;default:true" json:"is_successful"`
	IPAddress    *string   `json:"ip_address,omitempty"`
	DeviceInfo   *string   `json:"device_info,omitempty"`
}

// TableName specifies the table name for GORM.
func (LoginHistory) TableName() string {
	return "login_history"
}
