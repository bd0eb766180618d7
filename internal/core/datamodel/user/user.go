package user

import "time"

type User struct {
	ID              int64     `gorm:"primaryKey"`
	FirstName       string    `gorm:"column:first_name;not null"`
	LastName        string    `gorm:"column:last_name;not null"`
	Email           string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash    string    `gorm:"column:password_hash;not null"`
	Role            string    `gorm:"column:role;not null;default:STAFF"`
	ContactNo       *string   `gorm:"column:contact_no"`
	MrsDepartmentID *int64    `gorm:"column:mrs_department_id"`
	IsActive        bool      `gorm:"column:is_active;default:true"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
