package approver

import "time"

type DepartmentApprover struct {
	ID           int64     `gorm:"primaryKey"`
	DepartmentID int64     `gorm:"column:department_id;not null;uniqueIndex:idx_dept_user_type"`
	UserID       int64     `gorm:"column:user_id;not null;uniqueIndex:idx_dept_user_type"`
	ApproverType string    `gorm:"column:approver_type;not null;uniqueIndex:idx_dept_user_type"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (DepartmentApprover) TableName() string {
	return "department_approvers"
}
