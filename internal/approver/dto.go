package approver

import "errors"

type AssignApproverDTO struct {
	DepartmentID int64  `json:"department_id" validate:"required"`
	UserID       int64  `json:"user_id" validate:"required"`
	ApproverType string `json:"approver_type" validate:"required,oneof=RECOMMENDING FINAL"`
}

func (dto AssignApproverDTO) Validate() error {
	if dto.DepartmentID <= 0 {
		return errors.New("department is required")
	}
	if dto.UserID <= 0 {
		return errors.New("user is required")
	}
	if !IsValidType(dto.ApproverType) {
		return ErrInvalidApproverType
	}
	return nil
}

type SetActiveDTO struct {
	IsActive bool `json:"is_active"`
}
