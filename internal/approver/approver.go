package approver

import (
	"errors"
	"time"

	approverDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/approver"
)

// Approver types for the two-stage workflow.
const (
	TypeRecommending = "RECOMMENDING"
	TypeFinal        = "FINAL"
)

func IsValidType(t string) bool {
	return t == TypeRecommending || t == TypeFinal
}

// DepartmentApprover assigns a user as a recommending or final approver for a
// department. Multiple users may hold the same type for one department;
// resolution picks the most recently created active assignment.
type DepartmentApprover struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"department_id"`
	UserID       int64     `json:"user_id"`
	ApproverType string    `json:"approver_type"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrAssignmentNotFound  = errors.New("approver assignment not found")
	ErrDuplicateAssignment = errors.New("user already holds this approver type for the department")
	ErrInvalidApproverType = errors.New("invalid approver type")
)

func ToDataModel(a *DepartmentApprover) *approverDatamodel.DepartmentApprover {
	return &approverDatamodel.DepartmentApprover{
		ID:           a.ID,
		DepartmentID: a.DepartmentID,
		UserID:       a.UserID,
		ApproverType: a.ApproverType,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func FromDataModel(a *approverDatamodel.DepartmentApprover) *DepartmentApprover {
	return &DepartmentApprover{
		ID:           a.ID,
		DepartmentID: a.DepartmentID,
		UserID:       a.UserID,
		ApproverType: a.ApproverType,
		IsActive:     a.IsActive,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func FromDataModelSlice(dms []*approverDatamodel.DepartmentApprover) []*DepartmentApprover {
	result := make([]*DepartmentApprover, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}
