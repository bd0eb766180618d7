package orgunit

import (
	"errors"
	"time"

	orgunitDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/orgunit"
)

type BusinessUnit struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Department struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	BusinessUnitID int64     `json:"business_unit_id"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

var (
	ErrBusinessUnitNotFound = errors.New("business unit not found")
	ErrDepartmentNotFound   = errors.New("department not found")
	ErrDuplicateCode        = errors.New("code already in use")

	// referential delete guards, reported per dependency type
	ErrUnitHasDepartments     = errors.New("business unit has departments and cannot be deleted")
	ErrUnitHasRequests        = errors.New("business unit has material requests and cannot be deleted")
	ErrDepartmentHasUsers     = errors.New("department has users and cannot be deleted")
	ErrDepartmentHasRequests  = errors.New("department has material requests and cannot be deleted")
	ErrDepartmentHasApprovers = errors.New("department has approver assignments and cannot be deleted")
)

func NewBusinessUnit(code, name string, description *string) *BusinessUnit {
	now := time.Now()
	return &BusinessUnit{
		Code:        code,
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func NewDepartment(code, name string, description *string, businessUnitID int64) *Department {
	now := time.Now()
	return &Department{
		Code:           code,
		Name:           name,
		Description:    description,
		BusinessUnitID: businessUnitID,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func UnitToDataModel(b *BusinessUnit) *orgunitDatamodel.BusinessUnit {
	return &orgunitDatamodel.BusinessUnit{
		ID:          b.ID,
		Code:        b.Code,
		Name:        b.Name,
		Description: b.Description,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func UnitFromDataModel(b *orgunitDatamodel.BusinessUnit) *BusinessUnit {
	return &BusinessUnit{
		ID:          b.ID,
		Code:        b.Code,
		Name:        b.Name,
		Description: b.Description,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func DepartmentToDataModel(d *Department) *orgunitDatamodel.Department {
	return &orgunitDatamodel.Department{
		ID:             d.ID,
		Code:           d.Code,
		Name:           d.Name,
		Description:    d.Description,
		BusinessUnitID: d.BusinessUnitID,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func DepartmentFromDataModel(d *orgunitDatamodel.Department) *Department {
	return &Department{
		ID:             d.ID,
		Code:           d.Code,
		Name:           d.Name,
		Description:    d.Description,
		BusinessUnitID: d.BusinessUnitID,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}
