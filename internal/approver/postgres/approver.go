package postgres

import (
	"github.com/materialflow/mrs-management/internal/approver"
	approverDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/approver"
	"gorm.io/gorm"
)

type ApproverRepository struct {
	db *gorm.DB
}

func NewApproverRepository(db *gorm.DB) approver.Repository {
	return &ApproverRepository{db: db}
}

func (r *ApproverRepository) Create(a *approver.DepartmentApprover) error {
	dm := approver.ToDataModel(a)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	a.ID = dm.ID
	a.CreatedAt = dm.CreatedAt
	return nil
}

func (r *ApproverRepository) GetByID(id int64) (*approver.DepartmentApprover, error) {
	var dm approverDatamodel.DepartmentApprover
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, approver.ErrAssignmentNotFound
		}
		return nil, err
	}
	return approver.FromDataModel(&dm), nil
}

func (r *ApproverRepository) Find(departmentID, userID int64, approverType string) (*approver.DepartmentApprover, error) {
	var dm approverDatamodel.DepartmentApprover
	err := r.db.Where("department_id = ? AND user_id = ? AND approver_type = ?",
		departmentID, userID, approverType).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return approver.FromDataModel(&dm), nil
}

func (r *ApproverRepository) ListByDepartment(departmentID int64) ([]*approver.DepartmentApprover, error) {
	var dms []*approverDatamodel.DepartmentApprover
	err := r.db.Where("department_id = ?", departmentID).
		Order("created_at DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return approver.FromDataModelSlice(dms), nil
}

// FirstActive implements "most recently assigned active approver wins".
func (r *ApproverRepository) FirstActive(departmentID int64, approverType string) (*approver.DepartmentApprover, error) {
	var dm approverDatamodel.DepartmentApprover
	err := r.db.Where("department_id = ? AND approver_type = ? AND is_active = ?",
		departmentID, approverType, true).
		Order("created_at DESC").
		First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return approver.FromDataModel(&dm), nil
}

func (r *ApproverRepository) Update(a *approver.DepartmentApprover) error {
	return r.db.Save(approver.ToDataModel(a)).Error
}

func (r *ApproverRepository) Delete(id int64) error {
	return r.db.Delete(&approverDatamodel.DepartmentApprover{}, id).Error
}
