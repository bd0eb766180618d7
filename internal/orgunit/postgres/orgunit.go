package postgres

import (
	approverDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/approver"
	orgunitDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/orgunit"
	requestDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/request"
	userDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/user"
	"github.com/materialflow/mrs-management/internal/orgunit"
	"gorm.io/gorm"
)

type OrgUnitRepository struct {
	db *gorm.DB
}

func NewOrgUnitRepository(db *gorm.DB) orgunit.Repository {
	return &OrgUnitRepository{db: db}
}

// ------------- Business units -------------

func (r *OrgUnitRepository) CreateUnit(b *orgunit.BusinessUnit) error {
	dm := orgunit.UnitToDataModel(b)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	b.ID = dm.ID
	return nil
}

func (r *OrgUnitRepository) GetUnitByID(id int64) (*orgunit.BusinessUnit, error) {
	var dm orgunitDatamodel.BusinessUnit
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, orgunit.ErrBusinessUnitNotFound
		}
		return nil, err
	}
	return orgunit.UnitFromDataModel(&dm), nil
}

func (r *OrgUnitRepository) GetUnitByCode(code string) (*orgunit.BusinessUnit, error) {
	var dm orgunitDatamodel.BusinessUnit
	err := r.db.Where("code = ?", code).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return orgunit.UnitFromDataModel(&dm), nil
}

func (r *OrgUnitRepository) GetAllUnits() ([]*orgunit.BusinessUnit, error) {
	var dms []*orgunitDatamodel.BusinessUnit
	err := r.db.Order("code ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	units := make([]*orgunit.BusinessUnit, len(dms))
	for i, dm := range dms {
		units[i] = orgunit.UnitFromDataModel(dm)
	}
	return units, nil
}

func (r *OrgUnitRepository) UpdateUnit(b *orgunit.BusinessUnit) error {
	return r.db.Save(orgunit.UnitToDataModel(b)).Error
}

func (r *OrgUnitRepository) DeleteUnit(id int64) error {
	return r.db.Delete(&orgunitDatamodel.BusinessUnit{}, id).Error
}

func (r *OrgUnitRepository) CountUnitDepartments(unitID int64) (int64, error) {
	var count int64
	err := r.db.Model(&orgunitDatamodel.Department{}).
		Where("business_unit_id = ?", unitID).
		Count(&count).Error
	return count, err
}

func (r *OrgUnitRepository) CountUnitRequests(unitID int64) (int64, error) {
	var count int64
	err := r.db.Model(&requestDatamodel.MaterialRequest{}).
		Where("business_unit_id = ?", unitID).
		Count(&count).Error
	return count, err
}

// ------------- Departments -------------

func (r *OrgUnitRepository) CreateDepartment(d *orgunit.Department) error {
	dm := orgunit.DepartmentToDataModel(d)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	d.ID = dm.ID
	return nil
}

func (r *OrgUnitRepository) GetDepartmentByID(id int64) (*orgunit.Department, error) {
	var dm orgunitDatamodel.Department
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, orgunit.ErrDepartmentNotFound
		}
		return nil, err
	}
	return orgunit.DepartmentFromDataModel(&dm), nil
}

func (r *OrgUnitRepository) GetDepartmentByCode(code string) (*orgunit.Department, error) {
	var dm orgunitDatamodel.Department
	err := r.db.Where("code = ?", code).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return orgunit.DepartmentFromDataModel(&dm), nil
}

func (r *OrgUnitRepository) GetDepartmentsByUnit(unitID int64) ([]*orgunit.Department, error) {
	var dms []*orgunitDatamodel.Department
	err := r.db.Where("business_unit_id = ?", unitID).Order("code ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return departmentsFromDataModels(dms), nil
}

func (r *OrgUnitRepository) GetAllDepartments() ([]*orgunit.Department, error) {
	var dms []*orgunitDatamodel.Department
	err := r.db.Order("code ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return departmentsFromDataModels(dms), nil
}

func (r *OrgUnitRepository) UpdateDepartment(d *orgunit.Department) error {
	return r.db.Save(orgunit.DepartmentToDataModel(d)).Error
}

func (r *OrgUnitRepository) DeleteDepartment(id int64) error {
	return r.db.Delete(&orgunitDatamodel.Department{}, id).Error
}

func (r *OrgUnitRepository) CountDepartmentUsers(departmentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("mrs_department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *OrgUnitRepository) CountDepartmentRequests(departmentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&requestDatamodel.MaterialRequest{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func (r *OrgUnitRepository) CountDepartmentApprovers(departmentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&approverDatamodel.DepartmentApprover{}).
		Where("department_id = ?", departmentID).
		Count(&count).Error
	return count, err
}

func departmentsFromDataModels(dms []*orgunitDatamodel.Department) []*orgunit.Department {
	departments := make([]*orgunit.Department, len(dms))
	for i, dm := range dms {
		departments[i] = orgunit.DepartmentFromDataModel(dm)
	}
	return departments
}
