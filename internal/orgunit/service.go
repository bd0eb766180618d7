package orgunit

import (
	"log/slog"
)

type Repository interface {
	CreateUnit(b *BusinessUnit) error
	GetUnitByID(id int64) (*BusinessUnit, error)
	GetUnitByCode(code string) (*BusinessUnit, error)
	GetAllUnits() ([]*BusinessUnit, error)
	UpdateUnit(b *BusinessUnit) error
	DeleteUnit(id int64) error
	CountUnitDepartments(unitID int64) (int64, error)
	CountUnitRequests(unitID int64) (int64, error)

	CreateDepartment(d *Department) error
	GetDepartmentByID(id int64) (*Department, error)
	GetDepartmentByCode(code string) (*Department, error)
	GetDepartmentsByUnit(unitID int64) ([]*Department, error)
	GetAllDepartments() ([]*Department, error)
	UpdateDepartment(d *Department) error
	DeleteDepartment(id int64) error
	CountDepartmentUsers(departmentID int64) (int64, error)
	CountDepartmentRequests(departmentID int64) (int64, error)
	CountDepartmentApprovers(departmentID int64) (int64, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ------------- Business units -------------

func (s *Service) CreateBusinessUnit(dto CreateBusinessUnitDTO) (*BusinessUnit, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetUnitByCode(dto.Code); err == nil && existing != nil {
		return nil, ErrDuplicateCode
	}

	unit := NewBusinessUnit(dto.Code, dto.Name, dto.Description)
	if err := s.repo.CreateUnit(unit); err != nil {
		s.logger.Error("failed to create business unit", "error", err, "code", dto.Code)
		return nil, err
	}

	s.logger.Info("business unit created", "unit_id", unit.ID, "code", unit.Code)
	return unit, nil
}

func (s *Service) GetBusinessUnit(id int64) (*BusinessUnit, error) {
	return s.repo.GetUnitByID(id)
}

func (s *Service) ListBusinessUnits() ([]*BusinessUnit, error) {
	return s.repo.GetAllUnits()
}

func (s *Service) UpdateBusinessUnit(id int64, dto UpdateBusinessUnitDTO) (*BusinessUnit, error) {
	unit, err := s.repo.GetUnitByID(id)
	if err != nil {
		return nil, ErrBusinessUnitNotFound
	}

	if dto.Name != nil {
		unit.Name = *dto.Name
	}
	if dto.Description != nil {
		unit.Description = dto.Description
	}
	if dto.IsActive != nil {
		unit.IsActive = *dto.IsActive
	}

	if err := s.repo.UpdateUnit(unit); err != nil {
		s.logger.Error("failed to update business unit", "error", err, "unit_id", id)
		return nil, err
	}
	return unit, nil
}

// DeleteBusinessUnit hard-deletes a unit, refusing while dependent rows exist.
func (s *Service) DeleteBusinessUnit(id int64) error {
	if _, err := s.repo.GetUnitByID(id); err != nil {
		return ErrBusinessUnitNotFound
	}

	departments, err := s.repo.CountUnitDepartments(id)
	if err != nil {
		return err
	}
	if departments > 0 {
		return ErrUnitHasDepartments
	}

	requests, err := s.repo.CountUnitRequests(id)
	if err != nil {
		return err
	}
	if requests > 0 {
		return ErrUnitHasRequests
	}

	if err := s.repo.DeleteUnit(id); err != nil {
		s.logger.Error("failed to delete business unit", "error", err, "unit_id", id)
		return err
	}

	s.logger.Info("business unit deleted", "unit_id", id)
	return nil
}

// ------------- Departments -------------

func (s *Service) CreateDepartment(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUnitByID(dto.BusinessUnitID); err != nil {
		return nil, ErrBusinessUnitNotFound
	}

	if existing, err := s.repo.GetDepartmentByCode(dto.Code); err == nil && existing != nil {
		return nil, ErrDuplicateCode
	}

	dept := NewDepartment(dto.Code, dto.Name, dto.Description, dto.BusinessUnitID)
	if err := s.repo.CreateDepartment(dept); err != nil {
		s.logger.Error("failed to create department", "error", err, "code", dto.Code)
		return nil, err
	}

	s.logger.Info("department created", "department_id", dept.ID, "code", dept.Code)
	return dept, nil
}

func (s *Service) GetDepartment(id int64) (*Department, error) {
	return s.repo.GetDepartmentByID(id)
}

func (s *Service) ListDepartments(unitID int64) ([]*Department, error) {
	if unitID > 0 {
		return s.repo.GetDepartmentsByUnit(unitID)
	}
	return s.repo.GetAllDepartments()
}

func (s *Service) UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error) {
	dept, err := s.repo.GetDepartmentByID(id)
	if err != nil {
		return nil, ErrDepartmentNotFound
	}

	if dto.Name != nil {
		dept.Name = *dto.Name
	}
	if dto.Description != nil {
		dept.Description = dto.Description
	}
	if dto.IsActive != nil {
		dept.IsActive = *dto.IsActive
	}

	if err := s.repo.UpdateDepartment(dept); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, err
	}
	return dept, nil
}

// DeleteDepartment hard-deletes a department, refusing while it still owns
// approver assignments, users, or requests.
func (s *Service) DeleteDepartment(id int64) error {
	if _, err := s.repo.GetDepartmentByID(id); err != nil {
		return ErrDepartmentNotFound
	}

	approvers, err := s.repo.CountDepartmentApprovers(id)
	if err != nil {
		return err
	}
	if approvers > 0 {
		return ErrDepartmentHasApprovers
	}

	users, err := s.repo.CountDepartmentUsers(id)
	if err != nil {
		return err
	}
	if users > 0 {
		return ErrDepartmentHasUsers
	}

	requests, err := s.repo.CountDepartmentRequests(id)
	if err != nil {
		return err
	}
	if requests > 0 {
		return ErrDepartmentHasRequests
	}

	if err := s.repo.DeleteDepartment(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deleted", "department_id", id)
	return nil
}

// BusinessUnitExists is used by the request engine to validate foreign keys.
func (s *Service) BusinessUnitExists(id int64) (bool, error) {
	_, err := s.repo.GetUnitByID(id)
	if err != nil {
		if err == ErrBusinessUnitNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DepartmentExists is used by the request engine to validate foreign keys.
func (s *Service) DepartmentExists(id int64) (bool, error) {
	_, err := s.repo.GetDepartmentByID(id)
	if err != nil {
		if err == ErrDepartmentNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
