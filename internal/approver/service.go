package approver

import (
	"log/slog"
)

type Repository interface {
	Create(a *DepartmentApprover) error
	GetByID(id int64) (*DepartmentApprover, error)
	Find(departmentID, userID int64, approverType string) (*DepartmentApprover, error)
	ListByDepartment(departmentID int64) ([]*DepartmentApprover, error)
	// FirstActive returns the most recently created active assignment of the
	// given type for the department, or nil if none exists.
	FirstActive(departmentID int64, approverType string) (*DepartmentApprover, error)
	Update(a *DepartmentApprover) error
	Delete(id int64) error
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

// Assign creates an approver assignment. The (department, user, type) tuple
// is unique; assigning the same tuple twice is a conflict.
func (s *Service) Assign(dto AssignApproverDTO) (*DepartmentApprover, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.Find(dto.DepartmentID, dto.UserID, dto.ApproverType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateAssignment
	}

	assignment := &DepartmentApprover{
		DepartmentID: dto.DepartmentID,
		UserID:       dto.UserID,
		ApproverType: dto.ApproverType,
		IsActive:     true,
	}
	if err := s.repo.Create(assignment); err != nil {
		s.logger.Error("failed to assign approver", "error", err,
			"department_id", dto.DepartmentID, "user_id", dto.UserID, "type", dto.ApproverType)
		return nil, err
	}

	s.logger.Info("approver assigned",
		"assignment_id", assignment.ID,
		"department_id", assignment.DepartmentID,
		"user_id", assignment.UserID,
		"type", assignment.ApproverType)
	return assignment, nil
}

func (s *Service) SetActive(id int64, active bool) (*DepartmentApprover, error) {
	assignment, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrAssignmentNotFound
	}

	assignment.IsActive = active
	if err := s.repo.Update(assignment); err != nil {
		s.logger.Error("failed to update approver assignment", "error", err, "assignment_id", id)
		return nil, err
	}
	return assignment, nil
}

func (s *Service) Remove(id int64) error {
	if _, err := s.repo.GetByID(id); err != nil {
		return ErrAssignmentNotFound
	}
	return s.repo.Delete(id)
}

func (s *Service) ListByDepartment(departmentID int64) ([]*DepartmentApprover, error) {
	return s.repo.ListByDepartment(departmentID)
}

// Resolve finds the acting approver of the given type for a department. The
// most recently created active assignment wins; earlier assignments stay in
// place as fallbacks for when it is deactivated.
func (s *Service) Resolve(departmentID int64, approverType string) (userID int64, found bool, err error) {
	if !IsValidType(approverType) {
		return 0, false, ErrInvalidApproverType
	}

	assignment, err := s.repo.FirstActive(departmentID, approverType)
	if err != nil {
		return 0, false, err
	}
	if assignment == nil {
		return 0, false, nil
	}
	return assignment.UserID, true, nil
}

// HasActive reports whether the department has any active approver of the type.
func (s *Service) HasActive(departmentID int64, approverType string) (bool, error) {
	_, found, err := s.Resolve(departmentID, approverType)
	return found, err
}
