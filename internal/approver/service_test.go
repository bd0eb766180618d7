package approver_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/materialflow/mrs-management/internal/approver"
)

func TestApprover(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Approver Suite")
}

// Mock repository for testing
type mockApproverRepository struct {
	assignments map[int64]*approver.DepartmentApprover
	nextID      int64
	clock       time.Time
	createError error
}

func newMockApproverRepository() *mockApproverRepository {
	return &mockApproverRepository{
		assignments: make(map[int64]*approver.DepartmentApprover),
		nextID:      1,
		clock:       time.Now(),
	}
}

func (m *mockApproverRepository) Create(a *approver.DepartmentApprover) error {
	if m.createError != nil {
		return m.createError
	}
	a.ID = m.nextID
	m.nextID++
	// Strictly increasing creation times so recency ordering is deterministic.
	m.clock = m.clock.Add(time.Second)
	a.CreatedAt = m.clock
	a.UpdatedAt = m.clock
	m.assignments[a.ID] = a
	return nil
}

func (m *mockApproverRepository) GetByID(id int64) (*approver.DepartmentApprover, error) {
	a, exists := m.assignments[id]
	if !exists {
		return nil, approver.ErrAssignmentNotFound
	}
	stored := *a
	return &stored, nil
}

func (m *mockApproverRepository) Find(departmentID, userID int64, approverType string) (*approver.DepartmentApprover, error) {
	for _, a := range m.assignments {
		if a.DepartmentID == departmentID && a.UserID == userID && a.ApproverType == approverType {
			stored := *a
			return &stored, nil
		}
	}
	return nil, nil
}

func (m *mockApproverRepository) ListByDepartment(departmentID int64) ([]*approver.DepartmentApprover, error) {
	var result []*approver.DepartmentApprover
	for _, a := range m.assignments {
		if a.DepartmentID == departmentID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockApproverRepository) FirstActive(departmentID int64, approverType string) (*approver.DepartmentApprover, error) {
	var latest *approver.DepartmentApprover
	for _, a := range m.assignments {
		if a.DepartmentID != departmentID || a.ApproverType != approverType || !a.IsActive {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	stored := *latest
	return &stored, nil
}

func (m *mockApproverRepository) Update(a *approver.DepartmentApprover) error {
	if _, exists := m.assignments[a.ID]; !exists {
		return approver.ErrAssignmentNotFound
	}
	stored := *a
	m.assignments[a.ID] = &stored
	return nil
}

func (m *mockApproverRepository) Delete(id int64) error {
	if _, exists := m.assignments[id]; !exists {
		return approver.ErrAssignmentNotFound
	}
	delete(m.assignments, id)
	return nil
}

var _ = Describe("ApproverService", func() {
	var (
		service *approver.Service
		repo    *mockApproverRepository
	)

	BeforeEach(func() {
		repo = newMockApproverRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = approver.NewService(repo, logger)
	})

	assign := func(departmentID, userID int64, approverType string) *approver.DepartmentApprover {
		a, err := service.Assign(approver.AssignApproverDTO{
			DepartmentID: departmentID,
			UserID:       userID,
			ApproverType: approverType,
		})
		Expect(err).ToNot(HaveOccurred())
		return a
	}

	Describe("Assign", func() {
		It("creates an active assignment", func() {
			a := assign(10, 2, approver.TypeRecommending)

			Expect(a.ID).ToNot(BeZero())
			Expect(a.IsActive).To(BeTrue())
		})

		It("rejects a duplicate department, user, and type tuple", func() {
			assign(10, 2, approver.TypeRecommending)

			_, err := service.Assign(approver.AssignApproverDTO{
				DepartmentID: 10,
				UserID:       2,
				ApproverType: approver.TypeRecommending,
			})

			Expect(err).To(MatchError(approver.ErrDuplicateAssignment))
		})

		It("allows the same user to hold both types", func() {
			assign(10, 2, approver.TypeRecommending)
			a := assign(10, 2, approver.TypeFinal)
			Expect(a.ApproverType).To(Equal(approver.TypeFinal))
		})

		It("rejects an unknown approver type", func() {
			_, err := service.Assign(approver.AssignApproverDTO{
				DepartmentID: 10,
				UserID:       2,
				ApproverType: "SUPERVISOR",
			})
			Expect(err).To(MatchError(approver.ErrInvalidApproverType))
		})
	})

	Describe("Resolve", func() {
		It("returns the only active assignment", func() {
			assign(10, 2, approver.TypeRecommending)

			userID, found, err := service.Resolve(10, approver.TypeRecommending)

			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(userID).To(Equal(int64(2)))
		})

		It("the most recently created active assignment wins", func() {
			assign(10, 2, approver.TypeRecommending)
			assign(10, 3, approver.TypeRecommending)

			userID, found, err := service.Resolve(10, approver.TypeRecommending)

			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(userID).To(Equal(int64(3)))
		})

		It("falls back to the older assignment when the newer one is deactivated", func() {
			assign(10, 2, approver.TypeRecommending)
			newer := assign(10, 3, approver.TypeRecommending)

			_, err := service.SetActive(newer.ID, false)
			Expect(err).ToNot(HaveOccurred())

			userID, found, err := service.Resolve(10, approver.TypeRecommending)
			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeTrue())
			Expect(userID).To(Equal(int64(2)))
		})

		It("reports not found when the department has no active assignment of the type", func() {
			a := assign(10, 2, approver.TypeFinal)
			_, err := service.SetActive(a.ID, false)
			Expect(err).ToNot(HaveOccurred())

			_, found, err := service.Resolve(10, approver.TypeFinal)
			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeFalse())
		})

		It("rejects an unknown approver type", func() {
			_, _, err := service.Resolve(10, "SUPERVISOR")
			Expect(err).To(MatchError(approver.ErrInvalidApproverType))
		})
	})

	Describe("SetActive", func() {
		It("toggles an assignment", func() {
			a := assign(10, 2, approver.TypeRecommending)

			updated, err := service.SetActive(a.ID, false)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())

			updated, err = service.SetActive(a.ID, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeTrue())
		})

		It("fails for an unknown assignment", func() {
			_, err := service.SetActive(999, false)
			Expect(err).To(MatchError(approver.ErrAssignmentNotFound))
		})
	})

	Describe("Remove", func() {
		It("deletes an assignment", func() {
			a := assign(10, 2, approver.TypeRecommending)

			Expect(service.Remove(a.ID)).To(Succeed())

			_, found, err := service.Resolve(10, approver.TypeRecommending)
			Expect(err).ToNot(HaveOccurred())
			Expect(found).To(BeFalse())
		})

		It("fails for an unknown assignment", func() {
			err := service.Remove(999)
			Expect(err).To(MatchError(approver.ErrAssignmentNotFound))
		})
	})

	Describe("HasActive", func() {
		It("reflects whether resolution would succeed", func() {
			has, err := service.HasActive(10, approver.TypeFinal)
			Expect(err).ToNot(HaveOccurred())
			Expect(has).To(BeFalse())

			assign(10, 3, approver.TypeFinal)

			has, err = service.HasActive(10, approver.TypeFinal)
			Expect(err).ToNot(HaveOccurred())
			Expect(has).To(BeTrue())
		})
	})
})
