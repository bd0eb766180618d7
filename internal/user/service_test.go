package user_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/materialflow/mrs-management/internal/user"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

// Mock repository for testing
type mockUserRepository struct {
	users       map[int64]*user.User
	nextID      int64
	createError error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[int64]*user.User),
		nextID: 1,
	}
}

func (m *mockUserRepository) Create(u *user.User) error {
	if m.createError != nil {
		return m.createError
	}
	u.ID = m.nextID
	m.nextID++
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepository) GetByID(userID int64) (*user.User, error) {
	u, exists := m.users[userID]
	if !exists {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByEmail(email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepository) GetAll(limit, offset int) ([]*user.User, error) {
	var result []*user.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockUserRepository) Update(u *user.User) error {
	if _, exists := m.users[u.ID]; !exists {
		return user.ErrUserNotFound
	}
	m.users[u.ID] = u
	return nil
}

var _ = Describe("UserService", func() {
	var (
		service *user.Service
		repo    *mockUserRepository
	)

	BeforeEach(func() {
		repo = newMockUserRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(repo, bcrypt.MinCost, logger)
	})

	validDTO := func() user.CreateUserDTO {
		return user.CreateUserDTO{
			FirstName: "Jordan",
			LastName:  "Reyes",
			Email:     "jordan.reyes@mail.com",
			Password:  "correct-horse",
			Role:      user.RoleStaff,
		}
	}

	Describe("Create", func() {
		It("stores a bcrypt hash, never the raw password", func() {
			created, err := service.Create(validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(created.PasswordHash).ToNot(Equal("correct-horse"))
			Expect(bcrypt.CompareHashAndPassword(
				[]byte(created.PasswordHash), []byte("correct-horse"))).To(Succeed())
		})

		It("new users start active", func() {
			created, err := service.Create(validDTO())
			Expect(err).ToNot(HaveOccurred())
			Expect(created.IsActive).To(BeTrue())
		})

		It("rejects a duplicate email", func() {
			_, err := service.Create(validDTO())
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Create(validDTO())
			Expect(err).To(MatchError(user.ErrDuplicateEmail))
		})

		It("rejects an unknown role", func() {
			dto := validDTO()
			dto.Role = "SUPERUSER"
			_, err := service.Create(dto)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a short password", func() {
			dto := validDTO()
			dto.Password = "short"
			_, err := service.Create(dto)
			Expect(err).To(HaveOccurred())
		})

		It("rejects a malformed email", func() {
			dto := validDTO()
			dto.Email = "not-an-email"
			_, err := service.Create(dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("patches only the provided fields", func() {
			created, err := service.Create(validDTO())
			Expect(err).ToNot(HaveOccurred())

			role := user.RolePurchaser
			inactive := false
			updated, err := service.Update(created.ID, user.UpdateUserDTO{
				Role:     &role,
				IsActive: &inactive,
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(updated.Role).To(Equal(user.RolePurchaser))
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.Email).To(Equal("jordan.reyes@mail.com"))
		})

		It("rejects an unknown role", func() {
			created, err := service.Create(validDTO())
			Expect(err).ToNot(HaveOccurred())

			role := "SUPERUSER"
			_, err = service.Update(created.ID, user.UpdateUserDTO{Role: &role})
			Expect(err).To(MatchError(user.ErrInvalidRole))
		})

		It("fails for an unknown user", func() {
			_, err := service.Update(999, user.UpdateUserDTO{})
			Expect(err).To(MatchError(user.ErrUserNotFound))
		})
	})

	Describe("role capabilities", func() {
		It("posting is limited to admin, manager, and purchaser", func() {
			Expect(user.CanPost(user.RoleAdmin)).To(BeTrue())
			Expect(user.CanPost(user.RoleManager)).To(BeTrue())
			Expect(user.CanPost(user.RolePurchaser)).To(BeTrue())
			Expect(user.CanPost(user.RoleStaff)).To(BeFalse())
			Expect(user.CanPost(user.RoleStockroom)).To(BeFalse())
		})

		It("receiving additionally includes stockroom", func() {
			Expect(user.CanReceive(user.RoleStockroom)).To(BeTrue())
			Expect(user.CanReceive(user.RoleStaff)).To(BeFalse())
		})

		It("cross-department visibility covers admin, manager, and viewer", func() {
			Expect(user.CanViewAll(user.RoleViewer)).To(BeTrue())
			Expect(user.CanViewAll(user.RolePurchaser)).To(BeFalse())
		})
	})
})
