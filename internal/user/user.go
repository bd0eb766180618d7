package user

import (
	"errors"
	"time"

	userDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/user"
)

// Roles recognised by the system. Authorization decisions are made from the
// role stored on the user row, re-read inside every operation.
const (
	RoleAdmin       = "ADMIN"
	RoleManager     = "MANAGER"
	RoleStaff       = "STAFF"
	RoleTenant      = "TENANT"
	RoleTreasury    = "TREASURY"
	RolePurchaser   = "PURCHASER"
	RoleAcctg       = "ACCTG"
	RoleViewer      = "VIEWER"
	RoleOwner       = "OWNER"
	RoleStockroom   = "STOCKROOM"
	RoleMaintenance = "MAINTENANCE"
)

var validRoles = map[string]bool{
	RoleAdmin:       true,
	RoleManager:     true,
	RoleStaff:       true,
	RoleTenant:      true,
	RoleTreasury:    true,
	RolePurchaser:   true,
	RoleAcctg:       true,
	RoleViewer:      true,
	RoleOwner:       true,
	RoleStockroom:   true,
	RoleMaintenance: true,
}

func IsValidRole(role string) bool {
	return validRoles[role]
}

func ValidRoles() []string {
	return []string{
		RoleAdmin, RoleManager, RoleStaff, RoleTenant, RoleTreasury,
		RolePurchaser, RoleAcctg, RoleViewer, RoleOwner, RoleStockroom,
		RoleMaintenance,
	}
}

// IsAdminOrManager reports whether the role may manage requests it does not own.
func IsAdminOrManager(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// CanPost reports whether the role may mark final-approved requests as posted.
func CanPost(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RolePurchaser
}

// CanReceive reports whether the role may mark posted requests as received.
func CanReceive(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RolePurchaser || role == RoleStockroom
}

// CanViewAll reports whether the role may read requests it neither owns nor approves.
func CanViewAll(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleViewer
}

type User struct {
	ID              int64     `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	ContactNo       *string   `json:"contact_no,omitempty"`
	MrsDepartmentID *int64    `json:"mrs_department_id,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
	ErrInvalidRole    = errors.New("invalid role")
)

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		Role:            u.Role,
		ContactNo:       u.ContactNo,
		MrsDepartmentID: u.MrsDepartmentID,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		Role:            u.Role,
		ContactNo:       u.ContactNo,
		MrsDepartmentID: u.MrsDepartmentID,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func FromDataModelSlice(users []*userDatamodel.User) []*User {
	result := make([]*User, len(users))
	for i, u := range users {
		result[i] = FromDataModel(u)
	}
	return result
}
