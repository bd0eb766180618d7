package user

import (
	"github.com/materialflow/mrs-management/internal/core/common/validation"
)

type CreateUserDTO struct {
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
	Role            string  `json:"role" validate:"required"`
	ContactNo       *string `json:"contact_no,omitempty"`
	MrsDepartmentID *int64  `json:"mrs_department_id,omitempty"`
}

func (dto CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("first_name", dto.FirstName).Required().MaxLength(100)
	v.Field("last_name", dto.LastName).Required().MaxLength(100)
	v.Field("email", dto.Email).Required().Email()
	v.Field("password", dto.Password).Required().MinLength(8)
	v.Field("role", dto.Role).Required().OneOf(ValidRoles()...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateUserDTO struct {
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Role            *string `json:"role,omitempty"`
	ContactNo       *string `json:"contact_no,omitempty"`
	MrsDepartmentID *int64  `json:"mrs_department_id,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Role != nil && !IsValidRole(*dto.Role) {
		return ErrInvalidRole
	}
	return nil
}

// UserResponse is the API view of a user, password hash excluded.
type UserResponse struct {
	ID              int64   `json:"id"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Role            string  `json:"role"`
	ContactNo       *string `json:"contact_no,omitempty"`
	MrsDepartmentID *int64  `json:"mrs_department_id,omitempty"`
	IsActive        bool    `json:"is_active"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Role:            u.Role,
		ContactNo:       u.ContactNo,
		MrsDepartmentID: u.MrsDepartmentID,
		IsActive:        u.IsActive,
	}
}
