package postgres

import (
	"github.com/materialflow/mrs-management/internal/auth"
	userDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.UserRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentials(email string) (string, int64, bool, error) {
	var dm userDatamodel.User
	err := r.db.Where("email = ?", email).First(&dm).Error
	if err != nil {
		return "", 0, false, err
	}
	return dm.PasswordHash, dm.ID, dm.IsActive, nil
}

func (r *AuthRepository) GetIdentity(userID int64) (*auth.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ? AND is_active = ?", userID, true).First(&dm).Error
	if err != nil {
		return nil, err
	}
	return &auth.User{
		ID:           dm.ID,
		Email:        dm.Email,
		Role:         dm.Role,
		DepartmentID: dm.MrsDepartmentID,
	}, nil
}
