package postgres

import (
	"github.com/materialflow/mrs-management/internal/core/datamodel/request"
	domain "github.com/materialflow/mrs-management/internal/request"
	"gorm.io/gorm"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) domain.Repository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Create(req *domain.MaterialRequest) error {
	dm := domain.ToDataModel(req)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(dm).Error
	})
	if err != nil {
		return err
	}
	*req = *domain.FromDataModel(dm)
	return nil
}

func (r *RequestRepository) GetByID(id int64) (*domain.MaterialRequest, error) {
	var dm request.MaterialRequest
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return domain.FromDataModel(&dm), nil
}

// Update saves header fields only; the item set is never touched here.
func (r *RequestRepository) Update(req *domain.MaterialRequest) error {
	dm := domain.ToDataModel(req)
	dm.Items = nil
	return r.db.Omit("Items").Save(dm).Error
}

// ReplaceItems swaps the item set wholesale and saves the header in one
// transaction, so a failure leaves either the old items with the old header
// or the new items with the new header, never a mix.
func (r *RequestRepository) ReplaceItems(req *domain.MaterialRequest) error {
	dm := domain.ToDataModel(req)
	items := dm.Items
	dm.Items = nil

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("material_request_id = ?", req.ID).
			Delete(&request.MaterialRequestItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].MaterialRequestID = req.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Items").Save(dm).Error
	})
}

func (r *RequestRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("material_request_id = ?", id).
			Delete(&request.MaterialRequestItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&request.MaterialRequest{}, id).Error
	})
}

func (r *RequestRepository) ListByRequester(userID int64, limit, offset int) ([]*domain.MaterialRequest, error) {
	var dms []*request.MaterialRequest
	err := r.db.Preload("Items").
		Where("requested_by_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return domain.FromDataModelSlice(dms), nil
}

func (r *RequestRepository) ListByBusinessUnit(businessUnitID int64, limit, offset int) ([]*domain.MaterialRequest, error) {
	var dms []*request.MaterialRequest
	err := r.db.Preload("Items").
		Where("business_unit_id = ?", businessUnitID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return domain.FromDataModelSlice(dms), nil
}

func (r *RequestRepository) ListPendingForApprover(userID int64) ([]*domain.MaterialRequest, error) {
	var dms []*request.MaterialRequest
	err := r.db.Preload("Items").
		Where("(status = ? AND rec_approver_id = ?) OR (status = ? AND final_approver_id = ?)",
			domain.StatusForRecApproval, userID, domain.StatusForFinalApproval, userID).
		Order("created_at ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return domain.FromDataModelSlice(dms), nil
}

// LatestDocNo returns the lexicographically greatest document number for the
// series and two-digit year, which for the fixed zero-padded format is also
// the numerically greatest.
func (r *RequestRepository) LatestDocNo(series, yearToken string) (string, bool, error) {
	var docNos []string
	pattern := series + "-" + yearToken + "-%"
	err := r.db.Model(&request.MaterialRequest{}).
		Where("series = ? AND doc_no LIKE ?", series, pattern).
		Order("doc_no DESC").
		Limit(1).
		Pluck("doc_no", &docNos).Error
	if err != nil {
		return "", false, err
	}
	if len(docNos) == 0 {
		return "", false, nil
	}
	return docNos[0], true, nil
}
