package request

import (
	"errors"
	"fmt"
	"time"

	requestDatamodel "github.com/materialflow/mrs-management/internal/core/datamodel/request"
	"github.com/materialflow/mrs-management/internal/user"
	"github.com/shopspring/decimal"
)

// Request statuses. REC_APPROVED and TRANSMITTED are representable for
// historical data but no operation currently produces them.
const (
	StatusDraft            = "DRAFT"
	StatusForRecApproval   = "FOR_REC_APPROVAL"
	StatusRecApproved      = "REC_APPROVED"
	StatusForFinalApproval = "FOR_FINAL_APPROVAL"
	StatusFinalApproved    = "FINAL_APPROVED"
	StatusPosted           = "POSTED"
	StatusReceived         = "RECEIVED"
	StatusDisapproved      = "DISAPPROVED"
	StatusCancelled        = "CANCELLED"
	StatusForEdit          = "FOR_EDIT"
	StatusTransmitted      = "TRANSMITTED"
)

// Per-stage approval outcomes.
const (
	ApprovalPending     = "PENDING"
	ApprovalApproved    = "APPROVED"
	ApprovalDisapproved = "DISAPPROVED"
)

// Document series and request types.
const (
	SeriesPurchaseOrder = "PO"
	SeriesJobOrder      = "JO"

	TypeItem    = "ITEM"
	TypeService = "SERVICE"
)

func IsValidSeries(s string) bool {
	return s == SeriesPurchaseOrder || s == SeriesJobOrder
}

func IsValidType(t string) bool {
	return t == TypeItem || t == TypeService
}

var (
	ErrRequestNotFound        = errors.New("material request not found")
	ErrInvalidState           = errors.New("operation not allowed in current status")
	ErrNotAuthorized          = errors.New("insufficient permissions")
	ErrNotAssignedApprover    = errors.New("you are not authorized to approve this request")
	ErrNoRecommendingApprover = errors.New("no recommending approvers assigned to the department")
	ErrInvalidDecision        = errors.New("decision must be APPROVED or DISAPPROVED")
	ErrUnknownBusinessUnit    = errors.New("business unit not found")
	ErrUnknownDepartment      = errors.New("department not found")
)

func stateError(operation, actual string) error {
	return fmt.Errorf("%w: cannot %s a %s request", ErrInvalidState, operation, actual)
}

// Actor is the identity on whose behalf an operation runs. It is passed
// explicitly into every lifecycle operation; there is no ambient current
// user. Authorization decisions combine the actor with freshly loaded rows.
type Actor struct {
	ID           int64
	Role         string
	DepartmentID *int64
}

// MaterialRequest is the core workflow document: a purchase or job order
// moving through the two-stage approval lifecycle.
type MaterialRequest struct {
	ID             int64           `json:"id"`
	DocNo          string          `json:"doc_no"`
	Series         string          `json:"series"`
	Type           string          `json:"type"`
	Status         string          `json:"status"`
	DatePrepared   time.Time       `json:"date_prepared"`
	DateRequired   time.Time       `json:"date_required"`
	BusinessUnitID int64           `json:"business_unit_id"`
	DepartmentID   *int64          `json:"department_id,omitempty"`
	ChargeTo       *string         `json:"charge_to,omitempty"`
	Purpose        *string         `json:"purpose,omitempty"`
	Remarks        *string         `json:"remarks,omitempty"`
	DeliverTo      *string         `json:"deliver_to,omitempty"`
	Freight        decimal.Decimal `json:"freight"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	ConfirmationNo *string         `json:"confirmation_no,omitempty"`

	RequestedByID       int64      `json:"requested_by_id"`
	RecApproverID       *int64     `json:"rec_approver_id,omitempty"`
	RecApprovalStatus   *string    `json:"rec_approval_status,omitempty"`
	RecApprovalDate     *time.Time `json:"rec_approval_date,omitempty"`
	FinalApproverID     *int64     `json:"final_approver_id,omitempty"`
	FinalApprovalStatus *string    `json:"final_approval_status,omitempty"`
	FinalApprovalDate   *time.Time `json:"final_approval_date,omitempty"`

	DateApproved *time.Time `json:"date_approved,omitempty"`
	DatePosted   *time.Time `json:"date_posted,omitempty"`
	DateReceived *time.Time `json:"date_received,omitempty"`

	SupplierBPCode      *string `json:"supplier_bp_code,omitempty"`
	SupplierName        *string `json:"supplier_name,omitempty"`
	PurchaseOrderNumber *string `json:"purchase_order_number,omitempty"`

	Items []MaterialRequestItem `json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaterialRequestItem is a line item. Items are replaced wholesale on every
// edit; item identity does not survive an update.
type MaterialRequestItem struct {
	ID          int64            `json:"id"`
	ItemCode    *string          `json:"item_code,omitempty"`
	Description string           `json:"description"`
	UOM         string           `json:"uom"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice  decimal.Decimal  `json:"total_price"`
	Remarks     *string          `json:"remarks,omitempty"`
	IsNew       bool             `json:"is_new"`
}

func (r *MaterialRequest) IsOwner(a Actor) bool {
	return r.RequestedByID == a.ID
}

// Editable reports whether the requester may still modify the document.
func (r *MaterialRequest) Editable() bool {
	return r.Status == StatusDraft || r.Status == StatusForEdit
}

func (r *MaterialRequest) canManage(a Actor) bool {
	return r.IsOwner(a) || user.IsAdminOrManager(a.Role)
}

func (r *MaterialRequest) isRecApprover(a Actor) bool {
	return r.RecApproverID != nil && *r.RecApproverID == a.ID
}

func (r *MaterialRequest) isFinalApprover(a Actor) bool {
	return r.FinalApproverID != nil && *r.FinalApproverID == a.ID
}

// canView gates single-record reads: owner, either assigned approver, or a
// role with cross-department visibility.
func (r *MaterialRequest) canView(a Actor) bool {
	return r.IsOwner(a) || r.isRecApprover(a) || r.isFinalApprover(a) || user.CanViewAll(a.Role)
}

// LineTotal is the denormalized per-item amount: quantity times unit price,
// zero when the item has no price yet.
func LineTotal(it MaterialRequestItem) decimal.Decimal {
	if it.UnitPrice == nil {
		return decimal.Zero
	}
	return it.Quantity.Mul(*it.UnitPrice)
}

// ComputeTotal derives the document total from raw inputs. It is recomputed
// server-side on every create and update; a client-supplied total is never
// trusted.
func ComputeTotal(items []MaterialRequestItem, freight, discount decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it))
	}
	return total.Add(freight).Sub(discount)
}

func ToDataModel(r *MaterialRequest) *requestDatamodel.MaterialRequest {
	dm := &requestDatamodel.MaterialRequest{
		ID:                  r.ID,
		DocNo:               r.DocNo,
		Series:              r.Series,
		Type:                r.Type,
		Status:              r.Status,
		DatePrepared:        r.DatePrepared,
		DateRequired:        r.DateRequired,
		BusinessUnitID:      r.BusinessUnitID,
		DepartmentID:        r.DepartmentID,
		ChargeTo:            r.ChargeTo,
		Purpose:             r.Purpose,
		Remarks:             r.Remarks,
		DeliverTo:           r.DeliverTo,
		Freight:             r.Freight,
		Discount:            r.Discount,
		Total:               r.Total,
		ConfirmationNo:      r.ConfirmationNo,
		RequestedByID:       r.RequestedByID,
		RecApproverID:       r.RecApproverID,
		RecApprovalStatus:   r.RecApprovalStatus,
		RecApprovalDate:     r.RecApprovalDate,
		FinalApproverID:     r.FinalApproverID,
		FinalApprovalStatus: r.FinalApprovalStatus,
		FinalApprovalDate:   r.FinalApprovalDate,
		DateApproved:        r.DateApproved,
		DatePosted:          r.DatePosted,
		DateReceived:        r.DateReceived,
		SupplierBPCode:      r.SupplierBPCode,
		SupplierName:        r.SupplierName,
		PurchaseOrderNumber: r.PurchaseOrderNumber,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	for _, it := range r.Items {
		dm.Items = append(dm.Items, requestDatamodel.MaterialRequestItem{
			ID:                it.ID,
			MaterialRequestID: r.ID,
			ItemCode:          it.ItemCode,
			Description:       it.Description,
			UOM:               it.UOM,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			TotalPrice:        it.TotalPrice,
			Remarks:           it.Remarks,
			IsNew:             it.IsNew,
		})
	}
	return dm
}

func FromDataModel(dm *requestDatamodel.MaterialRequest) *MaterialRequest {
	r := &MaterialRequest{
		ID:                  dm.ID,
		DocNo:               dm.DocNo,
		Series:              dm.Series,
		Type:                dm.Type,
		Status:              dm.Status,
		DatePrepared:        dm.DatePrepared,
		DateRequired:        dm.DateRequired,
		BusinessUnitID:      dm.BusinessUnitID,
		DepartmentID:        dm.DepartmentID,
		ChargeTo:            dm.ChargeTo,
		Purpose:             dm.Purpose,
		Remarks:             dm.Remarks,
		DeliverTo:           dm.DeliverTo,
		Freight:             dm.Freight,
		Discount:            dm.Discount,
		Total:               dm.Total,
		ConfirmationNo:      dm.ConfirmationNo,
		RequestedByID:       dm.RequestedByID,
		RecApproverID:       dm.RecApproverID,
		RecApprovalStatus:   dm.RecApprovalStatus,
		RecApprovalDate:     dm.RecApprovalDate,
		FinalApproverID:     dm.FinalApproverID,
		FinalApprovalStatus: dm.FinalApprovalStatus,
		FinalApprovalDate:   dm.FinalApprovalDate,
		DateApproved:        dm.DateApproved,
		DatePosted:          dm.DatePosted,
		DateReceived:        dm.DateReceived,
		SupplierBPCode:      dm.SupplierBPCode,
		SupplierName:        dm.SupplierName,
		PurchaseOrderNumber: dm.PurchaseOrderNumber,
		CreatedAt:           dm.CreatedAt,
		UpdatedAt:           dm.UpdatedAt,
	}
	for _, it := range dm.Items {
		r.Items = append(r.Items, MaterialRequestItem{
			ID:          it.ID,
			ItemCode:    it.ItemCode,
			Description: it.Description,
			UOM:         it.UOM,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Remarks:     it.Remarks,
			IsNew:       it.IsNew,
		})
	}
	return r
}

func FromDataModelSlice(dms []*requestDatamodel.MaterialRequest) []*MaterialRequest {
	result := make([]*MaterialRequest, len(dms))
	for i, dm := range dms {
		result[i] = FromDataModel(dm)
	}
	return result
}
