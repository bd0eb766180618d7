package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type MaterialRequest struct {
	ID             int64           `gorm:"primaryKey"`
	DocNo          string          `gorm:"column:doc_no;uniqueIndex;not null"`
	Series         string          `gorm:"column:series;not null"`
	Type           string          `gorm:"column:type;not null"`
	Status         string          `gorm:"column:status;not null;default:DRAFT"`
	DatePrepared   time.Time       `gorm:"column:date_prepared;not null"`
	DateRequired   time.Time       `gorm:"column:date_required;not null"`
	BusinessUnitID int64           `gorm:"column:business_unit_id;not null"`
	DepartmentID   *int64          `gorm:"column:department_id"`
	ChargeTo       *string         `gorm:"column:charge_to"`
	Purpose        *string         `gorm:"column:purpose"`
	Remarks        *string         `gorm:"column:remarks"`
	DeliverTo      *string         `gorm:"column:deliver_to"`
	Freight        decimal.Decimal `gorm:"column:freight;type:decimal(18,4);not null;default:0"`
	Discount       decimal.Decimal `gorm:"column:discount;type:decimal(18,4);not null;default:0"`
	Total          decimal.Decimal `gorm:"column:total;type:decimal(18,4);not null;default:0"`
	ConfirmationNo *string         `gorm:"column:confirmation_no"`

	RequestedByID       int64      `gorm:"column:requested_by_id;not null"`
	RecApproverID       *int64     `gorm:"column:rec_approver_id"`
	RecApprovalStatus   *string    `gorm:"column:rec_approval_status"`
	RecApprovalDate     *time.Time `gorm:"column:rec_approval_date"`
	FinalApproverID     *int64     `gorm:"column:final_approver_id"`
	FinalApprovalStatus *string    `gorm:"column:final_approval_status"`
	FinalApprovalDate   *time.Time `gorm:"column:final_approval_date"`

	DateApproved *time.Time `gorm:"column:date_approved"`
	DatePosted   *time.Time `gorm:"column:date_posted"`
	DateReceived *time.Time `gorm:"column:date_received"`

	SupplierBPCode      *string `gorm:"column:supplier_bp_code"`
	SupplierName        *string `gorm:"column:supplier_name"`
	PurchaseOrderNumber *string `gorm:"column:purchase_order_number"`

	Items []MaterialRequestItem `gorm:"foreignKey:MaterialRequestID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (MaterialRequest) TableName() string {
	return "material_requests"
}

type MaterialRequestItem struct {
	ID                int64            `gorm:"primaryKey"`
	MaterialRequestID int64            `gorm:"column:material_request_id;not null"`
	ItemCode          *string          `gorm:"column:item_code"`
	Description       string           `gorm:"column:description;not null"`
	UOM               string           `gorm:"column:uom;not null"`
	Quantity          decimal.Decimal  `gorm:"column:quantity;type:decimal(18,4);not null"`
	UnitPrice         *decimal.Decimal `gorm:"column:unit_price;type:decimal(18,4)"`
	TotalPrice        decimal.Decimal  `gorm:"column:total_price;type:decimal(18,4);not null;default:0"`
	Remarks           *string          `gorm:"column:remarks"`
	IsNew             bool             `gorm:"column:is_new;default:false"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (MaterialRequestItem) TableName() string {
	return "material_request_items"
}
