package request

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ItemDTO struct {
	ItemCode    string  `json:"item_code"`
	Description string  `json:"description" validate:"required"`
	UOM         string  `json:"uom" validate:"required"`
	Quantity    float64 `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price"`
	Remarks     string  `json:"remarks"`
	IsNew       bool    `json:"is_new"`
}

type CreateRequestDTO struct {
	Series         string    `json:"series" validate:"required,oneof=PO JO"`
	Type           string    `json:"type" validate:"required,oneof=ITEM SERVICE"`
	DatePrepared   time.Time `json:"date_prepared"`
	DateRequired   time.Time `json:"date_required" validate:"required"`
	BusinessUnitID int64     `json:"business_unit_id" validate:"required"`
	DepartmentID   *int64    `json:"department_id"`
	ChargeTo       string    `json:"charge_to"`
	Purpose        string    `json:"purpose"`
	Remarks        string    `json:"remarks"`
	DeliverTo      string    `json:"deliver_to"`
	Freight        float64   `json:"freight"`
	Discount       float64   `json:"discount"`
	Items          []ItemDTO `json:"items" validate:"required,min=1"`
}

// UpdateRequestDTO carries the same shape as create; edits replace the item
// set wholesale rather than patching individual rows.
type UpdateRequestDTO struct {
	Series       string    `json:"series" validate:"required,oneof=PO JO"`
	Type         string    `json:"type" validate:"required,oneof=ITEM SERVICE"`
	DatePrepared time.Time `json:"date_prepared"`
	DateRequired time.Time `json:"date_required" validate:"required"`
	DepartmentID *int64    `json:"department_id"`
	ChargeTo     string    `json:"charge_to"`
	Purpose      string    `json:"purpose"`
	Remarks      string    `json:"remarks"`
	DeliverTo    string    `json:"deliver_to"`
	Freight      float64   `json:"freight"`
	Discount     float64   `json:"discount"`
	Items        []ItemDTO `json:"items" validate:"required,min=1"`
}

type DecisionDTO struct {
	Decision string `json:"decision" validate:"required,oneof=APPROVED DISAPPROVED"`
}

type PostRequestDTO struct {
	ConfirmationNo string `json:"confirmation_no"`
}

type ReceiveRequestDTO struct {
	SupplierBPCode      string `json:"supplier_bp_code"`
	SupplierName        string `json:"supplier_name"`
	PurchaseOrderNumber string `json:"purchase_order_number"`
}

func (dto CreateRequestDTO) Validate() error {
	if !IsValidSeries(dto.Series) {
		return fmt.Errorf("series: must be %s or %s", SeriesPurchaseOrder, SeriesJobOrder)
	}
	if !IsValidType(dto.Type) {
		return fmt.Errorf("type: must be %s or %s", TypeItem, TypeService)
	}
	if dto.BusinessUnitID <= 0 {
		return fmt.Errorf("business_unit_id: business unit is required")
	}
	if dto.DateRequired.IsZero() {
		return fmt.Errorf("date_required: date required is required")
	}
	if dto.Freight < 0 {
		return fmt.Errorf("freight: must not be negative")
	}
	if dto.Discount < 0 {
		return fmt.Errorf("discount: must not be negative")
	}
	return validateItems(dto.Items)
}

func (dto UpdateRequestDTO) Validate() error {
	if !IsValidSeries(dto.Series) {
		return fmt.Errorf("series: must be %s or %s", SeriesPurchaseOrder, SeriesJobOrder)
	}
	if !IsValidType(dto.Type) {
		return fmt.Errorf("type: must be %s or %s", TypeItem, TypeService)
	}
	if dto.DateRequired.IsZero() {
		return fmt.Errorf("date_required: date required is required")
	}
	if dto.Freight < 0 {
		return fmt.Errorf("freight: must not be negative")
	}
	if dto.Discount < 0 {
		return fmt.Errorf("discount: must not be negative")
	}
	return validateItems(dto.Items)
}

func (dto DecisionDTO) Validate() error {
	if dto.Decision != ApprovalApproved && dto.Decision != ApprovalDisapproved {
		return ErrInvalidDecision
	}
	return nil
}

// validateItems reports the first failing item field, matching the
// correct-and-retry error style of the rest of the payload checks.
func validateItems(items []ItemDTO) error {
	if len(items) == 0 {
		return fmt.Errorf("items: at least one item is required")
	}
	for i, it := range items {
		if it.Description == "" {
			return fmt.Errorf("items[%d].description: description is required", i)
		}
		if it.UOM == "" {
			return fmt.Errorf("items[%d].uom: unit of measure is required", i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("items[%d].quantity: must be greater than zero", i)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("items[%d].unit_price: must not be negative", i)
		}
		if !it.IsNew && it.ItemCode == "" {
			return fmt.Errorf("items[%d].item_code: item code is required for existing items", i)
		}
	}
	return nil
}

// buildItems converts payload items to domain items with the denormalized
// per-line totals populated.
func buildItems(dtos []ItemDTO) []MaterialRequestItem {
	items := make([]MaterialRequestItem, 0, len(dtos))
	for _, d := range dtos {
		it := MaterialRequestItem{
			Description: d.Description,
			UOM:         d.UOM,
			Quantity:    decimal.NewFromFloat(d.Quantity),
			IsNew:       d.IsNew,
		}
		if d.ItemCode != "" {
			code := d.ItemCode
			it.ItemCode = &code
		}
		if d.UnitPrice > 0 {
			price := decimal.NewFromFloat(d.UnitPrice)
			it.UnitPrice = &price
		}
		if d.Remarks != "" {
			remarks := d.Remarks
			it.Remarks = &remarks
		}
		it.TotalPrice = LineTotal(it)
		items = append(items, it)
	}
	return items
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
