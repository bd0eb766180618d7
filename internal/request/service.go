package request

import (
	"context"
	"log/slog"
	"time"

	"github.com/materialflow/mrs-management/internal/approver"
	"github.com/materialflow/mrs-management/internal/core/events"
	"github.com/materialflow/mrs-management/internal/user"
	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create persists the header and its items in one transaction.
	Create(req *MaterialRequest) error
	// GetByID loads the request with its items.
	GetByID(id int64) (*MaterialRequest, error)
	// Update persists header fields only; items are untouched.
	Update(req *MaterialRequest) error
	// ReplaceItems deletes the existing item set, inserts the new one, and
	// saves the header in a single transaction.
	ReplaceItems(req *MaterialRequest) error
	// Delete removes the request and its items.
	Delete(id int64) error
	ListByRequester(userID int64, limit, offset int) ([]*MaterialRequest, error)
	ListByBusinessUnit(businessUnitID int64, limit, offset int) ([]*MaterialRequest, error)
	// ListPendingForApprover returns requests awaiting the given user's
	// decision at either approval stage.
	ListPendingForApprover(userID int64) ([]*MaterialRequest, error)
	LatestDocNo(series, yearToken string) (string, bool, error)
}

// ApproverResolver finds the acting approver of a type for a department.
type ApproverResolver interface {
	Resolve(departmentID int64, approverType string) (userID int64, found bool, err error)
}

// OrgUnitReader validates foreign keys on create/update.
type OrgUnitReader interface {
	BusinessUnitExists(id int64) (bool, error)
	DepartmentExists(id int64) (bool, error)
}

type Service struct {
	repo     Repository
	resolver ApproverResolver
	orgUnits OrgUnitReader
	docNo    *DocNoGenerator
	events   *events.EventBus
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, resolver ApproverResolver, orgUnits OrgUnitReader, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		orgUnits: orgUnits,
		docNo:    NewDocNoGenerator(repo),
		events:   bus,
		logger:   logger,
		now:      time.Now,
	}
}

// Create inserts a new DRAFT request owned by the actor, with the document
// number generated and the total computed server-side.
func (s *Service) Create(actor Actor, dto CreateRequestDTO) (*MaterialRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.orgUnits.BusinessUnitExists(dto.BusinessUnitID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUnknownBusinessUnit
	}

	// The actor's home department is the default when the payload names none.
	departmentID := dto.DepartmentID
	if departmentID == nil {
		departmentID = actor.DepartmentID
	}
	if departmentID != nil {
		exists, err := s.orgUnits.DepartmentExists(*departmentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrUnknownDepartment
		}
	}

	docNo, err := s.docNo.Next(dto.Series)
	if err != nil {
		s.logger.Error("failed to generate document number", "error", err, "series", dto.Series)
		return nil, err
	}

	items := buildItems(dto.Items)
	freight := decimal.NewFromFloat(dto.Freight)
	discount := decimal.NewFromFloat(dto.Discount)

	datePrepared := dto.DatePrepared
	if datePrepared.IsZero() {
		datePrepared = s.now()
	}

	req := &MaterialRequest{
		DocNo:          docNo,
		Series:         dto.Series,
		Type:           dto.Type,
		Status:         StatusDraft,
		DatePrepared:   datePrepared,
		DateRequired:   dto.DateRequired,
		BusinessUnitID: dto.BusinessUnitID,
		DepartmentID:   departmentID,
		ChargeTo:       optionalString(dto.ChargeTo),
		Purpose:        optionalString(dto.Purpose),
		Remarks:        optionalString(dto.Remarks),
		DeliverTo:      optionalString(dto.DeliverTo),
		Freight:        freight,
		Discount:       discount,
		Total:          ComputeTotal(items, freight, discount),
		RequestedByID:  actor.ID,
		Items:          items,
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create material request", "error", err, "doc_no", docNo)
		return nil, err
	}

	s.logger.Info("material request created",
		"request_id", req.ID, "doc_no", req.DocNo, "requested_by", actor.ID)
	s.publish(events.EventTypeRequestCreated, req, actor.ID)
	return req, nil
}

// Update replaces the item set wholesale, recomputes the total, and forces
// the status back to DRAFT. Only the owner or an admin/manager may edit, and
// only while the request is DRAFT or FOR_EDIT.
func (s *Service) Update(actor Actor, id int64, dto UpdateRequestDTO) (*MaterialRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !req.canManage(actor) {
		return nil, ErrNotAuthorized
	}
	if !req.Editable() {
		return nil, stateError("edit", req.Status)
	}

	if dto.DepartmentID != nil {
		exists, err := s.orgUnits.DepartmentExists(*dto.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrUnknownDepartment
		}
		req.DepartmentID = dto.DepartmentID
	}

	items := buildItems(dto.Items)
	freight := decimal.NewFromFloat(dto.Freight)
	discount := decimal.NewFromFloat(dto.Discount)

	req.Series = dto.Series
	req.Type = dto.Type
	if !dto.DatePrepared.IsZero() {
		req.DatePrepared = dto.DatePrepared
	}
	req.DateRequired = dto.DateRequired
	req.ChargeTo = optionalString(dto.ChargeTo)
	req.Purpose = optionalString(dto.Purpose)
	req.Remarks = optionalString(dto.Remarks)
	req.DeliverTo = optionalString(dto.DeliverTo)
	req.Freight = freight
	req.Discount = discount
	req.Total = ComputeTotal(items, freight, discount)
	req.Items = items
	req.Status = StatusDraft

	// Any prior approval routing is void once the document changes; the next
	// submission resolves approvers afresh.
	req.RecApproverID = nil
	req.RecApprovalStatus = nil
	req.RecApprovalDate = nil
	req.FinalApproverID = nil
	req.FinalApprovalStatus = nil
	req.FinalApprovalDate = nil

	if err := s.repo.ReplaceItems(req); err != nil {
		s.logger.Error("failed to update material request", "error", err, "request_id", id)
		return nil, err
	}

	s.logger.Info("material request updated", "request_id", req.ID, "doc_no", req.DocNo, "actor_id", actor.ID)
	return req, nil
}

// Delete hard-deletes a DRAFT request and its items.
func (s *Service) Delete(actor Actor, id int64) error {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if !req.canManage(actor) {
		return ErrNotAuthorized
	}
	if req.Status != StatusDraft {
		return stateError("delete", req.Status)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete material request", "error", err, "request_id", id)
		return err
	}

	s.logger.Info("material request deleted", "request_id", id, "doc_no", req.DocNo, "actor_id", actor.ID)
	return nil
}

// SubmitForApproval routes a DRAFT request to its department's recommending
// approver. It fails, leaving the request in DRAFT, when the department has
// no active recommending approver.
func (s *Service) SubmitForApproval(actor Actor, id int64) (*MaterialRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !req.IsOwner(actor) {
		return nil, ErrNotAuthorized
	}
	if req.Status != StatusDraft {
		return nil, stateError("submit", req.Status)
	}
	if req.DepartmentID == nil {
		return nil, ErrNoRecommendingApprover
	}

	approverID, found, err := s.resolver.Resolve(*req.DepartmentID, approver.TypeRecommending)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoRecommendingApprover
	}

	pending := ApprovalPending
	req.Status = StatusForRecApproval
	req.RecApproverID = &approverID
	req.RecApprovalStatus = &pending

	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to submit material request", "error", err, "request_id", id)
		return nil, err
	}

	s.logger.Info("material request submitted for approval",
		"request_id", req.ID, "doc_no", req.DocNo, "rec_approver_id", approverID)
	s.publish(events.EventTypeRequestSubmitted, req, actor.ID)
	return req, nil
}

// ProcessRecommendingApproval records the first-stage decision. On approval
// the request advances to the final stage, or directly to FINAL_APPROVED
// when the department has no active final approver. The skip path does not
// post; posting then requires an explicit MarkAsPosted.
func (s *Service) ProcessRecommendingApproval(actor Actor, id int64, dto DecisionDTO) (*MaterialRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusForRecApproval {
		return nil, stateError("process recommending approval for", req.Status)
	}
	if !req.isRecApprover(actor) {
		return nil, ErrNotAssignedApprover
	}

	now := s.now()
	decision := dto.Decision
	req.RecApprovalStatus = &decision
	req.RecApprovalDate = &now

	if decision == ApprovalDisapproved {
		req.Status = StatusDisapproved
		if err := s.repo.Update(req); err != nil {
			return nil, err
		}
		s.logger.Info("material request disapproved at recommending stage",
			"request_id", req.ID, "doc_no", req.DocNo, "approver_id", actor.ID)
		s.publish(events.EventTypeRequestDisapproved, req, actor.ID)
		return req, nil
	}

	finalApproverID, found, err := s.resolver.Resolve(*req.DepartmentID, approver.TypeFinal)
	if err != nil {
		return nil, err
	}

	if found {
		pending := ApprovalPending
		req.Status = StatusForFinalApproval
		req.FinalApproverID = &finalApproverID
		req.FinalApprovalStatus = &pending
	} else {
		// No final approver: the recommending decision is also the final one.
		approved := ApprovalApproved
		req.Status = StatusFinalApproved
		req.FinalApproverID = &actor.ID
		req.FinalApprovalStatus = &approved
		req.FinalApprovalDate = &now
		req.DateApproved = &now
	}

	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to record recommending approval", "error", err, "request_id", id)
		return nil, err
	}

	s.logger.Info("material request recommended",
		"request_id", req.ID, "doc_no", req.DocNo, "status", req.Status, "approver_id", actor.ID)
	s.publish(events.EventTypeRequestRecommended, req, actor.ID)
	return req, nil
}

// ProcessFinalApproval records the second-stage decision. Approval advances
// the request straight to POSTED, setting both approval and posting
// timestamps in one write so no FINAL_APPROVED-without-POSTED state is
// observable.
func (s *Service) ProcessFinalApproval(actor Actor, id int64, dto DecisionDTO) (*MaterialRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusForFinalApproval {
		return nil, stateError("process final approval for", req.Status)
	}
	if !req.isFinalApprover(actor) {
		return nil, ErrNotAssignedApprover
	}

	now := s.now()
	decision := dto.Decision
	req.FinalApprovalStatus = &decision
	req.FinalApprovalDate = &now

	if decision == ApprovalDisapproved {
		req.Status = StatusDisapproved
		if err := s.repo.Update(req); err != nil {
			return nil, err
		}
		s.logger.Info("material request disapproved at final stage",
			"request_id", req.ID, "doc_no", req.DocNo, "approver_id", actor.ID)
		s.publish(events.EventTypeRequestDisapproved, req, actor.ID)
		return req, nil
	}

	req.Status = StatusPosted
	req.DateApproved = &now
	req.DatePosted = &now

	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to record final approval", "error", err, "request_id", id)
		return nil, err
	}

	s.logger.Info("material request approved and posted",
		"request_id", req.ID, "doc_no", req.DocNo, "approver_id", actor.ID)
	s.publish(events.EventTypeRequestApproved, req, actor.ID)
	s.publish(events.EventTypeRequestPosted, req, actor.ID)
	return req, nil
}

// MarkAsPosted posts a FINAL_APPROVED request. This is the explicit path for
// requests that reached FINAL_APPROVED by skipping the final stage.
func (s *Service) MarkAsPosted(actor Actor, id int64, dto PostRequestDTO) (*MaterialRequest, error) {
	if !user.CanPost(actor.Role) {
		return nil, ErrNotAuthorized
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusFinalApproved {
		return nil, stateError("post", req.Status)
	}

	now := s.now()
	req.Status = StatusPosted
	req.DatePosted = &now
	if dto.ConfirmationNo != "" {
		req.ConfirmationNo = &dto.ConfirmationNo
	}

	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to post material request", "error", err, "request_id", id)
		return nil, err
	}

	s.logger.Info("material request posted", "request_id", req.ID, "doc_no", req.DocNo, "actor_id", actor.ID)
	s.publish(events.EventTypeRequestPosted, req, actor.ID)
	return req, nil
}

// MarkAsReceived closes the workflow for a POSTED request.
func (s *Service) MarkAsReceived(actor Actor, id int64, dto ReceiveRequestDTO) (*MaterialRequest, error) {
	if !user.CanReceive(actor.Role) {
		return nil, ErrNotAuthorized
	}

	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPosted {
		return nil, stateError("receive", req.Status)
	}

	now := s.now()
	req.Status = StatusReceived
	req.DateReceived = &now
	if dto.SupplierBPCode != "" {
		req.SupplierBPCode = &dto.SupplierBPCode
	}
	if dto.SupplierName != "" {
		req.SupplierName = &dto.SupplierName
	}
	if dto.PurchaseOrderNumber != "" {
		req.PurchaseOrderNumber = &dto.PurchaseOrderNumber
	}

	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to receive material request", "error", err, "request_id", id)
		return nil, err
	}

	s.logger.Info("material request received", "request_id", req.ID, "doc_no", req.DocNo, "actor_id", actor.ID)
	s.publish(events.EventTypeRequestReceived, req, actor.ID)
	return req, nil
}

// Cancel withdraws a request before any approval decision is recorded.
func (s *Service) Cancel(actor Actor, id int64) (*MaterialRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !req.canManage(actor) {
		return nil, ErrNotAuthorized
	}
	if req.Status != StatusDraft && req.Status != StatusForRecApproval {
		return nil, stateError("cancel", req.Status)
	}

	req.Status = StatusCancelled
	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to cancel material request", "error", err, "request_id", id)
		return nil, err
	}

	s.logger.Info("material request cancelled", "request_id", req.ID, "doc_no", req.DocNo, "actor_id", actor.ID)
	s.publish(events.EventTypeRequestCancelled, req, actor.ID)
	return req, nil
}

// ReturnForEdit sends a pending request back to the requester. Only the
// approver the request is currently waiting on may return it.
func (s *Service) ReturnForEdit(actor Actor, id int64) (*MaterialRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case StatusForRecApproval:
		if !req.isRecApprover(actor) {
			return nil, ErrNotAssignedApprover
		}
	case StatusForFinalApproval:
		if !req.isFinalApprover(actor) {
			return nil, ErrNotAssignedApprover
		}
	default:
		return nil, stateError("return", req.Status)
	}

	req.Status = StatusForEdit
	if err := s.repo.Update(req); err != nil {
		s.logger.Error("failed to return material request for edit", "error", err, "request_id", id)
		return nil, err
	}

	s.logger.Info("material request returned for edit",
		"request_id", req.ID, "doc_no", req.DocNo, "actor_id", actor.ID)
	s.publish(events.EventTypeRequestForEdit, req, actor.ID)
	return req, nil
}

// GetByID loads a request visible to the actor: the owner, either assigned
// approver, or a role with cross-department visibility.
func (s *Service) GetByID(actor Actor, id int64) (*MaterialRequest, error) {
	req, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !req.canView(actor) {
		return nil, ErrNotAuthorized
	}
	return req, nil
}

// ListMine returns the actor's own requests, newest first.
func (s *Service) ListMine(actor Actor, limit, offset int) ([]*MaterialRequest, error) {
	return s.repo.ListByRequester(actor.ID, limit, offset)
}

// ListByBusinessUnit returns all requests in a business unit; restricted to
// roles with cross-department visibility.
func (s *Service) ListByBusinessUnit(actor Actor, businessUnitID int64, limit, offset int) ([]*MaterialRequest, error) {
	if !user.CanViewAll(actor.Role) {
		return nil, ErrNotAuthorized
	}
	return s.repo.ListByBusinessUnit(businessUnitID, limit, offset)
}

// ListPendingApprovals is the actor's approval inbox: requests awaiting
// their decision at either stage.
func (s *Service) ListPendingApprovals(actor Actor) ([]*MaterialRequest, error) {
	return s.repo.ListPendingForApprover(actor.ID)
}

func (s *Service) publish(eventType string, req *MaterialRequest, actorID int64) {
	if s.events == nil {
		return
	}
	event := events.NewRequestLifecycleEvent(eventType, req.ID, req.DocNo, req.Status, actorID)
	if err := s.events.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish lifecycle event", "error", err, "event_type", eventType)
	}
}
