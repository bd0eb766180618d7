package request

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/materialflow/mrs-management/internal/auth"
	"github.com/materialflow/mrs-management/internal/transport"
	"github.com/materialflow/mrs-management/pkg/logger"
)

type ServiceAPI interface {
	Create(actor Actor, dto CreateRequestDTO) (*MaterialRequest, error)
	Update(actor Actor, id int64, dto UpdateRequestDTO) (*MaterialRequest, error)
	Delete(actor Actor, id int64) error
	SubmitForApproval(actor Actor, id int64) (*MaterialRequest, error)
	ProcessRecommendingApproval(actor Actor, id int64, dto DecisionDTO) (*MaterialRequest, error)
	ProcessFinalApproval(actor Actor, id int64, dto DecisionDTO) (*MaterialRequest, error)
	MarkAsPosted(actor Actor, id int64, dto PostRequestDTO) (*MaterialRequest, error)
	MarkAsReceived(actor Actor, id int64, dto ReceiveRequestDTO) (*MaterialRequest, error)
	Cancel(actor Actor, id int64) (*MaterialRequest, error)
	ReturnForEdit(actor Actor, id int64) (*MaterialRequest, error)
	GetByID(actor Actor, id int64) (*MaterialRequest, error)
	ListMine(actor Actor, limit, offset int) ([]*MaterialRequest, error)
	ListByBusinessUnit(actor Actor, businessUnitID int64, limit, offset int) ([]*MaterialRequest, error)
	ListPendingApprovals(actor Actor) ([]*MaterialRequest, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto CreateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.Service.Create(actor, dto)
	if err != nil {
		h.Logger.Error("CreateRequest: service error", "error", err)
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "material request created", req)
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	req, err := h.Service.GetByID(actor, id)
	if err != nil {
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", req)
}

func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto UpdateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.Service.Update(actor, id, dto)
	if err != nil {
		h.Logger.Error("UpdateRequest: service error", "error", err, "request_id", id)
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "material request updated", req)
}

func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(actor, id); err != nil {
		h.Logger.Error("DeleteRequest: service error", "error", err, "request_id", id)
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "material request deleted", nil)
}

func (h *Handler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "material request submitted for approval", h.Service.SubmitForApproval)
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "material request cancelled", h.Service.Cancel)
}

func (h *Handler) ReturnRequestForEdit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "material request returned for edit", h.Service.ReturnForEdit)
}

func (h *Handler) RecommendingApproval(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, h.Service.ProcessRecommendingApproval)
}

func (h *Handler) FinalApproval(w http.ResponseWriter, r *http.Request) {
	h.decision(w, r, h.Service.ProcessFinalApproval)
}

func (h *Handler) PostRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto PostRequestDTO
	if r.Body != nil {
		// Posting without a confirmation number is allowed; an empty body is fine.
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	req, err := h.Service.MarkAsPosted(actor, id, dto)
	if err != nil {
		h.Logger.Error("PostRequest: service error", "error", err, "request_id", id)
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "material request posted", req)
}

func (h *Handler) ReceiveRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto ReceiveRequestDTO
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&dto)
	}

	req, err := h.Service.MarkAsReceived(actor, id, dto)
	if err != nil {
		h.Logger.Error("ReceiveRequest: service error", "error", err, "request_id", id)
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "material request received", req)
}

func (h *Handler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	limit, offset := transport.Pagination(r, 20, 100)
	requests, err := h.Service.ListMine(actor, limit, offset)
	if err != nil {
		h.Logger.Error("ListMyRequests: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list material requests")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", requests)
}

func (h *Handler) ListRequestsByBusinessUnit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	unitStr := r.URL.Query().Get("business_unit_id")
	businessUnitID, err := strconv.ParseInt(unitStr, 10, 64)
	if err != nil || businessUnitID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "business_unit_id is required")
		return
	}

	limit, offset := transport.Pagination(r, 20, 100)
	requests, err := h.Service.ListByBusinessUnit(actor, businessUnitID, limit, offset)
	if err != nil {
		h.Logger.Error("ListRequestsByBusinessUnit: service error", "error", err)
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", requests)
}

func (h *Handler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	requests, err := h.Service.ListPendingApprovals(actor)
	if err != nil {
		h.Logger.Error("ListPendingApprovals: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list pending approvals")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", requests)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, message string,
	op func(Actor, int64) (*MaterialRequest, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	req, err := op(actor, id)
	if err != nil {
		h.Logger.Error("request transition failed", "error", err, "request_id", id)
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, message, req)
}

func (h *Handler) decision(w http.ResponseWriter, r *http.Request,
	op func(Actor, int64, DecisionDTO) (*MaterialRequest, error)) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := op(actor, id, dto)
	if err != nil {
		h.Logger.Error("approval decision failed", "error", err, "request_id", id)
		h.writeRequestError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "decision recorded", req)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	identity, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return Actor{}, false
	}
	return Actor{ID: identity.ID, Role: identity.Role, DepartmentID: identity.DepartmentID}, true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeRequestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRequestNotFound):
		h.WriteError(w, http.StatusNotFound, "material request not found")
	case errors.Is(err, ErrUnknownBusinessUnit), errors.Is(err, ErrUnknownDepartment):
		h.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotAuthorized), errors.Is(err, ErrNotAssignedApprover):
		h.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNoRecommendingApprover):
		h.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidState):
		h.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidDecision):
		h.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.HandleServiceError(w, err)
	}
}
