package approver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/materialflow/mrs-management/internal/transport"
	"github.com/materialflow/mrs-management/pkg/logger"
)

type ServiceAPI interface {
	Assign(dto AssignApproverDTO) (*DepartmentApprover, error)
	SetActive(id int64, active bool) (*DepartmentApprover, error)
	Remove(id int64) error
	ListByDepartment(departmentID int64) ([]*DepartmentApprover, error)
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

func (h *Handler) AssignApprover(w http.ResponseWriter, r *http.Request) {
	var dto AssignApproverDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	assignment, err := h.Service.Assign(dto)
	if err != nil {
		h.Logger.Error("AssignApprover: service error", "error", err)
		h.writeApproverError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "approver assigned", assignment)
}

func (h *Handler) SetApproverActive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto SetActiveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assignment, err := h.Service.SetActive(id, dto.IsActive)
	if err != nil {
		h.Logger.Error("SetApproverActive: service error", "error", err, "assignment_id", id)
		h.writeApproverError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "approver assignment updated", assignment)
}

func (h *Handler) RemoveApprover(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Remove(id); err != nil {
		h.Logger.Error("RemoveApprover: service error", "error", err, "assignment_id", id)
		h.writeApproverError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "approver assignment removed", nil)
}

func (h *Handler) ListDepartmentApprovers(w http.ResponseWriter, r *http.Request) {
	deptStr := chi.URLParam(r, "departmentID")
	departmentID, err := strconv.ParseInt(deptStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid department ID")
		return
	}

	assignments, err := h.Service.ListByDepartment(departmentID)
	if err != nil {
		h.Logger.Error("ListDepartmentApprovers: service error", "error", err, "department_id", departmentID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list approvers")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", assignments)
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

func (h *Handler) writeApproverError(w http.ResponseWriter, err error) {
	switch err {
	case ErrAssignmentNotFound:
		h.WriteError(w, http.StatusNotFound, "approver assignment not found")
	case ErrDuplicateAssignment:
		h.WriteError(w, http.StatusConflict, err.Error())
	case ErrInvalidApproverType:
		h.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.HandleServiceError(w, err)
	}
}
