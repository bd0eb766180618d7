package orgunit

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
	CreateBusinessUnit(dto CreateBusinessUnitDTO) (*BusinessUnit, error)
	GetBusinessUnit(id int64) (*BusinessUnit, error)
	ListBusinessUnits() ([]*BusinessUnit, error)
	UpdateBusinessUnit(id int64, dto UpdateBusinessUnitDTO) (*BusinessUnit, error)
	DeleteBusinessUnit(id int64) error

	CreateDepartment(dto CreateDepartmentDTO) (*Department, error)
	GetDepartment(id int64) (*Department, error)
	ListDepartments(unitID int64) ([]*Department, error)
	UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error)
	DeleteDepartment(id int64) error
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

func (h *Handler) CreateBusinessUnit(w http.ResponseWriter, r *http.Request) {
	var dto CreateBusinessUnitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	unit, err := h.Service.CreateBusinessUnit(dto)
	if err != nil {
		h.Logger.Error("CreateBusinessUnit: service error", "error", err)
		h.writeOrgUnitError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "business unit created", unit)
}

func (h *Handler) GetBusinessUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	unit, err := h.Service.GetBusinessUnit(id)
	if err != nil {
		h.writeOrgUnitError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", unit)
}

func (h *Handler) ListBusinessUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.Service.ListBusinessUnits()
	if err != nil {
		h.Logger.Error("ListBusinessUnits: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list business units")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", units)
}

func (h *Handler) UpdateBusinessUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto UpdateBusinessUnitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	unit, err := h.Service.UpdateBusinessUnit(id, dto)
	if err != nil {
		h.Logger.Error("UpdateBusinessUnit: service error", "error", err, "unit_id", id)
		h.writeOrgUnitError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "business unit updated", unit)
}

func (h *Handler) DeleteBusinessUnit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteBusinessUnit(id); err != nil {
		h.Logger.Error("DeleteBusinessUnit: service error", "error", err, "unit_id", id)
		h.writeOrgUnitError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "business unit deleted", nil)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	dept, err := h.Service.CreateDepartment(dto)
	if err != nil {
		h.Logger.Error("CreateDepartment: service error", "error", err)
		h.writeOrgUnitError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "department created", dept)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	dept, err := h.Service.GetDepartment(id)
	if err != nil {
		h.writeOrgUnitError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", dept)
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	var unitID int64
	if s := r.URL.Query().Get("business_unit_id"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			unitID = v
		}
	}

	departments, err := h.Service.ListDepartments(unitID)
	if err != nil {
		h.Logger.Error("ListDepartments: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to list departments")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "ok", departments)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto UpdateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.UpdateDepartment(id, dto)
	if err != nil {
		h.Logger.Error("UpdateDepartment: service error", "error", err, "department_id", id)
		h.writeOrgUnitError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "department updated", dept)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteDepartment(id); err != nil {
		h.Logger.Error("DeleteDepartment: service error", "error", err, "department_id", id)
		h.writeOrgUnitError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "department deleted", nil)
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

func (h *Handler) writeOrgUnitError(w http.ResponseWriter, err error) {
	switch err {
	case ErrBusinessUnitNotFound:
		h.WriteError(w, http.StatusNotFound, "business unit not found")
	case ErrDepartmentNotFound:
		h.WriteError(w, http.StatusNotFound, "department not found")
	case ErrDuplicateCode:
		h.WriteError(w, http.StatusConflict, "code already in use")
	case ErrUnitHasDepartments, ErrUnitHasRequests,
		ErrDepartmentHasUsers, ErrDepartmentHasRequests, ErrDepartmentHasApprovers:
		h.WriteError(w, http.StatusConflict, err.Error())
	default:
		h.HandleServiceError(w, err)
	}
}
