package request_test

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/materialflow/mrs-management/internal/approver"
	"github.com/materialflow/mrs-management/internal/request"
)

func TestMaterialRequest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Material Request Suite")
}

// Mock repository for testing
type mockRequestRepository struct {
	requests    map[int64]*request.MaterialRequest
	nextID      int64
	latestDocNo string
	createError error
	updateError error
}

func newMockRequestRepository() *mockRequestRepository {
	return &mockRequestRepository{
		requests: make(map[int64]*request.MaterialRequest),
		nextID:   1,
	}
}

func (m *mockRequestRepository) Create(req *request.MaterialRequest) error {
	if m.createError != nil {
		return m.createError
	}
	req.ID = m.nextID
	m.nextID++
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	m.requests[req.ID] = req
	return nil
}

func (m *mockRequestRepository) GetByID(id int64) (*request.MaterialRequest, error) {
	req, exists := m.requests[id]
	if !exists {
		return nil, request.ErrRequestNotFound
	}
	stored := *req
	return &stored, nil
}

func (m *mockRequestRepository) Update(req *request.MaterialRequest) error {
	if m.updateError != nil {
		return m.updateError
	}
	if _, exists := m.requests[req.ID]; !exists {
		return request.ErrRequestNotFound
	}
	stored := *req
	m.requests[req.ID] = &stored
	return nil
}

func (m *mockRequestRepository) ReplaceItems(req *request.MaterialRequest) error {
	return m.Update(req)
}

func (m *mockRequestRepository) Delete(id int64) error {
	if _, exists := m.requests[id]; !exists {
		return request.ErrRequestNotFound
	}
	delete(m.requests, id)
	return nil
}

func (m *mockRequestRepository) ListByRequester(userID int64, limit, offset int) ([]*request.MaterialRequest, error) {
	var result []*request.MaterialRequest
	for _, req := range m.requests {
		if req.RequestedByID == userID {
			result = append(result, req)
		}
	}
	return result, nil
}

func (m *mockRequestRepository) ListByBusinessUnit(businessUnitID int64, limit, offset int) ([]*request.MaterialRequest, error) {
	var result []*request.MaterialRequest
	for _, req := range m.requests {
		if req.BusinessUnitID == businessUnitID {
			result = append(result, req)
		}
	}
	return result, nil
}

func (m *mockRequestRepository) ListPendingForApprover(userID int64) ([]*request.MaterialRequest, error) {
	var result []*request.MaterialRequest
	for _, req := range m.requests {
		if req.Status == request.StatusForRecApproval && req.RecApproverID != nil && *req.RecApproverID == userID {
			result = append(result, req)
		}
		if req.Status == request.StatusForFinalApproval && req.FinalApproverID != nil && *req.FinalApproverID == userID {
			result = append(result, req)
		}
	}
	return result, nil
}

func (m *mockRequestRepository) LatestDocNo(series, yearToken string) (string, bool, error) {
	if m.latestDocNo == "" {
		return "", false, nil
	}
	return m.latestDocNo, true, nil
}

// Mock approver resolution keyed by department and type
type mockResolver struct {
	assignments map[string]int64
	resolveErr  error
}

func newMockResolver() *mockResolver {
	return &mockResolver{assignments: make(map[string]int64)}
}

func (m *mockResolver) set(departmentID int64, approverType string, userID int64) {
	m.assignments[fmt.Sprintf("%d/%s", departmentID, approverType)] = userID
}

func (m *mockResolver) clear(departmentID int64, approverType string) {
	delete(m.assignments, fmt.Sprintf("%d/%s", departmentID, approverType))
}

func (m *mockResolver) Resolve(departmentID int64, approverType string) (int64, bool, error) {
	if m.resolveErr != nil {
		return 0, false, m.resolveErr
	}
	userID, ok := m.assignments[fmt.Sprintf("%d/%s", departmentID, approverType)]
	return userID, ok, nil
}

type mockOrgUnits struct {
	missingUnits map[int64]bool
	missingDepts map[int64]bool
}

func newMockOrgUnits() *mockOrgUnits {
	return &mockOrgUnits{
		missingUnits: make(map[int64]bool),
		missingDepts: make(map[int64]bool),
	}
}

func (m *mockOrgUnits) BusinessUnitExists(id int64) (bool, error) {
	return !m.missingUnits[id], nil
}

func (m *mockOrgUnits) DepartmentExists(id int64) (bool, error) {
	return !m.missingDepts[id], nil
}

var _ = Describe("RequestService", func() {
	var (
		service  *request.Service
		repo     *mockRequestRepository
		resolver *mockResolver
		orgUnits *mockOrgUnits

		departmentID int64

		owner       request.Actor
		recApprover request.Actor
		finApprover request.Actor
		admin       request.Actor
		outsider    request.Actor
		purchaser   request.Actor
		stockroom   request.Actor
		viewer      request.Actor
	)

	BeforeEach(func() {
		repo = newMockRequestRepository()
		resolver = newMockResolver()
		orgUnits = newMockOrgUnits()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = request.NewService(repo, resolver, orgUnits, nil, logger)

		departmentID = int64(10)
		owner = request.Actor{ID: 1, Role: "STAFF", DepartmentID: &departmentID}
		recApprover = request.Actor{ID: 2, Role: "STAFF", DepartmentID: &departmentID}
		finApprover = request.Actor{ID: 3, Role: "MANAGER", DepartmentID: &departmentID}
		admin = request.Actor{ID: 4, Role: "ADMIN"}
		outsider = request.Actor{ID: 5, Role: "STAFF"}
		purchaser = request.Actor{ID: 6, Role: "PURCHASER"}
		stockroom = request.Actor{ID: 7, Role: "STOCKROOM"}
		viewer = request.Actor{ID: 8, Role: "VIEWER"}

		resolver.set(departmentID, approver.TypeRecommending, recApprover.ID)
		resolver.set(departmentID, approver.TypeFinal, finApprover.ID)
	})

	validPayload := func() request.CreateRequestDTO {
		return request.CreateRequestDTO{
			Series:         request.SeriesPurchaseOrder,
			Type:           request.TypeItem,
			DateRequired:   time.Now().Add(7 * 24 * time.Hour),
			BusinessUnitID: 100,
			Freight:        10,
			Discount:       5,
			Items: []request.ItemDTO{
				{ItemCode: "IT-001", Description: "Widget", UOM: "pcs", Quantity: 2, UnitPrice: 50},
				{ItemCode: "IT-002", Description: "Gadget", UOM: "pcs", Quantity: 1, UnitPrice: 100},
			},
		}
	}

	createDraft := func() *request.MaterialRequest {
		req, err := service.Create(owner, validPayload())
		Expect(err).ToNot(HaveOccurred())
		return req
	}

	submit := func(req *request.MaterialRequest) *request.MaterialRequest {
		submitted, err := service.SubmitForApproval(owner, req.ID)
		Expect(err).ToNot(HaveOccurred())
		return submitted
	}

	Describe("Create", func() {
		It("creates a DRAFT owned by the caller with a generated document number", func() {
			req := createDraft()

			Expect(req.Status).To(Equal(request.StatusDraft))
			Expect(req.RequestedByID).To(Equal(owner.ID))
			yearToken := time.Now().Format("06")
			Expect(req.DocNo).To(Equal("PO-" + yearToken + "-00001"))
		})

		It("computes the total from items, freight, and discount", func() {
			// 2*50 + 1*100 + 10 - 5
			req := createDraft()
			Expect(req.Total.String()).To(Equal("205"))
		})

		It("defaults the department from the actor's home department", func() {
			req := createDraft()
			Expect(req.DepartmentID).ToNot(BeNil())
			Expect(*req.DepartmentID).To(Equal(departmentID))
		})

		It("stores denormalized per-item totals", func() {
			req := createDraft()
			Expect(req.Items).To(HaveLen(2))
			Expect(req.Items[0].TotalPrice.String()).To(Equal("100"))
			Expect(req.Items[1].TotalPrice.String()).To(Equal("100"))
		})

		It("rejects a payload without items", func() {
			dto := validPayload()
			dto.Items = nil
			_, err := service.Create(owner, dto)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("at least one item"))
		})

		It("rejects a non-positive quantity", func() {
			dto := validPayload()
			dto.Items[0].Quantity = 0
			_, err := service.Create(owner, dto)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("quantity"))
		})

		It("rejects an existing item without an item code", func() {
			dto := validPayload()
			dto.Items[0].ItemCode = ""
			dto.Items[0].IsNew = false
			_, err := service.Create(owner, dto)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("item_code"))
		})

		It("accepts a new item without an item code", func() {
			dto := validPayload()
			dto.Items[0].ItemCode = ""
			dto.Items[0].IsNew = true
			req, err := service.Create(owner, dto)
			Expect(err).ToNot(HaveOccurred())
			Expect(req.Items[0].ItemCode).To(BeNil())
			Expect(req.Items[0].IsNew).To(BeTrue())
		})

		It("rejects an unknown business unit", func() {
			orgUnits.missingUnits[100] = true
			_, err := service.Create(owner, validPayload())
			Expect(err).To(MatchError(request.ErrUnknownBusinessUnit))
		})

		It("rejects an invalid series", func() {
			dto := validPayload()
			dto.Series = "XX"
			_, err := service.Create(owner, dto)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("series"))
		})
	})

	Describe("SubmitForApproval", func() {
		It("routes the draft to the recommending approver", func() {
			req := createDraft()

			submitted, err := service.SubmitForApproval(owner, req.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(submitted.Status).To(Equal(request.StatusForRecApproval))
			Expect(*submitted.RecApproverID).To(Equal(recApprover.ID))
			Expect(*submitted.RecApprovalStatus).To(Equal(request.ApprovalPending))
		})

		It("fails and leaves the draft untouched when no recommending approver exists", func() {
			req := createDraft()
			resolver.clear(departmentID, approver.TypeRecommending)

			_, err := service.SubmitForApproval(owner, req.ID)

			Expect(err).To(MatchError(request.ErrNoRecommendingApprover))
			stored, _ := repo.GetByID(req.ID)
			Expect(stored.Status).To(Equal(request.StatusDraft))
			Expect(stored.RecApproverID).To(BeNil())
		})

		It("only the owner may submit", func() {
			req := createDraft()
			_, err := service.SubmitForApproval(admin, req.ID)
			Expect(err).To(MatchError(request.ErrNotAuthorized))
		})

		It("rejects submission of a non-draft request", func() {
			req := submit(createDraft())
			_, err := service.SubmitForApproval(owner, req.ID)
			Expect(err).To(MatchError(request.ErrInvalidState))
		})
	})

	Describe("ProcessRecommendingApproval", func() {
		approve := request.DecisionDTO{Decision: request.ApprovalApproved}
		disapprove := request.DecisionDTO{Decision: request.ApprovalDisapproved}

		It("advances to the final stage when the department has a final approver", func() {
			req := submit(createDraft())

			result, err := service.ProcessRecommendingApproval(recApprover, req.ID, approve)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusForFinalApproval))
			Expect(*result.FinalApproverID).To(Equal(finApprover.ID))
			Expect(*result.FinalApprovalStatus).To(Equal(request.ApprovalPending))
			Expect(*result.RecApprovalStatus).To(Equal(request.ApprovalApproved))
			Expect(result.RecApprovalDate).ToNot(BeNil())
		})

		It("skips straight to FINAL_APPROVED when no final approver exists, without posting", func() {
			req := submit(createDraft())
			resolver.clear(departmentID, approver.TypeFinal)

			result, err := service.ProcessRecommendingApproval(recApprover, req.ID, approve)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusFinalApproved))
			Expect(*result.FinalApproverID).To(Equal(recApprover.ID))
			Expect(*result.FinalApprovalStatus).To(Equal(request.ApprovalApproved))
			Expect(result.FinalApprovalDate).ToNot(BeNil())
			Expect(result.DateApproved).ToNot(BeNil())
			Expect(result.DatePosted).To(BeNil())
		})

		It("disapproval is terminal", func() {
			req := submit(createDraft())

			result, err := service.ProcessRecommendingApproval(recApprover, req.ID, disapprove)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusDisapproved))
		})

		It("rejects a caller other than the assigned approver", func() {
			req := submit(createDraft())
			_, err := service.ProcessRecommendingApproval(outsider, req.ID, approve)
			Expect(err).To(MatchError(request.ErrNotAssignedApprover))
		})

		It("rejects an unknown decision value", func() {
			req := submit(createDraft())
			_, err := service.ProcessRecommendingApproval(recApprover, req.ID, request.DecisionDTO{Decision: "MAYBE"})
			Expect(err).To(MatchError(request.ErrInvalidDecision))
		})

		It("rejects a request not awaiting recommending approval", func() {
			req := createDraft()
			_, err := service.ProcessRecommendingApproval(recApprover, req.ID, approve)
			Expect(err).To(MatchError(request.ErrInvalidState))
		})
	})

	Describe("ProcessFinalApproval", func() {
		approve := request.DecisionDTO{Decision: request.ApprovalApproved}

		pending := func() *request.MaterialRequest {
			req := submit(createDraft())
			result, err := service.ProcessRecommendingApproval(recApprover, req.ID, approve)
			Expect(err).ToNot(HaveOccurred())
			return result
		}

		It("approval advances straight to POSTED with both timestamps", func() {
			req := pending()

			result, err := service.ProcessFinalApproval(finApprover, req.ID, approve)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusPosted))
			Expect(result.DateApproved).ToNot(BeNil())
			Expect(result.DatePosted).ToNot(BeNil())
			Expect(*result.FinalApprovalStatus).To(Equal(request.ApprovalApproved))
		})

		It("disapproval is terminal", func() {
			req := pending()

			result, err := service.ProcessFinalApproval(finApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalDisapproved})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusDisapproved))
		})

		It("rejects a caller other than the assigned final approver", func() {
			req := pending()
			_, err := service.ProcessFinalApproval(recApprover, req.ID, approve)
			Expect(err).To(MatchError(request.ErrNotAssignedApprover))
		})
	})

	Describe("MarkAsPosted", func() {
		finalApproved := func() *request.MaterialRequest {
			req := submit(createDraft())
			resolver.clear(departmentID, approver.TypeFinal)
			result, err := service.ProcessRecommendingApproval(recApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusFinalApproved))
			return result
		}

		It("a purchaser posts a final-approved request", func() {
			req := finalApproved()

			result, err := service.MarkAsPosted(purchaser, req.ID, request.PostRequestDTO{ConfirmationNo: "CONF-9"})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusPosted))
			Expect(result.DatePosted).ToNot(BeNil())
			Expect(*result.ConfirmationNo).To(Equal("CONF-9"))
		})

		It("staff may not post", func() {
			req := finalApproved()
			_, err := service.MarkAsPosted(owner, req.ID, request.PostRequestDTO{})
			Expect(err).To(MatchError(request.ErrNotAuthorized))
		})

		It("rejects posting from any other status", func() {
			req := createDraft()
			_, err := service.MarkAsPosted(purchaser, req.ID, request.PostRequestDTO{})
			Expect(err).To(MatchError(request.ErrInvalidState))
		})
	})

	Describe("MarkAsReceived", func() {
		posted := func() *request.MaterialRequest {
			req := submit(createDraft())
			result, err := service.ProcessRecommendingApproval(recApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())
			result, err = service.ProcessFinalApproval(finApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())
			return result
		}

		It("stockroom receives a posted request with supplier details", func() {
			req := posted()

			result, err := service.MarkAsReceived(stockroom, req.ID, request.ReceiveRequestDTO{
				SupplierBPCode:      "BP-77",
				SupplierName:        "Acme Supply",
				PurchaseOrderNumber: "PO-REF-1",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusReceived))
			Expect(result.DateReceived).ToNot(BeNil())
			Expect(*result.SupplierName).To(Equal("Acme Supply"))
		})

		It("staff may not receive", func() {
			req := posted()
			_, err := service.MarkAsReceived(owner, req.ID, request.ReceiveRequestDTO{})
			Expect(err).To(MatchError(request.ErrNotAuthorized))
		})

		It("rejects receiving a request that is not posted", func() {
			req := createDraft()
			_, err := service.MarkAsReceived(stockroom, req.ID, request.ReceiveRequestDTO{})
			Expect(err).To(MatchError(request.ErrInvalidState))
		})
	})

	Describe("Update", func() {
		updatePayload := func() request.UpdateRequestDTO {
			return request.UpdateRequestDTO{
				Series:       request.SeriesPurchaseOrder,
				Type:         request.TypeItem,
				DateRequired: time.Now().Add(14 * 24 * time.Hour),
				Freight:      0,
				Discount:     0,
				Items: []request.ItemDTO{
					{ItemCode: "IT-900", Description: "Replacement", UOM: "box", Quantity: 3, UnitPrice: 20},
				},
			}
		}

		It("replaces items wholesale and recomputes the total", func() {
			req := createDraft()

			result, err := service.Update(owner, req.ID, updatePayload())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Items).To(HaveLen(1))
			Expect(result.Total.String()).To(Equal("60"))
			Expect(result.Status).To(Equal(request.StatusDraft))
		})

		It("editing a returned request forces it back to DRAFT and clears routing", func() {
			req := submit(createDraft())
			returned, err := service.ReturnForEdit(recApprover, req.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(returned.Status).To(Equal(request.StatusForEdit))

			result, err := service.Update(owner, req.ID, updatePayload())

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusDraft))
			Expect(result.RecApproverID).To(BeNil())
			Expect(result.RecApprovalStatus).To(BeNil())
		})

		It("an admin may edit someone else's draft", func() {
			req := createDraft()
			_, err := service.Update(admin, req.ID, updatePayload())
			Expect(err).ToNot(HaveOccurred())
		})

		It("an unrelated staff user may not edit", func() {
			req := createDraft()
			_, err := service.Update(outsider, req.ID, updatePayload())
			Expect(err).To(MatchError(request.ErrNotAuthorized))
		})

		It("rejects editing a submitted request", func() {
			req := submit(createDraft())
			_, err := service.Update(owner, req.ID, updatePayload())
			Expect(err).To(MatchError(request.ErrInvalidState))
		})
	})

	Describe("Delete", func() {
		It("the owner deletes a draft", func() {
			req := createDraft()
			Expect(service.Delete(owner, req.ID)).To(Succeed())
			_, err := repo.GetByID(req.ID)
			Expect(err).To(MatchError(request.ErrRequestNotFound))
		})

		It("only drafts can be deleted", func() {
			req := submit(createDraft())
			err := service.Delete(owner, req.ID)
			Expect(err).To(MatchError(request.ErrInvalidState))
		})

		It("an unrelated user may not delete", func() {
			req := createDraft()
			err := service.Delete(outsider, req.ID)
			Expect(err).To(MatchError(request.ErrNotAuthorized))
		})
	})

	Describe("Cancel", func() {
		It("the owner cancels a draft", func() {
			req := createDraft()
			result, err := service.Cancel(owner, req.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusCancelled))
		})

		It("a submitted request can still be cancelled", func() {
			req := submit(createDraft())
			result, err := service.Cancel(owner, req.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusCancelled))
		})

		It("a posted request cannot be cancelled", func() {
			req := submit(createDraft())
			_, err := service.ProcessRecommendingApproval(recApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())
			_, err = service.ProcessFinalApproval(finApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Cancel(owner, req.ID)
			Expect(err).To(MatchError(request.ErrInvalidState))
		})
	})

	Describe("ReturnForEdit", func() {
		It("the recommending approver returns a pending request", func() {
			req := submit(createDraft())
			result, err := service.ReturnForEdit(recApprover, req.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusForEdit))
		})

		It("the final approver returns a request at the final stage", func() {
			req := submit(createDraft())
			_, err := service.ProcessRecommendingApproval(recApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())

			result, err := service.ReturnForEdit(finApprover, req.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusForEdit))
		})

		It("a non-assigned user may not return the request", func() {
			req := submit(createDraft())
			_, err := service.ReturnForEdit(outsider, req.ID)
			Expect(err).To(MatchError(request.ErrNotAssignedApprover))
		})
	})

	Describe("GetByID", func() {
		It("the owner, assigned approvers, and viewers can read", func() {
			req := submit(createDraft())

			for _, actor := range []request.Actor{owner, recApprover, viewer, admin} {
				_, err := service.GetByID(actor, req.ID)
				Expect(err).ToNot(HaveOccurred())
			}
		})

		It("an unrelated staff user cannot read", func() {
			req := createDraft()
			_, err := service.GetByID(outsider, req.ID)
			Expect(err).To(MatchError(request.ErrNotAuthorized))
		})
	})

	Describe("ListByBusinessUnit", func() {
		It("is restricted to roles with cross-department visibility", func() {
			createDraft()
			_, err := service.ListByBusinessUnit(outsider, 100, 20, 0)
			Expect(err).To(MatchError(request.ErrNotAuthorized))

			result, err := service.ListByBusinessUnit(viewer, 100, 20, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(result).To(HaveLen(1))
		})
	})

	Describe("ListPendingApprovals", func() {
		It("returns requests awaiting the caller at either stage", func() {
			first := submit(createDraft())

			second := submit(createDraft())
			_, err := service.ProcessRecommendingApproval(recApprover, second.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())

			recInbox, err := service.ListPendingApprovals(recApprover)
			Expect(err).ToNot(HaveOccurred())
			Expect(recInbox).To(HaveLen(1))
			Expect(recInbox[0].ID).To(Equal(first.ID))

			finInbox, err := service.ListPendingApprovals(finApprover)
			Expect(err).ToNot(HaveOccurred())
			Expect(finInbox).To(HaveLen(1))
			Expect(finInbox[0].ID).To(Equal(second.ID))
		})
	})

	Describe("full lifecycle", func() {
		It("runs create through receive end to end", func() {
			req := createDraft()
			Expect(req.Total.String()).To(Equal("205"))

			req = submit(req)
			Expect(req.Status).To(Equal(request.StatusForRecApproval))

			result, err := service.ProcessRecommendingApproval(recApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusForFinalApproval))

			result, err = service.ProcessFinalApproval(finApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusPosted))
			Expect(result.DateApproved).ToNot(BeNil())
			Expect(result.DatePosted).ToNot(BeNil())
			Expect(*result.FinalApprovalStatus).To(Equal(request.ApprovalApproved))

			result, err = service.MarkAsReceived(stockroom, req.ID, request.ReceiveRequestDTO{})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusReceived))
		})

		It("the skip-final path waits for an explicit post", func() {
			req := submit(createDraft())
			resolver.clear(departmentID, approver.TypeFinal)

			result, err := service.ProcessRecommendingApproval(recApprover, req.ID,
				request.DecisionDTO{Decision: request.ApprovalApproved})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusFinalApproved))
			Expect(result.DatePosted).To(BeNil())

			result, err = service.MarkAsPosted(purchaser, req.ID, request.PostRequestDTO{})
			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(request.StatusPosted))
		})
	})

	Describe("repository failures", func() {
		It("surfaces a create failure", func() {
			repo.createError = errors.New("connection refused")
			_, err := service.Create(owner, validPayload())
			Expect(err).To(HaveOccurred())
		})
	})
})
