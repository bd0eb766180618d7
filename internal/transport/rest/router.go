package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/materialflow/mrs-management/internal/approver"
	"github.com/materialflow/mrs-management/internal/auth"
	"github.com/materialflow/mrs-management/internal/auth/rbac"
	"github.com/materialflow/mrs-management/internal/orgunit"
	"github.com/materialflow/mrs-management/internal/request"
	"github.com/materialflow/mrs-management/internal/transport/middleware"
	"github.com/materialflow/mrs-management/internal/transport/swagger"
	"github.com/materialflow/mrs-management/internal/user"
)

type Handlers struct {
	Auth     *auth.Handler
	RBAC     *rbac.RBACAuthorization
	User     *user.Handler
	OrgUnit  *orgunit.Handler
	Approver *approver.Handler
	Request  *request.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve the OpenAPI spec at root so the swagger UI can reach it.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// Everything else requires an authenticated identity.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetCurrentUser)
			pr.Group(func(ar chi.Router) {
				ar.Use(h.RBAC.RequireAdminOrManager())
				ar.Get("/users", h.User.ListUsers)
			})
			pr.Group(func(ar chi.Router) {
				ar.Use(h.RBAC.RequireAdmin())
				ar.Post("/users", h.User.CreateUser)
				ar.Patch("/users/{id}", h.User.UpdateUser)
			})

			pr.Route("/business-units", func(br chi.Router) {
				br.Get("/", h.OrgUnit.ListBusinessUnits)
				br.Get("/{id}", h.OrgUnit.GetBusinessUnit)
				br.Group(func(mr chi.Router) {
					mr.Use(h.RBAC.RequireAdminOrManager())
					mr.Post("/", h.OrgUnit.CreateBusinessUnit)
					mr.Patch("/{id}", h.OrgUnit.UpdateBusinessUnit)
					mr.Delete("/{id}", h.OrgUnit.DeleteBusinessUnit)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.OrgUnit.ListDepartments)
				dr.Get("/{id}", h.OrgUnit.GetDepartment)
				dr.Get("/{departmentID}/approvers", h.Approver.ListDepartmentApprovers)
				dr.Group(func(mr chi.Router) {
					mr.Use(h.RBAC.RequireAdminOrManager())
					mr.Post("/", h.OrgUnit.CreateDepartment)
					mr.Patch("/{id}", h.OrgUnit.UpdateDepartment)
					mr.Delete("/{id}", h.OrgUnit.DeleteDepartment)
				})
			})

			pr.Route("/approvers", func(ar chi.Router) {
				ar.Use(h.RBAC.RequireAdminOrManager())
				ar.Post("/", h.Approver.AssignApprover)
				ar.Patch("/{id}/active", h.Approver.SetApproverActive)
				ar.Delete("/{id}", h.Approver.RemoveApprover)
			})

			pr.Route("/material-requests", func(rr chi.Router) {
				rr.Post("/", h.Request.CreateRequest)
				rr.Get("/", h.Request.ListRequestsByBusinessUnit)
				rr.Get("/mine", h.Request.ListMyRequests)
				rr.Get("/pending-approvals", h.Request.ListPendingApprovals)
				rr.Get("/{id}", h.Request.GetRequest)
				rr.Put("/{id}", h.Request.UpdateRequest)
				rr.Delete("/{id}", h.Request.DeleteRequest)

				rr.Post("/{id}/submit", h.Request.SubmitRequest)
				rr.Post("/{id}/cancel", h.Request.CancelRequest)
				rr.Post("/{id}/return-for-edit", h.Request.ReturnRequestForEdit)
				rr.Patch("/{id}/recommending-approval", h.Request.RecommendingApproval)
				rr.Patch("/{id}/final-approval", h.Request.FinalApproval)

				// Role gates are a convenience; the engine re-checks against
				// fresh state inside the operation.
				rr.Group(func(mr chi.Router) {
					mr.Use(h.RBAC.RequirePoster())
					mr.Patch("/{id}/post", h.Request.PostRequest)
				})
				rr.Group(func(mr chi.Router) {
					mr.Use(h.RBAC.RequireReceiver())
					mr.Patch("/{id}/receive", h.Request.ReceiveRequest)
				})
			})
		})
	})
}
