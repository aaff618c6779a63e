package api

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/obralabs/sentinela/pkg/billing"
	"github.com/obralabs/sentinela/svc/apr"
	"github.com/obralabs/sentinela/svc/inspection"
	"github.com/obralabs/sentinela/svc/profile"
	"github.com/obralabs/sentinela/svc/project"
	"github.com/obralabs/sentinela/svc/reporting"
)

// BillingService is the billing surface the HTTP layer binds to.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID, email, origin string) (*billing.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID, origin string) (*billing.PortalSession, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	Sync(ctx context.Context, userID, email string) (*profile.BillingUpdate, error)
}

// ReportingService is the reporting surface the HTTP layer binds to.
type ReportingService interface {
	MRR(ctx context.Context) (*reporting.MRRReport, error)
	Clients(ctx context.Context) (*reporting.ClientsCount, error)
	Stats(ctx context.Context) (*reporting.PlatformStats, error)
}

// ProjectService is the project surface the HTTP layer binds to.
type ProjectService interface {
	Create(ctx context.Context, p *project.Project) error
	Update(ctx context.Context, p *project.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*project.Project, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]project.Project, error)
	SyncCoordinates(ctx context.Context) (*project.SyncReport, error)
}

// RouterOptions configures which services the API router exposes. Optional
// services are only mounted when provided.
type RouterOptions struct {
	Billing     BillingService
	Reporting   ReportingService
	Projects    ProjectService
	Inspections inspection.Store
	APRs        apr.Store

	// BaseURL is the fallback redirect origin when a request carries no
	// Origin header.
	BaseURL string

	Logger *slog.Logger
}

// Router builds the API router.
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		if opts.Billing != nil {
			h := &billingHandler{svc: opts.Billing, baseURL: opts.BaseURL, log: log}
			r.Post("/create-checkout-session", h.createCheckoutSession)
			r.Post("/create-portal-session", h.createPortalSession)
			r.Post("/webhooks/stripe", h.webhook)
			r.Post("/sync-subscription", h.syncSubscription)
		}

		if opts.Reporting != nil {
			h := &reportingHandler{svc: opts.Reporting, log: log}
			r.Get("/get-mrr", h.mrr)
			r.Get("/get-clients-count", h.clientsCount)
			r.Get("/get-whitelabel-stats", h.whitelabelStats)
		}

		if opts.Projects != nil {
			h := &projectHandler{svc: opts.Projects, log: log}
			r.Route("/projects", func(r chi.Router) {
				r.Post("/", h.create)
				r.Get("/", h.list)
				r.Get("/{id}", h.get)
				r.Put("/{id}", h.update)
				r.Delete("/{id}", h.delete)
			})
			r.Post("/sync-project-coordinates", h.syncCoordinates)
			// GET kept for easy manual triggering from a browser.
			r.Get("/sync-project-coordinates", h.syncCoordinates)
		}

		if opts.Inspections != nil {
			h := &inspectionHandler{store: opts.Inspections, log: log}
			r.Route("/inspections", func(r chi.Router) {
				r.Post("/", h.create)
				r.Get("/", h.list)
				r.Get("/{id}", h.get)
				r.Put("/{id}", h.update)
				r.Delete("/{id}", h.delete)
				r.Get("/{id}/report", h.report)
			})
		}

		if opts.APRs != nil {
			h := &aprHandler{store: opts.APRs, log: log}
			r.Route("/aprs", func(r chi.Router) {
				r.Post("/", h.create)
				r.Get("/", h.list)
				r.Get("/{id}", h.get)
				r.Put("/{id}", h.update)
				r.Delete("/{id}", h.delete)
			})
		}
	})

	return r
}
