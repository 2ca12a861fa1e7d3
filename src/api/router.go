package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wealth-server/src/ai"
	"wealth-server/src/categories"
	store "wealth-server/src/db"
	"wealth-server/src/handlers"
	"wealth-server/src/jobs"
	"wealth-server/src/middleware"
	bank "wealth-server/src/plaid"
)

// Deps are the services the HTTP API is built from. Model, Plaid and PlaidVerifier may be
// nil when the corresponding integration is not configured.
type Deps struct {
	Pool    store.DBTX
	Cache   *store.PathCache
	Catalog *categories.Catalog
	Model   ai.Model
	Jobs    *jobs.Registry

	Plaid         bank.Client
	PlaidVerifier handlers.WebhookVerifier

	JWTSecret     string
	JobSigningKey []byte
	CORSOrigins   []string
	DemoMode      bool

	Now func() time.Time
}

func NewRouter(d Deps) *chi.Mux {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Catalog == nil {
		d.Catalog = categories.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware(d.CORSOrigins))
	r.Use(middleware.DemoModeMiddleware(d.DemoMode))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		// Signed by the job scheduler
		r.Get("/jobs", handlers.ListJobs(d.Jobs, d.JobSigningKey, d.Now))
		r.Put("/jobs", handlers.AnnounceJobs(d.Jobs, d.JobSigningKey, d.Now))
		r.Post("/jobs", handlers.InvokeJob(d.Jobs, d.JobSigningKey, d.Now))

		if d.Plaid != nil && d.PlaidVerifier != nil {
			r.Post("/plaid/webhook", handlers.PlaidWebhook(d.Pool, d.Cache, d.Plaid, d.PlaidVerifier, d.Catalog))
		}

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuthMiddleware(d.JWTSecret))

			r.Post("/user/sync", handlers.SyncUser(d.Pool))

			// Routes below need a provisioned user
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireUser(d.Pool))

				r.Get("/user", handlers.GetCurrentUser(d.Pool))
				r.Get("/dashboard", handlers.GetDashboard(d.Pool, d.Cache))
				r.Get("/categories", handlers.GetCategories(d.Catalog))

				// Accounts
				r.Get("/accounts", handlers.GetAccounts(d.Pool, d.Cache))
				r.Post("/accounts", handlers.CreateAccount(d.Pool, d.Cache))
				r.Get("/accounts/{id}", handlers.GetAccount(d.Pool, d.Cache))
				r.Put("/accounts/{id}", handlers.UpdateAccount(d.Pool, d.Cache))
				r.Put("/accounts/{id}/default", handlers.SetDefaultAccount(d.Pool, d.Cache))
				r.Delete("/accounts/{id}", handlers.DeleteAccount(d.Pool, d.Cache))

				// Transactions
				r.Get("/transactions", handlers.GetTransactions(d.Pool))
				r.Post("/transactions", handlers.CreateTransaction(d.Pool, d.Cache, d.Catalog))
				r.Post("/transactions/bulk-delete", handlers.BulkDeleteTransactions(d.Pool, d.Cache))
				r.Get("/transactions/{id}", handlers.GetTransaction(d.Pool))
				r.Put("/transactions/{id}", handlers.UpdateTransaction(d.Pool, d.Cache, d.Catalog))

				// Budget
				r.Get("/budget", handlers.GetBudget(d.Pool, d.Now))
				r.Put("/budget", handlers.UpdateBudget(d.Pool, d.Cache))

				// AI
				r.Post("/receipts/parse", handlers.ParseReceipt(d.Model, d.Catalog))
				r.Post("/insights", handlers.GenerateInsights(d.Pool, d.Cache, d.Model))
				r.Get("/insights", handlers.GetInsights(d.Pool, d.Cache))
				r.Get("/insights/{year}/{month}", handlers.GetMonthInsight(d.Pool))

				// Plaid
				if d.Plaid != nil {
					r.Post("/plaid/link-token", handlers.CreateLinkToken(d.Plaid))
					r.Post("/plaid/exchange", handlers.ExchangePublicToken(d.Pool, d.Cache, d.Plaid))
					r.Get("/plaid/items", handlers.GetPlaidItems(d.Pool))
					r.Post("/plaid/items/{item_id}/sync", handlers.SyncTransactions(d.Pool, d.Cache, d.Plaid, d.Catalog))
				}
			})
		})
	})

	return r
}
