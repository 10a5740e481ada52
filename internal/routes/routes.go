package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/uferekalu/finacle-banking/docs"
	"github.com/uferekalu/finacle-banking/internal/handlers"
	appmw "github.com/uferekalu/finacle-banking/internal/middleware"
)

type Deps struct {
	Handler     *handlers.Handler
	Tokens      appmw.TokenParser
	Idempotency appmw.IdempotencyStore
	Log         *zap.Logger
}

func NewRoutes(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := d.Handler

	r.Get("/health", h.Health)
	r.Post("/users/register", h.Register)
	r.Post("/users/login", h.Login)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(appmw.Authenticated(d.Tokens))
		idempotent := appmw.Idempotency(d.Idempotency, d.Log)

		r.Get("/users/{id}", h.GetUser)

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.OpenAccount)
			r.Get("/", h.ListAccounts)
			r.With(idempotent).Post("/deposit", h.Deposit)
			r.With(idempotent).Post("/withdrawal", h.Withdrawal)
			r.Get("/{id}", h.GetAccount)
			r.Get("/{id}/transactions", h.AccountTransactions)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.With(idempotent).Post("/", h.Transfer)
			r.Get("/", h.ListTransactions)
			r.Get("/{id}", h.GetTransaction)
		})
	})

	return r
}
