// Package http exposes the JSON API. Every request is scoped to the
// user named by the X-User-ID header; cross-user access answers 404.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"financas/internal/services"
	"financas/internal/storage"
)

type Server struct {
	http.Server

	storage    *storage.SQLiteRepository
	statements *services.StatementService
	movements  *services.MovementService
	purchases  *services.PurchaseService
	loans      *services.LoanService

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, st *storage.SQLiteRepository, statements *services.StatementService, movements *services.MovementService, purchases *services.PurchaseService, loans *services.LoanService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		storage:     st,
		statements:  statements,
		movements:   movements,
		purchases:   purchases,
		loans:       loans,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /accounts", s.with(s.handleCreateAccount))
	mux.HandleFunc("GET /accounts", s.with(s.handleListAccounts))
	mux.HandleFunc("GET /accounts/{id}", s.with(s.handleGetAccount))
	mux.HandleFunc("PUT /accounts/{id}", s.with(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /accounts/{id}", s.with(s.handleDeleteAccount))
	mux.HandleFunc("GET /accounts/{id}/statement", s.with(s.handleAccountStatement))
	mux.HandleFunc("POST /accounts/{id}/statement/export", s.with(s.handleExportStatement))

	mux.HandleFunc("POST /transaction-types", s.with(s.handleCreateTransactionType))
	mux.HandleFunc("GET /transaction-types", s.with(s.handleListTransactionTypes))
	mux.HandleFunc("PUT /transaction-types/{id}", s.with(s.handleUpdateTransactionType))
	mux.HandleFunc("DELETE /transaction-types/{id}", s.with(s.handleDeleteTransactionType))

	mux.HandleFunc("POST /movements", s.with(s.handleCreateMovement))
	mux.HandleFunc("GET /accounts/{id}/movements", s.with(s.handleListMovements))
	mux.HandleFunc("PUT /movements/{id}", s.with(s.handleUpdateMovement))
	mux.HandleFunc("DELETE /movements/{id}", s.with(s.handleDeleteMovement))

	mux.HandleFunc("POST /credit-lines", s.with(s.handleCreateCreditLine))
	mux.HandleFunc("GET /credit-lines", s.with(s.handleListCreditLines))
	mux.HandleFunc("PUT /credit-lines/{id}", s.with(s.handleUpdateCreditLine))
	mux.HandleFunc("DELETE /credit-lines/{id}", s.with(s.handleDeleteCreditLine))
	mux.HandleFunc("GET /credit-lines/statement", s.with(s.handleCreditLineStatement))

	mux.HandleFunc("POST /purchase-groups", s.with(s.handleCreatePurchaseGroup))
	mux.HandleFunc("GET /purchase-groups", s.with(s.handleListPurchaseGroups))
	mux.HandleFunc("DELETE /purchase-groups/{id}", s.with(s.handleDeletePurchaseGroup))

	mux.HandleFunc("POST /purchase-plans", s.with(s.handleCreatePurchasePlan))
	mux.HandleFunc("GET /purchase-plans", s.with(s.handleListPurchasePlans))
	mux.HandleFunc("GET /purchase-plans/{id}", s.with(s.handleGetPurchasePlan))
	mux.HandleFunc("PUT /purchase-plans/{id}/total", s.with(s.handleRepricePurchasePlan))
	mux.HandleFunc("DELETE /purchase-plans/{id}", s.with(s.handleDeletePurchasePlan))

	mux.HandleFunc("POST /loans", s.with(s.handleImportLoan))
	mux.HandleFunc("GET /loans", s.with(s.handleListLoans))
	mux.HandleFunc("GET /loans/{id}/installments", s.with(s.handleListLoanInstallments))
	mux.HandleFunc("POST /loan-installments/{id}/pay", s.with(s.handlePayLoanInstallment))

	mux.HandleFunc("POST /income-sources", s.with(s.handleCreateIncomeSource))
	mux.HandleFunc("GET /income-sources", s.with(s.handleListIncomeSources))
	mux.HandleFunc("DELETE /income-sources/{id}", s.with(s.handleDeleteIncomeSource))
	mux.HandleFunc("POST /income-movements", s.with(s.handleCreateIncomeMovement))
	mux.HandleFunc("GET /income-movements", s.with(s.handleListIncomeMovements))
	mux.HandleFunc("DELETE /income-movements/{id}", s.with(s.handleDeleteIncomeMovement))

	mux.HandleFunc("POST /budget-categories", s.with(s.handleCreateBudgetCategory))
	mux.HandleFunc("GET /budget-categories", s.with(s.handleListBudgetCategories))
	mux.HandleFunc("PUT /fixed-entries", s.with(s.handleUpsertFixedEntry))
	mux.HandleFunc("GET /fixed-entries", s.with(s.handleListFixedEntries))

	mux.HandleFunc("GET /audit-events", s.with(s.handleListAuditEvents))

	return s
}

// with wraps a handler with rate limiting, request tracing and logging.
func (s *Server) with(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)

		if !s.rateLimiter.allow(ip) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		requestID := generateRequestID()
		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")

		next(w, r)

		slog.InfoContext(r.Context(), "Request handled",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", ip,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Shutdown stops the rate limiter cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
