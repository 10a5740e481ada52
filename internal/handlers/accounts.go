package handlers

import (
	"net/http"

	"github.com/uferekalu/finacle-banking/internal/httputil"
	"github.com/uferekalu/finacle-banking/internal/ledger"
)

// OpenAccount godoc
// @Summary  Open an account for the caller
// @Tags     accounts
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body ledger.OpenAccountRequest true "account"
// @Success  201 {object} AccountView
// @Failure  400 {object} httputil.ErrorResponse
// @Router   /accounts [post]
func (h *Handler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	var req ledger.OpenAccountRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	req.UserID = userID

	acc, err := h.engine.OpenAccount(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, accountView(acc))
}

// ListAccounts godoc
// @Summary  List the caller's accounts
// @Tags     accounts
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} AccountView
// @Router   /accounts [get]
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	accounts, err := h.engine.Accounts(r.Context(), userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	out := make([]AccountView, 0, len(accounts))
	for i := range accounts {
		out = append(out, accountView(&accounts[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// GetAccount godoc
// @Summary  Fetch one of the caller's accounts
// @Tags     accounts
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "account id"
// @Success  200 {object} AccountView
// @Failure  404 {object} httputil.ErrorResponse
// @Router   /accounts/{id} [get]
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	acc, err := h.engine.Account(r.Context(), id, userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, accountView(acc))
}

// AccountTransactions godoc
// @Summary  Transaction history of one account, newest first
// @Tags     accounts
// @Produce  json
// @Security BearerAuth
// @Param    id    path  int true  "account id"
// @Param    limit query int false "page size (default 50, max 200)"
// @Success  200 {array} TransactionView
// @Failure  404 {object} httputil.ErrorResponse
// @Router   /accounts/{id}/transactions [get]
func (h *Handler) AccountTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	txns, err := h.engine.History(r.Context(), id, userID, limit)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transactionViews(txns))
}
