package handlers

import (
	"net/http"

	"github.com/uferekalu/finacle-banking/internal/httputil"
)

// ListTransactions godoc
// @Summary  Transactions touching any of the caller's accounts, newest first
// @Tags     transactions
// @Produce  json
// @Security BearerAuth
// @Param    limit query int false "page size (default 50, max 200)"
// @Success  200 {array} TransactionView
// @Router   /transactions [get]
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	txns, err := h.engine.Transactions(r.Context(), userID, limit)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transactionViews(txns))
}

// GetTransaction godoc
// @Summary  Fetch a transaction
// @Tags     transactions
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "transaction id"
// @Success  200 {object} TransactionView
// @Failure  404 {object} httputil.ErrorResponse
// @Router   /transactions/{id} [get]
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	txn, err := h.engine.Transaction(r.Context(), id, userID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, transactionView(txn))
}
