package handlers

import (
	"net/http"

	"github.com/uferekalu/finacle-banking/internal/httputil"
	"github.com/uferekalu/finacle-banking/internal/ledger"
)

type DepositResponse struct {
	Message           string          `json:"message"`
	Transaction       TransactionView `json:"transaction"`
	ConfirmationToken string          `json:"confirmationToken"`
}

type WithdrawalResponse struct {
	Message     string          `json:"message"`
	Transaction TransactionView `json:"transaction"`
	PayoutID    string          `json:"payoutId"`
}

type TransferResponse struct {
	Message     string          `json:"message"`
	Transaction TransactionView `json:"transaction"`
}

// Deposit godoc
// @Summary  Charge a payment method and credit an account
// @Tags     movements
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    Idempotency-Key header string false "replay protection key"
// @Param    body body ledger.DepositRequest true "deposit"
// @Success  201 {object} DepositResponse
// @Failure  400 {object} httputil.ErrorResponse
// @Failure  402 {object} httputil.ErrorResponse
// @Failure  404 {object} httputil.ErrorResponse
// @Failure  500 {object} httputil.ErrorResponse
// @Router   /accounts/deposit [post]
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	var req ledger.DepositRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	req.ActorID = userID

	res, err := h.engine.Deposit(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, DepositResponse{
		Message:           res.Message,
		Transaction:       transactionView(res.Transaction),
		ConfirmationToken: res.ConfirmationToken,
	})
}

// Withdrawal godoc
// @Summary  Debit an account and pay out to its destination
// @Tags     movements
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    Idempotency-Key header string false "replay protection key"
// @Param    body body ledger.WithdrawalRequest true "withdrawal"
// @Success  201 {object} WithdrawalResponse
// @Failure  400 {object} httputil.ErrorResponse
// @Failure  402 {object} httputil.ErrorResponse
// @Failure  404 {object} httputil.ErrorResponse
// @Failure  500 {object} httputil.ErrorResponse
// @Router   /accounts/withdrawal [post]
func (h *Handler) Withdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	var req ledger.WithdrawalRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	req.ActorID = userID

	res, err := h.engine.Withdrawal(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, WithdrawalResponse{
		Message:     res.Message,
		Transaction: transactionView(res.Transaction),
		PayoutID:    res.PayoutID,
	})
}

// Transfer godoc
// @Summary  Move money between two accounts
// @Tags     movements
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    Idempotency-Key header string false "replay protection key"
// @Param    body body ledger.TransferRequest true "transfer"
// @Success  201 {object} TransferResponse
// @Failure  400 {object} httputil.ErrorResponse
// @Failure  404 {object} httputil.ErrorResponse
// @Failure  500 {object} httputil.ErrorResponse
// @Router   /transactions [post]
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	var req ledger.TransferRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	req.ActorID = userID

	res, err := h.engine.Transfer(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, TransferResponse{
		Message:     res.Message,
		Transaction: transactionView(res.Transaction),
	})
}
