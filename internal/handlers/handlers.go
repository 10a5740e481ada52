package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/uferekalu/finacle-banking/internal/httputil"
	"github.com/uferekalu/finacle-banking/internal/ledger"
	"github.com/uferekalu/finacle-banking/internal/middleware"
	"github.com/uferekalu/finacle-banking/internal/models"
)

const kindUnauthorized = "unauthorized"

type Users interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type TokenIssuer interface {
	IssueToken(userID uint) (string, error)
}

type Handler struct {
	engine *ledger.Engine
	users  Users
	tokens TokenIssuer
	log    *zap.Logger
}

func New(engine *ledger.Engine, users Users, tokens TokenIssuer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{engine: engine, users: users, tokens: tokens, log: log}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var statusByKind = map[ledger.Kind]int{
	ledger.KindValidation:                   http.StatusBadRequest,
	ledger.KindNotFound:                     http.StatusNotFound,
	ledger.KindAlreadyExists:                http.StatusBadRequest,
	ledger.KindForbidden:                    http.StatusForbidden,
	ledger.KindInsufficientBalance:          http.StatusBadRequest,
	ledger.KindPaymentDeclined:              http.StatusPaymentRequired,
	ledger.KindPayoutFailed:                 http.StatusPaymentRequired,
	ledger.KindConcurrentModification:       http.StatusConflict,
	ledger.KindLedgerWriteFailedAfterCharge: http.StatusInternalServerError,
	ledger.KindLedgerWriteFailedAfterPayout: http.StatusInternalServerError,
	ledger.KindCompensationFailed:           http.StatusInternalServerError,
	ledger.KindTransferAborted:              http.StatusInternalServerError,
	ledger.KindGatewayOutcomeUnknown:        http.StatusInternalServerError,
}

// publicMessages replace the error text of server-side kinds. The cause is
// logged, never sent.
var publicMessages = map[ledger.Kind]string{
	ledger.KindLedgerWriteFailedAfterCharge: "the payment was charged but the deposit could not be recorded; it will be reconciled",
	ledger.KindLedgerWriteFailedAfterPayout: "the payout was sent but the withdrawal could not be recorded; it will be reconciled",
	ledger.KindCompensationFailed:           "the payout failed and the reserved funds could not be released yet; it will be reconciled",
	ledger.KindTransferAborted:              "the transfer could not be completed; no funds were moved",
	ledger.KindGatewayOutcomeUnknown:        "the payment processor did not confirm the outcome; it will be reconciled",
}

// writeErr maps err onto its kind and status. Internal errors are logged and
// reported without detail.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	kind := ledger.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, string(ledger.KindInternal), "internal error")
		return
	}
	if status < http.StatusInternalServerError {
		httputil.WriteError(w, status, string(kind), err.Error())
		return
	}

	h.log.Error("request failed", zap.String("path", r.URL.Path), zap.String("kind", string(kind)), zap.Error(err))
	msg := publicMessages[kind]
	var rerr *ledger.ReconcileError
	if errors.As(err, &rerr) && rerr.Reference != "" {
		msg += " (reference " + rerr.Reference + ")"
	}
	httputil.WriteError(w, status, string(kind), msg)
}

func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	httputil.WriteError(w, http.StatusBadRequest, string(ledger.KindValidation), err.Error())
}

// actor returns the authenticated user. Routes that call it are always behind
// middleware.Authenticated.
func actor(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, kindUnauthorized, "unauthorized")
	}
	return id, ok
}

func pathID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &ledger.ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	return uint(id), nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &ledger.ValidationError{Field: "limit", Message: "must be a positive integer"}
	}
	return n, nil
}

type UserView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func userView(u *models.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type AccountView struct {
	ID                uint               `json:"id"`
	AccountNumber     string             `json:"accountNumber"`
	AccountType       models.AccountType `json:"accountType"`
	Balance           string             `json:"balance"`
	UserID            uint               `json:"userId"`
	PayoutDestination string             `json:"payoutDestination"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func accountView(a *models.Account) AccountView {
	return AccountView{
		ID:                a.ID,
		AccountNumber:     a.AccountNumber,
		AccountType:       a.AccountType,
		Balance:           a.Balance.StringFixed(ledger.Scale),
		UserID:            a.UserID,
		PayoutDestination: a.PayoutDestination,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

type TransactionView struct {
	ID            uint                   `json:"id"`
	Type          models.TransactionType `json:"type"`
	Amount        string                 `json:"amount"`
	FromAccountID *uint                  `json:"fromAccountId"`
	ToAccountID   *uint                  `json:"toAccountId"`
	Reference     string                 `json:"reference,omitempty"`
	Date          time.Time              `json:"date"`
}

func transactionView(t *models.Transaction) TransactionView {
	return TransactionView{
		ID:            t.ID,
		Type:          t.Type,
		Amount:        t.Amount.StringFixed(ledger.Scale),
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Reference:     t.Reference,
		Date:          t.Date,
	}
}

func transactionViews(txns []models.Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(txns))
	for i := range txns {
		out = append(out, transactionView(&txns[i]))
	}
	return out
}
