package transport

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/actions"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/reconciler"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/view"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies of write actions.
const maxBodyBytes = 1 << 16

var errHistoryDisabled = errors.New("snapshot history is not configured")

// HTTPHandler serves the account API.
type HTTPHandler struct {
	reconciler Reconciler
	actions    Actions
	history    History
	decimals   int32
	logger     *zap.Logger
	now        func() time.Time
}

// NewHTTPHandler constructs an HTTPHandler. history may be nil when no ClickHouse DSN is configured.
func NewHTTPHandler(reconciler Reconciler, actions Actions, history History, decimals int32, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{
		reconciler: reconciler,
		actions:    actions,
		history:    history,
		decimals:   decimals,
		logger:     logger.Named("http"),
		now:        time.Now,
	}
}

// Router registers every route.
func (h *HTTPHandler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	a := r.PathPrefix("/accounts/{account}").Subrouter()
	a.HandleFunc("/connect", h.handleConnect).Methods(http.MethodPost)
	a.HandleFunc("", h.handleDisconnect).Methods(http.MethodDelete)
	a.HandleFunc("/snapshot", h.handleSnapshot).Methods(http.MethodGet)
	a.HandleFunc("/live", h.handleLive).Methods(http.MethodGet)
	a.HandleFunc("/live/ws", h.handleLiveStream).Methods(http.MethodGet)
	a.HandleFunc("/reconcile", h.handleReconcile).Methods(http.MethodPost)
	a.HandleFunc("/claim", h.handleClaim).Methods(http.MethodPost)
	a.HandleFunc("/stake", h.handleStake).Methods(http.MethodPost)
	a.HandleFunc("/upgrade", h.handleUpgrade).Methods(http.MethodPost)
	a.HandleFunc("/history", h.handleHistory).Methods(http.MethodGet)

	return r
}

// Handler wraps the router with CORS.
func (h *HTTPHandler) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(h.Router())
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if !h.reconciler.Serving() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "closed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) handleConnect(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	snapshot, err := h.reconciler.Connect(r.Context(), account)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view.NewSnapshot(snapshot, h.decimals))
}

func (h *HTTPHandler) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	if err := h.reconciler.Disconnect(account); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	snapshot, err := h.reconciler.AccountSnapshot(account)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewSnapshot(snapshot, h.decimals))
}

func (h *HTTPHandler) handleLive(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	estimate, err := h.reconciler.LiveEstimate(account, h.now())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view.NewLiveEstimate(estimate))
}

func (h *HTTPHandler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("kind")
	if raw == "" {
		raw = string(model.ReconcileSlow)
	}
	kind, err := model.ParseReconcileKind(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return
	}
	if err := h.reconciler.RequestReconciliation(account, kind); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "kind": string(kind)})
}

type transactionResponse struct {
	TransactionHash string `json:"transaction_hash"`
}

func (h *HTTPHandler) handleClaim(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	hash, err := h.actions.Claim(r.Context(), account)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{TransactionHash: hash})
}

type stakeRequest struct {
	Type  *uint8 `json:"type"`
	Price string `json:"price"`
}

func (h *HTTPHandler) handleStake(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	var req stakeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Type == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "type is required"})
		return
	}
	price, ok := parseAmount(req.Price)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}
	hash, err := h.actions.Stake(r.Context(), account, model.UnitType(*req.Type), price)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{TransactionHash: hash})
}

type upgradeRequest struct {
	UnitID uint64 `json:"unit_id"`
	Cost   string `json:"cost"`
}

func (h *HTTPHandler) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	var req upgradeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cost, ok := parseAmount(req.Cost)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cost"})
		return
	}
	hash, err := h.actions.Upgrade(r.Context(), account, req.UnitID, cost)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{TransactionHash: hash})
}

type historyEntry struct {
	ReconciliationID string      `json:"reconciliation_id"`
	Kind             string      `json:"kind"`
	TakenAt          time.Time   `json:"taken_at"`
	AggregatePending view.Amount `json:"aggregate_pending"`
	PaymentBalance   view.Amount `json:"payment_balance"`
	RewardBalance    view.Amount `json:"reward_balance"`
	UnitCount        uint32      `json:"unit_count"`
	TotalHourlyRate  uint64      `json:"total_hourly_rate"`
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	account, ok := h.account(w, r)
	if !ok {
		return
	}
	if h.history == nil {
		h.writeError(w, errHistoryDisabled)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := h.history.SnapshotHistory(r.Context(), account, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, newHistoryEntry(e, h.decimals))
	}
	writeJSON(w, http.StatusOK, out)
}

func newHistoryEntry(e clickhouse.HistoryEntry, decimals int32) historyEntry {
	return historyEntry{
		ReconciliationID: e.ReconciliationID.String(),
		Kind:             string(e.Kind),
		TakenAt:          e.TakenAt,
		AggregatePending: view.NewAmount(e.AggregatePending, decimals),
		PaymentBalance:   view.NewAmount(e.PaymentBalance, decimals),
		RewardBalance:    view.NewAmount(e.RewardBalance, decimals),
		UnitCount:        e.UnitCount,
		TotalHourlyRate:  e.TotalHourlyRate,
	}
}

// account parses the {account} path variable and writes 400 when it is not a valid address.
func (h *HTTPHandler) account(w http.ResponseWriter, r *http.Request) (model.Account, bool) {
	account, err := model.ParseAccount(mux.Vars(r)["account"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err))
		return "", false
	}
	return account, true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		h.logger.Warn("request failed", zap.Int("status", code), zap.Error(err))
	}
	writeJSON(w, code, errorBody(err))
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidAccount), errors.Is(err, actions.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, reconciler.ErrUnknownAccount):
		return http.StatusNotFound
	case errors.Is(err, reconciler.ErrAlreadyConnected):
		return http.StatusConflict
	case errors.Is(err, actions.ErrWriteFailed):
		return http.StatusBadGateway
	case errors.Is(err, reconciler.ErrClosed), errors.Is(err, errHistoryDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return false
	}
	return true
}

// parseAmount accepts decimal or 0x-prefixed hex integers.
func parseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 0)
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
