package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opensource-finance/kestrel/internal/domain"
	"github.com/opensource-finance/kestrel/internal/scoring"
	"github.com/opensource-finance/kestrel/internal/store"
	"github.com/opensource-finance/kestrel/internal/velocity"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	scorer   *scoring.Scorer
	records  domain.RecordStore
	cache    domain.Cache
	bus      domain.EventBus
	velocity *velocity.Service
	version  string
}

// NewHandler creates a new API handler.
func NewHandler(scorer *scoring.Scorer, records domain.RecordStore, cache domain.Cache, bus domain.EventBus, vel *velocity.Service, version string) *Handler {
	return &Handler{
		scorer:   scorer,
		records:  records,
		cache:    cache,
		bus:      bus,
		velocity: vel,
		version:  version,
	}
}

// Score handles POST /score requests.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	tx := req.ToTransaction()
	if err := tx.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": err.Error(),
		})
		return
	}

	// Fill in the 24h velocity count when the caller did not supply one.
	// The counter includes this transaction.
	if tx.RecentTransactionCount == 0 && h.velocity != nil {
		count, err := h.velocity.Observe(ctx, tx.Merchant)
		if err != nil {
			slog.Warn("velocity lookup failed", "transaction_id", tx.TransactionID, "error", err)
		} else {
			tx.RecentTransactionCount = int(count)
		}
	}

	result, err := h.scorer.Score(ctx, tx)
	if err != nil {
		slog.Error("scoring failed", "transaction_id", tx.TransactionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to score transaction",
		})
		return
	}

	writeJSON(w, http.StatusOK, domain.ScoreResponse{
		TransactionID: result.TransactionID,
		RiskScore:     round4(result.RiskScore),
		RiskLevel:     string(result.RiskLevel),
		Explanation:   result.Explanation,
		LatencyMs:     float64(result.Latency.Microseconds()) / 1000,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// GetTransaction handles GET /transactions/{id}, returning the stored
// score record.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	txID := chi.URLParam(r, "id")

	if txID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "transaction id is required",
		})
		return
	}

	rec, err := h.records.GetScore(ctx, txID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "transaction not found",
		})
		return
	}
	if err != nil {
		slog.Error("failed to get transaction", "id", txID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to retrieve transaction",
		})
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Stats handles GET /stats, returning aggregate scoring statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.records.Summary(r.Context())
	if err != nil {
		slog.Error("failed to compute summary", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to compute statistics",
		})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.records != nil {
		if err := h.records.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic. The
// store is load-bearing: a request that cannot be persisted must not
// be accepted.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.records != nil {
		if err := h.records.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"ready": "false",
				"error": "record store unavailable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
