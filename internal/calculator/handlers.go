package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the calculator endpoints on top of a session Store.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// ---------------------------------------------------------------------------
// Handlers — sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "create_session")
	defer span.End()

	sess, err := h.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create_session", "session limit reached", err, http.StatusTooManyRequests, w)
		return
	}

	sessionsCounter.Add(ctx, 1)
	span.SetAttributes(attribute.String("calculator.session.id", sess.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, newSessionResponse(sess))
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "get_session")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("calculator.session.id", id))

	sess, err := h.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "get_session", "session not found", err, http.StatusNotFound, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "delete_session")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("calculator.session.id", id))

	if err := h.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete_session", "session not found", err, http.StatusNotFound, w)
		return
	}

	sessionsCounter.Add(ctx, -1)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handler — keypad
// ---------------------------------------------------------------------------

// PressKeys handles POST /calculator/sessions/{id}/keys — applies a batch of
// button presses to the session. When a key is unknown the presses before it
// stay applied and the request fails with 400.
func (h *Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "press")
	defer span.End()

	id := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("calculator.session.id", id))

	var req PressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	keys := req.keys()
	if len(keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "no keys provided", errors.New("keys array is empty"), http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(attribute.Int("calculator.keys_count", len(keys)))

	start := time.Now()
	res, err := h.store.Press(id, keys...)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if errors.Is(err, ErrSessionNotFound) {
		observability.RecordError(ctx, span, logger, errorCounter, "press", "session not found", err, http.StatusNotFound, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", "press"))
	for _, k := range keys[:res.Applied] {
		keysCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", keyKind(k))))
	}
	if res.Calculations > 0 {
		calcCounter.Add(ctx, int64(res.Calculations), attrs)
	}
	opsHistogram.Record(ctx, elapsed, attrs)

	sess := res.Session
	span.SetAttributes(attribute.Int("calculator.keys_applied", res.Applied))

	switch {
	case errors.Is(err, ErrUnknownKey):
		// The presses before the bad key are kept, so the client gets the
		// state it now has alongside the error.
		observability.ReportError(ctx, span, logger, errorCounter, "press", err.Error(), err)
		handlers.WriteJSON(w, http.StatusBadRequest, PressErrorResponse{
			Error:   err.Error(),
			Session: newSessionResponse(sess),
		})
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, "press", "press failed", err, http.StatusInternalServerError, w)
		return
	}

	if keys[len(keys)-1] == KeyEquals {
		resultGauge.Record(ctx, ParseNumber(sess.State.Display), attrs)
	}

	span.AddEvent("keys.applied", trace.WithAttributes(
		attribute.String("display", sess.State.Display),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.String("calculator.display", sess.State.Display))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator keys applied",
		zap.String("session_id", id),
		zap.Int("keys", len(keys)),
		zap.String("display", sess.State.Display),
		zap.String("pending_operation", string(sess.State.PendingOperation)),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, newSessionResponse(sess))
}

// ---------------------------------------------------------------------------
// Handler — stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate — one binary operation on two
// display strings, formatted exactly as a keypad calculation would be.
// Division by zero is not an error and yields "Infinity" or "NaN".
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "evaluate")
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	op, err := ParseOp(req.Op)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	start := time.Now()
	a, b := ParseNumber(req.A), ParseNumber(req.B)
	result := Evaluate(a, op, b)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	attrs := metric.WithAttributes(attribute.String("operation", string(op)))
	calcCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, result, attrs)

	resp := EvaluateResponse{
		A:      FormatNumber(a),
		Op:     op,
		B:      FormatNumber(b),
		Result: FormatNumber(result),
		Entry:  FormatCalculation(a, op, b, result),
	}

	span.SetAttributes(
		attribute.String("calculator.operation", string(op)),
		attribute.String("calculator.result", resp.Result),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", string(op)),
		zap.String("a", resp.A),
		zap.String("b", resp.B),
		zap.String("result", resp.Result),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// startSpan opens the calculator.<opName> child span and returns the
// trace-correlated logger for it.
func startSpan(r *http.Request, opName string) (ctx context.Context, span trace.Span, logger *zap.Logger) {
	ctx = r.Context()
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span = tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", requestID),
		),
	)
	return ctx, span, observability.LoggerWithTrace(ctx)
}

func keyKind(k Key) string {
	switch k {
	case KeyEquals:
		return "equals"
	case KeyClear:
		return "clear"
	case KeyDelete, KeyBackspace:
		return "delete"
	case KeyClearHistory, KeyHistory:
		return "clear_history"
	}
	if _, ok := digitKey(k); ok {
		return "digit"
	}
	return "operation"
}

// RunSweeper evicts idle sessions every interval until ctx is done, keeping
// the active-sessions metric in step with the store.
func (h *Handler) RunSweeper(ctx context.Context, interval time.Duration) {
	h.store.Run(ctx, interval, func(n int) {
		if n == 0 {
			return
		}
		sessionsCounter.Add(ctx, int64(-n))
		observability.Logger.Info("idle calculator sessions evicted",
			zap.Int("evicted", n),
			zap.Int("remaining", h.store.Len()),
		)
	})
}
