// Package api serves the task resource over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todo/internal/store"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 1 << 20

// Handler dispatches requests on the task resource to the store.
type Handler struct {
	store   *store.Store
	logger  *log.Logger
	schemas *requestSchemas
}

// NewHandler returns a Handler over st. A nil logger discards output.
func NewHandler(st *store.Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{store: st, logger: logger, schemas: mustCompileSchemas()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	op, ok := opFor(r.Method)
	if !ok {
		w.Header().Set("Allow", strings.Join(AllowedMethods, ", "))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = fmt.Fprintf(w, "Method %s Not Allowed", r.Method)
		return
	}

	var raw []byte
	if op != OpList {
		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.writeErr(w, op, &Error{Status: http.StatusRequestEntityTooLarge, Message: MsgTooLarge, Err: err})
				return
			}
			h.writeErr(w, op, badRequest(MsgInvalidBody, err))
			return
		}
		raw = b
	}

	switch op {
	case OpList:
		h.writeJSON(w, http.StatusOK, h.store.List())

	case OpCreate:
		req, apiErr := h.decodeCreate(raw)
		if apiErr != nil {
			h.writeErr(w, op, apiErr)
			return
		}
		task, err := h.store.Create(req.Text)
		if err != nil {
			h.writeErr(w, op, fromStore(err))
			return
		}
		h.logger.Debug("task created", "id", task.ID)
		h.writeJSON(w, http.StatusCreated, task)

	case OpUpdateCompletion:
		req, apiErr := h.decodeUpdate(raw)
		if apiErr != nil {
			h.writeErr(w, op, apiErr)
			return
		}
		task, err := h.store.SetCompleted(req.ID, req.Completed)
		if err != nil {
			h.writeErr(w, op, fromStore(err))
			return
		}
		h.logger.Debug("task updated", "id", task.ID, "completed", task.Completed)
		h.writeJSON(w, http.StatusOK, task)

	case OpDelete:
		req, apiErr := h.decodeDelete(raw)
		if apiErr != nil {
			h.writeErr(w, op, apiErr)
			return
		}
		if err := h.store.Delete(req.ID); err != nil {
			h.writeErr(w, op, fromStore(err))
			return
		}
		h.logger.Debug("task deleted", "id", req.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("write response", "err", err)
	}
}

type errorBody struct {
	Message string `json:"message"`
}

func (h *Handler) writeErr(w http.ResponseWriter, op Op, e *Error) {
	if e.Status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "op", op, "err", e)
	} else {
		h.logger.Debug("request rejected", "op", op, "status", e.Status, "err", e)
	}
	h.writeJSON(w, e.Status, errorBody{Message: e.Message})
}
