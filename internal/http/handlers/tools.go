package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/clinic-tools/internal/tools"
	"github.com/wolfman30/clinic-tools/pkg/logging"
)

const maxToolBodyBytes = 1 << 20

// ToolsHandler exposes the tool registry as plain JSON endpoints.
type ToolsHandler struct {
	registry *tools.Registry
	logger   *logging.Logger
}

// NewToolsHandler creates a ToolsHandler.
func NewToolsHandler(registry *tools.Registry, logger *logging.Logger) *ToolsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ToolsHandler{registry: registry, logger: logger}
}

type toolListResponse struct {
	Tools []tools.Descriptor `json:"tools"`
}

// ListTools handles GET /tools.
func (h *ToolsHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toolListResponse{Tools: h.registry.Descriptors()})
}

// InvokeTool handles POST /tools/{name}. Tool-level failures are still 200;
// the Result carries status "error".
func (h *ToolsHandler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, ok := h.registry.Lookup(name); !ok {
		jsonError(w, "unknown tool: "+name, http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxToolBodyBytes))
	if err != nil {
		jsonError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	res, err := h.registry.Invoke(r.Context(), name, body)
	if err != nil {
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			jsonError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, tools.ErrInvalidInput):
			h.logger.Warn("tool input rejected", "tool", name, "error", err)
			jsonError(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("tool invocation failed", "tool", name, "error", err)
			jsonError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HealthCheck handles GET /health.
func (h *ToolsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tools":  len(h.registry.Descriptors()),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
