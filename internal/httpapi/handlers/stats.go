package handlers

import (
	"net/http"

	"convertd/internal/httpkit"
	"convertd/internal/pkg/errors"
)

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) error {
	if h.stats == nil {
		return errors.Unavailable("conversion stats")
	}

	counters, err := h.stats.Snapshot(r.Context())
	if err != nil {
		return errors.Wrap(err, "handlers.stats", "stats read failed")
	}

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"counters": counters})
	return nil
}
