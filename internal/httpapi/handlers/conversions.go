package handlers

import (
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"convertd/internal/conversion"
	"convertd/internal/httpkit"
	"convertd/internal/pkg/errors"
	"convertd/internal/ports"
	"convertd/internal/repositories"
)

// ListConversions handles GET /conversions?status=&limit=.
func (h *Handler) ListConversions(w http.ResponseWriter, r *http.Request) error {
	if h.conversions == nil {
		return errors.Unavailable("conversion audit log")
	}

	status := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	limit := repositories.DefaultListLimit
	if v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit"))); err == nil {
		limit = repositories.ClampLimit(v)
	}

	items, err := h.conversions.List(r.Context(), status, limit)
	if err != nil {
		return errors.Wrap(err, "handlers.list_conversions", "db query failed")
	}

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"conversions": items})
	return nil
}

// GetConversion handles GET /conversions/{conversionId}.
func (h *Handler) GetConversion(w http.ResponseWriter, r *http.Request) error {
	if h.conversions == nil {
		return errors.Unavailable("conversion audit log")
	}

	id := chi.URLParam(r, "conversionId")
	c, err := h.conversions.Get(r.Context(), id)
	if err != nil {
		if stderrors.Is(err, repositories.ErrConversionNotFound) {
			return errors.NotFound("conversion", id)
		}
		return errors.Wrap(err, "handlers.get_conversion", "db query failed")
	}

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"conversion": c})
	return nil
}

// GetConversionArtifact handles GET /conversions/{conversionId}/artifact by
// streaming the archived copy back from the storage provider.
func (h *Handler) GetConversionArtifact(w http.ResponseWriter, r *http.Request) error {
	if h.conversions == nil {
		return errors.Unavailable("conversion audit log")
	}
	if h.archive == nil {
		return errors.Unavailable("artifact archive")
	}

	ctx := r.Context()
	id := chi.URLParam(r, "conversionId")

	c, err := h.conversions.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repositories.ErrConversionNotFound) {
			return errors.NotFound("conversion", id)
		}
		return errors.Wrap(err, "handlers.get_artifact", "db query failed")
	}
	if c.ArchiveKey == "" {
		return errors.NotFound("artifact", id)
	}

	rc, _, size, err := h.archive.GetObject(ctx, c.ArchiveKey)
	if err != nil {
		if stderrors.Is(err, ports.ErrObjectNotFound) {
			return errors.NotFound("artifact", id).WithField("object_key", c.ArchiveKey)
		}
		return errors.Wrap(err, "handlers.get_artifact", "artifact download failed")
	}
	defer rc.Close()

	w.Header().Set("Content-Type", conversion.ContentType(c.ToFormat))
	w.Header().Set("Content-Disposition", "attachment; filename="+conversion.OutputName(c.SourceFilename, c.ToFormat))
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.log.FromContext(ctx).Warn("artifact stream interrupted", "conversion_id", id, "error", err.Error())
	}
	return nil
}
