// Package httpapi assembles the convertd HTTP router.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"convertd/internal/httpapi/handlers"
	"convertd/internal/httpkit"
	"convertd/internal/pkg/logger"
	"convertd/internal/pkg/middleware"
)

type Deps struct {
	Handlers       handlers.Deps
	AllowedOrigins []string
	Log            *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	if d.Handlers.Log == nil {
		d.Handlers.Log = log
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recovery(log))
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAgeSeconds:  600,
	}))

	h := handlers.New(d.Handlers)
	wrap := func(fn middleware.ErrorHandlerFunc) http.HandlerFunc {
		return middleware.WrapHandler(log, fn)
	}

	// ---- HEALTH ----
	r.Get("/health", h.Health)

	// ---- CONVERT ----
	r.Post("/convert", wrap(h.Convert))

	// ---- AUDIT LOG ----
	r.Get("/conversions", wrap(h.ListConversions))
	r.Get("/conversions/{conversionId}", wrap(h.GetConversion))
	r.Get("/conversions/{conversionId}/artifact", wrap(h.GetConversionArtifact))

	// ---- STATS ----
	r.Get("/stats", wrap(h.Stats))

	return r
}
