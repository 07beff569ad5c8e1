package routes

import (
	"net/http"

	"github.com/allode/property-backend/internal/api/handlers"
	"github.com/allode/property-backend/internal/api/middleware"
	"github.com/allode/property-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	listingHandler      *handlers.ListingHandler
	autocompleteHandler *handlers.AutocompleteHandler
	imageHandler        *handlers.ImageHandler
	adminHandler        *handlers.AdminHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	listingHandler *handlers.ListingHandler,
	autocompleteHandler *handlers.AutocompleteHandler,
	imageHandler *handlers.ImageHandler,
	adminHandler *handlers.AdminHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		listingHandler:      listingHandler,
		autocompleteHandler: autocompleteHandler,
		imageHandler:        imageHandler,
		adminHandler:        adminHandler,

		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Listing endpoints
	r.mux.HandleFunc("GET /api/properties", r.listingHandler.ListListings)
	r.mux.HandleFunc("GET /api/properties/{id}", r.listingHandler.GetListing)

	// Autocomplete endpoint
	r.mux.HandleFunc("GET /api/autocomplete", r.autocompleteHandler.Suggest)

	// Image resolution endpoint
	r.mux.HandleFunc("GET /api/images/{id}/{index}", r.imageHandler.ResolveImage)

	// Admin endpoints (feed ingestion and photo mirroring)
	if r.adminHandler != nil {
		r.mux.HandleFunc("POST /api/admin/populate", r.adminHandler.Populate)
		r.mux.HandleFunc("POST /api/properties/{id}/process-images", r.adminHandler.ProcessImages)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
