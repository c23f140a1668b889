package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"faturas/internal/core"
	"faturas/internal/services"
	"faturas/internal/summary"
	appweb "faturas/web"
)

// StatementImporter persists an uploaded statement and notifies consumers.
type StatementImporter interface {
	Import(ctx context.Context, fileName, month, monthName string, totalAmount *float64, txns []core.Transaction) (services.ImportResult, error)
}

// StatementStore serves the read side of statements and their aggregates.
type StatementStore interface {
	Years(ctx context.Context) ([]string, error)
	StatementTotals(ctx context.Context, year string) ([]summary.StatementRow, error)
	InstallmentTotals(ctx context.Context, year string) ([]summary.InstallmentRow, error)
	CategoryTotals(ctx context.Context, year string) ([]summary.CategoryRow, error)
	TransactionsForMonth(ctx context.Context, month string) ([]core.Transaction, error)
}

// CategoryStore serves category CRUD.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	CategoryCodes(ctx context.Context) ([]string, error)
	CreateCategory(ctx context.Context, name string) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (core.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// MappingStore serves merchant-mapping reads and edits.
type MappingStore interface {
	MappingsByStatus(ctx context.Context, status core.MappingStatus) ([]core.Mapping, error)
	MappingsForKeys(ctx context.Context, keys []string) (map[string]core.Mapping, error)
	MappingByID(ctx context.Context, id int64) (core.Mapping, error)
	UpdateMappingByID(ctx context.Context, id int64, cleanName, category string) error
	UpsertMappingByPlace(ctx context.Context, place, cleanName, category string) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	importer   StatementImporter
	statements StatementStore
	categories CategoryStore
	mappings   MappingStore
	pinger     Pinger

	rateLimiter *rateLimiter
	metrics     *appMetrics

	// LRU caches for summary responses with eviction policy
	summaryCache  *lruCache[summaryResponse]
	categoryCache *lruCache[categorySummaryResponse]

	// Cache cleanup management
	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, importer StatementImporter, statements StatementStore, categories CategoryStore, mappings MappingStore, pinger Pinger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		importer:         importer,
		statements:       statements,
		categories:       categories,
		mappings:         mappings,
		pinger:           pinger,
		rateLimiter:      newRateLimiter(),
		metrics:          newAppMetrics(),
		summaryCache:     newLRUCache[summaryResponse](50, 5*time.Minute),
		categoryCache:    newLRUCache[categorySummaryResponse](50, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	// Start periodic cache cleanup
	go s.startCacheCleanup()

	mux.HandleFunc("POST /api/statements", s.withMiddleware(s.handleImportStatement))
	mux.HandleFunc("GET /api/statements/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/statements/category-summary", s.withMiddleware(s.handleCategorySummary))
	mux.HandleFunc("GET /api/statements/transactions", s.withMiddleware(s.handleTransactions))

	mux.HandleFunc("GET /api/categories", s.withMiddleware(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.withMiddleware(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.withMiddleware(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.withMiddleware(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/places", s.withMiddleware(s.handleListPlaces))
	mux.HandleFunc("PUT /api/places/categories/single", s.withMiddleware(s.handleUpdateMapping))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	s.mountStatic(mux)

	return s
}

// mountStatic serves the embedded dashboard shell and its assets.
func (s *Server) mountStatic(mux *http.ServeMux) {
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		slog.Warn("Failed to mount embedded static FS", "error", err)
		return
	}

	static := http.FileServer(http.FS(sub))
	mux.Handle("GET /assets/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Tiny cache for static assets
		w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
		static.ServeHTTP(w, r)
	}))

	// Any non-API GET serves the dashboard shell so client-side routes work.
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			errorJSON(w, http.StatusNotFound, "not found")
			return
		}
		setSecurityHeaders(w)
		shell, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			slog.ErrorContext(r.Context(), "Dashboard shell missing", "error", err)
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(shell)
	})
}

// startCacheCleanup runs periodic cleanup for both caches.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			summaryCleaned := s.summaryCache.CleanExpired()
			categoryCleaned := s.categoryCache.CleanExpired()
			if summaryCleaned > 0 || categoryCleaned > 0 {
				slog.Debug("Cache cleanup completed",
					"summary_entries_removed", summaryCleaned,
					"category_entries_removed", categoryCleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// invalidateSummaries drops every cached summary. Statement imports,
// category edits and mapping edits can all change aggregate responses.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Purge()
	s.categoryCache.Purge()
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "Readiness check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": "database unreachable",
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
