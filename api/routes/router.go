package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mepex/cotizador-backend/api/controllers"
	"github.com/mepex/cotizador-backend/api/middleware"
	"github.com/mepex/cotizador-backend/internal/quote"
	"github.com/mepex/cotizador-backend/pkg/config"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/metrics"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	readiness map[string]controllers.Pinger,
	catalogService controllers.CatalogService,
	directoryService controllers.DirectoryService,
	quotationService controllers.QuotationService,
	sessionManager controllers.SessionManager,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(httpMetrics),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	var lookup quote.Lookup
	if catalogService != nil {
		lookup = catalogService.Index()
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(catalogService, logg))
			r.Post("/", controllers.CatalogCreateItem(catalogService, logg))
			r.Post("/sync", controllers.CatalogSync(catalogService, logg))
			r.Get("/schema", controllers.CatalogSchema(catalogService, logg))
			r.Get("/categories", controllers.CatalogCategories())
			r.Get("/category/{category}", controllers.CatalogByCategory(catalogService, logg))
			r.Get("/category/{category}/{subcategory}", controllers.CatalogByCategory(catalogService, logg))
			r.Put("/{itemId}", controllers.CatalogUpdateItem(catalogService, logg))
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", controllers.ClientsList(directoryService, logg))
			r.Get("/search", controllers.ClientsSearch(directoryService, logg))
		})
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", controllers.ProjectsList(directoryService, logg))
			r.Get("/search", controllers.ProjectsSearch(directoryService, logg))
			r.Get("/{projectId}", controllers.ProjectGet(directoryService, logg))
		})
		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventsList(directoryService, logg))
			r.Get("/search", controllers.EventsSearch(directoryService, logg))
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", controllers.QuotationsList(quotationService, logg))
			r.Get("/{id}", controllers.QuotationGet(quotationService, logg))
			r.Put("/{id}", controllers.QuotationUpdate(quotationService, logg))
			r.Post("/{id}/pdf", controllers.QuotationUploadPDF(quotationService, logg, cfg.Quotations.MaxPDFBytes()))
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", controllers.SessionCreate(sessionManager, logg))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", controllers.SessionGet(sessionManager, logg))
				r.Delete("/", controllers.SessionDelete(sessionManager, logg))
				r.Post("/items/{itemId}", controllers.SessionToggleItem(sessionManager, lookup, logg))
				r.Patch("/params", controllers.SessionUpdateParams(sessionManager, logg))
				r.Put("/type", controllers.SessionSetType(sessionManager, logg))
				r.Post("/reset", controllers.SessionReset(sessionManager, logg))
				r.Post("/spaces", controllers.SessionAddSpace(sessionManager, logg))
				r.Patch("/spaces/{spaceId}", controllers.SessionUpdateSpace(sessionManager, logg))
				r.Delete("/spaces/{spaceId}", controllers.SessionRemoveSpace(sessionManager, logg))
				r.Put("/spaces/{spaceId}/active", controllers.SessionActivateSpace(sessionManager, logg))
				r.Get("/breakdown", controllers.SessionBreakdown(sessionManager, logg))
				r.Post("/export", controllers.SessionExport(sessionManager, quotationService, lookup, logg))
				r.Get("/export.pdf", controllers.SessionExportPDF(sessionManager, logg))
				r.Get("/export.xlsx", controllers.SessionExportXLSX(sessionManager, logg))
				r.Post("/restore", controllers.SessionRestore(sessionManager, quotationService, logg))
			})
		})
	})

	return r
}
