package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/Trilemma-Dashboard/internal/application/dashboard"
	"github.com/turtacn/Trilemma-Dashboard/internal/domain/indicator"
	"github.com/turtacn/Trilemma-Dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Trilemma-Dashboard/internal/interfaces/chart"
	"github.com/turtacn/Trilemma-Dashboard/pkg/errors"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// DashboardHandler serves the interactive page and its JSON API.
type DashboardHandler struct {
	svc    dashboard.Service
	chart  chart.Options
	logger logging.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc dashboard.Service, chartOpts chart.Options, logger logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DashboardHandler{svc: svc, chart: chartOpts, logger: logger.Named("http")}
}

// RegisterPage mounts the HTML dashboard at /.
func (h *DashboardHandler) RegisterPage(r chi.Router) {
	r.Get("/", h.Page)
}

// RegisterRoutes registers the JSON and snippet endpoints on a router already
// prefixed with /api/v1.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/options", h.Options)
	r.Get("/view", h.View)
	r.Get("/chart", h.Chart)
}

type pageData struct {
	Title     string
	Assets    []string
	States    []string
	Years     []string
	Selection indicator.Selection
	View      *dashboard.ViewModel
	Chart     template.HTML
	Notice    string
}

// Page handles GET /?state=&year=.  Missing parameters take the default
// selection.  An unmatched selection still renders the selectors, with a
// notice instead of the chart.
func (h *DashboardHandler) Page(w http.ResponseWriter, r *http.Request) {
	options, err := h.svc.Options(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}

	sel := selectionFromQuery(r, &options.Default)
	data := pageData{
		Title:     dashboard.ChartTitle(sel.State),
		Assets:    chart.Assets(h.chart),
		States:    options.States,
		Years:     options.Years,
		Selection: sel,
	}

	status := http.StatusOK
	vm, err := h.svc.ComputeView(r.Context(), sel)
	switch {
	case err == nil:
		data.View = vm
		data.Chart = chart.RenderSnippet(vm, h.chart).HTML()
	case errors.IsCode(err, errors.ErrCodeNoDataForSelection):
		status = http.StatusNotFound
		data.Notice = "No data for state " + sel.State + " in " + sel.Year + "."
	default:
		writeAppError(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		writeAppError(w, r, h.logger, errors.Wrap(err, errors.ErrCodeChartRenderFailed, "failed to render dashboard page"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Options handles GET /api/v1/options.
func (h *DashboardHandler) Options(w http.ResponseWriter, r *http.Request) {
	options, err := h.svc.Options(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

// View handles GET /api/v1/view?state=&year=.  Both parameters are required.
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	vm, err := h.svc.ComputeView(r.Context(), selectionFromQuery(r, nil))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vm)
}

// Chart handles GET /api/v1/chart?state=&year=, returning the embeddable
// chart fragment.
func (h *DashboardHandler) Chart(w http.ResponseWriter, r *http.Request) {
	vm, err := h.svc.ComputeView(r.Context(), selectionFromQuery(r, nil))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(chart.RenderSnippet(vm, h.chart).HTML()))
}

//Personal.AI order the ending
