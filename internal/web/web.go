// Package web serves the migration dashboard as a server-rendered HTML page.
//
// A [dashboard.Session] polls the backend on the server; the page renders the projected [dashboard.View] and
// refreshes itself from GET /view on the same interval. Control buttons are plain form posts, so the page works
// without JavaScript apart from live refresh.
//
// Routes
//
//	GET  /                → Dashboard page
//	GET  /view            → Current view as JSON
//	POST /actions/{name}  → Dispatch start, pause or resume, then redirect to /
//	GET  /metrics         → Prometheus metrics (when a handler is configured)
//	GET  /health          → Liveness
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/lmx/internal/dashboard"
	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/server"
	"github.com/desertthunder/lmx/internal/shared"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"icon": func(i dashboard.Icon) template.HTML {
		switch i {
		case dashboard.IconCheck:
			return "✓"
		case dashboard.IconAlert:
			return "!"
		case dashboard.IconPause:
			return "‖"
		case dashboard.IconSpinner:
			return `<span class="spinner"></span>`
		default:
			return ""
		}
	},
	"barWidth": func(w float64) template.CSS {
		return template.CSS(strconv.FormatFloat(w, 'f', -1, 64) + "%")
	},
}

// Options configures [New].
type Options struct {
	Logger            *log.Logger
	Metrics           http.Handler // Served at /metrics when set
	RequestsPerSecond float64
}

// App is the web dashboard.
type App struct {
	session *dashboard.Session
	page    *template.Template
	logger  *log.Logger
	router  *server.BasicRouter
}

type pageData struct {
	dashboard.View
	RefreshMillis int64
}

// New builds the dashboard around session and registers its routes.
func New(session *dashboard.Session, opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	page, err := template.New("dashboard.html").Funcs(funcs).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	app := &App{
		session: session,
		page:    page,
		logger:  opts.Logger,
		router:  server.NewBasicRouter(),
	}

	app.router.Use(server.Standard(opts.Logger, opts.RequestsPerSecond)...)
	app.router.HandleFunc(http.MethodGet, "/{$}", app.handlePage)
	app.router.HandleFunc(http.MethodGet, "/view", app.handleView)
	app.router.HandleFunc(http.MethodPost, "/actions/{name}", app.handleAction)
	app.router.Handle(http.MethodGet, "/health", server.HealthHandler())
	if opts.Metrics != nil {
		app.router.Handle(http.MethodGet, "/metrics", opts.Metrics)
	}

	return app, nil
}

// ServeHTTP implements [http.Handler].
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{View: a.session.View(), RefreshMillis: dashboard.PollInterval.Milliseconds()}

	var buf bytes.Buffer
	if err := a.page.Execute(&buf, data); err != nil {
		a.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (a *App) handleView(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, a.session.View())
}

func (a *App) handleAction(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	control, ok := models.ParseControl(name)
	if !ok {
		server.WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown action %q", name))
		return
	}

	err := a.session.Dispatch(r.Context(), control)
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, shared.ErrControlUnavailable):
		server.WriteError(w, http.StatusConflict, fmt.Sprintf("%s is not available in state %s", name, a.session.View().State))
	case errors.Is(err, shared.ErrSessionClosed):
		server.WriteError(w, http.StatusServiceUnavailable, "dashboard is shutting down")
	default:
		a.logger.Error("failed to dispatch control", "action", name, "error", err)
		server.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
