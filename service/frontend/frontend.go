package frontend

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	"github.com/mycok/coursesync/course"
	"github.com/mycok/coursesync/ledger"
	"github.com/mycok/coursesync/service/syncer"
)

const (
	statusEndpoint      = "/status"
	recentEndpoint      = "/recent"
	searchEndpoint      = "/search"
	assignmentsEndpoint = "/assignments"
)

// Service serves a read-only JSON view of the sync state, the ledger and
// the file catalog. It satisfies the service.Service interface.
type Service struct {
	config Config
	router *chi.Mux
}

// New creates and returns a fully configured frontend service instance.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("frontend service: config validation failed: %w", err)
	}

	svc := &Service{
		config: config,
		router: chi.NewRouter(),
	}

	svc.router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		render.SetContentType(render.ContentTypeJSON),
	)

	svc.router.Get(statusEndpoint, svc.getStatus)
	svc.router.Get(recentEndpoint, svc.getRecent)
	svc.router.Get(searchEndpoint, svc.getSearchResults)
	svc.router.Get(assignmentsEndpoint, svc.getAssignments)

	svc.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		renderError(w, r, http.StatusNotFound, "not found")
	})

	return svc, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "frontend" }

// Run serves requests until the context gets cancelled.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.config.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Handler:           svc.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()

		_ = srv.Shutdown(shutdownCtx)
	}()

	svc.config.Logger.WithField("addr", l.Addr().String()).Info("started service")
	defer svc.config.Logger.Info("stopped service")

	if err = srv.Serve(l); err == http.ErrServerClosed {
		err = nil
	}

	return err
}

func (svc *Service) handler() http.Handler {
	if len(svc.config.AllowedOrigins) == 0 {
		return svc.router
	}

	return cors.New(cors.Options{
		AllowedOrigins: svc.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	}).Handler(svc.router)
}

func (svc *Service) getStatus(w http.ResponseWriter, r *http.Request) {
	if svc.config.Status == nil {
		render.JSON(w, r, statusView{Phase: "Idle"})

		return
	}

	status := svc.config.Status.Status()
	view := statusView{Phase: status.Phase}

	if run := status.LastRun; run != nil {
		view.LastRun = &runView{
			RunID:      run.RunID.String(),
			StartedAt:  run.StartedAt,
			FinishedAt: run.FinishedAt,
			Courses:    run.Courses,
			Downloaded: len(run.Downloaded),
			Failed:     len(run.Failed),
			Issues:     len(run.Issues),
			Message:    syncer.StatusMessage(run.Err),
		}
	}

	render.JSON(w, r, view)
}

func (svc *Service) getRecent(w http.ResponseWriter, r *http.Request) {
	n, ok := intParam(w, r, "n", svc.config.RecentCount)
	if !ok {
		return
	}

	files, err := ledger.Recent(svc.config.Ledger, n)
	if err != nil {
		svc.config.Logger.WithField("err", err).Error("could not read ledger")
		renderError(w, r, http.StatusInternalServerError, "could not read ledger")

		return
	}

	render.JSON(w, r, toFileViews(files))
}

func (svc *Service) getSearchResults(w http.ResponseWriter, r *http.Request) {
	expr := r.URL.Query().Get("q")
	if expr == "" {
		renderError(w, r, http.StatusBadRequest, "missing search terms")

		return
	}

	limit, ok := intParam(w, r, "limit", svc.config.SearchLimit)
	if !ok {
		return
	}

	if _, err := svc.config.Catalog.Refresh(svc.config.Ledger); err != nil {
		svc.config.Logger.WithField("err", err).Error("could not refresh catalog")
		renderError(w, r, http.StatusInternalServerError, "could not refresh catalog")

		return
	}

	files, err := svc.config.Catalog.Search(expr, limit)
	if err != nil {
		svc.config.Logger.WithField("err", err).Error("search query execution failed")
		renderError(w, r, http.StatusInternalServerError, "search failed")

		return
	}

	render.JSON(w, r, toFileViews(files))
}

func (svc *Service) getAssignments(w http.ResponseWriter, r *http.Request) {
	views := []assignmentView{}

	if svc.config.Status != nil {
		if run := svc.config.Status.Status().LastRun; run != nil {
			for _, a := range run.Assignments {
				views = append(views, toAssignmentView(a))
			}
		}
	}

	render.JSON(w, r, views)
}

// intParam reads a positive integer query parameter. An error response is
// written when the value is malformed.
func intParam(w http.ResponseWriter, r *http.Request, key string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		renderError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid value for %q, must be > 0", key))

		return 0, false
	}

	return v, true
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorView{Error: msg})
}

type errorView struct {
	Error string `json:"error"`
}

type statusView struct {
	Phase   string   `json:"phase"`
	LastRun *runView `json:"last_run,omitempty"`
}

type runView struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Courses    int       `json:"courses"`
	Downloaded int       `json:"downloaded"`
	Failed     int       `json:"failed"`
	Issues     int       `json:"issues"`
	Message    string    `json:"message"`
}

type fileView struct {
	Course       string `json:"course"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	URL          string `json:"url"`
	Path         string `json:"path"`
	DownloadPath string `json:"download_path,omitempty"`
}

func toFileViews(files []*course.File) []fileView {
	views := make([]fileView, 0, len(files))
	for _, f := range files {
		views = append(views, fileView{
			Course:       f.CourseName(),
			Name:         f.Name,
			Kind:         string(f.Kind),
			URL:          f.URL,
			Path:         f.Path,
			DownloadPath: f.DownloadPath,
		})
	}

	return views
}

type assignmentView struct {
	Name      string     `json:"name"`
	URL       string     `json:"url"`
	Submitted bool       `json:"submitted"`
	DueDate   *time.Time `json:"due_date,omitempty"`
}

func toAssignmentView(a *course.Assignment) assignmentView {
	view := assignmentView{Name: a.Name, URL: a.URL, Submitted: a.Submitted}
	if !a.DueDate.IsZero() {
		due := a.DueDate
		view.DueDate = &due
	}

	return view
}
