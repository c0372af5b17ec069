package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appai "github.com/bryanwahyu/genefit/internal/application/ai"
	appsession "github.com/bryanwahyu/genefit/internal/application/session"
	"github.com/bryanwahyu/genefit/internal/application/uploads"
	domai "github.com/bryanwahyu/genefit/internal/domain/ai"
	"github.com/bryanwahyu/genefit/internal/domain/samples"
	"github.com/bryanwahyu/genefit/internal/domain/session"
	"github.com/bryanwahyu/genefit/internal/middleware"
)

var errNoResults = errors.New("no analysis results yet")

// Options carries the optional parts of the HTTP surface.
type Options struct {
	Logger         *zap.Logger
	CORSOrigins    []string
	SecureCookies  bool
	Limiter        *middleware.RateLimiter
	Readiness      middleware.Readiness
	GoogleClientID string
}

type Router struct {
	uploads  *uploads.Service
	analysis *appai.Service
	sessions *appsession.Manager
	opts     Options
	logger   *zap.Logger
}

func NewRouter(up *uploads.Service, analysis *appai.Service, sessions *appsession.Manager, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	r := &Router{uploads: up, analysis: analysis, sessions: sessions, opts: opts, logger: opts.Logger}
	mux := chi.NewRouter()

	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.BrowserIdentity(opts.SecureCookies))
	mux.Use(middleware.Logging(opts.Logger))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.HealthHandler(opts.Readiness))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Get("/screens/{screen}", r.wrap(r.handleScreen))

		rt.Get("/samples", r.wrap(r.handleListSamples))
		rt.Post("/samples", r.wrap(r.handleAddSamples))
		rt.Delete("/samples", r.wrap(r.handleResetSamples))
		rt.Delete("/samples/{id}", r.wrap(r.handleRemoveSample))

		rt.Group(func(limited chi.Router) {
			if opts.Limiter != nil {
				limited.Use(middleware.RateLimit(opts.Limiter))
			}
			limited.Post("/analysis", r.wrap(r.handleAnalyze))
			limited.Post("/diet-plan", r.wrap(r.handleDietPlan))
		})
		rt.Get("/results", r.wrap(r.handleResults))
		rt.Delete("/results", r.wrap(r.handleDiscardResults))
		rt.Get("/analyses", r.wrap(r.handleListAnalyses))

		rt.Get("/session", r.wrap(r.handleSession))
		rt.Post("/session/login", r.wrap(r.handleLogin))
		rt.Post("/session/logout", r.wrap(r.handleLogout))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// userFacing replaces the message shown for err while keeping err for
// status mapping.
type userFacing struct {
	Message string
	Err     error
}

func (e *userFacing) Error() string { return e.Message }
func (e *userFacing) Unwrap() error { return e.Err }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status, msg := classify(err)
		if status >= http.StatusInternalServerError {
			r.logger.Error("request failed", zap.String("path", req.URL.Path), zap.Error(err))
		}
		writeJSON(w, status, map[string]string{"error": msg})
	}
}

func classify(err error) (int, string) {
	msg := err.Error()
	var uf *userFacing
	if errors.As(err, &uf) {
		msg = uf.Message
	}

	var (
		vErr *domai.ValidationError
		dErr *domai.DecodeError
		pErr domai.PlanGenerationError
		mErr *http.MaxBytesError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, msg
	case errors.As(err, &dErr):
		return http.StatusUnprocessableEntity, msg
	case errors.Is(err, domai.ErrQuotaExceeded):
		return http.StatusTooManyRequests, msg
	case errors.As(err, &pErr):
		return http.StatusBadGateway, msg
	case errors.Is(err, session.ErrInvalidCredential):
		return http.StatusBadRequest, "Sign-in failed. Please try again."
	case errors.Is(err, errNoResults), errors.Is(err, appai.ErrHistoryDisabled):
		return http.StatusNotFound, msg
	case errors.As(err, &mErr):
		return http.StatusRequestEntityTooLarge, "upload is too large"
	}
	if uf != nil {
		return http.StatusInternalServerError, msg
	}
	return http.StatusInternalServerError, "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func owner(req *http.Request) string {
	return middleware.BrowserFromContext(req.Context())
}

// GET /v1/screens/{screen}
func (r *Router) handleScreen(w http.ResponseWriter, req *http.Request) error {
	ctx := req.Context()
	user := r.sessions.Restore(ctx, owner(req))

	switch chi.URLParam(req, "screen") {
	case ScreenHome:
		return writeJSON(w, http.StatusOK, homeView(user))
	case ScreenAnalysis:
		_, has := r.analysis.Latest(owner(req))
		return writeJSON(w, http.StatusOK, analysisView(r.uploads.List(owner(req)), r.uploads.MaxFiles, has, user))
	case ScreenResults:
		report, ok := r.analysis.Latest(owner(req))
		if !ok {
			return errNoResults
		}
		return writeJSON(w, http.StatusOK, resultsView(report, user))
	case ScreenSignIn:
		return writeJSON(w, http.StatusOK, signInView(r.opts.GoogleClientID, user))
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown screen"})
	return nil
}

// GET /v1/samples
func (r *Router) handleListSamples(w http.ResponseWriter, req *http.Request) error {
	list := r.uploads.List(owner(req))
	return writeJSON(w, http.StatusOK, map[string]any{
		"samples":    list,
		"slots_left": max(r.uploads.MaxFiles-len(list), 0),
	})
}

// POST /v1/samples (multipart, field "files")
// Partially accepted batches answer 200 with the rejection text in "error".
func (r *Router) handleAddSamples(w http.ResponseWriter, req *http.Request) error {
	limit := int64(r.uploads.MaxFiles+1)*r.uploads.MaxFileBytes*2 + 1<<20
	req.Body = http.MaxBytesReader(w, req.Body, limit)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		var mErr *http.MaxBytesError
		if errors.As(err, &mErr) {
			return err
		}
		return domai.NewValidationError("Invalid upload: %v", err)
	}
	defer req.MultipartForm.RemoveAll()

	headers := req.MultipartForm.File["files"]
	files := make([]samples.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, fileFromHeader(fh))
	}
	if len(files) == 0 {
		return domai.NewValidationError("No files received.")
	}

	added, err := r.uploads.AddFiles(req.Context(), owner(req), files)
	middleware.AddSamples(len(added), len(files)-len(added))
	if err != nil && len(added) == 0 {
		return err
	}

	resp := map[string]any{
		"added":   added,
		"samples": r.uploads.List(owner(req)),
	}
	if len(added) > 0 {
		resp["scroll_to"] = scrollTarget
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	return writeJSON(w, http.StatusOK, resp)
}

func fileFromHeader(fh *multipart.FileHeader) samples.File {
	return samples.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// DELETE /v1/samples/{id}
func (r *Router) handleRemoveSample(w http.ResponseWriter, req *http.Request) error {
	// ids are uuids; anything else cannot be stored, so removing it is a no-op
	id := chi.URLParam(req, "id")
	if middleware.ValidateSampleID(id) == nil {
		r.uploads.RemoveFile(req.Context(), owner(req), samples.SampleID(id))
	}
	return r.handleListSamples(w, req)
}

// DELETE /v1/samples
func (r *Router) handleResetSamples(w http.ResponseWriter, req *http.Request) error {
	r.uploads.Reset(owner(req))
	return r.handleListSamples(w, req)
}

// POST /v1/analysis
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	ctx := req.Context()
	done := middleware.StartAnalysis()
	report, err := r.analysis.AnalyzeSamples(ctx, owner(req), r.uploads.List(owner(req)))
	done(err != nil)
	if err != nil {
		var vErr *domai.ValidationError
		if errors.As(err, &vErr) {
			return err
		}
		return &userFacing{
			Message: fmt.Sprintf("Analysis failed: %v. Please check your API key configuration and try again.", err),
			Err:     err,
		}
	}
	return writeJSON(w, http.StatusOK, resultsView(report, r.sessions.Restore(ctx, owner(req))))
}

// GET /v1/results
func (r *Router) handleResults(w http.ResponseWriter, req *http.Request) error {
	report, ok := r.analysis.Latest(owner(req))
	if !ok {
		return errNoResults
	}
	return writeJSON(w, http.StatusOK, resultsView(report, r.sessions.Restore(req.Context(), owner(req))))
}

// DELETE /v1/results ("analyze another")
func (r *Router) handleDiscardResults(w http.ResponseWriter, req *http.Request) error {
	r.analysis.Discard(owner(req))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/diet-plan
// Body: {"age": "...", "weight": "...", "height": "..."}
func (r *Router) handleDietPlan(w http.ResponseWriter, req *http.Request) error {
	var body domai.ProfileInput
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return domai.NewValidationError("Invalid request body.")
	}
	for name, v := range map[string]*string{"age": &body.Age, "weight": &body.Weight, "height": &body.Height} {
		*v = middleware.SanitizeString(*v)
		if err := middleware.ValidateProfileField(name, *v); err != nil {
			return domai.NewValidationError("%v", err)
		}
	}

	plan, err := r.analysis.GenerateDietPlan(req.Context(), owner(req), body)
	if err != nil {
		var vErr *domai.ValidationError
		if errors.As(err, &vErr) {
			return err
		}
		middleware.IncrementDietPlans(true)
		return &userFacing{
			Message: "An error occurred while generating the diet plan. Please check your API key and try again.",
			Err:     err,
		}
	}
	middleware.IncrementDietPlans(false)
	return writeJSON(w, http.StatusOK, plan)
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.analysis.ListAnalyses(req.Context(), owner(req), middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

type sessionResponse struct {
	SignedIn       bool                 `json:"signed_in"`
	User           *session.UserSession `json:"user"`
	ProviderLogout bool                 `json:"provider_logout,omitempty"`
}

// GET /v1/session
func (r *Router) handleSession(w http.ResponseWriter, req *http.Request) error {
	u := r.sessions.Restore(req.Context(), owner(req))
	return writeJSON(w, http.StatusOK, sessionResponse{SignedIn: !u.IsZero(), User: userOrNil(u)})
}

// POST /v1/session/login
// Body: {"credential": "<id token>"}
func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return domai.NewValidationError("Invalid request body.")
	}
	u, err := r.sessions.Login(req.Context(), owner(req), body.Credential)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, sessionResponse{SignedIn: !u.IsZero(), User: userOrNil(u)})
}

// POST /v1/session/logout
// provider_logout tells the client to end the Google session as well.
func (r *Router) handleLogout(w http.ResponseWriter, req *http.Request) error {
	if err := r.sessions.Logout(req.Context(), owner(req)); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, sessionResponse{SignedIn: false, ProviderLogout: true})
}
