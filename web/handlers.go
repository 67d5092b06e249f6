package web

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/subtitler/errors"
	"github.com/kbukum/subtitler/history"
	"github.com/kbukum/subtitler/logger"
	"github.com/kbukum/subtitler/pipeline"
	"github.com/kbukum/subtitler/server"
	"github.com/kbukum/subtitler/server/middleware"
	"github.com/kbukum/subtitler/sse"
	"github.com/kbukum/subtitler/storage"
	"github.com/kbukum/subtitler/util"
	"github.com/kbukum/subtitler/validation"
)

// Runner executes one pipeline invocation.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (*pipeline.Result, error)
}

// HistoryReader looks up recorded runs.
type HistoryReader interface {
	Get(ctx context.Context, id string) (*history.Entry, error)
	List(ctx context.Context, limit int) ([]*history.Entry, error)
}

// Deps are the collaborators of the handlers.
type Deps struct {
	Runner  Runner
	Results storage.Storage
	History HistoryReader
	// AllowedExtensions are checked before the upload reaches the pipeline,
	// without the dot.
	AllowedExtensions []string
	// RateLimit caps pipeline requests per client per minute. Zero disables.
	RateLimit int
	// PresignExpiry redirects downloads to a presigned backend URL when the
	// result store supports it. Zero serves the bytes directly.
	PresignExpiry time.Duration
	// Events streams run transitions on /api/v1/events when set.
	Events *sse.Hub
	Logger *logger.Logger
}

// Handlers serves the form, the download route and the JSON API.
type Handlers struct {
	runner  Runner
	results storage.Storage
	history HistoryReader
	allowed []string
	accept  string
	limit   int
	presign time.Duration
	events  *sse.Hub
	log     *logger.Logger
}

// NewHandlers fails when the runner, result store or history is missing.
func NewHandlers(deps Deps) (*Handlers, error) {
	var missing []string
	if deps.Runner == nil {
		missing = append(missing, "runner")
	}
	if deps.Results == nil {
		missing = append(missing, "results")
	}
	if deps.History == nil {
		missing = append(missing, "history")
	}
	if len(missing) > 0 {
		return nil, errors.New("web: missing dependencies: " + strings.Join(missing, ", "))
	}
	log := deps.Logger
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	accept := make([]string, len(deps.AllowedExtensions))
	for i, ext := range deps.AllowedExtensions {
		accept[i] = "." + strings.TrimPrefix(ext, ".")
	}
	return &Handlers{
		runner:  deps.Runner,
		results: deps.Results,
		history: deps.History,
		allowed: deps.AllowedExtensions,
		accept:  strings.Join(accept, ","),
		limit:   deps.RateLimit,
		presign: deps.PresignExpiry,
		events:  deps.Events,
		log:     log.WithComponent("web"),
	}, nil
}

// Register installs the page templates and all routes on engine.
func Register(engine *gin.Engine, h *Handlers) {
	engine.SetHTMLTemplate(pageTemplates)

	run := []gin.HandlerFunc{}
	if h.limit > 0 {
		run = append(run, middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: h.limit}))
	}

	engine.GET("/", h.Index)
	engine.POST("/", append(run, h.Submit)...)
	engine.GET("/download/:id", h.Download)

	api := engine.Group("/api/v1")
	api.POST("/translations", append(run, h.CreateTranslation)...)
	api.GET("/translations", h.ListTranslations)
	api.GET("/translations/:id", h.GetTranslation)
	if h.events != nil {
		api.GET("/events", h.Events)
	}
}

// DownloadURL is the route serving the translation of run id.
func DownloadURL(id string) string {
	return "/download/" + id
}

// Index renders the empty form.
func (h *Handlers) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", page{Accept: h.accept})
}

// Submit runs the pipeline for the form. Missing input re-renders the form
// without a message; any failure renders one generic line.
func (h *Handlers) Submit(c *gin.Context) {
	p := page{Accept: h.accept, Language: c.PostForm("language")}

	in, closeFn, err := h.input(c)
	if err != nil {
		if isMissing(err) {
			c.HTML(http.StatusOK, "index.html", p)
			return
		}
		h.renderError(c, p, err)
		return
	}
	defer closeFn()

	res, err := h.runner.Run(c.Request.Context(), in)
	if err != nil {
		if isMissing(err) {
			c.HTML(http.StatusOK, "index.html", p)
			return
		}
		h.renderError(c, p, err)
		return
	}
	p.Result = res
	p.DownloadURL = DownloadURL(res.ID)
	c.HTML(http.StatusOK, "index.html", p)
}

func (h *Handlers) renderError(c *gin.Context, p page, err error) {
	appErr := apperrors.FromError(err)
	h.log.WithContext(c.Request.Context()).Warn("Form submission failed", logger.MergeWithError(map[string]interface{}{
		"code":        appErr.Code,
		"http_status": appErr.HTTPStatus,
	}, err))
	p.Error = appErr.Message
	c.HTML(http.StatusOK, "index.html", p)
}

// Download serves a stored translation as an attachment.
func (h *Handlers) Download(c *gin.Context) {
	id, err := validation.ValidateUUID("id", c.Param("id"))
	if err != nil {
		c.String(http.StatusNotFound, "translation not found")
		return
	}

	path := pipeline.ResultPath(id.String())
	if signer, ok := h.results.(storage.SignedURLProvider); ok && h.presign > 0 {
		h.redirect(c, signer, path)
		return
	}

	data, err := storage.GetBytes(c.Request.Context(), h.results, path)
	if err != nil {
		if storage.IsNotFound(err) {
			c.String(http.StatusNotFound, "translation not found")
			return
		}
		h.log.WithContext(c.Request.Context()).Error("Download failed", logger.ErrorFields("download", err))
		c.String(http.StatusInternalServerError, "download failed")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+pipeline.ResultFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}

// redirect sends the client to a presigned link once the object is known
// to exist, so unknown ids still get a 404 from this server.
func (h *Handlers) redirect(c *gin.Context, signer storage.SignedURLProvider, path string) {
	ctx := c.Request.Context()
	ok, err := h.results.Exists(ctx, path)
	if err == nil && !ok {
		c.String(http.StatusNotFound, "translation not found")
		return
	}
	var link string
	if err == nil {
		link, err = signer.SignedURL(ctx, path, pipeline.ResultFilename, h.presign)
	}
	if err != nil {
		h.log.WithContext(ctx).Error("Download failed", logger.ErrorFields("presign", err))
		c.String(http.StatusInternalServerError, "download failed")
		return
	}
	c.Redirect(http.StatusFound, link)
}

// translationResponse is the data of a successful API run.
type translationResponse struct {
	ID          string `json:"id"`
	Language    string `json:"language"`
	Translation string `json:"translation"`
	Comparison  any    `json:"comparison"`
	DownloadURL string `json:"download_url"`
}

// CreateTranslation runs the pipeline for a multipart API request.
func (h *Handlers) CreateTranslation(c *gin.Context) {
	in, closeFn, err := h.input(c)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	defer closeFn()

	res, err := h.runner.Run(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, translationResponse{
		ID:          res.ID,
		Language:    res.Language,
		Translation: res.Translation,
		Comparison:  res.Comparison,
		DownloadURL: DownloadURL(res.ID),
	})
}

// GetTranslation returns the history entry of one run.
func (h *Handlers) GetTranslation(c *gin.Context) {
	id, err := validation.ValidateUUID("id", c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	entry, err := h.history.Get(c.Request.Context(), id.String())
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			server.RespondWithError(c, apperrors.NotFound("translation", id.String()))
			return
		}
		server.RespondWithError(c, apperrors.StorageError("history get", err))
		return
	}
	server.RespondOK(c, entry)
}

// ListTranslations returns the most recent runs, newest first.
func (h *Handlers) ListTranslations(c *gin.Context) {
	limit := history.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			server.RespondWithError(c, apperrors.InvalidInput("limit", "must be between 1 and 500"))
			return
		}
		limit = n
	}
	entries, err := h.history.List(c.Request.Context(), limit)
	if err != nil {
		server.RespondWithError(c, apperrors.StorageError("history list", err))
		return
	}
	server.RespondOKWithMeta(c, entries, &server.Meta{Total: len(entries), Limit: limit})
}

// translateForm carries the tag-checked form fields.
type translateForm struct {
	Language string `form:"language" validate:"max=64"`
}

// input reads and checks the multipart form. Missing parts give a
// MISSING_FIELD error; closeFn releases the uploaded file.
func (h *Handlers) input(c *gin.Context) (pipeline.Input, func(), error) {
	noop := func() {}

	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return pipeline.Input{}, noop, apperrors.MissingField("file").WithCause(pipeline.ErrMissingInput)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return pipeline.Input{}, noop, apperrors.InvalidInput("file", "the upload is too large").WithCause(err)
		}
		return pipeline.Input{}, noop, apperrors.UploadFailed(err)
	}

	form := translateForm{Language: util.SanitizeString(c.PostForm("language"))}
	if form.Language == "" {
		return pipeline.Input{}, noop, apperrors.MissingField("language").WithCause(pipeline.ErrMissingInput)
	}
	if err := validation.Validate(form); err != nil {
		return pipeline.Input{}, noop, err
	}
	if err := validation.New().Extension("file", header.Filename, h.allowed).Err(); err != nil {
		return pipeline.Input{}, noop, err
	}

	f, err := header.Open()
	if err != nil {
		return pipeline.Input{}, noop, apperrors.UploadFailed(err)
	}
	return pipeline.Input{Filename: header.Filename, Body: f, Language: form.Language}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

func isMissing(err error) bool {
	return errors.Is(err, pipeline.ErrMissingInput)
}
