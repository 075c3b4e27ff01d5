// Package api exposes the download service over HTTP (Echo).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Raman-79/yt-downloader/pkg/gateway"
	"github.com/Raman-79/yt-downloader/pkg/logger"
	"github.com/Raman-79/yt-downloader/pkg/models"
)

// Service is the part of gateway.Service the handlers use.
type Service interface {
	Fetch(ctx context.Context, rawURL, format, identifier string) (*models.FetchResult, error)
	VideoInfo(ctx context.Context, rawURL string) (*models.VideoInfo, error)
}

type Options struct {
	Addr string
	// Web serves the HTML page on "/".
	Web bool
	// Gatherer backs GET /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
	// MaxFileSize is shown on the HTML page.
	MaxFileSize int64
}

type Server struct {
	echo   *echo.Echo
	addr   string
	svc    Service
	logger *slog.Logger
	index  []byte
}

// NewServer builds the Echo server with recovery, request ids, request
// logging and the API routes.
func NewServer(log *slog.Logger, svc Service, opts Options) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		addr:   opts.Addr,
		svc:    svc,
		logger: log.With(slog.String("component", "server")),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(s.contextLogger)
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", c.RealIP()),
				slog.String("request_id", v.RequestID),
			)
			return nil
		},
	}))

	e.POST("/api/download", s.handleDownload)
	e.GET("/api/info", s.handleInfo)
	e.GET("/health", s.handleHealth)
	if opts.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	if opts.Web {
		page, err := renderIndex(opts.MaxFileSize)
		if err != nil {
			return nil, err
		}
		s.index = page
		e.GET("/", s.handleWebIndex)
	}

	s.echo = e
	return s, nil
}

// Start blocks until the server stops. http.ErrServerClosed is returned after Stop.
func (s *Server) Start() error {
	s.logger.Info("Starting API server", "addr", s.addr)
	return s.echo.Start(s.addr)
}

// Stop gracefully shuts down the server using the given context.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be mounted or driven by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// contextLogger attaches a logger carrying the request id to the request context.
func (s *Server) contextLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		l := s.logger.With(slog.String("request_id", rid))
		c.SetRequest(c.Request().WithContext(logger.WithContext(c.Request().Context(), l)))
		return next(c)
	}
}

func (s *Server) handleDownload(c echo.Context) error {
	var body models.DownloadBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		logger.FromContext(c.Request().Context()).Debug("Undecodable request body", "err", err)
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}

	// The download outlives a disconnected client so the cache still gets filled.
	ctx := context.WithoutCancel(c.Request().Context())
	res, err := s.svc.Fetch(ctx, body.URL, body.Format, body.ID)
	if err != nil {
		return s.respondError(c, err)
	}

	msg := "File downloaded and uploaded successfully"
	if res.CacheHit {
		msg = "File already exists in cache"
	}
	return c.JSON(http.StatusOK, models.APIResponse{Message: msg, PresignedURL: res.PresignedURL})
}

func (s *Server) handleInfo(c echo.Context) error {
	info, err := s.svc.VideoInfo(c.Request().Context(), c.QueryParam("url"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWebIndex(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, s.index)
}

// respondError logs err and writes the caller-facing body. Server-side
// failures only expose a fresh errorId that ties the response to the log line.
func (s *Server) respondError(c echo.Context, err error) error {
	log := logger.FromContext(c.Request().Context())
	kind := gateway.KindOf(err)
	status := kind.Status()

	if status < http.StatusInternalServerError {
		log.Info("Request rejected", "kind", kind.String(), "status", status, "err", err)
		return c.JSON(status, models.ErrorResponse{Error: gateway.PublicMessage(err)})
	}

	errorID := uuid.NewString()
	log.Error("Request failed", "errorId", errorID, "kind", kind.String(), "err", err)
	return c.JSON(status, models.ErrorResponse{Error: gateway.PublicMessage(err), ErrorID: errorID})
}

func renderIndex(maxFileSize int64) ([]byte, error) {
	t, err := template.New("index").Parse(indexTmpl)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, struct{ MaxSizeMB int64 }{maxFileSize >> 20}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
