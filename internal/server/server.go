package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"sentiment_dashboard/internal/analysis"
	"sentiment_dashboard/internal/charts"
	"sentiment_dashboard/internal/config"
	"sentiment_dashboard/internal/dashboard"
	"sentiment_dashboard/internal/loader"
	"sentiment_dashboard/internal/metrics"
	"sentiment_dashboard/internal/middleware"
	"sentiment_dashboard/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Поле формы с загружаемым файлом.
const uploadField = "file"

var (
	errBadUpload     = errors.New("bad upload")
	errWrongFileType = errors.New("only .xlsx files are accepted")
)

// Server хранит зависимости HTTP-обработчиков дашборда.
type Server struct {
	cfg      *config.Config
	builder  *dashboard.Builder
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
}

// NewServer создаёт Server. gatherer отдаётся на /metrics.
func NewServer(cfg *config.Config, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	renderer := charts.NewRenderer(charts.Sizes{
		PieSize:    cfg.Charts.PieSize,
		WideWidth:  cfg.Charts.WideWidth,
		BarHeight:  cfg.Charts.BarHeight,
		LineHeight: cfg.Charts.LineHeight,
	})
	return &Server{
		cfg:      cfg,
		builder:  dashboard.NewBuilder(renderer, cfg.PreviewRows, m.ObserveRender),
		metrics:  m,
		gatherer: gatherer,
	}
}

// Routes собирает маршрутизатор со всеми обработчиками и middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(s.metrics.Middleware)

	r.Get("/", s.Index)
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.UploadRateLimit, time.Minute))
		r.Post("/upload", s.Upload)
		r.Post("/api/summary", s.Summary)
	})
	return r
}

// HealthCheck всегда отвечает 200 OK: внешних зависимостей у сервиса нет.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// Index показывает форму загрузки.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, "")
}

// Upload разбирает загруженную книгу и отдаёт страницу с графиками.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	log := middleware.Log(r)

	ds, name, err := s.readUpload(w, r)
	if err != nil {
		status := statusFor(err)
		log.WithError(err).WithField("status", status).Warn("Upload rejected")
		s.renderIndex(w, r, status, err.Error())
		return
	}

	page, err := s.builder.Build(ds, name)
	if err != nil {
		log.WithError(err).Error("Dashboard build failed")
		http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := dashboard.Render(&buf, page); err != nil {
		log.WithError(err).Error("Dashboard render failed")
		http.Error(w, "Failed to render dashboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// Summary возвращает JSON со всеми агрегатами загруженной книги.
func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	ds, _, err := s.readUpload(w, r)
	if err != nil {
		status := statusFor(err)
		middleware.Log(r).WithError(err).WithField("status", status).Warn("Summary upload rejected")
		writeJSON(w, r, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, r, http.StatusOK, analysis.Summarize(ds))
}

// readUpload читает файл из поля формы и разбирает его loader-ом.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*models.Dataset, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		s.metrics.Upload("bad_request")
		return nil, "", fmt.Errorf("%w: %w", errBadUpload, err)
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		s.metrics.Upload("bad_request")
		return nil, "", fmt.Errorf("%w: %s", errWrongFileType, header.Filename)
	}

	ds, err := loader.Load(file)
	if err != nil {
		s.metrics.Upload("invalid")
		return nil, "", err
	}

	s.metrics.Upload("ok")
	s.metrics.RecordsParsed.Observe(float64(len(ds.Records)))
	middleware.Log(r).WithFields(map[string]interface{}{
		"file":    header.Filename,
		"size":    header.Size,
		"records": len(ds.Records),
	}).Info("Workbook uploaded")
	return ds, header.Filename, nil
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dashboard.RenderIndex(w, dashboard.IndexData{MaxUploadMB: s.cfg.MaxUploadMB, Error: msg}); err != nil {
		middleware.Log(r).WithError(err).Error("Index render failed")
	}
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadUpload), errors.Is(err, errWrongFileType):
		return http.StatusBadRequest
	case errors.Is(err, loader.ErrMissingColumn),
		errors.Is(err, loader.ErrInvalidValue),
		errors.Is(err, loader.ErrNoRecords),
		errors.Is(err, loader.ErrNotWorkbook):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON кодирует v целиком до отправки заголовка, чтобы ошибка кодирования стала 500.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		middleware.Log(r).WithError(err).Error("Failed to encode response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
