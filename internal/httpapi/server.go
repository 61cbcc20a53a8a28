// Package httpapi exposes the rankings, predictions and report generation
// as a JSON API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"deskinsight/internal/domain"
	"deskinsight/internal/model"
	"deskinsight/internal/report"
	"deskinsight/internal/telemetry"
)

type Aggregator interface {
	TopClientsByIncidentCount(ctx context.Context, limit int) ([]domain.ClientIncidentCount, error)
	TopIncidentTypesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error)
	TopEmployeesByResolutionTime(ctx context.Context, limit int) ([]domain.ResolutionTime, error)
	ClientMetrics(ctx context.Context, limit int) ([]domain.ClientMetrics, error)
}

type Predictor interface {
	PredictRaw(ctx context.Context, kind string, values []any) (model.Result, error)
}

type Reporter interface {
	Build(ctx context.Context, topN int, date time.Time) (report.Report, error)
}

type Deps struct {
	Aggregator  Aggregator
	Predictor   Predictor
	Reporter    Reporter // optional
	ArtifactDir string
	ReportTopN  int
	Location    *time.Location
	Logger      *zap.Logger
}

type handler struct {
	Deps
}

var validate = validator.New()

// New builds the echo instance with all routes registered.
func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Location == nil {
		d.Location = time.Local
	}
	h := &handler{Deps: d}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if traceID := telemetry.TraceID(c.Request().Context()); traceID != "" {
				fields = append(fields, zap.String("trace_id", traceID))
			}
			if v.Error != nil {
				d.Logger.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			d.Logger.Info("request", fields...)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if d.ArtifactDir != "" {
		e.Static("/artifacts", d.ArtifactDir)
	}

	api := e.Group("/api/v1")
	api.GET("/metrics/top-clients", h.topClients)
	api.GET("/metrics/incident-types", h.incidentTypes)
	api.GET("/metrics/employees", h.employees)
	api.GET("/metrics/clients", h.clientMetrics)
	api.POST("/predict", h.predict)
	if d.Reporter != nil {
		api.POST("/reports", h.buildReport)
	}
	return e
}

// Run serves e on addr until ctx is done, then shuts it down.
func Run(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("http server stopped")
	return nil
}

func queryLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
	}
	return limit, nil
}

func listHandler[T any](name string, fn func(context.Context, int) ([]T, error)) func(echo.Context) error {
	return func(c echo.Context) (err error) {
		ctx, span := telemetry.StartSpan(c.Request().Context(), "httpapi."+name)
		defer func() { telemetry.EndSpan(span, err) }()

		limit, err := queryLimit(c)
		if err != nil {
			return err
		}
		rows, err := fn(ctx, limit)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, rows)
	}
}

func (h *handler) topClients(c echo.Context) error {
	return listHandler("top_clients", h.Aggregator.TopClientsByIncidentCount)(c)
}

func (h *handler) incidentTypes(c echo.Context) error {
	return listHandler("incident_types", h.Aggregator.TopIncidentTypesByResolutionTime)(c)
}

func (h *handler) employees(c echo.Context) error {
	return listHandler("employees", h.Aggregator.TopEmployeesByResolutionTime)(c)
}

func (h *handler) clientMetrics(c echo.Context) error {
	return listHandler("client_metrics", h.Aggregator.ClientMetrics)(c)
}

type predictRequest struct {
	Model    string `json:"model" validate:"required"`
	Features []any  `json:"features" validate:"required"`
}

func (h *handler) predict(c echo.Context) (err error) {
	ctx, span := telemetry.StartSpan(c.Request().Context(), "httpapi.predict")
	defer func() { telemetry.EndSpan(span, err) }()

	var req predictRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.Predictor.PredictRaw(ctx, req.Model, req.Features)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

type reportResponse struct {
	Path      string   `json:"path"`
	EmailPath string   `json:"email_path"`
	Charts    []string `json:"charts"`
	Rows      int      `json:"rows"`
}

func (h *handler) buildReport(c echo.Context) (err error) {
	ctx, span := telemetry.StartSpan(c.Request().Context(), "httpapi.report")
	defer func() { telemetry.EndSpan(span, err) }()

	topN := h.ReportTopN
	if c.QueryParam("top") != "" {
		if topN, err = strconv.Atoi(c.QueryParam("top")); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "top must be an integer")
		}
	}
	rep, err := h.Reporter.Build(ctx, topN, time.Now().In(h.Location))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, reportResponse{
		Path:      rep.Path,
		EmailPath: rep.EmailPath,
		Charts:    rep.Charts,
		Rows:      rep.Rows,
	})
}

// httpError maps domain errors to client or server statuses.
func httpError(err error) error {
	var (
		limitErr  *domain.InvalidLimitError
		vectorErr *domain.InvalidFeatureVectorError
		modelErr  *domain.UnsupportedModelError
		dataErr   *domain.InsufficientDataError
		dateErr   *domain.DateParseError
		recordErr *domain.MalformedRecordError
	)
	switch {
	case errors.As(err, &limitErr), errors.As(err, &vectorErr), errors.As(err, &modelErr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.As(err, &dataErr), errors.As(err, &dateErr), errors.As(err, &recordErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error()).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
