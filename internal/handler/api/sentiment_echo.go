package api

import (
	"errors"
	"time"

	"SentiPull/internal/domain/models"
	domrepo "SentiPull/internal/domain/repository"
	"SentiPull/internal/service/ratelimit"
	"SentiPull/internal/usecase"
	"SentiPull/pkg/config"
	xhttp "SentiPull/pkg/http"
	xlogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"

	"github.com/labstack/echo/v4"
)

const historyMerged = "merged"

// SentimentEchoHandler serves sentiment, insider and price endpoints.
type SentimentEchoHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.SentimentPipeline
	insider  *usecase.InsiderScorer
	prices   *usecase.PricesUseCase
	jobs     *usecase.JobService
	store    domrepo.SentimentStore

	lookbackDays        int
	insiderLookbackDays int
	rl                  *ratelimit.Limiter
	jobsPerMinute       int
	now                 func() time.Time
}

// HandlerOption configures SentimentEchoHandler.
type HandlerOption func(*SentimentEchoHandler)

// WithStore enables /sentiment/history and store health checks.
func WithStore(s domrepo.SentimentStore) HandlerOption {
	return func(h *SentimentEchoHandler) { h.store = s }
}

// WithLookback sets the default windows used when from/to are omitted.
func WithLookback(sentimentDays, insiderDays int) HandlerOption {
	return func(h *SentimentEchoHandler) {
		if sentimentDays > 0 {
			h.lookbackDays = sentimentDays
		}
		if insiderDays > 0 {
			h.insiderLookbackDays = insiderDays
		}
	}
}

// WithJobRateLimit caps job creation per client IP.
func WithJobRateLimit(rl *ratelimit.Limiter, perMinute int) HandlerOption {
	return func(h *SentimentEchoHandler) {
		h.rl = rl
		h.jobsPerMinute = perMinute
	}
}

func NewSentimentEchoHandler(
	logger *xlogger.Logger,
	pipeline *usecase.SentimentPipeline,
	insider *usecase.InsiderScorer,
	prices *usecase.PricesUseCase,
	jobs *usecase.JobService,
	opts ...HandlerOption,
) *SentimentEchoHandler {
	h := &SentimentEchoHandler{
		logger:              logger,
		pipeline:            pipeline,
		insider:             insider,
		prices:              prices,
		jobs:                jobs,
		lookbackDays:        7,
		insiderLookbackDays: 365,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *SentimentEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/sentiment/daily", h.Daily)
	g.GET("/sentiment/merged", h.Merged)
	g.GET("/sentiment/history", h.History)
	g.POST("/sentiment/jobs", h.CreateJob)
	g.GET("/sentiment/jobs/:id", h.GetJob)
	g.GET("/insider/score", h.InsiderScore)
	g.GET("/insider/mspr", h.InsiderMSPR)
	g.GET("/prices/indicators", h.PriceIndicators)
}

func (h *SentimentEchoHandler) Health(c echo.Context) error {
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			h.logger.Warn("store health check failed", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("storage unavailable").WithError(err))
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *SentimentEchoHandler) Daily(c echo.Context) error {
	req := &models.DailySentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.resolveRange(req.From, req.To, h.lookbackDays)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	series, err := h.pipeline.Daily(c.Request().Context(), req.Source, req.Symbol, r)
	if err != nil {
		return h.fail(c, "daily sentiment", err)
	}
	return xhttp.SuccessResponse(c, &models.DailySentimentResponse{
		Symbol: req.Symbol,
		Source: req.Source,
		From:   r.Start.Format(util.DateLayout),
		To:     r.End.Format(util.DateLayout),
		Series: models.NewDailySentimentDTOs(series),
	})
}

// Merged runs both providers and returns the joined series without persisting it.
func (h *SentimentEchoHandler) Merged(c echo.Context) error {
	req := &models.MergedSentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.resolveRange(req.From, req.To, h.lookbackDays)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	report, err := h.pipeline.Run(c.Request().Context(), models.RunParams{
		Symbol: req.Symbol,
		Start:  r.Start,
		End:    r.End,
	})
	if err != nil {
		return h.fail(c, "merged sentiment", err)
	}
	return xhttp.SuccessResponse(c, &models.MergedSentimentResponse{
		Symbol:  req.Symbol,
		SourceA: report.SourceA,
		SourceB: report.SourceB,
		From:    r.Start.Format(util.DateLayout),
		To:      r.End.Format(util.DateLayout),
		Rows:    models.NewMergedSentimentDTOs(report.Merged),
	})
}

// History reads previously persisted series.
func (h *SentimentEchoHandler) History(c echo.Context) error {
	if h.store == nil {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("storage is disabled"))
	}
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.resolveRange(req.From, req.To, h.lookbackDays)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	ctx := c.Request().Context()
	if req.Source == historyMerged {
		rows, err := h.store.QueryMerged(ctx, req.Symbol, r.Start, r.End)
		if err != nil {
			return h.fail(c, "merged history", err)
		}
		return xhttp.ListResponse(c, models.NewMergedSentimentDTOs(rows), int64(len(rows)))
	}

	series, err := h.store.QueryDaily(ctx, req.Symbol, req.Source, r.Start, r.End)
	if err != nil {
		return h.fail(c, "daily history", err)
	}
	return xhttp.ListResponse(c, models.NewDailySentimentDTOs(series), int64(len(series)))
}

func (h *SentimentEchoHandler) CreateJob(c echo.Context) error {
	if h.rl != nil && h.jobsPerMinute > 0 {
		if !h.rl.Allow("jobs:"+c.RealIP(), float64(h.jobsPerMinute), float64(h.jobsPerMinute)/60) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many job requests"))
		}
	}

	req := &models.CreateJobRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.resolveRange(req.From, req.To, h.lookbackDays)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	job, err := h.jobs.Create(c.Request().Context(), models.RunParams{
		Symbol:         req.Symbol,
		Start:          r.Start,
		End:            r.End,
		IncludeInsider: req.IncludeInsider,
		Persist:        req.Persist == nil || *req.Persist,
		Publish:        true,
	})
	if err != nil {
		return h.fail(c, "create job", err)
	}
	return xhttp.AcceptedResponse(c, job)
}

func (h *SentimentEchoHandler) GetJob(c echo.Context) error {
	req := &models.JobIDRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	job, err := h.jobs.Get(c.Request().Context(), req.ID)
	if err != nil {
		return h.fail(c, "get job", err)
	}
	return xhttp.SuccessResponse(c, job)
}

func (h *SentimentEchoHandler) InsiderScore(c echo.Context) error {
	req := &models.InsiderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.resolveRange(req.From, req.To, h.insiderLookbackDays)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	score, err := h.insider.Score(c.Request().Context(), req.Symbol, r.Start, r.End)
	if err != nil {
		return h.fail(c, "insider score", err)
	}
	return xhttp.SuccessResponse(c, models.NewInsiderScoreDTO(score))
}

func (h *SentimentEchoHandler) InsiderMSPR(c echo.Context) error {
	req := &models.InsiderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	r, err := h.resolveRange(req.From, req.To, h.insiderLookbackDays)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	rows, err := h.insider.Sentiment(c.Request().Context(), req.Symbol, r.Start, r.End)
	if err != nil {
		return h.fail(c, "insider mspr", err)
	}
	return xhttp.SuccessResponse(c, &models.InsiderSentimentResponse{
		Symbol: req.Symbol,
		From:   r.Start.Format(util.DateLayout),
		To:     r.End.Format(util.DateLayout),
		Rows:   models.NewInsiderSentimentDTOs(rows),
	})
}

func (h *SentimentEchoHandler) PriceIndicators(c echo.Context) error {
	req := &models.PriceIndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	// SMA_20 needs at least 20 sessions before the first row is defined
	r, err := h.resolveRange(req.From, req.To, 90)
	if err != nil {
		return xhttp.AppErrorResponse(c, err)
	}

	rows, err := h.prices.Indicators(c.Request().Context(), req.Symbol, r.Start, r.End)
	if err != nil {
		return h.fail(c, "price indicators", err)
	}
	return xhttp.SuccessResponse(c, &models.PriceIndicatorsResponse{
		Symbol: req.Symbol,
		From:   r.Start.Format(util.DateLayout),
		To:     r.End.Format(util.DateLayout),
		Rows:   models.NewPriceIndicatorsDTOs(rows),
	})
}

// resolveRange defaults to to=today and from=to-(days-1).
func (h *SentimentEchoHandler) resolveRange(from, to string, days int) (util.DateRange, error) {
	end := util.ParseDateDefault(to, h.now().UTC())
	start := util.ParseDateDefault(from, end.AddDate(0, 0, -(days - 1)))
	if start.After(end) {
		return util.DateRange{}, xhttp.BadRequestError("from must be on or before to").WithParam("from", from).WithParam("to", to)
	}
	return util.NewDateRange(start, end), nil
}

func (h *SentimentEchoHandler) fail(c echo.Context, op string, err error) error {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, usecase.ErrJobNotFound):
		appErr = xhttp.NotFoundError("job not found")
	case errors.Is(err, usecase.ErrRangeTooLong), errors.Is(err, usecase.ErrUnknownSource):
		appErr = xhttp.BadRequestError(err.Error())
	case errors.Is(err, config.ErrMissingCredential):
		appErr = xhttp.ServiceUnavailableError("provider credentials are not configured")
	default:
		if appErr = xhttp.UpstreamError(err); appErr != nil {
			break
		}
		h.logger.Error(op+" failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	h.logger.Warn(op+" rejected", xlogger.Int("status", appErr.Status), xlogger.Error(err))
	return xhttp.AppErrorResponse(c, appErr)
}
