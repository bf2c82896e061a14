package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"MarketBluff/internal/domain/models"
	domrepo "MarketBluff/internal/domain/repository"
	"MarketBluff/internal/usecase"
	xhttp "MarketBluff/pkg/http"
	xlogger "MarketBluff/pkg/logger"
)

// AnalysisEchoHandler serves the analysis and universe endpoints.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analysis *usecase.BluffAnalysisUseCase
	universe *usecase.UniverseUseCase
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analysis *usecase.BluffAnalysisUseCase, universe *usecase.UniverseUseCase) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{logger: logger, analysis: analysis, universe: universe}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api/v1")
	g.POST("/analyze", h.Analyze)
	g.GET("/universe/default", h.DefaultUniverse)
	g.GET("/tickers/search", h.SearchTickers)
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.UnprocessableResponse(c, verr)
	}

	summary, err := h.analysis.Analyze(c.Request().Context(), usecase.AnalyzeParams{
		Tickers:             req.Tickers,
		LookbackMonths:      *req.LookbackMonths,
		DeclineThresholdPct: *req.DeclineThresholdPct,
		MinMarketCapMUSD:    req.MinMarketCapMUSD,
	})
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, models.NewAnalyzeResponse(summary))
}

func (h *AnalysisEchoHandler) DefaultUniverse(c echo.Context) error {
	u, err := h.universe.DefaultUniverse(c.Request().Context())
	if err != nil {
		h.logger.Error("universe usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=300")
	return xhttp.SuccessResponse(c, models.NewUniverseResponse(u))
}

func (h *AnalysisEchoHandler) SearchTickers(c echo.Context) error {
	req := &models.TickerSearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.UnprocessableResponse(c, verr)
	}

	query, tickers, err := h.universe.SearchTickers(c.Request().Context(), req.Q)
	if err != nil {
		h.logger.Error("ticker search error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, models.TickerSearchResponse{Query: query, Tickers: tickers})
}

func toAppError(err error) error {
	switch {
	case errors.Is(err, domrepo.ErrUniverseUnavailable):
		return xhttp.ServiceUnavailableError("default universe is unavailable").WithError(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return xhttp.ServiceUnavailableError("request cancelled before completion").WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
