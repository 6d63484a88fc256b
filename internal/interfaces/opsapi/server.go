// Package opsapi exposes the operational HTTP surface: health, the
// latest cycle report, recent sync logs, and a manual cycle trigger.
package opsapi

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"

	"github.com/bytedance/sonic"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/synclog"
	"github.com/riskibarqy/fantrax-team-manager/internal/platform/logging"
	"github.com/riskibarqy/fantrax-team-manager/internal/usecase"
)

type Server struct {
	cycles   *usecase.CycleService
	syncLogs synclog.Repository
	teamID   string
	logger   *logging.Logger

	lastReport atomic.Pointer[usecase.CycleReport]
	httpServer *fasthttp.Server
}

func NewServer(cycles *usecase.CycleService, syncLogs synclog.Repository, teamID string, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Server{
		cycles:   cycles,
		syncLogs: syncLogs,
		teamID:   teamID,
		logger:   logger,
	}
	s.httpServer = &fasthttp.Server{
		Handler: s.route,
		Name:    "fantrax-team-manager",
	}
	return s
}

// RecordReport publishes a cycle report to the status endpoint.
func (s *Server) RecordReport(report *usecase.CycleReport) {
	if report != nil {
		s.lastReport.Store(report)
	}
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("ops server starting", "addr", addr)
	return s.httpServer.ListenAndServe(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.ShutdownWithContext(ctx)
}

func (s *Server) route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		s.handleHealth(ctx)
	case "/v1/status":
		s.handleStatus(ctx)
	case "/v1/synclogs":
		s.handleSyncLogs(ctx)
	case "/v1/cycle":
		s.handleCycle(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "GET only")
		return
	}
	report := s.lastReport.Load()
	if report == nil {
		writeJSON(ctx, fasthttp.StatusOK, map[string]any{"last_cycle": nil})
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{"last_cycle": report})
}

func (s *Server) handleSyncLogs(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "GET only")
		return
	}
	limit := 20
	if raw := string(ctx.QueryArgs().Peek("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, fasthttp.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := s.syncLogs.ListByTeam(ctx, s.teamID, limit)
	if err != nil {
		s.logger.Error("list sync logs failed", "error", err)
		writeError(ctx, fasthttp.StatusInternalServerError, "storage unavailable")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleCycle(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "POST only")
		return
	}
	// No period means run against whatever the platform has in play.
	period := 0
	if raw := string(ctx.QueryArgs().Peek("period")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, fasthttp.StatusBadRequest, "period must be a positive integer")
			return
		}
		period = parsed
	}

	report, err := s.cycles.RunCycle(ctx, s.teamID, period)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrCycleInProgress):
			writeError(ctx, fasthttp.StatusConflict, err.Error())
		case errors.Is(err, usecase.ErrInvalidInput):
			writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		case errors.Is(err, usecase.ErrPlatformAuth):
			writeError(ctx, fasthttp.StatusBadGateway, err.Error())
		default:
			s.logger.Error("cycle failed", "period", period, "error", err)
			writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
		}
		return
	}

	s.RecordReport(report)
	writeJSON(ctx, fasthttp.StatusOK, report)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}
