package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fantasy-history/internal/platform/logging"
	"github.com/riskibarqy/fantasy-history/internal/usecase"
)

type Handler struct {
	historyService  *usecase.HistoryService
	pipelineService *usecase.PipelineService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	historyService *usecase.HistoryService,
	pipelineService *usecase.PipelineService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		historyService:  historyService,
		pipelineService: pipelineService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeague")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	item, err := h.historyService.GetLeague(ctx, leagueID, platformParam(r))
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(item))
}

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	kind := r.PathValue("kind")
	season, err := intQueryParam(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.historyService.ListStandings(ctx, usecase.StandingsQuery{
		LeagueID: leagueID,
		Platform: platformParam(r),
		Kind:     kind,
		Season:   season,
		OwnerID:  r.URL.Query().Get("owner_id"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "league_id", leagueID, "kind", kind, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, listDTO{Kind: strings.ToLower(kind), Items: asAny(rows), Count: len(rows)})
}

func (h *Handler) ListHallOfFame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListHallOfFame")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	category := r.PathValue("category")
	entries, err := h.historyService.ListHallOfFame(ctx, leagueID, platformParam(r), category)
	if err != nil {
		h.logger.WarnContext(ctx, "list hall of fame failed", "league_id", leagueID, "category", category, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, listDTO{Kind: category, Items: asAny(entries), Count: len(entries)})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMembers")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	members, err := h.historyService.ListMembers(ctx, usecase.MembersQuery{
		LeagueID: leagueID,
		Platform: platformParam(r),
		Search:   r.URL.Query().Get("q"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list members failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, listDTO{Kind: "members", Items: asAny(members), Count: len(members)})
}

func (h *Handler) ListMatchups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchups")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	season, err := intQueryParam(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := intQueryParam(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.historyService.ListMatchups(ctx, usecase.MatchupsQuery{
		LeagueID: leagueID,
		Platform: platformParam(r),
		Season:   season,
		Week:     week,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list matchups failed", "league_id", leagueID, "season", season, "week", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, listDTO{Kind: "matchups", Items: asAny(items), Count: len(items)})
}

func platformParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("platform"))
}

// intQueryParam returns 0 when the parameter is absent.
func intQueryParam(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
