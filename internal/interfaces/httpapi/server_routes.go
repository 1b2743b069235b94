package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerHistoryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/standings/{kind}", handler.ListStandings)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/hall-of-fame/{category}", handler.ListHallOfFame)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/members", handler.ListMembers)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/matchups", handler.ListMatchups)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/onboard", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunOnboardJob)))
	mux.Handle("POST /v1/internal/jobs/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshJob)))
}
