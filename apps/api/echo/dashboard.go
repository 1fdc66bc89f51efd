package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core/dashboard"
	"github.com/fbasso/maestro/core/lesson"
)

type dashboardApi struct {
	svc dashboard.ServiceInterface
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc dashboard.ServiceInterface) {
	api := dashboardApi{svc: svc}

	dg := g.Group("/dashboard", jwt)
	dg.GET("/stats", api.stats)
	dg.GET("/upcoming", api.upcoming)
	dg.GET("/critical", api.critical)
}

// Handlers

func (api *dashboardApi) stats(ctx echo.Context) error {
	stats, err := api.svc.Stats(ctx.Request().Context(), time.Now())
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *dashboardApi) upcoming(ctx echo.Context) error {
	var limit int
	if val := ctx.QueryParam("limit"); val != "" {
		limit, _ = strconv.Atoi(val)
	}

	lessons, err := api.svc.UpcomingLessons(ctx.Request().Context(), time.Now(), limit)
	if err != nil {
		return errors.Wrap(err, "querying upcoming lessons")
	}
	if lessons == nil {
		lessons = []lesson.Detail{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *dashboardApi) critical(ctx echo.Context) error {
	mods, err := api.svc.CriticalModules(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying critical modules")
	}

	resp := make([]ModuleResponse, 0, len(mods))
	for _, mod := range mods {
		resp = append(resp, newModuleResponse(mod))
	}
	return ctx.JSON(http.StatusOK, resp)
}
