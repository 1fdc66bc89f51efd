package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fbasso/maestro/core/calendar"
)

type calendarApi struct {
	svc calendar.ServiceInterface
}

func registerCalendarAPI(g *echo.Group, svc calendar.ServiceInterface) {
	api := calendarApi{svc: svc}

	// public: calendar clients subscribe to this URL and poll it without
	// credentials
	g.GET("/calendar/ical/:teacherID", api.feed)
}

func (api *calendarApi) feed(ctx echo.Context) error {
	feed, err := api.svc.TeacherFeed(ctx.Request().Context(), ctx.Param("teacherID"))
	if err != nil {
		return err
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, feed.Filename))
	return ctx.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed.Content))
}
