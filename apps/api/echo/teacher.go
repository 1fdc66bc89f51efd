package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core/calendar"
	"github.com/fbasso/maestro/core/teacher"
)

type teacherApi struct {
	svc      teacher.ServiceInterface
	calSvc   calendar.ServiceInterface
	validate *validator.Validate
}

func registerTeacherAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc teacher.ServiceInterface,
	calSvc calendar.ServiceInterface,
	validate *validator.Validate,
) {
	api := teacherApi{svc: svc, calSvc: calSvc, validate: validate}

	tg := g.Group("/teachers", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
	tg.POST("/:id/send-calendar", api.sendCalendar)
}

// Handlers

func (api *teacherApi) create(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	tch, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (api *teacherApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	teachers, err := api.svc.QueryAll(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []teacher.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	tch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) update(ctx echo.Context) error {
	tch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(ctx.Request().Context(), tch, api.validate, api.svc); err != nil {
		return err
	}

	tch, err = api.svc.Update(ctx.Request().Context(), tch.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *teacherApi) sendCalendar(ctx echo.Context) error {
	if err := api.calSvc.SendFeedLink(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "calendar link sent"})
}

type SuccessResponse struct {
	Success string `json:"success"`
}
