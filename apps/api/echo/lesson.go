package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core"
	"github.com/fbasso/maestro/core/lesson"
)

type lessonApi struct {
	svc      lesson.ServiceInterface
	validate *validator.Validate
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc lesson.ServiceInterface, validate *validator.Validate) {
	api := lessonApi{svc: svc, validate: validate}

	lg := g.Group("/lessons", jwt)
	lg.GET("", api.query)
	lg.POST("", api.create)
	lg.GET("/:id", api.retrieve)
	lg.PUT("/:id", api.update)
	lg.DELETE("/:id", api.destroy)
}

// bindLessonFilter accepts `from`/`to` as plain dates (2006-01-02) or
// RFC3339 timestamps.
func bindLessonFilter(ctx echo.Context) (*lesson.QueryFilter, error) {
	filter := new(lesson.QueryFilter)
	filter.TeacherID = ctx.QueryParam("teacher")

	var err error
	if filter.From, err = parseDateParam(ctx.QueryParam("from")); err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "from", Error: err.Error()})
	}
	if filter.To, err = parseDateParam(ctx.QueryParam("to")); err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "to", Error: err.Error()})
	}
	filter.Clean()
	return filter, nil
}

func parseDateParam(val string) (time.Time, error) {
	if val == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, errors.New("must be a date (2006-01-02) or an RFC3339 timestamp")
	}
	return t, nil
}

// Handlers

func (api *lessonApi) create(ctx echo.Context) error {
	var data lesson.NewLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLesson")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, lsn)
}

func (api *lessonApi) query(ctx echo.Context) error {
	filter, err := bindLessonFilter(ctx)
	if err != nil {
		return err
	}

	lessons, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying lessons")
	}
	if lessons == nil {
		lessons = []lesson.Detail{}
	}
	return ctx.JSON(http.StatusOK, lessons)
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	lsn, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) update(ctx echo.Context) error {
	det, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data lesson.UpdateLesson
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLesson")
	}
	if err := data.Validate(ctx.Request().Context(), det.Lesson, api.validate); err != nil {
		return err
	}

	lsn, err := api.svc.Update(ctx.Request().Context(), det.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, lsn)
}

func (api *lessonApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
