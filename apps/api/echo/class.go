package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core/class"
)

type classApi struct {
	svc      class.ServiceInterface
	validate *validator.Validate
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc class.ServiceInterface, validate *validator.Validate) {
	api := classApi{svc: svc, validate: validate}

	cg := g.Group("/classes", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/active", api.retrieveActive)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	cls, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	classes, err := api.svc.QueryAll(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []class.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	cls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) retrieveActive(ctx echo.Context) error {
	cls, err := api.svc.GetActive(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	cls, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(ctx.Request().Context(), cls, api.validate); err != nil {
		return err
	}

	cls, err = api.svc.Update(ctx.Request().Context(), cls.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
