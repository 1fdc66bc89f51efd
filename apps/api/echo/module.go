package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/fbasso/maestro/core/module"
)

type moduleApi struct {
	svc      module.ServiceInterface
	validate *validator.Validate
}

func registerModuleAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc module.ServiceInterface, validate *validator.Validate) {
	api := moduleApi{svc: svc, validate: validate}

	mg := g.Group("/modules", jwt)
	mg.GET("", api.query)
	mg.POST("", api.create)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy)
}

// ModuleResponse decorates a module's hour-delivery progress with its
// criticality grade.
type ModuleResponse struct {
	module.WithHours
	Criticality string `json:"criticality"`
}

func newModuleResponse(mod module.WithHours) ModuleResponse {
	return ModuleResponse{WithHours: mod, Criticality: mod.Criticality().String()}
}

// Handlers

func (api *moduleApi) create(ctx echo.Context) error {
	var data module.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate); err != nil {
		return err
	}

	mod, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, mod)
}

func (api *moduleApi) query(ctx echo.Context) error {
	filter := new(module.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []ModuleResponse{})
	}
	filter.Clean()

	mods, err := api.svc.QueryWithHours(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}

	resp := make([]ModuleResponse, 0, len(mods))
	for _, mod := range mods {
		resp = append(resp, newModuleResponse(mod))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *moduleApi) retrieve(ctx echo.Context) error {
	mod, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *moduleApi) update(ctx echo.Context) error {
	mod, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data module.UpdateModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateModule")
	}
	if err := data.Validate(ctx.Request().Context(), mod, api.validate); err != nil {
		return err
	}

	mod, err = api.svc.Update(ctx.Request().Context(), mod.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *moduleApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
