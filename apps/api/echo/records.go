package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-records/core/record"
	"github.com/trezcool/masomo-records/core/resource"
)

type recordsAPI struct {
	services map[string]*resource.Service
	order    []string
}

func registerRecordsAPI(g *echo.Group, services []*resource.Service) {
	api := &recordsAPI{services: make(map[string]*resource.Service, len(services))}
	for _, svc := range services {
		coll := svc.Schema().Collection
		api.services[coll] = svc
		api.order = append(api.order, coll)
	}

	g.GET("/collections", api.collections)
	g.GET("/:collection", api.list)
	g.GET("/:collection/schema", api.schema)
	g.GET("/:collection/:id", api.retrieve)
	g.POST("/:collection", api.create)
	g.PUT("/:collection/:id", api.update)
	g.PATCH("/:collection/:id", api.partialUpdate)
	g.DELETE("/:collection/:id", api.delete)
}

func (api *recordsAPI) service(ctx echo.Context) (*resource.Service, error) {
	svc, ok := api.services[ctx.Param("collection")]
	if !ok {
		return nil, errHttpNotFound
	}
	return svc, nil
}

func (api *recordsAPI) collections(ctx echo.Context) error {
	schemas := make([]record.Schema, 0, len(api.order))
	for _, coll := range api.order {
		schemas = append(schemas, api.services[coll].Schema())
	}
	return ctx.JSON(http.StatusOK, schemas)
}

func (api *recordsAPI) schema(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, svc.Schema())
}

func (api *recordsAPI) list(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}

	var ord Ordering
	ord.Bind(ctx)

	recs, err := svc.List(ctx.Request().Context(), ord.Orderings...)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []record.Record{}
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *recordsAPI) retrieve(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	id, err := bindID(ctx)
	if err != nil {
		return err
	}

	rec, err := svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *recordsAPI) create(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	vals, err := bindValues(ctx)
	if err != nil {
		return err
	}

	if err = svc.Create(ctx.Request().Context(), vals); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"success": svc.Schema().Title + " record added"})
}

func (api *recordsAPI) update(ctx echo.Context) error {
	return api.doUpdate(ctx, false)
}

func (api *recordsAPI) partialUpdate(ctx echo.Context) error {
	return api.doUpdate(ctx, true)
}

func (api *recordsAPI) doUpdate(ctx echo.Context, partial bool) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	vals, err := bindValues(ctx)
	if err != nil {
		return err
	}

	if err = svc.Update(ctx.Request().Context(), id, vals, partial); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": svc.Schema().Title + " record updated"})
}

func (api *recordsAPI) delete(ctx echo.Context) error {
	svc, err := api.service(ctx)
	if err != nil {
		return err
	}
	id, err := bindID(ctx)
	if err != nil {
		return err
	}

	if err = svc.Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
