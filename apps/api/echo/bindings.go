package echoapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	if val := ctx.QueryParam(orderingParam); val != "" {
		ord.Orderings = core.ParseOrdering(val)
	}
}

// bindValues decodes a flat JSON object, keeping numbers exact.
func bindValues(ctx echo.Context) (record.Values, error) {
	dec := json.NewDecoder(ctx.Request().Body)
	dec.UseNumber()

	var vals record.Values
	if err := dec.Decode(&vals); err != nil {
		if err == io.EOF {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "empty request body")
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed JSON object").SetInternal(errors.Wrap(err, "binding values"))
	}
	delete(vals, record.IDField)
	return vals, nil
}

func bindID(ctx echo.Context) (record.ID, error) {
	id, err := record.ParseID(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
