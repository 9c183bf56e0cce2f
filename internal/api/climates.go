package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/therm2go/internal/climate"
)

func registerClimateEndpoints(rest *echo.Echo) {
	group := rest.Group("/climate")

	group.GET("/", getClimates)
	group.GET("/:"+urlParamId+"/", getClimate)
}

func getClimates(c echo.Context) error {
	data := map[string]climate.Attributes{}
	for id, clim := range climate.ClimateMap.Items() {
		attributes, err := clim.GetAttributes()
		if err != nil {
			continue
		}
		data[id] = attributes
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getClimate(c echo.Context) error {
	id := c.Param(urlParamId)

	clim, exists := climate.ClimateMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}

	attributes, err := clim.GetAttributes()
	if err != nil {
		return returnError(c, err)
	}
	return c.JSONPretty(http.StatusOK, attributes, indentationChar)
}
