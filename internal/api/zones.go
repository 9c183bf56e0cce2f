package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/controller"
	"github.com/qdm12/reprint"
)

func registerZoneEndpoints(rest *echo.Echo) {
	group := rest.Group("/zone")

	group.GET("/", getZones)
	group.GET("/:"+urlParamId+"/", getZone)
	group.GET("/:"+urlParamId+"/result/", getZoneResult)
}

func getZones(c echo.Context) error {
	data := reprint.This(configuration.CurrentConfig.Zones)
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}

func getZone(c echo.Context) error {
	id := c.Param(urlParamId)

	for _, zoneConfig := range configuration.CurrentConfig.Zones {
		if zoneConfig.ID == id {
			data := reprint.This(zoneConfig)
			return c.JSONPretty(http.StatusOK, data, indentationChar)
		}
	}
	return returnNotFound(c, id)
}

// getZoneResult returns the outcome of the most recent control cycle
// of the given zone
func getZoneResult(c echo.Context) error {
	id := c.Param(urlParamId)

	contr, exists := controller.ControllerMap.Get(id)
	if !exists {
		return returnNotFound(c, id)
	}
	return c.JSONPretty(http.StatusOK, contr.LastResult(), indentationChar)
}
