package httpx

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

// RoutesEnvelope is the 404 body listing every registered route.
type RoutesEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Routes  []string `json:"routes"`
}

// RouteNotFound answers unmatched requests with the routes the engine serves.
func RouteNotFound(engine *gin.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		infos := engine.Routes()
		routes := make([]string, 0, len(infos))
		for _, r := range infos {
			routes = append(routes, r.Method+" "+r.Path)
		}
		sort.Strings(routes)
		c.JSON(http.StatusNotFound, RoutesEnvelope{
			Success: false,
			Message: "Route " + c.Request.Method + " " + c.Request.URL.Path + " not found",
			Routes:  routes,
		})
	}
}
