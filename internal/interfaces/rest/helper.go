package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// endpoint versioned root of the api, e.g. /api/v1
type endpoint struct {
	apiVersion  string
	middlewares []echo.MiddlewareFunc
	groups      []*apiGroup
}

// apiGroup routes sharing a prefix and middlewares
type apiGroup struct {
	prefix      string
	middlewares []echo.MiddlewareFunc
	routes      []*route
}

type route struct {
	method      string
	path        string
	handler     echo.HandlerFunc
	middlewares []echo.MiddlewareFunc
}

type restMethod func(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route

func groupMethods(g *echo.Group) map[string]restMethod {
	return map[string]restMethod{
		http.MethodGet:     g.GET,
		http.MethodPost:    g.POST,
		http.MethodPut:     g.PUT,
		http.MethodPatch:   g.PATCH,
		http.MethodDelete:  g.DELETE,
		http.MethodHead:    g.HEAD,
		http.MethodOptions: g.OPTIONS,
	}
}

// createEndpoint mount def on app, panics on a route with an unsupported method
func createEndpoint(app *echo.Echo, def *endpoint) {
	root := app.Group("/"+strings.TrimPrefix(def.apiVersion, "/"), def.middlewares...)

	for _, group := range def.groups {
		echoGroup := root.Group(group.prefix, group.middlewares...)
		methods := groupMethods(echoGroup)
		for _, api := range group.routes {
			method, ok := methods[strings.ToUpper(api.method)]
			if !ok {
				panic(fmt.Errorf("createEndpoint: unknown method %s for %s%s", api.method, group.prefix, api.path))
			}
			method(api.path, api.handler, api.middlewares...)
		}
	}
}

func printRoutes(app *echo.Echo, logger *zap.Logger) {
	for _, route := range app.Routes() {
		if !strings.HasPrefix(route.Name, "github.com/labstack/echo") {
			logger.Info("Registered route", zap.String("method", route.Method), zap.String("path", route.Path))
		}
	}
}
