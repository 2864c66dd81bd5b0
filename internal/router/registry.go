package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// Module is a feature that mounts its routes under the API group.
type Module interface {
	Name() string
	Register(rg *gin.RouterGroup)
}

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, API: engine.Group("/api")}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	if mod != nil {
		r.modules = append(r.modules, mod)
	}
}

// RegisterAll mounts every added module once and returns their names in order.
func (r *Registry) RegisterAll() ([]string, error) {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	seen := make(map[string]bool, len(r.modules))
	names := make([]string, 0, len(r.modules))
	for _, m := range r.modules {
		if seen[m.Name()] {
			return names, fmt.Errorf("module %q added twice", m.Name())
		}
		seen[m.Name()] = true
		m.Register(r.API)
		names = append(names, m.Name())
	}
	return names, nil
}
