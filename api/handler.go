package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/consul-service/discovery"
	"github.com/kbukum/consul-service/logger"
	"github.com/kbukum/consul-service/server"
)

// ServiceLister queries the discovery agent for its registered services.
// *discovery.Registrar satisfies it.
type ServiceLister interface {
	ListServices(ctx context.Context) (discovery.ServiceListing, error)
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message string `json:"message"`
}

// Handler serves the application routes.
type Handler struct {
	appName  string
	services ServiceLister
	log      *logger.Logger
}

// NewHandler creates a Handler greeting as appName and listing through services.
func NewHandler(appName string, services ServiceLister, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Handler{
		appName:  appName,
		services: services,
		log:      log.WithComponent("api"),
	}
}

// RegisterRoutes mounts the application routes on r.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/services", h.Services)
}

// Root answers with a greeting naming the application.
func (h *Handler) Root(c *gin.Context) {
	server.RespondOK(c, RootResponse{Message: fmt.Sprintf("Hello from %s!", h.appName)})
}

// Services relays the agent's service listing unmodified. Every request is a
// fresh round-trip; an agent failure yields a 500 envelope and no partial data.
func (h *Handler) Services(c *gin.Context) {
	ctx := c.Request.Context()
	listing, err := h.services.ListServices(ctx)
	if err != nil {
		h.log.WithContext(ctx).Warn("service listing failed", logger.ErrorFields("list_services", err))
		server.RespondWithError(c, err)
		return
	}
	if listing == nil {
		listing = discovery.ServiceListing{}
	}
	server.RespondOK(c, listing)
}
