// Package router provides HTTP routing, middleware configuration, and server setup for the directory API
package router

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/mostovoy/agency-directory/app/dto"
	"github.com/mostovoy/agency-directory/app/handlers"
	"github.com/mostovoy/agency-directory/app/middleware"
	"github.com/mostovoy/agency-directory/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app           *fiber.App
	cfg           *config.Config
	agencyHandler handlers.AgencyHandlerInterface
	adminHandler  handlers.AdminHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.Config, agencyHandler handlers.AgencyHandlerInterface, adminHandler handlers.AdminHandlerInterface) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Agency Directory API",
		ServerHeader: "agency-directory",
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:           app,
		cfg:           cfg,
		agencyHandler: agencyHandler,
		adminHandler:  adminHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	api := r.app.Group("/api/v1")

	api.Get("/health", r.healthCheck)

	// Public listing surface
	api.Get("/agencies", r.agencyHandler.ListAgencies)
	api.Get("/agencies/directory", r.agencyHandler.ListDirectory)
	api.Get("/agencies/select", r.agencyHandler.SelectAgencies)

	// Admin surface behind the API key latch
	admin := api.Group("/admin", middleware.RequireAPIKey(r.cfg.Admin.APIKeyHeader, r.cfg.Admin.APIKey))
	admin.Post("/agencies", r.adminHandler.CreateAgency)
	admin.Get("/agencies/:id", r.adminHandler.GetAgency)
	admin.Put("/agencies/:id", r.adminHandler.UpdateAgency)
	admin.Delete("/agencies/:id", r.adminHandler.DeleteAgency)
	admin.Post("/agencies/:id/rebuild-cities", r.adminHandler.RebuildAgencyCities)
	admin.Post("/referrals/score", r.adminHandler.ScoreReferrals)

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptPromHandler())
	}

	log.Println("Routes configured")
}

func (r *FiberRouter) setupMiddleware() {
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(compress.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.cfg.Server.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID", r.cfg.Admin.APIKeyHeader},
	}))
	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "OK",
	})
}

// Start begins listening on the given address
func (r *FiberRouter) Start(address string) error {
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber application
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func adaptPromHandler() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		h(c.RequestCtx())
		return nil
	}
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "Request failed",
		Error: dto.ErrorDetail{
			Code:    "HTTP_ERROR",
			Details: err.Error(),
		},
	})
}
