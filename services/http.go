package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	docs "github.com/maahtami/study-planner-ece1778/docs"
	"github.com/maahtami/study-planner-ece1778/services/handlers"
	"github.com/maahtami/study-planner-ece1778/shared"
)

type HttpService struct {
	context.DefaultService

	authSvc       *AuthMiddleware
	plannerSvc    *PlannerService
	backupSvc     *BackupService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_MIDDLEWARE_SVC).(*AuthMiddleware)
	svc.plannerSvc = svc.Service(PLANNER_SVC).(*PlannerService)
	svc.backupSvc = svc.Service(BACKUP_SVC).(*BackupService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	docs.SwaggerInfo.BasePath = ""

	app := fiber.New(fiber.Config{
		JSONEncoder:  shared.JSONEncoder,
		JSONDecoder:  shared.JSONDecoder,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max: 120,
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))

	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	sessionHandler := handlers.NewSessionHandler(svc.plannerSvc, svc.backupSvc)
	gamificationHandler := handlers.NewGamificationHandler(svc.plannerSvc)
	settingsHandler := handlers.NewSettingsHandler(svc.plannerSvc)

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	// Session routes work for anonymous callers too; ownership is whatever
	// the (optional) token resolves to.
	sessions := v1.Group("/sessions", svc.authSvc.OptionalAuth())
	sessions.Get("/", sessionHandler.List)
	sessions.Post("/", sessionHandler.Create)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Put("/:id", sessionHandler.Edit)
	sessions.Delete("/:id", sessionHandler.Delete)
	sessions.Post("/:id/complete", sessionHandler.Complete)
	sessions.Post("/:id/restart", sessionHandler.Restart)
	sessions.Post("/:id/rate", sessionHandler.Rate)

	v1.Get("/gamification", svc.authSvc.OptionalAuth(), gamificationHandler.Get)
	v1.Post("/gamification/reset", svc.authSvc.OptionalAuth(), gamificationHandler.Reset)
	v1.Get("/stats", svc.authSvc.OptionalAuth(), gamificationHandler.Stats)

	v1.Get("/settings", settingsHandler.Get)
	v1.Put("/settings", settingsHandler.Update)

	v1.Post("/export", svc.authSvc.OptionalAuth(), sessionHandler.Export)

	// Sign-in sync and sign-out need a real owner behind the token.
	v1.Post("/sync", svc.authSvc.RequiredAuth(), sessionHandler.Sync)
	v1.Post("/signout", svc.authSvc.RequiredAuth(), sessionHandler.SignOut)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	return shared.ResponseInternalError(c, err)
}
