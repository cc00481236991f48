package http

import (
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// AppConfig opciones del servidor Fiber.
type AppConfig struct {
	Name        string
	SwaggerFile string // si no existe, /docs no se monta
	Log         zerolog.Logger
}

// NewApp crea la aplicación con recover, request id y el manejador central de errores.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: ErrorHandler(cfg.Log),
	})
	app.Use(recover.New())
	app.Use(RequestID())

	// Swagger UI: http://localhost:<port>/docs (generado con swag init)
	if cfg.SwaggerFile != "" {
		if _, err := os.Stat(cfg.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.SwaggerFile,
				Path:     "docs",
				Title:    cfg.Name,
			}))
		}
	}
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Auth        AuthService
	Missions    MissionCreator
	Queries     MissionQueries
	Evaluator   TransitionExecutor
	Employees   EmployeeSearcher
	Roles       RoleAdmin
	Users       UserAdmin
	JWTSecret   string
	LoginLimit  fiber.Handler
	Metrics     HTTPObserver
	Registry    *prometheus.Registry
	HealthCheck func() fiber.Map
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(Observe(deps.Metrics))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{"status": "ok"}
		if deps.HealthCheck != nil {
			for k, v := range deps.HealthCheck() {
				body[k] = v
			}
		}
		return c.JSON(body)
	})
	if deps.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Auth (público, con límite por IP)
	loginLimit := deps.LoginLimit
	if loginLimit == nil {
		loginLimit = LoginLimiter(10, time.Minute)
	}
	authHandler := NewAuthHandler(deps.Auth)
	authGroup := api.Group("/auth")
	authGroup.Post("/login", loginLimit, authHandler.Login)
	authGroup.Post("/employee/login", loginLimit, authHandler.EmployeeLogin)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	missionHandler := NewMissionHandler(deps.Missions, deps.Queries, deps.Evaluator, deps.Employees)
	protected.Get("/workflow/states", missionHandler.States)

	ver := RequirePermission(workflow.ModuleMisiones, "ver")
	missions := protected.Group("/missions")
	missions.Post("/", missionHandler.Create)
	missions.Get("/pending", missionHandler.Pending)
	missions.Get("/:id", ver, missionHandler.GetByID)
	missions.Get("/:id/history", ver, missionHandler.History)
	missions.Get("/:id/corrections", ver, missionHandler.Corrections)
	missions.Get("/:id/actions", missionHandler.Actions)
	missions.Post("/:id/transitions", missionHandler.Transition)

	protected.Get("/employees", RequirePermission(workflow.ModuleMisiones, "crear"), missionHandler.Employees)

	roleHandler := NewRoleHandler(deps.Roles)
	roles := protected.Group("/roles")
	roles.Get("/", RequirePermission("roles", "ver"), roleHandler.List)
	roles.Post("/", RequirePermission("roles", "crear"), roleHandler.Create)
	roles.Get("/:id", RequirePermission("roles", "ver"), roleHandler.GetByID)
	roles.Put("/:id/permissions", RequirePermission("roles", "editar"), roleHandler.ReplacePermissions)
	roles.Delete("/:id", RequirePermission("roles", "eliminar"), roleHandler.Delete)
	protected.Get("/permissions", RequirePermission("roles", "ver"), roleHandler.Permissions)

	if deps.Users != nil {
		userHandler := NewUserHandler(deps.Users)
		usuarios := protected.Group("/usuarios")
		usuarios.Get("/", RequirePermission("usuarios", "ver"), userHandler.List)
		usuarios.Post("/", RequirePermission("usuarios", "crear"), userHandler.Create)
		usuarios.Get("/:id", RequirePermission("usuarios", "ver"), userHandler.GetByID)
		usuarios.Patch("/:id", RequirePermission("usuarios", "editar"), userHandler.Update)
		usuarios.Patch("/:id/toggle-active", RequirePermission("usuarios", "editar"), userHandler.ToggleActive)
	}
}
