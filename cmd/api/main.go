package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/viaticos-api/internal/application/approval"
	"github.com/jhoicas/viaticos-api/internal/application/auth"
	"github.com/jhoicas/viaticos-api/internal/application/identity"
	"github.com/jhoicas/viaticos-api/internal/application/mission"
	"github.com/jhoicas/viaticos-api/internal/application/rbac"
	"github.com/jhoicas/viaticos-api/internal/application/users"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
	"github.com/jhoicas/viaticos-api/internal/infrastructure/metrics"
	"github.com/jhoicas/viaticos-api/internal/infrastructure/notify"
	"github.com/jhoicas/viaticos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/viaticos-api/internal/infrastructure/rrhh"
	httpRouter "github.com/jhoicas/viaticos-api/internal/interfaces/http"
	"github.com/jhoicas/viaticos-api/pkg/config"
	"github.com/jhoicas/viaticos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}
	settings, err := cfg.Workflow.Settings()
	if err != nil {
		log.Fatal().Err(err).Msg("configuración del flujo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.DefaultPoolOptions("financiero", log.Component("postgres")))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// RRHH es de solo lectura; pool más chico.
	hrOpts := postgres.DefaultPoolOptions("rrhh", log.Component("postgres"))
	hrOpts.MaxConns, hrOpts.MinConns = 10, 0
	hrPool, err := postgres.NewPool(ctx, cfg.RRHHDB, hrOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a RRHH")
	}
	defer hrPool.Close()

	graph := loadWorkflow(ctx, pool, log)

	userRepo := postgres.NewUserRepository(pool)
	roleRepo := postgres.NewRoleRepository(pool)
	missionRepo := postgres.NewMissionRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	correctionRepo := postgres.NewCorrectionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	directory := rrhh.NewDirectory(hrPool, rrhh.DefaultOptions(cfg.HR.BreakerMaxFailures, cfg.HR.RetryAttempts, log.Component("rrhh")))
	catalog := rbac.NewCatalog(roleRepo)
	resolver := identity.NewResolver(userRepo, directory, catalog, log.Component("identity"))

	m := metrics.New(nil)

	authUC := auth.NewAuthUseCase(resolver, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, m, log.Component("auth"))

	evalOpts := []approval.Option{
		approval.WithRecorder(m),
		approval.WithLogger(log.Component("approval")),
	}
	if cfg.Redis.Enabled() {
		rdb := notify.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rdb.Close()
		evalOpts = append(evalOpts, approval.WithNotifier(
			notify.NewRedisPublisher(rdb, cfg.Redis.Channel, log.Component("notify")),
		))
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("notificaciones de transición activas")
	}
	evaluator := approval.NewEvaluator(graph, settings, txRunner, evalOpts...)
	queries := approval.NewQueryService(graph, missionRepo, historyRepo, correctionRepo)
	createUC := mission.NewCreateMissionUseCase(graph, settings, missionRepo, directory, log.Component("mission"))
	searchUC := mission.NewBeneficiarySearch(directory, log.Component("mission"))
	roleUC := rbac.NewRoleUseCase(roleRepo, userRepo)
	userUC := users.NewUserUseCase(userRepo, roleRepo, log.Component("users"))

	app := httpRouter.NewApp(httpRouter.AppConfig{
		Name:        cfg.App.Name,
		SwaggerFile: "./docs/swagger.json",
		Log:         log.Component("http"),
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Auth:       authUC,
		Missions:   createUC,
		Queries:    queries,
		Evaluator:  evaluator,
		Employees:  searchUC,
		Roles:      roleUC,
		Users:      userUC,
		JWTSecret:  cfg.JWT.Secret,
		LoginLimit: httpRouter.LoginLimiter(cfg.HTTP.LoginRateMax, time.Duration(cfg.HTTP.LoginRateWindowSec)*time.Second),
		Metrics:    m,
		Registry:   m.Registry,
		HealthCheck: func() fiber.Map {
			return fiber.Map{"service": cfg.App.Name, "rrhh_breaker": directory.BreakerState()}
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// loadWorkflow usa la definición persistida; sin filas en estados_flujo se usa la declarada en código.
func loadWorkflow(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) *workflow.Graph {
	def, found, err := postgres.NewWorkflowRepository(pool).LoadDefinition(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar definición del flujo")
	}
	if !found {
		log.Warn().Msg("estados_flujo vacío, se usa la definición por defecto (ejecute cmd/seed)")
		def = workflow.DefaultDefinition()
	}
	graph, err := workflow.Build(def)
	if err != nil {
		log.Fatal().Err(err).Msg("definición del flujo inválida")
	}
	log.Info().Int("estados", len(graph.States())).Int("transiciones", len(graph.Transitions())).Msg("flujo cargado")
	return graph
}
