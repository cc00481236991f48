// seed aplica las migraciones embebidas y carga los datos base del sistema de viáticos:
// roles, catálogo de permisos, asignaciones rol-permiso y la definición del flujo.
// Es idempotente: se puede ejecutar en cada despliegue.
//
// Uso: go run ./cmd/seed
// Con SEED_ADMIN_USER y SEED_ADMIN_PASSWORD crea (o actualiza) un usuario administrador.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"

	"github.com/jhoicas/viaticos-api/internal/domain/entity"
	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
	"github.com/jhoicas/viaticos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/viaticos-api/migrations"
	"github.com/jhoicas/viaticos-api/pkg/config"
	"github.com/jhoicas/viaticos-api/pkg/logger"
	"github.com/jhoicas/viaticos-api/pkg/password"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, postgres.DefaultPoolOptions("financiero", log.Component("postgres")))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	applied, err := postgres.ApplyMigrations(ctx, pool, migrations.FS, log.Component("migrate"))
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Strs("aplicadas", applied).Msg("esquema al día")

	steps := []struct {
		name string
		fn   func(context.Context, *pgxpool.Pool) error
	}{
		{"roles", seedRoles},
		{"permisos", seedPermissions},
		{"rol_permisos", seedGrants},
		{"flujo", func(ctx context.Context, p *pgxpool.Pool) error {
			return postgres.NewWorkflowRepository(p).SaveDefinition(ctx, workflow.DefaultDefinition())
		}},
	}
	for _, s := range steps {
		if err := s.fn(ctx, pool); err != nil {
			log.Fatal().Err(err).Str("paso", s.name).Msg("semilla")
		}
		log.Info().Str("paso", s.name).Msg("semilla aplicada")
	}

	v := viper.New()
	v.AutomaticEnv()
	if user, pass := v.GetString("SEED_ADMIN_USER"), v.GetString("SEED_ADMIN_PASSWORD"); user != "" && pass != "" {
		if err := seedAdmin(ctx, pool, user, pass); err != nil {
			log.Fatal().Err(err).Msg("usuario administrador")
		}
		log.Info().Str("username", user).Msg("usuario administrador listo")
	}
}

func seedRoles(ctx context.Context, pool *pgxpool.Pool) error {
	batch := &pgx.Batch{}
	for _, r := range roles {
		batch.Queue(`
			INSERT INTO roles (id, nombre, descripcion) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET nombre = EXCLUDED.nombre, descripcion = EXCLUDED.descripcion`,
			r.ID, r.Name, r.Description)
	}
	// Los roles creados por la API continúan después de los del sistema.
	batch.Queue(`SELECT setval(pg_get_serial_sequence('roles', 'id'), (SELECT MAX(id) FROM roles))`)
	return pool.SendBatch(ctx, batch).Close()
}

func seedPermissions(ctx context.Context, pool *pgxpool.Pool) error {
	batch := &pgx.Batch{}
	for _, p := range permissions {
		batch.Queue(`
			INSERT INTO permisos (modulo, accion, etiqueta, es_permiso_empleado) VALUES ($1, $2, $3, $4)
			ON CONFLICT (modulo, accion) DO UPDATE SET etiqueta = EXCLUDED.etiqueta, es_permiso_empleado = EXCLUDED.es_permiso_empleado`,
			p.Module, p.Action, p.Label, p.Employee)
	}
	return pool.SendBatch(ctx, batch).Close()
}

func seedGrants(ctx context.Context, pool *pgxpool.Pool) error {
	batch := &pgx.Batch{}
	for roleID, codes := range grants {
		batch.Queue(`
			INSERT INTO rol_permisos (rol_id, permiso_id)
			SELECT $1, p.id FROM permisos p WHERE p.modulo || '.' || p.accion = ANY($2)
			ON CONFLICT DO NOTHING`,
			roleID, codes)
	}
	return pool.SendBatch(ctx, batch).Close()
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool, username, plain string) error {
	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}
	return postgres.NewUserRepository(pool).Upsert(ctx, &entity.UserAccount{
		Username:     username,
		PasswordHash: hash,
		RoleID:       workflow.RoleAdministrador,
		IsActive:     true,
		CreatedAt:    time.Now(),
	})
}
