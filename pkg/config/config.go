package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jhoicas/viaticos-api/internal/domain/workflow"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App      AppConfig
	DB       DBConfig
	RRHHDB   DBConfig
	JWT      JWTConfig
	HTTP     HTTPConfig
	Redis    RedisConfig
	Workflow WorkflowConfig
	HR       HRConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host               string
	Port               int
	LoginRateMax       int
	LoginRateWindowSec int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig destino de las notificaciones de transición. Addr vacío desactiva la publicación.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Enabled indica si hay un Redis configurado.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

// WorkflowConfig umbrales y plazos del flujo de aprobación.
type WorkflowConfig struct {
	CGRThreshold       string // decimal, ej. "1000.00"
	GraceDays          int
	MinRationaleLength int
	CorrectionDays     int
}

// Settings convierte la configuración leída en el valor que reciben el evaluador y la creación de misiones.
func (c WorkflowConfig) Settings() (workflow.Settings, error) {
	threshold, err := decimal.NewFromString(c.CGRThreshold)
	if err != nil {
		return workflow.Settings{}, fmt.Errorf("WORKFLOW_CGR_THRESHOLD inválido %q: %w", c.CGRThreshold, err)
	}
	s := workflow.Settings{
		CGRThreshold:       threshold,
		GraceDays:          c.GraceDays,
		MinRationaleLength: c.MinRationaleLength,
		CorrectionDays:     c.CorrectionDays,
	}
	if err := s.Validate(); err != nil {
		return workflow.Settings{}, err
	}
	return s, nil
}

// HRConfig parámetros de resiliencia del adaptador de RRHH.
type HRConfig struct {
	BreakerMaxFailures int
	RetryAttempts      int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, RRHH_DB_HOST, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "viaticos-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "financiero"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		RRHHDB: DBConfig{
			DatabaseURL: getString(v, "RRHH_DATABASE_URL", ""),
			Host:        getString(v, "RRHH_DB_HOST", "localhost"),
			Port:        getInt(v, "RRHH_DB_PORT", 5432),
			User:        getString(v, "RRHH_DB_USER", "postgres"),
			Password:    getString(v, "RRHH_DB_PASSWORD", ""),
			DBName:      getString(v, "RRHH_DB_NAME", "rrhh"),
			SSLMode:     getString(v, "RRHH_DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "viaticos-api"),
		},
		HTTP: HTTPConfig{
			Host:               getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:               getInt(v, "HTTP_PORT", 8080),
			LoginRateMax:       getInt(v, "LOGIN_RATE_MAX", 10),
			LoginRateWindowSec: getInt(v, "LOGIN_RATE_WINDOW_SECONDS", 60),
		},
		Redis: RedisConfig{
			Addr:     getString(v, "REDIS_ADDR", ""),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			Channel:  getString(v, "REDIS_CHANNEL", "misiones.transiciones"),
		},
		Workflow: WorkflowConfig{
			CGRThreshold:       getString(v, "WORKFLOW_CGR_THRESHOLD", "1000.00"),
			GraceDays:          getInt(v, "WORKFLOW_GRACE_DAYS", 10),
			MinRationaleLength: getInt(v, "WORKFLOW_MIN_RATIONALE_LENGTH", 10),
			CorrectionDays:     getInt(v, "WORKFLOW_CORRECTION_DAYS", 5),
		},
		HR: HRConfig{
			BreakerMaxFailures: getInt(v, "HR_BREAKER_MAX_FAILURES", 5),
			RetryAttempts:      getInt(v, "HR_RETRY_ATTEMPTS", 3),
		},
	}
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
