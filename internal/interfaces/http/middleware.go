package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/google/uuid"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
)

const localRequestID = "request_id"

// RequestID asigna X-Request-ID (o respeta el recibido).
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(localRequestID, id)
		c.Set(fiber.HeaderXRequestID, id)
		return c.Next()
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(localRequestID).(string)
	return id
}

// HTTPObserver recibe la duración de cada petición (métricas).
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, elapsed time.Duration)
}

// Observe mide cada petición por ruta declarada.
func Observe(obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			// El ErrorHandler aún no escribió la respuesta.
			status = StatusForError(err)
		}
		obs.ObserveHTTP(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}

// LoginLimiter limita por IP de cliente a limit peticiones por ventana, con almacenamiento en memoria.
// Al agotar el cupo responde 429; el middleware ya fijó Retry-After con los segundos hasta reabrir la ventana.
func LoginLimiter(limit int, window time.Duration) fiber.Handler {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:      "RATE_LIMITED",
				Message:   "demasiados intentos, espere antes de reintentar",
				RequestID: requestID(c),
			})
		},
	})
}
