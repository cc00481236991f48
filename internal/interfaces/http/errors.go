package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/viaticos-api/internal/application/dto"
	"github.com/jhoicas/viaticos-api/internal/domain"
)

// retryAfterSeconds sugerido al cliente cuando un almacén no responde.
const retryAfterSeconds = "5"

// StatusForKind código HTTP de cada tipo de error de dominio.
func StatusForKind(kind string) int {
	switch kind {
	case domain.KindAuthenticationFailed:
		return fiber.StatusUnauthorized
	case domain.KindPermissionDenied:
		return fiber.StatusForbidden
	case domain.KindMissionNotFound, domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindWorkflowTerminalState, domain.KindInvalidActionForState, domain.KindConflict, domain.KindDuplicate:
		return fiber.StatusConflict
	case domain.KindGuardNotSatisfied, domain.KindValidation:
		return fiber.StatusUnprocessableEntity
	case domain.KindStorageUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// StatusForError código HTTP que ErrorHandler usará para err.
func StatusForError(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return StatusForKind(domain.Kind(err))
}

// ErrorHandler manejador central de Fiber: los handlers devuelven errores de dominio tal cual.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(dto.ErrorResponse{
				Code:      "HTTP_" + fiberErrorCode(fe.Code),
				Message:   fe.Message,
				RequestID: requestID(c),
			})
		}

		kind := domain.Kind(err)
		status := StatusForKind(kind)
		msg := err.Error()
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("kind", kind).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("request_id", requestID(c)).
				Msg("error en petición")
			// No exponer detalles del driver.
			msg = messageFor(kind)
		}
		if status == fiber.StatusServiceUnavailable {
			c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: kind, Message: msg, RequestID: requestID(c)})
	}
}

func messageFor(kind string) string {
	if kind == domain.KindStorageUnavailable {
		return domain.ErrStorageUnavailable.Error() + ", intente más tarde"
	}
	return "error interno"
}

func fiberErrorCode(code int) string {
	switch code {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "ERROR"
	}
}
