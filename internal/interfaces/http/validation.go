package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/viaticos-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los mensajes usan el nombre JSON del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON decodifica el cuerpo y aplica las etiquetas validate; los fallos son ErrValidation.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return domain.Validationf("cuerpo inválido: %v", err)
	}
	return validateStruct(out)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Validationf("%v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return domain.Validationf("%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " es requerido"
	case "oneof":
		return fmt.Sprintf("%s debe ser uno de [%s]", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s excede el máximo de %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s requiere al menos %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s debe tener formato %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s no cumple %s", field, fe.Tag())
	}
}
