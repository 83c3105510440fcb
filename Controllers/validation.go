package Controllers

import (
	"errors"

	"Atlas/Services"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()
	english := en.New()
	uni := ut.New(english, english)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)
}

// validateStruct runs validator tags and converts failures into field errors.
func validateStruct(payload interface{}) []Services.FieldError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return []Services.FieldError{{Field: "payload", Message: err.Error()}}
	}

	var fieldErrors []Services.FieldError
	for _, fieldErr := range err.(validator.ValidationErrors) {
		fieldErrors = append(fieldErrors, Services.FieldError{
			Field:   fieldErr.Field(),
			Message: fieldErr.Translate(translator),
		})
	}
	return fieldErrors
}

// serviceError translates workflow errors into HTTP responses. Unknown errors
// become a 500 with the given fallback message.
func serviceError(c *fiber.Ctx, err error, message string) error {
	var (
		transitionErr *Services.InvalidStateTransitionError
		immutableErr  *Services.ImmutableCompletedRecordError
		terminalErr   *Services.TerminalStateViolationError
		incompleteErr *Services.IncompleteRequiredItemsError
		foreignErr    *Services.ForeignItemReferenceError
		validationErr *Services.ValidationError
	)

	switch {
	case errors.Is(err, Services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.As(err, &transitionErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":          message,
			"error":            err.Error(),
			"current_status":   transitionErr.Current,
			"attempted_status": transitionErr.Attempted,
			"allowed":          transitionErr.Allowed,
		})
	case errors.As(err, &immutableErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message":       message,
			"error":         err.Error(),
			"locked_fields": immutableErr.Fields,
		})
	case errors.As(err, &terminalErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.As(err, &incompleteErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message":         message,
			"error":           err.Error(),
			"required_items":  incompleteErr.Required,
			"completed_items": incompleteErr.Completed,
		})
	case errors.As(err, &foreignErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
			"fields":  validationErr.Fields,
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
}

func validationFailed(c *fiber.Ctx, fields []Services.FieldError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"fields":  fields,
	})
}
