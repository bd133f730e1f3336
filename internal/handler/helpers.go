package handler

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/nexus-api/internal/middleware"
	"github.com/noah-isme/nexus-api/internal/service"
	"github.com/noah-isme/nexus-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return strings.TrimSpace(id)
	}
	return ""
}

func identityFromContext(c *fiber.Ctx) service.Identity {
	name, _ := c.Locals("user_name").(string)
	return service.Identity{
		UserID:      userIDFromContext(c),
		DisplayName: strings.TrimSpace(name),
	}
}

// requestContext carries the correlation id of the request into service calls.
func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// validationDetails maps failing fields to the rule they broke, or nil when err has no field errors.
func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return details
}

func pagination(c *fiber.Ctx, defaultSize, maxSize int) (limit, offset int, err error) {
	limit, err = parseQueryInt(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err = parseQueryInt(c, "offset")
	if err != nil {
		return 0, 0, err
	}
	if limit <= 0 {
		limit = defaultSize
	} else if limit > maxSize {
		limit = maxSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset, nil
}

func sendValidationError(c *fiber.Ctx, message string, err error) error {
	if details := validationDetails(err); details != nil {
		return utils.Fail(c, fiber.StatusBadRequest, message, details)
	}
	return utils.Fail(c, fiber.StatusBadRequest, message, nil)
}
