package handlers

import (
	"strconv"

	"pawatasty/internal/utils/response"
	"pawatasty/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes and validates a JSON body. On failure it has already
// written the 400 response and returns ok=false.
func parseBody(c *fiber.Ctx, dest interface{}) (bool, error) {
	if err := c.BodyParser(dest); err != nil {
		return false, response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(dest); err != nil {
		return false, response.ValidationError(c, err.Error())
	}
	return true, nil
}

func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
