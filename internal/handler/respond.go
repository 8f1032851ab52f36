package handler

import (
	"pos-inventory/internal/service"
	"pos-inventory/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError renders err as {"error": message} with the status of its kind.
func respondError(c *fiber.Ctx, err error) error {
	status := apperror.HTTPStatus(apperror.KindOf(err))
	return c.Status(status).JSON(fiber.Map{"error": apperror.Message(err)})
}

// actorFrom builds the service actor from the locals set by RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	var actor service.Actor
	if id, ok := c.Locals("user_id").(string); ok {
		actor.UserID, _ = uuid.Parse(id)
	}
	actor.Name, _ = c.Locals("user_name").(string)
	actor.Email, _ = c.Locals("user_email").(string)
	actor.Role, _ = c.Locals("user_role").(string)
	return actor
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("Invalid " + name)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperror.Validation("Invalid JSON")
	}
	return nil
}
