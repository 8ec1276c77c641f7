package webhook

import (
	"errors"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/gofiber/fiber/v2"
)

// FiberHandler adapts the endpoint to a Fiber route:
//
//	app.All("/webhook", endpoint.FiberHandler())
func (e *Endpoint) FiberHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet:
			challenge, err := e.Challenge(c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"))
			if err != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiberError(err))
			}
			return c.Status(fiber.StatusOK).SendString(challenge)

		case fiber.MethodPost:
			// Fiber reuses its buffers after the handler returns
			body := append([]byte(nil), c.Body()...)
			status := e.Receive(c.UserContext(), body, c.Get(SignatureHeader))
			if status != fiber.StatusOK {
				return c.Status(status).JSON(fiberError(Registry.New(ErrSignature, errx.WithField(SignatureHeader))))
			}
			return c.SendStatus(status)

		default:
			c.Set(fiber.HeaderAllow, "GET, POST")
			return c.SendStatus(fiber.StatusMethodNotAllowed)
		}
	}
}

func fiberError(err error) fiber.Map {
	var xe errx.Error
	if !errors.As(err, &xe) {
		return fiber.Map{"message": err.Error()}
	}
	m := fiber.Map{
		"code":    xe.Code(),
		"kind":    xe.Kind(),
		"message": xe.Message(),
	}
	if v, ok := errx.AsValidation(err); ok {
		m["field"] = v.Field
	}
	return m
}
