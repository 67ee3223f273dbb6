package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/recommendation"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/service"
	"github.com/ANIKETSHETTY47/solar-pump-dashboard/internal/session"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewApp builds the API with its error mapping and request logging.
func NewApp(svcs *service.Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "solar-pump-api",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(requestLogger)
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })
	Register(app, svcs)
	return app
}

func Register(app *fiber.App, svcs *service.Services) {
	d := svcs.Dashboard

	app.Get("/catalog", func(c *fiber.Ctx) error {
		return c.JSON(d.Catalog())
	})

	g := app.Group("/sessions")
	g.Post("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusCreated).JSON(d.NewSession())
	})
	g.Get("/:id", func(c *fiber.Ctx) error {
		snap, err := d.Snapshot(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(snap)
	})
	g.Delete("/:id", func(c *fiber.Ctx) error {
		d.EndSession(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})
	g.Post("/:id/actions/:action/apply", func(c *fiber.Ctx) error {
		snap, err := d.Apply(c.UserContext(), c.Params("id"), c.Params("action"))
		if err != nil {
			return err
		}
		return c.JSON(snap)
	})
	g.Get("/:id/actions/:action", func(c *fiber.Ctx) error {
		applied, err := d.IsApplied(c.Params("id"), c.Params("action"))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"action_id": c.Params("action"), "applied": applied})
	})
	g.Get("/:id/telemetry", func(c *fiber.Ctx) error {
		view, err := d.Telemetry(c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(view)
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	status, code := fiber.StatusInternalServerError, "internal"

	var fe *fiber.Error
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status, code = fiber.StatusNotFound, "session_not_found"
	case errors.Is(err, recommendation.ErrInvalidAction):
		status, code = fiber.StatusNotFound, "invalid_action"
	case errors.As(err, &fe):
		status, code = fe.Code, "http"
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(status).JSON(errorBody{Error: code, Message: err.Error()})
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		if herr := errorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}
	log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return nil
}
