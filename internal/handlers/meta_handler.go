package handlers

import (
	"github.com/gofiber/fiber/v2"

	"catalog/internal/apidoc"
)

// HealthCheck probes one dependency. Check returns nil when it is usable.
type HealthCheck struct {
	Name  string
	Check func() error
}

// MetaHandler serves the health probe and the API description.
type MetaHandler struct {
	checks []HealthCheck
}

func NewMetaHandler(checks ...HealthCheck) *MetaHandler {
	return &MetaHandler{checks: checks}
}

func (h *MetaHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
	router.Get("/openapi.json", h.HandleOpenAPIJSON)
	router.Get("/openapi.yaml", h.HandleOpenAPIYAML)
}

// HandleHealth reports UP with 200 when every check passes, DOWN with 503
// otherwise.
func (h *MetaHandler) HandleHealth(c *fiber.Ctx) error {
	status := "UP"
	components := make(fiber.Map, len(h.checks))
	for _, hc := range h.checks {
		if err := hc.Check(); err != nil {
			status = "DOWN"
			components[hc.Name] = fiber.Map{"status": "DOWN", "error": err.Error()}
			continue
		}
		components[hc.Name] = fiber.Map{"status": "UP"}
	}

	code := fiber.StatusOK
	if status != "UP" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{"status": status, "components": components})
}

func (h *MetaHandler) HandleOpenAPIJSON(c *fiber.Ctx) error {
	data, err := apidoc.JSON()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

func (h *MetaHandler) HandleOpenAPIYAML(c *fiber.Ctx) error {
	data, err := apidoc.YAML()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/yaml")
	return c.Send(data)
}
