package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
)

// ActionHandlers serves the action-block endpoints the activities call. The
// responses are canned: this is where real carrier integrations plug in.
type ActionHandlers struct {
	logger *slog.Logger
}

func NewActionHandlers(logger *slog.Logger) *ActionHandlers {
	return &ActionHandlers{logger: logger.With("module", "actions")}
}

// RegisterRoutes mounts every action block under /api/v1/tracy.
func (h *ActionHandlers) RegisterRoutes(app *fiber.App) {
	tracy := app.Group("/api/v1/tracy")

	tracy.Get("/load-search", h.LoadSearch)
	tracy.Post("/send-email", h.SendEmail)
	tracy.Post("/process-email", h.ProcessEmail)
	tracy.Post("/extract-data", h.ExtractData)
	tracy.Get("/escalation-milestones", h.EscalationMilestones)
	tracy.Post("/update-load", h.UpdateLoad)
	tracy.Post("/send-escalation-email", h.SendEscalationEmail)
}

func (h *ActionHandlers) LoadSearch(c fiber.Ctx) error {
	h.logger.InfoContext(c.Context(), "Searching loads")

	return c.JSON([]int{1, 2, 3, 4})
}

func (h *ActionHandlers) SendEmail(c fiber.Ctx) error {
	h.logger.InfoContext(c.Context(), "Sending email")

	return c.JSON(fiber.Map{"message": "Email sent"})
}

func (h *ActionHandlers) ProcessEmail(c fiber.Ctx) error {
	h.logger.InfoContext(c.Context(), "Classifying email")

	return c.JSON(fiber.Map{"result": "classified"})
}

func (h *ActionHandlers) ExtractData(c fiber.Ctx) error {
	h.logger.InfoContext(c.Context(), "Extracting data")

	return c.JSON(fiber.Map{"data": "extracted data"})
}

func (h *ActionHandlers) EscalationMilestones(c fiber.Ctx) error {
	h.logger.InfoContext(c.Context(), "Checking escalation milestones")

	return c.JSON(fiber.Map{"status": "milestone check completed"})
}

func (h *ActionHandlers) UpdateLoad(c fiber.Ctx) error {
	h.logger.InfoContext(c.Context(), "Updating load")

	return c.JSON(fiber.Map{"message": "load updated"})
}

func (h *ActionHandlers) SendEscalationEmail(c fiber.Ctx) error {
	h.logger.InfoContext(c.Context(), "Sending escalation email")

	return c.JSON(fiber.Map{"message": "escalation email to carrier"})
}
