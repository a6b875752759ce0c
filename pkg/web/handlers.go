package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/loadwise/tracy/pkg/services"
)

type APIHandlers struct {
	runService *services.Runs
	validator  *validator.Validate
}

func NewAPIHandlers(runService *services.Runs, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		runService: runService,
		validator:  validator,
	}
}

// CreateRun starts a document run. With "wait" set the response carries the
// final bindings, otherwise the run identity is returned immediately.
func (h *APIHandlers) CreateRun(c fiber.Ctx) error {
	var req CreateRunRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Wait {
		result, err := h.runService.Execute(c.Context(), req.Document)
		if err != nil {
			return handleServiceError(c, err)
		}

		return c.JSON(result)
	}

	handle, err := h.runService.Start(c.Context(), req.Document)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(handle)
}

func (h *APIHandlers) GetRun(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	status, err := h.runService.Status(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(status)
}

func (h *APIHandlers) GetDocuments(c fiber.Ctx) error {
	documents, err := h.runService.Documents(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(DocumentsResponse{Documents: documents})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Tracy API is healthy"
	httpStatus := http.StatusOK

	err := h.runService.HealthCheck(c.Context())
	if err != nil {
		status = "unhealthy"
		message = "Tracy API is unhealthy"
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}
