package controller

import (
	"concierge-be/internal/dto"
	"concierge-be/internal/pkg/serverutils"
	"concierge-be/internal/service"
	"concierge-be/pkg/completion"

	"github.com/gofiber/fiber/v2"
)

type ICompletionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Complete(ctx *fiber.Ctx) error
	Probe(ctx *fiber.Ctx) error
}

type completionController struct {
	completionService service.ICompletionService
}

func NewCompletionController(completionService service.ICompletionService) ICompletionController {
	return &completionController{
		completionService: completionService,
	}
}

// RegisterRoutes mounts the widget wire contract at the server root. The
// probe stays open; completions go through auth.
func (c *completionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	r.Get("/is-concierge-server", c.Probe)
	r.Post(completion.CompletionPath, auth, c.Complete)
}

func (c *completionController) Probe(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.ServerProbeResponse{IsConciergeServer: true})
}

// Complete answers with {text} or {error: {message}}, never the API envelope.
func (c *completionController) Complete(ctx *fiber.Ctx) error {
	var req dto.CompletionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return contractError(ctx, fiber.StatusBadRequest, "invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return contractError(ctx, fiber.StatusBadRequest, err.Error())
	}

	text, err := c.completionService.Complete(ctx.UserContext(), &req)
	if err != nil {
		return contractError(ctx, fiber.StatusBadGateway, completion.MessageOf(err))
	}

	return ctx.JSON(dto.CompletionResponse{Text: &text})
}

func contractError(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(dto.CompletionResponse{
		Error: &dto.CompletionError{Message: message},
	})
}
