package controller

import (
	"concierge-be/internal/dto"
	"concierge-be/internal/pkg/serverutils"
	"concierge-be/internal/service"
	"concierge-be/pkg/concierge"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Open(ctx *fiber.Ctx) error
	Close(ctx *fiber.Ctx) error
	OverlayClick(ctx *fiber.Ctx) error
	Input(ctx *fiber.Ctx) error
	Submit(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService service.ISessionService
}

func NewSessionController(sessionService service.ISessionService) ISessionController {
	return &sessionController{
		sessionService: sessionService,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/session/v1")
	h.Use(auth)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Post(":id/open", c.Open)
	h.Post(":id/close", c.Close)
	h.Post(":id/overlay_click", c.OverlayClick)
	h.Post(":id/input", c.Input)
	h.Post(":id/submit", c.Submit)
	h.Delete(":id", c.Delete)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.sessionService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Get(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *sessionController) Open(ctx *fiber.Ctx) error {
	return c.dispatch(ctx, concierge.Command{Name: concierge.CommandOpen}, "Success open session")
}

func (c *sessionController) Close(ctx *fiber.Ctx) error {
	return c.dispatch(ctx, concierge.Command{Name: concierge.CommandClose}, "Success close session")
}

func (c *sessionController) OverlayClick(ctx *fiber.Ctx) error {
	return c.dispatch(ctx, concierge.Command{Name: concierge.CommandOverlayClick}, "Success close session")
}

func (c *sessionController) Input(ctx *fiber.Ctx) error {
	var req dto.SessionCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return c.dispatch(ctx, concierge.Command{Name: concierge.CommandInput, Text: req.Text}, "Success update input")
}

// Submit blocks until the exchange settles. A submission rejected because it
// is blank or another exchange is in flight returns accepted=false.
func (c *sessionController) Submit(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var req dto.SessionCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.sessionService.Submit(ctx.UserContext(), id, req.Text)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success submit message", res))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	if err := c.sessionService.Delete(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *sessionController) dispatch(ctx *fiber.Ctx, cmd concierge.Command, message string) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	res, err := c.sessionService.Dispatch(ctx.UserContext(), id, cmd)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func sessionID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}
	return id, nil
}
