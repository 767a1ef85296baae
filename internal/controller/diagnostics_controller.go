package controller

import (
	"time"

	"concierge-be/internal/dto"
	"concierge-be/internal/pkg/logger"
	"concierge-be/internal/pkg/serverutils"
	"concierge-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IDiagnosticsController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
	GetExchanges(ctx *fiber.Ctx) error
	GetSessionExchanges(ctx *fiber.Ctx) error
}

type diagnosticsController struct {
	logger           logger.ILogger
	exchangesService service.IExchangeService
}

func NewDiagnosticsController(log logger.ILogger, exchangesService service.IExchangeService) IDiagnosticsController {
	return &diagnosticsController{
		logger:           log,
		exchangesService: exchangesService,
	}
}

func (c *diagnosticsController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/diagnostics/v1")
	h.Use(auth)
	h.Get("logs", c.GetLogs)
	h.Get("logs/:id", c.GetLogDetail)
	h.Get("exchanges", c.GetExchanges)
	h.Get("exchanges/session/:id", c.GetSessionExchanges)
}

func (c *diagnosticsController) GetLogs(ctx *fiber.Ctx) error {
	level := ctx.Query("level")
	limit := ctx.QueryInt("limit", 50)
	offset := ctx.QueryInt("offset", 0)

	entries, err := c.logger.GetLogs(level, limit, offset)
	if err != nil {
		return err
	}

	res := make([]dto.LogListResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, toLogListResponse(e))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get logs", res))
}

func (c *diagnosticsController) GetLogDetail(ctx *fiber.Ctx) error {
	entry, err := c.logger.GetLogById(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Log not found")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get log detail", dto.LogDetailResponse{
		LogListResponse: toLogListResponse(*entry),
		Details:         entry.Details,
	}))
}

func (c *diagnosticsController) GetExchanges(ctx *fiber.Ctx) error {
	res, err := c.exchangesService.Recent(ctx.UserContext(), ctx.QueryInt("limit", 50))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get exchanges", res))
}

func (c *diagnosticsController) GetSessionExchanges(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res, err := c.exchangesService.BySession(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session exchanges", res))
}

func toLogListResponse(e logger.LogEntry) dto.LogListResponse {
	createdAt, _ := time.Parse("2006-01-02T15:04:05.000Z0700", e.Timestamp)
	return dto.LogListResponse{
		Id:        e.Id,
		Level:     e.Level,
		Module:    e.Module,
		Message:   e.Message,
		CreatedAt: createdAt,
	}
}
