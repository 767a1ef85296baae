package controller

import (
	"concierge-be/internal/pkg/serverutils"
	"concierge-be/pkg/concierge"

	"github.com/gofiber/fiber/v2"
)

type IWidgetController interface {
	RegisterRoutes(r fiber.Router, api fiber.Router)
	Script(ctx *fiber.Ctx) error
	Defaults(ctx *fiber.Ctx) error
}

type widgetController struct {
	scriptPath string
}

func NewWidgetController(scriptPath string) IWidgetController {
	return &widgetController{scriptPath: scriptPath}
}

func (c *widgetController) RegisterRoutes(r fiber.Router, api fiber.Router) {
	r.Get("/concierge.js", c.Script)

	h := api.Group("/widget/v1")
	h.Get("defaults", c.Defaults)
}

func (c *widgetController) Script(ctx *fiber.Ctx) error {
	ctx.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	ctx.Type("js", "utf-8")
	return ctx.SendFile(c.scriptPath)
}

type widgetDefaultsResponse struct {
	Config     concierge.Config `json:"config"`
	AvatarHTML string           `json:"avatar_html"`
}

func (c *widgetController) Defaults(ctx *fiber.Ctx) error {
	cfg := concierge.DefaultConfig()
	return ctx.JSON(serverutils.SuccessResponse("Success get widget defaults", widgetDefaultsResponse{
		Config:     cfg,
		AvatarHTML: cfg.AvatarHTML(),
	}))
}
