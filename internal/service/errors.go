package service

import "github.com/gofiber/fiber/v2"

var (
	ErrSessionNotFound    = fiber.NewError(fiber.StatusNotFound, "session not found")
	ErrServerBackend      = fiber.NewError(fiber.StatusBadRequest, "hosted sessions cannot use the server backend")
	ErrAuditNotConfigured = fiber.NewError(fiber.StatusServiceUnavailable, "exchange audit is not configured")
)
