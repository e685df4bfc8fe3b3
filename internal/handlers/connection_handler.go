package handlers

import (
	"context"
	"strconv"
	"time"

	"mentorship-service/internal/metrics"
	"mentorship-service/internal/middleware"
	"mentorship-service/internal/service"

	"github.com/gofiber/fiber/v3"
)

type ConnectionHandler struct {
	connectionService *service.ConnectionService
	chatService       *service.ChatService
}

func NewConnectionHandler(connectionService *service.ConnectionService, chatService *service.ChatService) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
		chatService:       chatService,
	}
}

func (h *ConnectionHandler) RegisterRoutes(app *fiber.App) {
	group := app.Group("/protected/mentorship", middleware.RequireAuth)

	group.Post("/connect", h.Connect)
	group.Post("/block", h.Block)
	group.Get("/connections", h.ListConnections)
	group.Post("/connections/:id/respond", h.Respond)
	group.Get("/connections/:id/messages", h.ListMessages)
	group.Post("/connections/:id/messages", h.SendMessage)
}

type connectRequest struct {
	MentorID string `json:"mentorId"`
}

type blockRequest struct {
	MentorID string `json:"mentorId"`
}

type respondRequest struct {
	Action string `json:"action"`
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *ConnectionHandler) Connect(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req connectRequest
	if err := c.Bind().Body(&req); err != nil || req.MentorID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Mentor ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.connectionService.Connect(ctx, userID, req.MentorID)
	if err != nil {
		return fail(c, err, "Failed to process connection request")
	}

	metrics.ConnectionOutcomes.WithLabelValues(string(result.Status)).Inc()

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data":    result,
		"message": result.Message,
	})
}

func (h *ConnectionHandler) Block(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req blockRequest
	if err := c.Bind().Body(&req); err != nil || req.MentorID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Mentor ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.connectionService.BlockUser(ctx, userID, req.MentorID); err != nil {
		return fail(c, err, "Failed to block user")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User blocked",
	})
}

func (h *ConnectionHandler) ListConnections(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	overview, err := h.connectionService.ListConnections(ctx, userID)
	if err != nil {
		return fail(c, err, "Failed to list connections")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": overview,
	})
}

func (h *ConnectionHandler) Respond(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	connectionID := c.Params("id")

	var req respondRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.connectionService.Respond(ctx, userID, connectionID, req.Action)
	if err != nil {
		return fail(c, err, "Failed to respond to connection request")
	}

	metrics.ConnectionOutcomes.WithLabelValues(string(result.Status)).Inc()

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data":    result,
		"message": result.Message,
	})
}

func (h *ConnectionHandler) SendMessage(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	connectionID := c.Params("id")

	var req sendMessageRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg, err := h.chatService.Send(ctx, userID, connectionID, req.Content)
	if err != nil {
		return fail(c, err, "Failed to send message")
	}

	metrics.MessagesSent.Inc()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"message": msg,
		},
	})
}

func (h *ConnectionHandler) ListMessages(c fiber.Ctx) error {
	userID := middleware.UserID(c)
	connectionID := c.Params("id")

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid before cursor, expected RFC3339 timestamp",
			})
		}
		before = &parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid limit",
			})
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	page, err := h.chatService.List(ctx, userID, connectionID, before, limit)
	if err != nil {
		return fail(c, err, "Failed to list messages")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": page,
	})
}
