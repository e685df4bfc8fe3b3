package handlers

import (
	"context"
	"time"

	"mentorship-service/internal/metrics"
	"mentorship-service/internal/middleware"
	"mentorship-service/internal/service"

	"github.com/gofiber/fiber/v3"
)

type DiscoveryHandler struct {
	discoveryService *service.DiscoveryService
}

func NewDiscoveryHandler(discoveryService *service.DiscoveryService) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryService: discoveryService,
	}
}

func (h *DiscoveryHandler) RegisterRoutes(app *fiber.App) {
	group := app.Group("/protected/mentorship", middleware.RequireAuth)

	group.Get("/match", h.FindMentor)
	group.Post("/skip", h.SkipMentor)
}

type skipRequest struct {
	MentorID string `json:"mentorId"`
}

// FindMentor returns at most one mentor for the caller's interest tags,
// passed comma-joined in the tags query parameter.
func (h *DiscoveryHandler) FindMentor(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mentor, stage, err := h.discoveryService.FindMentor(ctx, userID, []string{c.Query("tags")})
	if err != nil {
		return fail(c, err, "Failed to find a mentor")
	}

	if mentor == nil {
		metrics.MatchesEmpty.Inc()
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"data": fiber.Map{
				"mentor": nil,
			},
			"message": "No mentor available right now, please try again later",
		})
	}

	metrics.MatchesServed.WithLabelValues(string(stage)).Inc()

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"mentor": mentor,
			"stage":  stage,
		},
	})
}

func (h *DiscoveryHandler) SkipMentor(c fiber.Ctx) error {
	userID := middleware.UserID(c)

	var req skipRequest
	if err := c.Bind().Body(&req); err != nil || req.MentorID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Mentor ID is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.discoveryService.SkipMentor(ctx, userID, req.MentorID); err != nil {
		return fail(c, err, "Failed to skip mentor")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Mentor skipped",
	})
}
