package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/pixelpath-dev/pixelpath-api/internal/service"
	"github.com/pixelpath-dev/pixelpath-api/internal/utils"
)

// FeedbackHandler exposes the review pipeline endpoints.
type FeedbackHandler struct {
	service service.FeedbackService
	logger  zerolog.Logger
}

// NewFeedbackHandler constructs the handler.
func NewFeedbackHandler(service service.FeedbackService, logger zerolog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		service: service,
		logger:  logger.With().Str("component", "feedback_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group. The generate
// and regenerate routes accept an optional rate limiter since each miss
// invokes the generative-AI service.
func (h *FeedbackHandler) Register(router fiber.Router, generateLimit fiber.Handler) {
	if generateLimit == nil {
		generateLimit = func(c *fiber.Ctx) error { return c.Next() }
	}

	router.Get("/:submissionId", h.get)
	router.Post("/:submissionId/generate", generateLimit, h.generate)
	router.Post("/:submissionId/regenerate", generateLimit, h.regenerate)
}

func (h *FeedbackHandler) get(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c.Params("submissionId"), "submission id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.GetCached(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "feedback retrieved", response)
}

func (h *FeedbackHandler) generate(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c.Params("submissionId"), "submission id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Generate(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	if response.IsNew {
		return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback generated", response)
	}
	return utils.SendSuccess(c, "feedback retrieved", response)
}

func (h *FeedbackHandler) regenerate(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c.Params("submissionId"), "submission id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Regenerate(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "feedback regenerated", response)
}

func (h *FeedbackHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrChallengeNotFound),
		errors.Is(err, service.ErrFeedbackNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		h.logger.Error().Err(err).Msg("feedback operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
