package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maahtami/study-planner-ece1778/shared"
)

type GamificationHandler struct {
	plannerSvc PlannerServiceInterface
}

func NewGamificationHandler(plannerSvc PlannerServiceInterface) *GamificationHandler {
	return &GamificationHandler{plannerSvc: plannerSvc}
}

// @Summary Get Gamification Snapshot
// @Description This endpoint returns the caller's streaks, badges and completion counters
// @Tags gamification
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=model.GamificationState}
// @Router /api/v1/gamification [get]
func (h *GamificationHandler) Get(c *fiber.Ctx) error {
	state, err := h.plannerSvc.Gamification(ownerID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", state)
}

// @Summary Reset Gamification Snapshot
// @Description This endpoint resets the caller's local gamification snapshot to a fresh state
// @Tags gamification
// @Accept  json
// @Produce json
// @Success 200
// @Router /api/v1/gamification/reset [post]
func (h *GamificationHandler) Reset(c *fiber.Ctx) error {
	if err := h.plannerSvc.ResetGamification(ownerID(c)); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Get Planner Statistics
// @Description This endpoint returns aggregate statistics over all sessions plus the live gamification snapshot
// @Tags gamification
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.StatsResponse}
// @Router /api/v1/stats [get]
func (h *GamificationHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.plannerSvc.Stats(c.UserContext(), ownerID(c))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", stats)
}
