package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maahtami/study-planner-ece1778/dto"
	"github.com/maahtami/study-planner-ece1778/shared"
)

type SettingsHandler struct {
	plannerSvc PlannerServiceInterface
}

func NewSettingsHandler(plannerSvc PlannerServiceInterface) *SettingsHandler {
	return &SettingsHandler{plannerSvc: plannerSvc}
}

// @Summary Get App Settings
// @Description This endpoint returns the notification settings and daily reminder time
// @Tags settings
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=model.AppSettings}
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.plannerSvc.GetSettings()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", settings)
}

// @Summary Update App Settings
// @Description This endpoint updates notification settings and keeps the daily study reminder in sync
// @Tags settings
// @Accept  json
// @Produce json
// @Param updateSettingsRequest body dto.UpdateSettingsRequest true "Update settings request"
// @Success 200 {object} shared.Response{data=model.AppSettings}
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	settings, err := h.plannerSvc.UpdateSettings(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", settings)
}
