package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/maahtami/study-planner-ece1778/dto"
	"github.com/maahtami/study-planner-ece1778/shared"
)

type SessionHandler struct {
	plannerSvc PlannerServiceInterface
	backupSvc  BackupServiceInterface
}

func NewSessionHandler(plannerSvc PlannerServiceInterface, backupSvc BackupServiceInterface) *SessionHandler {
	return &SessionHandler{
		plannerSvc: plannerSvc,
		backupSvc:  backupSvc,
	}
}

func ownerID(c *fiber.Ctx) string {
	if v, ok := c.Locals(shared.UserID).(string); ok {
		return v
	}
	return ""
}

// @Summary List Study Sessions
// @Description This endpoint lists all study sessions visible to the caller, merged with the remote mirror when signed in
// @Tags sessions
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.SessionListResponse}
// @Router /api/v1/sessions [get]
func (h *SessionHandler) List(c *fiber.Ctx) error {
	resp := h.plannerSvc.List(c.UserContext(), ownerID(c))
	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Get Study Session
// @Description This endpoint retrieves a single study session by id
// @Tags sessions
// @Accept  json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	session, err := h.plannerSvc.Get(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Create Study Session
// @Description This endpoint creates a new study session and schedules a reminder when it has a future scheduled time
// @Tags sessions
// @Accept  json
// @Produce json
// @Param createSessionRequest body dto.CreateSessionRequest true "Create session request"
// @Success 201
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	session, err := h.plannerSvc.Create(c.UserContext(), ownerID(c), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusCreated, "Created", session)
}

// @Summary Edit Study Session
// @Description This endpoint applies a partial edit to a study session and reschedules its reminder
// @Tags sessions
// @Accept  json
// @Produce json
// @Param id path string true "Session ID"
// @Param updateSessionRequest body dto.UpdateSessionRequest true "Update session request"
// @Success 200
// @Router /api/v1/sessions/{id} [put]
func (h *SessionHandler) Edit(c *fiber.Ctx) error {
	var req dto.UpdateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	session, err := h.plannerSvc.Edit(c.UserContext(), ownerID(c), c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Complete Study Session
// @Description This endpoint marks a study session completed and returns the updated gamification snapshot
// @Tags sessions
// @Accept  json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.CompleteSessionResponse}
// @Router /api/v1/sessions/{id}/complete [post]
func (h *SessionHandler) Complete(c *fiber.Ctx) error {
	resp, err := h.plannerSvc.Complete(c.UserContext(), ownerID(c), c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Restart Study Session
// @Description This endpoint un-completes a finished study session, rolling back its gamification contribution
// @Tags sessions
// @Accept  json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.CompleteSessionResponse}
// @Router /api/v1/sessions/{id}/restart [post]
func (h *SessionHandler) Restart(c *fiber.Ctx) error {
	resp, err := h.plannerSvc.Restart(c.UserContext(), ownerID(c), c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", resp)
}

// @Summary Rate Study Session
// @Description This endpoint stores a 1-5 rating on a study session, or -1 to clear it
// @Tags sessions
// @Accept  json
// @Produce json
// @Param id path string true "Session ID"
// @Param rateSessionRequest body dto.RateSessionRequest true "Rate session request"
// @Success 200
// @Router /api/v1/sessions/{id}/rate [post]
func (h *SessionHandler) Rate(c *fiber.Ctx) error {
	var req dto.RateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	session, err := h.plannerSvc.Rate(c.UserContext(), ownerID(c), c.Params("id"), req.Rating)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", session)
}

// @Summary Delete Study Session
// @Description This endpoint deletes a study session and cancels its reminder
// @Tags sessions
// @Accept  json
// @Produce json
// @Param id path string true "Session ID"
// @Success 200
// @Router /api/v1/sessions/{id} [delete]
func (h *SessionHandler) Delete(c *fiber.Ctx) error {
	if err := h.plannerSvc.Delete(c.UserContext(), ownerID(c), c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Export Planner
// @Description This endpoint exports all sessions and the gamification snapshot to object storage and returns a download URL
// @Tags sessions
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.ExportResponse}
// @Router /api/v1/export [post]
func (h *SessionHandler) Export(c *fiber.Ctx) error {
	object, url, err := h.backupSvc.Export(c.UserContext(), ownerID(c))
	if err != nil {
		return shared.NewInternalError(err, "Failed to export planner data")
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", dto.ExportResponse{
		Object:      object,
		DownloadURL: url,
	})
}

// @Summary Sync After Sign-In
// @Description This endpoint adopts local-only sessions into the caller's account and refreshes state from the remote mirror
// @Tags sessions
// @Accept  json
// @Produce json
// @Success 200
// @Router /api/v1/sync [post]
func (h *SessionHandler) Sync(c *fiber.Ctx) error {
	if err := h.plannerSvc.OnSignIn(c.UserContext(), ownerID(c)); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}

// @Summary Sign Out
// @Description This endpoint resets the caller's local gamification snapshot on sign-out
// @Tags sessions
// @Accept  json
// @Produce json
// @Success 200
// @Router /api/v1/signout [post]
func (h *SessionHandler) SignOut(c *fiber.Ctx) error {
	if err := h.plannerSvc.OnSignOut(c.UserContext(), ownerID(c)); err != nil {
		return err
	}

	return shared.ResponseOK(c, nil)
}
