package Controllers

import (
	"strconv"
	"time"

	"Atlas/Models"
	"Atlas/Notifications"
	"Atlas/Services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// InspectionHandler contains handler methods for inspection routes
type InspectionHandler struct {
	Service *Services.InspectionService
}

// NewInspectionHandler creates a new inspection handler
func NewInspectionHandler(db *gorm.DB) *InspectionHandler {
	return &InspectionHandler{
		Service: Services.NewInspectionService(db),
	}
}

func actorID(c *fiber.Ctx) uint {
	if user, ok := c.Locals("user").(Models.User); ok {
		return user.ID
	}
	return 0
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return 0, err
	}
	return uint(id), nil
}

// CreateInspection schedules a new inspection, optionally expanding the
// checklist template for the equipment type.
func (h *InspectionHandler) CreateInspection(c *fiber.Ctx) error {
	var req Models.CreateInspectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if fields := validateStruct(req); fields != nil {
		return validationFailed(c, fields)
	}

	inspection, err := h.Service.Create(req, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to create inspection")
	}
	return c.Status(fiber.StatusCreated).JSON(inspection)
}

// GetInspection returns one inspection with its items and results. The status
// field reflects the derived overdue state.
func (h *InspectionHandler) GetInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	inspection, err := h.Service.Get(id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch inspection")
	}

	return c.JSON(fiber.Map{
		"inspection":       inspection,
		"effective_status": inspection.EffectiveStatus(time.Now()),
	})
}

// ListInspections returns a filtered, paginated inspection list.
func (h *InspectionHandler) ListInspections(c *fiber.Ctx) error {
	filter := Services.InspectionFilter{
		Status:        Models.InspectionStatus(c.Query("status")),
		Type:          Models.InspectionType(c.Query("type")),
		OverallResult: Models.OverallResult(c.Query("overall_result")),
		View:          c.Query("view"),
	}
	if id, err := strconv.Atoi(c.Query("equipment_id")); err == nil {
		filter.EquipmentID = uint(id)
	}
	if id, err := strconv.Atoi(c.Query("inspector_id")); err == nil {
		filter.InspectorID = uint(id)
	}
	if start, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		filter.StartDate = &start
	}
	if end, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		filter.EndDate = &end
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	inspections, total, err := h.Service.List(filter, page, limit)
	if err != nil {
		return serviceError(c, err, "Failed to fetch inspections")
	}

	return c.JSON(fiber.Map{
		"inspections": inspections,
		"total":       total,
		"page":        page,
		"limit":       limit,
	})
}

// UpdateInspection applies a partial update. Only fields present in the
// payload change; status changes go through the transition table.
func (h *InspectionHandler) UpdateInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	var req Models.UpdateInspectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	inspection, err := h.Service.Update(id, req, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to update inspection")
	}
	return c.JSON(inspection)
}

// StartInspection moves a scheduled inspection to in_progress.
func (h *InspectionHandler) StartInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	inspection, err := h.Service.Start(id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to start inspection")
	}
	return c.JSON(inspection)
}

// CompleteInspection validates required items, aggregates the overall result
// and finalizes the inspection. A failed outcome raises a safety alert.
func (h *InspectionHandler) CompleteInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	var req Models.CompleteInspectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	inspection, err := h.Service.Complete(id, req, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to complete inspection")
	}

	if inspection.OverallResult == Models.ResultFail {
		go Notifications.NotifyInspectionFailure(inspection)
	}

	return c.JSON(inspection)
}

// CancelInspection cancels an inspection that has not been completed.
func (h *InspectionHandler) CancelInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	inspection, err := h.Service.Cancel(id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to cancel inspection")
	}
	return c.JSON(inspection)
}

// RescheduleInspection returns a cancelled inspection to scheduled, clearing
// recorded results but keeping the checklist.
func (h *InspectionHandler) RescheduleInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	var body struct {
		ScheduledDate string `json:"scheduled_date"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	var scheduledDate *time.Time
	if body.ScheduledDate != "" {
		parsed, err := time.Parse("2006-01-02", body.ScheduledDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid scheduled_date, expected YYYY-MM-DD",
			})
		}
		scheduledDate = &parsed
	}

	inspection, err := h.Service.Reschedule(id, scheduledDate, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to reschedule inspection")
	}
	return c.JSON(inspection)
}

// DuplicateInspection clones an inspection and its checklist as a fresh
// scheduled inspection for the next day.
func (h *InspectionHandler) DuplicateInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	inspection, err := h.Service.Duplicate(id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to duplicate inspection")
	}
	return c.Status(fiber.StatusCreated).JSON(inspection)
}

// DeleteInspection soft deletes an inspection and its children.
func (h *InspectionHandler) DeleteInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	if err := h.Service.Delete(id, actorID(c)); err != nil {
		return serviceError(c, err, "Failed to delete inspection")
	}
	return c.JSON(fiber.Map{
		"message": "Inspection deleted successfully",
	})
}

// HardDeleteInspection permanently removes a non-completed inspection.
func (h *InspectionHandler) HardDeleteInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	if err := h.Service.HardDelete(id, actorID(c)); err != nil {
		return serviceError(c, err, "Failed to permanently delete inspection")
	}
	return c.JSON(fiber.Map{
		"message": "Inspection permanently deleted",
	})
}

// RestoreInspection undoes a soft delete.
func (h *InspectionHandler) RestoreInspection(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid inspection id",
		})
	}

	inspection, err := h.Service.Restore(id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to restore inspection")
	}
	return c.JSON(inspection)
}

// InspectionStatistics returns aggregate breakdowns for the dashboard.
func (h *InspectionHandler) InspectionStatistics(c *fiber.Ctx) error {
	var startDate, endDate *time.Time
	if start, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		startDate = &start
	}
	if end, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		// Include the whole end day
		end = end.Add(24*time.Hour - time.Nanosecond)
		endDate = &end
	}

	stats, err := h.Service.Statistics(startDate, endDate)
	if err != nil {
		return serviceError(c, err, "Failed to compute inspection statistics")
	}
	return c.JSON(stats)
}
