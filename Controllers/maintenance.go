package Controllers

import (
	"strconv"

	"Atlas/Models"
	"Atlas/Services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// MaintenanceHandler contains handler methods for maintenance routes
type MaintenanceHandler struct {
	Service *Services.MaintenanceService
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(db *gorm.DB) *MaintenanceHandler {
	return &MaintenanceHandler{
		Service: Services.NewMaintenanceService(db),
	}
}

// CreateMaintenance schedules a maintenance record with its tasks and parts.
func (h *MaintenanceHandler) CreateMaintenance(c *fiber.Ctx) error {
	var req Models.CreateMaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if fields := validateStruct(req); fields != nil {
		return validationFailed(c, fields)
	}

	record, err := h.Service.Create(req, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to create maintenance record")
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// GetMaintenance returns one maintenance record with tasks and parts.
func (h *MaintenanceHandler) GetMaintenance(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid maintenance id",
		})
	}

	record, err := h.Service.Get(id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch maintenance record")
	}
	return c.JSON(record)
}

// ListMaintenance returns a filtered, paginated list of maintenance records.
func (h *MaintenanceHandler) ListMaintenance(c *fiber.Ctx) error {
	var equipmentID uint
	if id, err := strconv.Atoi(c.Query("equipment_id")); err == nil {
		equipmentID = uint(id)
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	records, total, err := h.Service.List(equipmentID,
		Models.MaintenanceStatus(c.Query("status")),
		Models.ServiceType(c.Query("service_type")),
		page, limit)
	if err != nil {
		return serviceError(c, err, "Failed to fetch maintenance records")
	}

	return c.JSON(fiber.Map{
		"records": records,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// UpdateMaintenance applies a partial update through the transition table.
func (h *MaintenanceHandler) UpdateMaintenance(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid maintenance id",
		})
	}

	var req Models.UpdateMaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	record, err := h.Service.Update(id, req, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to update maintenance record")
	}
	return c.JSON(record)
}

// StartMaintenance moves a scheduled record to in_progress.
func (h *MaintenanceHandler) StartMaintenance(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid maintenance id",
		})
	}

	record, err := h.Service.Start(id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to start maintenance")
	}
	return c.JSON(record)
}

// CompleteMaintenance finalizes a record once its required tasks are done.
func (h *MaintenanceHandler) CompleteMaintenance(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid maintenance id",
		})
	}

	var req Models.CompleteMaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	record, err := h.Service.Complete(id, req, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to complete maintenance")
	}
	return c.JSON(record)
}

// CancelMaintenance cancels a record that has not been completed.
func (h *MaintenanceHandler) CancelMaintenance(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid maintenance id",
		})
	}

	record, err := h.Service.Cancel(id, actorID(c))
	if err != nil {
		return serviceError(c, err, "Failed to cancel maintenance")
	}
	return c.JSON(record)
}

// DeleteMaintenance soft deletes a record and its children.
func (h *MaintenanceHandler) DeleteMaintenance(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid maintenance id",
		})
	}

	if err := h.Service.Delete(id, actorID(c)); err != nil {
		return serviceError(c, err, "Failed to delete maintenance record")
	}
	return c.JSON(fiber.Map{
		"message": "Maintenance record deleted successfully",
	})
}
