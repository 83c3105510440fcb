package Controllers

import (
	"strconv"

	"Atlas/Models"

	"github.com/gofiber/fiber/v2"
)

// RegisterEquipmentType adds an equipment type to the catalog.
func RegisterEquipmentType(c *fiber.Ctx) error {
	var equipmentType Models.EquipmentType
	if err := c.BodyParser(&equipmentType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if equipmentType.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Equipment type name is required",
		})
	}

	if err := Models.DB.Create(&equipmentType).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create equipment type",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(equipmentType)
}

// FetchEquipmentTypes lists the equipment type catalog.
func FetchEquipmentTypes(c *fiber.Ctx) error {
	var types []Models.EquipmentType
	if err := Models.DB.Order("name ASC").Find(&types).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch equipment types",
			"error":   err.Error(),
		})
	}
	return c.JSON(types)
}

// RegisterEquipment adds a unit to the fleet registry.
func RegisterEquipment(c *fiber.Ctx) error {
	var equipment Models.Equipment
	if err := c.BodyParser(&equipment); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if equipment.SerialNumber == "" || equipment.EquipmentTypeID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Serial number and equipment type are required",
		})
	}

	var equipmentType Models.EquipmentType
	if err := Models.DB.First(&equipmentType, equipment.EquipmentTypeID).Error; err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Unknown equipment type",
		})
	}

	if err := Models.DB.Create(&equipment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to register equipment",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(equipment)
}

// FetchEquipment lists fleet units, optionally filtered by type, status or
// site.
func FetchEquipment(c *fiber.Ctx) error {
	query := Models.DB.Model(&Models.Equipment{}).Preload("EquipmentType")

	if id, err := strconv.Atoi(c.Query("type_id")); err == nil {
		query = query.Where("equipment_type_id = ?", id)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if site := c.Query("site"); site != "" {
		query = query.Where("site = ?", site)
	}

	var equipment []Models.Equipment
	if err := query.Order("serial_number ASC").Find(&equipment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch equipment",
			"error":   err.Error(),
		})
	}
	return c.JSON(equipment)
}

// GetEquipment returns one unit with its recent hour readings.
func GetEquipment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid equipment id",
		})
	}

	var equipment Models.Equipment
	if err := Models.DB.Preload("EquipmentType").First(&equipment, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Equipment not found",
		})
	}

	var readings []Models.HourReading
	Models.DB.Where("equipment_id = ?", id).Order("read_at DESC").Limit(30).Find(&readings)

	return c.JSON(fiber.Map{
		"equipment": equipment,
		"readings":  readings,
	})
}

// UpdateEquipment saves registry fields for a unit. Telematics readings are
// not editable here.
func UpdateEquipment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid equipment id",
		})
	}

	var equipment Models.Equipment
	if err := Models.DB.First(&equipment, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Equipment not found",
		})
	}

	var body Models.Equipment
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	updates := map[string]interface{}{}
	if body.SerialNumber != "" {
		updates["serial_number"] = body.SerialNumber
	}
	if body.PlateNumber != "" {
		updates["plate_number"] = body.PlateNumber
	}
	if body.Manufacturer != "" {
		updates["manufacturer"] = body.Manufacturer
	}
	if body.ModelName != "" {
		updates["model_name"] = body.ModelName
	}
	if body.YearBuilt != 0 {
		updates["year_built"] = body.YearBuilt
	}
	if body.Status != "" {
		updates["status"] = body.Status
	}
	if body.Site != "" {
		updates["site"] = body.Site
	}
	if body.EquipmentTypeID != 0 {
		var equipmentType Models.EquipmentType
		if err := Models.DB.First(&equipmentType, body.EquipmentTypeID).Error; err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Unknown equipment type",
			})
		}
		updates["equipment_type_id"] = body.EquipmentTypeID
	}

	if err := Models.DB.Model(&equipment).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update equipment",
			"error":   err.Error(),
		})
	}
	return c.JSON(equipment)
}

// DeleteEquipment retires a unit from the registry (soft delete).
func DeleteEquipment(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid equipment id",
		})
	}

	result := Models.DB.Delete(&Models.Equipment{}, id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete equipment",
			"error":   result.Error.Error(),
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Equipment not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Equipment deleted successfully",
	})
}
