package Controllers

import (
	"strconv"

	"Atlas/Models"

	"github.com/gofiber/fiber/v2"
)

// CreateTemplateItem adds a checklist template item for an equipment type.
func CreateTemplateItem(c *fiber.Ctx) error {
	var item Models.ChecklistTemplateItem
	if err := c.BodyParser(&item); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if item.Name == "" || item.EquipmentTypeID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Name and equipment type are required",
		})
	}
	if !item.Frequency.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid template frequency",
		})
	}
	if item.MinValue != nil && item.MaxValue != nil && *item.MinValue > *item.MaxValue {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "min_value cannot exceed max_value",
		})
	}

	var equipmentType Models.EquipmentType
	if err := Models.DB.First(&equipmentType, item.EquipmentTypeID).Error; err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Unknown equipment type",
		})
	}

	if item.Active == nil {
		active := true
		item.Active = &active
	}
	if err := Models.DB.Create(&item).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create template item",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// FetchTemplateItems lists template items, filtered by equipment type and
// frequency when given.
func FetchTemplateItems(c *fiber.Ctx) error {
	query := Models.DB.Model(&Models.ChecklistTemplateItem{})
	if id, err := strconv.Atoi(c.Query("equipment_type_id")); err == nil {
		query = query.Where("equipment_type_id = ?", id)
	}
	if frequency := c.Query("frequency"); frequency != "" {
		query = query.Where("frequency = ?", frequency)
	}
	if c.Query("active") != "" {
		query = query.Where("active = ?", c.QueryBool("active"))
	}

	var items []Models.ChecklistTemplateItem
	if err := query.Order("equipment_type_id ASC, frequency ASC, order_sequence ASC").Find(&items).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch template items",
			"error":   err.Error(),
		})
	}
	return c.JSON(items)
}

// UpdateTemplateItem saves edits to a template item. Existing inspections are
// unaffected; they keep their copied fields.
func UpdateTemplateItem(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid template item id",
		})
	}

	var item Models.ChecklistTemplateItem
	if err := Models.DB.First(&item, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Template item not found",
		})
	}

	var body Models.ChecklistTemplateItem
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if body.Frequency != "" && !body.Frequency.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid template frequency",
		})
	}

	body.ID = item.ID
	body.CreatedAt = item.CreatedAt
	if body.EquipmentTypeID == 0 {
		body.EquipmentTypeID = item.EquipmentTypeID
	}
	if body.Frequency == "" {
		body.Frequency = item.Frequency
	}
	if body.Name == "" {
		body.Name = item.Name
	}
	if body.Active == nil {
		body.Active = item.Active
	}
	if body.MinValue != nil && body.MaxValue != nil && *body.MinValue > *body.MaxValue {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "min_value cannot exceed max_value",
		})
	}

	if err := Models.DB.Save(&body).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update template item",
			"error":   err.Error(),
		})
	}
	return c.JSON(body)
}

// DeleteTemplateItem retires a template item. Inspections already expanded
// from it are untouched.
func DeleteTemplateItem(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid template item id",
		})
	}

	result := Models.DB.Delete(&Models.ChecklistTemplateItem{}, id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to delete template item",
			"error":   result.Error.Error(),
		})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Template item not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Template item deleted successfully",
	})
}
