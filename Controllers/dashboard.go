package Controllers

import (
	"time"

	"Atlas/Models"
	"Atlas/Services"

	"github.com/gofiber/fiber/v2"
)

// Dashboard renders the fleet overview page.
func Dashboard(c *fiber.Ctx) error {
	service := Services.NewInspectionService(Models.DB)

	stats, err := service.Statistics(nil, nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard")
	}

	overdue, _, err := service.List(Services.InspectionFilter{View: "overdue"}, 1, 10)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard")
	}

	today, _, err := service.List(Services.InspectionFilter{View: "today"}, 1, 10)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load dashboard")
	}

	var fleetSize int64
	Models.DB.Model(&Models.Equipment{}).Count(&fleetSize)

	return c.Render("dashboard", fiber.Map{
		"GeneratedAt":       time.Now().Format("2006-01-02 15:04"),
		"FleetSize":         fleetSize,
		"Stats":             stats,
		"CompletionPercent": int(stats.CompletionRate * 100),
		"Overdue":           overdue,
		"Today":             today,
	})
}
