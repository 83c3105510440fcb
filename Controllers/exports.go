package Controllers

import (
	"fmt"
	"time"

	"Atlas/Exports"
	"Atlas/Models"

	"github.com/gofiber/fiber/v2"
)

// ExportInspections streams an Excel report of inspections in the requested
// date range.
func ExportInspections(c *fiber.Ctx) error {
	var startDate, endDate *time.Time
	if start, err := time.Parse("2006-01-02", c.Query("start_date")); err == nil {
		startDate = &start
	}
	if end, err := time.Parse("2006-01-02", c.Query("end_date")); err == nil {
		end = end.Add(24*time.Hour - time.Nanosecond)
		endDate = &end
	}

	buffer, err := Exports.BuildInspectionWorkbook(Models.DB, startDate, endDate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to build inspection report",
			"error":   err.Error(),
		})
	}

	filename := fmt.Sprintf("inspections_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buffer.Bytes())
}
