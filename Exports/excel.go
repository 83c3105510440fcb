package Exports

import (
	"bytes"
	"fmt"
	"time"

	"Atlas/Models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// BuildInspectionWorkbook renders inspections scheduled in the given range
// into an Excel workbook with a summary sheet and a per-result detail sheet.
func BuildInspectionWorkbook(db *gorm.DB, startDate, endDate *time.Time) (*bytes.Buffer, error) {
	query := db.Model(&Models.Inspection{}).
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("order_sequence ASC") }).
		Preload("Results")
	if startDate != nil {
		query = query.Where("scheduled_date >= ?", *startDate)
	}
	if endDate != nil {
		query = query.Where("scheduled_date <= ?", *endDate)
	}

	var inspections []Models.Inspection
	if err := query.Order("scheduled_date ASC").Find(&inspections).Error; err != nil {
		return nil, err
	}

	equipmentLabels, err := equipmentLabelMap(db, inspections)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()

	summarySheet := "Inspections"
	file.SetSheetName("Sheet1", summarySheet)
	detailSheet := "Results"
	if _, err := file.NewSheet(detailSheet); err != nil {
		return nil, err
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return nil, err
	}

	summaryHeaders := map[string]string{
		"A1": "ID", "B1": "Equipment", "C1": "Type", "D1": "Status",
		"E1": "Overall Result", "F1": "Scheduled", "G1": "Completed",
		"H1": "Inspector", "I1": "Items", "J1": "Notes",
	}
	for cell, header := range summaryHeaders {
		file.SetCellValue(summarySheet, cell, header)
	}
	file.SetCellStyle(summarySheet, "A1", "J1", headerStyle)
	file.SetColWidth(summarySheet, "B", "B", 24)
	file.SetColWidth(summarySheet, "F", "G", 20)
	file.SetColWidth(summarySheet, "J", "J", 40)

	detailHeaders := map[string]string{
		"A1": "Inspection ID", "B1": "Item", "C1": "Category", "D1": "Required",
		"E1": "Safety Critical", "F1": "Result", "G1": "Measured",
		"H1": "Action Required", "I1": "Priority", "J1": "Checked At", "K1": "Notes",
	}
	for cell, header := range detailHeaders {
		file.SetCellValue(detailSheet, cell, header)
	}
	file.SetCellStyle(detailSheet, "A1", "K1", headerStyle)
	file.SetColWidth(detailSheet, "B", "B", 32)
	file.SetColWidth(detailSheet, "K", "K", 40)

	detailRow := 2
	for index, inspection := range inspections {
		row := index + 2
		file.SetCellValue(summarySheet, fmt.Sprintf("A%v", row), inspection.ID)
		file.SetCellValue(summarySheet, fmt.Sprintf("B%v", row), equipmentLabels[inspection.EquipmentID])
		file.SetCellValue(summarySheet, fmt.Sprintf("C%v", row), string(inspection.Type))
		file.SetCellValue(summarySheet, fmt.Sprintf("D%v", row), string(inspection.Status))
		file.SetCellValue(summarySheet, fmt.Sprintf("E%v", row), string(inspection.OverallResult))
		file.SetCellValue(summarySheet, fmt.Sprintf("F%v", row), inspection.ScheduledDate.Format("2006-01-02"))
		if inspection.CompletedAt != nil {
			file.SetCellValue(summarySheet, fmt.Sprintf("G%v", row), inspection.CompletedAt.Format("2006-01-02 15:04"))
		}
		file.SetCellValue(summarySheet, fmt.Sprintf("H%v", row), inspection.InspectorID)
		file.SetCellValue(summarySheet, fmt.Sprintf("I%v", row), len(inspection.Items))
		file.SetCellValue(summarySheet, fmt.Sprintf("J%v", row), inspection.Notes)

		itemsByID := make(map[uint]Models.InspectionItem, len(inspection.Items))
		for _, item := range inspection.Items {
			itemsByID[item.ID] = item
		}
		for _, result := range inspection.Results {
			item := itemsByID[result.InspectionItemID]
			file.SetCellValue(detailSheet, fmt.Sprintf("A%v", detailRow), inspection.ID)
			file.SetCellValue(detailSheet, fmt.Sprintf("B%v", detailRow), item.Name)
			file.SetCellValue(detailSheet, fmt.Sprintf("C%v", detailRow), string(item.Category))
			file.SetCellValue(detailSheet, fmt.Sprintf("D%v", detailRow), item.Required)
			file.SetCellValue(detailSheet, fmt.Sprintf("E%v", detailRow), item.SafetyCritical)
			file.SetCellValue(detailSheet, fmt.Sprintf("F%v", detailRow), string(result.Status))
			if result.MeasuredValue != nil {
				file.SetCellValue(detailSheet, fmt.Sprintf("G%v", detailRow), *result.MeasuredValue)
			}
			if result.RequiresAction {
				file.SetCellValue(detailSheet, fmt.Sprintf("H%v", detailRow), string(result.ActionRequired))
				file.SetCellValue(detailSheet, fmt.Sprintf("I%v", detailRow), string(result.PriorityLevel))
			}
			if result.TimestampChecked != nil {
				file.SetCellValue(detailSheet, fmt.Sprintf("J%v", detailRow), result.TimestampChecked.Format("2006-01-02 15:04"))
			}
			file.SetCellValue(detailSheet, fmt.Sprintf("K%v", detailRow), result.InspectorNotes)
			detailRow++
		}
	}

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

func equipmentLabelMap(db *gorm.DB, inspections []Models.Inspection) (map[uint]string, error) {
	ids := make([]uint, 0, len(inspections))
	seen := make(map[uint]bool)
	for _, inspection := range inspections {
		if !seen[inspection.EquipmentID] {
			seen[inspection.EquipmentID] = true
			ids = append(ids, inspection.EquipmentID)
		}
	}
	labels := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return labels, nil
	}

	var units []Models.Equipment
	if err := db.Where("id IN ?", ids).Find(&units).Error; err != nil {
		return nil, err
	}
	for _, unit := range units {
		label := unit.SerialNumber
		if unit.PlateNumber != "" {
			label = fmt.Sprintf("%s (%s)", unit.SerialNumber, unit.PlateNumber)
		}
		labels[unit.ID] = label
	}
	return labels, nil
}
