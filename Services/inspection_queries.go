package Services

import (
	"time"

	"Atlas/Models"

	"gorm.io/gorm"
)

// InspectionFilter is the read-side filter contract. Zero values mean "no
// filter". View selects one of the derived predicates.
type InspectionFilter struct {
	EquipmentID    uint
	InspectorID    uint
	Status         Models.InspectionStatus
	Type           Models.InspectionType
	OverallResult  Models.OverallResult
	StartDate      *time.Time
	EndDate        *time.Time
	View           string // "", "today", "week", "overdue", "requires_action"
	IncludeDeleted bool
}

// List returns a page of inspections plus the total matching count.
func (s *InspectionService) List(filter InspectionFilter, page, limit int) ([]Models.Inspection, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.filterQuery(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var inspections []Models.Inspection
	err := query.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_sequence ASC")
	}).Preload("Results", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Order("scheduled_date DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&inspections).Error
	if err != nil {
		return nil, 0, err
	}

	return inspections, total, nil
}

func (s *InspectionService) filterQuery(filter InspectionFilter) *gorm.DB {
	query := s.DB.Model(&Models.Inspection{})
	if filter.IncludeDeleted {
		query = query.Unscoped()
	}

	if filter.EquipmentID != 0 {
		query = query.Where("equipment_id = ?", filter.EquipmentID)
	}
	if filter.InspectorID != 0 {
		query = query.Where("inspector_id = ?", filter.InspectorID)
	}
	if filter.Status != "" && filter.Status != Models.StatusOverdue {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.OverallResult != "" {
		query = query.Where("overall_result = ?", filter.OverallResult)
	}
	if filter.StartDate != nil {
		query = query.Where("scheduled_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("scheduled_date <= ?", *filter.EndDate)
	}

	now := s.now()
	switch filter.View {
	case "today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		query = query.Where("scheduled_date >= ? AND scheduled_date < ?", start, start.Add(24*time.Hour))
	case "week":
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday closes the week
		}
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, -(weekday - 1))
		query = query.Where("scheduled_date >= ? AND scheduled_date < ?", start, start.AddDate(0, 0, 7))
	case "overdue":
		query = overduePredicate(query, now)
	case "requires_action":
		query = query.Where(
			"EXISTS (SELECT 1 FROM inspection_results ir WHERE ir.inspection_id = inspections.id AND ir.requires_action = ? AND ir.deleted_at IS NULL)",
			true)
	}
	// Overdue is derived; filtering on it uses the same predicate as the view.
	if filter.Status == Models.StatusOverdue {
		query = overduePredicate(query, now)
	}

	return query
}

func overduePredicate(query *gorm.DB, now time.Time) *gorm.DB {
	return query.Where("scheduled_date < ? AND status NOT IN ?", now,
		[]Models.InspectionStatus{Models.StatusCompleted, Models.StatusCancelled})
}

// InspectionStatistics aggregates counts and breakdowns over a date range.
type InspectionStatistics struct {
	Total                  int64            `json:"total"`
	ByStatus               map[string]int64 `json:"by_status"`
	ByType                 map[string]int64 `json:"by_type"`
	ByOverallResult        map[string]int64 `json:"by_overall_result"`
	Overdue                int64            `json:"overdue"`
	RequiresAction         int64            `json:"requires_action"`
	SafetyCriticalFailures int64            `json:"safety_critical_failures"`
	CompletionRate         float64          `json:"completion_rate"`
}

// Statistics computes the aggregate breakdowns for inspections scheduled in
// the given range. Nil bounds mean unbounded.
func (s *InspectionService) Statistics(startDate, endDate *time.Time) (*InspectionStatistics, error) {
	stats := &InspectionStatistics{
		ByStatus:        make(map[string]int64),
		ByType:          make(map[string]int64),
		ByOverallResult: make(map[string]int64),
	}

	base := func() *gorm.DB {
		query := s.DB.Model(&Models.Inspection{})
		if startDate != nil {
			query = query.Where("scheduled_date >= ?", *startDate)
		}
		if endDate != nil {
			query = query.Where("scheduled_date <= ?", *endDate)
		}
		return query
	}

	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type bucket struct {
		Key   string
		Count int64
	}

	var rows []bucket
	if err := base().Select("status as key, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByStatus[row.Key] = row.Count
	}

	rows = nil
	if err := base().Select("type as key, COUNT(*) as count").Group("type").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByType[row.Key] = row.Count
	}

	rows = nil
	if err := base().Select("overall_result as key, COUNT(*) as count").Group("overall_result").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.ByOverallResult[row.Key] = row.Count
	}

	if err := overduePredicate(base(), s.now()).Count(&stats.Overdue).Error; err != nil {
		return nil, err
	}

	if err := base().Where(
		"EXISTS (SELECT 1 FROM inspection_results ir WHERE ir.inspection_id = inspections.id AND ir.requires_action = ? AND ir.deleted_at IS NULL)",
		true).Count(&stats.RequiresAction).Error; err != nil {
		return nil, err
	}

	// Failed results on safety-critical items, for priority review.
	failedCritical := s.DB.Model(&Models.InspectionResult{}).
		Joins("JOIN inspection_items ON inspection_items.id = inspection_results.inspection_item_id AND inspection_items.deleted_at IS NULL").
		Where("inspection_results.status = ? AND inspection_items.safety_critical = ?", Models.ResultStatusFail, true)
	if startDate != nil || endDate != nil {
		failedCritical = failedCritical.Joins("JOIN inspections ON inspections.id = inspection_results.inspection_id AND inspections.deleted_at IS NULL")
		if startDate != nil {
			failedCritical = failedCritical.Where("inspections.scheduled_date >= ?", *startDate)
		}
		if endDate != nil {
			failedCritical = failedCritical.Where("inspections.scheduled_date <= ?", *endDate)
		}
	}
	if err := failedCritical.Count(&stats.SafetyCriticalFailures).Error; err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.ByStatus[string(Models.StatusCompleted)]) / float64(stats.Total)
	}

	return stats, nil
}
