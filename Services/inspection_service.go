package Services

import (
	"errors"
	"fmt"
	"time"

	"Atlas/Models"

	"gorm.io/gorm"
)

// InspectionService is the workflow engine for the inspection aggregate. It
// enforces the status state machine, expands checklist templates, validates
// completion and derives the overall result. Every mutating operation runs
// inside one transaction and takes the acting user's id for audit stamps.
type InspectionService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewInspectionService(db *gorm.DB) *InspectionService {
	return &InspectionService{DB: db, Now: time.Now}
}

func (s *InspectionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// parseDate accepts the date-only wire format used across the API, falling
// back to RFC3339 for clients that send full timestamps.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, newValidationError("scheduled_date", "must be YYYY-MM-DD or RFC3339")
	}
	return t, nil
}

func validateItemBounds(min, max *float64) error {
	if min != nil && max != nil && *max < *min {
		return newValidationError("max_value", "must be greater than or equal to min_value")
	}
	return nil
}

// Create registers a new inspection in scheduled status. Items may be given
// explicitly, expanded from the equipment type's template catalog, or both.
func (s *InspectionService) Create(req Models.CreateInspectionRequest, actorID uint) (*Models.Inspection, error) {
	scheduledDate, err := parseDate(req.ScheduledDate)
	if err != nil {
		return nil, err
	}

	var equipment Models.Equipment
	if err := s.DB.First(&equipment, req.EquipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("equipment %d: %w", req.EquipmentID, ErrNotFound)
		}
		return nil, err
	}

	for _, item := range req.Items {
		if err := validateItemBounds(item.MinValue, item.MaxValue); err != nil {
			return nil, err
		}
	}
	if req.UseTemplate && req.Frequency != "" && !req.Frequency.IsValid() {
		return nil, newValidationError("frequency", "unknown template frequency")
	}

	inspection := &Models.Inspection{
		EquipmentID:   req.EquipmentID,
		InspectorID:   req.InspectorID,
		Type:          req.Type,
		Status:        Models.StatusScheduled,
		OverallResult: Models.ResultPending,
		ScheduledDate: scheduledDate,
		Notes:         req.Notes,
		CreatedBy:     actorID,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inspection).Error; err != nil {
			return err
		}
		for i, payload := range req.Items {
			item := itemFromPayload(inspection.ID, payload, i+1)
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		if req.UseTemplate {
			if err := s.expandTemplate(tx, inspection, equipment.EquipmentTypeID, req.Frequency); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(inspection.ID)
}

// GenerateFromTemplate creates a scheduled inspection seeded entirely from the
// equipment type's checklist templates for the given frequency.
func (s *InspectionService) GenerateFromTemplate(equipmentID, inspectorID uint, inspectionType Models.InspectionType, scheduledDate time.Time, frequency Models.TemplateFrequency, actorID uint) (*Models.Inspection, error) {
	var equipment Models.Equipment
	if err := s.DB.First(&equipment, equipmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("equipment %d: %w", equipmentID, ErrNotFound)
		}
		return nil, err
	}
	if frequency != "" && !frequency.IsValid() {
		return nil, newValidationError("frequency", "unknown template frequency")
	}

	inspection := &Models.Inspection{
		EquipmentID:   equipmentID,
		InspectorID:   inspectorID,
		Type:          inspectionType,
		Status:        Models.StatusScheduled,
		OverallResult: Models.ResultPending,
		ScheduledDate: scheduledDate,
		CreatedBy:     actorID,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inspection).Error; err != nil {
			return err
		}
		return s.expandTemplate(tx, inspection, equipment.EquipmentTypeID, frequency)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(inspection.ID)
}

// expandTemplate instantiates checklist items from the active template
// catalog. Re-invocation appends a fresh set; callers must not double-invoke
// for the same inspection.
func (s *InspectionService) expandTemplate(tx *gorm.DB, inspection *Models.Inspection, equipmentTypeID uint, frequency Models.TemplateFrequency) error {
	query := tx.Where("equipment_type_id = ? AND active = ?", equipmentTypeID, true)
	if frequency != "" {
		query = query.Where("frequency = ?", frequency)
	}

	var templates []Models.ChecklistTemplateItem
	if err := query.Order("order_sequence ASC").Find(&templates).Error; err != nil {
		return err
	}

	for _, tpl := range templates {
		templateID := tpl.ID
		item := Models.InspectionItem{
			InspectionID:      inspection.ID,
			TemplateItemID:    &templateID,
			Name:              tpl.Name,
			Description:       tpl.Description,
			Category:          tpl.Category,
			ItemType:          tpl.ItemType,
			Required:          tpl.Required,
			OrderSequence:     tpl.OrderSequence,
			MinValue:          tpl.MinValue,
			MaxValue:          tpl.MaxValue,
			Unit:              tpl.Unit,
			ExpectedCondition: tpl.ExpectedCondition,
			SafetyCritical:    tpl.SafetyCritical,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

// Get loads an inspection with its items (ordered) and results. Soft-deleted
// rows are not found.
func (s *InspectionService) Get(id uint) (*Models.Inspection, error) {
	return s.load(s.DB, id)
}

func (s *InspectionService) load(tx *gorm.DB, id uint) (*Models.Inspection, error) {
	var inspection Models.Inspection
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_sequence ASC")
	}).Preload("Results", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&inspection, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inspection %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &inspection, nil
}

// Start moves a scheduled inspection into in_progress and stamps the start
// time. An overdue inspection is stored as scheduled, so it may start too.
func (s *InspectionService) Start(id uint, actorID uint) (*Models.Inspection, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inspection, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if !inspection.Status.CanTransitionTo(Models.StatusInProgress) {
			return transitionError(inspection.Status, Models.StatusInProgress)
		}

		now := s.now()
		inspection.Status = Models.StatusInProgress
		if inspection.StartedAt == nil {
			inspection.StartedAt = &now
		}
		if inspection.OperatingHoursBefore == nil {
			var equipment Models.Equipment
			if err := tx.First(&equipment, inspection.EquipmentID).Error; err == nil && equipment.LastReadingAt != nil {
				hours := equipment.OperatingHours
				inspection.OperatingHoursBefore = &hours
				fuel := equipment.FuelLevel
				inspection.FuelLevelBefore = &fuel
			}
		}
		return tx.Save(inspection).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Complete validates required-item coverage, merges the closing fields,
// stamps the completion time and derives the overall result. Validation runs
// strictly before any write, so a failed completion leaves the inspection
// untouched.
func (s *InspectionService) Complete(id uint, req Models.CompleteInspectionRequest, actorID uint) (*Models.Inspection, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inspection, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if inspection.Status != Models.StatusScheduled && inspection.Status != Models.StatusInProgress {
			return transitionError(inspection.Status, Models.StatusCompleted)
		}

		if err := s.validateCompletion(tx, id); err != nil {
			return err
		}

		now := s.now()
		inspection.Status = Models.StatusCompleted
		if inspection.CompletedAt == nil {
			inspection.CompletedAt = &now
		}
		if inspection.StartedAt == nil {
			inspection.StartedAt = &now
		}
		if req.Notes != "" {
			inspection.Notes = req.Notes
		}
		if len(req.Signature) > 0 {
			inspection.Signature = req.Signature
		}
		if req.OperatingHoursAfter != nil {
			inspection.OperatingHoursAfter = req.OperatingHoursAfter
		}
		if req.FuelLevelAfter != nil {
			inspection.FuelLevelAfter = req.FuelLevelAfter
		}
		if inspection.OperatingHoursBefore != nil && inspection.OperatingHoursAfter != nil &&
			*inspection.OperatingHoursAfter < *inspection.OperatingHoursBefore {
			return newValidationError("operating_hours_after", "must be greater than or equal to operating_hours_before")
		}
		inspection.CompletedBy = actorID

		overall, err := s.calculateOverallResult(tx, id)
		if err != nil {
			return err
		}
		inspection.OverallResult = overall

		return tx.Save(inspection).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Cancel marks an inspection cancelled. Only completed is terminal.
func (s *InspectionService) Cancel(id uint, actorID uint) (*Models.Inspection, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inspection, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if inspection.Status.IsTerminal() {
			return &TerminalStateViolationError{Operation: "cancel", Status: inspection.Status.String()}
		}
		inspection.Status = Models.StatusCancelled
		return tx.Save(inspection).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Reschedule re-opens a cancelled inspection. Items survive the cycle;
// recorded results are cleared so completion revalidates from scratch.
func (s *InspectionService) Reschedule(id uint, scheduledDate *time.Time, actorID uint) (*Models.Inspection, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inspection, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if !inspection.Status.CanTransitionTo(Models.StatusScheduled) {
			return transitionError(inspection.Status, Models.StatusScheduled)
		}
		if scheduledDate != nil {
			inspection.ScheduledDate = *scheduledDate
		}
		return s.resetToScheduled(tx, inspection)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// resetToScheduled applies the cancelled -> scheduled reverse transition.
// Cleared results are removed permanently; a soft delete here would let
// Restore resurrect them under a pending overall result.
func (s *InspectionService) resetToScheduled(tx *gorm.DB, inspection *Models.Inspection) error {
	if err := tx.Unscoped().Where("inspection_id = ?", inspection.ID).Delete(&Models.InspectionResult{}).Error; err != nil {
		return err
	}
	inspection.Status = Models.StatusScheduled
	inspection.OverallResult = Models.ResultPending
	inspection.StartedAt = nil
	inspection.CompletedAt = nil
	inspection.CompletedBy = 0
	return tx.Select("status", "overall_result", "started_at", "completed_at", "completed_by", "scheduled_date").
		Save(inspection).Error
}

// Delete soft-deletes the inspection; items and results cascade.
func (s *InspectionService) Delete(id uint, actorID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		inspection, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("inspection_id = ?", id).Delete(&Models.InspectionItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("inspection_id = ?", id).Delete(&Models.InspectionResult{}).Error; err != nil {
			return err
		}
		return tx.Delete(inspection).Error
	})
}

// HardDelete permanently removes a non-completed inspection and its rows.
func (s *InspectionService) HardDelete(id uint, actorID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var inspection Models.Inspection
		if err := tx.Unscoped().First(&inspection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("inspection %d: %w", id, ErrNotFound)
			}
			return err
		}
		if inspection.Status.IsTerminal() {
			return &TerminalStateViolationError{Operation: "hard-delete", Status: inspection.Status.String()}
		}
		if err := tx.Unscoped().Where("inspection_id = ?", id).Delete(&Models.InspectionResult{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("inspection_id = ?", id).Delete(&Models.InspectionItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&inspection).Error
	})
}

// Restore un-soft-deletes an inspection and its cascaded rows. The workflow
// status is untouched.
func (s *InspectionService) Restore(id uint, actorID uint) (*Models.Inspection, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var inspection Models.Inspection
		if err := tx.Unscoped().First(&inspection, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("inspection %d: %w", id, ErrNotFound)
			}
			return err
		}
		if err := tx.Unscoped().Model(&Models.Inspection{}).Where("id = ?", id).
			Update("deleted_at", nil).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Model(&Models.InspectionItem{}).Where("inspection_id = ?", id).
			Update("deleted_at", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Model(&Models.InspectionResult{}).Where("inspection_id = ?", id).
			Update("deleted_at", nil).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Duplicate clones an inspection's item definitions (not its results) into a
// fresh scheduled inspection, dated tomorrow.
func (s *InspectionService) Duplicate(id uint, actorID uint) (*Models.Inspection, error) {
	var newID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		source, err := s.load(tx, id)
		if err != nil {
			return err
		}

		clone := Models.Inspection{
			EquipmentID:   source.EquipmentID,
			InspectorID:   source.InspectorID,
			Type:          source.Type,
			Status:        Models.StatusScheduled,
			OverallResult: Models.ResultPending,
			ScheduledDate: s.now().Add(24 * time.Hour),
			Notes:         source.Notes,
			CreatedBy:     actorID,
		}
		if err := tx.Create(&clone).Error; err != nil {
			return err
		}

		for _, item := range source.Items {
			copied := item
			copied.ID = 0
			copied.CreatedAt = time.Time{}
			copied.UpdatedAt = time.Time{}
			copied.InspectionID = clone.ID
			if err := tx.Create(&copied).Error; err != nil {
				return err
			}
		}
		newID = clone.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(newID)
}

// lockedFields returns the identifying fields a partial update tries to touch
// on a completed inspection.
func lockedFields(req Models.UpdateInspectionRequest) []string {
	var fields []string
	if req.EquipmentID != nil {
		fields = append(fields, "equipment_id")
	}
	if req.InspectorID != nil {
		fields = append(fields, "inspector_id")
	}
	if req.Type != nil {
		fields = append(fields, "type")
	}
	if req.ScheduledDate != nil {
		fields = append(fields, "scheduled_date")
	}
	return fields
}

// Update applies a partial mutation: status change first (with timestamp
// stamping), then scalar fields, then item and result upserts, then an
// unconditional overall-result recompute when anything affecting results
// changed.
func (s *InspectionService) Update(id uint, req Models.UpdateInspectionRequest, actorID uint) (*Models.Inspection, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		inspection, err := s.load(tx, id)
		if err != nil {
			return err
		}

		if inspection.Status == Models.StatusCompleted {
			if fields := lockedFields(req); len(fields) > 0 {
				return &ImmutableCompletedRecordError{Fields: fields}
			}
		}

		now := s.now()
		recompute := false

		// 1. Status transition, including the completed timestamp rule.
		if req.Status != nil && *req.Status != inspection.Status {
			target := *req.Status
			if !target.IsValid() {
				return newValidationError("status", "unknown status")
			}
			if !inspection.Status.CanTransitionTo(target) {
				return transitionError(inspection.Status, target)
			}
			switch target {
			case Models.StatusCompleted:
				if inspection.CompletedAt == nil {
					inspection.CompletedAt = &now
				}
				if inspection.StartedAt == nil {
					inspection.StartedAt = &now
				}
				inspection.CompletedBy = actorID
				recompute = true
			case Models.StatusInProgress:
				if inspection.StartedAt == nil {
					inspection.StartedAt = &now
				}
			case Models.StatusScheduled:
				// cancelled -> scheduled clears recorded results
				if err := s.resetToScheduled(tx, inspection); err != nil {
					return err
				}
			}
			inspection.Status = target
		}

		// 2. Scalar field updates.
		if req.EquipmentID != nil {
			inspection.EquipmentID = *req.EquipmentID
		}
		if req.InspectorID != nil {
			inspection.InspectorID = *req.InspectorID
		}
		if req.Type != nil {
			inspection.Type = *req.Type
		}
		if req.ScheduledDate != nil {
			scheduled, err := parseDate(*req.ScheduledDate)
			if err != nil {
				return err
			}
			inspection.ScheduledDate = scheduled
		}
		if req.Notes != nil {
			inspection.Notes = *req.Notes
		}
		if req.Weather != nil {
			inspection.Weather = *req.Weather
		}
		if req.Temperature != nil {
			inspection.Temperature = req.Temperature
		}
		if req.Humidity != nil {
			inspection.Humidity = req.Humidity
		}
		if req.OperatingHoursBefore != nil {
			inspection.OperatingHoursBefore = req.OperatingHoursBefore
		}
		if req.OperatingHoursAfter != nil {
			inspection.OperatingHoursAfter = req.OperatingHoursAfter
		}
		if req.FuelLevelBefore != nil {
			inspection.FuelLevelBefore = req.FuelLevelBefore
		}
		if req.FuelLevelAfter != nil {
			inspection.FuelLevelAfter = req.FuelLevelAfter
		}
		if len(req.Signature) > 0 {
			inspection.Signature = req.Signature
		}
		if inspection.OperatingHoursBefore != nil && inspection.OperatingHoursAfter != nil &&
			*inspection.OperatingHoursAfter < *inspection.OperatingHoursBefore {
			return newValidationError("operating_hours_after", "must be greater than or equal to operating_hours_before")
		}

		// 3. Item upserts.
		if len(req.Items) > 0 {
			if err := s.upsertItems(tx, inspection.ID, req.Items); err != nil {
				return err
			}
			recompute = true
		}

		// 4. Result upserts.
		if len(req.Results) > 0 {
			if err := s.upsertResults(tx, inspection.ID, req.Results, actorID, now); err != nil {
				return err
			}
			recompute = true
		}

		// 5. Recompute the derived verdict.
		if recompute {
			overall, err := s.calculateOverallResult(tx, inspection.ID)
			if err != nil {
				return err
			}
			inspection.OverallResult = overall
		}

		return tx.Save(inspection).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

func itemFromPayload(inspectionID uint, payload Models.InspectionItemPayload, defaultOrder int) Models.InspectionItem {
	item := Models.InspectionItem{
		InspectionID:      inspectionID,
		Name:              payload.Name,
		Description:       payload.Description,
		Category:          payload.Category,
		ItemType:          payload.ItemType,
		OrderSequence:     defaultOrder,
		MinValue:          payload.MinValue,
		MaxValue:          payload.MaxValue,
		Unit:              payload.Unit,
		ExpectedCondition: payload.ExpectedCondition,
	}
	if payload.Required != nil {
		item.Required = *payload.Required
	}
	if payload.OrderSequence != nil {
		item.OrderSequence = *payload.OrderSequence
	}
	if payload.SafetyCritical != nil {
		item.SafetyCritical = *payload.SafetyCritical
	}
	return item
}

// upsertItems updates payload entries carrying an id and creates the rest.
// Referencing an item owned by another inspection is rejected.
func (s *InspectionService) upsertItems(tx *gorm.DB, inspectionID uint, payloads []Models.InspectionItemPayload) error {
	var maxOrder int
	if err := tx.Model(&Models.InspectionItem{}).Where("inspection_id = ?", inspectionID).
		Select("COALESCE(MAX(order_sequence), 0)").Scan(&maxOrder).Error; err != nil {
		return err
	}

	for _, payload := range payloads {
		if err := validateItemBounds(payload.MinValue, payload.MaxValue); err != nil {
			return err
		}
		if payload.ID == 0 {
			maxOrder++
			item := itemFromPayload(inspectionID, payload, maxOrder)
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			continue
		}

		var item Models.InspectionItem
		if err := tx.First(&item, payload.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ForeignItemReferenceError{RecordID: inspectionID, ReferenceID: payload.ID, Kind: "item"}
			}
			return err
		}
		if item.InspectionID != inspectionID {
			return &ForeignItemReferenceError{RecordID: inspectionID, ReferenceID: payload.ID, Kind: "item"}
		}

		if payload.Name != "" {
			item.Name = payload.Name
		}
		if payload.Description != "" {
			item.Description = payload.Description
		}
		if payload.Category != "" {
			item.Category = payload.Category
		}
		if payload.ItemType != "" {
			item.ItemType = payload.ItemType
		}
		if payload.Required != nil {
			item.Required = *payload.Required
		}
		if payload.OrderSequence != nil {
			item.OrderSequence = *payload.OrderSequence
		}
		if payload.MinValue != nil {
			item.MinValue = payload.MinValue
		}
		if payload.MaxValue != nil {
			item.MaxValue = payload.MaxValue
		}
		if payload.Unit != "" {
			item.Unit = payload.Unit
		}
		if payload.ExpectedCondition != "" {
			item.ExpectedCondition = payload.ExpectedCondition
		}
		if payload.SafetyCritical != nil {
			item.SafetyCritical = *payload.SafetyCritical
		}
		if err := tx.Save(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

// upsertResults creates or updates result rows, enforcing that the referenced
// item belongs to the inspection. New rows get timestamp_checked stamped.
func (s *InspectionService) upsertResults(tx *gorm.DB, inspectionID uint, payloads []Models.InspectionResultPayload, actorID uint, now time.Time) error {
	for _, payload := range payloads {
		if payload.DeviationPercent != nil && (*payload.DeviationPercent < -100 || *payload.DeviationPercent > 100) {
			return newValidationError("deviation_percent", "must be between -100 and 100")
		}

		if payload.ID == 0 {
			var item Models.InspectionItem
			if err := tx.First(&item, payload.InspectionItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &ForeignItemReferenceError{RecordID: inspectionID, ReferenceID: payload.InspectionItemID, Kind: "item"}
				}
				return err
			}
			if item.InspectionID != inspectionID {
				return &ForeignItemReferenceError{RecordID: inspectionID, ReferenceID: payload.InspectionItemID, Kind: "item"}
			}

			result := Models.InspectionResult{
				InspectionID:     inspectionID,
				InspectionItemID: payload.InspectionItemID,
				ResultValue:      payload.ResultValue,
				Status:           payload.Status,
				Notes:            payload.Notes,
				MeasuredValue:    payload.MeasuredValue,
				PhotoReference:   payload.PhotoReference,
				Signature:        payload.Signature,
				WithinTolerance:  payload.WithinTolerance,
				DeviationPercent: payload.DeviationPercent,
				ActionRequired:   payload.ActionRequired,
				PriorityLevel:    payload.PriorityLevel,
				InspectorNotes:   payload.InspectorNotes,
				TimestampChecked: &now,
				CheckedBy:        actorID,
			}
			if result.Status == "" {
				result.Status = Models.ResultStatusPending
			}
			if result.ActionRequired == "" {
				result.ActionRequired = Models.ActionNone
			}
			if result.PriorityLevel == "" {
				result.PriorityLevel = Models.PriorityLow
			}
			if payload.RequiresAction != nil {
				result.RequiresAction = *payload.RequiresAction
			}
			if err := tx.Create(&result).Error; err != nil {
				return err
			}
			continue
		}

		var result Models.InspectionResult
		if err := tx.First(&result, payload.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ForeignItemReferenceError{RecordID: inspectionID, ReferenceID: payload.ID, Kind: "result"}
			}
			return err
		}
		if result.InspectionID != inspectionID {
			return &ForeignItemReferenceError{RecordID: inspectionID, ReferenceID: payload.ID, Kind: "result"}
		}

		if len(payload.ResultValue) > 0 {
			result.ResultValue = payload.ResultValue
		}
		if payload.Status != "" {
			result.Status = payload.Status
		}
		if payload.Notes != "" {
			result.Notes = payload.Notes
		}
		if payload.MeasuredValue != nil {
			result.MeasuredValue = payload.MeasuredValue
		}
		if payload.PhotoReference != "" {
			result.PhotoReference = payload.PhotoReference
		}
		if len(payload.Signature) > 0 {
			result.Signature = payload.Signature
		}
		if payload.WithinTolerance != nil {
			result.WithinTolerance = payload.WithinTolerance
		}
		if payload.DeviationPercent != nil {
			result.DeviationPercent = payload.DeviationPercent
		}
		if payload.RequiresAction != nil {
			result.RequiresAction = *payload.RequiresAction
		}
		if payload.ActionRequired != "" {
			result.ActionRequired = payload.ActionRequired
		}
		if payload.PriorityLevel != "" {
			result.PriorityLevel = payload.PriorityLevel
		}
		if payload.InspectorNotes != "" {
			result.InspectorNotes = payload.InspectorNotes
		}
		result.TimestampChecked = &now
		result.CheckedBy = actorID

		if err := tx.Save(&result).Error; err != nil {
			return err
		}
	}
	return nil
}

// validateCompletion checks that every required item has at least one
// non-pending result.
func (s *InspectionService) validateCompletion(tx *gorm.DB, inspectionID uint) error {
	var required int64
	if err := tx.Model(&Models.InspectionItem{}).
		Where("inspection_id = ? AND required = ?", inspectionID, true).
		Count(&required).Error; err != nil {
		return err
	}

	var completed int64
	if err := tx.Model(&Models.InspectionResult{}).
		Joins("JOIN inspection_items ON inspection_items.id = inspection_results.inspection_item_id AND inspection_items.deleted_at IS NULL").
		Where("inspection_results.inspection_id = ? AND inspection_items.required = ? AND inspection_results.status <> ?",
			inspectionID, true, Models.ResultStatusPending).
		Distinct("inspection_results.inspection_item_id").
		Count(&completed).Error; err != nil {
		return err
	}

	if completed != required {
		return &IncompleteRequiredItemsError{Required: required, Completed: completed}
	}
	return nil
}

// calculateOverallResult derives the verdict from the latest result per item.
// Precedence is fail > warning > pass; pending, not_applicable and
// requires_recheck rows are excluded, and an empty set yields pending.
func (s *InspectionService) calculateOverallResult(tx *gorm.DB, inspectionID uint) (Models.OverallResult, error) {
	var results []Models.InspectionResult
	if err := tx.Where("inspection_id = ?", inspectionID).
		Order("id ASC").Find(&results).Error; err != nil {
		return Models.ResultPending, err
	}

	latest := make(map[uint]Models.ResultStatus, len(results))
	for _, r := range results {
		latest[r.InspectionItemID] = r.Status
	}

	overall := Models.ResultPending
	for _, status := range latest {
		if !status.CountsTowardVerdict() {
			continue
		}
		switch status {
		case Models.ResultStatusFail:
			return Models.ResultFail, nil
		case Models.ResultStatusWarning:
			overall = Models.ResultWarning
		case Models.ResultStatusPass:
			if overall == Models.ResultPending {
				overall = Models.ResultPass
			}
		}
	}
	return overall, nil
}

func transitionError(current, attempted Models.InspectionStatus) *InvalidStateTransitionError {
	allowed := current.AllowedNext()
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		names = append(names, a.String())
	}
	return &InvalidStateTransitionError{
		Current:   current.String(),
		Attempted: attempted.String(),
		Allowed:   names,
	}
}
