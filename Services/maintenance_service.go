package Services

import (
	"errors"
	"fmt"
	"time"

	"Atlas/Models"

	"gorm.io/gorm"
)

// MaintenanceService runs the maintenance-record workflow: the same state
// machine shape as inspections, a required-task completion gate, and a cost
// roll-up recomputed after every task/part mutation.
type MaintenanceService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{DB: db, Now: time.Now}
}

func (s *MaintenanceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MaintenanceService) load(tx *gorm.DB, id uint) (*Models.MaintenanceRecord, error) {
	var record Models.MaintenanceRecord
	err := tx.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_sequence ASC")
	}).Preload("Parts").First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("maintenance record %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &record, nil
}

func (s *MaintenanceService) Get(id uint) (*Models.MaintenanceRecord, error) {
	return s.load(s.DB, id)
}

// Create registers a scheduled maintenance record with its tasks and parts.
func (s *MaintenanceService) Create(req Models.CreateMaintenanceRequest, actorID uint) (*Models.MaintenanceRecord, error) {
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

	record := &Models.MaintenanceRecord{
		EquipmentID:   req.EquipmentID,
		TechnicianID:  req.TechnicianID,
		ServiceType:   req.ServiceType,
		Status:        Models.MaintenanceScheduled,
		Priority:      req.Priority,
		Description:   req.Description,
		ScheduledDate: scheduledDate,
		HourMeter:     req.HourMeter,
		CreatedBy:     actorID,
	}
	if record.Priority == "" {
		record.Priority = Models.PriorityMedium
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		for i, payload := range req.Tasks {
			task := taskFromPayload(record.ID, payload, i+1)
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
		}
		for _, payload := range req.Parts {
			part := partFromPayload(record.ID, payload)
			if err := tx.Create(&part).Error; err != nil {
				return err
			}
		}
		if err := s.recomputeCosts(tx, record); err != nil {
			return err
		}
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(record.ID)
}

// Start moves a scheduled record into in_progress.
func (s *MaintenanceService) Start(id uint, actorID uint) (*Models.MaintenanceRecord, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if !record.Status.CanTransitionTo(Models.MaintenanceInProgress) {
			return maintenanceTransitionError(record.Status, Models.MaintenanceInProgress)
		}
		now := s.now()
		record.Status = Models.MaintenanceInProgress
		if record.StartedAt == nil {
			record.StartedAt = &now
		}
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Complete closes the record after verifying every required task is done.
func (s *MaintenanceService) Complete(id uint, req Models.CompleteMaintenanceRequest, actorID uint) (*Models.MaintenanceRecord, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if record.Status != Models.MaintenanceScheduled && record.Status != Models.MaintenanceInProgress {
			return maintenanceTransitionError(record.Status, Models.MaintenanceCompleted)
		}

		var open int64
		if err := tx.Model(&Models.MaintenanceTask{}).
			Where("maintenance_record_id = ? AND required = ? AND completed = ?", id, true, false).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			var required int64
			tx.Model(&Models.MaintenanceTask{}).
				Where("maintenance_record_id = ? AND required = ?", id, true).
				Count(&required)
			return &IncompleteRequiredItemsError{Required: required, Completed: required - open}
		}

		now := s.now()
		record.Status = Models.MaintenanceCompleted
		if record.CompletedAt == nil {
			record.CompletedAt = &now
		}
		if record.StartedAt == nil {
			record.StartedAt = &now
		}
		if req.Notes != "" {
			record.Notes = req.Notes
		}
		if req.LaborCost != nil {
			record.LaborCost = *req.LaborCost
		}
		if req.HourMeter != nil {
			record.HourMeter = req.HourMeter
		}
		if req.NextServiceHours != nil {
			record.NextServiceHours = req.NextServiceHours
		}
		record.CompletedBy = actorID

		if err := s.recomputeCosts(tx, record); err != nil {
			return err
		}
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Cancel marks the record cancelled; completed records are terminal.
func (s *MaintenanceService) Cancel(id uint, actorID uint) (*Models.MaintenanceRecord, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if record.Status.IsTerminal() {
			return &TerminalStateViolationError{Operation: "cancel", Status: string(record.Status)}
		}
		record.Status = Models.MaintenanceCancelled
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Update applies a partial mutation mirroring the inspection rules: status
// transition first, scalars, then task/part upserts, then the cost roll-up.
func (s *MaintenanceService) Update(id uint, req Models.UpdateMaintenanceRequest, actorID uint) (*Models.MaintenanceRecord, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.load(tx, id)
		if err != nil {
			return err
		}

		if record.Status == Models.MaintenanceCompleted {
			var fields []string
			if req.EquipmentID != nil {
				fields = append(fields, "equipment_id")
			}
			if req.TechnicianID != nil {
				fields = append(fields, "technician_id")
			}
			if req.ServiceType != nil {
				fields = append(fields, "service_type")
			}
			if req.ScheduledDate != nil {
				fields = append(fields, "scheduled_date")
			}
			if len(fields) > 0 {
				return &ImmutableCompletedRecordError{Fields: fields}
			}
		}

		now := s.now()
		if req.Status != nil && *req.Status != record.Status {
			target := *req.Status
			if !record.Status.CanTransitionTo(target) {
				return maintenanceTransitionError(record.Status, target)
			}
			switch target {
			case Models.MaintenanceCompleted:
				if record.CompletedAt == nil {
					record.CompletedAt = &now
				}
				if record.StartedAt == nil {
					record.StartedAt = &now
				}
				record.CompletedBy = actorID
			case Models.MaintenanceInProgress:
				if record.StartedAt == nil {
					record.StartedAt = &now
				}
			case Models.MaintenanceScheduled:
				record.StartedAt = nil
				record.CompletedAt = nil
				record.CompletedBy = 0
			}
			record.Status = target
		}

		if req.EquipmentID != nil {
			record.EquipmentID = *req.EquipmentID
		}
		if req.TechnicianID != nil {
			record.TechnicianID = *req.TechnicianID
		}
		if req.ServiceType != nil {
			record.ServiceType = *req.ServiceType
		}
		if req.Priority != nil {
			record.Priority = *req.Priority
		}
		if req.Description != nil {
			record.Description = *req.Description
		}
		if req.ScheduledDate != nil {
			scheduled, err := parseDate(*req.ScheduledDate)
			if err != nil {
				return err
			}
			record.ScheduledDate = scheduled
		}
		if req.Notes != nil {
			record.Notes = *req.Notes
		}
		if req.HourMeter != nil {
			record.HourMeter = req.HourMeter
		}
		if req.NextServiceHours != nil {
			record.NextServiceHours = req.NextServiceHours
		}
		if req.LaborCost != nil {
			record.LaborCost = *req.LaborCost
		}

		if err := s.upsertTasks(tx, record.ID, req.Tasks, now); err != nil {
			return err
		}
		if err := s.upsertParts(tx, record.ID, req.Parts); err != nil {
			return err
		}

		if err := s.recomputeCosts(tx, record); err != nil {
			return err
		}
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// Delete soft-deletes the record with its tasks and parts.
func (s *MaintenanceService) Delete(id uint, actorID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		record, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Where("maintenance_record_id = ?", id).Delete(&Models.MaintenanceTask{}).Error; err != nil {
			return err
		}
		if err := tx.Where("maintenance_record_id = ?", id).Delete(&Models.MaintenancePart{}).Error; err != nil {
			return err
		}
		return tx.Delete(record).Error
	})
}

// List returns a page of maintenance records with the total matching count.
func (s *MaintenanceService) List(equipmentID uint, status Models.MaintenanceStatus, serviceType Models.ServiceType, page, limit int) ([]Models.MaintenanceRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := s.DB.Model(&Models.MaintenanceRecord{})
	if equipmentID != 0 {
		query = query.Where("equipment_id = ?", equipmentID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if serviceType != "" {
		query = query.Where("service_type = ?", serviceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []Models.MaintenanceRecord
	err := query.Preload("Tasks", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_sequence ASC")
	}).Preload("Parts").
		Order("scheduled_date DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func taskFromPayload(recordID uint, payload Models.MaintenanceTaskPayload, defaultOrder int) Models.MaintenanceTask {
	task := Models.MaintenanceTask{
		MaintenanceRecordID: recordID,
		Name:                payload.Name,
		Description:         payload.Description,
		OrderSequence:       defaultOrder,
	}
	if payload.Required != nil {
		task.Required = *payload.Required
	}
	if payload.OrderSequence != nil {
		task.OrderSequence = *payload.OrderSequence
	}
	return task
}

func partFromPayload(recordID uint, payload Models.MaintenancePartPayload) Models.MaintenancePart {
	part := Models.MaintenancePart{
		MaintenanceRecordID: recordID,
		Name:                payload.Name,
		PartNumber:          payload.PartNumber,
		Quantity:            1,
	}
	if payload.Quantity != nil {
		part.Quantity = *payload.Quantity
	}
	if payload.UnitCost != nil {
		part.UnitCost = *payload.UnitCost
	}
	return part
}

func (s *MaintenanceService) upsertTasks(tx *gorm.DB, recordID uint, payloads []Models.MaintenanceTaskPayload, now time.Time) error {
	var maxOrder int
	if err := tx.Model(&Models.MaintenanceTask{}).Where("maintenance_record_id = ?", recordID).
		Select("COALESCE(MAX(order_sequence), 0)").Scan(&maxOrder).Error; err != nil {
		return err
	}

	for _, payload := range payloads {
		if payload.ID == 0 {
			maxOrder++
			task := taskFromPayload(recordID, payload, maxOrder)
			if payload.Completed != nil && *payload.Completed {
				task.Completed = true
				task.CompletedAt = &now
			}
			if err := tx.Create(&task).Error; err != nil {
				return err
			}
			continue
		}

		var task Models.MaintenanceTask
		if err := tx.First(&task, payload.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ForeignItemReferenceError{RecordID: recordID, ReferenceID: payload.ID, Kind: "task"}
			}
			return err
		}
		if task.MaintenanceRecordID != recordID {
			return &ForeignItemReferenceError{RecordID: recordID, ReferenceID: payload.ID, Kind: "task"}
		}

		if payload.Name != "" {
			task.Name = payload.Name
		}
		if payload.Description != "" {
			task.Description = payload.Description
		}
		if payload.Required != nil {
			task.Required = *payload.Required
		}
		if payload.OrderSequence != nil {
			task.OrderSequence = *payload.OrderSequence
		}
		if payload.Completed != nil && *payload.Completed != task.Completed {
			task.Completed = *payload.Completed
			if task.Completed {
				task.CompletedAt = &now
			} else {
				task.CompletedAt = nil
			}
		}
		if err := tx.Save(&task).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *MaintenanceService) upsertParts(tx *gorm.DB, recordID uint, payloads []Models.MaintenancePartPayload) error {
	for _, payload := range payloads {
		if payload.ID == 0 {
			part := partFromPayload(recordID, payload)
			if err := tx.Create(&part).Error; err != nil {
				return err
			}
			continue
		}

		var part Models.MaintenancePart
		if err := tx.First(&part, payload.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ForeignItemReferenceError{RecordID: recordID, ReferenceID: payload.ID, Kind: "part"}
			}
			return err
		}
		if part.MaintenanceRecordID != recordID {
			return &ForeignItemReferenceError{RecordID: recordID, ReferenceID: payload.ID, Kind: "part"}
		}

		if payload.Name != "" {
			part.Name = payload.Name
		}
		if payload.PartNumber != "" {
			part.PartNumber = payload.PartNumber
		}
		if payload.Quantity != nil {
			part.Quantity = *payload.Quantity
		}
		if payload.UnitCost != nil {
			part.UnitCost = *payload.UnitCost
		}
		if err := tx.Save(&part).Error; err != nil {
			return err
		}
	}
	return nil
}

// recomputeCosts rolls parts cost into the record totals.
func (s *MaintenanceService) recomputeCosts(tx *gorm.DB, record *Models.MaintenanceRecord) error {
	var partsCost float64
	err := tx.Model(&Models.MaintenancePart{}).
		Where("maintenance_record_id = ?", record.ID).
		Select("COALESCE(SUM(quantity * unit_cost), 0)").
		Scan(&partsCost).Error
	if err != nil {
		return err
	}
	record.PartsCost = partsCost
	record.TotalCost = record.LaborCost + partsCost
	return nil
}

func maintenanceTransitionError(current, attempted Models.MaintenanceStatus) *InvalidStateTransitionError {
	allowed := current.AllowedNext()
	names := make([]string, 0, len(allowed))
	for _, a := range allowed {
		names = append(names, string(a))
	}
	return &InvalidStateTransitionError{
		Current:   string(current),
		Attempted: string(attempted),
		Allowed:   names,
	}
}
