package CronJobs

import (
	"fmt"
	"log"
	"time"

	"Atlas/Models"
	"Atlas/Notifications"
	"Atlas/Services"

	"github.com/robfig/cron/v3"
)

// InspectionScheduler generates recurring inspections from the template
// catalog and sweeps for overdue ones.
type InspectionScheduler struct {
	cronScheduler  *cron.Cron
	service        *Services.InspectionService
	runImmediately bool
	generateJobID  cron.EntryID
	sweepJobID     cron.EntryID
}

// NewInspectionScheduler creates a scheduler backed by the shared database.
func NewInspectionScheduler(runImmediately bool) *InspectionScheduler {
	return &InspectionScheduler{
		cronScheduler:  cron.New(cron.WithSeconds()),
		service:        Services.NewInspectionService(Models.DB),
		runImmediately: runImmediately,
	}
}

// Start registers the daily generation job (01:00) and the hourly overdue
// sweep, then starts the scheduler.
func (s *InspectionScheduler) Start() error {
	var err error
	s.generateJobID, err = s.cronScheduler.AddFunc("0 0 1 * * *", func() {
		log.Println("Running scheduled inspection generation")
		s.runGeneration()
	})
	if err != nil {
		return fmt.Errorf("error scheduling generation job: %w", err)
	}

	s.sweepJobID, err = s.cronScheduler.AddFunc("0 0 * * * *", func() {
		s.runOverdueSweep()
	})
	if err != nil {
		return fmt.Errorf("error scheduling overdue sweep: %w", err)
	}

	s.cronScheduler.Start()
	fmt.Println("Inspection scheduler started - generation daily at 1:00 AM, overdue sweep hourly")

	if s.runImmediately {
		fmt.Println("Running initial inspection generation")
		s.runGeneration()
	}

	return nil
}

// Stop terminates the scheduler.
func (s *InspectionScheduler) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
		log.Println("Inspection scheduler stopped")
	}
}

// dueFrequencies returns the template frequencies that come due on the given
// day. Daily is always due; the longer cycles anchor on calendar boundaries.
func dueFrequencies(day time.Time) []Models.TemplateFrequency {
	due := []Models.TemplateFrequency{Models.FrequencyDaily}
	if day.Weekday() == time.Monday {
		due = append(due, Models.FrequencyWeekly)
	}
	if day.Day() == 1 {
		due = append(due, Models.FrequencyMonthly)
		switch day.Month() {
		case time.January:
			due = append(due, Models.FrequencyQuarterly, Models.FrequencySemiAnnual, Models.FrequencyAnnual)
		case time.July:
			due = append(due, Models.FrequencyQuarterly, Models.FrequencySemiAnnual)
		case time.April, time.October:
			due = append(due, Models.FrequencyQuarterly)
		}
	}
	return due
}

// inspectionTypeFor maps a template frequency to the inspection type recorded
// on the generated inspection.
func inspectionTypeFor(frequency Models.TemplateFrequency) Models.InspectionType {
	switch frequency {
	case Models.FrequencyPreOperation:
		return Models.TypePreOperation
	case Models.FrequencyPostOperation:
		return Models.TypePostOperation
	case Models.FrequencyAnnual:
		return Models.TypeAnnual
	default:
		return Models.TypeRoutine
	}
}

// runGeneration creates today's scheduled inspections for every active unit
// whose equipment type has due template items. Existing inspections for the
// same unit, type and day are not duplicated.
func (s *InspectionScheduler) runGeneration() {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	frequencies := dueFrequencies(today)

	var units []Models.Equipment
	if err := Models.DB.Where("status = ?", "active").Find(&units).Error; err != nil {
		log.Printf("Inspection generation failed to list equipment: %v", err)
		return
	}

	generated := 0
	for _, unit := range units {
		for _, frequency := range frequencies {
			var templateCount int64
			Models.DB.Model(&Models.ChecklistTemplateItem{}).
				Where("equipment_type_id = ? AND frequency = ? AND active = ?", unit.EquipmentTypeID, frequency, true).
				Count(&templateCount)
			if templateCount == 0 {
				continue
			}

			inspectionType := inspectionTypeFor(frequency)
			var existing int64
			Models.DB.Model(&Models.Inspection{}).
				Where("equipment_id = ? AND type = ? AND scheduled_date >= ? AND scheduled_date < ?",
					unit.ID, inspectionType, today, today.Add(24*time.Hour)).
				Count(&existing)
			if existing > 0 {
				continue
			}

			if _, err := s.service.GenerateFromTemplate(unit.ID, 0, inspectionType, today, frequency, 0); err != nil {
				log.Printf("Failed to generate %s inspection for equipment %d: %v", frequency, unit.ID, err)
				continue
			}
			generated++
		}
	}
	log.Printf("Inspection generation complete: %d inspections created", generated)
}

// runOverdueSweep reports the current overdue backlog. Overdue is derived
// from the schedule, so the sweep pushes one summary; nothing is written.
func (s *InspectionScheduler) runOverdueSweep() {
	var overdue int64
	err := Models.DB.Model(&Models.Inspection{}).
		Where("scheduled_date < ? AND status NOT IN ?", time.Now(),
			[]Models.InspectionStatus{Models.StatusCompleted, Models.StatusCancelled}).
		Count(&overdue).Error
	if err != nil {
		log.Printf("Overdue sweep failed: %v", err)
		return
	}
	if overdue > 0 {
		log.Printf("Overdue sweep: %d inspections past their scheduled date", overdue)
		Notifications.NotifyOverdueInspections(overdue)
	}
}
