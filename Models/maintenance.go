package Models

import (
	"time"

	"gorm.io/gorm"
)

// MaintenanceStatus mirrors the inspection workflow states.
type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

func (s MaintenanceStatus) IsTerminal() bool {
	return s == MaintenanceCompleted
}

// AllowedNext returns the statuses reachable from s by an explicit operation.
func (s MaintenanceStatus) AllowedNext() []MaintenanceStatus {
	switch s {
	case MaintenanceScheduled:
		return []MaintenanceStatus{MaintenanceInProgress, MaintenanceCancelled, MaintenanceCompleted}
	case MaintenanceInProgress:
		return []MaintenanceStatus{MaintenanceCompleted, MaintenanceCancelled}
	case MaintenanceCancelled:
		return []MaintenanceStatus{MaintenanceScheduled}
	}
	return nil
}

func (s MaintenanceStatus) CanTransitionTo(target MaintenanceStatus) bool {
	for _, next := range s.AllowedNext() {
		if next == target {
			return true
		}
	}
	return false
}

// ServiceType classifies the maintenance work performed.
type ServiceType string

const (
	ServiceOilChange     ServiceType = "oil_change"
	ServiceFilterService ServiceType = "filter_service"
	ServiceHydraulic     ServiceType = "hydraulic_service"
	ServiceUndercarriage ServiceType = "undercarriage"
	ServiceElectrical    ServiceType = "electrical"
	ServicePreventive    ServiceType = "preventive"
	ServiceRepair        ServiceType = "general_repair"
)

// MaintenanceRecord is one scheduled/performed maintenance event. It owns its
// tasks and parts (cascade on delete/restore) and rolls their costs up.
type MaintenanceRecord struct {
	gorm.Model
	EquipmentID  uint              `json:"equipment_id" gorm:"not null;index"`
	TechnicianID uint              `json:"technician_id" gorm:"not null;index"`
	ServiceType  ServiceType       `json:"service_type" gorm:"size:50;not null;index"`
	Status       MaintenanceStatus `json:"status" gorm:"size:20;not null;default:scheduled;index"`
	Priority     PriorityLevel     `json:"priority" gorm:"size:20;default:medium"`

	Description   string     `json:"description" gorm:"type:text"`
	ScheduledDate time.Time  `json:"scheduled_date" gorm:"not null;index"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`

	HourMeter        *float64 `json:"hour_meter"`
	NextServiceHours *float64 `json:"next_service_hours"`

	LaborCost float64 `json:"labor_cost"`
	PartsCost float64 `json:"parts_cost"`
	TotalCost float64 `json:"total_cost"`

	Notes       string `json:"notes" gorm:"type:text"`
	CreatedBy   uint   `json:"created_by"`
	CompletedBy uint   `json:"completed_by"`

	Equipment Equipment         `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
	Tasks     []MaintenanceTask `json:"tasks,omitempty" gorm:"foreignKey:MaintenanceRecordID;constraint:OnDelete:CASCADE"`
	Parts     []MaintenancePart `json:"parts,omitempty" gorm:"foreignKey:MaintenanceRecordID;constraint:OnDelete:CASCADE"`
}

// MaintenanceTask is one work step belonging to a maintenance record.
type MaintenanceTask struct {
	gorm.Model
	MaintenanceRecordID uint       `json:"maintenance_record_id" gorm:"not null;index"`
	Name                string     `json:"name" gorm:"size:255;not null"`
	Description         string     `json:"description" gorm:"type:text"`
	Required            bool       `json:"required" gorm:"not null;default:false"`
	Completed           bool       `json:"completed" gorm:"not null;default:false"`
	CompletedAt         *time.Time `json:"completed_at"`
	OrderSequence       int        `json:"order_sequence" gorm:"not null;default:0"`
}

// MaintenancePart is one consumed part line on a maintenance record.
type MaintenancePart struct {
	gorm.Model
	MaintenanceRecordID uint    `json:"maintenance_record_id" gorm:"not null;index"`
	Name                string  `json:"name" gorm:"size:255;not null"`
	PartNumber          string  `json:"part_number" gorm:"size:100"`
	Quantity            int     `json:"quantity" gorm:"not null;default:1"`
	UnitCost            float64 `json:"unit_cost"`
}

type CreateMaintenanceRequest struct {
	EquipmentID   uint                     `json:"equipment_id" validate:"required"`
	TechnicianID  uint                     `json:"technician_id" validate:"required"`
	ServiceType   ServiceType              `json:"service_type" validate:"required"`
	Priority      PriorityLevel            `json:"priority"`
	Description   string                   `json:"description"`
	ScheduledDate string                   `json:"scheduled_date" validate:"required"`
	HourMeter     *float64                 `json:"hour_meter"`
	Tasks         []MaintenanceTaskPayload `json:"tasks"`
	Parts         []MaintenancePartPayload `json:"parts"`
}

// UpdateMaintenanceRequest is a partial update; nil means "field omitted".
type UpdateMaintenanceRequest struct {
	EquipmentID      *uint              `json:"equipment_id"`
	TechnicianID     *uint              `json:"technician_id"`
	ServiceType      *ServiceType       `json:"service_type"`
	Status           *MaintenanceStatus `json:"status"`
	Priority         *PriorityLevel     `json:"priority"`
	Description      *string            `json:"description"`
	ScheduledDate    *string            `json:"scheduled_date"`
	Notes            *string            `json:"notes"`
	HourMeter        *float64           `json:"hour_meter"`
	NextServiceHours *float64           `json:"next_service_hours"`
	LaborCost        *float64           `json:"labor_cost"`

	Tasks []MaintenanceTaskPayload `json:"tasks"`
	Parts []MaintenancePartPayload `json:"parts"`
}

type MaintenanceTaskPayload struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Required      *bool  `json:"required"`
	Completed     *bool  `json:"completed"`
	OrderSequence *int   `json:"order_sequence"`
}

type MaintenancePartPayload struct {
	ID         uint     `json:"id"`
	Name       string   `json:"name"`
	PartNumber string   `json:"part_number"`
	Quantity   *int     `json:"quantity"`
	UnitCost   *float64 `json:"unit_cost"`
}

type CompleteMaintenanceRequest struct {
	Notes            string   `json:"notes"`
	LaborCost        *float64 `json:"labor_cost"`
	HourMeter        *float64 `json:"hour_meter"`
	NextServiceHours *float64 `json:"next_service_hours"`
}
