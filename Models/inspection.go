package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InspectionStatus is the workflow state of an inspection.
type InspectionStatus string

const (
	StatusScheduled  InspectionStatus = "scheduled"
	StatusInProgress InspectionStatus = "in_progress"
	StatusCompleted  InspectionStatus = "completed"
	StatusCancelled  InspectionStatus = "cancelled"
	// StatusOverdue is derived from the scheduled date, never stored.
	StatusOverdue InspectionStatus = "overdue"
)

func (s InspectionStatus) String() string {
	return string(s)
}

func (s InspectionStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further workflow transitions are possible.
func (s InspectionStatus) IsTerminal() bool {
	return s == StatusCompleted
}

// AllowedNext returns the statuses reachable from s by an explicit operation.
func (s InspectionStatus) AllowedNext() []InspectionStatus {
	switch s {
	case StatusScheduled, StatusOverdue:
		return []InspectionStatus{StatusInProgress, StatusCancelled, StatusCompleted}
	case StatusInProgress:
		return []InspectionStatus{StatusCompleted, StatusCancelled}
	case StatusCancelled:
		return []InspectionStatus{StatusScheduled}
	}
	return nil
}

// CanTransitionTo checks the transition table for s -> target.
func (s InspectionStatus) CanTransitionTo(target InspectionStatus) bool {
	for _, next := range s.AllowedNext() {
		if next == target {
			return true
		}
	}
	return false
}

// OverallResult is the derived verdict summarizing all item results.
type OverallResult string

const (
	ResultPending OverallResult = "pending"
	ResultPass    OverallResult = "pass"
	ResultWarning OverallResult = "warning"
	ResultFail    OverallResult = "fail"
)

// InspectionType classifies why the inspection is performed.
type InspectionType string

const (
	TypePreOperation  InspectionType = "pre_operation"
	TypePostOperation InspectionType = "post_operation"
	TypeRoutine       InspectionType = "routine"
	TypeSafety        InspectionType = "safety"
	TypeAnnual        InspectionType = "annual"
	TypeDamage        InspectionType = "damage_assessment"
)

// ItemCategory groups checklist items by equipment subsystem.
type ItemCategory string

const (
	CategoryEngine        ItemCategory = "engine"
	CategoryHydraulic     ItemCategory = "hydraulic"
	CategoryElectrical    ItemCategory = "electrical"
	CategoryStructural    ItemCategory = "structural"
	CategorySafety        ItemCategory = "safety"
	CategoryOperational   ItemCategory = "operational"
	CategoryMaintenance   ItemCategory = "maintenance"
	CategoryFluids        ItemCategory = "fluids"
	CategoryAttachments   ItemCategory = "attachments"
	CategoryDocumentation ItemCategory = "documentation"
)

// ItemType describes how a checklist item is answered.
type ItemType string

const (
	ItemVisual      ItemType = "visual"
	ItemMeasurement ItemType = "measurement"
	ItemFunctional  ItemType = "functional"
	ItemChecklist   ItemType = "checklist"
	ItemPhoto       ItemType = "photo"
	ItemSignature   ItemType = "signature"
	ItemText        ItemType = "text"
	ItemNumeric     ItemType = "numeric"
	ItemBoolean     ItemType = "boolean"
)

// ResultStatus is the recorded outcome for one checklist item.
type ResultStatus string

const (
	ResultStatusPass            ResultStatus = "pass"
	ResultStatusFail            ResultStatus = "fail"
	ResultStatusWarning         ResultStatus = "warning"
	ResultStatusNotApplicable   ResultStatus = "not_applicable"
	ResultStatusPending         ResultStatus = "pending"
	ResultStatusRequiresRecheck ResultStatus = "requires_recheck"
)

// CountsTowardVerdict reports whether a result participates in the
// overall-result aggregation.
func (s ResultStatus) CountsTowardVerdict() bool {
	switch s {
	case ResultStatusPass, ResultStatusFail, ResultStatusWarning:
		return true
	}
	return false
}

// ActionRequired is the follow-up recorded against a failed or degraded item.
type ActionRequired string

const (
	ActionNone        ActionRequired = "none"
	ActionMonitor     ActionRequired = "monitor"
	ActionRepair      ActionRequired = "repair"
	ActionReplace     ActionRequired = "replace"
	ActionAdjust      ActionRequired = "adjust"
	ActionClean       ActionRequired = "clean"
	ActionLubricate   ActionRequired = "lubricate"
	ActionTighten     ActionRequired = "tighten"
	ActionInvestigate ActionRequired = "investigate"
	ActionShutdown    ActionRequired = "shutdown"
)

// PriorityLevel ranks follow-up urgency.
type PriorityLevel string

const (
	PriorityLow      PriorityLevel = "low"
	PriorityMedium   PriorityLevel = "medium"
	PriorityHigh     PriorityLevel = "high"
	PriorityCritical PriorityLevel = "critical"
)

// Inspection is one scheduled/performed inspection event for a piece of
// equipment. It owns its items and results; deleting (soft) an inspection
// cascades to both.
type Inspection struct {
	gorm.Model
	EquipmentID   uint             `json:"equipment_id" gorm:"not null;index"`
	InspectorID   uint             `json:"inspector_id" gorm:"not null;index"`
	Type          InspectionType   `json:"type" gorm:"size:50;not null;index"`
	Status        InspectionStatus `json:"status" gorm:"size:20;not null;default:scheduled;index"`
	OverallResult OverallResult    `json:"overall_result" gorm:"size:20;not null;default:pending;index"`

	ScheduledDate time.Time  `json:"scheduled_date" gorm:"not null;index"`
	StartedAt     *time.Time `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`

	Notes     string         `json:"notes" gorm:"type:text"`
	Signature datatypes.JSON `json:"signature,omitempty"`

	// Environmental readings at time of inspection
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Weather     string   `json:"weather" gorm:"size:100"`

	// Meter readings bracketing the inspection
	OperatingHoursBefore *float64 `json:"operating_hours_before"`
	OperatingHoursAfter  *float64 `json:"operating_hours_after"`
	FuelLevelBefore      *float64 `json:"fuel_level_before"`
	FuelLevelAfter       *float64 `json:"fuel_level_after"`

	CreatedBy   uint `json:"created_by"`
	CompletedBy uint `json:"completed_by"`

	// Relationships
	Equipment Equipment          `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
	Items     []InspectionItem   `json:"items,omitempty" gorm:"foreignKey:InspectionID;constraint:OnDelete:CASCADE"`
	Results   []InspectionResult `json:"results,omitempty" gorm:"foreignKey:InspectionID;constraint:OnDelete:CASCADE"`
}

// EffectiveStatus maps a scheduled inspection whose date has passed without a
// start to the derived overdue state. Stored status is never "overdue".
func (i *Inspection) EffectiveStatus(now time.Time) InspectionStatus {
	if i.Status == StatusScheduled && i.StartedAt == nil && i.ScheduledDate.Before(now) {
		return StatusOverdue
	}
	return i.Status
}

// InspectionItem is one checklist entry, either custom or instantiated from a
// template item. Items are only ever removed via the parent cascade.
type InspectionItem struct {
	gorm.Model
	InspectionID   uint  `json:"inspection_id" gorm:"not null;index"`
	TemplateItemID *uint `json:"template_item_id" gorm:"index"`

	Name              string       `json:"name" gorm:"size:255;not null"`
	Description       string       `json:"description" gorm:"type:text"`
	Category          ItemCategory `json:"category" gorm:"size:50;not null"`
	ItemType          ItemType     `json:"item_type" gorm:"size:50;not null"`
	Required          bool         `json:"required" gorm:"not null;default:false"`
	OrderSequence     int          `json:"order_sequence" gorm:"not null;default:0"`
	MinValue          *float64     `json:"min_value"`
	MaxValue          *float64     `json:"max_value"`
	Unit              string       `json:"unit" gorm:"size:50"`
	ExpectedCondition string       `json:"expected_condition" gorm:"size:500"`
	SafetyCritical    bool         `json:"safety_critical" gorm:"not null;default:false"`
}

// InspectionResult records the outcome for one item within one inspection.
// Multiple historical rows per item are allowed; aggregation considers the
// latest row per item.
type InspectionResult struct {
	gorm.Model
	InspectionID     uint `json:"inspection_id" gorm:"not null;index"`
	InspectionItemID uint `json:"inspection_item_id" gorm:"not null;index"`

	ResultValue      datatypes.JSON `json:"result_value,omitempty"`
	Status           ResultStatus   `json:"status" gorm:"size:30;not null;default:pending;index"`
	Notes            string         `json:"notes" gorm:"type:text"`
	MeasuredValue    *float64       `json:"measured_value"`
	PhotoReference   string         `json:"photo_reference" gorm:"size:500"`
	Signature        datatypes.JSON `json:"signature,omitempty"`
	WithinTolerance  *bool          `json:"within_tolerance"`
	DeviationPercent *float64       `json:"deviation_percent"`
	RequiresAction   bool           `json:"requires_action" gorm:"not null;default:false;index"`
	ActionRequired   ActionRequired `json:"action_required" gorm:"size:30;default:none"`
	PriorityLevel    PriorityLevel  `json:"priority_level" gorm:"size:20;default:low"`
	InspectorNotes   string         `json:"inspector_notes" gorm:"type:text"`
	TimestampChecked *time.Time     `json:"timestamp_checked"`
	CheckedBy        uint           `json:"checked_by"`
}

// CreateInspectionRequest is the payload for creating an inspection. Items may
// be supplied explicitly, expanded from the checklist template catalog, or both.
type CreateInspectionRequest struct {
	EquipmentID   uint                    `json:"equipment_id" validate:"required"`
	InspectorID   uint                    `json:"inspector_id" validate:"required"`
	Type          InspectionType          `json:"type" validate:"required"`
	ScheduledDate string                  `json:"scheduled_date" validate:"required"`
	Notes         string                  `json:"notes"`
	UseTemplate   bool                    `json:"use_template"`
	Frequency     TemplateFrequency       `json:"frequency"`
	Items         []InspectionItemPayload `json:"inspection_items"`
}

// UpdateInspectionRequest is a partial update. Pointer fields distinguish
// "omitted" (nil) from "explicitly set" (non-nil, possibly zero).
type UpdateInspectionRequest struct {
	EquipmentID   *uint             `json:"equipment_id"`
	InspectorID   *uint             `json:"inspector_id"`
	Type          *InspectionType   `json:"type"`
	Status        *InspectionStatus `json:"status"`
	ScheduledDate *string           `json:"scheduled_date"`
	Notes         *string           `json:"notes"`
	Weather       *string           `json:"weather"`
	Temperature   *float64          `json:"temperature"`
	Humidity      *float64          `json:"humidity"`

	OperatingHoursBefore *float64 `json:"operating_hours_before"`
	OperatingHoursAfter  *float64 `json:"operating_hours_after"`
	FuelLevelBefore      *float64 `json:"fuel_level_before"`
	FuelLevelAfter       *float64 `json:"fuel_level_after"`

	Signature datatypes.JSON `json:"signature,omitempty"`

	Items   []InspectionItemPayload   `json:"inspection_items"`
	Results []InspectionResultPayload `json:"inspection_results"`
}

// InspectionItemPayload upserts a checklist item. A zero ID creates a new item
// under the inspection; a non-zero ID updates an existing one.
type InspectionItemPayload struct {
	ID                uint         `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Category          ItemCategory `json:"category"`
	ItemType          ItemType     `json:"item_type"`
	Required          *bool        `json:"required"`
	OrderSequence     *int         `json:"order_sequence"`
	MinValue          *float64     `json:"min_value"`
	MaxValue          *float64     `json:"max_value"`
	Unit              string       `json:"unit"`
	ExpectedCondition string       `json:"expected_condition"`
	SafetyCritical    *bool        `json:"safety_critical"`
}

// InspectionResultPayload upserts a result row for an item of the inspection.
type InspectionResultPayload struct {
	ID               uint           `json:"id"`
	InspectionItemID uint           `json:"inspection_item_id"`
	ResultValue      datatypes.JSON `json:"result_value,omitempty"`
	Status           ResultStatus   `json:"status"`
	Notes            string         `json:"notes"`
	MeasuredValue    *float64       `json:"measured_value"`
	PhotoReference   string         `json:"photo_reference"`
	Signature        datatypes.JSON `json:"signature,omitempty"`
	WithinTolerance  *bool          `json:"within_tolerance"`
	DeviationPercent *float64       `json:"deviation_percent" validate:"omitempty,gte=-100,lte=100"`
	RequiresAction   *bool          `json:"requires_action"`
	ActionRequired   ActionRequired `json:"action_required"`
	PriorityLevel    PriorityLevel  `json:"priority_level"`
	InspectorNotes   string         `json:"inspector_notes"`
}

// CompleteInspectionRequest carries the optional closing fields merged into
// the inspection when it is completed.
type CompleteInspectionRequest struct {
	Notes               string         `json:"notes"`
	Signature           datatypes.JSON `json:"signature,omitempty"`
	OperatingHoursAfter *float64       `json:"operating_hours_after"`
	FuelLevelAfter      *float64       `json:"fuel_level_after"`
}
