package Models

import (
	"gorm.io/gorm"
)

// TemplateFrequency tags how often a templated checklist applies.
type TemplateFrequency string

const (
	FrequencyDaily         TemplateFrequency = "daily"
	FrequencyWeekly        TemplateFrequency = "weekly"
	FrequencyMonthly       TemplateFrequency = "monthly"
	FrequencyQuarterly     TemplateFrequency = "quarterly"
	FrequencySemiAnnual    TemplateFrequency = "semi_annual"
	FrequencyAnnual        TemplateFrequency = "annual"
	FrequencyPreOperation  TemplateFrequency = "pre_operation"
	FrequencyPostOperation TemplateFrequency = "post_operation"
	FrequencyMaintenance   TemplateFrequency = "maintenance"
)

func (f TemplateFrequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly,
		FrequencySemiAnnual, FrequencyAnnual, FrequencyPreOperation,
		FrequencyPostOperation, FrequencyMaintenance:
		return true
	}
	return false
}

// ChecklistTemplateItem is a reusable checklist definition scoped to an
// equipment type and frequency. Templates are read-only input to template
// expansion; inspections copy the fields and keep a back-reference.
// Active is a pointer so an explicit false survives the insert; gorm drops
// zero-valued fields that carry a column default.
type ChecklistTemplateItem struct {
	gorm.Model
	EquipmentTypeID uint              `json:"equipment_type_id" gorm:"not null;index"`
	Frequency       TemplateFrequency `json:"frequency" gorm:"size:30;not null;index"`
	Active          *bool             `json:"active" gorm:"not null;default:true;index"`

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

// SetupTemplateIndexes creates the lookup index used by template expansion.
func SetupTemplateIndexes(db *gorm.DB) error {
	return db.Exec("CREATE INDEX IF NOT EXISTS idx_template_type_frequency ON checklist_template_items (equipment_type_id, frequency) WHERE deleted_at IS NULL").Error
}
