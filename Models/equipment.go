package Models

import (
	"time"

	"gorm.io/gorm"
)

// EquipmentType groups equipment sharing a checklist template catalog
// (excavator, loader, crane, ...).
type EquipmentType struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
}

// Equipment is one unit in the fleet. Registry data only; workflow logic
// lives with inspections and maintenance records.
type Equipment struct {
	gorm.Model
	EquipmentTypeID uint   `json:"equipment_type_id" gorm:"not null;index"`
	SerialNumber    string `json:"serial_number" gorm:"size:100;not null;uniqueIndex"`
	PlateNumber     string `json:"plate_number" gorm:"size:50;index"`
	Manufacturer    string `json:"manufacturer" gorm:"size:100"`
	ModelName       string `json:"model_name" gorm:"size:100"`
	YearBuilt       int    `json:"year_built"`
	Status          string `json:"status" gorm:"size:30;default:active"` // active, idle, retired
	Site            string `json:"site" gorm:"size:100"`

	// Telematics-maintained readings
	OperatingHours float64    `json:"operating_hours"`
	FuelLevel      float64    `json:"fuel_level"`
	LastReadingAt  *time.Time `json:"last_reading_at"`

	EquipmentType EquipmentType `json:"equipment_type,omitempty" gorm:"foreignKey:EquipmentTypeID"`
}

// HourReading is one scraped hour-meter/fuel snapshot for a unit.
type HourReading struct {
	gorm.Model
	EquipmentID    uint      `json:"equipment_id" gorm:"not null;index"`
	OperatingHours float64   `json:"operating_hours"`
	FuelLevel      float64   `json:"fuel_level"`
	Source         string    `json:"source" gorm:"size:50"`
	ReadAt         time.Time `json:"read_at" gorm:"not null;index"`
}
