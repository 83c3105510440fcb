package Services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"Atlas/Models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database migrated with the full
// schema. Each test gets its own database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&Models.User{},
		&Models.FCMToken{},
		&Models.EquipmentType{},
		&Models.Equipment{},
		&Models.HourReading{},
		&Models.ChecklistTemplateItem{},
		&Models.Inspection{},
		&Models.InspectionItem{},
		&Models.InspectionResult{},
		&Models.MaintenanceRecord{},
		&Models.MaintenanceTask{},
		&Models.MaintenancePart{},
	))
	return db
}

func seedEquipment(t *testing.T, db *gorm.DB) Models.Equipment {
	t.Helper()

	equipmentType := Models.EquipmentType{Name: "excavator"}
	require.NoError(t, db.Create(&equipmentType).Error)

	equipment := Models.Equipment{
		EquipmentTypeID: equipmentType.ID,
		SerialNumber:    "EX-1001",
		PlateNumber:     "FLT-100",
		Manufacturer:    "Caterpillar",
		ModelName:       "320D",
		Status:          "active",
	}
	require.NoError(t, db.Create(&equipment).Error)
	return equipment
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func statusPtr(v Models.InspectionStatus) *Models.InspectionStatus { return &v }
