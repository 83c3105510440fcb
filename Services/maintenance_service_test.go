package Services

import (
	"testing"

	"Atlas/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestMaintenanceService(t *testing.T) (*MaintenanceService, *gorm.DB, Models.Equipment) {
	t.Helper()
	db := newTestDB(t)
	service := NewMaintenanceService(db)
	service.Now = fixedClock(testClock)
	return service, db, seedEquipment(t, db)
}

func createOilChange(t *testing.T, service *MaintenanceService, equipmentID uint) *Models.MaintenanceRecord {
	t.Helper()
	record, err := service.Create(Models.CreateMaintenanceRequest{
		EquipmentID:   equipmentID,
		TechnicianID:  4,
		ServiceType:   Models.ServiceOilChange,
		ScheduledDate: "2026-03-12",
		Tasks: []Models.MaintenanceTaskPayload{
			{Name: "Drain oil", Required: boolPtr(true)},
			{Name: "Check belts"},
		},
		Parts: []Models.MaintenancePartPayload{
			{Name: "Engine oil 15W-40", Quantity: intPtr(4), UnitCost: floatPtr(25)},
			{Name: "Oil filter", PartNumber: "OF-221", UnitCost: floatPtr(18)},
		},
	}, 1)
	require.NoError(t, err)
	return record
}

func intPtr(v int) *int { return &v }

func TestCreateMaintenanceRecord(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	record := createOilChange(t, service, equipment.ID)

	assert.Equal(t, Models.MaintenanceScheduled, record.Status)
	assert.Equal(t, Models.PriorityMedium, record.Priority)
	require.Len(t, record.Tasks, 2)
	require.Len(t, record.Parts, 2)
	// 4 * 25 + 1 * 18
	assert.Equal(t, 118.0, record.PartsCost)
	assert.Equal(t, 118.0, record.TotalCost)
}

func TestCompleteMaintenanceBlockedByRequiredTasks(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	record := createOilChange(t, service, equipment.ID)

	_, err := service.Complete(record.ID, Models.CompleteMaintenanceRequest{}, 4)

	var incompleteErr *IncompleteRequiredItemsError
	require.ErrorAs(t, err, &incompleteErr)
	assert.Equal(t, int64(1), incompleteErr.Required)
	assert.Equal(t, int64(0), incompleteErr.Completed)

	reloaded, err := service.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, Models.MaintenanceScheduled, reloaded.Status)
}

func TestCompleteMaintenance(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	record := createOilChange(t, service, equipment.ID)
	_, err := service.Start(record.ID, 4)
	require.NoError(t, err)

	_, err = service.Update(record.ID, Models.UpdateMaintenanceRequest{
		Tasks: []Models.MaintenanceTaskPayload{
			{ID: record.Tasks[0].ID, Completed: boolPtr(true)},
		},
	}, 4)
	require.NoError(t, err)

	completed, err := service.Complete(record.ID, Models.CompleteMaintenanceRequest{
		Notes:            "serviced",
		LaborCost:        floatPtr(80),
		HourMeter:        floatPtr(1540),
		NextServiceHours: floatPtr(1790),
	}, 4)
	require.NoError(t, err)

	assert.Equal(t, Models.MaintenanceCompleted, completed.Status)
	assert.Equal(t, uint(4), completed.CompletedBy)
	require.NotNil(t, completed.CompletedAt)
	assert.True(t, completed.CompletedAt.Equal(testClock))
	assert.Equal(t, 80.0, completed.LaborCost)
	assert.Equal(t, 198.0, completed.TotalCost)
	require.NotNil(t, completed.NextServiceHours)
	assert.Equal(t, 1790.0, *completed.NextServiceHours)
}

func TestMaintenanceTaskToggleStampsCompletedAt(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	record := createOilChange(t, service, equipment.ID)
	updated, err := service.Update(record.ID, Models.UpdateMaintenanceRequest{
		Tasks: []Models.MaintenanceTaskPayload{
			{ID: record.Tasks[0].ID, Completed: boolPtr(true)},
		},
	}, 4)
	require.NoError(t, err)
	require.NotNil(t, updated.Tasks[0].CompletedAt)
	assert.True(t, updated.Tasks[0].Completed)

	reverted, err := service.Update(record.ID, Models.UpdateMaintenanceRequest{
		Tasks: []Models.MaintenanceTaskPayload{
			{ID: record.Tasks[0].ID, Completed: boolPtr(false)},
		},
	}, 4)
	require.NoError(t, err)
	assert.False(t, reverted.Tasks[0].Completed)
	assert.Nil(t, reverted.Tasks[0].CompletedAt)
}

func TestMaintenanceCostRollup(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	record := createOilChange(t, service, equipment.ID)
	updated, err := service.Update(record.ID, Models.UpdateMaintenanceRequest{
		LaborCost: floatPtr(50),
		Parts: []Models.MaintenancePartPayload{
			{ID: record.Parts[0].ID, Quantity: intPtr(6)},
			{Name: "Drain plug washer", Quantity: intPtr(2), UnitCost: floatPtr(1.5)},
		},
	}, 4)
	require.NoError(t, err)

	// 6 * 25 + 18 + 2 * 1.5
	assert.Equal(t, 171.0, updated.PartsCost)
	assert.Equal(t, 221.0, updated.TotalCost)
	require.Len(t, updated.Parts, 3)
}

func TestMaintenanceStatusTransitions(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	record := createOilChange(t, service, equipment.ID)

	cancelled, err := service.Cancel(record.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, Models.MaintenanceCancelled, cancelled.Status)

	_, err = service.Start(record.ID, 4)
	var transitionErr *InvalidStateTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "cancelled", transitionErr.Current)

	// cancelled -> scheduled reopens and clears timestamps.
	reopened, err := service.Update(record.ID, Models.UpdateMaintenanceRequest{
		Status: maintenanceStatusPtr(Models.MaintenanceScheduled),
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, Models.MaintenanceScheduled, reopened.Status)
	assert.Nil(t, reopened.StartedAt)
}

func maintenanceStatusPtr(v Models.MaintenanceStatus) *Models.MaintenanceStatus { return &v }

func TestMaintenanceLockedFieldsAfterCompletion(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	record := createOilChange(t, service, equipment.ID)
	_, err := service.Update(record.ID, Models.UpdateMaintenanceRequest{
		Tasks: []Models.MaintenanceTaskPayload{
			{ID: record.Tasks[0].ID, Completed: boolPtr(true)},
		},
	}, 4)
	require.NoError(t, err)
	_, err = service.Complete(record.ID, Models.CompleteMaintenanceRequest{}, 4)
	require.NoError(t, err)

	other := Models.ServiceRepair
	_, err = service.Update(record.ID, Models.UpdateMaintenanceRequest{
		ServiceType: &other,
	}, 4)
	var immutableErr *ImmutableCompletedRecordError
	require.ErrorAs(t, err, &immutableErr)
	assert.Equal(t, []string{"service_type"}, immutableErr.Fields)

	_, err = service.Cancel(record.ID, 4)
	var terminalErr *TerminalStateViolationError
	require.ErrorAs(t, err, &terminalErr)
}

func TestMaintenanceForeignTaskReference(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	first := createOilChange(t, service, equipment.ID)
	second := createOilChange(t, service, equipment.ID)

	_, err := service.Update(first.ID, Models.UpdateMaintenanceRequest{
		Tasks: []Models.MaintenanceTaskPayload{
			{ID: second.Tasks[0].ID, Completed: boolPtr(true)},
		},
	}, 4)

	var foreignErr *ForeignItemReferenceError
	require.ErrorAs(t, err, &foreignErr)
	assert.Equal(t, "task", foreignErr.Kind)
}

func TestMaintenanceList(t *testing.T) {
	service, _, equipment := newTestMaintenanceService(t)

	createOilChange(t, service, equipment.ID)
	record := createOilChange(t, service, equipment.ID)
	_, err := service.Cancel(record.ID, 4)
	require.NoError(t, err)

	records, total, err := service.List(equipment.ID, Models.MaintenanceScheduled, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, records, 1)
	assert.Equal(t, Models.MaintenanceScheduled, records[0].Status)

	_, total, err = service.List(0, "", Models.ServiceOilChange, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestMaintenanceDelete(t *testing.T) {
	service, db, equipment := newTestMaintenanceService(t)

	record := createOilChange(t, service, equipment.ID)
	require.NoError(t, service.Delete(record.ID, 1))

	_, err := service.Get(record.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var tasks int64
	db.Model(&Models.MaintenanceTask{}).Where("maintenance_record_id = ?", record.ID).Count(&tasks)
	assert.Equal(t, int64(0), tasks)
}
