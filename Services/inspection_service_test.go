package Services

import (
	"errors"
	"testing"
	"time"

	"Atlas/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testClock = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestInspectionService(t *testing.T) (*InspectionService, *gorm.DB, Models.Equipment) {
	t.Helper()
	db := newTestDB(t)
	service := NewInspectionService(db)
	service.Now = fixedClock(testClock)
	return service, db, seedEquipment(t, db)
}

// createChecklistInspection creates a scheduled inspection with one required
// and one optional item.
func createChecklistInspection(t *testing.T, service *InspectionService, equipmentID uint) *Models.Inspection {
	t.Helper()
	inspection, err := service.Create(Models.CreateInspectionRequest{
		EquipmentID:   equipmentID,
		InspectorID:   7,
		Type:          Models.TypePreOperation,
		ScheduledDate: "2026-03-10",
		Items: []Models.InspectionItemPayload{
			{Name: "Hydraulic fluid level", Category: Models.CategoryHydraulic, ItemType: Models.ItemMeasurement, Required: boolPtr(true)},
			{Name: "Cab cleanliness", Category: Models.CategoryOperational, ItemType: Models.ItemVisual},
		},
	}, 1)
	require.NoError(t, err)
	return inspection
}

func recordResult(t *testing.T, service *InspectionService, inspectionID, itemID uint, status Models.ResultStatus) *Models.Inspection {
	t.Helper()
	inspection, err := service.Update(inspectionID, Models.UpdateInspectionRequest{
		Results: []Models.InspectionResultPayload{
			{InspectionItemID: itemID, Status: status},
		},
	}, 7)
	require.NoError(t, err)
	return inspection
}

func TestCreateInspection(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)

	assert.Equal(t, Models.StatusScheduled, inspection.Status)
	assert.Equal(t, Models.ResultPending, inspection.OverallResult)
	assert.Equal(t, uint(1), inspection.CreatedBy)
	require.Len(t, inspection.Items, 2)
	assert.Equal(t, 1, inspection.Items[0].OrderSequence)
	assert.Equal(t, 2, inspection.Items[1].OrderSequence)
	assert.True(t, inspection.Items[0].Required)
}

func TestCreateInspectionUnknownEquipment(t *testing.T) {
	service, _, _ := newTestInspectionService(t)

	_, err := service.Create(Models.CreateInspectionRequest{
		EquipmentID:   999,
		InspectorID:   7,
		Type:          Models.TypeRoutine,
		ScheduledDate: "2026-03-10",
	}, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateInspectionInvalidBounds(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	_, err := service.Create(Models.CreateInspectionRequest{
		EquipmentID:   equipment.ID,
		InspectorID:   7,
		Type:          Models.TypeRoutine,
		ScheduledDate: "2026-03-10",
		Items: []Models.InspectionItemPayload{
			{Name: "Tire pressure", Category: Models.CategoryOperational, ItemType: Models.ItemMeasurement,
				MinValue: floatPtr(100), MaxValue: floatPtr(50)},
		},
	}, 1)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "max_value", validationErr.Fields[0].Field)
}

func TestTemplateExpansion(t *testing.T) {
	service, db, equipment := newTestInspectionService(t)

	templates := []Models.ChecklistTemplateItem{
		{EquipmentTypeID: equipment.EquipmentTypeID, Frequency: Models.FrequencyDaily, Active: boolPtr(true),
			Name: "Engine oil", Category: Models.CategoryEngine, ItemType: Models.ItemMeasurement,
			Required: true, OrderSequence: 2, MinValue: floatPtr(1), MaxValue: floatPtr(10), SafetyCritical: true},
		{EquipmentTypeID: equipment.EquipmentTypeID, Frequency: Models.FrequencyDaily, Active: boolPtr(true),
			Name: "Tracks", Category: Models.CategoryStructural, ItemType: Models.ItemVisual, OrderSequence: 1},
		{EquipmentTypeID: equipment.EquipmentTypeID, Frequency: Models.FrequencyDaily, Active: boolPtr(false),
			Name: "Retired check", Category: Models.CategorySafety, ItemType: Models.ItemVisual, OrderSequence: 3},
		{EquipmentTypeID: equipment.EquipmentTypeID, Frequency: Models.FrequencyWeekly, Active: boolPtr(true),
			Name: "Grease points", Category: Models.CategoryMaintenance, ItemType: Models.ItemChecklist, OrderSequence: 4},
	}
	for i := range templates {
		require.NoError(t, db.Create(&templates[i]).Error)
	}

	var stored Models.ChecklistTemplateItem
	require.NoError(t, db.First(&stored, templates[2].ID).Error)
	require.NotNil(t, stored.Active)
	require.False(t, *stored.Active, "deactivated template must persist as inactive")

	inspection, err := service.GenerateFromTemplate(equipment.ID, 7, Models.TypeRoutine,
		testClock, Models.FrequencyDaily, 1)
	require.NoError(t, err)

	// Inactive and wrong-frequency templates are skipped; order follows
	// order_sequence.
	require.Len(t, inspection.Items, 2)
	assert.Equal(t, "Tracks", inspection.Items[0].Name)
	assert.Equal(t, "Engine oil", inspection.Items[1].Name)
	assert.True(t, inspection.Items[1].SafetyCritical)
	require.NotNil(t, inspection.Items[1].TemplateItemID)
	assert.Equal(t, templates[0].ID, *inspection.Items[1].TemplateItemID)
}

func TestStartInspection(t *testing.T) {
	service, db, equipment := newTestInspectionService(t)

	readAt := testClock.Add(-time.Hour)
	require.NoError(t, db.Model(&Models.Equipment{}).Where("id = ?", equipment.ID).
		Updates(map[string]interface{}{
			"operating_hours": 1523.5,
			"fuel_level":      76.0,
			"last_reading_at": &readAt,
		}).Error)

	inspection := createChecklistInspection(t, service, equipment.ID)

	started, err := service.Start(inspection.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, Models.StatusInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	assert.True(t, started.StartedAt.Equal(testClock))
	require.NotNil(t, started.OperatingHoursBefore)
	assert.Equal(t, 1523.5, *started.OperatingHoursBefore)
	require.NotNil(t, started.FuelLevelBefore)
	assert.Equal(t, 76.0, *started.FuelLevelBefore)
}

func TestStartCancelledInspection(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	_, err := service.Cancel(inspection.ID, 7)
	require.NoError(t, err)

	_, err = service.Start(inspection.ID, 7)

	var transitionErr *InvalidStateTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "cancelled", transitionErr.Current)
	assert.Equal(t, "in_progress", transitionErr.Attempted)
	assert.Equal(t, []string{"scheduled"}, transitionErr.Allowed)
}

func TestCompleteBlockedByRequiredItems(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	_, err := service.Start(inspection.ID, 7)
	require.NoError(t, err)

	_, err = service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)

	var incompleteErr *IncompleteRequiredItemsError
	require.ErrorAs(t, err, &incompleteErr)
	assert.Equal(t, int64(1), incompleteErr.Required)
	assert.Equal(t, int64(0), incompleteErr.Completed)

	// A failed completion leaves the inspection untouched.
	reloaded, err := service.Get(inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, Models.StatusInProgress, reloaded.Status)
	assert.Equal(t, Models.ResultPending, reloaded.OverallResult)
	assert.Nil(t, reloaded.CompletedAt)
}

func TestCompletePendingResultDoesNotCount(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPending)

	_, err := service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)

	var incompleteErr *IncompleteRequiredItemsError
	require.ErrorAs(t, err, &incompleteErr)
}

func TestCompleteInspection(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	_, err := service.Start(inspection.ID, 7)
	require.NoError(t, err)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPass)

	completed, err := service.Complete(inspection.ID, Models.CompleteInspectionRequest{
		Notes:               "all good",
		OperatingHoursAfter: floatPtr(1530),
	}, 9)
	require.NoError(t, err)

	assert.Equal(t, Models.StatusCompleted, completed.Status)
	assert.Equal(t, Models.ResultPass, completed.OverallResult)
	assert.Equal(t, "all good", completed.Notes)
	assert.Equal(t, uint(9), completed.CompletedBy)
	require.NotNil(t, completed.CompletedAt)
	assert.True(t, completed.CompletedAt.Equal(testClock))
}

func TestCompleteFromScheduledSkippingStart(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPass)

	completed, err := service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)
	require.NoError(t, err)

	assert.Equal(t, Models.StatusCompleted, completed.Status)
	// Skipping in_progress still stamps the start time.
	require.NotNil(t, completed.StartedAt)
}

func TestCompleteHourMeterRegression(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPass)
	_, err := service.Update(inspection.ID, Models.UpdateInspectionRequest{
		OperatingHoursBefore: floatPtr(1500),
	}, 7)
	require.NoError(t, err)

	_, err = service.Complete(inspection.ID, Models.CompleteInspectionRequest{
		OperatingHoursAfter: floatPtr(1400),
	}, 7)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "operating_hours_after", validationErr.Fields[0].Field)
}

func TestCompleteCompletedInspection(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPass)
	_, err := service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)
	require.NoError(t, err)

	_, err = service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)
	var transitionErr *InvalidStateTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "completed", transitionErr.Current)
}

func TestOverallResultPrecedence(t *testing.T) {
	cases := []struct {
		name     string
		statuses []Models.ResultStatus
		want     Models.OverallResult
	}{
		{"all pass", []Models.ResultStatus{Models.ResultStatusPass, Models.ResultStatusPass}, Models.ResultPass},
		{"warning beats pass", []Models.ResultStatus{Models.ResultStatusPass, Models.ResultStatusWarning}, Models.ResultWarning},
		{"fail beats warning", []Models.ResultStatus{Models.ResultStatusWarning, Models.ResultStatusFail}, Models.ResultFail},
		{"fail beats everything", []Models.ResultStatus{Models.ResultStatusFail, Models.ResultStatusPass}, Models.ResultFail},
		{"not applicable ignored", []Models.ResultStatus{Models.ResultStatusNotApplicable, Models.ResultStatusPass}, Models.ResultPass},
		{"only excluded statuses", []Models.ResultStatus{Models.ResultStatusNotApplicable, Models.ResultStatusRequiresRecheck}, Models.ResultPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service, _, equipment := newTestInspectionService(t)

			items := make([]Models.InspectionItemPayload, len(tc.statuses))
			for i := range tc.statuses {
				items[i] = Models.InspectionItemPayload{
					Name: "Check", Category: Models.CategorySafety, ItemType: Models.ItemVisual,
				}
			}
			inspection, err := service.Create(Models.CreateInspectionRequest{
				EquipmentID:   equipment.ID,
				InspectorID:   7,
				Type:          Models.TypeSafety,
				ScheduledDate: "2026-03-10",
				Items:         items,
			}, 1)
			require.NoError(t, err)

			for i, status := range tc.statuses {
				recordResult(t, service, inspection.ID, inspection.Items[i].ID, status)
			}

			completed, err := service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)
			require.NoError(t, err)
			assert.Equal(t, tc.want, completed.OverallResult)
		})
	}
}

func TestOverallResultUsesLatestPerItem(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	itemID := inspection.Items[0].ID

	recordResult(t, service, inspection.ID, itemID, Models.ResultStatusFail)
	// Recheck passes; the newer row supersedes the failure.
	updated := recordResult(t, service, inspection.ID, itemID, Models.ResultStatusPass)

	assert.Equal(t, Models.ResultPass, updated.OverallResult)
	require.Len(t, updated.Results, 2)
}

func TestCancelAndReschedule(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	_, err := service.Start(inspection.ID, 7)
	require.NoError(t, err)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusWarning)

	cancelled, err := service.Cancel(inspection.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, Models.StatusCancelled, cancelled.Status)

	newDate := testClock.AddDate(0, 0, 3)
	rescheduled, err := service.Reschedule(inspection.ID, &newDate, 7)
	require.NoError(t, err)

	assert.Equal(t, Models.StatusScheduled, rescheduled.Status)
	assert.Equal(t, Models.ResultPending, rescheduled.OverallResult)
	assert.Nil(t, rescheduled.StartedAt)
	assert.Nil(t, rescheduled.CompletedAt)
	assert.True(t, rescheduled.ScheduledDate.Equal(newDate))
	// The checklist survives the cycle; recorded results do not.
	assert.Len(t, rescheduled.Items, 2)
	assert.Empty(t, rescheduled.Results)
}

func TestRescheduleRequiresCancelled(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)

	_, err := service.Reschedule(inspection.ID, nil, 7)
	var transitionErr *InvalidStateTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestCancelCompletedInspection(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPass)
	_, err := service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)
	require.NoError(t, err)

	_, err = service.Cancel(inspection.ID, 7)
	var terminalErr *TerminalStateViolationError
	require.ErrorAs(t, err, &terminalErr)
	assert.Equal(t, "cancel", terminalErr.Operation)
	assert.Equal(t, "completed", terminalErr.Status)
}

func TestUpdateLockedFieldsAfterCompletion(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPass)
	_, err := service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)
	require.NoError(t, err)

	newEquipment := uint(42)
	newType := Models.TypeDamage
	_, err = service.Update(inspection.ID, Models.UpdateInspectionRequest{
		EquipmentID: &newEquipment,
		Type:        &newType,
	}, 7)

	var immutableErr *ImmutableCompletedRecordError
	require.ErrorAs(t, err, &immutableErr)
	assert.ElementsMatch(t, []string{"equipment_id", "type"}, immutableErr.Fields)

	// Notes remain editable after completion.
	updated, err := service.Update(inspection.ID, Models.UpdateInspectionRequest{
		Notes: strPtr("post-completion remark"),
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, "post-completion remark", updated.Notes)
}

func TestUpdateStatusTransitionTable(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)

	// scheduled -> in_progress stamps the start time.
	updated, err := service.Update(inspection.ID, Models.UpdateInspectionRequest{
		Status: statusPtr(Models.StatusInProgress),
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, Models.StatusInProgress, updated.Status)
	require.NotNil(t, updated.StartedAt)

	// in_progress -> scheduled is not in the table.
	_, err = service.Update(inspection.ID, Models.UpdateInspectionRequest{
		Status: statusPtr(Models.StatusScheduled),
	}, 7)
	var transitionErr *InvalidStateTransitionError
	require.ErrorAs(t, err, &transitionErr)

	// overdue can never be stored.
	_, err = service.Update(inspection.ID, Models.UpdateInspectionRequest{
		Status: statusPtr(Models.StatusOverdue),
	}, 7)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestUpdateForeignItemReference(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	first := createChecklistInspection(t, service, equipment.ID)
	second := createChecklistInspection(t, service, equipment.ID)

	// Result pointing at another inspection's item.
	_, err := service.Update(first.ID, Models.UpdateInspectionRequest{
		Results: []Models.InspectionResultPayload{
			{InspectionItemID: second.Items[0].ID, Status: Models.ResultStatusPass},
		},
	}, 7)
	var foreignErr *ForeignItemReferenceError
	require.ErrorAs(t, err, &foreignErr)
	assert.Equal(t, first.ID, foreignErr.RecordID)
	assert.Equal(t, second.Items[0].ID, foreignErr.ReferenceID)

	// Item upsert referencing a foreign item id.
	_, err = service.Update(first.ID, Models.UpdateInspectionRequest{
		Items: []Models.InspectionItemPayload{
			{ID: second.Items[1].ID, Name: "hijack"},
		},
	}, 7)
	require.ErrorAs(t, err, &foreignErr)
}

func TestUpdateResultDefaults(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	updated, err := service.Update(inspection.ID, Models.UpdateInspectionRequest{
		Results: []Models.InspectionResultPayload{
			{InspectionItemID: inspection.Items[1].ID},
		},
	}, 7)
	require.NoError(t, err)

	require.Len(t, updated.Results, 1)
	result := updated.Results[0]
	assert.Equal(t, Models.ResultStatusPending, result.Status)
	assert.Equal(t, Models.ActionNone, result.ActionRequired)
	assert.Equal(t, Models.PriorityLow, result.PriorityLevel)
	assert.Equal(t, uint(7), result.CheckedBy)
	require.NotNil(t, result.TimestampChecked)
}

func TestUpdateDeviationBounds(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	_, err := service.Update(inspection.ID, Models.UpdateInspectionRequest{
		Results: []Models.InspectionResultPayload{
			{InspectionItemID: inspection.Items[0].ID, Status: Models.ResultStatusFail, DeviationPercent: floatPtr(150)},
		},
	}, 7)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "deviation_percent", validationErr.Fields[0].Field)
}

func TestDuplicateInspection(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	source := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, source.ID, source.Items[0].ID, Models.ResultStatusFail)

	clone, err := service.Duplicate(source.ID, 3)
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, Models.StatusScheduled, clone.Status)
	assert.Equal(t, Models.ResultPending, clone.OverallResult)
	assert.Equal(t, uint(3), clone.CreatedBy)
	assert.True(t, clone.ScheduledDate.Equal(testClock.Add(24*time.Hour)))
	// Items are copied, recorded results are not.
	require.Len(t, clone.Items, 2)
	assert.Empty(t, clone.Results)
	assert.NotEqual(t, source.Items[0].ID, clone.Items[0].ID)
}

func TestDeleteAndRestore(t *testing.T) {
	service, db, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPass)

	require.NoError(t, service.Delete(inspection.ID, 1))

	_, err := service.Get(inspection.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var hiddenItems int64
	db.Model(&Models.InspectionItem{}).Where("inspection_id = ?", inspection.ID).Count(&hiddenItems)
	assert.Equal(t, int64(0), hiddenItems)

	restored, err := service.Restore(inspection.ID, 1)
	require.NoError(t, err)
	assert.Len(t, restored.Items, 2)
	assert.Len(t, restored.Results, 1)
}

func TestRestoreAfterRescheduleKeepsResultsCleared(t *testing.T) {
	service, db, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusFail)

	_, err := service.Cancel(inspection.ID, 7)
	require.NoError(t, err)
	_, err = service.Reschedule(inspection.ID, nil, 7)
	require.NoError(t, err)

	require.NoError(t, service.Delete(inspection.ID, 1))
	restored, err := service.Restore(inspection.ID, 1)
	require.NoError(t, err)

	// Results cleared by the reschedule must not come back with the restore.
	assert.Len(t, restored.Items, 2)
	assert.Empty(t, restored.Results)
	assert.Equal(t, Models.ResultPending, restored.OverallResult)

	var tombstoned int64
	db.Unscoped().Model(&Models.InspectionResult{}).Where("inspection_id = ?", inspection.ID).Count(&tombstoned)
	assert.Equal(t, int64(0), tombstoned)
}

func TestHardDeleteRefusesCompleted(t *testing.T) {
	service, db, equipment := newTestInspectionService(t)

	inspection := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusPass)
	_, err := service.Complete(inspection.ID, Models.CompleteInspectionRequest{}, 7)
	require.NoError(t, err)

	err = service.HardDelete(inspection.ID, 1)
	var terminalErr *TerminalStateViolationError
	require.ErrorAs(t, err, &terminalErr)

	other := createChecklistInspection(t, service, equipment.ID)
	require.NoError(t, service.HardDelete(other.ID, 1))

	var gone int64
	db.Unscoped().Model(&Models.Inspection{}).Where("id = ?", other.ID).Count(&gone)
	assert.Equal(t, int64(0), gone)
}

func TestGetNotFound(t *testing.T) {
	service, _, _ := newTestInspectionService(t)

	_, err := service.Get(12345)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEffectiveStatusOverdue(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection, err := service.Create(Models.CreateInspectionRequest{
		EquipmentID:   equipment.ID,
		InspectorID:   7,
		Type:          Models.TypeRoutine,
		ScheduledDate: "2026-03-01",
	}, 1)
	require.NoError(t, err)

	assert.Equal(t, Models.StatusScheduled, inspection.Status)
	assert.Equal(t, Models.StatusOverdue, inspection.EffectiveStatus(testClock))

	started, err := service.Start(inspection.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, Models.StatusInProgress, started.EffectiveStatus(testClock))
}

func TestListViews(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	mk := func(date string) *Models.Inspection {
		inspection, err := service.Create(Models.CreateInspectionRequest{
			EquipmentID:   equipment.ID,
			InspectorID:   7,
			Type:          Models.TypeRoutine,
			ScheduledDate: date,
		}, 1)
		require.NoError(t, err)
		return inspection
	}

	past := mk("2026-03-01")
	today := mk("2026-03-10") // midnight, so already overdue at the noon test clock
	upcoming := mk("2026-03-20")
	cancelledPast := mk("2026-02-20")
	_, err := service.Cancel(cancelledPast.ID, 7)
	require.NoError(t, err)

	overdue, total, err := service.List(InspectionFilter{View: "overdue"}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, overdue, 2)
	ids := []uint{overdue[0].ID, overdue[1].ID}
	assert.ElementsMatch(t, []uint{past.ID, today.ID}, ids)

	todays, total, err := service.List(InspectionFilter{View: "today"}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, today.ID, todays[0].ID)

	all, total, err := service.List(InspectionFilter{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 2)
	_ = upcoming
}

func TestListRequiresActionView(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	flagged := createChecklistInspection(t, service, equipment.ID)
	_, err := service.Update(flagged.ID, Models.UpdateInspectionRequest{
		Results: []Models.InspectionResultPayload{
			{InspectionItemID: flagged.Items[0].ID, Status: Models.ResultStatusFail,
				RequiresAction: boolPtr(true), ActionRequired: Models.ActionRepair,
				PriorityLevel: Models.PriorityHigh},
		},
	}, 7)
	require.NoError(t, err)
	createChecklistInspection(t, service, equipment.ID)

	results, total, err := service.List(InspectionFilter{View: "requires_action"}, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, flagged.ID, results[0].ID)
}

func TestStatistics(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	done := createChecklistInspection(t, service, equipment.ID)
	recordResult(t, service, done.ID, done.Items[0].ID, Models.ResultStatusPass)
	_, err := service.Complete(done.ID, Models.CompleteInspectionRequest{}, 7)
	require.NoError(t, err)

	createChecklistInspection(t, service, equipment.ID)
	cancelled := createChecklistInspection(t, service, equipment.ID)
	_, err = service.Cancel(cancelled.ID, 7)
	require.NoError(t, err)

	stats, err := service.Statistics(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus["completed"])
	assert.Equal(t, int64(1), stats.ByStatus["scheduled"])
	assert.Equal(t, int64(1), stats.ByStatus["cancelled"])
	assert.Equal(t, int64(1), stats.ByOverallResult["pass"])
	assert.InDelta(t, 1.0/3.0, stats.CompletionRate, 0.001)
}

func TestStatisticsSafetyCriticalFailures(t *testing.T) {
	service, _, equipment := newTestInspectionService(t)

	inspection, err := service.Create(Models.CreateInspectionRequest{
		EquipmentID:   equipment.ID,
		InspectorID:   7,
		Type:          Models.TypeSafety,
		ScheduledDate: "2026-03-10",
		Items: []Models.InspectionItemPayload{
			{Name: "Brakes", Category: Models.CategorySafety, ItemType: Models.ItemFunctional,
				Required: boolPtr(true), SafetyCritical: boolPtr(true)},
		},
	}, 1)
	require.NoError(t, err)
	recordResult(t, service, inspection.ID, inspection.Items[0].ID, Models.ResultStatusFail)

	stats, err := service.Statistics(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.SafetyCriticalFailures)
}
