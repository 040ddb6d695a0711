package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tmccall/roster-admin/pkg/core/model"
	"github.com/tmccall/roster-admin/pkg/db"
)

func seedTemplate(store *db.MemoryStore) {
	store.PutTemplate(&model.ShiftTemplate{
		ID:           "tpl-1",
		Name:         "Ward A",
		DepartmentID: "dept-1",
		Groups: []model.TemplateGroup{
			{
				ID:   "tg-1",
				Name: "Day",
				Subgroups: []model.TemplateSubgroup{
					{
						ID:   "tsg-1",
						Name: "Nursing",
						Shifts: []model.TemplateShift{
							{ID: "ts-1", StartTime: "07:00", EndTime: "15:00", RoleID: "nurse", RoleName: "Nurse"},
							{ID: "ts-2", StartTime: "15:00", EndTime: "23:00", RoleID: "nurse", RoleName: "Nurse", Draft: true},
						},
					},
				},
			},
		},
	})
}

func TestPublishTemplate(t *testing.T) {
	store := db.NewMemoryStore()
	seedTemplate(store)
	ctx := context.Background()

	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC)

	result, err := PublishTemplate(ctx, store, zap.NewNop(), "tpl-1", start, end, "", false)
	require.NoError(t, err)

	assert.Len(t, result.PublishedDates, 3)
	assert.Empty(t, result.SkippedDates)
	assert.Equal(t, 6, result.ShiftsCreated)

	// Each date gets its own roster tree with fresh shift instances.
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		tree, err := store.GetRosterByDate(ctx, d)
		require.NoError(t, err)
		assert.Len(t, tree.Shifts(), 2)

		for _, shift := range tree.Shifts() {
			stored, err := store.GetShift(ctx, shift.ID)
			require.NoError(t, err)
			assert.Equal(t, model.ShiftActive, stored.Status)

			// Every shift has a window; draft shifts get a Draft window
			// that is not yet biddable.
			openBid, err := store.GetOpenBidByShift(ctx, shift.ID)
			require.NoError(t, err)
			if stored.Draft {
				assert.Equal(t, model.OpenBidDraft, openBid.Status)
			} else {
				assert.Equal(t, model.OpenBidOpen, openBid.Status)
			}
		}
	}
}

func TestPublishTemplateSkipsPublishedDates(t *testing.T) {
	store := db.NewMemoryStore()
	seedTemplate(store)
	ctx := context.Background()

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	first, err := PublishTemplate(ctx, store, zap.NewNop(), "tpl-1", day, day, "", false)
	require.NoError(t, err)
	require.Len(t, first.PublishedDates, 1)

	second, err := PublishTemplate(ctx, store, zap.NewNop(), "tpl-1", day, day, "", false)
	require.NoError(t, err)
	assert.Empty(t, second.PublishedDates)
	assert.Equal(t, []time.Time{day}, second.SkippedDates)
	assert.Equal(t, 0, second.ShiftsCreated)
}

func TestPublishTemplateOverwrite(t *testing.T) {
	store := db.NewMemoryStore()
	seedTemplate(store)
	ctx := context.Background()

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

	first, err := PublishTemplate(ctx, store, zap.NewNop(), "tpl-1", day, day, "", false)
	require.NoError(t, err)
	firstTree, err := store.GetRosterByDate(ctx, day)
	require.NoError(t, err)

	second, err := PublishTemplate(ctx, store, zap.NewNop(), "tpl-1", day, day, "", true)
	require.NoError(t, err)
	assert.Len(t, second.PublishedDates, 1)

	secondTree, err := store.GetRosterByDate(ctx, day)
	require.NoError(t, err)
	assert.NotEqual(t, firstTree.ID, secondTree.ID, "overwrite replaces the tree")
	assert.NotNil(t, first)
}

func TestPublishTemplateWeekdayRule(t *testing.T) {
	store := db.NewMemoryStore()
	seedTemplate(store)
	ctx := context.Background()

	// Mon Jun 2 - Sun Jun 8, weekdays only.
	start := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)

	result, err := PublishTemplate(ctx, store, zap.NewNop(), "tpl-1", start, end,
		"FREQ=DAILY;BYDAY=MO,TU,WE,TH,FR", false)
	require.NoError(t, err)

	require.Len(t, result.PublishedDates, 5)
	for _, date := range result.PublishedDates {
		assert.NotEqual(t, time.Saturday, date.Weekday())
		assert.NotEqual(t, time.Sunday, date.Weekday())
	}

	// The weekend has no roster.
	_, err = store.GetRosterByDate(ctx, time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC))
	assert.True(t, model.IsNotFound(err))
}

func TestPublishTemplateBadRule(t *testing.T) {
	store := db.NewMemoryStore()
	seedTemplate(store)

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	_, err := PublishTemplate(context.Background(), store, zap.NewNop(), "tpl-1", day, day, "FREQ=SOMETIMES", false)
	assert.Error(t, err)
}

func TestPublishTemplateReversedRange(t *testing.T) {
	store := db.NewMemoryStore()
	seedTemplate(store)

	start := time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	_, err := PublishTemplate(context.Background(), store, zap.NewNop(), "tpl-1", start, end, "", false)
	assert.Error(t, err)
}

func TestPublishTemplateUnknownTemplate(t *testing.T) {
	store := db.NewMemoryStore()

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	_, err := PublishTemplate(context.Background(), store, zap.NewNop(), "ghost", day, day, "", false)
	assert.True(t, model.IsNotFound(err))
}
