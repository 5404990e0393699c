package service_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

func findItem(t *testing.T, items []model.PracticeItem, id string) model.PracticeItem {
	t.Helper()
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("item %s not found", id)
	return model.PracticeItem{}
}

func TestIncrementStopsAtRequiredCount(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	for i := 0; i < 3; i++ {
		res, err := service.IncrementPractice(db, "m2", now)
		require.NoError(t, err)
		assert.True(t, res.Changed)
	}
	res, err := service.IncrementPractice(db, "m2", now)
	require.NoError(t, err)
	assert.False(t, res.Changed, "fourth tap on a 3-count item is a no-op")
	assert.True(t, res.Completed)
	assert.Equal(t, 3, res.Item.CurrentCount)

	items, err := service.ListPractice(db, "")
	require.NoError(t, err)
	assert.Equal(t, 3, findItem(t, items, "m2").CurrentCount)
}

func TestIncrementThenResetRestoresZero(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	_, err := service.IncrementPractice(db, "p2", now)
	require.NoError(t, err)
	require.NoError(t, service.ResetPractice(db, "p2", now))

	items, err := service.ListPractice(db, model.CategoryPrayer)
	require.NoError(t, err)
	assert.Zero(t, findItem(t, items, "p2").CurrentCount)
	for _, it := range items {
		assert.Equal(t, model.CategoryPrayer, it.Category)
	}
}

func TestUnknownIDLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	_, err := service.IncrementPractice(db, "nope", now)
	assert.ErrorIs(t, err, service.ErrItemNotFound)
	assert.ErrorIs(t, service.ResetPractice(db, "nope", now), service.ErrItemNotFound)

	stats, err := service.LoadStats(db, now)
	require.NoError(t, err)
	assert.Empty(t, stats.DailyProgress, "failed operations must not write progress")
}

func TestCompletionCelebratesEveryFifthStartedItem(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	// Nothing started yet, so completing m1 lands on a multiple of five.
	res, err := service.IncrementPractice(db, "m1", now)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.True(t, res.Celebrate)

	res, err = service.IncrementPractice(db, "e1", now)
	require.NoError(t, err)
	assert.True(t, res.Completed)
	assert.False(t, res.Celebrate)
}

func TestIncrementRefreshesDailyProgress(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	_, err := service.IncrementPractice(db, "m3", now)
	require.NoError(t, err)

	stats, err := service.LoadStats(db, now)
	require.NoError(t, err)
	// 1 of 215 required repetitions.
	assert.Equal(t, 0, stats.DailyProgress["2026-03-10"])
	assert.Equal(t, 0, stats.Streak)

	for i := 0; i < 99; i++ {
		_, err := service.IncrementPractice(db, "m3", now)
		require.NoError(t, err)
	}
	stats, err = service.LoadStats(db, now)
	require.NoError(t, err)
	assert.Equal(t, 47, stats.DailyProgress["2026-03-10"])
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, []string{"m3"}, stats.CompletedToday)
}

func TestAddCustomRejectsBlankText(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	before, err := service.ListPractice(db, "")
	require.NoError(t, err)

	_, added, err := service.AddCustomPractice(db, service.AddCustomInput{Text: "   \t ", Category: model.CategorySupplications}, now)
	require.NoError(t, err)
	assert.False(t, added)

	after, err := service.ListPractice(db, "")
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestAddCustomDefaultsAndValidation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	item, added, err := service.AddCustomPractice(db, service.AddCustomInput{Text: "أستغفر الله", Category: model.CategorySupplications}, now)
	require.NoError(t, err)
	require.True(t, added)
	assert.True(t, strings.HasPrefix(item.ID, "custom_"))
	assert.Equal(t, service.DefaultCustomCount, item.Count)
	assert.True(t, item.IsUserAdded)

	_, _, err = service.AddCustomPractice(db, service.AddCustomInput{Text: "x", Count: 101, Category: model.CategorySupplications}, now)
	assert.ErrorContains(t, err, "between 1 and 100")
	_, _, err = service.AddCustomPractice(db, service.AddCustomInput{Text: "x", Category: "brunch"}, now)
	assert.ErrorContains(t, err, "unknown category")

	items, err := service.ListPractice(db, model.CategorySupplications)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
}

func TestResetAllClearsEveryCounter(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	for _, id := range []string{"m1", "e2", "s1"} {
		_, err := service.IncrementPractice(db, id, now)
		require.NoError(t, err)
	}
	require.NoError(t, service.ResetAllPractice(db, now))
	items, err := service.ListPractice(db, "")
	require.NoError(t, err)
	for _, it := range items {
		assert.Zero(t, it.CurrentCount, it.ID)
	}
}

func TestMergeCatalogKeepsOnlyUserExtras(t *testing.T) {
	t.Parallel()
	defaults := []model.PracticeItem{
		{ID: "a", Count: 3, Category: model.CategoryMorning},
		{ID: "b", Count: 1, Category: model.CategoryEvening},
	}
	persisted := []model.PracticeItem{
		{ID: "b", Count: 1, CurrentCount: 7},
		{ID: "retired", Count: 2, CurrentCount: 1},
		{ID: "custom_1", Count: 2, CurrentCount: 1, IsUserAdded: true},
	}
	got := service.MergeCatalog(persisted, defaults)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "custom_1"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, 1, got[1].CurrentCount, "stored count is clamped to the catalog")
}

func TestCorruptPracticeRecordFallsBackToCatalog(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	_, err := db.Exec(`INSERT INTO records(key, value) VALUES(?, ?)`, service.RecordPracticeItems, `{not json`)
	require.NoError(t, err)

	items, err := service.LoadPracticeItems(db)
	require.NoError(t, err)
	assert.Len(t, items, 11)
}

func TestClearAllRemovesUserItems(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 08:00")

	_, _, err := service.AddCustomPractice(db, service.AddCustomInput{Text: "سبحان الله", Count: 10, Category: model.CategoryQuran}, now)
	require.NoError(t, err)
	n, err := service.ClearAll(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "practice and stats records")

	items, err := service.ListPractice(db, model.CategoryQuran)
	require.NoError(t, err)
	assert.Empty(t, items)
}
