package service_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/abdel2584/hisn-moslim-3/internal/model"
	"github.com/abdel2584/hisn-moslim-3/internal/service"
)

func TestExportHistoryWritesWorkbook(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	now := day(t, "2026-03-10 12:00")
	require.NoError(t, service.SaveStats(db, model.UserStats{
		Streak:        1,
		LastUpdate:    now,
		DailyProgress: map[string]int{"2026-03-10": 35, "2026-03-08": 0, "2026-03-09": 80},
	}))

	out := filepath.Join(t.TempDir(), "exports", "history.xlsx")
	n, err := service.ExportHistory(db, out, now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("History")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"date", "percent", "status"}, rows[0])
	assert.Equal(t, []string{"2026-03-08", "0", "missed"}, rows[1])
	assert.Equal(t, []string{"2026-03-09", "80", "active"}, rows[2])
	assert.Equal(t, []string{"2026-03-10", "35", "current"}, rows[3])
}

func TestExportHistoryRequiresPath(t *testing.T) {
	t.Parallel()
	_, err := service.ExportHistory(newTestDB(t), "  ", day(t, "2026-03-10 12:00"))
	assert.ErrorContains(t, err, "output path")
}
