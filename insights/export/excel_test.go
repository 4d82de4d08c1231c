package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/insightbot/insights/domain"
)

func sample() []domain.Insight {
	ref := "AgACAgIAAx"
	name := "deck.pdf"
	return []domain.Insight{
		{ID: 3, CreatedAt: time.Date(2025, 3, 14, 18, 5, 0, 0, time.UTC), Theme: "Q1 margin shift", Description: "...", MacroRegion: "МСК", Industry: "Банки", AttachmentRef: &ref, AttachmentFilename: &name},
		{ID: 1, CreatedAt: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC), Theme: "Тема", Description: "Описание", MacroRegion: "СНГ", Industry: "Энергетика"},
	}
}

func TestExportWritesHeaderAndRows(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	e.now = func() time.Time { return time.Date(2025, 4, 1, 12, 30, 45, 0, time.UTC) }

	path, err := e.Export(context.Background(), sample(), 42)
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
	require.True(t, strings.HasPrefix(filepath.Base(path), "insights_export_42_20250401_123045_"))
	require.True(t, strings.HasSuffix(path, ".xlsx"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, Headers, rows[0])
	require.Equal(t, []string{"3", "2025-03-14", "Q1 margin shift", "...", "МСК", "Банки", "Да"}, rows[1])
	require.Equal(t, []string{"1", "2025-01-02", "Тема", "Описание", "СНГ", "Энергетика", "Нет"}, rows[2])
}

func TestExportEmptyHasOnlyHeader(t *testing.T) {
	path, err := New(t.TempDir()).Export(context.Background(), nil, 1)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExportPathsAreUnique(t *testing.T) {
	dir := t.TempDir()
	e := New(dir)
	fixed := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	a, err := e.Export(context.Background(), sample(), 7)
	require.NoError(t, err)
	b, err := e.Export(context.Background(), sample(), 7)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestEmptyAttachmentRefIsNo(t *testing.T) {
	empty := ""
	vals := rowValues(domain.Insight{AttachmentRef: &empty})
	require.Equal(t, no, vals[6])
}
