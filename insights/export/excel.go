// Package export renders insights into an xlsx workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/insightbot/core/logger"
	"github.com/m3rciful/insightbot/insights/domain"
)

const (
	component = "service.export"
	sheetName = "Инсайды"
	dateFmt   = "2006-01-02"
)

// Headers is the fixed header row of every export.
var Headers = []string{"ID", "Дата создания", "Тема", "Описание", "Макрорегион", "Отрасль", "Файл прикреплен"}

var columnWidths = []float64{8, 15, 25, 40, 15, 20, 15}

// centered columns, 1-based: date, industry, attachment flag.
var centered = map[int]bool{2: true, 6: true, 7: true}

const (
	yes = "Да"
	no  = "Нет"
)

// Exporter writes workbooks into Dir. The caller owns and removes the file.
type Exporter struct {
	Dir string
	now func() time.Time
}

// New returns an exporter writing to dir, or to the OS temp dir when dir is empty.
func New(dir string) *Exporter {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Exporter{Dir: dir, now: time.Now}
}

// Export writes records in the given order and returns the file path.
func (e *Exporter) Export(ctx context.Context, records []domain.Insight, userID int64) (string, error) {
	start := time.Now()
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}
	path := filepath.Join(e.Dir, e.fileName(userID))

	f := excelize.NewFile()
	defer f.Close()

	if err := render(f, records); err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("export: save: %w", err)
	}

	logger.Info(ctx, component, "export.written",
		slog.String("status", "ok"),
		slog.String("path", path),
		slog.Int("count", len(records)),
		slog.Duration("duration", time.Since(start)),
	)
	return path, nil
}

func (e *Exporter) fileName(userID int64) string {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	suffix := uuid.NewString()[:8]
	return "insights_export_" + strconv.FormatInt(userID, 10) + "_" + now().Format("20060102_150405") + "_" + suffix + ".xlsx"
}

func render(f *excelize.File, records []domain.Insight) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("export: sheet: %w", err)
	}
	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, styles.header); err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	if err := f.SetRowHeight(sheetName, 1, 25); err != nil {
		return fmt.Errorf("export: header height: %w", err)
	}

	for i, rec := range records {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := rowValues(rec)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("export: row %d: %w", row, err)
		}
		for col := 1; col <= len(values); col++ {
			ref, _ := excelize.CoordinatesToCellName(col, row)
			style := styles.body
			if centered[col] {
				style = styles.center
			}
			if err := f.SetCellStyle(sheetName, ref, ref, style); err != nil {
				return fmt.Errorf("export: row %d style: %w", row, err)
			}
		}
	}

	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return fmt.Errorf("export: width: %w", err)
		}
	}
	return nil
}

func rowValues(rec domain.Insight) []any {
	flag := no
	if rec.HasAttachment() {
		flag = yes
	}
	return []any{
		rec.ID,
		rec.CreatedAt.Format(dateFmt),
		rec.Theme,
		rec.Description,
		rec.MacroRegion,
		rec.Industry,
		flag,
	}
}

type styleSet struct {
	header, body, center int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	if err != nil {
		return s, fmt.Errorf("export: header style: %w", err)
	}
	s.body, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, fmt.Errorf("export: body style: %w", err)
	}
	s.center, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, fmt.Errorf("export: center style: %w", err)
	}
	return s, nil
}
