// services/export_service.go - Excel workbook report for managers
package services

import (
	"fmt"
	"strings"
	"time"

	"timetracker/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportFilename is the attachment name for the report download.
const ExportFilename = "tasks_report.xlsx"

// Excel sheet names are limited to 31 characters.
const maxSheetNameLen = 31

// maxColumnWidth caps content-sized column widths.
const maxColumnWidth = 50

const timestampFormat = "2006-01-02 15:04:05"

var taskSheetHeaders = []string{
	"Title", "Description", "Category", "Status",
	"Start Time", "End Time", "Duration (minutes)", "Owner",
}

var summaryHeaders = []string{"Team", "Total Tasks", "Total Duration (minutes)"}

type ExportService struct {
	db    *gorm.DB
	teams *TeamService
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db, teams: NewTeamService(db)}
}

// Export builds the xlsx workbook for the actor: a summary sheet
// followed by one sheet per managed team. Refused with ErrForbidden
// when the actor manages no teams. A single now is captured up front
// so open-task durations agree between rows, totals and the summary.
func (s *ExportService) Export(actorID uint) ([]byte, error) {
	managed, err := s.teams.ManagedTeams(actorID)
	if err != nil {
		return nil, err
	}
	if len(managed) == 0 {
		return nil, ErrForbidden
	}

	now := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes the summary, which keeps it first in
	// the workbook.
	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F81BD"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, err
	}

	type teamTotals struct {
		count    int
		duration int
	}
	totals := make([]teamTotals, len(managed))
	names := newSheetNames(summarySheet)

	for i, team := range managed {
		var tasks []models.Task
		err := s.db.Where("team_id = ?", team.ID).
			Preload("Category").
			Preload("Owner").
			Order("created_at DESC").
			Find(&tasks).Error
		if err != nil {
			return nil, err
		}

		sheet := names.claim(team.Name)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}

		if err := writeRow(f, sheet, 1, toCells(taskSheetHeaders)); err != nil {
			return nil, err
		}
		if err := styleRow(f, sheet, 1, len(taskSheetHeaders), headerStyle); err != nil {
			return nil, err
		}

		widths := newColumnWidths(taskSheetHeaders)
		totalDuration := 0
		for row, task := range tasks {
			duration := task.Duration(now)
			totalDuration += duration

			cells := []interface{}{
				task.Title,
				task.Description,
				categoryName(&task),
				task.Status.Human(),
				formatTime(task.StartTime),
				formatTime(task.EndTime),
				duration,
				ownerLabel(&task),
			}
			if err := writeRow(f, sheet, row+2, cells); err != nil {
				return nil, err
			}
			widths.observe(cells)
		}

		// Trailing total row sums the duration column only.
		totalRow := len(tasks) + 2
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("G%d", totalRow), totalDuration); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("A%d", totalRow), boldStyle); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("G%d", totalRow), fmt.Sprintf("G%d", totalRow), boldStyle); err != nil {
			return nil, err
		}

		if err := widths.apply(f, sheet); err != nil {
			return nil, err
		}

		totals[i] = teamTotals{count: len(tasks), duration: totalDuration}
	}

	// Summary sheet: one row per managed team.
	if err := f.SetCellValue(summarySheet, "A1", "Team Summary"); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", boldStyle); err != nil {
		return nil, err
	}
	if err := writeRow(f, summarySheet, 2, toCells(summaryHeaders)); err != nil {
		return nil, err
	}
	if err := styleRow(f, summarySheet, 2, len(summaryHeaders), headerStyle); err != nil {
		return nil, err
	}

	widths := newColumnWidths(summaryHeaders)
	for i, team := range managed {
		cells := []interface{}{team.Name, totals[i].count, totals[i].duration}
		if err := writeRow(f, summarySheet, i+3, cells); err != nil {
			return nil, err
		}
		widths.observe(cells)
	}
	if err := widths.apply(f, summarySheet); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ================== SHEET HELPERS ==================

// sheetNames hands out workbook-unique sheet names. Team names carry
// no uniqueness constraint, so repeats get a numeric suffix within the
// 31-character limit; the summary sheet name is reserved up front so a
// team by that name cannot overwrite the summary block. Excel treats
// sheet names case-insensitively, hence the lowercased keys.
type sheetNames struct {
	used map[string]bool
}

func newSheetNames(reserved ...string) *sheetNames {
	sn := &sheetNames{used: make(map[string]bool)}
	for _, name := range reserved {
		sn.used[strings.ToLower(name)] = true
	}
	return sn
}

func (sn *sheetNames) claim(name string) string {
	base := truncateSheetName(sanitizeSheetName(name), maxSheetNameLen)
	candidate := base
	for n := 2; sn.used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateSheetName(base, maxSheetNameLen-len(suffix)) + suffix
	}
	sn.used[strings.ToLower(candidate)] = true
	return candidate
}

// sanitizeSheetName replaces the characters Excel forbids in sheet
// names. Leading and trailing apostrophes are also rejected, and a
// name with nothing left falls back to a placeholder.
func sanitizeSheetName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "'")
	if strings.TrimSpace(clean) == "" {
		return "Team"
	}
	return clean
}

func truncateSheetName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return name
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampFormat)
}

func categoryName(task *models.Task) string {
	if task.Category == nil {
		return ""
	}
	return task.Category.Name
}

func ownerLabel(task *models.Task) string {
	if task.Owner == nil {
		return ""
	}
	return task.Owner.Label()
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for col, value := range cells {
		name, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, name, value); err != nil {
			return err
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

// columnWidths tracks the widest value seen per column so columns can
// be sized to content, capped at maxColumnWidth.
type columnWidths struct {
	widths []int
}

func newColumnWidths(headers []string) *columnWidths {
	cw := &columnWidths{widths: make([]int, len(headers))}
	cw.observe(toCells(headers))
	return cw
}

func (cw *columnWidths) observe(cells []interface{}) {
	for i, cell := range cells {
		if i >= len(cw.widths) {
			break
		}
		if n := len(fmt.Sprint(cell)); n > cw.widths[i] {
			cw.widths[i] = n
		}
	}
}

func (cw *columnWidths) apply(f *excelize.File, sheet string) error {
	for i, width := range cw.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		adjusted := float64(width + 2)
		if adjusted > maxColumnWidth {
			adjusted = maxColumnWidth
		}
		if err := f.SetColWidth(sheet, col, col, adjusted); err != nil {
			return err
		}
	}
	return nil
}
