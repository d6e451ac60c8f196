package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"skillbridge/internal/usecase"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary         = "Summary"
	SheetSkills          = "Skills"
	SheetRecommendations = "Recommendations"
)

// WriteXLSX renders analyses as a workbook: one summary row per analysis,
// a matched/missing row per required skill and one row per resource.
func WriteXLSX(w io.Writer, results []usecase.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetSkills, SheetRecommendations} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeSummary(f, styles, results); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	if err := writeSkills(f, styles, results); err != nil {
		return fmt.Errorf("skills sheet: %w", err)
	}
	if err := writeRecommendations(f, styles, results); err != nil {
		return fmt.Errorf("recommendations sheet: %w", err)
	}

	return f.Write(w)
}

// SaveXLSX writes the workbook to path, adding the .xlsx extension if
// missing.
func SaveXLSX(path string, results []usecase.AnalysisResult) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteXLSX(out, results); err != nil {
		_ = out.Close()
		return "", err
	}
	return path, out.Close()
}

type styles struct {
	header  int
	matched int
	missing int
	link    int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.matched, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	if s.missing, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	if s.link, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0563C1", Underline: "single"},
	}); err != nil {
		return s, err
	}
	return s, nil
}

func writeHeader(f *excelize.File, sheet string, style int, cols ...string) error {
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, c); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeSummary(f *excelize.File, s styles, results []usecase.AnalysisResult) error {
	if err := writeHeader(f, SheetSummary, s.header,
		"Job ID", "Role", "Match Score", "Skill Match %", "Matched", "Missing", "Extracted Skills"); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetSummary, "B", "B", 30)
	_ = f.SetColWidth(SheetSummary, "G", "G", 60)

	for i, r := range results {
		if err := writeRow(f, SheetSummary, i+2,
			r.JobID, r.Role, r.MatchScore, r.SkillMatch,
			len(r.MatchedSkills), len(r.MissingSkills), strings.Join(r.ExtractedSkills, ", "),
		); err != nil {
			return err
		}
	}
	return nil
}

func writeSkills(f *excelize.File, s styles, results []usecase.AnalysisResult) error {
	if err := writeHeader(f, SheetSkills, s.header, "Job ID", "Role", "Skill", "Status"); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetSkills, "B", "C", 28)

	row := 2
	emit := func(r usecase.AnalysisResult, skill, status string, style int) error {
		if err := writeRow(f, SheetSkills, row, r.JobID, r.Role, skill, status); err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetSkills, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), style); err != nil {
			return err
		}
		row++
		return nil
	}
	for _, r := range results {
		for _, sk := range r.MatchedSkills {
			if err := emit(r, sk, "matched", s.matched); err != nil {
				return err
			}
		}
		for _, sk := range r.MissingSkills {
			if err := emit(r, sk, "missing", s.missing); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRecommendations(f *excelize.File, s styles, results []usecase.AnalysisResult) error {
	if err := writeHeader(f, SheetRecommendations, s.header,
		"Job ID", "Skill", "Priority", "Resource", "Type", "URL"); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetRecommendations, "D", "D", 45)
	_ = f.SetColWidth(SheetRecommendations, "F", "F", 60)

	row := 2
	for _, r := range results {
		for _, rec := range r.Recommendations {
			for _, res := range rec.Resources {
				if err := writeRow(f, SheetRecommendations, row,
					r.JobID, rec.Skill, rec.Priority, res.Title, res.Type, res.URL); err != nil {
					return err
				}
				cell := fmt.Sprintf("F%d", row)
				if err := f.SetCellHyperLink(SheetRecommendations, cell, res.URL, "External"); err != nil {
					return err
				}
				if err := f.SetCellStyle(SheetRecommendations, cell, cell, s.link); err != nil {
					return err
				}
				row++
			}
		}
	}
	return nil
}
