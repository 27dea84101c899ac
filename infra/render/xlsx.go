package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/manmonths/core/loader"
	"github.com/kilianp07/manmonths/core/model"
)

const (
	// DefaultAnalysisSheet names the sheet holding the allocation grid.
	DefaultAnalysisSheet = "ΑΝΑΛΥΣΗ"
	// SourceSheet holds the copy of the input table.
	SourceSheet = "CV"
	// TotalsLabel heads the yearly totals row.
	TotalsLabel = "ΕΤΗΣΙΑ ΣΥΝΟΛΑ"
)

// Grid coordinates of the analysis sheet, 1-based.
const (
	yearRow     = 2
	monthRow    = 3
	totalsRow   = 5
	firstRow    = 6
	firstCol    = 5
	monthWidth  = 2.5
	matchCol    = 1
	periodCol   = 2
	requestCol  = 3
	claimedMark = "X"
)

const (
	colorYellow = "FFFF00"
	colorRed    = "FF0000"
	colorGreen  = "00FF00"
	colorBlack  = "000000"
	colorWhite  = "FFFFFF"
)

// XLSXConfig tunes the workbook renderer.
type XLSXConfig struct {
	// Template is an optional workbook whose active sheet receives the grid.
	Template      string `json:"template"`
	AnalysisSheet string `json:"analysis_sheet"`
	// PeriodColumn locates the period column of the copied input table for
	// the MATCH formulas.
	PeriodColumn string `json:"period_column"`
}

// XLSX renders the annotated allocation workbook.
type XLSX struct {
	cfg XLSXConfig
}

// NewXLSX returns a workbook renderer with defaults applied.
func NewXLSX(cfg XLSXConfig) *XLSX {
	if cfg.AnalysisSheet == "" {
		cfg.AnalysisSheet = DefaultAnalysisSheet
	}
	if cfg.PeriodColumn == "" {
		cfg.PeriodColumn = loader.PeriodColumn
	}
	return &XLSX{cfg: cfg}
}

func (x *XLSX) Extension() string { return "xlsx" }

// Render writes the workbook to w.
func (x *XLSX) Render(w io.Writer, res *model.Result) error {
	f, err := x.Workbook(res)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

// Workbook builds the workbook in memory.
func (x *XLSX) Workbook(res *model.Result) (*excelize.File, error) {
	f, sheet, err := x.open()
	if err != nil {
		return nil, err
	}
	g := &grid{f: f, sheet: sheet, res: res, styles: newStyles(f)}
	if err := g.draw(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := x.writeSource(g); err != nil {
		_ = f.Close()
		return nil, err
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

// open prepares the workbook and returns the name of the analysis sheet.
// A fresh workbook gets the source sheet first and the analysis sheet
// second.
func (x *XLSX) open() (*excelize.File, string, error) {
	sheet := x.cfg.AnalysisSheet
	if x.cfg.Template == "" {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), SourceSheet); err != nil {
			_ = f.Close()
			return nil, "", err
		}
		if _, err := f.NewSheet(sheet); err != nil {
			_ = f.Close()
			return nil, "", err
		}
		return f, sheet, nil
	}
	f, err := excelize.OpenFile(x.cfg.Template)
	if err != nil {
		return nil, "", fmt.Errorf("open template: %w", err)
	}
	active := f.GetSheetName(f.GetActiveSheetIndex())
	if idx, err := f.GetSheetIndex(SourceSheet); err == nil && idx >= 0 && active != SourceSheet {
		if err := f.DeleteSheet(SourceSheet); err != nil {
			_ = f.Close()
			return nil, "", err
		}
	}
	if active != sheet {
		if err := f.SetSheetName(active, sheet); err != nil {
			_ = f.Close()
			return nil, "", err
		}
	}
	if err := clearTemplate(f, sheet); err != nil {
		_ = f.Close()
		return nil, "", err
	}
	return f, sheet, nil
}

// clearTemplate unmerges ranges touching the header rows and blanks every
// row below the title row.
func clearTemplate(f *excelize.File, sheet string) error {
	merged, err := f.GetMergeCells(sheet)
	if err != nil {
		return err
	}
	for _, m := range merged {
		_, top, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			return err
		}
		_, bottom, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			return err
		}
		if top <= totalsRow && bottom >= yearRow {
			if err := f.UnmergeCell(sheet, m.GetStartAxis(), m.GetEndAxis()); err != nil {
				return err
			}
		}
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	maxCol := 1
	for _, r := range rows {
		if len(r) > maxCol {
			maxCol = len(r)
		}
	}
	for r := yearRow; r <= len(rows); r++ {
		for c := 1; c <= maxCol; c++ {
			cell, _ := excelize.CoordinatesToCellName(c, r)
			if err := f.SetCellValue(sheet, cell, nil); err != nil {
				return err
			}
		}
	}
	if len(rows) >= yearRow {
		last, _ := excelize.CoordinatesToCellName(maxCol, len(rows))
		if err := f.SetCellStyle(sheet, "A2", last, 0); err != nil {
			return err
		}
	}
	return nil
}

func (x *XLSX) writeSource(g *grid) error {
	f := g.f
	if g.res.Source == nil {
		return nil
	}
	if idx, err := f.GetSheetIndex(SourceSheet); err != nil {
		return err
	} else if idx < 0 {
		if _, err := f.NewSheet(SourceSheet); err != nil {
			return err
		}
	}
	t := g.res.Source
	if err := writeRow(f, SourceSheet, 1, t.Header); err != nil {
		return err
	}
	for i, r := range t.Rows {
		if err := writeRow(f, SourceSheet, i+2, r); err != nil {
			return err
		}
	}
	pi := columnIndex(t.Header, x.cfg.PeriodColumn)
	if pi < 0 || len(t.Rows) == 0 {
		return nil
	}
	col, err := excelize.ColumnNumberToName(pi + 1)
	if err != nil {
		return err
	}
	for i := range g.res.Projects {
		row := firstRow + i
		formula := fmt.Sprintf("=MATCH(B%d,%s!$%s$2:$%s$%d,0)", row, SourceSheet, col, col, len(t.Rows)+1)
		if err := f.SetCellFormula(g.sheet, cellName(matchCol, row), formula); err != nil {
			return err
		}
	}
	return nil
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	if len(values) == 0 {
		return nil
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(sheet, cellName(1, row), &cells)
}

// grid draws the analysis sheet.
type grid struct {
	f      *excelize.File
	sheet  string
	res    *model.Result
	styles *styles
}

func (g *grid) monthCol(ym model.YearMonth) (int, bool) {
	for i, y := range g.res.Years {
		if y == ym.Year {
			return firstCol + i*12 + int(ym.Month) - 1, true
		}
	}
	return 0, false
}

func (g *grid) lastCol() int {
	return firstCol + len(g.res.Years)*12 - 1
}

func (g *grid) draw() error {
	steps := []func() error{g.drawHeaders, g.drawTotals, g.drawProjects, g.layout}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *grid) drawHeaders() error {
	for i, y := range g.res.Years {
		start := firstCol + i*12
		first, last := cellName(start, yearRow), cellName(start+11, yearRow)
		if err := g.f.MergeCell(g.sheet, first, last); err != nil {
			return err
		}
		if err := g.f.SetCellValue(g.sheet, first, y); err != nil {
			return err
		}
		fill := YearColor(i)
		font := FontColor(fill)
		bold := false
		if g.res.Year(y) >= g.res.Capacity {
			fill, font, bold = colorRed, colorWhite, true
		}
		id, err := g.styles.get(styleKey{fill: fill, font: font, bold: bold, border: true, center: true})
		if err != nil {
			return err
		}
		if err := g.f.SetCellStyle(g.sheet, first, last, id); err != nil {
			return err
		}
		for m := 1; m <= 12; m++ {
			if err := g.f.SetCellValue(g.sheet, cellName(start+m-1, monthRow), m); err != nil {
				return err
			}
		}
	}
	if len(g.res.Years) == 0 {
		return nil
	}
	id, err := g.styles.get(styleKey{border: true, center: true})
	if err != nil {
		return err
	}
	return g.f.SetCellStyle(g.sheet, cellName(firstCol, monthRow), cellName(g.lastCol(), monthRow), id)
}

func (g *grid) drawTotals() error {
	label := cellName(periodCol, totalsRow)
	if err := g.f.SetCellValue(g.sheet, label, TotalsLabel); err != nil {
		return err
	}
	id, err := g.styles.get(styleKey{bold: true, border: true})
	if err != nil {
		return err
	}
	if err := g.f.SetCellStyle(g.sheet, label, label, id); err != nil {
		return err
	}
	for i, y := range g.res.Years {
		start := firstCol + i*12
		first, last := cellName(start, totalsRow), cellName(start+11, totalsRow)
		if err := g.f.MergeCell(g.sheet, first, last); err != nil {
			return err
		}
		total := g.res.Year(y)
		if err := g.f.SetCellValue(g.sheet, first, total); err != nil {
			return err
		}
		key := styleKey{bold: true, border: true, center: true}
		switch {
		case total >= g.res.Capacity:
			key.fill, key.font = colorRed, colorWhite
		case total > 0:
			key.fill, key.font = colorGreen, colorBlack
		}
		id, err := g.styles.get(key)
		if err != nil {
			return err
		}
		if err := g.f.SetCellStyle(g.sheet, first, last, id); err != nil {
			return err
		}
	}
	return nil
}

func (g *grid) drawProjects() error {
	plain, err := g.styles.get(styleKey{border: true})
	if err != nil {
		return err
	}
	short, err := g.styles.get(styleKey{border: true, bold: true, font: colorRed})
	if err != nil {
		return err
	}
	full, err := g.styles.get(styleKey{border: true, font: colorBlack})
	if err != nil {
		return err
	}
	claimed, err := g.styles.get(styleKey{border: true, fill: colorYellow, center: true})
	if err != nil {
		return err
	}
	for i, p := range g.res.Projects {
		row := firstRow + i
		b, c := cellName(periodCol, row), cellName(requestCol, row)
		if err := g.f.SetCellValue(g.sheet, b, p.PeriodText); err != nil {
			return err
		}
		if err := g.f.SetCellValue(g.sheet, c, p.Requested); err != nil {
			return err
		}
		if err := g.f.SetCellStyle(g.sheet, b, b, plain); err != nil {
			return err
		}
		reqStyle := full
		if p.Unallocated > 0 {
			reqStyle = short
		}
		if err := g.f.SetCellStyle(g.sheet, c, c, reqStyle); err != nil {
			return err
		}
		if len(g.res.Years) > 0 {
			if err := g.f.SetCellStyle(g.sheet, cellName(firstCol, row), cellName(g.lastCol(), row), plain); err != nil {
				return err
			}
		}
		for _, slot := range p.Slots {
			col, ok := g.monthCol(slot)
			if !ok {
				continue
			}
			cell := cellName(col, row)
			if err := g.f.SetCellValue(g.sheet, cell, claimedMark); err != nil {
				return err
			}
			if err := g.f.SetCellStyle(g.sheet, cell, cell, claimed); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *grid) layout() error {
	if len(g.res.Years) > 0 {
		first, _ := excelize.ColumnNumberToName(firstCol)
		last, _ := excelize.ColumnNumberToName(g.lastCol())
		if err := g.f.SetColWidth(g.sheet, first, last, monthWidth); err != nil {
			return err
		}
	}
	return g.f.SetPanes(g.sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      requestCol,
		TopLeftCell: "D1",
		ActivePane:  "topRight",
	})
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// styleKey describes a cell style; equal keys share one style id.
type styleKey struct {
	fill   string
	font   string
	bold   bool
	border bool
	center bool
}

type styles struct {
	f   *excelize.File
	ids map[styleKey]int
}

func newStyles(f *excelize.File) *styles {
	return &styles{f: f, ids: make(map[styleKey]int)}
}

func (s *styles) get(k styleKey) (int, error) {
	if id, ok := s.ids[k]; ok {
		return id, nil
	}
	st := &excelize.Style{}
	if k.fill != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{k.fill}}
	}
	if k.font != "" || k.bold {
		st.Font = &excelize.Font{Bold: k.bold, Color: k.font}
	}
	if k.border {
		for _, side := range []string{"left", "right", "top", "bottom"} {
			st.Border = append(st.Border, excelize.Border{Type: side, Color: colorBlack, Style: 1})
		}
	}
	if k.center {
		st.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	}
	id, err := s.f.NewStyle(st)
	if err != nil {
		return 0, err
	}
	s.ids[k] = id
	return id, nil
}

// AnalysisSheet returns the configured analysis sheet name.
func (x *XLSX) AnalysisSheet() string { return x.cfg.AnalysisSheet }
