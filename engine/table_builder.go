package engine

import (
	"github.com/spektr-org/plotdash/dataset"
)

// ============================================================================
// TABLE BUILDER — Produces a page of TableData from the dataset
// ============================================================================
// Columns come straight from the dataset header, in order. Numbers are right
// aligned, text left aligned. Missing cells render as empty strings.
// ============================================================================

// BuildTable produces page (0-based) of the dataset. Pages past the end are
// clamped to the last page.
func BuildTable(t *dataset.Table, page, pageSize int) *TableData {
	if pageSize <= 0 {
		pageSize = 10
	}

	cols := t.Columns()
	columns := make([]Column, 0, len(cols))
	for _, c := range cols {
		meta := c.Meta()
		col := Column{
			Key:   c.Name(),
			Label: c.Name(),
			Type:  "text",
			Align: "left",
		}
		if meta.IsNumeric() {
			col.Type = "number"
			col.Align = "right"
		}
		columns = append(columns, col)
	}

	total := t.Len()
	pageCount := (total + pageSize - 1) / pageSize
	if pageCount == 0 {
		pageCount = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= pageCount {
		page = pageCount - 1
	}

	start := page * pageSize
	end := min(start+pageSize, total)

	rows := make([][]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, t.Row(i))
	}

	return &TableData{
		Title:     t.Name(),
		Columns:   columns,
		Rows:      rows,
		Page:      page,
		PageSize:  pageSize,
		PageCount: pageCount,
		TotalRows: total,
	}
}

// Table returns a page of the bound dataset using the binder page size.
func (b *Binder) Table(page int) *TableData {
	return BuildTable(b.table, page, b.cfg.PageSize)
}
