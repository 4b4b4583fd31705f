package parser

import (
	"strconv"
	"time"
)

// CellKind identifies the type of value a spreadsheet cell holds.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellDate
)

func (k CellKind) String() string {
	switch k {
	case CellNumber:
		return "number"
	case CellText:
		return "text"
	case CellDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is a single typed spreadsheet value. Only the field matching Kind is meaningful.
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
	Date   time.Time
}

// Empty returns a cell with no value.
func Empty() Cell {
	return Cell{Kind: CellEmpty}
}

// Number returns a numeric cell. Spreadsheet date serials are numbers too.
func Number(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

// Text returns a text cell, or an empty cell for "".
func Text(s string) Cell {
	if s == "" {
		return Empty()
	}
	return Cell{Kind: CellText, Text: s}
}

// Date returns a cell holding a native date value.
func Date(t time.Time) Cell {
	return Cell{Kind: CellDate, Date: t}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the cell the way it is shown in previews and read as text.
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellText:
		return c.Text
	case CellDate:
		return c.Date.Format("2006-01-02")
	default:
		return ""
	}
}
