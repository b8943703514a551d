package domain

import (
	"strconv"
	"strings"
	"time"
)

// CellKind identifies what a roster cell holds
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// String returns the lowercase kind name
func (k CellKind) String() string {
	switch k {
	case CellText:
		return "text"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is a single value of a roster grid
type Cell struct {
	Kind   CellKind  `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Number float64   `json:"number,omitempty"`
	Time   time.Time `json:"time,omitempty"`
}

// TextCell builds a text cell, or an empty cell for blank input
func TextCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell
func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

// DateCell builds a native date cell
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

// IsEmpty reports whether the cell carries no value
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String renders the token the scanner works on. Native dates render as
// ISO dates so they go through the same normalization as text tokens.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Time.Format("2006-01-02")
	default:
		return ""
	}
}
