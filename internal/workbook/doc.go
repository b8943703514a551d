// Package workbook turns roster spreadsheets into domain sheets.
//
// Office Open XML workbooks (.xlsx, .xlsm) are read with excelize and legacy
// BIFF workbooks (.xls) with extrame/xls. Only visible sheets are returned,
// in workbook order, with their titles normalized for display.
//
// xlsx cells keep their type: numbers with a date number format become
// native date cells and merged ranges are fanned out so every covered cell
// carries the value of the range's top-left cell. Legacy xls cells are read
// as the formatted text the library produces.
package workbook
