package commands

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// tableData is an ad-hoc table of string cells.
type tableData struct {
	headers []string
	rows    [][]string
}

func newTableData(headers ...string) *tableData {
	return &tableData{headers: headers, rows: make([][]string, 0)}
}

func (t *tableData) addRow(row ...string) {
	t.rows = append(t.rows, row)
}

// printTable writes t as a borderless, left-aligned table.
func printTable(w io.Writer, t *tableData) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(t.headers)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	table.AppendBulk(t.rows)
	table.Render()
	return nil
}

// printPairs writes label/value rows separated by a colon.
func printPairs(w io.Writer, pairs [][2]string) error {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(":")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, pair := range pairs {
		table.Append([]string{pair[0], pair[1]})
	}
	table.Render()
	return nil
}
