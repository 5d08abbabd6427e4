package main

import (
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"faceangle/internal/analysis"
	"faceangle/internal/results"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func recordsTable(records []analysis.Record) string {
	headers := []string{"Blendshape", "Level", "Intercept", "Effect", "Effect %", "SE", "t", "p", "r", "Groups", "N"}
	aligns := []columnAlignment{
		alignLeft, alignLeft,
		alignRight, alignRight, alignRight, alignRight,
		alignRight, alignRight, alignRight, alignRight, alignRight,
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			blendshapeDisplayName(record.Blendshape),
			string(record.Level),
			strconv.FormatFloat(record.Intercept, 'f', 1, 64),
			strconv.FormatFloat(record.Effect, 'f', 1, 64),
			strconv.Itoa(record.EffectPct),
			strconv.FormatFloat(record.StdErr, 'f', 2, 64),
			strconv.FormatFloat(record.TStat, 'f', 2, 64),
			strconv.FormatFloat(record.PValue, 'f', 4, 64),
			strconv.FormatFloat(record.Correlation, 'f', 2, 64),
			strconv.Itoa(record.NumGroups),
			strconv.Itoa(record.Samples),
		})
	}
	return renderTable(headers, rows, aligns)
}

func runsTable(runs []results.Run) string {
	headers := []string{"Run", "Partition", "Created", "Multiplier", "Min", "Source"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			string(run.Partition),
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(run.Multiplier, 'g', -1, 64),
			strconv.FormatFloat(run.MinThreshold, 'g', -1, 64),
			run.Source,
		})
	}
	return renderTable(headers, rows, aligns)
}

var titleCaser = cases.Title(language.English)

// blendshapeDisplayName turns a camelCase channel name into a readable label,
// e.g. "mouthUpperUpLeft" becomes "Mouth Upper Up Left".
func blendshapeDisplayName(name string) string {
	var builder strings.Builder
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			builder.WriteByte(' ')
		}
		builder.WriteRune(unicode.ToLower(r))
	}
	return titleCaser.String(builder.String())
}
