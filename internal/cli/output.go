package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/emiliopalmerini/bcilab/internal/domain"
	"github.com/emiliopalmerini/bcilab/internal/util"
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
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
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

func printExperiments(w io.Writer, exps []*domain.Experiment) {
	if len(exps) == 0 {
		fmt.Fprintln(w, "No experiments found.")
		return
	}
	rows := make([][]string, len(exps))
	for i, e := range exps {
		rows[i] = []string{e.ID, e.Title, string(e.Status), strings.Join(e.Vocabulary, ", "), util.FormatDateTime(e.CreatedAt)}
	}
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Title", "Status", "Vocabulary", "Created"},
		rows, nil))
}

func printSessions(w io.Writer, sessions []*domain.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return
	}
	rows := make([][]string, len(sessions))
	for i, s := range sessions {
		rows[i] = []string{
			s.ID, s.Name, string(s.Status),
			util.FormatNumber(s.TotalTrials), util.FormatNumber(s.SuccessfulTrials),
			util.FormatAccuracy(s.AccuracyRate), util.FormatDateTime(s.StartTime),
			util.FormatDuration(s.StartTime, s.EndTime),
		}
	}
	fmt.Fprintln(w, renderTable(
		[]string{"ID", "Name", "Status", "Trials", "Successful", "Accuracy", "Started", "Duration"},
		rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}))
}

func printSession(w io.Writer, s *domain.Session) {
	fmt.Fprintf(w, "Session:    %s (%s)\n", s.Name, s.ID)
	fmt.Fprintf(w, "Experiment: %s\n", s.ExperimentID)
	fmt.Fprintf(w, "Status:     %s\n", s.Status)
	fmt.Fprintf(w, "Started:    %s\n", util.FormatDateTime(s.StartTime))
	fmt.Fprintf(w, "Duration:   %s\n", util.FormatDuration(s.StartTime, s.EndTime))
	fmt.Fprintf(w, "Trials:     %d (%d successful)\n", s.TotalTrials, s.SuccessfulTrials)
	fmt.Fprintf(w, "Accuracy:   %s\n", util.FormatAccuracy(s.AccuracyRate))
}

func printResults(w io.Writer, results []*domain.DecodedResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results recorded.")
		return
	}
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{util.FormatDateTime(r.Timestamp), r.DetectedWord, util.FormatConfidence(r.ConfidenceScore), successMark(r.WasSuccessful)}
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Time", "Word", "Confidence", "Success"},
		rows, []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
}

func successMark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
