package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andreagrandi/conformance-wizard/internal/config"
	"github.com/andreagrandi/conformance-wizard/internal/conformance"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxDetailLength = 80

// TestCasesTable renders the computed test cases in suite order.
func TestCasesTable(theme Theme, cases []conformance.TestCase) string {
	if len(cases) == 0 {
		return theme.Warning.Render("No test cases found")
	}

	t := newTable()
	t.AppendHeader(header(theme, "ID", "NAME", "METHOD", "ENDPOINT"))

	for _, testCase := range cases {
		t.AppendRow(table.Row{
			testCase.ID,
			testCase.Name,
			testCase.Input.Method,
			testCase.Input.Endpoint,
		})
	}

	return t.Render()
}

// ResultsTable renders test case results ordered by ID with a pass/fail
// footer.
func ResultsTable(theme Theme, results map[string]conformance.TestCaseResult) string {
	if len(results) == 0 {
		return theme.Warning.Render("No test case results found")
	}

	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	t := newTable()
	t.AppendHeader(header(theme, "ID", "ENDPOINT", "RESULT", "DETAIL"))

	passed := 0
	for _, id := range ids {
		result := results[id]
		if result.Pass {
			passed++
		}

		t.AppendRow(table.Row{
			id,
			result.Endpoint,
			verdict(theme, result.Pass),
			truncate(failureDetail(result)),
		})
	}

	t.AppendFooter(table.Row{"", "", "PASSED", fmt.Sprintf("%d/%d", passed, len(results))})

	return t.Render()
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

func header(theme Theme, titles ...string) table.Row {
	row := make(table.Row, 0, len(titles))
	for _, title := range titles {
		if theme.Colored {
			row = append(row, text.FgHiCyan.Sprint(title))
			continue
		}
		row = append(row, title)
	}
	return row
}

func verdict(theme Theme, pass bool) string {
	switch {
	case pass && theme.Colored:
		return text.FgGreen.Sprint("PASS")
	case pass:
		return "PASS"
	case theme.Colored:
		return text.FgRed.Sprint("FAIL")
	default:
		return "FAIL"
	}
}

func failureDetail(result conformance.TestCaseResult) string {
	messages := make([]string, 0, len(result.Fail))

	for _, fail := range result.Fail {
		if fail.TestCaseMessage != "" {
			messages = append(messages, fail.TestCaseMessage)
		}
		if fail.GeneralError != "" {
			messages = append(messages, fail.GeneralError)
		}
	}

	if len(messages) == 0 {
		return result.Detail
	}

	return strings.Join(messages, "; ")
}

func truncate(value string) string {
	if len(value) <= maxDetailLength {
		return value
	}

	return value[:maxDetailLength-3] + "..."
}

// FeaturesTable renders feature flags with where their value comes from.
func FeaturesTable(theme Theme, features []config.FeatureStatus) string {
	t := newTable()
	t.AppendHeader(header(theme, "FEATURE", "STATUS", "SOURCE", "DESCRIPTION"))

	for _, feature := range features {
		status := "disabled"
		if feature.Enabled {
			status = "enabled"
		}

		source := "default"
		if feature.Configured {
			source = "config"
		}

		t.AppendRow(table.Row{feature.Name, status, source, feature.Description})
	}

	return t.Render()
}
