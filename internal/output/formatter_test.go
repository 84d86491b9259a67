package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/olekukonko/tablewriter/tw"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"csv", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterStdout(t *testing.T) {
	f, err := NewFormatter(FormatMarkdown, "", true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	defer f.Close()

	if f.Format() != FormatMarkdown {
		t.Errorf("Format() = %q, want markdown", f.Format())
	}
	if f.Writer() != os.Stdout {
		t.Error("Writer() should be stdout when no output path is given")
	}
	if !f.colored {
		t.Error("colored should be kept for stdout")
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "growth.json")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	if f.colored {
		t.Error("colored should be false when writing to a file")
	}
	if err := f.Output(map[string]int{"windows": 3}); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if !strings.Contains(string(data), `"windows": 3`) {
		t.Errorf("file content = %s, want indented JSON", data)
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	if _, err := NewFormatter(FormatText, "/nonexistent/directory/out.txt", false); err == nil {
		t.Error("NewFormatter() should error for an unwritable path")
	}
}

func sampleTable() *Table {
	return NewTable(
		"Cost of Debt",
		[]string{"Rating", "Spread"},
		[][]string{
			{"AAA", "1.00%"},
			{"BB", "3.38%"},
		},
		[]string{"2 ratings", ""},
		nil,
	)
}

func TestTableRenderText(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Cost of Debt\n============", "RATING", "SPREAD", "AAA", "3.38%"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderText() missing %q in output:\n%s", want, out)
		}
	}
}

func TestTableRenderTextColored(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().RenderText(&buf, true); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	if !strings.Contains(buf.String(), "AAA") {
		t.Errorf("colored output missing rows:\n%s", buf.String())
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleTable().RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	want := "## Cost of Debt\n\n" +
		"| Rating | Spread |\n" +
		"| ---: | ---: |\n" +
		"| AAA | 1.00% |\n" +
		"| BB | 3.38% |\n" +
		"| 2 ratings |  |\n\n"
	if got := buf.String(); got != want {
		t.Errorf("RenderMarkdown() =\n%q\nwant\n%q", got, want)
	}
}

func TestTableLabelsAndNotes(t *testing.T) {
	table := sampleTable()
	table.Labels = 1
	table.Notes = []string{"Spreads are over the risk-free rate."}

	var md bytes.Buffer
	if err := table.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	want := "## Cost of Debt\n\n" +
		"| Rating | Spread |\n" +
		"| :--- | ---: |\n" +
		"| AAA | 1.00% |\n" +
		"| BB | 3.38% |\n" +
		"| 2 ratings |  |\n\n" +
		"_Spreads are over the risk-free rate._\n\n"
	if got := md.String(); got != want {
		t.Errorf("RenderMarkdown() =\n%q\nwant\n%q", got, want)
	}

	var text bytes.Buffer
	if err := table.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	if !strings.HasSuffix(text.String(), "Spreads are over the risk-free rate.\n\n") {
		t.Errorf("RenderText() should end with the note:\n%s", text.String())
	}

	aligns := table.alignments()
	if len(aligns) != 2 || aligns[0] != tw.AlignLeft || aligns[1] != tw.AlignRight {
		t.Errorf("alignments() = %v, want [left right]", aligns)
	}
}

func TestReportDetails(t *testing.T) {
	detail := sampleTable()
	report := &Report{
		Sections: []Renderable{NewTable("Growth", []string{"Growth"}, [][]string{{"8.00%"}}, nil, nil)},
		Details:  []Renderable{detail},
		Data:     map[string]string{"metric": "operatingIncome"},
	}

	var md bytes.Buffer
	if err := report.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	out := md.String()
	if !strings.Contains(out, "<details>\n<summary>Cost of Debt</summary>\n\n| Rating | Spread |") {
		t.Errorf("RenderMarkdown() should fold the detail table:\n%s", out)
	}
	if strings.Contains(out, "## Cost of Debt") {
		t.Errorf("RenderMarkdown() should use the detail title as the summary only:\n%s", out)
	}
	if !strings.HasSuffix(out, "</details>\n\n") {
		t.Errorf("RenderMarkdown() should close the details block:\n%s", out)
	}
	if detail.Title != "Cost of Debt" {
		t.Errorf("detail title changed to %q", detail.Title)
	}

	var text bytes.Buffer
	if err := report.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	if !strings.Contains(text.String(), "Details\n-------\n\nCost of Debt") {
		t.Errorf("RenderText() should list details after the sections:\n%s", text.String())
	}

	if data, ok := report.RenderData().(map[string]string); !ok || data["metric"] != "operatingIncome" {
		t.Errorf("RenderData() = %v, want the report data", report.RenderData())
	}
}

func TestTableRenderData(t *testing.T) {
	t.Run("rows keyed by header", func(t *testing.T) {
		data, ok := sampleTable().RenderData().([]map[string]string)
		if !ok {
			t.Fatalf("RenderData() type = %T, want []map[string]string", sampleTable().RenderData())
		}
		if len(data) != 2 || data[1]["Rating"] != "BB" || data[1]["Spread"] != "3.38%" {
			t.Errorf("RenderData() = %v", data)
		}
	})

	t.Run("short rows", func(t *testing.T) {
		table := NewTable("", []string{"A", "B"}, [][]string{{"1"}}, nil, nil)
		data := table.RenderData().([]map[string]string)
		if _, ok := data[0]["B"]; ok {
			t.Errorf("RenderData() = %v, want no value for B", data)
		}
	})

	t.Run("structured data wins", func(t *testing.T) {
		payload := map[string]float64{"growth": 0.08}
		table := NewTable("Growth", []string{"Growth"}, [][]string{{"8.00%"}}, nil, payload)
		if got := table.RenderData(); got == nil || got.(map[string]float64)["growth"] != 0.08 {
			t.Errorf("RenderData() = %v, want the wrapped payload", got)
		}
	})
}

func TestReportRender(t *testing.T) {
	report := &Report{
		Title:    "Valuation",
		Sections: []Renderable{sampleTable(), NewTable("Inputs", []string{"Item"}, [][]string{{"cash flow"}}, nil, nil)},
	}

	var text bytes.Buffer
	if err := report.RenderText(&text, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}
	if out := text.String(); !strings.HasPrefix(out, "Valuation\n=========\n") || !strings.Contains(out, "cash flow") {
		t.Errorf("RenderText() output:\n%s", out)
	}

	var md bytes.Buffer
	if err := report.RenderMarkdown(&md); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}
	if out := md.String(); !strings.HasPrefix(out, "# Valuation\n\n## Cost of Debt") || !strings.Contains(out, "## Inputs") {
		t.Errorf("RenderMarkdown() output:\n%s", out)
	}

	data, ok := report.RenderData().(map[string]any)
	if !ok {
		t.Fatalf("RenderData() type = %T", report.RenderData())
	}
	if data["title"] != "Valuation" {
		t.Errorf("title = %v", data["title"])
	}
	if sections := data["sections"].([]any); len(sections) != 2 {
		t.Errorf("len(sections) = %d, want 2", len(sections))
	}

	report.Data = "override"
	if report.RenderData() != "override" {
		t.Error("RenderData() should return Data when set")
	}
}

func TestFormatterOutput(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   any
		check  func(t *testing.T, out string)
	}{
		{
			name:   "text renderable",
			format: FormatText,
			data:   sampleTable(),
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "RATING") {
					t.Errorf("output missing table header:\n%s", out)
				}
			},
		},
		{
			name:   "json renderable",
			format: FormatJSON,
			data:   sampleTable(),
			check: func(t *testing.T, out string) {
				var rows []map[string]string
				if err := json.Unmarshal([]byte(out), &rows); err != nil {
					t.Fatalf("invalid JSON: %v\n%s", err, out)
				}
				if len(rows) != 2 || rows[0]["Rating"] != "AAA" {
					t.Errorf("rows = %v", rows)
				}
			},
		},
		{
			name:   "markdown renderable",
			format: FormatMarkdown,
			data:   sampleTable(),
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, "## Cost of Debt") {
					t.Errorf("output:\n%s", out)
				}
			},
		},
		{
			name:   "toon renderable",
			format: FormatTOON,
			data:   sampleTable(),
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "AAA") || !strings.HasSuffix(out, "\n") {
					t.Errorf("output:\n%s", out)
				}
				if json.Valid([]byte(out)) {
					t.Errorf("TOON output should not be JSON:\n%s", out)
				}
			},
		},
		{
			name:   "raw json",
			format: FormatText,
			data:   map[string]string{"rating": "BBB"},
			check: func(t *testing.T, out string) {
				if strings.TrimSpace(out) != "{\n  \"rating\": \"BBB\"\n}" {
					t.Errorf("output:\n%s", out)
				}
			},
		},
		{
			name:   "raw markdown",
			format: FormatMarkdown,
			data:   []int{1, 2},
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, "```json\n") || !strings.HasSuffix(out, "```\n") {
					t.Errorf("output:\n%s", out)
				}
			},
		},
		{
			name:   "raw toon",
			format: FormatTOON,
			data:   map[string]string{"rating": "BBB"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "rating") || !strings.Contains(out, "BBB") {
					t.Errorf("output:\n%s", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := NewWriterFormatter(tt.format, &buf, false)
			if err := f.Output(tt.data); err != nil {
				t.Fatalf("Output() error: %v", err)
			}
			tt.check(t, buf.String())
		})
	}
}

func TestFormatterJSONError(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterFormatter(FormatJSON, &buf, false)
	if err := f.Output(map[string]any{"bad": make(chan int)}); err == nil {
		t.Error("Output() should fail for values JSON cannot encode")
	}
}
