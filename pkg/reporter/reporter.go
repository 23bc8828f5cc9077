package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/amosWeiskopf/linkscout/internal/models"
	"github.com/amosWeiskopf/linkscout/pkg/utils"
)

// Supported report formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatTable    = "table"
)

// ErrUnsupportedFormat is returned for unknown report formats.
var ErrUnsupportedFormat = errors.New("unsupported format")

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

// Count pairs a name with the number of records it appears in
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary describes the content of an output file
type Summary struct {
	Path          string    `json:"path"`
	GeneratedAt   time.Time `json:"generated_at"`
	Records       int       `json:"records"`
	UniquePages   int       `json:"unique_pages"`
	UniqueLinks   int       `json:"unique_links"`
	TopPages      []Count   `json:"top_pages"`
	TopDomains    []Count   `json:"top_domains"`
	MalformedRows int       `json:"malformed_rows"`
}

// Reporter handles report generation in various formats
type Reporter struct {
	top int
}

// New creates a Reporter listing at most top entries per ranking.
// top <= 0 means no limit.
func New(top int) *Reporter {
	return &Reporter{top: top}
}

// ReadRecords reads every LinkRecord from an output file, skipping the
// header row. Rows without exactly two fields are counted as malformed.
func ReadRecords(r io.Reader) ([]models.LinkRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var records []models.LinkRecord
	malformed := 0
	first := true
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if slices.Equal(row, Header) {
				continue
			}
		}
		if len(row) != 2 {
			malformed++
			continue
		}
		records = append(records, models.LinkRecord{PageURL: row[0], Href: row[1]})
	}
	return records, malformed, nil
}

// LoadSummary reads the output file at path and summarizes it.
func (r *Reporter) LoadSummary(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, malformed, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	summary := r.Summarize(records)
	summary.Path = path
	summary.MalformedRows = malformed
	return summary, nil
}

// Summarize builds a Summary from records
func (r *Reporter) Summarize(records []models.LinkRecord) *Summary {
	pages := make(map[string]int)
	links := make(map[string]bool)
	domains := make(map[string]int)

	for _, rec := range records {
		pages[rec.PageURL]++
		links[rec.Href] = true
		if domain := utils.RegistrableDomain(rec.Href); domain != "" {
			domains[domain]++
		}
	}

	return &Summary{
		GeneratedAt: time.Now().UTC(),
		Records:     len(records),
		UniquePages: len(pages),
		UniqueLinks: len(links),
		TopPages:    r.rank(pages),
		TopDomains:  r.rank(domains),
	}
}

// rank orders counts by count desc, then name
func (r *Reporter) rank(counts map[string]int) []Count {
	ranked := make([]Count, 0, len(counts))
	for name, n := range counts {
		ranked = append(ranked, Count{Name: name, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count == ranked[j].Count {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].Count > ranked[j].Count
	})
	if r.top > 0 && len(ranked) > r.top {
		ranked = ranked[:r.top]
	}
	return ranked
}

// Render formats a summary in the specified format
func (r *Reporter) Render(summary *Summary, format string) (string, error) {
	switch format {
	case FormatJSON:
		return r.generateJSON(summary)
	case FormatMarkdown:
		return r.generateMarkdown(summary)
	case FormatTable:
		return r.generateTable(summary), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// generateJSON creates a JSON formatted report
func (r *Reporter) generateJSON(summary *Summary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

// generateMarkdown creates a Markdown formatted report
func (r *Reporter) generateMarkdown(summary *Summary) (string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Dofollow Link Report\n\n")
	if summary.Path != "" {
		fmt.Fprintf(&buf, "*Source: %s*\n\n", summary.Path)
	}
	fmt.Fprintf(&buf, "*Generated on %s*\n\n", summary.GeneratedAt.Format("January 2, 2006"))

	fmt.Fprintf(&buf, "| Metric | Value |\n")
	fmt.Fprintf(&buf, "|--------|-------|\n")
	fmt.Fprintf(&buf, "| Records | %d |\n", summary.Records)
	fmt.Fprintf(&buf, "| Source pages | %d |\n", summary.UniquePages)
	fmt.Fprintf(&buf, "| Distinct links | %d |\n", summary.UniqueLinks)
	if summary.MalformedRows > 0 {
		fmt.Fprintf(&buf, "| Malformed rows | %d |\n", summary.MalformedRows)
	}
	fmt.Fprintf(&buf, "\n")

	writeCounts := func(title, column string, counts []Count) {
		if len(counts) == 0 {
			return
		}
		fmt.Fprintf(&buf, "## %s\n\n", title)
		fmt.Fprintf(&buf, "| %s | Links |\n", column)
		fmt.Fprintf(&buf, "|------|-------|\n")
		for _, c := range counts {
			fmt.Fprintf(&buf, "| %s | %d |\n", markdownEscaper.Replace(c.Name), c.Count)
		}
		fmt.Fprintf(&buf, "\n")
	}
	writeCounts("Top Linked Domains", "Domain", summary.TopDomains)
	writeCounts("Top Source Pages", "Page", summary.TopPages)

	return buf.String(), nil
}

// generateTable creates an ASCII table report
func (r *Reporter) generateTable(summary *Summary) string {
	var buf bytes.Buffer

	totals := table.NewWriter()
	totals.SetOutputMirror(&buf)
	totals.AppendHeader(table.Row{"Metric", "Value"})
	totals.AppendRow(table.Row{"Records", summary.Records})
	totals.AppendRow(table.Row{"Source pages", summary.UniquePages})
	totals.AppendRow(table.Row{"Distinct links", summary.UniqueLinks})
	if summary.MalformedRows > 0 {
		totals.AppendRow(table.Row{"Malformed rows", summary.MalformedRows})
	}
	totals.Render()

	renderCounts := func(title, column string, counts []Count) {
		if len(counts) == 0 {
			return
		}
		fmt.Fprintln(&buf)
		t := table.NewWriter()
		t.SetOutputMirror(&buf)
		t.SetTitle(title)
		t.AppendHeader(table.Row{"#", column, "Links"})
		for i, c := range counts {
			t.AppendRow(table.Row{i + 1, utils.TruncateText(c.Name, 80), c.Count})
		}
		t.Render()
	}
	renderCounts("Top Linked Domains", "Domain", summary.TopDomains)
	renderCounts("Top Source Pages", "Page", summary.TopPages)

	return buf.String()
}
