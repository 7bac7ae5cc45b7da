package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/rshade/recordview/internal/gateway"
	"github.com/rshade/recordview/internal/pagination"
)

// Output formats.
const (
	outputFormatTable = "table"
	outputFormatJSON  = "json"
	outputFormatYAML  = "yaml"
)

// ErrInvalidOutputFormat is returned for an unsupported --output value.
var ErrInvalidOutputFormat = errors.New("output format must be one of: table, json, yaml")

// printer is the locale-aware message printer for amounts.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

func parseOutputFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case outputFormatTable, outputFormatJSON, outputFormatYAML:
		return f, nil
	case "yml":
		return outputFormatYAML, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidOutputFormat, s)
	}
}

// formatAmount formats a total with thousand separators and two decimals.
func formatAmount(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

func joinFields(fields []string) string {
	return strings.Join(fields, ", ")
}

// recordsOutput is the machine-readable form of one rendered page.
type recordsOutput struct {
	Query     string           `json:"query"      yaml:"query"`
	Page      int              `json:"page"       yaml:"page"`
	PageCount int              `json:"page_count" yaml:"page_count"`
	PageSize  int              `json:"page_size"  yaml:"page_size"`
	Total     int              `json:"total"      yaml:"total"`
	FirstRow  int              `json:"first_row"  yaml:"first_row"`
	LastRow   int              `json:"last_row"   yaml:"last_row"`
	Pages     []int            `json:"pages"      yaml:"pages"`
	Items     []gateway.Record `json:"items"      yaml:"items"`
}

func newRecordsOutput(key string, view pagination.View, items []gateway.Record) recordsOutput {
	if items == nil {
		items = []gateway.Record{}
	}
	pages := view.Pages
	if pages == nil {
		pages = []int{}
	}
	return recordsOutput{
		Query:     key,
		Page:      view.CurrentPage,
		PageCount: view.TotalPages,
		PageSize:  view.PageSize,
		Total:     view.TotalItems,
		FirstRow:  view.FirstRow,
		LastRow:   view.LastRow,
		Pages:     pages,
		Items:     items,
	}
}

func renderRecords(w io.Writer, format string, out recordsOutput) error {
	switch format {
	case outputFormatJSON:
		return renderJSON(w, out)
	case outputFormatYAML:
		return renderYAML(w, out)
	default:
		return renderRecordsTable(w, out)
	}
}

func renderRecordsTable(w io.Writer, out recordsOutput) error {
	if len(out.Items) == 0 {
		_, _ = fmt.Fprintln(w, "(0 records)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Total", Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	t.AppendHeader(table.Row{"Receipt", "Date", "Seller", "Customer", "Total"})
	var sum float64
	for _, rec := range out.Items {
		t.AppendRow(table.Row{rec.ID, rec.Date, rec.Seller, rec.Customer, formatAmount(rec.Total)})
		sum += rec.Total
	}
	t.AppendFooter(table.Row{"", "", "", "Page total", formatAmount(sum)})
	t.Render()

	_, _ = fmt.Fprintf(w, "Page %d of %d  %d–%d of %d  %s\n",
		out.Page, out.PageCount, out.FirstRow, out.LastRow, out.Total, pagerLine(out))
	return nil
}

// pagerLine draws the visible page window with the current page bracketed.
func pagerLine(out recordsOutput) string {
	parts := make([]string, 0, len(out.Pages))
	for _, p := range out.Pages {
		if p == out.Page {
			parts = append(parts, fmt.Sprintf("[%d]", p))
		} else {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	return strings.Join(parts, " ")
}

func renderIndexes(w io.Writer, format string, indexes gateway.Indexes) error {
	switch format {
	case outputFormatJSON:
		return renderJSON(w, indexes)
	case outputFormatYAML:
		return renderYAML(w, indexes)
	default:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Table", "ID", "Name"})
		for _, id := range indexes.Sellers.IDs() {
			t.AppendRow(table.Row{"sellers", id, indexes.Sellers[id]})
		}
		t.AppendSeparator()
		for _, id := range indexes.Customers.IDs() {
			t.AppendRow(table.Row{"customers", id, indexes.Customers[id]})
		}
		t.Render()
		return nil
	}
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2) //nolint:mnd // Conventional YAML indent.
	return enc.Encode(v)
}
