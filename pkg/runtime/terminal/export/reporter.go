package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/cloud-monitor/pkg/adapters"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type TableConfig struct {
	NameWidth   int
	StatusWidth int
	ValueWidth  int
	DetailWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:   24,
		StatusWidth: 12,
		ValueWidth:  14,
		DetailWidth: 44,
	}
}

// Reporter prints snapshots as text tables or as the JSON served by the API.
type Reporter struct {
	writer io.Writer
	config TableConfig
	format string
}

func NewReporter(writer io.Writer, format string) (*Reporter, error) {
	if writer == nil {
		writer = os.Stdout
	}
	switch format {
	case "", FormatTable:
		format = FormatTable
	case FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported output format %q, expected %s or %s", format, FormatTable, FormatJSON)
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
		format: format,
	}, nil
}

func (c *Reporter) HandleStatus(statuses []domain.ServiceStatus) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapServiceStatusesDomainToApi(statuses))
	}

	tmpl := `
Cloud Status ({{len .}} providers)

{{separator}}
{{formatRow "Provider" "Status" "Last Updated" "URL"}}
{{separator}}
{{range .}}{{formatRow .Name .Status (timestamp .LastUpdated) .URL}}
{{end}}{{separator}}
{{range .}}{{if .Error}}! {{.Name}}: {{.Error}}
{{end}}{{end}}`

	return c.execute("status", tmpl, statuses)
}

func (c *Reporter) HandleBilling(billing domain.BillingSnapshot, providers []domain.ProviderDescriptor) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapBillingDomainToApi(billing))
	}

	type row struct {
		Name   string
		Amount string
		Error  string
	}
	rows := make([]row, 0, len(providers))
	for _, p := range providers {
		rows = append(rows, row{
			Name:   p.Name,
			Amount: fmt.Sprintf("%.2f", billing.Costs[p.Key]),
			Error:  billing.Errors[p.Key],
		})
	}

	tmpl := `
Month-to-date Billing (USD)

{{separator}}
{{formatRow "Provider" "Amount" "" "Error"}}
{{separator}}
{{range .Rows}}{{formatRow .Name .Amount "" .Error}}
{{end}}{{separator}}
{{formatRow "Total" (printf "%.2f" .Total) "" ""}}
{{separator}}
`

	return c.execute("billing", tmpl, struct {
		Rows  []row
		Total float64
	}{Rows: rows, Total: billing.Total})
}

func (c *Reporter) HandleMetrics(snapshot *domain.MetricsSnapshot) error {
	if c.format == FormatJSON {
		return c.writeJSON(adapters.MapMetricsSeriesDomainToApi(*snapshot))
	}

	tmpl := `
{{.Provider}} metrics ({{timestamp .Start}} to {{timestamp .End}})

{{separator}}
{{formatRow "Metric" "Statistic" "Latest" "Unit / Points"}}
{{separator}}
{{range .Series}}{{formatRow .Name .Statistic (latest .Points) (printf "%s / %d" .Unit (len .Points))}}
{{end}}{{separator}}
`

	return c.execute("metrics", tmpl, snapshot)
}

func (c *Reporter) execute(name, text string, data any) error {
	funcMap := template.FuncMap{
		"formatRow": func(name, status, value, detail string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s |",
				c.config.NameWidth, name,
				c.config.StatusWidth, status,
				c.config.ValueWidth, value,
				c.config.DetailWidth, detail)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.StatusWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2),
				strings.Repeat("-", c.config.DetailWidth+2))
		},
		"timestamp": adapters.FormatTimestamp,
		"latest": func(points []domain.MetricPoint) string {
			if len(points) == 0 {
				return "-"
			}
			return fmt.Sprintf("%.2f", points[len(points)-1].Value)
		},
	}

	t, err := template.New(name).Funcs(funcMap).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, data)
}

func (c *Reporter) writeJSON(v any) error {
	enc := json.NewEncoder(c.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
