package api

// TimestampFormat is ISO-8601 UTC with millisecond precision.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

type MetricPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

type MetricSeries struct {
	Name      string        `json:"name"`
	Label     string        `json:"label,omitempty"`
	Unit      string        `json:"unit,omitempty"`
	Statistic string        `json:"statistic,omitempty"`
	Points    []MetricPoint `json:"points"`
}

type ServiceStatus struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Status      string         `json:"status"`
	URL         string         `json:"url"`
	Metrics     any            `json:"metrics"`
	Series      []MetricSeries `json:"series"`
	LastUpdated string         `json:"lastUpdated"`
	Error       string         `json:"error,omitempty"`
}

type MetricsSeries struct {
	Provider string         `json:"provider"`
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Series   []MetricSeries `json:"series"`
}

// Billing is keyed by provider key plus "total" and, when any provider
// failed, "errors".
type Billing map[string]any

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
