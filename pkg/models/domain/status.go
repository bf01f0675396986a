package domain

import "time"

type ProviderID string

const (
	ProviderAzure  ProviderID = "azure"
	ProviderAWSEC2 ProviderID = "aws-ec2"
)

const (
	StatusError   = "ERROR"
	StatusUnknown = "UNKNOWN"

	// URLUnavailable is reported when a provider exposes no public endpoint.
	URLUnavailable = "N/A"
)

// ProviderDescriptor identifies a monitored deployment.
type ProviderDescriptor struct {
	ID     ProviderID // aws-ec2
	Key    string     // aws, used in routes and billing
	Vendor string     // AWS
	Name   string     // AWS EC2 Backend
}

type ServiceStatus struct {
	ID          ProviderID
	Name        string
	Status      string
	URL         string
	Metrics     any // provider-native payload
	Series      []MetricSeries
	LastUpdated time.Time
	Error       string
}

func (s ServiceStatus) Failed() bool {
	return s.Status == StatusError
}

// NewFailedStatus builds the degraded snapshot used when a provider cannot be reached.
func NewFailedStatus(p ProviderDescriptor, err error, at time.Time) ServiceStatus {
	return ServiceStatus{
		ID:          p.ID,
		Name:        p.Name,
		Status:      StatusError,
		URL:         URLUnavailable,
		LastUpdated: at,
		Error:       ErrorMessage(err),
	}
}
