package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/de-tools/cloud-monitor/pkg/models/domain"
)

const (
	moduleName    = "cloudmonitor.ResourceClient"
	moduleVersion = "v1.0.0"

	staticSiteAPIVersion = "2022-03-01"
	metricsAPIVersion    = "2018-01-01"

	metricsInterval = "PT5M"
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

// MetricNames are requested from Azure Monitor for the static site.
var MetricNames = []string{"SiteHits", "SiteErrors", "FunctionHits"}

type Settings struct {
	SubscriptionID string
	ResourceGroup  string
	StaticSiteName string
}

func (s Settings) subscriptionScope() string {
	return "/subscriptions/" + url.PathEscape(s.SubscriptionID)
}

func (s Settings) staticSitePath() string {
	return s.subscriptionScope() +
		"/resourceGroups/" + url.PathEscape(s.ResourceGroup) +
		"/providers/Microsoft.Web/staticSites/" + url.PathEscape(s.StaticSiteName)
}

type StaticSite struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Properties struct {
		ProvisioningState string `json:"provisioningState"`
		DefaultHostname   string `json:"defaultHostname"`
	} `json:"properties"`
}

// ResourceReader reads the static site and its Azure Monitor metrics.
type ResourceReader interface {
	GetStaticSite(ctx context.Context) (*StaticSite, error)
	ListMetrics(ctx context.Context, start, end time.Time) ([]json.RawMessage, error)
}

type armErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ResourceClient issues raw ARM requests through the SDK pipeline, which
// takes care of bearer auth and telemetry headers.
type ResourceClient struct {
	client   *arm.Client
	settings Settings
}

func NewResourceClient(cred azcore.TokenCredential, settings Settings, options *arm.ClientOptions) (*ResourceClient, error) {
	client, err := arm.NewClient(moduleName, moduleVersion, cred, withoutRetries(options))
	if err != nil {
		return nil, fmt.Errorf("failed to create ARM client: %w", err)
	}
	return &ResourceClient{client: client, settings: settings}, nil
}

// withoutRetries copies options and turns off the pipeline retry policy unless
// the caller configured one. Upstream failures surface on the first attempt.
func withoutRetries(options *arm.ClientOptions) *arm.ClientOptions {
	var opts arm.ClientOptions
	if options != nil {
		opts = *options
	}
	if opts.Retry.MaxRetries == 0 {
		opts.Retry.MaxRetries = -1
	}
	return &opts
}

func (c *ResourceClient) GetStaticSite(ctx context.Context) (*StaticSite, error) {
	var site StaticSite
	err := c.get(ctx, "get static site", c.settings.staticSitePath(), url.Values{
		"api-version": {staticSiteAPIVersion},
	}, &site)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (c *ResourceClient) ListMetrics(ctx context.Context, start, end time.Time) ([]json.RawMessage, error) {
	var payload struct {
		Value []json.RawMessage `json:"value"`
	}
	err := c.get(ctx, "list metrics", c.settings.staticSitePath()+"/providers/microsoft.insights/metrics", url.Values{
		"api-version": {metricsAPIVersion},
		"metricnames": {strings.Join(MetricNames, ",")},
		"timespan":    {start.UTC().Format(timestampLayout) + "/" + end.UTC().Format(timestampLayout)},
		"interval":    {metricsInterval},
	}, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Value == nil {
		return []json.RawMessage{}, nil
	}
	return payload.Value, nil
}

func (c *ResourceClient) get(ctx context.Context, op, path string, query url.Values, v any) error {
	req, err := runtime.NewRequest(ctx, http.MethodGet, runtime.JoinPaths(c.client.Endpoint(), path))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Raw().URL.RawQuery = query.Encode()
	req.Raw().Header["Accept"] = []string{"application/json"}

	resp, err := c.client.Pipeline().Do(req)
	if err != nil {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return &domain.UpstreamError{Provider: domain.ProviderAzure, Operation: op, Err: err}
	}

	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return newUpstreamError(op, resp)
	}

	if err := runtime.UnmarshalAsJSON(resp, v); err != nil {
		return &domain.UpstreamError{
			Provider:   domain.ProviderAzure,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response shape: %w", err),
		}
	}
	return nil
}

func newUpstreamError(op string, resp *http.Response) error {
	body, _ := runtime.Payload(resp)

	var envelope armErrorEnvelope
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Error.Message
	if message == "" {
		message = fmt.Sprintf("unexpected status %s", resp.Status)
	}

	return &domain.UpstreamError{
		Provider:   domain.ProviderAzure,
		Operation:  op,
		StatusCode: resp.StatusCode,
		Code:       envelope.Error.Code,
		Message:    message,
	}
}
