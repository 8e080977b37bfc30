package carrier

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"buyback/internal/core/domain/model/tracking"
	"buyback/internal/core/ports"
	"buyback/internal/pkg/errs"
)

var _ ports.TrackingProvider = &TrackingClient{}

// DefaultTrackingPath is the lookup path of the primary aggregator. The
// {carrier} and {number} placeholders are replaced with escaped values.
const DefaultTrackingPath = "/v1/tracking?carrier_code={carrier}&tracking_number={number}"

// TrackingClient fetches tracking from one aggregator. Both aggregators the
// service uses answer with JSON that tracking.ParseResponse understands.
type TrackingClient struct {
	client *client
	path   string
}

// NewTrackingClient builds a client. An empty pathTemplate means
// DefaultTrackingPath; hc may be nil.
func NewTrackingClient(cfg Config, pathTemplate string, hc *http.Client) *TrackingClient {
	if strings.TrimSpace(pathTemplate) == "" {
		pathTemplate = DefaultTrackingPath
	}
	return &TrackingClient{client: newClient(cfg, hc), path: pathTemplate}
}

func (c *TrackingClient) Name() string {
	return c.client.cfg.Name
}

func (c *TrackingClient) Track(ctx context.Context, req ports.TrackRequest) (tracking.Response, error) {
	number := strings.TrimSpace(req.TrackingNumber)
	if number == "" {
		return tracking.Response{}, errs.NewValueIsRequiredError("trackingNumber")
	}

	path := strings.NewReplacer(
		"{carrier}", url.QueryEscape(strings.TrimSpace(req.CarrierCode)),
		"{number}", url.QueryEscape(number),
	).Replace(c.path)

	var raw map[string]any
	if err := c.client.do(ctx, "track", http.MethodGet, path, nil, &raw); err != nil {
		return tracking.Response{}, err
	}
	return tracking.ParseResponse(raw), nil
}
