package gcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"google.golang.org/api/googleapi"

	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/provider"
)

const (
	healthBasePath = "https://servicehealth.googleapis.com/"

	// Service Health responses are small; anything larger is not an event.
	maxHealthResponse = 8 << 20
)

// healthService calls the Service Health v1 REST surface on the client's own
// http.Client, the same way the generated REST packages do.
type healthService struct {
	hc        *http.Client
	basePath  string
	userAgent string
}

type eventList struct {
	Events             []map[string]any `json:"events"`
	OrganizationEvents []map[string]any `json:"organizationEvents"`
	NextPageToken      string           `json:"nextPageToken"`
}

func newHealthService(hc *http.Client, endpoint, userAgent string) *healthService {
	base := healthBasePath
	if endpoint != "" {
		base = withSlash(endpoint)
	}
	return &healthService{hc: hc, basePath: base, userAgent: userAgent}
}

// list reads one page of "<parent>/<collection>".
func (s *healthService) list(ctx context.Context, collection string, q provider.EventQuery) (*eventList, error) {
	params := url.Values{}
	if q.Filter != "" {
		params.Set("filter", q.Filter)
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.PageToken != "" {
		params.Set("pageToken", q.PageToken)
	}

	var out eventList
	if err := s.get(ctx, "v1/{+parent}/"+collection, map[string]string{"parent": q.Parent}, params, &out); err != nil {
		return nil, errs.Classify(err, q.Parent)
	}
	return &out, nil
}

// event fetches one event resource by full name.
func (s *healthService) event(ctx context.Context, name string) (map[string]any, error) {
	var out map[string]any
	if err := s.get(ctx, "v1/{+name}", map[string]string{"name": name}, nil, &out); err != nil {
		return nil, errs.Classify(err, name)
	}
	return out, nil
}

func (s *healthService) get(ctx context.Context, path string, expand map[string]string, params url.Values, dst any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("alt", "json")
	params.Set("prettyPrint", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleapi.ResolveRelative(s.basePath, path)+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	googleapi.Expand(req.URL, expand)
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	res, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer googleapi.CloseBody(res)
	if err := googleapi.CheckResponse(res); err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxHealthResponse))
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errs.Internal("failed to decode provider response").WithCause(err)
	}
	return nil
}
