// Package gcp implements the provider client on the Google Cloud REST APIs.
//
// Every client is built from a single caller credential and owns a private
// transport; Application Default Credentials are never consulted.
package gcp

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/cloudasset/v1"
	"google.golang.org/api/cloudresourcemanager/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/serviceusage/v1"

	"github.com/ppiankov/gcpwatch/internal/credential"
	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/metrics"
	"github.com/ppiankov/gcpwatch/internal/provider"
)

// Endpoints override the Google API base URLs, for emulators and tests.
// Empty values keep the Google defaults.
type Endpoints struct {
	ServiceHealth   string `mapstructure:"service_health" validate:"omitempty,url"`
	CloudAsset      string `mapstructure:"cloud_asset" validate:"omitempty,url"`
	ResourceManager string `mapstructure:"resource_manager" validate:"omitempty,url"`
	ServiceUsage    string `mapstructure:"service_usage" validate:"omitempty,url"`
}

// Config configures client construction.
type Config struct {
	Endpoints      Endpoints
	UserAgent      string
	RequestTimeout time.Duration
}

// Factory builds one isolated Client per credential.
type Factory struct {
	cfg     Config
	metrics *metrics.Metrics
}

// NewFactory validates cfg. A malformed endpoint is a ConfigurationError.
func NewFactory(cfg Config, m *metrics.Metrics) (*Factory, error) {
	for _, ep := range []string{
		cfg.Endpoints.ServiceHealth,
		cfg.Endpoints.CloudAsset,
		cfg.Endpoints.ResourceManager,
		cfg.Endpoints.ServiceUsage,
	} {
		if ep == "" {
			continue
		}
		if err := checkEndpoint(ep); err != nil {
			return nil, err
		}
	}
	return &Factory{cfg: cfg, metrics: m}, nil
}

func checkEndpoint(ep string) error {
	u, err := url.Parse(ep)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errs.Configuration("endpoint override must be an absolute http(s) URL").WithCause(err)
	}
	return nil
}

// New returns a client that sends cred on every request. The client must be
// closed when the call ends.
func (f *Factory) New(ctx context.Context, cred credential.Credential) (provider.Client, error) {
	if cred.Token() == "" {
		return nil, errs.Authentication("no bearer credential supplied")
	}

	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, errs.Configuration("default transport is not an *http.Transport")
	}
	tr := base.Clone()
	hc := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: cred.Token(),
				TokenType:   "Bearer",
			}),
			Base: tr,
		},
		Timeout: f.cfg.RequestTimeout,
	}

	opts := func(endpoint string) []option.ClientOption {
		o := []option.ClientOption{option.WithHTTPClient(hc)}
		if f.cfg.UserAgent != "" {
			o = append(o, option.WithUserAgent(f.cfg.UserAgent))
		}
		if endpoint != "" {
			o = append(o, option.WithEndpoint(withSlash(endpoint)))
		}
		return o
	}

	c := &Client{
		hc:        hc,
		transport: tr,
		health:    newHealthService(hc, f.cfg.Endpoints.ServiceHealth, f.cfg.UserAgent),
	}
	var err error
	if c.asset, err = cloudasset.NewService(ctx, opts(f.cfg.Endpoints.CloudAsset)...); err != nil {
		return nil, f.fail(tr, err)
	}
	if c.crm, err = cloudresourcemanager.NewService(ctx, opts(f.cfg.Endpoints.ResourceManager)...); err != nil {
		return nil, f.fail(tr, err)
	}
	if c.usage, err = serviceusage.NewService(ctx, opts(f.cfg.Endpoints.ServiceUsage)...); err != nil {
		return nil, f.fail(tr, err)
	}

	f.metrics.IncrementClients()
	return c, nil
}

func (f *Factory) fail(tr *http.Transport, err error) error {
	tr.CloseIdleConnections()
	return errs.Configuration("failed to construct provider client").WithCause(err)
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
