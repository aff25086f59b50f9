package gcp

import (
	"context"
	"net/http"
	"strings"

	"google.golang.org/api/cloudasset/v1"
	"google.golang.org/api/cloudresourcemanager/v3"
	"google.golang.org/api/serviceusage/v1"

	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/provider"
)

// Client is a provider.Client bound to one credential.
type Client struct {
	hc        *http.Client
	transport *http.Transport

	health *healthService
	asset  *cloudasset.Service
	crm    *cloudresourcemanager.Service
	usage  *serviceusage.Service
}

var _ provider.Client = (*Client)(nil)

// Close drops idle connections held by this client's private transport.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

// ListEvents lists events under "projects/<id>/locations/<loc>".
func (c *Client) ListEvents(ctx context.Context, q provider.EventQuery) (*provider.EventPage, error) {
	resp, err := c.health.list(ctx, "events", q)
	if err != nil {
		return nil, err
	}
	return &provider.EventPage{Events: events(resp.Events), NextPageToken: resp.NextPageToken}, nil
}

// ListOrganizationEvents lists events under "organizations/<id>/locations/<loc>".
func (c *Client) ListOrganizationEvents(ctx context.Context, q provider.EventQuery) (*provider.EventPage, error) {
	resp, err := c.health.list(ctx, "organizationEvents", q)
	if err != nil {
		return nil, err
	}
	return &provider.EventPage{Events: events(resp.OrganizationEvents), NextPageToken: resp.NextPageToken}, nil
}

// GetEvent fetches one project event by resource name.
func (c *Client) GetEvent(ctx context.Context, name string) (provider.RawEvent, error) {
	return c.health.event(ctx, name)
}

// GetOrganizationEvent fetches one organization event by resource name.
func (c *Client) GetOrganizationEvent(ctx context.Context, name string) (provider.RawEvent, error) {
	return c.health.event(ctx, name)
}

// ListProjects lists direct child projects of an organization or folder.
func (c *Client) ListProjects(ctx context.Context, parent, pageToken string) (*provider.ProjectPage, error) {
	call := c.crm.Projects.List().Parent(parent).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, errs.Classify(err, parent)
	}
	page := &provider.ProjectPage{NextPageToken: resp.NextPageToken}
	for _, p := range resp.Projects {
		if p == nil {
			continue
		}
		page.Projects = append(page.Projects, provider.Project{
			Name:        p.Name,
			ProjectID:   p.ProjectId,
			DisplayName: p.DisplayName,
			State:       p.State,
			Parent:      p.Parent,
		})
	}
	return page, nil
}

// ListFolders lists direct child folders of an organization or folder.
func (c *Client) ListFolders(ctx context.Context, parent, pageToken string) (*provider.FolderPage, error) {
	call := c.crm.Folders.List().Parent(parent).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, errs.Classify(err, parent)
	}
	page := &provider.FolderPage{NextPageToken: resp.NextPageToken}
	for _, f := range resp.Folders {
		if f != nil && f.State != "DELETE_REQUESTED" {
			page.Folders = append(page.Folders, f.Name)
		}
	}
	return page, nil
}

// GetServiceState reports whether service is enabled on project
// ("projects/<id>").
func (c *Client) GetServiceState(ctx context.Context, project, service string) (*provider.ServiceState, error) {
	name := project + "/services/" + service
	svc, err := c.usage.Services.Get(name).Context(ctx).Do()
	if err != nil {
		return nil, errs.Classify(err, project)
	}
	st := svc.State
	if st == "" {
		st = provider.ServiceDisabled
	}
	return &provider.ServiceState{Name: service, State: strings.ToUpper(st)}, nil
}

// SearchResources runs a Cloud Asset Inventory resource search.
func (c *Client) SearchResources(ctx context.Context, q provider.AssetQuery) (*provider.AssetPage, error) {
	call := c.asset.V1.SearchAllResources(q.Scope).Context(ctx)
	if q.Query != "" {
		call = call.Query(q.Query)
	}
	if len(q.AssetTypes) > 0 {
		call = call.AssetTypes(q.AssetTypes...)
	}
	if q.PageSize > 0 {
		call = call.PageSize(int64(q.PageSize))
	}
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, errs.Classify(err, q.Scope)
	}
	assets, err := toMaps(resp.Results)
	if err != nil {
		return nil, err
	}
	return &provider.AssetPage{Assets: assets, NextPageToken: resp.NextPageToken}, nil
}

func events(items []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}
