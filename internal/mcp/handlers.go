package mcp

import (
	"context"
	"sort"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/gcpwatch/internal/audit"
	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/narrate"
	"github.com/ppiankov/gcpwatch/internal/provider"
	"github.com/ppiankov/gcpwatch/internal/scope"
)

const (
	activeFilter    = "state = ACTIVE"
	activeQuery     = "state=ACTIVE"
	defaultLocation = "global"
)

// --- Input/Output types ---

// ListActiveEventsInput defines parameters for list_active_events.
type ListActiveEventsInput struct {
	ProjectID  string `json:"project_id" jsonschema:"project id, e.g. my-project" validate:"required,gcp_id"`
	Location   string `json:"location,omitempty" jsonschema:"event location (default global)" validate:"omitempty,gcp_location"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum events to return (default 10, capped at 100)" validate:"min=0"`
	Token      string `json:"token,omitempty" jsonschema:"OAuth access token, used only when no Authorization header is sent"`
}

// ListOrgEventsInput defines parameters for list_org_events.
type ListOrgEventsInput struct {
	OrganizationID string   `json:"organization_id" jsonschema:"numeric organization id" validate:"required,gcp_id"`
	Locations      []string `json:"locations,omitempty" jsonschema:"event locations to query (default [global])" validate:"max=10,dive,gcp_location"`
	MaxResults     int      `json:"max_results,omitempty" jsonschema:"maximum events to return (default 10, capped at 100)" validate:"min=0"`
	Token          string   `json:"token,omitempty" jsonschema:"OAuth access token, used only when no Authorization header is sent"`
}

// EventsOutput lists narrated events.
type EventsOutput struct {
	Events []narrate.Record `json:"events"`
	Count  int              `json:"count"`
}

// GetEventDetailsInput defines parameters for get_event_details.
type GetEventDetailsInput struct {
	EventID string `json:"event_id" jsonschema:"full event resource name, projects/../locations/../events/.. or organizations/../locations/../organizationEvents/.." validate:"required,gcp_event"`
	Token   string `json:"token,omitempty" jsonschema:"OAuth access token, used only when no Authorization header is sent"`
}

// EventOutput wraps one narrated event.
type EventOutput struct {
	Event narrate.Record `json:"event"`
}

// ListProjectsInput defines parameters for list_projects_without_service_health.
// Exactly one of OrganizationID and FolderID must be set.
type ListProjectsInput struct {
	OrganizationID string `json:"organization_id,omitempty" jsonschema:"organization id to audit" validate:"omitempty,gcp_id"`
	FolderID       string `json:"folder_id,omitempty" jsonschema:"folder id to audit" validate:"omitempty,gcp_id"`
	Recursive      *bool  `json:"recursive,omitempty" jsonschema:"descend into sub-folders (default true)"`
	MaxProjects    int    `json:"max_projects,omitempty" jsonschema:"stop discovery after this many projects (default and ceiling set by the server)" validate:"min=0"`
	Token          string `json:"token,omitempty" jsonschema:"OAuth access token, used only when no Authorization header is sent"`
}

func (in *ListProjectsInput) check() error {
	_, err := auditRoot(*in)
	return err
}

// SearchResourcesInput defines parameters for search_resources.
type SearchResourcesInput struct {
	Scope      string   `json:"scope" jsonschema:"projects/<id>, folders/<id> or organizations/<id>" validate:"required,gcp_scope"`
	Query      string   `json:"query,omitempty" jsonschema:"Cloud Asset Inventory query, e.g. name:web" validate:"max=2048"`
	AssetTypes []string `json:"asset_types,omitempty" jsonschema:"asset types, e.g. compute.googleapis.com/Instance" validate:"max=20,dive,gcp_asset_type"`
	Location   string   `json:"location,omitempty" jsonschema:"restrict to one location, e.g. us-central1" validate:"omitempty,gcp_location"`
	PageSize   int      `json:"page_size,omitempty" jsonschema:"results per page (default and maximum 50)" validate:"min=0"`
	PageToken  string   `json:"page_token,omitempty" jsonschema:"next_page_token from a previous call" validate:"max=2048,printascii"`
	Token      string   `json:"token,omitempty" jsonschema:"OAuth access token, used only when no Authorization header is sent"`
}

// SearchResourcesOutput is one page of narrated resources.
type SearchResourcesOutput struct {
	Resources     []narrate.Record `json:"resources"`
	Count         int              `json:"count"`
	NextPageToken string           `json:"next_page_token,omitempty"`
}

// --- Handlers ---

func (s *Server) handleListActiveEvents(ctx context.Context, req *mcpsdk.CallToolRequest, input ListActiveEventsInput) (*mcpsdk.CallToolResult, EventsOutput, error) {
	if input.Location == "" {
		input.Location = defaultLocation
	}
	limit := s.resultLimit(input.MaxResults)

	var out EventsOutput
	err := s.call(ctx, req, ToolListActiveEvents, &input, input.Token, func(ctx context.Context, client provider.Client) error {
		parent := "projects/" + input.ProjectID + "/locations/" + input.Location
		raws, err := collectEvents(ctx, client.ListEvents, parent, limit)
		if err != nil {
			return err
		}
		out = eventsOutput(s.narrator.Events(raws))
		return nil
	})
	if err != nil {
		return nil, EventsOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleListOrgEvents(ctx context.Context, req *mcpsdk.CallToolRequest, input ListOrgEventsInput) (*mcpsdk.CallToolResult, EventsOutput, error) {
	input.Locations = uniqueLocations(input.Locations)
	limit := s.resultLimit(input.MaxResults)

	var out EventsOutput
	err := s.call(ctx, req, ToolListOrgEvents, &input, input.Token, func(ctx context.Context, client provider.Client) error {
		perLocation := make([][]provider.RawEvent, len(input.Locations))
		g, gctx := errgroup.WithContext(ctx)
		for i, loc := range input.Locations {
			parent := "organizations/" + input.OrganizationID + "/locations/" + loc
			g.Go(func() error {
				raws, err := collectEvents(gctx, client.ListOrganizationEvents, parent, limit)
				if err != nil {
					return err
				}
				perLocation[i] = raws
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		seen := make(map[string]bool)
		var records []narrate.Record
		for _, raws := range perLocation {
			for _, rec := range s.narrator.Events(raws) {
				if rec.ID != "" && seen[rec.ID] {
					continue
				}
				seen[rec.ID] = true
				records = append(records, rec)
			}
		}
		sort.SliceStable(records, func(a, b int) bool { return records[a].ID < records[b].ID })
		if len(records) > limit {
			records = records[:limit]
		}
		out = eventsOutput(records)
		return nil
	})
	if err != nil {
		return nil, EventsOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleGetEventDetails(ctx context.Context, req *mcpsdk.CallToolRequest, input GetEventDetailsInput) (*mcpsdk.CallToolResult, EventOutput, error) {
	var out EventOutput
	err := s.call(ctx, req, ToolGetEventDetails, &input, input.Token, func(ctx context.Context, client provider.Client) error {
		name, err := scope.ParseEventName(input.EventID)
		if err != nil {
			return err
		}
		get := client.GetEvent
		if name.Organization {
			get = client.GetOrganizationEvent
		}
		raw, err := get(ctx, name.String())
		if err != nil {
			return err
		}
		out.Event = s.narrator.Event(raw)
		return nil
	})
	if err != nil {
		return nil, EventOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) handleListProjectsWithoutServiceHealth(ctx context.Context, req *mcpsdk.CallToolRequest, input ListProjectsInput) (*mcpsdk.CallToolResult, audit.Report, error) {
	var report *audit.Report
	err := s.call(ctx, req, ToolListProjectsNoPSH, &input, input.Token, func(ctx context.Context, client provider.Client) error {
		root, err := auditRoot(input)
		if err != nil {
			return err
		}
		report, err = s.orch.Run(ctx, client, audit.Request{
			Root:        root,
			Recursive:   input.Recursive,
			MaxChildren: input.MaxProjects,
		})
		return err
	})
	if err != nil {
		return nil, audit.Report{}, err
	}
	return nil, *report, nil
}

func (s *Server) handleSearchResources(ctx context.Context, req *mcpsdk.CallToolRequest, input SearchResourcesInput) (*mcpsdk.CallToolResult, SearchResourcesOutput, error) {
	pageSize := input.PageSize
	if pageSize == 0 || pageSize > s.limits.SearchPageSize {
		pageSize = s.limits.SearchPageSize
	}

	var out SearchResourcesOutput
	err := s.call(ctx, req, ToolSearchResources, &input, input.Token, func(ctx context.Context, client provider.Client) error {
		page, err := client.SearchResources(ctx, provider.AssetQuery{
			Scope:      input.Scope,
			Query:      composeQuery(input.Query, input.Location),
			AssetTypes: input.AssetTypes,
			PageSize:   pageSize,
			PageToken:  input.PageToken,
		})
		if err != nil {
			return err
		}
		assets := page.Assets
		if len(assets) > pageSize {
			assets = assets[:pageSize]
		}
		records := s.narrator.Assets(assets)
		if records == nil {
			records = []narrate.Record{}
		}
		out = SearchResourcesOutput{
			Resources:     records,
			Count:         len(records),
			NextPageToken: page.NextPageToken,
		}
		return nil
	})
	if err != nil {
		return nil, SearchResourcesOutput{}, err
	}
	return nil, out, nil
}

// --- helpers ---

func (s *Server) resultLimit(requested int) int {
	switch {
	case requested <= 0:
		return s.limits.DefaultResults
	case requested > s.limits.MaxResults:
		return s.limits.MaxResults
	default:
		return requested
	}
}

type listEventsFunc func(context.Context, provider.EventQuery) (*provider.EventPage, error)

// collectEvents pages through active events under parent until limit events
// are gathered or the provider runs out.
func collectEvents(ctx context.Context, list listEventsFunc, parent string, limit int) ([]provider.RawEvent, error) {
	var raws []provider.RawEvent
	token := ""
	for {
		page, err := list(ctx, provider.EventQuery{
			Parent:    parent,
			Filter:    activeFilter,
			PageSize:  limit - len(raws),
			PageToken: token,
		})
		if err != nil {
			return nil, err
		}
		raws = append(raws, page.Events...)
		if len(raws) >= limit || page.NextPageToken == "" || page.NextPageToken == token {
			break
		}
		token = page.NextPageToken
	}
	if len(raws) > limit {
		raws = raws[:limit]
	}
	return raws, nil
}

func eventsOutput(records []narrate.Record) EventsOutput {
	if records == nil {
		records = []narrate.Record{}
	}
	return EventsOutput{Events: records, Count: len(records)}
}

func uniqueLocations(locs []string) []string {
	if len(locs) == 0 {
		return []string{defaultLocation}
	}
	seen := make(map[string]bool, len(locs))
	out := make([]string, 0, len(locs))
	for _, l := range locs {
		l = strings.TrimSpace(l)
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func auditRoot(input ListProjectsInput) (scope.Scope, error) {
	switch {
	case input.OrganizationID != "" && input.FolderID != "":
		return scope.Scope{}, errs.Validation("set only one of organization_id or folder_id")
	case input.OrganizationID != "":
		return scope.Organization(input.OrganizationID)
	case input.FolderID != "":
		return scope.Folder(input.FolderID)
	default:
		return scope.Scope{}, errs.Validation("organization_id or folder_id is required")
	}
}

// composeQuery ANDs the active-state and location restrictions into the
// caller's query.
func composeQuery(query, location string) string {
	var parts []string
	if q := strings.TrimSpace(query); q != "" {
		parts = append(parts, "("+q+")")
	}
	parts = append(parts, activeQuery)
	if location != "" {
		parts = append(parts, "location:"+location)
	}
	return strings.Join(parts, " AND ")
}
