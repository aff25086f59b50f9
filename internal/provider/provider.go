// Package provider defines the read-only cloud surface the core depends on.
// The Google implementation lives in internal/gcp; tests use the gomock
// doubles in provider/mocks.
package provider

//go:generate mockgen -destination=mocks/mocks.go -package=mocks github.com/ppiankov/gcpwatch/internal/provider Client,ClientFactory

import (
	"context"

	"github.com/ppiankov/gcpwatch/internal/credential"
)

// RawEvent is one health event as returned by the provider, decoded into
// generic JSON values.
type RawEvent = map[string]any

// RawAsset is one inventory search result decoded into generic JSON values.
type RawAsset = map[string]any

// Project states reported by the resource manager.
const (
	ProjectActive          = "ACTIVE"
	ProjectDeleteRequested = "DELETE_REQUESTED"
)

// Project is a child discovered under an organization or folder.
type Project struct {
	// Name is the resource name, "projects/<number>".
	Name        string
	ProjectID   string
	DisplayName string
	State       string
	Parent      string
}

// ProjectPage is one page of a projects listing.
type ProjectPage struct {
	Projects      []Project
	NextPageToken string
}

// FolderPage is one page of a folders listing. Folders holds resource names.
type FolderPage struct {
	Folders       []string
	NextPageToken string
}

// EventQuery selects events under a project or organization location.
type EventQuery struct {
	// Parent is "projects/<id>/locations/<loc>" or
	// "organizations/<id>/locations/<loc>".
	Parent    string
	Filter    string
	PageSize  int
	PageToken string
}

// EventPage is one page of events.
type EventPage struct {
	Events        []RawEvent
	NextPageToken string
}

// AssetQuery is a Cloud Asset Inventory search.
type AssetQuery struct {
	Scope      string
	Query      string
	AssetTypes []string
	PageSize   int
	PageToken  string
}

// AssetPage is one page of search results.
type AssetPage struct {
	Assets        []RawAsset
	NextPageToken string
}

// Service states reported by the service usage API.
const (
	ServiceEnabled  = "ENABLED"
	ServiceDisabled = "DISABLED"
)

// ServiceState reports whether a service is enabled for a project.
type ServiceState struct {
	Name  string
	State string
}

// Enabled reports whether the service is turned on.
func (s ServiceState) Enabled() bool { return s.State == ServiceEnabled }

// Client is a provider handle bound to one credential for one call.
// Errors returned by its methods are classified *errs.Error values.
type Client interface {
	ListEvents(ctx context.Context, q EventQuery) (*EventPage, error)
	ListOrganizationEvents(ctx context.Context, q EventQuery) (*EventPage, error)
	GetEvent(ctx context.Context, name string) (RawEvent, error)
	GetOrganizationEvent(ctx context.Context, name string) (RawEvent, error)
	ListProjects(ctx context.Context, parent, pageToken string) (*ProjectPage, error)
	ListFolders(ctx context.Context, parent, pageToken string) (*FolderPage, error)
	GetServiceState(ctx context.Context, project, service string) (*ServiceState, error)
	SearchResources(ctx context.Context, q AssetQuery) (*AssetPage, error)
	// Close drops the client's connections. The client is unusable after.
	Close()
}

// ClientFactory builds one isolated Client per credential.
type ClientFactory interface {
	New(ctx context.Context, cred credential.Credential) (Client, error)
}
