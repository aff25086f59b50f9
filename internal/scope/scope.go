// Package scope holds validated identifiers for the Google Cloud resource
// hierarchy. Every identifier reaching a provider call passes through Parse
// or one of the typed constructors first.
package scope

import (
	"regexp"
	"strings"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

// Kind is the level of the resource hierarchy a Scope points at.
type Kind string

const (
	KindProject      Kind = "projects"
	KindFolder       Kind = "folders"
	KindOrganization Kind = "organizations"
)

var (
	idPattern       = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
	locationPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,62}$`)
	assetPattern    = regexp.MustCompile(`^[a-z][a-z0-9-]*(?:\.[a-z][a-z0-9-]*)*\.googleapis\.com/[A-Za-z][A-Za-z0-9]*$`)
	eventIDPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,127}$`)
)

// Scope is a typed resource name such as "projects/my-project".
type Scope struct {
	kind Kind
	id   string
}

func (s Scope) Kind() Kind     { return s.kind }
func (s Scope) ID() string     { return s.id }
func (s Scope) String() string { return string(s.kind) + "/" + s.id }

// Parse accepts "projects/<id>", "folders/<id>" or "organizations/<id>".
func Parse(name string) (Scope, error) {
	prefix, id, ok := strings.Cut(name, "/")
	if !ok {
		return Scope{}, errs.Validation("scope must be projects/<id>, folders/<id> or organizations/<id>")
	}
	switch Kind(prefix) {
	case KindProject, KindFolder, KindOrganization:
		return newScope(Kind(prefix), id)
	default:
		return Scope{}, errs.Validation("scope must be projects/<id>, folders/<id> or organizations/<id>")
	}
}

// Project builds a project scope from a bare id.
func Project(id string) (Scope, error) { return newScope(KindProject, id) }

// Folder builds a folder scope from a bare id.
func Folder(id string) (Scope, error) { return newScope(KindFolder, id) }

// Organization builds an organization scope from a bare id.
func Organization(id string) (Scope, error) { return newScope(KindOrganization, id) }

func newScope(kind Kind, id string) (Scope, error) {
	if !ValidID(id) {
		return Scope{}, errs.Validation("invalid " + strings.TrimSuffix(string(kind), "s") + " identifier")
	}
	return Scope{kind: kind, id: id}, nil
}

// MustParse is Parse for constants and tests.
func MustParse(name string) Scope {
	s, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidID reports whether id matches the identifier allow-list.
func ValidID(id string) bool { return idPattern.MatchString(id) }

// ValidLocation reports whether loc looks like a region, zone or "global".
func ValidLocation(loc string) bool { return locationPattern.MatchString(loc) }

// ValidAssetType reports whether t has the form <service>.googleapis.com/<Kind>.
func ValidAssetType(t string) bool { return assetPattern.MatchString(t) }

// EventName is a parsed health event resource name.
type EventName struct {
	Parent       Scope
	Location     string
	ID           string
	Organization bool
}

// String renders the full resource name.
func (e EventName) String() string {
	coll := "events"
	if e.Organization {
		coll = "organizationEvents"
	}
	return e.Parent.String() + "/locations/" + e.Location + "/" + coll + "/" + e.ID
}

// ParseEventName accepts
//
//	projects/<id>/locations/<loc>/events/<event>
//	organizations/<id>/locations/<loc>/organizationEvents/<event>
func ParseEventName(name string) (EventName, error) {
	bad := errs.Validation("event_id must be a full event resource name")
	parts := strings.Split(name, "/")
	if len(parts) != 6 || parts[2] != "locations" {
		return EventName{}, bad
	}
	parent, err := Parse(parts[0] + "/" + parts[1])
	if err != nil {
		return EventName{}, err
	}
	if !ValidLocation(parts[3]) || !eventIDPattern.MatchString(parts[5]) {
		return EventName{}, bad
	}

	en := EventName{Parent: parent, Location: parts[3], ID: parts[5]}
	switch {
	case parent.Kind() == KindProject && parts[4] == "events":
	case parent.Kind() == KindOrganization && parts[4] == "organizationEvents":
		en.Organization = true
	default:
		return EventName{}, bad
	}
	return en, nil
}
