package audit

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/gcpwatch/internal/errs"
	"github.com/ppiankov/gcpwatch/internal/provider"
	"github.com/ppiankov/gcpwatch/internal/ratelimit"
	"github.com/ppiankov/gcpwatch/internal/scope"
)

// child is one project selected for checking.
type child struct {
	scope       string
	displayName string
}

type discovery struct {
	children    []child
	truncated   bool
	unreachable []string
}

// discover walks the hierarchy under root breadth-first. Only a failure to
// list root itself is returned as an error; nested folders that cannot be
// listed are recorded as unreachable. Children come back sorted by scope.
func (o *Orchestrator) discover(ctx context.Context, client provider.Client, pacer *ratelimit.Pacer, root scope.Scope, limit int, recursive bool) (*discovery, error) {
	d := &discovery{}
	seen := make(map[string]bool)
	queue := []string{root.String()}

	for len(queue) > 0 && !d.truncated {
		parent := queue[0]
		queue = queue[1:]
		isRoot := parent == root.String()

		if err := o.listProjects(ctx, client, pacer, parent, limit, seen, d); err != nil {
			if isRoot {
				return nil, errs.Classify(err, parent)
			}
			if ctx.Err() != nil {
				break
			}
			o.logger.Warn("folder listing failed",
				zap.String("folder", parent),
				zap.String("kind", string(errs.KindOf(err))))
			d.unreachable = append(d.unreachable, parent)
			continue
		}
		if !recursive || d.truncated {
			continue
		}

		folders, err := o.listFolders(ctx, client, pacer, parent)
		if err != nil {
			if isRoot {
				return nil, errs.Classify(err, parent)
			}
			if ctx.Err() != nil {
				break
			}
			d.unreachable = append(d.unreachable, parent)
			continue
		}
		queue = append(queue, folders...)
	}

	sort.Slice(d.children, func(i, j int) bool {
		return d.children[i].scope < d.children[j].scope
	})
	sort.Strings(d.unreachable)
	return d, nil
}

func (o *Orchestrator) listProjects(ctx context.Context, client provider.Client, pacer *ratelimit.Pacer, parent string, limit int, seen map[string]bool, d *discovery) error {
	token := ""
	for {
		page, err := fetchPage(ctx, o, pacer, func(ctx context.Context) (*provider.ProjectPage, error) {
			return client.ListProjects(ctx, parent, token)
		})
		if err != nil {
			return err
		}

		for _, p := range page.Projects {
			if p.State != provider.ProjectActive {
				continue
			}
			s, ok := projectScope(p)
			if !ok {
				o.logger.Warn("skipping project with unexpected identifier", zap.String("parent", parent))
				continue
			}
			if seen[s] {
				continue
			}
			if len(d.children) >= limit {
				d.truncated = true
				return nil
			}
			seen[s] = true
			d.children = append(d.children, child{scope: s, displayName: p.DisplayName})
		}

		if page.NextPageToken == "" {
			return nil
		}
		token = page.NextPageToken
	}
}

func (o *Orchestrator) listFolders(ctx context.Context, client provider.Client, pacer *ratelimit.Pacer, parent string) ([]string, error) {
	var out []string
	token := ""
	for {
		page, err := fetchPage(ctx, o, pacer, func(ctx context.Context) (*provider.FolderPage, error) {
			return client.ListFolders(ctx, parent, token)
		})
		if err != nil {
			return nil, err
		}
		for _, f := range page.Folders {
			if s, err := scope.Parse(f); err == nil && s.Kind() == scope.KindFolder {
				out = append(out, s.String())
			}
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		token = page.NextPageToken
	}
}

// fetchPage fetches one listing page with pacing and the retry policy.
func fetchPage[T any](ctx context.Context, o *Orchestrator, pacer *ratelimit.Pacer, fetch func(context.Context) (T, error)) (T, error) {
	v, _, err := ratelimit.Retry(ctx, o.opts.Retry, func(ctx context.Context) (T, error) {
		if err := pacer.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
		return fetch(ctx)
	}, func(attempt int, err error, wait time.Duration) {
		o.metrics.IncrementRetries()
	})
	return v, err
}

// projectScope prefers the human project id and falls back to the
// resource name ("projects/<number>").
func projectScope(p provider.Project) (string, bool) {
	if p.ProjectID != "" {
		s, err := scope.Project(p.ProjectID)
		return s.String(), err == nil
	}
	s, err := scope.Parse(p.Name)
	if err != nil || s.Kind() != scope.KindProject {
		return "", false
	}
	return s.String(), true
}
