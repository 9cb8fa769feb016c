package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nao1215/anonyreport/internal/model"
)

// Region lookup endpoints.
const (
	departmentsPath = "/api/ubigeo/departamentos"
	provincesPath   = "/api/ubigeo/provincias/"
	districtsPath   = "/api/ubigeo/distritos/"
)

// Departments returns every department name.
func (c *Client) Departments(ctx context.Context) ([]string, error) {
	return c.lookup(ctx, departmentsPath, model.LevelDepartment)
}

// Provinces returns the provinces of a department.
// An empty department short-circuits to an empty result without a request.
func (c *Client) Provinces(ctx context.Context, department string) ([]string, error) {
	if department == "" {
		return nil, nil
	}
	return c.lookup(ctx, provincesPath+url.PathEscape(department), model.LevelProvince)
}

// Districts returns the districts of a province.
// An empty department or province short-circuits without a request.
func (c *Client) Districts(ctx context.Context, department, province string) ([]string, error) {
	if department == "" || province == "" {
		return nil, nil
	}
	path := districtsPath + url.PathEscape(department) + "/" + url.PathEscape(province)
	return c.lookup(ctx, path, model.LevelDistrict)
}

// Children returns the regions one level below the given parent path.
// parents holds zero, one or two names (department, then province).
func (c *Client) Children(ctx context.Context, parents ...string) ([]string, error) {
	switch len(parents) {
	case 0:
		return c.Departments(ctx)
	case 1:
		return c.Provinces(ctx, parents[0])
	case 2:
		return c.Districts(ctx, parents[0], parents[1])
	default:
		return nil, fmt.Errorf("region hierarchy has three levels, got %d parents", len(parents))
	}
}

// lookup fetches one region list, sharing in-flight requests for the same path.
func (c *Client) lookup(ctx context.Context, path string, level model.RegionLevel) ([]string, error) {
	if names, ok := c.cached(path); ok {
		return names, nil
	}

	v, err, shared := c.lookups.Do(path, func() (any, error) {
		return c.fetchRegions(ctx, path, level)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("region lookup shared", "level", level.String())
	}

	names := v.([]string)
	c.store(path, names)

	out := make([]string, len(names))
	copy(out, names)
	return out, nil
}

// fetchRegions performs the request and decodes a list of {"<level>": name} objects.
func (c *Client) fetchRegions(ctx context.Context, path string, level model.RegionLevel) ([]string, error) {
	status, body, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, fmt.Errorf("%w %d for %s list", ErrUnexpectedStatus, status, level)
	}

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	key := level.String()
	seen := make(map[string]bool, len(items))
	names := make([]string, 0, len(items))
	for _, item := range items {
		name, _ := item[key].(string)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	sortSpanish(names)
	return names, nil
}

// sortSpanish orders names the way a Spanish-speaking reader expects
// (accents and ñ collate correctly).
func sortSpanish(names []string) {
	collate.New(language.Spanish).SortStrings(names)
}

func (c *Client) cached(path string) ([]string, bool) {
	if !c.cacheEnabled {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	names, ok := c.cache[path]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

func (c *Client) store(path string, names []string) {
	if !c.cacheEnabled {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[path] = names
}

// Tree loads the region hierarchy down to the given level.
// Lookups below the top level run concurrently, at most concurrency at a time.
// The first failed lookup cancels the rest and is returned.
func (c *Client) Tree(ctx context.Context, depth model.RegionLevel, concurrency int) ([]model.RegionNode, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	departments, err := c.Departments(ctx)
	if err != nil {
		return nil, err
	}

	tree := make([]model.RegionNode, len(departments))
	for i, d := range departments {
		tree[i].Name = d
	}
	if depth == model.LevelDepartment {
		return tree, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range tree {
		dep := &tree[i]
		g.Go(func() error {
			provinces, err := c.Provinces(gctx, dep.Name)
			if err != nil {
				return err
			}
			dep.Children = make([]model.RegionNode, len(provinces))
			for j, p := range provinces {
				dep.Children[j].Name = p
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if depth == model.LevelProvince {
		return tree, nil
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range tree {
		dep := &tree[i]
		for j := range dep.Children {
			prov := &dep.Children[j]
			g.Go(func() error {
				districts, err := c.Districts(gctx, dep.Name, prov.Name)
				if err != nil {
					return err
				}
				prov.Children = make([]model.RegionNode, len(districts))
				for k, d := range districts {
					prov.Children[k].Name = d
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tree, nil
}
