// Package topsort orders model runs by their dependencies.
package topsort

import (
	"slices"

	"github.com/AndreyAkinshin/credo/internal/errors"
)

// Graph maps each node to the nodes it depends on.
type Graph map[string][]string

// Sort returns nodes in dependency order, dependencies first. Ties keep the
// order of nodes, or name order when nodes is nil, in which case every node
// of g is sorted. When nodes is given, only those nodes and their transitive
// dependencies are included.
//
// Cycles and undefined dependencies are configuration errors.
func Sort(g Graph, nodes []string) ([]string, error) {
	if nodes == nil {
		nodes = make([]string, 0, len(g))
		for name := range g {
			nodes = append(nodes, name)
		}
		slices.Sort(nodes)
	}

	var order []string
	visited := make(map[string]bool)
	inStack := make(map[string]bool)

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		if inStack[name] {
			return errors.Configf("circular dependency: %s", cycle(path, name))
		}
		if visited[name] {
			return nil
		}
		deps, ok := g[name]
		if !ok {
			if len(path) > 0 {
				return errors.Configf("%q depends on undefined %q", path[len(path)-1], name)
			}
			return errors.NotFound("node", name)
		}

		inStack[name] = true
		for _, dep := range deps {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		inStack[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	for _, name := range nodes {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Validate checks g for self-references, undefined dependencies and cycles.
func Validate(g Graph) error {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		for _, dep := range g[name] {
			if dep == name {
				return errors.Configf("%q depends on itself", name)
			}
		}
	}
	_, err := Sort(g, names)
	return err
}

// cycle renders the dependency path from the repeated node back to itself.
func cycle(path []string, repeated string) string {
	start := slices.Index(path, repeated)
	if start < 0 {
		start = 0
	}
	out := ""
	for _, p := range path[start:] {
		out += p + " -> "
	}
	return out + repeated
}
