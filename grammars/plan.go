package grammars

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"text2phenotype.com/itn/fst"
	"text2phenotype.com/itn/logger"
	"text2phenotype.com/itn/utils"
)

var (
	ErrDependencyCycle   = errors.New("dependency cycle")
	ErrMissingDependency = errors.New("missing dependency")
	ErrDuplicateName     = errors.New("duplicate component")
)

var planLogger = logger.NewLogger("Grammar plan")

// Results holds the value built by every component, by name.
type Results map[string]interface{}

// Get returns the dependency name built as a T.
func Get[T any](r Results, name string) T {
	return r[name].(T)
}

type Component struct {
	Name  string
	Needs []string
	Build func(deps Results) (interface{}, error)
}

// Plan is a dependency DAG of components. Levels are computed once; the
// components of one level only read results of earlier levels and are
// built concurrently.
type Plan struct {
	components []Component
	levels     [][]int
}

func NewPlan(components ...Component) (*Plan, error) {
	index := make(map[string]int, len(components))
	for i, c := range components {
		if _, ok := index[c.Name]; ok {
			return nil, &fst.ConstructionError{Op: "plan", Err: fmt.Errorf("%w: %s", ErrDuplicateName, c.Name)}
		}
		index[c.Name] = i
	}

	indegree := make([]int, len(components))
	dependents := make([][]int, len(components))
	for i, c := range components {
		for _, need := range c.Needs {
			j, ok := index[need]
			if !ok {
				return nil, &fst.ConstructionError{
					Op:  "plan",
					Err: fmt.Errorf("%w: %s needs %s", ErrMissingDependency, c.Name, need),
				}
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	var levels [][]int
	var current []int
	for i := range components {
		if indegree[i] == 0 {
			current = append(current, i)
		}
	}
	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)
		var next []int
		for _, i := range current {
			for _, d := range dependents[i] {
				indegree[d]--
				if indegree[d] == 0 {
					next = append(next, d)
				}
			}
		}
		sort.Ints(next)
		current = next
	}
	if placed != len(components) {
		var stuck []string
		for i, c := range components {
			if indegree[i] > 0 {
				stuck = append(stuck, c.Name)
			}
		}
		return nil, &fst.ConstructionError{Op: "plan", Err: fmt.Errorf("%w: %v", ErrDependencyCycle, stuck)}
	}

	return &Plan{components: components, levels: levels}, nil
}

// Order returns the component names in build order.
func (p *Plan) Order() []string {
	var names []string
	for _, level := range p.levels {
		for _, i := range level {
			names = append(names, p.components[i].Name)
		}
	}
	return names
}

func (p *Plan) Run() (Results, error) {
	results := make(Results, len(p.components))
	for _, level := range p.levels {
		values := make([]interface{}, len(level))
		errs := make([]error, len(level))

		wg := sync.WaitGroup{}
		for k, i := range level {
			wg.Add(1)
			go func(k int, c Component) {
				defer wg.Done()
				values[k], errs[k] = buildComponent(c, results)
			}(k, p.components[i])
		}
		wg.Wait()

		for k, i := range level {
			if errs[k] != nil {
				return nil, fmt.Errorf("build %s: %w", p.components[i].Name, errs[k])
			}
			results[p.components[i].Name] = values[k]
		}
	}
	return results, nil
}

func buildComponent(c Component, deps Results) (value interface{}, err error) {
	defer utils.RecoverWithError(&err)
	started := time.Now()
	value, err = c.Build(deps)
	planLogger.Debug().
		Str("grammar", c.Name).
		Dur("elapsed", time.Since(started)).
		Msg("Component built")
	return value, err
}
