package optim

import (
	"context"
	"fmt"
	"math"
)

// Evaluator scores one parameter assignment; larger is better.
type Evaluator func(ctx context.Context, params map[string]float64) (float64, error)

// GridSearch tries every combination of the listed parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%w: %d parameter names for %d ranges", ErrBadOptions, len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: empty range for %s", ErrBadOptions, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// GridPoint is one evaluated assignment.
type GridPoint struct {
	Params map[string]float64
	Score  float64
}

// Search evaluates the grid in lexicographic order and returns the best
// assignment (first one on ties) together with every evaluated point.
// Evaluation errors abort the search.
func (g *GridSearch) Search(ctx context.Context, eval Evaluator) (GridPoint, []GridPoint, error) {
	best := GridPoint{Score: math.Inf(-1)}
	var all []GridPoint
	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, &best, &all)
	return best, all, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluator,
	best *GridPoint,
	all *[]GridPoint,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		score, err := eval(ctx, current)
		if err != nil {
			return fmt.Errorf("evaluate %v: %w", current, err)
		}
		point := GridPoint{Params: current, Score: score}
		*all = append(*all, point)
		if score > best.Score {
			*best = point
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval, best, all); err != nil {
			return err
		}
	}
	return nil
}
