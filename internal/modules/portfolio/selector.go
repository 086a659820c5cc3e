// Package portfolio selects a subset of evaluated alternatives that
// maximizes an objective under a total cost budget, choosing at most
// one alternative per asset. The selection variables are genuinely
// binary: the solver is an exact branch-and-bound over asset groups,
// not a thresholded continuous relaxation.
package portfolio

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/victorgreggio/capalloc/internal/domain"
)

var (
	// ErrNoAlternatives is returned when there is nothing to optimize.
	ErrNoAlternatives = errors.New("portfolio: no alternatives to optimize")
	// ErrInfeasible is returned when no assignment satisfies the
	// constraints, i.e. the budget is negative. The empty selection is
	// feasible for any budget >= 0.
	ErrInfeasible = errors.New("portfolio: no feasible selection for the given budget")
)

// Objective identifies the value function maximized by a selection.
type Objective int

const (
	ObjectiveRiskReduction Objective = iota
	ObjectivePriority
	ObjectiveCombined
)

func (o Objective) String() string {
	switch o {
	case ObjectiveRiskReduction:
		return "risk_reduction"
	case ObjectivePriority:
		return "priority"
	case ObjectiveCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// MarshalJSON emits the objective name rather than its ordinal.
func (o Objective) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// UnmarshalJSON accepts the names emitted by MarshalJSON.
func (o *Objective) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"risk_reduction"`:
		*o = ObjectiveRiskReduction
	case `"priority"`:
		*o = ObjectivePriority
	case `"combined"`:
		*o = ObjectiveCombined
	default:
		return errors.New("portfolio: unknown objective " + string(data))
	}
	return nil
}

// Weights balance risk reduction against priority score in the combined
// objective. They are not required to sum to 1.
type Weights struct {
	Risk     float64 `json:"risk"`
	Priority float64 `json:"priority"`
}

// DefaultWeights is the reference 0.6/0.4 blend.
var DefaultWeights = Weights{Risk: 0.6, Priority: 0.4}

// combinedRiskScale normalizes risk reduction to the priority score's
// magnitude before weighting.
const combinedRiskScale = 1_000_000.0

// Outcome is the result of one selector invocation: chosen identities
// plus aggregate totals. No two selected identities share an asset and
// TotalCost never exceeds the budget the selector was given.
type Outcome struct {
	Objective          Objective         `json:"objective"`
	Selected           []domain.Identity `json:"selected"`
	TotalCost          float64           `json:"total_cost"`
	TotalRiskReduction float64           `json:"total_risk_reduction"`
	TotalPriorityScore float64           `json:"total_priority_score"`
	Count              int               `json:"count"`
	// Optimal is false when the search hit its deadline or node budget
	// and returned the best selection found so far.
	Optimal bool `json:"optimal"`
}

// Selector solves the budget-constrained selection problem. A Selector
// is stateless across calls and safe for concurrent use; three
// objective variants may run in parallel over the same batch.
type Selector struct {
	// MaxNodes caps the branch-and-bound search tree. When exhausted
	// the best feasible selection found so far is returned with
	// Optimal=false.
	MaxNodes int
	log      zerolog.Logger
}

// DefaultMaxNodes bounds the exact search; at ~4 alternatives per asset
// this covers thousands of assets before the cap bites.
const DefaultMaxNodes = 5_000_000

// NewSelector creates a selector with the default node budget.
func NewSelector(log zerolog.Logger) *Selector {
	return &Selector{
		MaxNodes: DefaultMaxNodes,
		log:      log.With().Str("module", "portfolio").Logger(),
	}
}

// Select maximizes the given objective over the batch, spending at most
// budget, choosing at most one alternative per asset. For the combined
// objective the default 0.6/0.4 weights apply; use SelectCombined to
// supply others. ctx carries the caller's deadline: on expiry the best
// selection found so far is returned with Optimal=false.
func (s *Selector) Select(ctx context.Context, results []domain.EvaluatedResult, budget float64, objective Objective) (Outcome, error) {
	return s.solve(ctx, results, budget, objective, DefaultWeights)
}

// SelectCombined runs the combined objective with caller-supplied
// weights.
func (s *Selector) SelectCombined(ctx context.Context, results []domain.EvaluatedResult, budget float64, weights Weights) (Outcome, error) {
	return s.solve(ctx, results, budget, ObjectiveCombined, weights)
}

func coefficient(r domain.EvaluatedResult, objective Objective, w Weights) float64 {
	switch objective {
	case ObjectivePriority:
		return r.PriorityScore
	case ObjectiveCombined:
		return w.Risk*(r.RiskReduction/combinedRiskScale) + w.Priority*r.PriorityScore
	default:
		return r.RiskReduction
	}
}

// item is one binary decision variable.
type item struct {
	index int // position in the results slice
	cost  float64
	value float64
}

// group holds the mutually exclusive alternatives of one asset.
type group struct {
	items      []item
	maxValue   float64
	maxDensity float64
}

func (s *Selector) solve(ctx context.Context, results []domain.EvaluatedResult, budget float64, objective Objective, weights Weights) (Outcome, error) {
	if len(results) == 0 {
		return Outcome{}, ErrNoAlternatives
	}
	if budget < 0 {
		return Outcome{}, ErrInfeasible
	}

	groups := buildGroups(results, budget, objective, weights)

	search := &bbSearch{
		groups:   groups,
		budget:   budget,
		maxNodes: s.MaxNodes,
		ctx:      ctx,
	}
	selected, optimal := search.run()

	outcome := s.assemble(results, selected, objective, optimal)

	s.log.Debug().
		Str("objective", objective.String()).
		Float64("budget", budget).
		Int("candidates", len(results)).
		Int("selected", outcome.Count).
		Bool("optimal", outcome.Optimal).
		Msg("Selection complete")

	return outcome, nil
}

// buildGroups partitions the batch by asset and prunes variables that
// can never appear in an optimal selection: items over budget and items
// with non-positive value (skipping a group is always allowed).
func buildGroups(results []domain.EvaluatedResult, budget float64, objective Objective, weights Weights) []group {
	order := make([]string, 0)
	byAsset := make(map[string][]item)

	for i, r := range results {
		value := coefficient(r, objective, weights)
		if r.Cost > budget || value <= 0 {
			continue
		}
		if _, seen := byAsset[r.AssetID]; !seen {
			order = append(order, r.AssetID)
		}
		byAsset[r.AssetID] = append(byAsset[r.AssetID], item{index: i, cost: r.Cost, value: value})
	}

	groups := make([]group, 0, len(order))
	for _, assetID := range order {
		items := byAsset[assetID]
		sort.Slice(items, func(a, b int) bool { return items[a].value > items[b].value })

		g := group{items: items}
		for _, it := range items {
			if it.value > g.maxValue {
				g.maxValue = it.value
			}
			density := math.Inf(1)
			if it.cost > 0 {
				density = it.value / it.cost
			}
			if density > g.maxDensity {
				g.maxDensity = density
			}
		}
		groups = append(groups, g)
	}

	// Groups with the most valuable items first: good incumbents early
	// make the bound prune harder.
	sort.SliceStable(groups, func(a, b int) bool { return groups[a].maxValue > groups[b].maxValue })
	return groups
}

// bbSearch is one branch-and-bound run: depth-first over groups, each
// level choosing one item of the group or skipping it.
type bbSearch struct {
	groups   []group
	budget   float64
	maxNodes int
	ctx      context.Context

	// suffix bounds, computed once
	suffixValue   []float64
	suffixDensity []float64

	nodes     int
	stopped   bool
	best      float64
	bestPick  []int // item index per group, -1 = skipped
	current   []int
	currentAt float64 // accumulated value
	spent     float64
}

func (b *bbSearch) run() (map[int]struct{}, bool) {
	n := len(b.groups)
	b.suffixValue = make([]float64, n+1)
	b.suffixDensity = make([]float64, n+1)
	for g := n - 1; g >= 0; g-- {
		b.suffixValue[g] = b.suffixValue[g+1] + b.groups[g].maxValue
		b.suffixDensity[g] = math.Max(b.suffixDensity[g+1], b.groups[g].maxDensity)
	}

	b.best = 0 // the empty selection is always feasible for budget >= 0
	b.bestPick = make([]int, n)
	b.current = make([]int, n)
	for i := range b.bestPick {
		b.bestPick[i] = -1
		b.current[i] = -1
	}

	b.descend(0)

	picked := make(map[int]struct{})
	for g, idx := range b.bestPick {
		if idx >= 0 {
			picked[b.groups[g].items[idx].index] = struct{}{}
		}
	}
	return picked, !b.stopped
}

// bound is an admissible upper estimate of the value obtainable from
// groups g onward with the remaining budget: never more than the sum of
// the best items, never more than the remaining budget converted at the
// best value density.
func (b *bbSearch) bound(g int) float64 {
	remaining := b.budget - b.spent
	limit := b.suffixValue[g]
	if !math.IsInf(b.suffixDensity[g], 1) {
		limit = math.Min(limit, remaining*b.suffixDensity[g])
	}
	return b.currentAt + limit
}

const nodeCheckInterval = 1024

func (b *bbSearch) descend(g int) {
	if b.stopped {
		return
	}
	b.nodes++
	if b.nodes%nodeCheckInterval == 0 {
		if b.ctx.Err() != nil {
			b.stopped = true
			return
		}
	}
	if b.maxNodes > 0 && b.nodes > b.maxNodes {
		b.stopped = true
		return
	}

	if g == len(b.groups) {
		if b.currentAt > b.best {
			b.best = b.currentAt
			copy(b.bestPick, b.current)
		}
		return
	}

	if b.bound(g) <= b.best {
		return
	}

	// Branch on each alternative of this asset, best value first.
	for idx, it := range b.groups[g].items {
		if b.spent+it.cost > b.budget {
			continue
		}
		b.current[g] = idx
		b.spent += it.cost
		b.currentAt += it.value

		b.descend(g + 1)

		b.current[g] = -1
		b.spent -= it.cost
		b.currentAt -= it.value

		if b.stopped {
			return
		}
	}

	// Branch on skipping the asset entirely.
	b.descend(g + 1)
}

func (s *Selector) assemble(results []domain.EvaluatedResult, picked map[int]struct{}, objective Objective, optimal bool) Outcome {
	selected := make([]domain.Identity, 0, len(picked))
	costs := make([]float64, 0, len(picked))
	reductions := make([]float64, 0, len(picked))
	priorities := make([]float64, 0, len(picked))

	for i, r := range results {
		if _, ok := picked[i]; !ok {
			continue
		}
		selected = append(selected, r.Key())
		costs = append(costs, r.Cost)
		reductions = append(reductions, r.RiskReduction)
		priorities = append(priorities, r.PriorityScore)
	}

	return Outcome{
		Objective:          objective,
		Selected:           selected,
		TotalCost:          floats.Sum(costs),
		TotalRiskReduction: floats.Sum(reductions),
		TotalPriorityScore: floats.Sum(priorities),
		Count:              len(selected),
		Optimal:            optimal,
	}
}
