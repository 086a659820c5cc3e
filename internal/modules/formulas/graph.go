// Package formulas declares the metric formula graph: thirteen named
// nodes, their input dependencies, and their closed-form rules. Each
// node is a pure function of the raw attributes and of nodes declared
// before it, so a single forward pass over the declared order resolves
// the whole graph.
package formulas

import (
	"fmt"
	"math"
)

// Node identifies one derived metric in the graph.
type Node int

const (
	NodeBaselineRisk Node = iota
	NodeSafetyMultiplier
	NodeCriticalityScore
	NodeDegradationFactor
	NodePostActionRisk
	NodeRiskReduction
	NodeImplementationComplexity
	NodeTimeValueAdjustment
	NodeAdjustedCost
	NodeROI
	NodeCostEffectiveness
	NodePriorityScore
	NodePaybackPeriod

	nodeCount
)

var nodeNames = [nodeCount]string{
	NodeBaselineRisk:             "baseline_risk",
	NodeSafetyMultiplier:         "safety_multiplier",
	NodeCriticalityScore:         "criticality_score",
	NodeDegradationFactor:        "degradation_factor",
	NodePostActionRisk:           "post_action_risk",
	NodeRiskReduction:            "risk_reduction",
	NodeImplementationComplexity: "implementation_complexity",
	NodeTimeValueAdjustment:      "time_value_adjustment",
	NodeAdjustedCost:             "adjusted_cost",
	NodeROI:                      "roi",
	NodeCostEffectiveness:        "cost_effectiveness",
	NodePriorityScore:            "priority_score",
	NodePaybackPeriod:            "payback_period",
}

// Name returns the node's canonical name.
func (n Node) Name() string {
	if n < 0 || n >= nodeCount {
		return fmt.Sprintf("node(%d)", int(n))
	}
	return nodeNames[n]
}

// Context binds one alternative's raw attributes and derived booleans
// for a single evaluation. A fresh Context is built per alternative;
// contexts are never shared across concurrent evaluations.
type Context struct {
	Cost          float64
	PoFPostAction float64
	CoFTotal      float64
	IsCritical    bool
	IsHighRisk    bool
}

// Values holds resolved node outputs for one evaluation pass.
type Values struct {
	out      [nodeCount]float64
	resolved [nodeCount]bool
}

// Get returns the resolved output of a node. The second return is false
// if the node has not been resolved yet.
func (v *Values) Get(n Node) (float64, bool) {
	if n < 0 || n >= nodeCount {
		return 0, false
	}
	return v.out[n], v.resolved[n]
}

func (v *Values) set(n Node, x float64) {
	v.out[n] = x
	v.resolved[n] = true
}

// DependencyError reports a node referencing an input that is not
// available at its position in the declared order. This is a
// programming-contract violation, not an expected runtime condition.
type DependencyError struct {
	Node  Node
	Input Node
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("formulas: node %q depends on unresolved input %q", e.Node.Name(), e.Input.Name())
}

// OutputError reports a node that did not resolve to a finite number.
type OutputError struct {
	Node  Node
	Value float64
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("formulas: node %q produced non-numeric output %v", e.Node.Name(), e.Value)
}

// Definition couples a node with its declared inputs and its rule.
type Definition struct {
	Node   Node
	Inputs []Node
	Rule   func(ctx Context, v *Values) float64
}

// Graph is an ordered set of node definitions. The order is the
// evaluation order; Validate checks it is a valid topological order.
type Graph struct {
	defs []Definition
}

// NewGraph builds a graph from explicit definitions. Callers own the
// declared order; Validate reports an order that is not topological.
func NewGraph(defs ...Definition) *Graph {
	return &Graph{defs: defs}
}

// Definitions returns the graph's definitions in evaluation order.
func (g *Graph) Definitions() []Definition {
	return g.defs
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.defs)
}

// Validate checks that every node's inputs are declared before the node
// itself. The graph is fixed, so this runs once at startup.
func (g *Graph) Validate() error {
	var seen [nodeCount]bool
	for _, def := range g.defs {
		for _, in := range def.Inputs {
			if !seen[in] {
				return &DependencyError{Node: def.Node, Input: in}
			}
		}
		seen[def.Node] = true
	}
	return nil
}

// Evaluate runs all nodes in declared order against the given context.
// It fails with *DependencyError if the order is violated and with
// *OutputError if a rule does not resolve to a finite number.
func (g *Graph) Evaluate(ctx Context) (*Values, error) {
	v := &Values{}
	for _, def := range g.defs {
		for _, in := range def.Inputs {
			if !v.resolved[in] {
				return nil, &DependencyError{Node: def.Node, Input: in}
			}
		}
		x := def.Rule(ctx, v)
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, &OutputError{Node: def.Node, Value: x}
		}
		v.set(def.Node, x)
	}
	return v, nil
}

// round rounds half away from zero to n decimal places, matching the
// numeric convention of the reference formulas.
func round(x float64, n int) float64 {
	pow := math.Pow(10, float64(n))
	if x < 0 {
		return -math.Floor(-x*pow+0.5) / pow
	}
	return math.Floor(x*pow+0.5) / pow
}
