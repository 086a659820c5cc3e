// Package main is the one-shot command line front end for the capital
// allocation engine: load a dataset, evaluate every alternative in
// parallel, and optionally pick an optimal portfolio under a budget.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/victorgreggio/capalloc/internal/application"
	"github.com/victorgreggio/capalloc/internal/config"
	"github.com/victorgreggio/capalloc/internal/domain"
	"github.com/victorgreggio/capalloc/internal/modules/assets"
	"github.com/victorgreggio/capalloc/internal/modules/formulas"
	"github.com/victorgreggio/capalloc/internal/modules/portfolio"
	"github.com/victorgreggio/capalloc/internal/modules/risk"
	"github.com/victorgreggio/capalloc/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	dataFile := flag.String("data", cfg.DataFile, "CSV file with asset alternatives")
	budget := flag.Float64("budget", cfg.Budget, "portfolio budget in USD (negative = evaluation only)")
	riskWeight := flag.Float64("risk-weight", cfg.RiskWeight, "combined objective risk weight")
	priorityWeight := flag.Float64("priority-weight", cfg.PriorityWeight, "combined objective priority weight")
	workers := flag.Int("workers", cfg.Workers, "evaluation workers (0 = one per CPU)")
	benchmark := flag.Bool("benchmark", false, "evaluate only and print timing")
	topN := flag.Int("top", 10, "number of top-priority rows to print")
	generate := flag.Int("generate", 0, "generate N synthetic assets into -data and exit")
	flag.Parse()

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	if *generate > 0 {
		if err := generateDataset(*dataFile, *generate); err != nil {
			log.Fatal().Err(err).Msg("Dataset generation failed")
		}
		fmt.Printf("Generated %d alternatives for %d assets in %s\n",
			*generate*5, *generate, *dataFile)
		return
	}

	evaluator, err := risk.NewEvaluator(formulas.DefaultGraph(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid metric graph")
	}

	app := application.New(
		assets.NewCSVSource(*dataFile),
		risk.NewRunner(evaluator, *workers, log),
		portfolio.NewSelector(log),
		log,
	)

	alternatives, err := app.LoadAlternatives()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load alternatives")
	}
	fmt.Printf("Loaded %d asset alternatives\n", len(alternatives))

	fmt.Println("Calculating risk metrics in parallel...")
	batch, err := app.EvaluateAll()
	if err != nil {
		log.Fatal().Err(err).Msg("Batch evaluation failed")
	}

	timing := batch.Timing()
	fmt.Printf("Calculated risk metrics for %d alternatives in %.2fms\n",
		len(batch.Results), float64(batch.Elapsed.Microseconds())/1000.0)
	fmt.Printf("Average time per calculation: %.3fms\n", timing.MeanPerOp)
	if batch.Dropped > 0 {
		fmt.Printf("Dropped %d records that failed evaluation\n", batch.Dropped)
	}

	if *benchmark {
		fmt.Println("\nBenchmark complete!")
		return
	}

	printTopPriority(batch.Results, *topN)

	if *budget < 0 {
		return
	}

	weights := portfolio.Weights{Risk: *riskWeight, Priority: *priorityWeight}
	report := app.RunSelections(context.Background(), batch.Results, *budget, weights)
	printReport(report)
}

// generateDataset writes a deterministic synthetic dataset.
func generateDataset(path string, numAssets int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	records := assets.NewGenerator(assets.DefaultSeed).Generate(numAssets)
	return assets.WriteCSV(f, records)
}

// printTopPriority prints the n highest priority alternatives.
func printTopPriority(results []domain.EvaluatedResult, n int) {
	sorted := make([]domain.EvaluatedResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriorityScore > sorted[j].PriorityScore
	})
	if n > len(sorted) {
		n = len(sorted)
	}

	fmt.Printf("\nTop %d alternatives by priority score:\n", n)
	fmt.Printf("%-28s %10s %14s %10s %8s\n", "Alternative", "Cost", "RiskReduction", "Priority", "ROI")
	for _, r := range sorted[:n] {
		fmt.Printf("%-28s %10.2f %14.2f %10.4f %8.4f\n",
			r.Key().String(), r.Cost, r.RiskReduction, r.PriorityScore, r.ROI)
	}
}

// printReport prints the three objective variants side by side.
func printReport(report application.SelectionReport) {
	fmt.Printf("\nPortfolio selection (budget %.2f):\n", report.Budget)

	variants := []struct {
		name   string
		result application.VariantResult
	}{
		{"Maximize risk reduction", report.RiskReduction},
		{"Maximize priority score", report.Priority},
		{fmt.Sprintf("Combined (%.0f%% risk / %.0f%% priority)",
			report.Weights.Risk*100, report.Weights.Priority*100), report.Combined},
	}

	for _, v := range variants {
		fmt.Printf("\n== %s ==\n", v.name)
		if v.result.Failed() {
			fmt.Printf("  No solution for this strategy: %s\n", v.result.Error)
			continue
		}

		outcome := v.result.Outcome
		for _, id := range outcome.Selected {
			fmt.Printf("  %s\n", id.String())
		}
		fmt.Printf("  Selected: %d  Cost: %.2f  Risk reduction: %.2f  Priority: %.4f",
			outcome.Count, outcome.TotalCost, outcome.TotalRiskReduction, outcome.TotalPriorityScore)
		if !outcome.Optimal {
			fmt.Printf("  (best found, search truncated)")
		}
		fmt.Println()
	}
}
