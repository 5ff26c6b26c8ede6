// Command demo seeds a synthetic fleet, runs one batch pass, and prints the
// resulting fleet report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gympulse/engage/internal/adapters/store"
	"github.com/gympulse/engage/internal/app"
	"github.com/gympulse/engage/internal/demoseed"
	"github.com/gympulse/engage/internal/domain/model"
	"github.com/gympulse/engage/pkg/logger"
)

func main() {
	fleetSize := flag.Int("clients", 40, "number of synthetic clients")
	seed := flag.Int64("seed", 42, "random seed for the synthetic fleet")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	// The demo's product is stdout; keep the log channel quiet.
	_ = logger.SetLevelString("error")

	ctx := context.Background()
	now := time.Now()

	mem := store.NewMemoryStore()
	demoseed.New(demoseed.WithSeed(*seed), demoseed.WithFleetSize(*fleetSize)).Seed(mem, now)

	engine, err := app.New(mem, app.WithLogger(logger.Get().Named("demo")))
	if err != nil {
		os.Stderr.WriteString("failed to build engine: " + err.Error() + "\n")
		return
	}

	report, err := engine.GenerateReport(ctx)
	if err != nil {
		os.Stderr.WriteString("report generation failed: " + err.Error() + "\n")
		return
	}

	fmt.Printf("Engagement report (generated %s)\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Printf("  clients: %d total, %d active, %d at risk\n",
		report.TotalClients, report.ActiveClients, report.AtRiskClients)
	fmt.Printf("  churn risk: %d low / %d medium / %d high\n",
		report.ChurnRiskDistribution[model.RiskLow],
		report.ChurnRiskDistribution[model.RiskMedium],
		report.ChurnRiskDistribution[model.RiskHigh])
	fmt.Printf("  average score: %.0f\n\n", report.AverageEngagementScore)

	printRanking("Top engaged", report.TopEngagedClients)
	printRanking("Lowest engaged", report.LowEngagedClients)
}

func printRanking(title string, scores []model.EngagementScore) {
	fmt.Println(title + ":")
	for i, s := range scores {
		fmt.Printf("  %2d. %-12s score %3.0f  risk %-6s  last active %s\n",
			i+1, s.ClientName, s.Overall, s.ChurnRisk, lastActive(s))
	}
	fmt.Println()
}

func lastActive(s model.EngagementScore) string {
	if s.LastActivity == nil {
		return "never"
	}
	return fmt.Sprintf("%d days ago", s.DaysSinceLastActivity)
}
