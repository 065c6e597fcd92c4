package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/fueltracker/internal/cache"
	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/internal/pipeline"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "패널 및 직전 실행 상태 조회",
	Long: `패널 요약, 직전 실행 판정(status.json), 최근 배치 이력을 표시합니다.

Example:
  go run ./cmd/fueltracker status
  go run ./cmd/fueltracker status --lineage 10`,
	RunE: runStatus,
}

var statusLineageLimit int

func init() {
	rootCmd.AddCommand(statusCmd)

	// Flags
	statusCmd.Flags().IntVar(&statusLineageLimit, "lineage", 5, "표시할 배치 이력 개수")
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fueltracker Status ===")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	// Panel summary
	frame := initStore(cfg, log).Load()
	meta := frame.Meta()

	fmt.Println("\n📊 Panel")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if frame.Empty() {
		fmt.Println("(empty - run pull first)")
	} else {
		fmt.Printf("%-12s %d\n", "Rows:", meta.NRows)
		fmt.Printf("%-12s %s ~ %s\n", "Range:",
			meta.Start.Format("2006-01-02"), meta.End.Format("2006-01-02"))
		fmt.Printf("%-12s %s\n", "Vintage:", meta.VintageLabel)
	}
	fmt.Println()

	// Cache freshness
	dataCache := cache.New(cfg.Paths.DataDir, nil, log.Zerolog())
	fmt.Println("🗄️  Cache")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if marker := dataCache.LastSuccess(); marker == nil {
		fmt.Println("(no successful fetch recorded)")
	} else {
		state := "stale"
		if dataCache.IsFresh(cfg.CacheTTLBusinessDays) {
			state = "fresh"
		}
		fmt.Printf("%-12s %s (%s)\n", "Last fetch:",
			marker.LastSuccessTime.UTC().Format("2006-01-02 15:04:05"), state)
	}
	fmt.Println()

	// Last run verdict
	fmt.Println("🚦 Last Run")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	printLastRun(cfg.Paths.StatusFile)
	fmt.Println()

	// Provisional notice
	if _, err := os.Stat(cfg.Paths.NoticeFile); err == nil {
		fmt.Println("⚠️  PROVISIONAL notice is active:", cfg.Paths.NoticeFile)
		fmt.Println()
	}

	// Batch history
	fmt.Println("🧾 Recent Batches")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	records, err := panel.ReadLineage(cfg.Paths.LineageLogFile)
	if err != nil {
		return fmt.Errorf("read lineage: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("(no batches recorded)")
		return nil
	}
	start := len(records) - statusLineageLimit
	if start < 0 {
		start = 0
	}
	for i := len(records) - 1; i >= start; i-- {
		rec := records[i]
		fmt.Printf("%s  %s  +%d rows  [%s]\n",
			rec.AsofTS, rec.BatchID[:8], rec.RowsAdded, rec.Source)
	}

	return nil
}

func printLastRun(statusPath string) {
	data, err := os.ReadFile(statusPath)
	if err != nil {
		fmt.Println("(no run recorded)")
		return
	}

	var report pipeline.StatusReport
	if err := json.Unmarshal(data, &report); err != nil {
		fmt.Println("(status file is corrupt)")
		return
	}

	icon := "✅"
	switch report.Status {
	case pipeline.StatusNeedsReview:
		icon = "⚠️ "
	case pipeline.StatusFailed:
		icon = "❌"
	}

	fmt.Printf("%-12s %s %s\n", "Status:", icon, report.Status)
	fmt.Printf("%-12s %s\n", "Mode:", report.Mode)
	fmt.Printf("%-12s %s\n", "As of:", report.AsofTS)
	for _, reason := range report.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
}
