package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fueltracker/internal/pipeline"
)

// pullCmd represents the pull command
var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "EIA 데이터 수집 및 패널 갱신",
	Long: `EIA v2 API에서 월간 연료 소비 시리즈를 수집하고 패널을 갱신합니다.

이 명령어는:
- 새 배치(batch_id, asof_ts) 생성
- EIA API 호출 (재시도 + 레이트 리밋)
- 패널 병합 (append-only, 최신 배치 우선)
- 검증 게이트 실행 (schema / staleness / tolerance)
- status.json, run_meta.json, lineage 기록

Exit codes:
  0 - 정상 (또는 ci 모드 soft-fail)
  2 - 검증 실패 (publish 모드)
  3 - API 실패 + 캐시 만료
  4 - 스키마 오류

Example:
  go run ./cmd/fueltracker pull
  go run ./cmd/fueltracker pull --mode ci
  go run ./cmd/fueltracker pull --dry-run`,
	RunE: runPull,
}

var (
	pullSeries string
	pullMode   string
	pullDryRun bool
	pullNotes  string
)

func init() {
	rootCmd.AddCommand(pullCmd)

	// Flags
	pullCmd.Flags().StringVar(&pullSeries, "series", defaultSeries, "endpoints 파일의 시리즈 키")
	pullCmd.Flags().StringVar(&pullMode, "mode", "", "게이트 모드 (publish|ci, 기본: 설정값)")
	pullCmd.Flags().BoolVar(&pullDryRun, "dry-run", false, "패널 파일을 수정하지 않고 검증만 실행")
	pullCmd.Flags().StringVar(&pullNotes, "notes", "", "lineage 기록에 남길 메모")
}

func runPull(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fueltracker Pull ===")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	mode := cfg.Mode
	if pullMode != "" {
		mode = pullMode
	}
	if mode != "publish" && mode != "ci" {
		return fmt.Errorf("invalid mode %q (want publish or ci)", mode)
	}

	orch, err := initOrchestrator(cfg, log)
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	fmt.Printf("\n📡 Series: %s\n", pullSeries)
	fmt.Printf("🔒 Mode: %s\n", mode)
	if pullDryRun {
		fmt.Println("🧪 Dry run: panel file will not be modified")
	}
	fmt.Println()

	result, err := orch.Run(cmd.Context(), pipeline.RunConfig{
		Series: pullSeries,
		Mode:   mode,
		DryRun: pullDryRun,
		Notes:  pullNotes,
	})
	if err != nil {
		return fmt.Errorf("pull pipeline: %w", err)
	}

	printPullResult(result)

	exitCode = result.ExitCode
	if result.ExitCode != pipeline.ExitOK {
		return fmt.Errorf("pull finished with status %s", result.Status)
	}
	return nil
}

func printPullResult(result *pipeline.RunResult) {
	switch result.Status {
	case pipeline.StatusOK:
		fmt.Println("✅ Pull completed")
	case pipeline.StatusNeedsReview:
		fmt.Println("⚠️  Pull completed, needs review")
	default:
		fmt.Println("❌ Pull failed")
	}
	fmt.Println()

	fmt.Println("📋 Run")
	fmt.Printf("Batch:      %s\n", result.Batch.BatchID.String())
	fmt.Printf("Vintage:    %s\n", result.Batch.VintageLabel())
	fmt.Printf("Mode:       %s (%s)\n", result.Decision.Mode, result.Decision.Reason)
	fmt.Printf("Fetch:      %v | Cache fresh: %v\n", result.FetchOK, result.CacheFresh)
	fmt.Printf("Duration:   %.2f seconds\n", result.Duration.Seconds())
	fmt.Println()

	fmt.Println("📊 Panel")
	fmt.Printf("Rows:       %d (+%d new)\n", result.PanelRows, result.RowsAdded)
	if !result.PanelStart.IsZero() {
		fmt.Printf("Range:      %s ~ %s\n",
			result.PanelStart.Format("2006-01-02"),
			result.PanelEnd.Format("2006-01-02"))
	}
	fmt.Println()

	if len(result.Issues) > 0 {
		fmt.Println("⚠️  Issues")
		for _, issue := range result.Issues {
			fmt.Printf("  - %s\n", issue)
		}
		fmt.Println()
	}
}
