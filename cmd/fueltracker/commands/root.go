package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool

	// exitCode carries pipeline verdicts (2 validation, 3 API, 4 schema)
	// through cobra back to main.
	exitCode int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fueltracker",
	Short: "월간 연료 소비 패널 트래커",
	Long: `Fueltracker Unified CLI

EIA 월간 파이프라인 압축기 연료 소비 시리즈를 수집하고,
계보(lineage) 추적 패널로 관리하며, 예측 모델을 백테스트합니다.

Usage:
  go run ./cmd/fueltracker [command]

Examples:
  go run ./cmd/fueltracker pull
  go run ./cmd/fueltracker backtest run --model seasonal_trend
  go run ./cmd/fueltracker forecast --horizon 12
  go run ./cmd/fueltracker status
  go run ./cmd/fueltracker api`,
	SilenceUsage: true,
}

// Execute runs the root command and maps the outcome to a process exit
// code. This is called by main.main().
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if exitCode != 0 {
			return exitCode
		}
		return 1
	}
	return exitCode
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
