package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/fueltracker/internal/backtest"
	"github.com/wonny/fueltracker/internal/pipeline"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "롤링 오리진 백테스트",
	Long: `저장된 패널에 대해 예측 모델을 롤링 오리진 방식으로 평가합니다.

분할마다 새 모델을 학습시켜 미래 정보 누출을 방지하고,
MAE / sMAPE / RMSE / MAPE를 기록합니다.

Example:
  go run ./cmd/fueltracker backtest run
  go run ./cmd/fueltracker backtest run --model seasonal_naive`,
}

var backtestRunCmd = &cobra.Command{
	Use:   "run",
	Short: "백테스트 실행",
	Long: `지정된 모델로 롤링 백테스트를 실행하고 metrics.csv를 기록합니다.

Flags:
  --model     모델 이름 (seasonal_naive|seasonal_trend|seasonal_trend_exog)
  --horizon   분할별 예측 길이 (기본: 설정값)
  --lookback  평가에 사용할 최근 개월 수 (기본: 설정값)

Example:
  go run ./cmd/fueltracker backtest run --model seasonal_trend
  go run ./cmd/fueltracker backtest run --horizon 6 --lookback 48`,
	RunE: runBacktest,
}

var (
	backtestModel    string
	backtestHorizon  int
	backtestLookback int
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)

	// Flags
	backtestRunCmd.Flags().StringVar(&backtestModel, "model", "seasonal_trend", "모델 이름")
	backtestRunCmd.Flags().IntVar(&backtestHorizon, "horizon", 0, "분할별 예측 길이 (0 = 설정값)")
	backtestRunCmd.Flags().IntVar(&backtestLookback, "lookback", 0, "최근 개월 수 (0 = 설정값)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fueltracker Backtest ===")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	if backtestHorizon > 0 {
		cfg.Backtest.Horizon = backtestHorizon
	}
	if backtestLookback > 0 {
		cfg.Backtest.Lookback = backtestLookback
	}

	fmt.Printf("\n🧠 Model: %s\n", backtestModel)
	fmt.Printf("📅 Horizon: %d months | Lookback: %d months\n\n", cfg.Backtest.Horizon, cfg.Backtest.Lookback)

	runner := pipeline.NewBacktestRunner(initStore(cfg, log), cfg, log)

	report, err := runner.Run(backtestModel)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	printBacktestReport(report, cfg.Paths.MetricsFile)
	return nil
}

func printBacktestReport(report *backtest.Report, metricsPath string) {
	fmt.Println("✅ Backtest Completed")
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println()

	fmt.Println("📊 Summary")
	fmt.Printf("Valid splits: %d\n", len(report.Splits))
	if len(report.Splits) > 0 {
		first := report.Splits[0]
		last := report.Splits[len(report.Splits)-1]
		fmt.Printf("Origins: %s ~ %s\n",
			first.SplitEnd.Format("2006-01-02"),
			last.SplitEnd.Format("2006-01-02"))
	}
	fmt.Println()

	fmt.Println("📉 Average Metrics")
	fmt.Printf("MAE:   %.4f\n", report.AvgMAE)
	fmt.Printf("sMAPE: %.2f%%\n", report.AvgSMAPE)
	fmt.Printf("RMSE:  %.4f\n", report.AvgRMSE)
	fmt.Printf("MAPE:  %.2f%%\n", report.AvgMAPE)
	fmt.Println()

	fmt.Printf("💾 Split metrics written to %s\n", metricsPath)
}
