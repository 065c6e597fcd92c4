package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fueltracker/internal/contracts"
	"github.com/wonny/fueltracker/internal/pipeline"
)

// forecastCmd represents the forecast command
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "월간 소비 예측 생성",
	Long: `저장된 패널 전체로 모델을 학습시키고 미래 예측을 생성합니다.

직전 pull이 provisional 모드였다면 예측에도 provisional 표시가
붙습니다.

Example:
  go run ./cmd/fueltracker forecast
  go run ./cmd/fueltracker forecast --model seasonal_naive --horizon 6`,
	RunE: runForecast,
}

var (
	forecastModel   string
	forecastHorizon int
)

func init() {
	rootCmd.AddCommand(forecastCmd)

	// Flags
	forecastCmd.Flags().StringVar(&forecastModel, "model", "seasonal_trend", "모델 이름")
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 12, "예측 길이 (개월)")
}

func runForecast(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fueltracker Forecast ===")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	if forecastHorizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", forecastHorizon)
	}

	fmt.Printf("\n🧠 Model: %s\n", forecastModel)
	fmt.Printf("📅 Horizon: %d months\n\n", forecastHorizon)

	forecaster := pipeline.NewForecaster(initStore(cfg, log), cfg, log)

	result, err := forecaster.Run(forecastModel, forecastHorizon)
	if err != nil {
		return fmt.Errorf("forecast failed: %w", err)
	}

	if result.Mode == contracts.ModeProvisional {
		fmt.Println("⚠️  Built on a PROVISIONAL panel vintage")
		fmt.Println()
	}

	fmt.Println("📈 Forecast")
	for i, p := range result.Periods {
		fmt.Printf("%s  %12.2f MMcf\n", p.Format("2006-01"), result.Values[i])
	}
	fmt.Println()

	fmt.Printf("💾 Forecast written to %s\n", cfg.Paths.ForecastFile)
	return nil
}
