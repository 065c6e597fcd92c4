package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/fueltracker/internal/pipeline"
	"github.com/wonny/fueltracker/internal/scheduler"
	"github.com/wonny/fueltracker/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `월간 수집/백테스트 작업을 스케줄에 따라 실행합니다.

등록되는 작업:
- panel_pull: 매월 3일 07:00 UTC (패널 갱신)
- monthly_backtest: 매월 3일 08:00 UTC (메트릭 갱신)

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/fueltracker scheduler start
  go run ./cmd/fueltracker scheduler run panel_pull`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fueltracker Scheduler ===")

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	printJobSummary(sched)
	fmt.Println("Scheduler stopped")

	return nil
}

// printJobSummary reports what each job did while the scheduler was up.
func printJobSummary(sched *scheduler.Scheduler) {
	for _, jobName := range sched.GetAllJobs() {
		history, err := sched.GetJobHistory(jobName)
		if err != nil {
			continue
		}
		latest, ok := history.Latest()
		if !ok {
			fmt.Printf("  %s: no runs\n", jobName)
			continue
		}
		icon := "✅"
		if !latest.Success {
			icon = "❌"
		}
		fmt.Printf("  %s %s: %d run(s), %d failed, last at %s (%.1fs)\n",
			icon, jobName, len(history.Results), history.FailureCount(),
			latest.StartTime.Format("2006-01-02 15:04:05"), latest.Duration.Seconds())
	}
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	fmt.Println("Job started (running in background)")
	return nil
}

func initScheduler() (*scheduler.Scheduler, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	orch, err := initOrchestrator(cfg, log)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewBacktestRunner(initStore(cfg, log), cfg, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewPullJob(orch, cfg, log, defaultSeries)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewBacktestJob(runner, log, "seasonal_trend")); err != nil {
		return nil, err
	}

	return sched, nil
}
