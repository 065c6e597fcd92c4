package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fueltracker/internal/api"
	"github.com/wonny/fueltracker/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "읽기 전용 API 서버 시작",
	Long: `패널, 실행 상태, 배치 이력을 제공하는 읽기 전용 HTTP 서버를 시작합니다.

Endpoints:
  GET  /health              - Health check
  GET  /api/v1/panel        - 패널 조회 (rows + meta)
  GET  /api/v1/status       - 직전 실행 판정
  GET  /api/v1/lineage      - 배치 이력 (최신순)

Example:
  go run ./cmd/fueltracker api
  go run ./cmd/fueltracker api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: 설정값)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Fueltracker API Server ===")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.APIPort = apiPort
	}

	store := initStore(cfg, log)
	panelHandler := handlers.NewPanelHandler(store, cfg, log)
	router := api.NewRouter(panelHandler, log)
	server := api.New(cfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.APIPort)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/v1/panel")
	fmt.Println("  GET  /api/v1/status")
	fmt.Println("  GET  /api/v1/lineage")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
