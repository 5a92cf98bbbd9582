package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/memestock/internal/insight"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "갱신 사이클 1회 실행",
	Long: `포럼 스캔, 가격 조회, 스테이지 분류를 한 번 실행하고 결과를 출력합니다.
콜드 스타트 스킵 설정과 무관하게 실제 사이클을 실행합니다.

Example:
  go run ./cmd/memestock refresh
  go run ./cmd/memestock refresh --json`,
	RunE: runRefresh,
}

var (
	refreshJSON bool
)

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().BoolVar(&refreshJSON, "json", false, "스냅샷 전체를 JSON으로 출력")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Insight.SkipColdStart = false

	ctx := context.Background()
	eng, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	snap := eng.orchestrator.Refresh(ctx)
	out := cmd.OutOrStdout()

	if refreshJSON {
		return PrintJSON(out, snap)
	}

	PrintHeader(out, fmt.Sprintf("Refresh %s (%s)", snap.CycleID, snap.Duration.Round(time.Millisecond)))
	PrintMetrics(out, insight.BuildMetrics(snap, eng.orchestrator.LastUpdateSuccess(), cfg.Insight.TopN))
	PrintSeparator(out)

	if !snap.IsSuccess() {
		return fmt.Errorf("cycle ended with status %q", snap.Status)
	}
	PrintSuccess(out, "Cycle completed")
	return nil
}
