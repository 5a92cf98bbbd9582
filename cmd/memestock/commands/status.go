package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/wonny/memestock/internal/api/handlers"
	"github.com/wonny/memestock/internal/scheduler"
	"github.com/wonny/memestock/pkg/config"
	"github.com/wonny/memestock/pkg/httputil"
	"github.com/wonny/memestock/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "설정 및 제공자 쿼터 조회",
	Long: `현재 설정 요약을 출력합니다. --server 를 주면 실행 중인 서버의
/api/quota, /api/forums, /api/jobs 를 조회해 실시간 상태를 표시합니다.

Example:
  go run ./cmd/memestock status
  go run ./cmd/memestock status --server http://localhost:8089`,
	RunE: runStatus,
}

var (
	statusServer string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusServer, "server", "", "실행 중인 서버 주소")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	printConfigSummary(out, cfg)

	if statusServer == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return printServerStatus(ctx, out, strings.TrimRight(statusServer, "/"), log)
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	PrintHeader(w, "Configuration")
	PrintKeyValue(w, "env", cfg.Env, 16)
	PrintKeyValue(w, "store", cfg.Store.Backend, 16)
	PrintKeyValue(w, "forums", strings.Join(cfg.Insight.Forums, ", "), 16)
	PrintKeyValue(w, "refresh", cfg.Insight.RefreshInterval.String(), 16)
	PrintKeyValue(w, "discovery", cfg.Insight.DiscoveryInterval.String(), 16)
	PrintKeyValue(w, "cycle timeout", cfg.Insight.CycleTimeout.String(), 16)
	PrintKeyValue(w, "reddit creds", configured(cfg.Reddit.ClientID != "" && cfg.Reddit.ClientSecret != ""), 16)

	PrintHeader(w, "Price providers")
	widths := []int{14, 12, 10}
	PrintTableHeader(w, []string{"PROVIDER", "DAILY LIMIT", "KEY"}, widths)
	PrintTableRow(w, []string{"yahoo", limitText(cfg.Providers.YahooDailyLimit), "n/a"}, widths)
	PrintTableRow(w, []string{"alpha_vantage", limitText(cfg.Providers.AlphaVantageDailyLimit), configured(cfg.Providers.AlphaVantageKey != "")}, widths)
	PrintTableRow(w, []string{"polygon", limitText(cfg.Providers.PolygonDailyLimit), configured(cfg.Providers.PolygonKey != "")}, widths)
}

func printServerStatus(ctx context.Context, w io.Writer, base string, log *logger.Logger) error {
	client := httputil.NewWithTimeout(log, 5*time.Second).DisableRetry()

	var quota handlers.QuotaResponse
	if err := client.GetJSON(ctx, base+"/api/quota", nil, &quota); err != nil {
		return fmt.Errorf("fetch quota: %w", err)
	}
	PrintHeader(w, "Live quota")
	widths := []int{14, 10, 10, 10, 20}
	PrintTableHeader(w, []string{"PROVIDER", "USED", "REMAINING", "EXHAUSTED", "RESET"}, widths)
	for _, p := range quota.Providers {
		remaining := "∞"
		if p.Remaining >= 0 {
			remaining = humanize.Comma(int64(p.Remaining))
		}
		PrintTableRow(w, []string{
			p.Name,
			humanize.Comma(int64(p.CallsUsed)),
			remaining,
			fmt.Sprint(p.Exhausted),
			humanize.Time(p.ResetAt),
		}, widths)
	}
	if quota.AllExhausted {
		PrintWarning(w, "Every provider is exhausted until the next reset")
	}

	var forums handlers.ForumsResponse
	if err := client.GetJSON(ctx, base+"/api/forums", nil, &forums); err != nil {
		return fmt.Errorf("fetch forums: %w", err)
	}
	PrintHeader(w, "Forums")
	PrintKeyValue(w, "active", strings.Join(forums.Active, ", "), 8)
	if forums.Dynamic != "" && forums.DiscoveredAt != nil {
		PrintKeyValue(w, "dynamic", fmt.Sprintf("%s (%s)", forums.Dynamic, humanize.Time(*forums.DiscoveredAt)), 8)
	}

	var jobs map[string]scheduler.JobStats
	if err := client.GetJSON(ctx, base+"/api/jobs", nil, &jobs); err != nil {
		return fmt.Errorf("fetch jobs: %w", err)
	}
	PrintHeader(w, "Jobs")
	names := make([]string, 0, len(jobs))
	for name := range jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := jobs[name]
		line := fmt.Sprintf("%d runs, %.0f%% ok", st.TotalRuns, st.SuccessRate*100)
		if st.LastRun != nil {
			line += ", last " + humanize.Time(*st.LastRun)
		}
		if st.LastError != "" {
			line += ", error: " + st.LastError
		}
		PrintKeyValue(w, name, line, 20)
	}
	return nil
}

func configured(ok bool) string {
	if ok {
		return "configured"
	}
	return "missing"
}

func limitText(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return humanize.Comma(int64(n))
}
