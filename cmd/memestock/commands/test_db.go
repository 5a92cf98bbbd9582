package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/memestock/internal/kvstore"
	"github.com/wonny/memestock/pkg/config"
	"github.com/wonny/memestock/pkg/database"
)

// testDBCmd represents the test-db command
var testDBCmd = &cobra.Command{
	Use:   "test-db",
	Short: "저장소 연결 테스트",
	Long: `STORE_BACKEND 로 선택된 저장소에 연결하고 쓰기/읽기를 확인합니다.
postgres 백엔드는 Health Check 와 풀 통계도 표시합니다.

Example:
  go run ./cmd/memestock test-db
  STORE_BACKEND=postgres go run ./cmd/memestock test-db`,
	RunE: runTestDB,
}

func init() {
	rootCmd.AddCommand(testDBCmd)
}

func runTestDB(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	PrintHeader(out, "memestock Store Connection Test")

	cfg, log, err := loadConfig()
	if err != nil {
		return fmt.Errorf("❌ Failed to load config: %w", err)
	}
	PrintSuccess(out, fmt.Sprintf("Config loaded (ENV: %s, STORE_BACKEND: %s)", cfg.Env, cfg.Store.Backend))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := kvstore.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("❌ Failed to open store: %w", err)
	}
	defer store.Close()
	PrintSuccess(out, "Store opened")

	// Round trip under a dedicated namespace
	probe, _ := json.Marshal(map[string]interface{}{"checked_at": time.Now().UTC()})
	if err := store.Set(ctx, "healthcheck", "probe", probe); err != nil {
		return fmt.Errorf("❌ Write failed: %w", err)
	}
	got, found, err := store.Get(ctx, "healthcheck", "probe")
	if err != nil || !found {
		return fmt.Errorf("❌ Read back failed (found=%v): %v", found, err)
	}
	PrintSuccess(out, fmt.Sprintf("Write/read round trip ok (%d bytes)", len(got)))

	if cfg.Store.Backend == config.StorePostgres {
		if err := printPostgresHealth(ctx, cmd, cfg); err != nil {
			return err
		}
	}

	PrintSuccess(out, "All tests passed!")
	return nil
}

func printPostgresHealth(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	PrintKeyValue(out, "Database URL", maskPassword(cfg.Database.URL), 13)

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to connect to database: %w", err)
	}
	defer db.Close()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("❌ Health check failed: %w", err)
	}

	fmt.Fprintln(out, "📊 Connection Pool Statistics:")
	PrintKeyValue(out, "Healthy", fmt.Sprint(status.Healthy), 13)
	PrintKeyValue(out, "Response Time", status.ResponseTime.String(), 13)
	PrintKeyValue(out, "Server", status.ServerVersion, 13)
	PrintKeyValue(out, "Max Conns", fmt.Sprint(status.Stats.MaxConns), 13)
	PrintKeyValue(out, "Total Conns", fmt.Sprint(status.Stats.TotalConns), 13)
	PrintKeyValue(out, "Idle Conns", fmt.Sprint(status.Stats.IdleConns), 13)
	return nil
}

// maskPassword hides the password of a connection URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
