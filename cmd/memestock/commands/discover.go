package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "동적 포럼 탐색 1회 실행",
	Long: `사이트 전체 주간 top 리스팅에서 가장 많이 등장한 포럼을 찾아
설정된 포럼에 없으면 동적 포럼으로 저장합니다.

Example:
  go run ./cmd/memestock discover`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, err := buildEngine(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer eng.Close()

	out := cmd.OutOrStdout()
	added, err := eng.discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	if added == "" {
		PrintWarning(out, "No new forum: the leader is already scanned")
	} else {
		PrintSuccess(out, "Dynamic forum set to r/"+added)
	}
	PrintKeyValue(out, "forums", fmt.Sprint(eng.forums.Forums()), 7)
	return nil
}
