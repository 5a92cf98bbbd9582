package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "memestock",
	Short: "Meme-stock insight engine",
	Long: `memestock Unified CLI

Reddit 멘션 집계 + 가격 래더 + 라이프사이클 스테이지 분류.
주기적으로 스냅샷을 만들고 HTTP/WebSocket으로 제공합니다.

Usage:
  go run ./cmd/memestock [command]

Examples:
  go run ./cmd/memestock serve
  go run ./cmd/memestock refresh
  go run ./cmd/memestock discover
  echo "GME to the moon" | go run ./cmd/memestock scan
  go run ./cmd/memestock status
  go run ./cmd/memestock test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
}
