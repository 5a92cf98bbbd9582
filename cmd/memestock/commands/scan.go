package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/memestock/internal/lexicon"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [text...]",
	Short: "텍스트 렉시콘 스캔",
	Long: `인자 또는 stdin 텍스트에서 티커와 감성 점수를 추출합니다.
네트워크 호출 없이 렉시콘 설정(LEXICON_FILE)만 사용합니다.

Example:
  go run ./cmd/memestock scan "GME to the moon, AMC is trash"
  cat post.txt | go run ./cmd/memestock scan`,
	RunE: runScan,
}

var (
	scanLexicon string
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanLexicon, "lexicon", "", "렉시콘 YAML 파일 (기본: LEXICON_FILE 또는 내장)")
}

func runScan(cmd *cobra.Command, args []string) error {
	path := scanLexicon
	if path == "" {
		if cfg, _, err := loadConfig(); err == nil {
			path = cfg.Insight.LexiconFile
		}
	}

	lex, err := lexicon.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("load lexicon: %w", err)
	}

	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	printScan(cmd.OutOrStdout(), lex, text)
	return nil
}

func printScan(w io.Writer, lex *lexicon.Lexicon, text string) {
	res := lex.Scan(text)
	counts := res.Counts()

	tickers := make([]string, 0, len(counts))
	for t := range counts {
		tickers = append(tickers, t)
	}
	sort.Slice(tickers, func(i, j int) bool {
		if counts[tickers[i]] != counts[tickers[j]] {
			return counts[tickers[i]] > counts[tickers[j]]
		}
		return tickers[i] < tickers[j]
	})

	widths := []int{8, 8, 30}
	PrintTableHeader(w, []string{"TICKER", "HITS", "COMPANY"}, widths)
	for _, t := range tickers {
		PrintTableRow(w, []string{t, fmt.Sprint(counts[t]), lex.CompanyName(t)}, widths)
	}
	if len(tickers) == 0 {
		fmt.Fprintln(w, "(no tickers)")
	}
	PrintSeparator(w)

	if res.HasSentiment {
		PrintKeyValue(w, "sentiment", fmt.Sprintf("%+.3f", res.Sentiment), 9)
	} else {
		PrintKeyValue(w, "sentiment", "n/a (no lexicon words)", 9)
	}
}
