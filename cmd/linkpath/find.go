package linkpath

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/soundprediction/linkpath"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <start> <goal>",
	Short: "Find a chain of links from one page to another",
	Example: `  linkpath find "2005 Azores subtropical storm" "Global Positioning System"
  linkpath find Tennis Moon --max-depth 4 --output json`,
	Args: cobra.ExactArgs(2),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().Int("max-depth", 0, "maximum number of links to follow (default from search.max_depth)")
	findCmd.Flags().StringP("output", "o", formatText, "output format (text, json, yaml)")
}

func runFind(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := validateFormat(format); err != nil {
		return err
	}
	maxDepth, _ := cmd.Flags().GetInt("max-depth")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if maxDepth <= 0 {
		maxDepth = cfg.Search.MaxDepth
	}

	client, err := linkpath.NewFromConfig(cfg, log, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := client.FindPath(ctx, args[0], args[1], maxDepth)
	if err != nil {
		return err
	}
	return writePathResult(cmd.OutOrStdout(), format, res, maxDepth)
}
