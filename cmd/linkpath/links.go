package linkpath

import (
	"github.com/soundprediction/linkpath"
	"github.com/spf13/cobra"
)

var linksCmd = &cobra.Command{
	Use:   "links <title>",
	Short: "Show a page's canonical title and outbound links",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinks,
}

func init() {
	rootCmd.AddCommand(linksCmd)

	linksCmd.Flags().StringP("output", "o", formatText, "output format (text, json, yaml)")
}

func runLinks(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if err := validateFormat(format); err != nil {
		return err
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	// listing links needs no embedder
	client := linkpath.NewWikiClient(cfg, log, nil)
	res, err := client.GetLinks(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeLinkResult(cmd.OutOrStdout(), format, args[0], res)
}
