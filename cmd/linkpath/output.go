package linkpath

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/soundprediction/linkpath/pkg/types"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// writeValue encodes v as JSON or YAML.
func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

func writePathResult(w io.Writer, format string, res *types.PathResult, maxDepth int) error {
	if format != formatText {
		return writeValue(w, format, res)
	}

	if !res.Found() {
		_, err := fmt.Fprintf(w, "No path from %q to %q within %d links (%d pages expanded)\n",
			res.Start, res.Goal, maxDepth, res.Stats.Expansions)
		return err
	}
	_, err := fmt.Fprintf(w, "%s\n%d hops, %d pages expanded in %s\n",
		strings.Join(res.Path, " -> "), res.HopCount, res.Stats.Expansions, res.Stats.Duration.Round(time.Millisecond))
	return err
}

func writeLinkResult(w io.Writer, format, title string, res *types.LinkResult) error {
	if format != formatText {
		return writeValue(w, format, struct {
			Title          string   `json:"title" yaml:"title"`
			CanonicalTitle string   `json:"canonical_title" yaml:"canonical_title"`
			Links          []string `json:"links" yaml:"links"`
		}{title, res.CanonicalTitle, res.Links})
	}

	if _, err := fmt.Fprintf(w, "%s (%d links)\n", res.CanonicalTitle, len(res.Links)); err != nil {
		return err
	}
	for _, l := range res.Links {
		if _, err := fmt.Fprintf(w, "  %s\n", l); err != nil {
			return err
		}
	}
	return nil
}
