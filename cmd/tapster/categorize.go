package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veldhoen/tapster/internal/catalog"
	"github.com/veldhoen/tapster/internal/cli"
	"github.com/veldhoen/tapster/internal/matcher"
)

func categorizeCmd() *cobra.Command {
	var (
		volumeHint string
		articleKey string
		itemsFile  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "categorize [name...]",
		Short: "Resolve product names to categories without touching the network",
		Long: `Categorize resolves product names against the curated index and the
fuzzy matcher only. No catalog endpoint is contacted, so results are
deterministic and safe to use for probing matcher behavior.

Names can be passed as arguments or read from a JSON file with --file.`,
		Example: `  tapster categorize "Heineken Pils 24x33cl"
  tapster categorize --key HEIN-33-24 "Heineken krat"
  tapster categorize --file items.json --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := collectDryRunItems(args, itemsFile, volumeHint, articleKey)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				return fmt.Errorf("no items to categorize: pass names as arguments or use --file")
			}

			curated := viper.GetStringMapString("catalog.curated")
			if len(curated) == 0 {
				curated = catalog.DefaultCuratedIndex()
			}

			cfg := matcher.Config{
				PartialThreshold:   viper.GetFloat64("matcher.partial_threshold"),
				ExactConfidence:    viper.GetFloat64("matcher.exact_confidence"),
				FallbackConfidence: viper.GetFloat64("matcher.fallback_confidence"),
				DefaultCategory:    viper.GetString("matcher.default_category"),
			}

			results := matcher.DryRun(items, curated, buildTaxonomy(), cfg)

			if jsonOutput {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(results)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.TitleStyle.Render("Categorization results"))
			for i, res := range results {
				confidence := cli.ConfidenceStyle(res.Confidence).Render(fmt.Sprintf("%.2f", res.Confidence))
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n  %s %s (%s) %s %s\n",
					cli.HeaderStyle.Render(items[i].Name),
					cli.SubtleStyle.Render("→"),
					res.CategoryName,
					res.CategoryCode,
					cli.InfoStyle.Render(string(res.Type)),
					confidence,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&volumeHint, "hint", "", "volume hint for a single item (e.g. 24x33cl)")
	cmd.Flags().StringVar(&articleKey, "key", "", "article key for a single item")
	cmd.Flags().StringVar(&itemsFile, "file", "", "JSON file with items to categorize")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit results as JSON")

	return cmd
}

// collectDryRunItems merges positional names and an optional items file. The
// --hint and --key flags apply only when exactly one name is given.
func collectDryRunItems(args []string, itemsFile, volumeHint, articleKey string) ([]matcher.DryRunItem, error) {
	var items []matcher.DryRunItem

	if itemsFile != "" {
		data, err := os.ReadFile(itemsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read items file: %w", err)
		}
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to parse items file: %w", err)
		}
	}

	if (volumeHint != "" || articleKey != "") && len(args) != 1 {
		return nil, fmt.Errorf("--hint and --key require exactly one name argument")
	}

	for _, name := range args {
		items = append(items, matcher.DryRunItem{
			Name:       name,
			VolumeHint: volumeHint,
			ArticleKey: articleKey,
		})
	}
	return items, nil
}
