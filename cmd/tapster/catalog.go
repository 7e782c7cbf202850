package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/veldhoen/tapster/internal/cli"
	"github.com/veldhoen/tapster/internal/common"
	"github.com/veldhoen/tapster/internal/service"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and refresh the product catalog",
	}

	cmd.AddCommand(catalogRefreshCmd())
	cmd.AddCommand(catalogListCmd())

	return cmd
}

func catalogRefreshCmd() *cobra.Command {
	var maxAttempts int

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Force a catalog fetch, retrying on transient failures",
		Long: `Refresh bypasses the cache and fetches the catalog from the configured
endpoint. Transient failures are retried with exponential backoff; a
successful fetch replaces the cached listing for subsequent lookups.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := buildCatalogClient()
			if err != nil {
				return err
			}
			if client == nil {
				return common.NewUserError(
					"No catalog endpoint configured. Set catalog.url in your config file.",
					common.ErrMissingConfig,
				)
			}

			err = common.WithRetry(cmd.Context(), func() error {
				return client.Refresh(cmd.Context())
			}, service.RetryOptions{
				MaxAttempts:  maxAttempts,
				InitialDelay: 500 * time.Millisecond,
			})
			if err != nil {
				return fmt.Errorf("failed to refresh catalog: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.SuccessStyle.Render(
				fmt.Sprintf("✓ Catalog refreshed: %d products", client.Size())))
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 3, "maximum fetch attempts")

	return cmd
}

func catalogListCmd() *cobra.Command {
	var curatedOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known products and their categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			tax := buildTaxonomy()

			if curatedOnly {
				index, err := buildIndex()
				if err != nil {
					return err
				}
				keys := index.CuratedKeys()
				fmt.Fprintln(cmd.OutOrStdout(), cli.TitleStyle.Render("Curated index"))
				for _, key := range keys {
					code, _ := index.CategoryFor(key)
					fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %s (%s)\n", key, tax.Name(code), code)
				}
				return nil
			}

			client, err := buildCatalogClient()
			if err != nil {
				return err
			}
			if client == nil {
				return common.NewUserError(
					"No catalog endpoint configured. Use --curated to list the curated index.",
					common.ErrMissingConfig,
				)
			}

			products, err := client.Products(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list catalog: %w", err)
			}
			sort.Slice(products, func(i, j int) bool {
				return products[i].ArticleKey < products[j].ArticleKey
			})

			fmt.Fprintln(cmd.OutOrStdout(), cli.TitleStyle.Render(
				fmt.Sprintf("Catalog (%d products)", len(products))))
			for _, p := range products {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %-40s %s (%s)\n",
					p.ArticleKey, p.Name, tax.Name(p.CategoryCode), p.CategoryCode)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&curatedOnly, "curated", false, "list the curated index instead of the remote catalog")

	return cmd
}
