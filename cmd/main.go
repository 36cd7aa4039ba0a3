package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/spf13/cobra"

	"github.com/wellnesslabco/glowpost/internal/catalog"
	"github.com/wellnesslabco/glowpost/internal/describe"
	"github.com/wellnesslabco/glowpost/internal/history"
	"github.com/wellnesslabco/glowpost/internal/pinterest"
	"github.com/wellnesslabco/glowpost/internal/pipeline"
	"github.com/wellnesslabco/glowpost/internal/render"
	"github.com/wellnesslabco/glowpost/internal/selector"
	"github.com/wellnesslabco/glowpost/service"
	"github.com/wellnesslabco/glowpost/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "glowpost",
		Short:         "Daily Pinterest affiliate post automation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newSeedCmd(), newHistoryCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var (
		auto      bool
		noAI      bool
		outputDir string
		boardName string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and publish today's pin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := service.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}
			if boardName != "" {
				cfg.BoardName = boardName
			}
			if cfg.Pinterest.AccessToken == "" {
				return fmt.Errorf("PINTEREST_ACCESS_TOKEN is not set")
			}

			provider, store, err := buildProvider(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			p := pipeline.New(
				pipeline.Config{
					OutputDir:    cfg.OutputDir,
					AffiliateTag: cfg.Affiliate.Tag,
					BoardName:    cfg.BoardName,
					UseExternal:  !noAI,
				},
				provider,
				render.New(cfg.FontPath),
				describe.New(cfg.Anthropic.APIKey),
				pinterest.NewClient(cfg.Pinterest.AccessToken),
				history.NewRecorder(cfg.HistoryPath()),
			)
			if store != nil {
				p.WithAuditor(store)
			}
			if !auto {
				p.WithConfirm(stdinConfirm(cmd.InOrStdin(), cmd.OutOrStdout()))
			}

			result, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Aborted {
				fmt.Fprintln(out, "Post cancelled.")
				return nil
			}
			fmt.Fprintf(out, "Pin published: %s\n", result.PinURL)
			fmt.Fprintf(out, "Product:       %s (%s)\n", result.Selection.Product.Name, result.Selection.Product.ASIN)
			fmt.Fprintf(out, "Product page:  %s\n", result.ProductURL)
			fmt.Fprintf(out, "Link:          %s\n", result.AffiliateLink)
			fmt.Fprintf(out, "Image:         %s\n", result.Image.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "publish without the review prompt")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "use the template description instead of the text service")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory for rendered artifacts (overrides OUTPUT_DIR)")
	cmd.Flags().StringVar(&boardName, "board", "", "target board name (overrides BOARD_NAME)")
	return cmd
}

// buildProvider picks the catalog source. The sqlite store is also opened as
// the post audit sink whenever it is available.
func buildProvider(cfg *service.Config) (catalog.Provider, *storage.Storage, error) {
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		if cfg.Catalog.Source == "store" {
			return nil, nil, fmt.Errorf("open catalog store: %w", err)
		}
		slog.Warn("post audit store unavailable, continuing without it", "error", err, "db", cfg.DBPath)
		store = nil
	}

	switch cfg.Catalog.Source {
	case "feed":
		if cfg.Catalog.FeedURL == "" {
			return nil, nil, fmt.Errorf("CATALOG_SOURCE=feed requires CATALOG_FEED_URL")
		}
		return catalog.NewFeedProvider(cfg.Catalog.FeedURL), store, nil
	case "store":
		return store, store, nil
	default:
		return catalog.NewStaticProvider(catalog.DefaultBestsellers()), store, nil
	}
}

// stdinConfirm shows the post preview and waits for an explicit yes/no.
func stdinConfirm(in io.Reader, out io.Writer) pipeline.ConfirmFunc {
	return func(preview pipeline.Preview) (bool, error) {
		divider := strings.Repeat("=", 60)
		fmt.Fprintln(out, divider)
		fmt.Fprintln(out, "POST PREVIEW")
		fmt.Fprintln(out, divider)
		fmt.Fprintf(out, "Product: %s (%s)\n", preview.Product.Name, preview.Product.ASIN)
		if preview.Ingredient != "" {
			fmt.Fprintf(out, "Trending ingredient: %s\n", preview.Ingredient)
		}
		fmt.Fprintf(out, "Image: %s\n", preview.ImagePath)
		fmt.Fprintf(out, "Affiliate link: %s\n", preview.AffiliateLink)
		fmt.Fprintf(out, "Description (%s):\n%s\n", preview.Source, pinterest.Truncate(preview.Description, 300))
		fmt.Fprintln(out, divider)
		fmt.Fprint(out, "Post this to Pinterest? (yes/no): ")

		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return false, scanner.Err()
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		return answer == "yes" || answer == "y", nil
	}
}

func newSeedCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the local catalog store with sample products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := service.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			store, err := storage.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open catalog store: %w", err)
			}
			defer store.Close()

			products := catalog.DefaultBestsellers()
			ingredients := selector.DefaultTrendingIngredients
			for i := 0; i < count; i++ {
				name := gofakeit.ProductName()
				if gofakeit.Bool() {
					ingredient := ingredients[gofakeit.Number(0, len(ingredients)-1)]
					name = fmt.Sprintf("%s %s", name, ingredient)
				}
				products = append(products, catalog.Product{
					ASIN:       fmt.Sprintf("B0%08d", gofakeit.Number(0, 99999999)),
					Name:       name,
					Bestseller: gofakeit.Bool(),
				})
			}

			if err := store.SaveCandidates(cmd.Context(), products); err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products into %s\n", len(products), cfg.DBPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 20, "number of fake products to add on top of the defaults")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		limit  int
		source string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the posting history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := service.LoadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			switch source {
			case "db":
				return printAuditHistory(cmd, cfg, limit)
			case "log":
				return printLogHistory(cmd, cfg, limit)
			default:
				return fmt.Errorf("unknown history source %q (want log or db)", source)
			}
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "show only the most recent N posts")
	cmd.Flags().StringVar(&source, "source", "log", "read from the JSON log or the audit db (log|db)")
	return cmd
}

func printLogHistory(cmd *cobra.Command, cfg *service.Config, limit int) error {
	records, err := history.NewRecorder(cfg.HistoryPath()).Load()
	if err != nil {
		return fmt.Errorf("load posting history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No posts recorded yet.")
		return nil
	}

	start := 0
	if limit > 0 && len(records) > limit {
		start = len(records) - limit
	}
	for _, record := range records[start:] {
		fmt.Fprintf(out, "%s  %s  %s\n  %s\n",
			record.PostedAt.Format("2006-01-02 15:04"),
			record.ASIN,
			record.Product,
			record.AffiliateLink,
		)
	}
	return nil
}

// printAuditHistory reads the sqlite audit table, which carries the pin and
// board ids the JSON log does not.
func printAuditHistory(cmd *cobra.Command, cfg *service.Config, limit int) error {
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer store.Close()

	if limit <= 0 {
		limit = 50
	}
	posts, err := store.Queries.ListRecentPosts(cmd.Context(), int64(limit))
	if err != nil {
		return fmt.Errorf("list audit rows: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts recorded yet.")
		return nil
	}

	for _, post := range posts {
		fmt.Fprintf(out, "%s  %s  %s\n  pin=%s board=%s source=%s\n  %s\n",
			post.PostedAt.Format("2006-01-02 15:04"),
			post.Asin,
			post.ProductName,
			post.PinID.String,
			post.BoardID.String,
			post.DescriptionSource,
			post.AffiliateLink,
		)
	}
	return nil
}
