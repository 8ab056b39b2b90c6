// Package main provides the quotegw-cli command-line tool for fetching
// quotes and validating gateway configuration files.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	quotegateway "github.com/verso-labs/quote-gateway"
	"github.com/verso-labs/quote-gateway/internal/version"
	"github.com/verso-labs/quote-gateway/providers"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quotegw-cli",
		Short: "Fetch quotes from multiple providers on the command line",
		Long: `quotegw-cli talks to the public quote APIs directly, using the same
provider implementations and routing as the quote-gateway server.

Examples:
  quotegw-cli random
  quotegw-cli random --tag wisdom
  quotegw-cli search --author "Marcus Aurelius" --limit 3
  quotegw-cli tags
  quotegw-cli validate config.yaml`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(randomCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(tagsCmd())
	root.AddCommand(providersCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(versionCmd())
	return root
}

func randomCmd() *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Fetch one random quote",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := buildGateway()
			if err != nil {
				return err
			}
			defer func() { _ = gw.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			q, err := gw.Random(ctx, tag)
			if err != nil {
				return err
			}
			printQuote(q)
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "restrict the draw to a tag")
	return cmd
}

func searchCmd() *cobra.Command {
	var (
		query  string
		author string
		tags   []string
		limit  int
		page   int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search quotes by text, author, or tags",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := buildGateway()
			if err != nil {
				return err
			}
			defer func() { _ = gw.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			quotes, err := gw.Search(ctx, providers.SearchQuery{
				Query:  query,
				Author: author,
				Tags:   tags,
				Limit:  limit,
				Page:   page,
			})
			if err != nil {
				return err
			}
			if len(quotes) == 0 {
				fmt.Println("No quotes found.")
				return nil
			}
			for _, q := range quotes {
				printQuote(q)
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "free-text query")
	cmd.Flags().StringVar(&author, "author", "", "author filter")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "tag filters (comma separated)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	cmd.Flags().IntVar(&page, "page", 0, "result page (one-based)")
	return cmd
}

func tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the tags offered by all providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := buildGateway()
			if err != nil {
				return err
			}
			defer func() { _ = gw.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			tags, err := gw.Tags(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tCOUNT\tSOURCE")
			for _, t := range tags {
				count := ""
				if t.Count > 0 {
					count = fmt.Sprintf("%d", t.Count)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, count, t.Source)
			}
			return w.Flush()
		},
	}
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the configured providers",
		RunE: func(_ *cobra.Command, _ []string) error {
			gw, err := buildGateway()
			if err != nil {
				return err
			}
			defer func() { _ = gw.Close() }()

			for _, name := range gw.List() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a gateway configuration file (JSON/YAML)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := quotegateway.LoadConfig(args[0])
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := quotegateway.ValidateConfig(*cfg); err != nil {
				return fmt.Errorf("validation error: %w", err)
			}

			var targetNames []string
			for _, t := range cfg.Targets {
				targetNames = append(targetNames, t.Provider)
			}
			fmt.Println("Config is valid")
			fmt.Printf("  Strategy:  %s\n", cfg.Strategy.Mode)
			fmt.Printf("  Targets:   %d\n", len(cfg.Targets))
			fmt.Printf("  Providers: %s\n", strings.Join(targetNames, ", "))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("quotegw-cli %s\n", version.String())
		},
	}
}

// buildGateway wires the keyless providers (plus OpenAI when a key is set)
// behind a fallback strategy, mirroring the server's default setup.
func buildGateway() (*quotegateway.Gateway, error) {
	registered := make([]providers.Provider, 0, 4)

	kanye, err := providers.NewKanye(os.Getenv("KANYE_BASE_URL"))
	if err != nil {
		return nil, err
	}
	registered = append(registered, kanye)

	quotable, err := providers.NewQuotable(os.Getenv("QUOTABLE_BASE_URL"))
	if err != nil {
		return nil, err
	}
	registered = append(registered, quotable)

	tronald, err := providers.NewTronald(os.Getenv("TRONALD_BASE_URL"))
	if err != nil {
		return nil, err
	}
	registered = append(registered, tronald)

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		openai, err := providers.NewOpenAI(key, os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_MODEL"))
		if err != nil {
			return nil, err
		}
		registered = append(registered, openai)
	}

	targets := make([]quotegateway.Target, 0, len(registered))
	for _, p := range registered {
		targets = append(targets, quotegateway.Target{Provider: p.Name()})
	}
	gw, err := quotegateway.New(quotegateway.Config{
		Strategy: quotegateway.StrategyConfig{Mode: quotegateway.ModeFallback},
		Targets:  targets,
	})
	if err != nil {
		return nil, err
	}
	for _, p := range registered {
		gw.RegisterProvider(p)
	}
	return gw, nil
}

func printQuote(q providers.Quote) {
	fmt.Printf("%q\n", q.Text)
	fmt.Printf("  — %s", q.Author)
	if !q.Date.IsZero() {
		fmt.Printf(" (%s)", q.Date.Format("2006-01-02"))
	}
	fmt.Println()
	if len(q.Tags) > 0 {
		fmt.Printf("  tags: %s\n", strings.Join(q.Tags, ", "))
	}
}
