package cli

import (
	"context"
	"fmt"

	"github.com/k-namiki/grounder/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg   cliConfig
		query string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Search query",
			Sources:     cli.EnvVars("GROUNDER_QUERY"),
			Destination: &query,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Perform a search and show raw results",
		ArgsUsage: "[query]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			if query == "" {
				query = c.Args().First()
			}
			if query == "" {
				return goerr.New("query is required")
			}

			ag, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			results, err := ag.Search(ctx, query)
			if err != nil {
				return goerr.Wrap(err, "search failed")
			}

			if len(results) == 0 {
				fmt.Fprintf(c.Root().Writer, "No results found\n")
				return nil
			}

			fmt.Fprintf(c.Root().Writer, "Found %d results:\n", len(results))
			for i, r := range results {
				printResult(c, i+1, r)
			}
			return nil
		},
	}
}

func printResult(c *cli.Command, rank int, r *model.SearchResult) {
	fmt.Fprintf(c.Root().Writer, "\n%d. %s\n", rank, r.Title)
	fmt.Fprintf(c.Root().Writer, "   Score: %.3f\n", r.Score)
	fmt.Fprintf(c.Root().Writer, "   %s\n", truncate(r.Snippet, 150))
	if r.URL != "" {
		fmt.Fprintf(c.Root().Writer, "   URL: %s\n", r.URL)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
