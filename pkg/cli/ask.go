package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func askCommand() *cli.Command {
	var (
		cfg      cliConfig
		question string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "question",
			Aliases:     []string{"q"},
			Usage:       "Question to ask",
			Sources:     cli.EnvVars("GROUNDER_QUESTION"),
			Destination: &question,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a single question and get a grounded answer",
		ArgsUsage: "[question]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			if question == "" {
				question = c.Args().First()
			}
			if question == "" {
				return goerr.New("question is required")
			}

			ag, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " Thinking..."
			sp.Start()
			answer := ag.Ask(ctx, question)
			sp.Stop()

			fmt.Fprintf(c.Root().Writer, "%s\n", answer)
			return nil
		},
	}
}
