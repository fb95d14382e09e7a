package cli

import (
	"context"
	"fmt"

	"github.com/k-namiki/grounder/pkg/config"
	"github.com/urfave/cli/v3"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage agent configuration",
		Commands: []*cli.Command{
			configInitCommand(),
			configShowCommand(),
		},
	}
}

func configInitCommand() *cli.Command {
	var output string

	return &cli.Command{
		Name:  "init",
		Usage: "Write a configuration template file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output path for the template",
				Value:       "config.yaml",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := config.WriteTemplate(output); err != nil {
				return err
			}
			fmt.Fprintf(c.Root().Writer, "Configuration template created: %s\n", output)
			return nil
		},
	}
}

func configShowCommand() *cli.Command {
	var cfg cliConfig

	return &cli.Command{
		Name:  "show",
		Usage: "Show the effective configuration",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			conf, err := cfg.agentConfig()
			if err != nil {
				return err
			}

			w := c.Root().Writer
			fmt.Fprintf(w, "Project ID:          %s\n", conf.ProjectID)
			fmt.Fprintf(w, "Search Engine ID:    %s\n", conf.SearchEngineID)
			fmt.Fprintf(w, "Location:            %s\n", conf.Location)
			fmt.Fprintf(w, "Max Results:         %d\n", conf.MaxResults)
			fmt.Fprintf(w, "Grounding Threshold: %.2f\n", conf.GroundingThreshold)
			fmt.Fprintf(w, "Search Type:         %s\n", conf.SearchType)
			fmt.Fprintf(w, "Timeout:             %ds\n", conf.TimeoutSecs)
			return nil
		},
	}
}
