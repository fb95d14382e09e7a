package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg            cliConfig
		conversationID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Conversation ID (auto-generated if omitted)",
			Destination: &conversationID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, storageFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Start an interactive multi-turn conversation",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.setupContext(ctx)

			ag, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			conv := ag.StartConversation(conversationID)
			convID := conv.ID()
			defer ag.EndConversation(convID)

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to open input")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintf(w, "Conversation %s started.\n", convID)
			fmt.Fprintf(w, "Commands: 'context <text>', 'history', 'save', 'exit'\n")

			for {
				line, err := rl.Readline()
				if err != nil {
					// Ctrl-C on an empty line or Ctrl-D ends the session
					if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
						break
					}
					return goerr.Wrap(err, "failed to read input")
				}

				input := strings.TrimSpace(line)
				if input == "" {
					continue
				}

				switch {
				case input == "exit" || input == "quit":
					fmt.Fprintf(w, "Goodbye!\n")
					return nil

				case input == "history":
					history := conv.GetHistory()
					if len(history) == 0 {
						fmt.Fprintf(w, "No conversation history yet\n")
						continue
					}
					for i, msg := range history {
						fmt.Fprintf(w, "%d. %s: %s\n", i+1, strings.ToUpper(string(msg.Role)), truncate(msg.Content, 100))
						if len(msg.SearchResults) > 0 {
							fmt.Fprintf(w, "   (%d search results)\n", len(msg.SearchResults))
						}
					}

				case input == "save":
					key, err := ag.SaveTranscript(ctx, convID)
					if err != nil {
						fmt.Fprintf(w, "Failed to save transcript: %s\n", err)
						continue
					}
					fmt.Fprintf(w, "Transcript saved: %s\n", key)

				case strings.HasPrefix(input, "context "):
					text := strings.TrimPrefix(input, "context ")
					conv.AddContext(text)
					fmt.Fprintf(w, "Context set: %s\n", text)

				default:
					sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
					sp.Suffix = " Thinking..."
					sp.Start()
					answer, err := conv.Ask(ctx, input)
					sp.Stop()
					if err != nil {
						fmt.Fprintf(w, "Error: %s\n", err)
						continue
					}
					fmt.Fprintf(w, "%s\n", answer)
				}
			}

			fmt.Fprintf(w, "\nGoodbye!\n")
			return nil
		},
	}
}
