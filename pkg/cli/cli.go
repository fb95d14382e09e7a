package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	// Load .env if present; missing file is fine
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "grounder",
		Usage: "Question answering agent grounded in Vertex AI Search",
		Commands: []*cli.Command{
			askCommand(),
			searchCommand(),
			chatCommand(),
			configCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
