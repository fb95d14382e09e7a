package cli

import (
	"context"
	"os"

	"github.com/k-namiki/grounder/pkg/adapter"
	"github.com/k-namiki/grounder/pkg/config"
	"github.com/k-namiki/grounder/pkg/usecase/agent"
	"github.com/k-namiki/grounder/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// cliConfig holds configuration values shared across commands
type cliConfig struct {
	configPath string
	logLevel   string

	project            string
	searchEngineID     string
	location           string
	maxResults         int64
	groundingThreshold float64
	searchType         string
	timeoutSecs        int64

	bucket string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *cliConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML configuration file",
			Sources:     cli.EnvVars("GROUNDER_CONFIG"),
			Destination: &cfg.configPath,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("GROUNDER_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "search-engine-id",
			Aliases:     []string{"e"},
			Usage:       "Vertex AI Search engine ID",
			Sources:     cli.EnvVars("VERTEX_SEARCH_ENGINE_ID"),
			Destination: &cfg.searchEngineID,
		},
		&cli.StringFlag{
			Name:        "location",
			Usage:       "Google Cloud region",
			Value:       config.DefaultLocation,
			Sources:     cli.EnvVars("VERTEX_LOCATION"),
			Destination: &cfg.location,
		},
		&cli.IntFlag{
			Name:        "max-results",
			Usage:       "Maximum search results to retrieve (1-50)",
			Value:       config.DefaultMaxResults,
			Sources:     cli.EnvVars("VERTEX_MAX_RESULTS"),
			Destination: &cfg.maxResults,
		},
		&cli.FloatFlag{
			Name:        "grounding-threshold",
			Usage:       "Minimum confidence for grounding (0.0-1.0)",
			Value:       config.DefaultGroundingThreshold,
			Sources:     cli.EnvVars("VERTEX_GROUNDING_THRESHOLD"),
			Destination: &cfg.groundingThreshold,
		},
		&cli.StringFlag{
			Name:        "search-type",
			Usage:       "Type of search (web, news, etc.)",
			Value:       config.DefaultSearchType,
			Sources:     cli.EnvVars("VERTEX_SEARCH_TYPE"),
			Destination: &cfg.searchType,
		},
		&cli.IntFlag{
			Name:        "timeout",
			Usage:       "Search timeout in seconds",
			Value:       config.DefaultTimeoutSecs,
			Sources:     cli.EnvVars("VERTEX_TIMEOUT"),
			Destination: &cfg.timeoutSecs,
		},
	}
}

// storageFlags returns flags for transcript archiving
func storageFlags(cfg *cliConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Aliases:     []string{"b"},
			Usage:       "Cloud Storage bucket for conversation transcripts",
			Sources:     cli.EnvVars("GROUNDER_TRANSCRIPT_BUCKET"),
			Destination: &cfg.bucket,
		},
	}
}

// setupContext attaches a logger built from the log-level flag
func (cfg *cliConfig) setupContext(ctx context.Context) context.Context {
	logger := logging.New(cfg.logLevel, os.Stderr)
	logging.SetDefault(logger)
	return logging.With(ctx, logger)
}

// agentConfig builds the validated agent configuration, from file if one is
// given, otherwise from flag and environment values.
func (cfg *cliConfig) agentConfig() (*config.Config, error) {
	if cfg.configPath != "" {
		return config.Load(cfg.configPath)
	}

	c := &config.Config{
		ProjectID:          cfg.project,
		SearchEngineID:     cfg.searchEngineID,
		Location:           cfg.location,
		MaxResults:         int(cfg.maxResults),
		GroundingThreshold: cfg.groundingThreshold,
		SearchType:         cfg.searchType,
		TimeoutSecs:        int(cfg.timeoutSecs),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// newAgent creates an agent with its search client and optional transcript
// storage wired up
func (cfg *cliConfig) newAgent(ctx context.Context) (*agent.Agent, error) {
	c, err := cfg.agentConfig()
	if err != nil {
		return nil, err
	}

	tokens, err := adapter.NewGoogleTokenSource(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to set up credentials")
	}

	search := adapter.NewVertexSearch(c, tokens)

	var opts []agent.Option
	if cfg.bucket != "" {
		storage, err := adapter.NewStorage(ctx, cfg.bucket)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to set up transcript storage")
		}
		opts = append(opts, agent.WithStorage(storage))
	}

	return agent.New(c, search, opts...)
}
