package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/constelviz/constel/internal/api"
	"github.com/constelviz/constel/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr     string // listen address
	mongoURI string // MongoDB connection string; empty selects the memory store
	mongoDB  string // MongoDB database name
	noCache  bool   // disable the pipeline cache
}

// serveCommand creates the serve command for the embedding HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:    c.Config.Server.Addr,
		mongoDB: c.Config.Server.MongoDB,
	}
	if c.Config.Server.MongoURI != "" {
		opts.mongoURI = c.Config.Server.MongoURI
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the constel HTTP API",
		Long: `Serve the embedding HTTP API. Hosts upload connection payloads as
documents and request rendered frames in any supported format. Without
--mongo-uri documents are held in memory and lost on restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "MongoDB connection string (empty: in-memory store)")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var st store.Store
	if opts.mongoURI != "" {
		mongoStore, err := store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return fmt.Errorf("connect document store: %w", err)
		}
		st = mongoStore
		c.Logger.Info("using mongodb document store", "db", opts.mongoDB)
	} else {
		st = store.NewMemoryStore()
		c.Logger.Warn("using in-memory document store; documents are lost on restart")
	}
	defer func() { _ = st.Close(context.Background()) }()

	server := api.NewServer(runner, st, c.Logger)
	return server.ListenAndServe(ctx, opts.addr)
}
