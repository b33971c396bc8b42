// Package app provides the query server application.
package app

import (
	"context"
	"fmt"

	"github.com/ariel1441/ai-rag-project-sub000/cmd/queryd/app/options"
	querysvc "github.com/ariel1441/ai-rag-project-sub000/internal/queryd"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/app"
)

const commandDesc = `The query service for business request records.

It parses Hebrew and English natural-language queries into intents and
entities, retrieves matching records by filtered vector search, and
optionally synthesizes a grounded Hebrew answer with an LLM.`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(querysvc.Name),
		app.WithShortDescription("Request query service"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		ctx := context.Background()
		server, err := cfg.NewServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run(ctx)
	}
}
