package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/herald/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdRun() *cli.Command {
	var cfg engineConfig

	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Walk umbrella builds once and publish notifications",
		Flags:   cfg.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := cfg.sentry.Configure(ctx)
			if err != nil {
				return err
			}
			defer flush()

			eng, err := newEngine(ctx, &cfg, newConsoleReporter(os.Stdout))
			if err != nil {
				return err
			}

			reports := eng.tagger.Run(ctx, eng.products)

			var failed []string
			for _, r := range reports {
				if r.Stop == model.StopError {
					failed = append(failed, r.Product.Name)
				}
			}
			if len(failed) > 0 {
				return goerr.New("walk aborted for some products", goerr.V("products", failed))
			}
			return nil
		},
	}
}
