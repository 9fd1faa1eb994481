package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/webhookx-io/hookdash/client/cache"
	"github.com/webhookx-io/hookdash/client/graphql"
	"github.com/webhookx-io/hookdash/client/webhooks"
	"github.com/webhookx-io/hookdash/config"
	pkgcache "github.com/webhookx-io/hookdash/pkg/cache"
	"github.com/webhookx-io/hookdash/pkg/log"
	"github.com/webhookx-io/hookdash/utils"
	"go.uber.org/zap"
)

func newWatchCmd() *cobra.Command {
	var (
		pages  int
		follow bool
	)

	watch := &cobra.Command{
		Use:   "watch <endpoint-id>",
		Short: "Print the webhooks of an endpoint",
		Long:  `Print the newest webhooks of an endpoint. With --follow, webhooks created afterwards are printed as they arrive.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			logger, err := log.NewZapLogger(&cfg.Log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			opts, closeFn := watchOptions(cfg, logger)
			defer closeFn()

			client := graphql.New(graphql.Options{
				HTTPURL:   cfg.Client.HTTPURL,
				WSURL:     cfg.Client.WSURL,
				Timeout:   cfg.Client.RequestTimeout(),
				Token:     graphql.StaticToken(string(cfg.Client.Token)),
				Reconnect: cfg.Client.Reconnect,
				OnUnauthenticated: func(err *graphql.Error) {
					logger.Warnf("not signed in: %s", err.Message)
					stop()
				},
			}, logger)

			list, err := webhooks.Watch(ctx, webhooks.NewGraphQLTransport(client), args[0], opts)
			if err != nil {
				return err
			}
			defer list.Close()

			if err := waitLoaded(ctx, list); err != nil {
				return err
			}
			for i := 1; i < pages && list.Snapshot().HasNextPage; i++ {
				list.LoadMore(ctx)
			}

			printer := newPrinter(cmd.OutOrStdout())
			printer.print(list.Snapshot())
			if !follow {
				return nil
			}

			for range list.Updates() {
				printer.print(list.Snapshot())
			}
			return nil
		},
	}

	watch.Flags().IntVarP(&pages, "pages", "p", 1, "Number of pages to load")
	watch.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing webhooks as they are created")

	return watch
}

func watchOptions(cfg *config.Config, logger *zap.SugaredLogger) (webhooks.Options, func()) {
	cacheOpts := cache.Options{
		Size: int(cfg.Client.Cache.Size),
		TTL:  utils.DurationS(int64(cfg.Client.Cache.TTL)),
	}
	closeFn := func() {}
	if cfg.Client.Cache.Persist {
		rc := cfg.Redis.GetClient()
		cacheOpts.L2 = pkgcache.NewRedisCache(rc)
		closeFn = func() { _ = rc.Close() }
	}
	return webhooks.Options{
		Cache: cache.New[webhooks.Connection](cacheOpts),
		Log:   logger,
	}, closeFn
}

// waitLoaded blocks until the first page request has completed
func waitLoaded(ctx context.Context, list *webhooks.List) error {
	for {
		state := list.Snapshot()
		if !state.Loading {
			return state.Err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-list.Updates():
			if !ok {
				return context.Canceled
			}
		}
	}
}

// printer writes each webhook once, oldest first
type printer struct {
	w    io.Writer
	seen map[string]struct{}
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, seen: make(map[string]struct{})}
}

func (p *printer) print(state webhooks.State) {
	for i := len(state.Webhooks) - 1; i >= 0; i-- {
		webhook := state.Webhooks[i]
		if _, ok := p.seen[webhook.ID]; ok {
			continue
		}
		p.seen[webhook.ID] = struct{}{}
		_, _ = fmt.Fprintf(p.w, "%s\t%s\t%s\n",
			webhook.CreatedAt.Format("2006-01-02 15:04:05"), webhook.ID, webhook.EventType)
	}
}
