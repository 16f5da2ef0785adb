package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/pommapper/pkg/repository"
	"github.com/matzehuels/pommapper/pkg/server"
)

const eventBuffer = 64

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr   string
		noWarm bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP query service",
		Long: `Run the HTTP query service.

The index is warmed in the background at startup unless disabled in the
config or with --no-warm. Local repositories with watch = true are watched
for changes, and when [notify] is configured changes are shared with other
instances over Redis pub/sub.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noWarm)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides [server] addr)")
	cmd.Flags().BoolVar(&noWarm, "no-warm", false, "skip indexing all artifacts at startup")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noWarm bool) error {
	e, err := c.newEnv(ctx, 0)
	if err != nil {
		return err
	}
	defer e.Close()

	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	srv, err := server.New(server.Config{
		Index:    e.indexer,
		BasePath: e.cfg.Server.BasePath,
		Logger:   c.Logger,
	})
	if err != nil {
		return err
	}

	notifier, closeNotifier, err := c.newNotifier(ctx, e.cfg.Notify)
	if err != nil {
		return err
	}
	defer closeNotifier()

	watchers := make([]*repository.FSWatcher, 0, len(e.watched))
	for _, l := range e.watched {
		w, err := repository.NewFSWatcher(l, c.Logger)
		if err != nil {
			return err
		}
		watchers = append(watchers, w)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Local changes fan into local; applied events (local and remote) into events.
	local := make(chan repository.Event, eventBuffer)
	events := make(chan repository.Event, eventBuffer)

	for _, w := range watchers {
		g.Go(func() error { return w.Run(gctx) })
		g.Go(func() error {
			pipeEvents(gctx, w.Events(), local)
			return nil
		})
	}

	if notifier != nil {
		g.Go(func() error { return notifier.Subscribe(gctx, events) })
		g.Go(func() error {
			notifier.Forward(gctx, local, events)
			return nil
		})
	} else {
		g.Go(func() error {
			pipeEvents(gctx, local, events)
			return nil
		})
	}

	g.Go(func() error {
		e.indexer.Watch(gctx, events)
		return nil
	})

	if e.cfg.Index.WarmOnStart() && !noWarm {
		g.Go(func() error {
			e.indexer.Warm(gctx)
			return nil
		})
	}

	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr, e.cfg.Server.ShutdownTimeout.Duration)
	})

	c.Logger.Info("pommapper started",
		"addr", addr,
		"artifacts", e.indexer.Catalog().Len(),
		"repositories", len(e.cfg.Repositories),
		"watched", len(e.watched),
		"notify", notifier != nil,
	)
	return g.Wait()
}

// pipeEvents copies events from in to out until in is closed or ctx is done.
func pipeEvents(ctx context.Context, in <-chan repository.Event, out chan<- repository.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}
