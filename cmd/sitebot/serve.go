package main

import (
	"context"
	"fmt"
	"net"

	"github.com/ohmanagement/sitebot"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. The server runs until the context is
// cancelled, then drains in-flight requests within the shutdown timeout.
func (c *ServeCmd) Run(deps *Dependencies) error {
	addr := c.Addr
	if addr == "" {
		addr = deps.Config.Server.Addr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: listen on %s: %v\n", addr, err)
		return sitebot.Errorf(sitebot.EUNAVAILABLE, "listen on %s: %v", addr, err)
	}

	deps.Logger.Info("serving", "addr", ln.Addr().String())

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		return deps.Server.Serve(ln)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deps.Config.Server.ShutdownTimeout)
		defer cancel()
		return deps.Server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	deps.Logger.Info("server stopped")
	return nil
}
