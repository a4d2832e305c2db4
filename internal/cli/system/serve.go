package system

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/grove/internal/cli"
	"github.com/julianstephens/grove/internal/logger"
	"github.com/julianstephens/grove/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Listen address. Defaults to http_addr from the config."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.HTTPAddr
	}

	lockPath := ServeLockPath()
	if err := writeServeLock(lockPath, addr); err != nil {
		logger.Warn("Serve lockfile not written", "error", err)
	} else {
		defer os.Remove(lockPath)
	}

	runCtx, stop := signal.NotifyContext(ctx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Serving grove on http://%s (store %s)\n", addr, ctx.Store.Describe())
	srv := server.New(ctx.Service, ctx.Metrics, ctx.Config.RequestTimeout)
	return srv.ListenAndServe(runCtx, addr)
}
