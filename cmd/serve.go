package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhisek/skillforge/internal/auth"
	"github.com/abhisek/skillforge/internal/server"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds graceful shutdown after a signal.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := loadDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = d.cfg.Server.Addr
		}

		secret := d.cfg.Server.TokenSecret
		if secret == "" {
			secret, err = auth.RandomSecret()
			if err != nil {
				return err
			}
			d.logger.Printf("[Server] no server.token_secret configured, sessions will not survive a restart")
		}

		srv := server.New(server.Deps{
			Aggregator: d.agg,
			Profiles:   d.profiles,
			Tokens:     auth.NewHMACService(secret, d.cfg.Server.TokenTTL),
			Events:     d.events,
			Advisor:    d.advisor,
			Grader:     d.grader(),
			QuizConfig: d.cfg.Quiz,
			Logger:     d.logger,
		}, server.Config{
			ReadTimeout:    d.cfg.Server.ReadTimeout,
			WriteTimeout:   d.cfg.Server.WriteTimeout,
			AdvisorTimeout: d.cfg.Advisor.Timeout,
			EnrichLimit:    d.cfg.Advisor.EnrichLimit,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Listen(addr)
		}()
		d.logger.Printf("[Server] listening on %s", addr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				d.logger.Printf("[Server] shutdown error: %v", err)
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr)")
}
