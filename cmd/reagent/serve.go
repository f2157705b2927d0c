package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reagent/internal/llm"
	"reagent/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the agent loop over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = rt.cfg.Server.Addr
			}

			models, err := llm.NewCache(rt.cfg.LLM.CacheSize, llm.Config{
				BaseURL:     rt.cfg.LLM.BaseURL,
				APIKey:      rt.cfg.LLM.APIKey,
				MaxTokens:   rt.cfg.LLM.MaxTokens,
				Temperature: rt.cfg.LLM.Temperature,
				Timeout:     rt.cfg.LLM.Timeout(),
			}, rt.logger)
			if err != nil {
				return err
			}

			srv := server.New(rt.cfg, rt.registry, models, rt.logger)
			httpSrv := &http.Server{
				Addr:         addr,
				Handler:      srv.Handler(),
				ReadTimeout:  30 * time.Second,
				// Runs can legitimately take minutes; bound writes by the
				// backend timeout plus slack rather than a fixed short cap.
				WriteTimeout: rt.cfg.LLM.Timeout() + 30*time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.logger.Info("server listening", "addr", addr, "tools", len(rt.registry.Names()))
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-quit:
				rt.logger.Info("shutting down", "signal", sig.String())
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpSrv.Shutdown(ctx); err != nil {
				return err
			}
			rt.logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to configured server.addr)")
	return cmd
}
