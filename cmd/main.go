package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Verdenroz/buff-ai/internal/agents"
	"github.com/Verdenroz/buff-ai/internal/bootstrap"
)

func main() {
	root := &cobra.Command{
		Use:   "buffai",
		Short: "Buff AI: multi-agent financial assistant",
		Long:  "Buff AI routes finance questions to specialist agents and serves chat, post and market endpoints.",
		// Flag errors print usage; runtime errors are already logged
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(askCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := bootstrap.NewContainer()
			container.MustInit()

			if err := container.Start(); err != nil {
				container.Log.Errorf("Failed to start: %v", err)
				container.Shutdown()
				return err
			}

			waitForShutdown(container)
			return nil
		},
	}
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Scrape, filter and store new posts once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			container := bootstrap.NewContainer()
			container.MustInitCore()
			defer container.Shutdown()

			ctx, stop := signal.NotifyContext(container.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			report, err := container.Services.Ingest.Ingest(ctx)
			if err != nil {
				container.Log.Errorf("Ingestion failed: %v", err)
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

func askCmd() *cobra.Command {
	var (
		ticker string
		stream bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the supervisor a single question from the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container := bootstrap.NewContainer()
			container.MustInitCore()
			defer container.Shutdown()

			ctx, stop := signal.NotifyContext(container.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			req := agents.ChatRequest{Message: strings.Join(args, " "), Ticker: ticker}

			out := cmd.OutOrStdout()
			if !stream {
				resp, err := container.Services.Agents.Supervisor.Handle(ctx, req)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, resp.Response)
				return err
			}

			seq, err := container.Services.Agents.Supervisor.HandleStream(ctx, req)
			if err != nil {
				return err
			}
			for chunk, err := range seq {
				if err != nil {
					return err
				}
				fmt.Fprint(out, chunk)
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "focus the answer on this ticker")
	cmd.Flags().BoolVarP(&stream, "stream", "s", false, "print the answer as it is generated")
	return cmd
}

// waitForShutdown blocks until a signal arrives or the container cancels itself
func waitForShutdown(container *bootstrap.Container) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		container.Log.Infof("Received signal %v", sig)
	case <-container.Context.Done():
		container.Log.Warn("Context cancelled, shutting down")
	}

	shutdownDone := make(chan struct{})
	go func() {
		container.Shutdown()
		close(shutdownDone)
	}()

	// Second signal forces exit
	select {
	case <-shutdownDone:
	case sig := <-sigChan:
		container.Log.Warnf("Received second signal %v, forcing exit", sig)
		os.Exit(1)
	}
}
