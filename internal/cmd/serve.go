package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/handiism/media-exporter/internal/export"
	"github.com/handiism/media-exporter/internal/logger"
	"github.com/handiism/media-exporter/internal/source"
	"github.com/handiism/media-exporter/internal/trigger"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the export root and export on the first request",
		Long: `Serve the export root over HTTP. The first request for "/" runs the
export before it is answered; with --on-startup the export runs before
the server starts listening instead.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().Bool("on-startup", false, "Export before listening instead of on the first request")
	cmd.Flags().String("output", "", "Export root directory")
	cmd.Flags().String("media-root", "", "Directory the host stores media files in")
	cmd.Flags().String("source-type", "", "Content source: json, http or sqlite")
	cmd.Flags().String("source", "", "Content source location (file path or URL)")
	cmd.Flags().Bool("empty-only", false, "Only export into an empty export root")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	onStartup, _ := cmd.Flags().GetBool("on-startup")

	log := logger.NewConsoleLogger(cmd.OutOrStdout(), settings.LogLevel)

	provider, closeFn, err := source.Open(settings.Source)
	if err != nil {
		return fmt.Errorf("open media source: %w", err)
	}
	defer closeFn()

	// one process, one export
	settings.ExportRunOnce = true
	exporter := export.NewExporter(settings, provider, progressLogger(log))
	trg := trigger.New(exporter, nil)
	trg.OnResult = func(r export.Result) {
		log.LogInfo(fmt.Sprintf("Export finished: %s", r.Status))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if onStartup {
		trg.OnStartup(ctx)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServeHandler(trg, settings.ExportRootPath),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.LogInfo(fmt.Sprintf("Serving %s on %s", settings.ExportRootPath, addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.LogInfo("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func newServeHandler(trg *trigger.Trigger, root string) http.Handler {
	return trg.FirstRequest(http.FileServer(http.Dir(root)))
}
