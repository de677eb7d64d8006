package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gwportal/gwportal-cli/internal/mock"
	"github.com/gwportal/gwportal-cli/internal/state"
)

const defaultMockAddr = "127.0.0.1:8090"

func newMockServerCmd(app *App) *cobra.Command {
	var addr, statePath string
	var reseed bool
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a local gateway backed by a JSON state file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if statePath == "" {
				p, err := state.DefaultPath()
				if err != nil {
					return writeErr(cmd, err)
				}
				statePath = p
			}
			store := mock.Store{Path: statePath}
			if reseed {
				if err := store.Save(state.SeedDefault()); err != nil {
					return writeErr(cmd, err)
				}
			}
			if _, err := store.Ensure(); err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return writeErr(cmd, err)
			}
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serveMock(ctx, ln, mock.NewServer(store, app.log()), app.log())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("GWPORTAL_MOCK_ADDR", defaultMockAddr), "Listen address")
	cmd.Flags().StringVar(&statePath, "state", os.Getenv("GWPORTAL_MOCK_STATE"), "Path to mock state JSON (default in the user config dir)")
	cmd.Flags().BoolVar(&reseed, "reseed", false, "Reset the state file to the seeded sample data first")
	return cmd
}

// serveMock runs until ctx is done, then drains in-flight requests.
func serveMock(ctx context.Context, ln net.Listener, srv *mock.Server, logger *zap.Logger) error {
	hs := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock gateway listening", zap.String("addr", ln.Addr().String()))
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("mock gateway stopped")
	return nil
}
