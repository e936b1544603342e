package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nexocrm/nexo-go/config"
	"github.com/nexocrm/nexo-go/notify"
	"github.com/nexocrm/nexo-go/realtime"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream realtime notifications to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}
		defer app.close()

		identity, err := app.employeeID()
		if err != nil {
			return err
		}

		coordinator := notify.NewCoordinator(
			&termPresenter{out: os.Stdout},
			notify.NewRepositoryHistory(app.repo),
			notify.WithFallback(&notify.LogPresenter{Logger: app.logger}),
			notify.WithLogger(app.logger),
		)

		channel := realtime.New(realtime.JSONLineTransport{}, app.cfg.RealtimeAddr,
			realtime.WithLogger(app.logger),
			realtime.WithReconnectPolicy(realtime.ReconnectPolicy{
				MaxAttempts: app.cfg.Reconnect.MaxAttempts,
				BaseDelay:   app.cfg.Reconnect.BaseDelay.Std(),
			}),
		)
		channel.Connect(identity)
		defer channel.Disconnect()

		// Config edits take effect without restarting the stream: log level
		// and reconnect policy are re-applied on every successful reload.
		stopWatch, err := config.Watch(configPath, app.logger, func(cfg config.Config) {
			app.logLevel.Set(parseLevel(cfg.LogLevel))
			channel.SetReconnectPolicy(realtime.ReconnectPolicy{
				MaxAttempts: cfg.Reconnect.MaxAttempts,
				BaseDelay:   cfg.Reconnect.BaseDelay.Std(),
			})
		})
		if err != nil {
			app.logger.Warn("config hot reload disabled", "error", err)
		} else {
			defer stopWatch()
		}

		fmt.Printf("Escuchando notificaciones en %s (Ctrl-C para salir)...\n", app.cfg.RealtimeAddr)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		for {
			select {
			case ev := <-channel.Events():
				coordinator.Deliver(ev)
			case <-quit:
				fmt.Println("\nHasta luego.")
				return nil
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
