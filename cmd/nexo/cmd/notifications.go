package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexocrm/nexo-go/auth"
	"github.com/nexocrm/nexo-go/notify"
)

var announceFlag bool

// wireNotification is the poll endpoint's item shape.
type wireNotification struct {
	ID                     string    `json:"id"`
	Title                  string    `json:"title"`
	Message                string    `json:"message"`
	Type                   string    `json:"type"`
	Variant                string    `json:"variant"`
	Read                   bool      `json:"read"`
	IsExternalNotification bool      `json:"isExternalNotification"`
	CreatedAt              time.Time `json:"createdAt"`
}

func (w wireNotification) event() notify.Event {
	origin := notify.OriginInternal
	if w.IsExternalNotification {
		origin = notify.OriginExternal
	}
	return notify.Event{
		ID:        w.ID,
		Title:     w.Title,
		Message:   w.Message,
		Type:      w.Type,
		Severity:  notify.ResolveSeverity(w.Variant, w.Type),
		Origin:    origin,
		Read:      w.Read,
		CreatedAt: w.CreatedAt,
	}
}

// fetchNotifications polls the notification list through the lifecycle
// manager. Do hands back the response even on classification errors, so the
// body must be closed on every path.
func fetchNotifications(ctx context.Context, manager *auth.Manager, baseURL string) ([]notify.Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/notifications", nil)
	if err != nil {
		return nil, err
	}
	resp, err := manager.Do(req)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}

	var wire []wireNotification
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding notifications: %w", err)
	}

	events := make([]notify.Event, 0, len(wire))
	for _, w := range wire {
		events = append(events, w.event())
	}
	return events, nil
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "List notifications from the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newAppContext()
		if err != nil {
			return err
		}
		defer app.close()

		events, err := fetchNotifications(cmd.Context(), app.manager, app.cfg.APIBaseURL)
		if err != nil {
			return err
		}

		coordinator := notify.NewCoordinator(
			&termPresenter{out: os.Stdout},
			notify.NewRepositoryHistory(app.repo),
			notify.WithLogger(app.logger),
		)
		events = coordinator.Announce(events, announceFlag)

		printEventRow(os.Stdout, "ID", "TÍTULO", "FECHA", "ESTADO")
		for _, ev := range events {
			state := "no leída"
			if ev.Read {
				state = "leída"
			}
			printEventRow(os.Stdout, ev.ID, ev.Title, formatTimestamp(ev.CreatedAt), state)
		}
		return nil
	},
}

func init() {
	notificationsCmd.Flags().BoolVar(&announceFlag, "announce", false, "present the most recent unread notification as a toast")
	rootCmd.AddCommand(notificationsCmd)
}
