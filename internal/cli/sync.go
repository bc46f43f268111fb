package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"messenger/internal/app/store"
)

var watchInterval time.Duration

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the shared document and report its size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			var st store.Stats
			a.ctl.Read(func(s *store.Store) { st = s.Stats() })

			a.printf("Synced, %s: %d users, %d conversations, %d messages, %d active.\n",
				a.mode(), st.TotalUsers, st.TotalConversations, st.TotalMessages, st.ActiveNow)
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the server and print unread counts as they change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			u, err := a.currentUser()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			interval := watchInterval
			if interval <= 0 {
				interval = a.cfg.PollInterval
			}
			go a.ctl.Run(ctx, interval)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			seen := map[string]int{}
			wasOnline := a.ctl.Online()
			a.printf("Watching as %s, %s. Press Ctrl+C to stop.\n", u.Username, a.mode())
			for {
				if online := a.ctl.Online(); online != wasOnline {
					a.printf("Now %s.\n", a.mode())
					wasOnline = online
				}
				a.ctl.Read(func(s *store.Store) {
					for _, c := range s.ConversationsOf(u.ID) {
						n := c.UnreadCount[u.ID]
						if n != seen[c.ID] && n > 0 {
							a.printf("%-24s %d unread\n", conversationTitle(s, c, u.ID), n)
						}
						seen[c.ID] = n
					}
				})

				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		})
	},
}

func init() {
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "poll interval (default $MESSENGER_POLL_INTERVAL or 2s)")

	rootCmd.AddCommand(syncCmd, watchCmd)
}
