package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"messenger/internal/app/model"
	"messenger/internal/app/store"
)

var (
	sendReplyTo string
	sendImage   bool
	typingStop  bool
)

// conversationTitle names c from viewerID's side: the group name, or the
// peer's display name for direct chats.
func conversationTitle(s *store.Store, c model.Conversation, viewerID string) string {
	if c.IsGroup {
		return "# " + c.Name
	}
	if peer, ok := c.Peer(viewerID); ok {
		if u, ok := s.User(peer); ok {
			return "@ " + u.DisplayName
		}
	}
	return "@ (deleted user)"
}

func formatTime(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Local().Format("Jan 02 15:04")
}

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"ls"},
	Short:   "List your conversations, most recent first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			u, err := a.currentUser()
			if err != nil {
				return err
			}
			a.ctl.Read(func(s *store.Store) {
				convs := a.chat.Conversations(u.ID)
				if len(convs) == 0 {
					a.printf("No conversations yet.\n")
					return
				}
				for _, c := range convs {
					a.printf("%-28s %-28s %-12s %3d unread\n",
						c.ID, conversationTitle(s, c, u.ID), formatTime(c.LastMessageTimestamp), c.UnreadCount[u.ID])
				}
			})
			return nil
		})
	},
}

var directCmd = &cobra.Command{
	Use:   "direct <username>",
	Short: "Open (or create) the direct conversation with a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			u, err := a.currentUser()
			if err != nil {
				return err
			}
			var conv model.Conversation
			err = a.ctl.Do(ctx, func(s *store.Store) error {
				peer, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				conv, err = a.chat.Direct(u.ID, peer.ID)
				return err
			})
			if err != nil {
				return err
			}
			a.printf("%s\n", conv.ID)
			return nil
		})
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <conversation-id> <text...>",
	Short: "Send a message",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := model.KindText
		if sendImage {
			kind = model.KindImage
		}
		content := strings.Join(args[1:], " ")

		return withApp(cmd, func(ctx context.Context, a *App) error {
			u, err := a.currentUser()
			if err != nil {
				return err
			}
			var msg model.Message
			err = a.ctl.Do(ctx, func(s *store.Store) error {
				var err error
				msg, err = a.chat.Send(args[0], u.ID, content, kind, sendReplyTo)
				return err
			})
			if err != nil {
				return err
			}
			a.printf("Sent %s, %s.\n", msg.ID, a.mode())
			return nil
		})
	},
}

var historyCmd = &cobra.Command{
	Use:     "history <conversation-id>",
	Aliases: []string{"read"},
	Short:   "Print a conversation and mark it read",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			u, err := a.currentUser()
			if err != nil {
				return err
			}
			return a.ctl.Do(ctx, func(s *store.Store) error {
				msgs, err := a.chat.Messages(args[0], u.ID)
				if err != nil {
					return err
				}
				for _, msg := range msgs {
					a.printf("%s\n", renderMessage(s, msg))
				}
				return a.chat.MarkRead(args[0], u.ID)
			})
		})
	},
}

func renderMessage(s *store.Store, msg model.Message) string {
	var b strings.Builder
	b.WriteString("[" + formatTime(msg.Timestamp) + "] ")

	switch {
	case msg.Kind == model.KindSystem:
		b.WriteString("* " + msg.Content)
	default:
		sender := "(deleted user)"
		if u, ok := s.User(msg.SenderID); ok {
			sender = u.Username
		}
		b.WriteString(sender + ": ")
		if msg.Kind == model.KindImage {
			b.WriteString("<image " + msg.Content + ">")
		} else {
			b.WriteString(msg.Content)
		}
	}

	if msg.ReplyToID != "" {
		b.WriteString("  (reply to " + msg.ReplyToID + ")")
	}
	if len(msg.Reactions) > 0 {
		emojis := make([]string, 0, len(msg.Reactions))
		for _, r := range msg.Reactions {
			emojis = append(emojis, r.Emoji)
		}
		b.WriteString("  " + strings.Join(emojis, " "))
	}
	b.WriteString("  {" + msg.ID + "}")
	return b.String()
}

var reactCmd = &cobra.Command{
	Use:   "react <conversation-id> <message-id> <emoji>",
	Short: "Toggle a reaction on a message",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			u, err := a.currentUser()
			if err != nil {
				return err
			}
			var added bool
			err = a.ctl.Do(ctx, func(s *store.Store) error {
				var err error
				added, err = a.chat.ToggleReaction(args[0], args[1], u.ID, args[2])
				return err
			})
			if err != nil {
				return err
			}
			if added {
				a.printf("Reacted %s.\n", args[2])
			} else {
				a.printf("Removed %s.\n", args[2])
			}
			return nil
		})
	},
}

var typingCmd = &cobra.Command{
	Use:   "typing <conversation-id>",
	Short: "Set or clear your typing indicator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			u, err := a.currentUser()
			if err != nil {
				return err
			}
			return a.ctl.Do(ctx, func(s *store.Store) error {
				_, err := a.chat.SetTyping(args[0], u.ID, !typingStop)
				return err
			})
		})
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendReplyTo, "reply", "r", "", "ID of the message being replied to")
	sendCmd.Flags().BoolVar(&sendImage, "image", false, "send the text as an image URL")
	typingCmd.Flags().BoolVar(&typingStop, "stop", false, "clear the indicator instead of setting it")

	rootCmd.AddCommand(conversationsCmd, directCmd, sendCmd, historyCmd, reactCmd, typingCmd)
}
