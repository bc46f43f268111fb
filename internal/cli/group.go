package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"messenger/internal/app/model"
	"messenger/internal/app/store"
)

var (
	settingsName   string
	settingsAvatar string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Create and administer group conversations",
}

// groupAction runs fn as the logged-in user on the controller's logical thread.
func groupAction(cmd *cobra.Command, fn func(s *store.Store, a *App, me model.User) error) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		me, err := a.currentUser()
		if err != nil {
			return err
		}
		return a.ctl.Do(ctx, func(s *store.Store) error {
			return fn(s, a, me)
		})
	})
}

var groupCreateCmd = &cobra.Command{
	Use:   "create <name> [username...]",
	Short: "Create a group with you as its admin",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, func(s *store.Store, a *App, me model.User) error {
			members, err := lookupAll(s, args[1:])
			if err != nil {
				return err
			}
			conv, err := a.chat.CreateGroup(args[0], me.ID, members)
			if err != nil {
				return err
			}
			a.printf("%s\n", conv.ID)
			return nil
		})
	},
}

var groupJoinCmd = &cobra.Command{
	Use:   "join <group-id>",
	Short: "Join a group through its invite link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, func(s *store.Store, a *App, me model.User) error {
			conv, err := a.chat.JoinGroup(args[0], me.ID)
			if err != nil {
				return err
			}
			a.printf("Joined %s.\n", conv.Name)
			return nil
		})
	},
}

var groupAddCmd = &cobra.Command{
	Use:   "add <group-id> <username...>",
	Short: "Add members to a group",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, func(s *store.Store, a *App, me model.User) error {
			candidates, err := lookupAll(s, args[1:])
			if err != nil {
				return err
			}
			added, err := a.chat.AddMembers(args[0], me.ID, candidates)
			if err != nil {
				return err
			}
			a.printf("Added %d of %d.\n", len(added), len(candidates))
			return nil
		})
	},
}

var groupKickCmd = &cobra.Command{
	Use:   "kick <group-id> <username>",
	Short: "Remove a member from a group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, func(s *store.Store, a *App, me model.User) error {
			target, err := lookup(s, args[1])
			if err != nil {
				return err
			}
			dissolved, err := a.chat.Kick(args[0], me.ID, target.ID)
			if err != nil {
				return err
			}
			if dissolved {
				a.printf("Group dissolved.\n")
			}
			return nil
		})
	},
}

var groupLeaveCmd = &cobra.Command{
	Use:   "leave <group-id>",
	Short: "Leave a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, func(s *store.Store, a *App, me model.User) error {
			dissolved, err := a.chat.Leave(args[0], me.ID)
			if err != nil {
				return err
			}
			if dissolved {
				a.printf("Group dissolved.\n")
			}
			return nil
		})
	},
}

var groupPromoteCmd = &cobra.Command{
	Use:   "promote <group-id> <username>",
	Short: "Make a member a group admin",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, func(s *store.Store, a *App, me model.User) error {
			target, err := lookup(s, args[1])
			if err != nil {
				return err
			}
			return a.chat.Promote(args[0], me.ID, target.ID)
		})
	},
}

var groupMuteCmd = &cobra.Command{
	Use:   "mute <group-id> <username> <minutes>",
	Short: "Mute a member; 0 unmutes, -1 mutes indefinitely",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return err
		}
		return groupAction(cmd, func(s *store.Store, a *App, me model.User) error {
			target, err := lookup(s, args[1])
			if err != nil {
				return err
			}
			return a.chat.Mute(args[0], me.ID, target.ID, minutes)
		})
	},
}

var groupSettingsCmd = &cobra.Command{
	Use:   "settings <group-id>",
	Short: "Rename a group or change its avatar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return groupAction(cmd, func(s *store.Store, a *App, me model.User) error {
			conv, err := s.Conversation(args[0])
			if err != nil {
				return err
			}
			name, avatar := conv.Name, conv.AvatarURL
			if settingsName != "" {
				name = settingsName
			}
			if settingsAvatar != "" {
				avatar = settingsAvatar
			}
			changed, err := a.chat.UpdateSettings(args[0], me.ID, name, avatar)
			if err != nil {
				return err
			}
			if !changed {
				a.printf("Nothing to change.\n")
			}
			return nil
		})
	},
}

func init() {
	groupSettingsCmd.Flags().StringVar(&settingsName, "name", "", "new group name")
	groupSettingsCmd.Flags().StringVar(&settingsAvatar, "avatar", "", "new avatar URL")

	groupCmd.AddCommand(groupCreateCmd, groupJoinCmd, groupAddCmd, groupKickCmd,
		groupLeaveCmd, groupPromoteCmd, groupMuteCmd, groupSettingsCmd)
	rootCmd.AddCommand(groupCmd)
}
