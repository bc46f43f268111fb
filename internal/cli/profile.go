package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"messenger/internal/app/model"
	"messenger/internal/app/store"
)

var (
	profileDisplayName string
	profileAvatar      string
	profileStatus      string
	profileCountry     string
	profileAutoMessage string
	profileFilter      string
	profilePassword    bool
)

func printUsers(a *App, users []model.User) {
	if len(users) == 0 {
		a.printf("No users.\n")
		return
	}
	for _, u := range users {
		a.printf("%-24s %-20s %-8s %-8s %s\n", u.ID, u.Username, u.Status, u.Country, u.DisplayName)
	}
}

var blockCmd = &cobra.Command{
	Use:   "block <username>",
	Short: "Block or unblock a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			me, err := a.currentUser()
			if err != nil {
				return err
			}
			return a.ctl.Do(ctx, func(s *store.Store) error {
				target, err := lookup(s, args[0])
				if err != nil {
					return err
				}
				updated, err := s.ToggleBlock(me.ID, target.ID)
				if err != nil {
					return err
				}
				if updated.HasBlocked(target.ID) {
					a.printf("Blocked %s.\n", target.Username)
				} else {
					a.printf("Unblocked %s.\n", target.Username)
				}
				return nil
			})
		})
	},
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List the users you share a conversation with",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			me, err := a.currentUser()
			if err != nil {
				return err
			}
			a.ctl.Read(func(s *store.Store) { printUsers(a, s.Contacts(me.ID)) })
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find users by username",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			me, err := a.currentUser()
			if err != nil {
				return err
			}
			a.ctl.Read(func(s *store.Store) { printUsers(a, s.Search(me.ID, args[0])) })
			return nil
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var upd store.ProfileUpdate
		flags := cmd.Flags()

		if flags.Changed("display-name") {
			upd.DisplayName = &profileDisplayName
		}
		if flags.Changed("avatar") {
			upd.AvatarURL = &profileAvatar
		}
		if flags.Changed("status") {
			status := model.Status(profileStatus)
			switch status {
			case model.StatusOnline, model.StatusOffline, model.StatusBusy:
			default:
				return fmt.Errorf("unknown status %q", profileStatus)
			}
			upd.Status = &status
		}
		if flags.Changed("country") {
			upd.Country = &profileCountry
		}
		if flags.Changed("auto-message") {
			upd.AutoMessage = &profileAutoMessage
		}
		if profilePassword {
			secret, err := readPassword("New password: ")
			if err != nil {
				return err
			}
			upd.Password = &secret
		}

		return withApp(cmd, func(ctx context.Context, a *App) error {
			me, err := a.currentUser()
			if err != nil {
				return err
			}
			if flags.Changed("filter") {
				prefs := me.Preferences
				prefs.FilterEnabled = profileFilter != "off"
				if prefs.FilterEnabled {
					prefs.FilterLevel = model.FilterLevel(profileFilter)
				}
				upd.Preferences = &prefs
			}

			var u model.User
			err = a.ctl.Do(ctx, func(s *store.Store) error {
				var err error
				u, err = s.UpdateProfile(me.ID, upd)
				return err
			})
			if err != nil {
				return err
			}
			// A password change invalidates the remembered session.
			if upd.Password != nil {
				if err := a.rememberSession(u); err != nil {
					return err
				}
			}
			a.printf("Profile updated.\n")
			return nil
		})
	},
}

func init() {
	f := profileCmd.Flags()
	f.StringVar(&profileDisplayName, "display-name", "", "display name")
	f.StringVar(&profileAvatar, "avatar", "", "avatar URL")
	f.StringVar(&profileStatus, "status", "", "online, offline or busy")
	f.StringVar(&profileCountry, "country", "", "ISO country code")
	f.StringVar(&profileAutoMessage, "auto-message", "", "greeting posted when someone opens a chat with you")
	f.StringVar(&profileFilter, "filter", "", "content filter: off, low, medium or max")
	f.BoolVar(&profilePassword, "password", false, "prompt for a new password")

	rootCmd.AddCommand(blockCmd, contactsCmd, searchCmd, profileCmd)
}
