package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"messenger/internal/app/model"
	"messenger/internal/app/store"
)

var (
	registerDisplayName string
	registerCountry     string
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *App) error {
			var u model.User
			err := a.ctl.Do(ctx, func(s *store.Store) error {
				var err error
				u, err = s.Register(args[0], secret, registerDisplayName, registerCountry)
				return err
			})
			if err != nil {
				return err
			}
			if err := a.rememberSession(u); err != nil {
				return err
			}
			a.printf("Registered %s (%s) from %s, %s.\n", u.Username, u.ID, u.Country, a.mode())
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and remember the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := readPassword("Password: ")
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *App) error {
			var u model.User
			err := a.ctl.Do(ctx, func(s *store.Store) error {
				var err error
				u, err = s.Login(args[0], secret)
				return err
			})
			if err != nil {
				return err
			}
			if err := a.rememberSession(u); err != nil {
				return err
			}
			a.printf("Logged in as %s, %s.\n", u.Username, a.mode())
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Go offline and forget the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			if u, err := a.currentUser(); err == nil {
				if err := a.ctl.Do(ctx, func(s *store.Store) error {
					return s.Logout(u.ID)
				}); err != nil {
					return err
				}
			}
			if err := a.mirror.ClearSession(); err != nil {
				return err
			}
			a.printf("Logged out.\n")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *App) error {
			u, err := a.currentUser()
			if err != nil {
				return err
			}
			mods := make([]string, 0, len(u.Modifiers))
			for _, m := range u.Modifiers {
				mods = append(mods, string(m))
			}
			a.printf("%s (%s)\n  id:        %s\n  role:      %s\n  status:    %s\n  country:   %s\n",
				u.DisplayName, u.Username, u.ID, u.Role, u.Status, u.Country)
			if len(mods) > 0 {
				a.printf("  modifiers: %s\n", strings.Join(mods, ", "))
			}
			return nil
		})
	},
}

func init() {
	registerCmd.Flags().StringVarP(&registerDisplayName, "display-name", "n", "", "display name (defaults to the username)")
	registerCmd.Flags().StringVarP(&registerCountry, "country", "c", "", "ISO country code (defaults to US)")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd)
}
