package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"messenger/internal/app/model"
	"messenger/internal/app/store"
)

var (
	createUserRole    string
	createUserCountry string
	createUserDisplay string
	roleDescription   string
	roleColor         string
	adLink            string
	banTargetRole     string
	banTargetUser     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administration commands (requires the ADMIN role)",
}

// adminRead runs fn read-only after checking the admin role.
func adminRead(cmd *cobra.Command, fn func(s *store.Store, a *App)) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		if _, err := a.requireAdmin(); err != nil {
			return err
		}
		a.ctl.Read(func(s *store.Store) { fn(s, a) })
		return nil
	})
}

// adminDo runs fn as a mutation after checking the admin role.
func adminDo(cmd *cobra.Command, fn func(s *store.Store, a *App, me model.User) error) error {
	return withApp(cmd, func(ctx context.Context, a *App) error {
		me, err := a.requireAdmin()
		if err != nil {
			return err
		}
		return a.ctl.Do(ctx, func(s *store.Store) error { return fn(s, a, me) })
	})
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminRead(cmd, func(s *store.Store, a *App) {
			st := s.Stats()
			a.printf("users:         %d\nconversations: %d\nmessages:      %d\nactive now:    %d\n",
				st.TotalUsers, st.TotalConversations, st.TotalMessages, st.ActiveNow)
		})
	},
}

var adminUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminRead(cmd, func(s *store.Store, a *App) {
			for _, u := range s.Users() {
				flags := []string{u.Role}
				if u.IsBanned {
					flags = append(flags, "banned")
				}
				for _, m := range u.Modifiers {
					flags = append(flags, string(m))
				}
				a.printf("%-24s %-20s %-4s %s\n", u.ID, u.Username, u.Country, strings.Join(flags, ","))
			}
		})
	},
}

var adminCreateUserCmd = &cobra.Command{
	Use:   "create-user <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := readPassword("Password for new user: ")
		if err != nil {
			return err
		}
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			u, err := s.CreateUser(store.NewUser{
				Username:    args[0],
				DisplayName: createUserDisplay,
				Password:    secret,
				Role:        createUserRole,
				Country:     createUserCountry,
			})
			if err != nil {
				return err
			}
			a.printf("%s\n", u.ID)
			return nil
		})
	},
}

var adminDeleteUserCmd = &cobra.Command{
	Use:   "delete-user <username>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			u, err := lookup(s, args[0])
			if err != nil {
				return err
			}
			return s.DeleteUser(u.ID)
		})
	},
}

var adminBanCmd = &cobra.Command{
	Use:   "ban <username> <true|false>",
	Short: "Set or clear an account ban",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		banned, err := strconv.ParseBool(args[1])
		if err != nil {
			return err
		}
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			u, err := lookup(s, args[0])
			if err != nil {
				return err
			}
			_, err = s.SetBanned(u.ID, banned)
			return err
		})
	},
}

var adminRoleCmd = &cobra.Command{
	Use:   "set-role <username> <role-id>",
	Short: "Assign a role to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			u, err := lookup(s, args[0])
			if err != nil {
				return err
			}
			role := strings.ToUpper(args[1])
			_, err = s.UpdateProfile(u.ID, store.ProfileUpdate{Role: &role})
			return err
		})
	},
}

var adminModifiersCmd = &cobra.Command{
	Use:   "modifiers <username> [modifier...]",
	Short: "Replace a user's modifiers; none clears them",
	Long: `Replace a user's modifiers. Known modifiers are ALWAYS_ONLINE, VIP,
CANT_CHAT and CANT_SEE_MESSAGES.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mods := make([]model.Modifier, 0, len(args)-1)
		for _, raw := range args[1:] {
			m, err := model.ParseModifier(strings.ToUpper(raw))
			if err != nil {
				return err
			}
			mods = append(mods, m)
		}
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			u, err := lookup(s, args[0])
			if err != nil {
				return err
			}
			_, err = s.SetModifiers(u.ID, mods)
			return err
		})
	},
}

var adminRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List, add and delete roles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminRead(cmd, func(s *store.Store, a *App) {
			for _, r := range s.Roles() {
				system := ""
				if r.IsSystem {
					system = " (system)"
				}
				a.printf("%-16s %-8s %s%s\n", r.ID, r.Color, r.Description, system)
			}
		})
	},
}

var adminRolesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			r, err := s.AddRole(args[0], roleDescription, roleColor)
			if err != nil {
				return err
			}
			a.printf("%s\n", r.ID)
			return nil
		})
	},
}

var adminRolesDeleteCmd = &cobra.Command{
	Use:   "delete <role-id>",
	Short: "Delete a role; holders fall back to USER",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			return s.DeleteRole(strings.ToUpper(args[0]))
		})
	},
}

var adminBansCmd = &cobra.Command{
	Use:   "bans",
	Short: "List, add and delete country bans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminRead(cmd, func(s *store.Store, a *App) {
			for _, b := range s.CountryBans() {
				target := b.TargetRoleID
				if b.TargetUserID != "" {
					target = b.TargetUserID
				}
				a.printf("%-24s %-4s %-18s %s\n", b.ID, b.CountryCode, b.Kind, target)
			}
		})
	},
}

var adminBansAddCmd = &cobra.Command{
	Use:   "add <country> <FULL_CHAT|USERNAME|ROLE_INTERACTION>",
	Short: "Add a country ban",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind model.BanKind
		if err := kind.UnmarshalText([]byte(strings.ToUpper(args[1]))); err != nil {
			return err
		}
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			targetUser := ""
			if banTargetUser != "" {
				u, err := lookup(s, banTargetUser)
				if err != nil {
					return err
				}
				targetUser = u.ID
			}
			b, err := s.AddCountryBan(args[0], kind, strings.ToUpper(banTargetRole), targetUser)
			if err != nil {
				return err
			}
			a.printf("%s\n", b.ID)
			return nil
		})
	},
}

var adminBansUsernameCmd = &cobra.Command{
	Use:   "ban-username <username>",
	Short: "Ban a user in their own country",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			b, err := s.BanUsername(args[0])
			if err != nil {
				return err
			}
			a.printf("%s\n", b.ID)
			return nil
		})
	},
}

var adminBansDeleteCmd = &cobra.Command{
	Use:   "delete <ban-id>",
	Short: "Delete a country ban",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			return s.DeleteCountryBan(args[0])
		})
	},
}

var adminAdsCmd = &cobra.Command{
	Use:   "ads",
	Short: "List, add and delete ads",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminRead(cmd, func(s *store.Store, a *App) {
			for _, ad := range s.Ads() {
				a.printf("%-24s %-20s %s\n", ad.ID, ad.Name, ad.Text)
			}
		})
	},
}

var adminAdsAddCmd = &cobra.Command{
	Use:   "add <name> <text> <poster-url>",
	Short: "Add an ad",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			ad, err := s.AddAd(args[0], args[1], args[2], adLink)
			if err != nil {
				return err
			}
			a.printf("%s\n", ad.ID)
			return nil
		})
	},
}

var adminAdsDeleteCmd = &cobra.Command{
	Use:   "delete <ad-id>",
	Short: "Delete an ad",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return adminDo(cmd, func(s *store.Store, a *App, _ model.User) error {
			return s.DeleteAd(args[0])
		})
	},
}

func init() {
	adminCreateUserCmd.Flags().StringVar(&createUserRole, "role", model.RoleUser, "role ID")
	adminCreateUserCmd.Flags().StringVar(&createUserCountry, "country", "", "ISO country code (defaults to US)")
	adminCreateUserCmd.Flags().StringVar(&createUserDisplay, "display-name", "", "display name")

	adminRolesAddCmd.Flags().StringVar(&roleDescription, "description", "", "role description")
	adminRolesAddCmd.Flags().StringVar(&roleColor, "color", "gray", "badge color")

	adminBansAddCmd.Flags().StringVar(&banTargetRole, "role", "", "target role for ROLE_INTERACTION bans")
	adminBansAddCmd.Flags().StringVar(&banTargetUser, "user", "", "target username for USERNAME bans")

	adminAdsAddCmd.Flags().StringVar(&adLink, "link", "", "click-through URL")

	adminRolesCmd.AddCommand(adminRolesAddCmd, adminRolesDeleteCmd)
	adminBansCmd.AddCommand(adminBansAddCmd, adminBansUsernameCmd, adminBansDeleteCmd)
	adminAdsCmd.AddCommand(adminAdsAddCmd, adminAdsDeleteCmd)

	adminCmd.AddCommand(adminStatsCmd, adminUsersCmd, adminCreateUserCmd, adminDeleteUserCmd,
		adminBanCmd, adminRoleCmd, adminModifiersCmd, adminRolesCmd, adminBansCmd, adminAdsCmd)
	rootCmd.AddCommand(adminCmd)
}
