package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"messenger/internal/app/chat"
	"messenger/internal/app/mirror"
	"messenger/internal/app/model"
	"messenger/internal/app/store"
	"messenger/internal/app/syncer"
	"messenger/internal/app/transport"
	"messenger/internal/configs"
	"messenger/internal/pkg/auth/jwt"
	"messenger/internal/pkg/errs"
	"messenger/internal/pkg/logx"
)

// App wires the client core for one command invocation.
type App struct {
	cfg    *configs.ClientConfig
	mirror *mirror.Mirror
	ctl    *syncer.Controller
	chat   *chat.Manager
	out    io.Writer
}

// openApp loads configuration, opens the mirror and performs the first sync.
func openApp(ctx context.Context, out io.Writer) (*App, error) {
	cfg, err := configs.LoadClientConfig()
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		cfg.ServerURL = flagServer
	}
	if flagMirror != "" {
		cfg.MirrorPath = flagMirror
	}

	logx.InitGlobalLoggerTo(os.Stderr, flagVerbose || cfg.Environment == "development")

	m, err := mirror.Open(cfg.MirrorPath)
	if err != nil {
		return nil, err
	}

	s := store.New()
	ctl := syncer.New(s, transport.New(cfg.ServerURL), m,
		syncer.WithFetchTimeout(cfg.FetchTimeout),
		syncer.WithAdminPassword(cfg.AdminPassword),
	)
	if err := ctl.Initialize(ctx); err != nil {
		m.Close()
		return nil, err
	}

	return &App{
		cfg:    cfg,
		mirror: m,
		ctl:    ctl,
		chat:   chat.NewManager(s),
		out:    out,
	}, nil
}

// Close releases the mirror.
func (a *App) Close() error {
	return a.mirror.Close()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// mode renders the connection mode for status lines.
func (a *App) mode() string {
	if a.ctl.Online() {
		return "online"
	}
	return "offline (local mirror)"
}

// rememberSession issues a session token for u and stores it in the mirror.
func (a *App) rememberSession(u model.User) error {
	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:         u.ID,
		Username:   u.Username,
		Credential: jwt.CredentialFingerprint(u.PasswordHash),
	}, a.cfg.SessionSecret, jwt.SessionExpiration)
	if err != nil {
		return fmt.Errorf("failed to issue session: %w", err)
	}
	return a.mirror.SetSession(u.ID, token)
}

// currentUser resolves the remembered session against the current document.
// Sessions of deleted or banned accounts, or sessions issued before a
// password change, are rejected.
func (a *App) currentUser() (model.User, error) {
	token, ok, err := a.mirror.Session()
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, errs.NewError(errs.ErrSessionInvalid)
	}

	payload, err := jwt.ParseToken(token, a.cfg.SessionSecret)
	if err != nil {
		return model.User{}, errs.NewError(errs.ErrSessionInvalid)
	}

	var (
		u     model.User
		found bool
	)
	a.ctl.Read(func(s *store.Store) {
		u, found = s.User(payload.ID)
	})
	if !found || jwt.CredentialFingerprint(u.PasswordHash) != payload.Credential {
		return model.User{}, errs.NewError(errs.ErrSessionInvalid)
	}
	if u.IsBanned || u.Role == model.RoleBanned {
		return model.User{}, errs.NewError(errs.ErrAccountBanned)
	}
	return u, nil
}

// requireAdmin returns the current user when they hold the global admin role.
func (a *App) requireAdmin() (model.User, error) {
	u, err := a.currentUser()
	if err != nil {
		return model.User{}, err
	}
	if u.Role != model.RoleAdmin {
		return model.User{}, errs.NewError(errs.ErrNotGroupAdmin)
	}
	return u, nil
}

// lookup resolves a username, or an ID when ref matches one.
func lookup(s *store.Store, ref string) (model.User, error) {
	if u, ok := s.User(ref); ok {
		return u, nil
	}
	if u, ok := s.UserByUsername(ref); ok {
		return u, nil
	}
	return model.User{}, errs.NewError(errs.ErrUserNotFound)
}

// lookupAll resolves several usernames.
func lookupAll(s *store.Store, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		u, err := lookup(s, ref)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// readPassword prompts on the terminal without echo. Non-interactive input
// is read as one line.
func readPassword(prompt string) (string, error) {
	if env := os.Getenv("MESSENGER_PASSWORD"); env != "" {
		return env, nil
	}

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
