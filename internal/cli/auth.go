package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/animeshelf/internal/catalog"
	"github.com/existflow/animeshelf/internal/model"
	"github.com/existflow/animeshelf/internal/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long: `Manage your catalog account.

A login lasts seven days; after that the stored session is discarded
and you need to log in again.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the catalog",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and forget the stored session",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runStatus,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account and log in",
	RunE:  runRegister,
}

var loginUsername string

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(registerCmd)

	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when empty)")
	registerCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when empty)")
}

// prompter reads answers from the command's stdin. Passwords are read
// without echo when stdin is a terminal.
type prompter struct {
	cmd    *cobra.Command
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{cmd: cmd, reader: bufio.NewReader(cmd.InOrStdin())}
}

func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.cmd.OutOrStdout(), prompt)
	s, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) password(prompt string) (string, error) {
	if f, ok := p.cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.cmd.OutOrStdout(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}
	return p.line(prompt)
}

func (p *prompter) credentials() (model.Credentials, error) {
	username := strings.TrimSpace(loginUsername)
	if username == "" {
		u, err := p.line("Username: ")
		if err != nil {
			return model.Credentials{}, err
		}
		username = strings.TrimSpace(u)
	}
	if username == "" {
		return model.Credentials{}, fmt.Errorf("username required")
	}

	password, err := p.password("Password: ")
	if err != nil {
		return model.Credentials{}, err
	}
	if password == "" {
		return model.Credentials{}, fmt.Errorf("password required")
	}
	return model.Credentials{Username: username, Password: password}, nil
}

// login checks creds against the catalog and stores the session
func login(cmd *cobra.Command, a *app, creds model.Credentials) error {
	res, err := a.api.Login(cmd.Context(), creds)
	if err != nil {
		if errors.Is(err, catalog.ErrUnauthorized) {
			return fmt.Errorf("invalid username or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}
	if err := a.session.Login(cmd.Context(), res.UserID.String()); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	creds, err := newPrompter(cmd).credentials()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔄 Logging in...")
	if err := login(cmd, a, creds); err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Logged in as user %s\n", a.session.UserID())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if !a.session.LoggedIn() {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}
	if err := a.session.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Fprintln(out, "✅ Logged out successfully.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	s := a.session.Current()
	if !s.LoggedIn {
		fmt.Fprintln(out, "○ Not logged in.")
		return nil
	}
	fmt.Fprintf(out, "● Logged in as user %s\n", s.UserID)
	fmt.Fprintf(out, "  since   %s\n", s.LoginTime.Local().Format(time.DateTime))
	fmt.Fprintf(out, "  expires %s (%s left)\n",
		s.ExpiresAt().Local().Format(time.DateTime),
		remaining(s))
	return nil
}

func remaining(s session.Session) time.Duration {
	return max(0, time.Until(s.ExpiresAt())).Round(time.Minute)
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd)
	creds, err := p.credentials()
	if err != nil {
		return err
	}
	confirm, err := p.password("Confirm Password: ")
	if err != nil {
		return err
	}
	if creds.Password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔄 Creating account...")
	if _, err := a.api.Register(cmd.Context(), creds); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	if err := login(cmd, a, creds); err != nil {
		return err
	}

	fmt.Fprintf(out, "✅ Account created and logged in as user %s\n", a.session.UserID())
	return nil
}
