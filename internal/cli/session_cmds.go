package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"dairyDispatch/internal/auth"
	"dairyDispatch/internal/logger"
	"dairyDispatch/internal/ui"
)

func newLoginCmd(app *App) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(app.In)
			if username == "" {
				fmt.Fprint(app.Out, "Username: ")
				username = readLine(r)
			}
			if password == "" {
				fmt.Fprint(app.Out, "Password: ")
				password = readLine(r)
			}
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			sess, err := app.API.Login(cmd.Context(), username, password)
			if err != nil {
				return app.friendly(err)
			}
			if err := app.Session.Login(cmd.Context(), sess); err != nil {
				return fmt.Errorf("store session: %w", err)
			}
			app.Log.Info("logged in", logger.Action("login"), slog.String("username", username), slog.String("role", string(sess.Role)))
			fmt.Fprintf(app.Out, "Logged in as %s (%s)\n", username, roleLabel(string(sess.Role)))
			fmt.Fprintln(app.Out, ui.RenderNav(auth.NavigationFor(app.Session), ""))
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func readLine(r *bufio.Reader) string {
	s, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return ""
	}
	return strings.TrimSpace(s)
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Logged out")
			return nil
		},
	}
}

type whoami struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Session.Snapshot()
			w := whoami{Authenticated: app.Session.Authenticated(), Username: s.Username, Role: string(s.Role)}
			if info := auth.InspectToken(s.Token); !info.ExpiresAt.IsZero() {
				w.ExpiresAt = info.ExpiresAt.Format("2006-01-02 15:04:05 MST")
			}
			return render(app.Out, app.output, w, func(out io.Writer) error {
				if !w.Authenticated {
					_, err := fmt.Fprintln(out, "Not logged in")
					return err
				}
				fmt.Fprintf(out, "%s (%s)\n", w.Username, roleLabel(w.Role))
				if w.ExpiresAt != "" {
					fmt.Fprintf(out, "session expires %s\n", w.ExpiresAt)
				}
				return nil
			})
		},
	}
}

func newNavCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "List the screens available to the current role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := auth.NavigationFor(app.Session)
			return render(app.Out, app.output, items, func(out io.Writer) error {
				who := ""
				if app.Session.Authenticated() {
					who = fmt.Sprintf("%s (%s)", app.Session.Username(), roleLabel(string(app.Session.Role())))
				}
				_, err := fmt.Fprintln(out, ui.RenderNav(items, who))
				return err
			})
		},
	}
}

func roleLabel(r string) string {
	switch r {
	case "admin":
		return "dispatcher"
	case "conductor":
		return "driver"
	case "":
		return "no role"
	default:
		return r
	}
}
