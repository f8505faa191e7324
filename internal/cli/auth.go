package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/existflow/snipvault/internal/app"
	"github.com/spf13/cobra"
)

func newAuthCmd(o *options) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  `Manage your account on the snippet server.`,
	}

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the snippet server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runLogin(cmd)
		},
	}
	loginCmd.Flags().StringP("username", "u", "", "Username (prompted when empty)")

	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(&cobra.Command{
		Use:   "register",
		Short: "Create a new account on the snippet server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runRegister(cmd)
		},
	})
	authCmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Logout and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runLogout(cmd)
		},
	})
	authCmd.AddCommand(&cobra.Command{
		Use:   "whoami",
		Short: "Show the account the stored token belongs to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runWhoAmI(cmd)
		},
	})
	authCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether a token is stored for the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runStatus(cmd)
		},
	})

	return authCmd
}

func (o *options) runLogin(cmd *cobra.Command) error {
	a, closeApp, err := o.openApp()
	if err != nil {
		return err
	}
	defer closeApp()

	p := newPrompter(cmd)
	out := cmd.OutOrStdout()

	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		if username, err = p.line("Username: "); err != nil {
			return err
		}
	}
	password, err := p.password("Password: ")
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "🔄 Logging in...")
	if err := a.Login(context.Background(), username, password); err != nil {
		return errors.New(app.ErrorMessage(err, app.MsgLoginFailed))
	}

	fmt.Fprintf(out, "✅ Logged in as %s\n", username)
	return nil
}

func (o *options) runRegister(cmd *cobra.Command) error {
	a, closeApp, err := o.openApp()
	if err != nil {
		return err
	}
	defer closeApp()

	p := newPrompter(cmd)
	out := cmd.OutOrStdout()

	username, err := p.line("Username: ")
	if err != nil {
		return err
	}
	email, err := p.line("Email: ")
	if err != nil {
		return err
	}
	password, err := p.password("Password: ")
	if err != nil {
		return err
	}
	confirm, err := p.password("Confirm Password: ")
	if err != nil {
		return err
	}

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Fprintln(out, "🔄 Creating account...")
	if err := a.Register(context.Background(), username, email, password); err != nil {
		return errors.New(app.ErrorMessage(err, app.MsgRegisterFailed))
	}

	fmt.Fprintln(out, "✅ Account created! Login with: snip auth login")
	return nil
}

func (o *options) runLogout(cmd *cobra.Command) error {
	a, closeApp, err := o.openApp()
	if err != nil {
		return err
	}
	defer closeApp()

	out := cmd.OutOrStdout()
	if !a.Session.IsAuthenticated() {
		fmt.Fprintln(out, "Not logged in.")
		return nil
	}

	if err := a.Logout(); err != nil {
		return err
	}

	fmt.Fprintln(out, "✅ Logged out successfully.")
	return nil
}

func (o *options) runWhoAmI(cmd *cobra.Command) error {
	a, closeApp, err := o.openApp()
	if err != nil {
		return err
	}
	defer closeApp()

	out := cmd.OutOrStdout()
	if !a.Session.IsAuthenticated() {
		fmt.Fprintln(out, "Not logged in. Login with: snip auth login")
		return nil
	}

	user, err := a.WhoAmI(context.Background())
	if err != nil {
		return errors.New(app.ErrorMessage(err, app.MsgWhoAmIFailed))
	}

	fmt.Fprintf(out, "Username: %s\n", user.Username)
	fmt.Fprintf(out, "Email:    %s\n", user.Email)
	if user.CreatedAt != nil {
		fmt.Fprintf(out, "Joined:   %s\n", user.CreatedAt.Local().Format("Jan 2, 2006"))
	}
	return nil
}

func (o *options) runStatus(cmd *cobra.Command) error {
	database, err := o.openDB()
	if err != nil {
		return err
	}
	defer func() {
		_ = database.Close()
	}()
	a := o.newApp(database)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Server:    %s\n", a.API.BaseURL())
	if a.Session.IsAuthenticated() {
		fmt.Fprintln(out, "Status:    ✓ Logged in")
	} else {
		fmt.Fprintln(out, "Status:    Not logged in")
	}

	origins, err := database.Origins(context.Background())
	if err != nil {
		return err
	}
	var others []string
	for _, origin := range origins {
		if origin != a.API.BaseURL() {
			others = append(others, origin)
		}
	}
	if len(others) > 0 {
		fmt.Fprintf(out, "Also signed in to: %s\n", strings.Join(others, ", "))
	}
	return nil
}
