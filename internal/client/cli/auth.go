package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pinboard/internal/client/services"
)

// Signup prompts for an email, a username and a password and creates the
// account. The new user is logged in on success.
func (a *App) Signup(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	ident, err := a.session.Signup(ctx, email, username, string(password))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", ident.DisplayName)
	return nil
}

// Login prompts for credentials and authenticates. The email may be given as
// the first argument.
func (a *App) Login(ctx context.Context, args []string) error {
	email, err := a.argOrPrompt(args, 0, "Enter email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	ident, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		a.logger.Info(ctx, "login unsuccessful", "err", err)
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", ident.DisplayName)
	return nil
}

func (a *App) Logout(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return services.ErrNotAuthenticated
	}
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Whoami(_ context.Context, _ []string) error {
	me := a.session.Current()
	if me == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (user #%d)\n", me.DisplayName, me.Email, me.ID)
	return nil
}

// Rename changes the current user's display name. The new name may be given
// as arguments.
func (a *App) Rename(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return services.ErrNotAuthenticated
	}
	name := strings.Join(args, " ")
	if name == "" {
		var err error
		if name, err = getSimpleText(a.reader, "Enter new username", a.out); err != nil {
			return err
		}
	}

	ident, err := a.session.UpdateDisplayName(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "You are now %s\n", ident.DisplayName)
	return nil
}
