package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/dailydiet/internal/common"
)

func (a *App) register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.backend.Register(ctx, name, email, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s. Run 'dietctl login' to start.\n", u.Email)
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.backend.Login(ctx, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

func (a *App) logout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	all := fs.Bool("all", false, "end every session of the account")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: logout [-all]", ErrUsage)
	}

	if err := a.backend.Logout(ctx, *all); err != nil {
		return err
	}

	if *all {
		fmt.Fprintln(a.out, "Logged out of all sessions.")
	} else {
		fmt.Fprintln(a.out, "Logged out.")
	}
	return nil
}
