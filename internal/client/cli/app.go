// Package cli implements the dietctl commands on top of the api client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/dailydiet/internal/client/api"
	"github.com/dmitrijs2005/dailydiet/internal/client/config"
)

// Backend is the part of api.Client the commands use.
type Backend interface {
	Register(ctx context.Context, name, email, password string) (*api.User, error)
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context, all bool) error
	ListMeals(ctx context.Context) ([]api.Meal, error)
	CreateMeal(ctx context.Context, in api.MealInput) (*api.Meal, error)
	DeleteMeal(ctx context.Context, id string) error
	Metrics(ctx context.Context) (*api.Metrics, error)
	UploadPhoto(ctx context.Context, id string, r io.Reader, size int64, contentType string) error
	PhotoURL(ctx context.Context, id string) (string, error)
}

// ErrUsage marks a malformed command line.
var ErrUsage = errors.New("usage")

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type App struct {
	backend Backend
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) *App {
	client := api.NewClient(c.ServerURL, c.RequestTimeout, api.NewFileSessionStore(c.SessionFile))
	return newApp(client, os.Stdin, os.Stdout)
}

func newApp(b Backend, in io.Reader, out io.Writer) *App {
	return &App{backend: b, reader: bufio.NewReader(in), out: out}
}

const usage = `Usage: dietctl [-s server] [-f session-file] <command>

Commands:
  register                                     create an account
  login                                        log in and store the session
  logout [-all]                                end this session (or all of them)
  meals                                        list your meals
  add <name> <yyyy-mm-ddThh:mm> <on|off> [description]
  delete <id>                                  delete a meal
  metrics                                      show diet statistics
  photo <id> <file>                            attach a photo to a meal
  photo-url <id>                               print a download link for the photo`

// Run executes one command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, usage)
		return ErrUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "logout":
		return a.logout(ctx, rest)
	case "meals", "list":
		return a.listMeals(ctx)
	case "add":
		return a.addMeal(ctx, rest)
	case "delete":
		return a.deleteMeal(ctx, rest)
	case "metrics":
		return a.metrics(ctx)
	case "photo":
		return a.uploadPhoto(ctx, rest)
	case "photo-url":
		return a.photoURL(ctx, rest)
	case "help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		fmt.Fprintln(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, cmd)
	}
}
