package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/pinboard/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Signup(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Whoami(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error

	Pins(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Mine(ctx context.Context, args []string) error
	Liked(ctx context.Context, args []string) error
	Saved(ctx context.Context, args []string) error
	Create(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error

	Like(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Unsave(ctx context.Context, args []string) error
	Unlike(ctx context.Context, args []string) error

	Comments(ctx context.Context, args []string) error
	Comment(ctx context.Context, args []string) error
	EditComment(ctx context.Context, args []string) error
	DeleteComment(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: signup, login, pins, search, show, comments, help, exit"
	helpLoggedIn  = "Available commands: pins, search, show, mine, liked, saved, create, edit, delete, " +
		"like, unlike, save, unsave, comments, comment, editcomment, delcomment, whoami, rename, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the pinboard CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the remaining tokens to the handler on 'a'. The loop exits on EOF,
// when ctx is done or when the user types "exit" or "quit".
//
// A failing handler gets exactly one line printed: its services.Notice.
// Handlers print their own results.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("pinboard %s> ", statusFn()))

		line, rerr := reader.ReadString('\n')
		if rerr != nil && (!errors.Is(rerr, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			if rerr != nil {
				return
			}
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		var err error
		switch cmd {
		case "help", "?":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "signup", "register":
			err = a.Signup(ctx, args)
		case "login":
			err = a.Login(ctx, args)
		case "logout":
			err = a.Logout(ctx, args)
		case "whoami":
			err = a.Whoami(ctx, args)
		case "rename":
			err = a.Rename(ctx, args)

		case "pins", "l", "list":
			err = a.Pins(ctx, args)
		case "search":
			err = a.Search(ctx, args)
		case "show":
			err = a.Show(ctx, args)
		case "mine", "profile":
			err = a.Mine(ctx, args)
		case "liked":
			err = a.Liked(ctx, args)
		case "saved":
			err = a.Saved(ctx, args)
		case "create":
			err = a.Create(ctx, args)
		case "edit":
			err = a.Edit(ctx, args)
		case "delete":
			err = a.Delete(ctx, args)

		case "like":
			err = a.Like(ctx, args)
		case "save":
			err = a.Save(ctx, args)
		case "unsave":
			err = a.Unsave(ctx, args)
		case "unlike":
			err = a.Unlike(ctx, args)

		case "comments":
			err = a.Comments(ctx, args)
		case "comment":
			err = a.Comment(ctx, args)
		case "editcomment":
			err = a.EditComment(ctx, args)
		case "delcomment":
			err = a.DeleteComment(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(services.Notice(err))
		}
		if rerr != nil {
			return
		}
	}
}
