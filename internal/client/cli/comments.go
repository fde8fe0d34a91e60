package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/client/ownership"
	"github.com/dmitrijs2005/pinboard/internal/client/services"
)

func (a *App) Comments(ctx context.Context, args []string) error {
	pinID, err := a.idArg(args, 0, "pin")
	if err != nil {
		return err
	}
	comments, err := a.comments.List(ctx, pinID)
	if err != nil {
		return err
	}
	a.printComments(comments)
	return nil
}

// Comment adds a comment to a pin. Usage: comment <pin id>.
func (a *App) Comment(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return services.ErrNotAuthenticated
	}
	pinID, err := a.idArg(args, 0, "pin")
	if err != nil {
		return err
	}
	content, err := getSimpleText(a.reader, "Enter comment", a.out)
	if err != nil {
		return err
	}
	c, err := a.comments.Create(ctx, pinID, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Added comment #%d\n", c.ID)
	return nil
}

// findComment looks a comment up among the pin's comments; there is no
// single-comment endpoint.
func (a *App) findComment(ctx context.Context, args []string) (*models.Comment, error) {
	pinID, err := a.idArg(args, 0, "pin")
	if err != nil {
		return nil, err
	}
	commentID, err := a.idArg(args, 1, "comment")
	if err != nil {
		return nil, err
	}
	comments, err := a.comments.List(ctx, pinID)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		if c.ID == commentID {
			return &c, nil
		}
	}
	return nil, fmt.Errorf("comment %d on pin %d: %w", commentID, pinID, client.ErrNotFound)
}

// EditComment replaces a comment's text. Usage: editcomment <pin id> <comment id>.
func (a *App) EditComment(ctx context.Context, args []string) error {
	c, err := a.findComment(ctx, args)
	if err != nil {
		return err
	}
	if err := ownership.Check(a.session.Current(), *c); err != nil {
		return err
	}
	content, err := getSimpleText(a.reader, fmt.Sprintf("Enter new text (was %q)", oneLine(c.Content)), a.out)
	if err != nil {
		return err
	}
	updated, err := a.comments.Update(ctx, *c, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated comment #%d\n", updated.ID)
	return nil
}

// DeleteComment removes a comment. Usage: delcomment <pin id> <comment id>.
func (a *App) DeleteComment(ctx context.Context, args []string) error {
	c, err := a.findComment(ctx, args)
	if err != nil {
		return err
	}
	if err := a.comments.Delete(ctx, *c); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted comment #%d\n", c.ID)
	return nil
}
