package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/client/ownership"
	"github.com/dmitrijs2005/pinboard/internal/client/services"
)

// Pins refreshes the feed with every pin.
func (a *App) Pins(ctx context.Context, _ []string) error {
	pins, err := a.feed.Refresh(ctx)
	if err != nil {
		return err
	}
	a.printPins(pins)
	return nil
}

// Search filters the feed by the arguments; no arguments lists every pin.
func (a *App) Search(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	pins, err := a.feed.Search(ctx, query)
	if err != nil {
		return err
	}
	if q := strings.TrimSpace(query); q != "" {
		fmt.Fprintf(a.out, "Results for %q:\n", q)
	}
	a.printPins(pins)
	return nil
}

// Show prints a pin with its comments.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.idArg(args, 0, "pin")
	if err != nil {
		return err
	}
	pin, err := a.pins.Get(ctx, id)
	if err != nil {
		return err
	}
	comments, err := a.comments.List(ctx, id)
	if err != nil {
		return err
	}

	a.printPin(*pin)
	fmt.Fprintf(a.out, "\nComments (%d):\n", len(comments))
	a.printComments(comments)
	return nil
}

// Mine prints the current user's profile: their own pins and the ones they liked.
func (a *App) Mine(ctx context.Context, _ []string) error {
	p, err := a.pins.LoadProfile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\n", p.Identity.DisplayName, p.Identity.Email)
	fmt.Fprintf(a.out, "\nYour pins (%d):\n", len(p.Pins))
	a.printPins(p.Pins)
	fmt.Fprintf(a.out, "\nLiked (%d):\n", len(p.Liked))
	a.printPins(p.Liked)
	return nil
}

func (a *App) Liked(ctx context.Context, _ []string) error {
	me := a.session.Current()
	if me == nil {
		return services.ErrNotAuthenticated
	}
	pins, err := a.pins.ListLiked(ctx, me.ID)
	if err != nil {
		return err
	}
	a.printPins(pins)
	return nil
}

// Saved lists the pins saved during this session. Saved pins deleted on the
// server are skipped and dropped from the saved set.
func (a *App) Saved(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return services.ErrNotAuthenticated
	}
	ids := a.cache.Marked(models.MarkSaved)
	if len(ids) == 0 {
		fmt.Fprintln(a.out, "No saved pins.")
		return nil
	}
	pins := make([]models.Pin, 0, len(ids))
	for _, id := range ids {
		p, err := a.pins.Get(ctx, id)
		if errors.Is(err, client.ErrNotFound) {
			a.cache.Unmark(models.MarkSaved, id)
			continue
		}
		if err != nil {
			return err
		}
		pins = append(pins, *p)
	}
	if len(pins) == 0 {
		fmt.Fprintln(a.out, "No saved pins.")
		return nil
	}
	a.printPins(pins)
	return nil
}

// readDraft prompts for a pin's fields. Blank answers keep the values of cur.
func (a *App) readDraft(cur models.PinDraft) (models.PinDraft, error) {
	hint := func(prompt, v string) string {
		if v == "" {
			return prompt
		}
		return fmt.Sprintf("%s (blank keeps %q)", prompt, oneLine(v))
	}

	d := cur
	title, err := getSimpleText(a.reader, hint("Enter title", cur.Title), a.out)
	if err != nil {
		return d, err
	}
	if title != "" {
		d.Title = title
	}

	content, err := getMultiline(a.reader, hint("Enter content", cur.Content), a.out)
	if err != nil {
		return d, err
	}
	if content != "" {
		d.Content = content
	}

	d.ImagePath, err = getSimpleText(a.reader, "Enter image file path (optional)", a.out)
	if err != nil {
		return d, err
	}
	return d, nil
}

func (a *App) Create(ctx context.Context, _ []string) error {
	if !a.isLoggedIn() {
		return services.ErrNotAuthenticated
	}
	draft, err := a.readDraft(models.PinDraft{})
	if err != nil {
		return err
	}
	pin, err := a.pins.Create(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created pin #%d\n", pin.ID)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.idArg(args, 0, "pin")
	if err != nil {
		return err
	}
	pin, err := a.pins.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ownership.Check(a.session.Current(), *pin); err != nil {
		return err
	}

	draft, err := a.readDraft(models.PinDraft{Title: pin.Title, Content: pin.Content})
	if err != nil {
		return err
	}
	updated, err := a.pins.Update(ctx, *pin, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Updated pin #%d\n", updated.ID)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.idArg(args, 0, "pin")
	if err != nil {
		return err
	}
	pin, err := a.pins.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := ownership.Check(a.session.Current(), *pin); err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("Delete pin #%d %q?", pin.ID, pin.Title))
	if err != nil || !ok {
		return err
	}
	if err := a.pins.Delete(ctx, *pin); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted pin #%d\n", pin.ID)
	return nil
}

func (a *App) mark(ctx context.Context, args []string, kind models.MarkKind) error {
	id, err := a.idArg(args, 0, "pin")
	if err != nil {
		return err
	}
	if err := a.cache.Mark(ctx, kind, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Pin #%d %s.\n", id, kind)
	return nil
}

func (a *App) Like(ctx context.Context, args []string) error {
	return a.mark(ctx, args, models.MarkLiked)
}

func (a *App) Save(ctx context.Context, args []string) error {
	return a.mark(ctx, args, models.MarkSaved)
}

func (a *App) unmark(args []string, kind models.MarkKind, done string) error {
	if !a.isLoggedIn() {
		return services.ErrNotAuthenticated
	}
	id, err := a.idArg(args, 0, "pin")
	if err != nil {
		return err
	}
	a.cache.Unmark(kind, id)
	fmt.Fprintf(a.out, "Pin #%d %s.\n", id, done)
	return nil
}

func (a *App) Unsave(_ context.Context, args []string) error {
	return a.unmark(args, models.MarkSaved, "unsaved")
}

// Unlike clears the like in this session only; the backend keeps it and it
// returns on the next login.
func (a *App) Unlike(_ context.Context, args []string) error {
	return a.unmark(args, models.MarkLiked, "unliked (this session only)")
}
