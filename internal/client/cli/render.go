package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/pinboard/internal/client/models"
	"github.com/dmitrijs2005/pinboard/internal/client/ownership"
	"github.com/dmitrijs2005/pinboard/internal/timex"
)

const dateLayout = "2006-01-02 15:04"

func formatTime(t timex.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// markers lists the current user's relation to a pin, e.g. "[yours] [liked]".
func (a *App) markers(p models.Pin) string {
	var m []string
	if ownership.CanEdit(a.session.Current(), p) {
		m = append(m, "[yours]")
	}
	if a.cache.IsMarked(models.MarkLiked, p.ID) {
		m = append(m, "[liked]")
	}
	if a.cache.IsMarked(models.MarkSaved, p.ID) {
		m = append(m, "[saved]")
	}
	return strings.Join(m, " ")
}

func (a *App) printPins(pins []models.Pin) {
	if len(pins) == 0 {
		fmt.Fprintln(a.out, "No pins.")
		return
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tOWNER\tCREATED\t")
	for _, p := range pins {
		fmt.Fprintf(tw, "#%d\t%s\tuser #%d\t%s\t%s\n", p.ID, oneLine(p.Title), p.UserID, formatTime(p.CreatedAt), a.markers(p))
	}
	_ = tw.Flush()
}

func (a *App) printPin(p models.Pin) {
	fmt.Fprintf(a.out, "#%d %s %s\n", p.ID, p.Title, a.markers(p))
	fmt.Fprintf(a.out, "by user #%d, %s\n", p.UserID, formatTime(p.CreatedAt))
	if p.HasImage() {
		fmt.Fprintf(a.out, "image: %s\n", a.pins.ImageURL(p))
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, p.Content)
}

func (a *App) printComments(comments []models.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(a.out, "No comments.")
		return
	}
	me := a.session.Current()
	for _, c := range comments {
		own := ""
		if ownership.CanEdit(me, c) {
			own = " [yours]"
		}
		fmt.Fprintf(a.out, "  #%d user #%d, %s%s: %s\n", c.ID, c.UserID, formatTime(c.CreatedAt), own, oneLine(c.Content))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
