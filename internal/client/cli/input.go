package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/pinboard/internal/client/client"
	"golang.org/x/term"
)

// readPassword reads from the terminal without echo; tests stub it.
var readPassword = term.ReadPassword

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// GetSimpleText shows prompt on w and returns the next line from reader with
// surrounding spaces removed. A final line without a newline still counts.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s\n> ", prompt); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword asks for a password on w and reads it from stdin without echo.
// Callers clear the returned slice once the password has been sent.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// GetMultiline reads lines until an empty one or EOF and joins them with
// newlines. Used for pin content.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s\n(finish with an empty line)\n", prompt); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// argOrPrompt returns args[i] when present and asks for the value otherwise.
func (a *App) argOrPrompt(args []string, i int, prompt string) (string, error) {
	if i < len(args) {
		return args[i], nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// idArg reads the i-th argument as a numeric id, prompting when it is missing.
func (a *App) idArg(args []string, i int, what string) (int64, error) {
	s, err := a.argOrPrompt(args, i, fmt.Sprintf("Enter %s id", what))
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(s), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s id %q", client.ErrValidation, what, s)
	}
	return id, nil
}

// confirm asks a yes/no question; anything but y/yes is a no.
func (a *App) confirm(prompt string) (bool, error) {
	answer, err := getSimpleText(a.reader, prompt+" [y/N]", a.out)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
