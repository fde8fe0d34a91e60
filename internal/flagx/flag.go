// Package flagx lets several parsers share one command line: each picks out
// the flags it owns and ignores the rest.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// flagName returns the name of a "-name", "--name" or "-name=value" argument,
// or "" when arg is not a flag.
func flagName(arg string) string {
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		return ""
	}
	name := strings.TrimPrefix(strings.TrimPrefix(arg, "-"), "-")
	name, _, _ = strings.Cut(name, "=")
	return name
}

// FilterArgs keeps only the flags named in names (given without dashes) and
// their values. Both "-name value" and "-name=value" forms are recognised,
// with one or two dashes. Scanning stops at a "--" terminator.
func FilterArgs(args []string, names ...string) []string {
	allowed := make(map[string]struct{}, len(names))
	for _, n := range names {
		allowed[strings.TrimLeft(n, "-")] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}

		name := flagName(arg)
		if _, ok := allowed[name]; !ok || name == "" {
			continue
		}
		filtered = append(filtered, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		// a following non-flag argument is this flag's value
		if i+1 < len(args) && flagName(args[i+1]) == "" && args[i+1] != "--" {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// ConfigFile returns the path given with -c or -config, or "".
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, "c", "config"))

	return path
}
