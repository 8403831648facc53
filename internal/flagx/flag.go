// Package flagx lets independent packages parse only the command-line flags
// they own, so that a config file flag and the regular flag set do not trip
// over each other's unknown flags.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the given flags.
//
// valued flags take a value either inline ("-d=/tmp", "--data=/tmp") or as the
// next argument ("-d /tmp"); the next argument is only consumed when it does
// not start with '-'. switches are boolean flags: they are kept as-is and never
// consume the following argument, so "-dev positional" keeps "positional" out.
//
// The result is never nil.
func FilterArgs(args []string, valued []string, switches ...string) []string {
	kind := make(map[string]bool, len(valued)+len(switches))
	for _, f := range valued {
		kind[f] = true
	}
	for _, f := range switches {
		kind[f] = false
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := kind[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		takesValue, ok := kind[arg]
		if !ok {
			continue
		}
		out = append(out, arg)
		if takesValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// ConfigPath extracts the JSON config file path passed via -c or -config.
// The last occurrence wins; an empty string means no file was requested.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
