package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	fluent "github.com/thewaterfall/fluent-go"
)

// unknownMethodError fails fast on a method fluent won't dispatch,
// suggesting the closest valid one.
func unknownMethodError(input string) error {
	if suggestion := closest(input, fluent.Methods()); suggestion != "" {
		return fmt.Errorf("unknown http method %q (did you mean %s?)", input, suggestion)
	}
	return fmt.Errorf("unknown http method %q", input)
}

var unknownCommandRe = regexp.MustCompile(`unknown command "([^"]+)"`)

// wrapUnknownCommand augments cobra's unknown-command error with a fuzzy
// did-you-mean across the registered subcommands.
func wrapUnknownCommand(root *cobra.Command, err error) error {
	m := unknownCommandRe.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	if suggestion := closest(m[1], names); suggestion != "" {
		return fmt.Errorf("%w (did you mean %q?)", err, suggestion)
	}
	return err
}

// closest returns the best fuzzy match for input among candidates, or
// "" when nothing resembles it.
func closest(input string, candidates []string) string {
	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}
	matches := fuzzy.Find(strings.ToLower(input), lowered)
	if len(matches) == 0 {
		return ""
	}
	return candidates[matches[0].Index]
}
