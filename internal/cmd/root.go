// Package cmd implements the fluent CLI command tree.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	fluent "github.com/thewaterfall/fluent-go"
)

// rootFlags holds global CLI flags.
type rootFlags struct {
	Headers     []string
	Params      []string
	Vars        []string
	Data        string
	Forms       []string
	Files       []string
	Bearer      string
	Basic       string
	Profile     string
	Output      string
	JQ          string
	Timeout     time.Duration
	Concurrency int64
	Fail        bool
}

// flags is package-level mutable state reset at the start of every
// Execute call. Tests depend on this reset for clean state.
var flags rootFlags

func defaultFlags() rootFlags {
	return rootFlags{
		Output:      strings.TrimSpace(os.Getenv("FLUENT_OUTPUT")),
		Profile:     strings.TrimSpace(os.Getenv("FLUENT_PROFILE")),
		Bearer:      strings.TrimSpace(os.Getenv("FLUENT_BEARER")),
		Timeout:     fluent.DefaultTimeout,
		Concurrency: DefaultConcurrency,
	}
}

// loadEnvFile loads ~/.config/fluent/.env when present. Variables
// already set in the environment are not overwritten, so explicit
// exports always take precedence.
func loadEnvFile() {
	base, err := os.UserConfigDir()
	if err != nil {
		return
	}
	path := filepath.Join(base, "fluent", ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// Execute runs the root command.
func Execute(ctx context.Context, args []string) error {
	return executeWithOutput(ctx, args, os.Stdout, os.Stderr)
}

func executeWithOutput(ctx context.Context, args []string, out, errOut io.Writer) error {
	loadEnvFile()
	flags = defaultFlags()

	root := &cobra.Command{
		Use:           "fluent",
		Short:         "Send HTTP requests from the command line",
		Long:          "fluent assembles and sends HTTP requests: URL templating with {name} path\nvariables, query parameters, JSON/form/multipart bodies, and jq-filtered output.",
		SilenceUsage:  true,
		SilenceErrors: true,
		// Suggestions are replaced with fuzzy did-you-mean in wrapUnknownCommand.
		DisableSuggestions: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringArrayVarP(&flags.Headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	pf.StringArrayVarP(&flags.Params, "param", "q", nil, "query parameter as key=value (repeatable)")
	pf.StringArrayVarP(&flags.Vars, "var", "V", nil, "path variable as name=value (repeatable)")
	pf.StringVarP(&flags.Data, "data", "d", "", "JSON request body; @file reads a file, - reads stdin")
	pf.StringArrayVar(&flags.Forms, "form", nil, "form field as key=value; switches body to form encoding (repeatable)")
	pf.StringArrayVar(&flags.Files, "file", nil, "multipart file as field=path; switches body to multipart (repeatable)")
	pf.StringVar(&flags.Bearer, "bearer", flags.Bearer, "bearer token for the Authorization header")
	pf.StringVar(&flags.Basic, "basic", "", "basic auth credentials as user:password")
	pf.StringVar(&flags.Profile, "profile", flags.Profile, "named profile with stored base URL and credentials")
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "output format: json, jsonl, raw")
	pf.StringVar(&flags.JQ, "jq", "", "jq expression applied to the response body")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "per-request timeout")
	pf.Int64VarP(&flags.Concurrency, "concurrency", "c", flags.Concurrency, "concurrent requests when multiple URLs are given")
	pf.BoolVar(&flags.Fail, "fail", false, "exit non-zero on HTTP status >= 400")

	flagAlias(pf, "param", "query")
	flagAlias(pf, "var", "variable")
	flagAlias(pf, "bearer", "token")

	for _, method := range fluent.Methods() {
		root.AddCommand(newVerbCommand(method))
	}
	root.AddCommand(newDoCommand())
	root.AddCommand(newAuthCommand())
	root.AddCommand(newVersionCommand())

	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return wrapUnknownCommand(root, err)
	}
	return nil
}

// newVerbCommand builds one command per HTTP method, all delegating to
// the shared request path.
func newVerbCommand(method string) *cobra.Command {
	verb := strings.ToLower(method)
	return &cobra.Command{
		Use:   verb + " URL...",
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd.Context(), method, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

// flagAlias registers a hidden alias for an existing flag. Alias and
// canonical flag share the same Value, so setting either one sets both.
func flagAlias(fs *pflag.FlagSet, name, alias string) {
	f := fs.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("flagAlias: flag %q not found", name))
	}
	a := *f // shallow copy, shares the Value interface
	a.Name = alias
	a.Shorthand = ""
	a.Usage = ""
	a.Hidden = true
	fs.AddFlag(&a)
}

func newDoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "do METHOD URL...",
		Short: "Send a request with an explicit HTTP method",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(strings.TrimSpace(args[0]))
			if !fluent.ValidMethod(method) {
				return unknownMethodError(args[0])
			}
			return runRequest(cmd.Context(), method, args[1:], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}
