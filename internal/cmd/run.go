package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	fluent "github.com/thewaterfall/fluent-go"
	"github.com/thewaterfall/fluent-go/internal/config"
	"github.com/thewaterfall/fluent-go/internal/filter"
	"github.com/thewaterfall/fluent-go/internal/outfmt"
)

// DefaultConcurrency is the default number of concurrent requests when
// multiple URLs are given.
const DefaultConcurrency = 5

// HTTPStatusError reports an HTTP error status under --fail.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.URL)
}

// runRequest is the single dispatch path all verb commands delegate to.
func runRequest(ctx context.Context, method string, urls []string, out, errOut io.Writer) error {
	mode, err := outfmt.Parse(flags.Output)
	if err != nil {
		return err
	}

	profile, err := loadProfile()
	if err != nil {
		return err
	}

	if len(urls) == 1 {
		resp, err := send(ctx, method, urls[0], profile)
		if err != nil {
			return err
		}
		return writeResponse(out, mode, resp, urls[0])
	}

	return fanOut(ctx, method, urls, profile, mode, out, errOut)
}

// fanOut sends one request per URL with bounded parallelism, printing
// results in input order once all requests settle.
func fanOut(ctx context.Context, method string, urls []string, profile config.Profile, mode outfmt.Mode, out, errOut io.Writer) error {
	concurrency := flags.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	type result struct {
		resp *fluent.Response[[]byte]
		err  error
	}
	results := make([]result, len(urls))
	sem := semaphore.NewWeighted(concurrency)
	g, gctx := errgroup.WithContext(ctx)

	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] = result{err: err}
				return nil
			}
			defer sem.Release(1)

			resp, err := send(gctx, method, u, profile)
			results[i] = result{resp: resp, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	record := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	for i, r := range results {
		if r.err != nil {
			fmt.Fprintf(errOut, "fluent: %s: %v\n", urls[i], r.err)
			record(r.err)
			continue
		}
		if err := writeResponse(out, mode, r.resp, urls[i]); err != nil {
			record(err)
		}
	}
	return firstErr
}

// send builds and dispatches a single request from the global flags and
// the resolved profile.
func send(ctx context.Context, method, rawURL string, profile config.Profile) (*fluent.Response[[]byte], error) {
	builder, err := buildRequest(rawURL, profile)
	if err != nil {
		return nil, err
	}

	if flags.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.Timeout)
		defer cancel()
	}
	return builder.Execute(ctx, method)
}

func buildRequest(rawURL string, profile config.Profile) (*fluent.Builder[[]byte], error) {
	builder := fluent.New(resolveURL(rawURL, profile))

	for name, value := range profile.Headers {
		builder.Header(name, value)
	}
	for _, h := range flags.Headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --header %q (want 'Name: value')", h)
		}
		builder.Header(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	switch {
	case flags.Bearer != "":
		builder.Bearer(flags.Bearer)
	case flags.Basic != "":
		user, pass, ok := strings.Cut(flags.Basic, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --basic %q (want user:password)", flags.Basic)
		}
		builder.Basic(user, pass)
	case profile.Bearer != "":
		builder.Bearer(profile.Bearer)
	case profile.BasicUser != "":
		builder.Basic(profile.BasicUser, profile.BasicPass)
	}

	for _, v := range flags.Vars {
		name, value, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --var %q (want name=value)", v)
		}
		builder.Variable(name, value)
	}
	for _, p := range flags.Params {
		name, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --param %q (want key=value)", p)
		}
		builder.Parameter(name, value)
	}

	return applyBody(builder)
}

// applyBody wires --data, --form, or --file into the builder. The three
// are mutually exclusive.
func applyBody(builder *fluent.Builder[[]byte]) (*fluent.Builder[[]byte], error) {
	set := 0
	for _, used := range []bool{flags.Data != "", len(flags.Forms) > 0, len(flags.Files) > 0} {
		if used {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("--data, --form, and --file are mutually exclusive")
	}

	switch {
	case flags.Data != "":
		data, err := readData(flags.Data)
		if err != nil {
			return nil, err
		}
		builder.RawBody("application/json", data)

	case len(flags.Forms) > 0:
		form := builder.Form()
		for _, f := range flags.Forms {
			key, value, ok := strings.Cut(f, "=")
			if !ok {
				return nil, fmt.Errorf("invalid --form %q (want key=value)", f)
			}
			form.Add(key, value)
		}
		builder = form.Build()

	case len(flags.Files) > 0:
		multipart := builder.Multipart()
		for _, f := range flags.Files {
			field, path, ok := strings.Cut(f, "=")
			if !ok {
				return nil, fmt.Errorf("invalid --file %q (want field=path)", f)
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read --file %q: %w", path, err)
			}
			multipart.AddFile(field, filepathBase(path), content)
		}
		builder = multipart.Build()
	}
	return builder, nil
}

func filepathBase(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

// readData resolves a --data value: @file reads a file, - reads stdin,
// anything else is the literal body.
func readData(data string) ([]byte, error) {
	switch {
	case data == "-":
		return io.ReadAll(os.Stdin)
	case strings.HasPrefix(data, "@"):
		content, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, fmt.Errorf("read --data %q: %w", data[1:], err)
		}
		return content, nil
	default:
		return []byte(data), nil
	}
}

// resolveURL prefixes relative URLs with the profile or environment base
// URL. Absolute URLs pass through untouched.
func resolveURL(rawURL string, profile config.Profile) string {
	if strings.Contains(rawURL, "://") {
		return rawURL
	}
	base := profile.BaseURL
	if base == "" {
		base = strings.TrimSpace(os.Getenv("FLUENT_BASE_URL"))
	}
	if base == "" {
		return rawURL
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rawURL, "/")
}

func loadProfile() (config.Profile, error) {
	if flags.Profile == "" {
		return config.Profile{}, nil
	}
	return config.Load(flags.Profile)
}

func writeResponse(out io.Writer, mode outfmt.Mode, resp *fluent.Response[[]byte], url string) error {
	if flags.JQ != "" {
		var data any
		if err := json.Unmarshal(resp.RawBody, &data); err != nil {
			return fmt.Errorf("--jq needs a JSON response: %w", err)
		}
		value, err := filter.Apply(data, flags.JQ)
		if err != nil {
			return err
		}
		if err := outfmt.WriteValue(out, mode, value); err != nil {
			return err
		}
	} else if err := outfmt.Write(out, mode, resp.RawBody); err != nil {
		return err
	}

	if flags.Fail && resp.IsError() {
		return &HTTPStatusError{StatusCode: resp.StatusCode, URL: url}
	}
	return nil
}
