package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := executeWithOutput(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestGetCommand(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	out, _, err := execute(t, "get", server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Contains(t, out, `"ok": true`)
}

func TestVerbCommandsExist(t *testing.T) {
	for _, verb := range []string{"get", "head", "post", "put", "patch", "delete", "options", "trace"} {
		_, _, err := execute(t, verb, "--help")
		assert.NoError(t, err, verb)
	}
}

func TestHeaderVarParamFlags(t *testing.T) {
	var gotURL, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		gotHeader = r.Header.Get("X-Team")
	}))
	defer server.Close()

	_, _, err := execute(t, "get", server.URL+"/articles/{id}?sort=asc",
		"-V", "id=42",
		"-q", "page=2",
		"-H", "X-Team: platform")
	require.NoError(t, err)
	assert.Equal(t, "/articles/42?sort=asc&page=2", gotURL)
	assert.Equal(t, "platform", gotHeader)
}

func TestFlagAliases(t *testing.T) {
	var gotURL string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	_, _, err := execute(t, "get", server.URL+"/users/{id}",
		"--variable", "id=7",
		"--query", "active=true",
		"--token", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "/users/7?active=true", gotURL)
	assert.Equal(t, "Bearer s3cret", gotAuth)
}

func TestDataBody(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer server.Close()

	_, _, err := execute(t, "post", server.URL, "-d", `{"title": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"title": "x"}`, string(gotBody))
	assert.Equal(t, "application/json", gotContentType)
}

func TestDataBodyFromFile(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from": "file"}`), 0o600))

	_, _, err := execute(t, "put", server.URL, "-d", "@"+path)
	require.NoError(t, err)
	assert.Equal(t, `{"from": "file"}`, string(gotBody))
}

func TestFormBody(t *testing.T) {
	var gotBody, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer server.Close()

	_, _, err := execute(t, "post", server.URL, "--form", "user=alice", "--form", "role=admin")
	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Contains(t, gotBody, "user=alice")
	assert.Contains(t, gotBody, "role=admin")
}

func TestFileBodyMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("doc")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "notes.txt", header.Filename)
		assert.Equal(t, "hello", string(content))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	_, _, err := execute(t, "post", server.URL, "--file", "doc="+path)
	require.NoError(t, err)
}

func TestBodyFlagsMutuallyExclusive(t *testing.T) {
	_, _, err := execute(t, "post", "https://example.invalid", "-d", "{}", "--form", "a=b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestJQFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"a": {"b": 42}}`))
	}))
	defer server.Close()

	out, _, err := execute(t, "get", server.URL, "--jq", ".a.b")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestFailFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := execute(t, "get", server.URL, "--fail")
	require.Error(t, err)
	assert.Equal(t, ExitHTTPFail, ExitCode(err))

	// Without --fail an error status is just output.
	_, _, err = execute(t, "get", server.URL)
	assert.NoError(t, err)
}

func TestBaseURLFromEnv(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
	}))
	defer server.Close()

	t.Setenv("FLUENT_BASE_URL", server.URL)
	_, _, err := execute(t, "get", "/articles/1")
	require.NoError(t, err)
	assert.Equal(t, "/articles/1", gotPath)
}

func TestDoCommand(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
	}))
	defer server.Close()

	_, _, err := execute(t, "do", "patch", server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
}

func TestDoCommandUnknownMethod(t *testing.T) {
	_, _, err := execute(t, "do", "ptch", "https://example.invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown http method")
	assert.Contains(t, err.Error(), "did you mean PATCH?")

	_, _, err = execute(t, "do", "zzz", "https://example.invalid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown http method "zzz"`)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestUnknownCommandSuggestion(t *testing.T) {
	_, _, err := execute(t, "vers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "version"?`)
}

func TestFanOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"path": "` + r.URL.Path + `"}`))
	}))
	defer server.Close()

	out, _, err := execute(t, "get", server.URL+"/a", server.URL+"/b", "-c", "2")
	require.NoError(t, err)

	// Results print in input order regardless of completion order.
	aIdx := bytes.Index([]byte(out), []byte("/a"))
	bIdx := bytes.Index([]byte(out), []byte("/b"))
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, bIdx, 0)
	assert.Less(t, aIdx, bIdx)
}

func TestFanOutPartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	_, errOut, err := execute(t, "get", server.URL, dead.URL)
	require.Error(t, err)
	assert.Equal(t, ExitIO, ExitCode(err))
	assert.Contains(t, errOut, dead.URL)
}

func TestBearerFromEnv(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	t.Setenv("FLUENT_BEARER", "env-token")
	_, _, err := execute(t, "get", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Bearer env-token", gotAuth)

	// An explicit flag overrides the environment.
	_, _, err = execute(t, "get", server.URL, "--bearer", "flag-token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer flag-token", gotAuth)
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))

	_, _, err := execute(t, "get", "https://example.invalid", "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))

	_, _, err = execute(t, "do", "ptch", "https://example.invalid")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))

	_, _, err = execute(t, "get")
	require.Error(t, err)
	assert.Equal(t, ExitUsage, ExitCode(err))
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := execute(t, "get", "https://example.invalid", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}
