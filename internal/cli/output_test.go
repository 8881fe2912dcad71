package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/model"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"id": "p1"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("POST_NOT_FOUND", "post not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "POST_NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "post not found", resp.Error.Message)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	require.NoError(t, formatter.Success("Posted thanks p1"))
	assert.Contains(t, buf.String(), "Posted thanks p1")
}

func TestOutputFormatter_Render(t *testing.T) {
	text := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: text}
	require.NoError(t, f.Render(map[string]int{"n": 1}, func(w io.Writer) { fmt.Fprint(w, "one") }))
	assert.Equal(t, "one", text.String())

	js := &bytes.Buffer{}
	f = &OutputFormatter{Format: "json", Writer: js}
	require.NoError(t, f.Render(map[string]int{"n": 1}, func(w io.Writer) { t.Fatal("text renderer called in json mode") }))
	assert.JSONEq(t, `{"status":"ok","data":{"n":1}}`, js.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("TASK_COMPLETED", "task already completed", map[string]string{"id": "t1"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [TASK_COMPLETED]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Fail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{"domain", fmt.Errorf("wrap: %w", model.PostNotFound("p1")), "POST_NOT_FOUND", ExitFailure},
		{"invalid argument", model.InvalidArgument("text is required"), "INVALID_ARGUMENT", ExitCommandError},
		{"retries exhausted", fmt.Errorf("like: %w", docstore.ErrUnavailable), "UNAVAILABLE", ExitFailure},
		{"store", fmt.Errorf("get: %w", docstore.ErrStoreUnavailable), "STORE_UNAVAILABLE", ExitCommandError},
		{"other", errors.New("boom"), "INTERNAL", ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: buf}

			err := f.Fail("failed", tt.err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.True(t, IsReported(err))
			assert.ErrorIs(t, err, tt.err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

// brokenWriter fails every write.
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errBrokenPipe }

var errBrokenPipe = errors.New("broken pipe")

func TestOutputFormatter_FailWriteError(t *testing.T) {
	for _, format := range ValidFormats {
		t.Run(format, func(t *testing.T) {
			f := &OutputFormatter{Format: format, Writer: brokenWriter{}}
			cause := model.PostNotFound("p1")

			err := f.Fail("failed to show post", cause)
			assert.False(t, IsReported(err), "an unwritten report must reach stderr")
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.ErrorIs(t, err, cause)
			assert.ErrorIs(t, err, errBrokenPipe)
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			errBuf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    buf,
				ErrWriter: errBuf,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("opening %s", "chain.db")

			assert.Empty(t, buf.String(), "diagnostics never go to the data writer")
			if tt.wantLog {
				assert.Contains(t, errBuf.String(), "opening chain.db")
			} else {
				assert.Empty(t, errBuf.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.False(t, IsReported(WrapExitError(ExitFailure, "x", errors.New("y"))))
}
