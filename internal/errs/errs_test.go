package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"network", &NetworkError{URL: "http://x", Err: errors.New("refused")}, ErrNetwork, "network_error"},
		{"status", NewStatusError("http://x", 503), ErrNetwork, "network_error"},
		{"parse", &ParseError{Reason: "no <table> element"}, ErrParse, "parse_error"},
		{"storage", &StorageError{Op: "load", Path: "a.csv", Err: fs.ErrNotExist}, ErrStorage, "storage_error"},
		{"columns", &MissingColumnsError{Columns: []string{"State"}}, ErrMissingColumns, "missing_columns"},
		{"locked", fmt.Errorf("reconcile: %w", ErrLocked), ErrLocked, "locked"},
		{"busy", ErrBusy, ErrBusy, "busy"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("pass: %w", tc.err)
			assert.ErrorIs(t, wrapped, tc.sentinel)
			assert.Equal(t, tc.code, Code(wrapped))
		})
	}
}

func TestStorageErrorUnwrapsCause(t *testing.T) {
	err := &StorageError{Op: "load", Path: "a.csv", Err: fs.ErrNotExist}
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, "load a.csv: file does not exist", err.Error())
}

func TestNetworkErrorMessage(t *testing.T) {
	assert.Equal(t, "fetch http://x: unexpected status 404", NewStatusError("http://x", 404).Error())
	assert.Equal(t, "internal_error", Code(errors.New("boom")))
	assert.Equal(t, "", Code(nil))
}
