package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikiitin/ring5/internal/ring5/scanner"
)

func TestNewRejectsMissingScanner(t *testing.T) {
	_, err := scanner.New("/no/such/scanner-binary-ring5", 0)
	require.ErrorIs(t, err, scanner.ErrScannerNotFound)
}

func TestNewAcceptsExecutableOnPath(t *testing.T) {
	s, err := scanner.New("sh", 0)
	require.NoError(t, err)
	assert.NotNil(t, s)
}
