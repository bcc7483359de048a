package sitebot_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ohmanagement/sitebot"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := sitebot.Errorf(sitebot.ENOTFOUND, "page %q not found", "/kontakt.html")

	assert.Equal(t, sitebot.ENOTFOUND, sitebot.ErrorCode(err))
	assert.Equal(t, "page \"/kontakt.html\" not found", sitebot.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, sitebot.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, sitebot.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("write index: %w", sitebot.Errorf(sitebot.EUPSTREAM, "HTTP 502"))

	assert.Equal(t, sitebot.EUPSTREAM, sitebot.ErrorCode(err))
	assert.Equal(t, "HTTP 502", sitebot.ErrorMessage(err))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, sitebot.EINTERNAL, sitebot.ErrorCode(err))
	assert.Equal(t, "Internal error", sitebot.ErrorMessage(err))
}
