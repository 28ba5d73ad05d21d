package errs

import (
	stderr "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsCodeErrorUnwrapsStacked(t *testing.T) {
	err := ErrNotFound.WrapMsg("post 42")

	ce := AsCodeError(err)
	assert.Equal(t, CodeNotFound, ce.Code)
	assert.Equal(t, "Resource not found", ce.Msg)
	assert.Contains(t, ce.Detail, "post 42")
}

func TestAsCodeErrorUnclassified(t *testing.T) {
	ce := AsCodeError(stderr.New("boom"))
	assert.Equal(t, CodeInternal, ce.Code)
	assert.Contains(t, ce.Detail, "boom")
}

func TestIsIgnoresDetail(t *testing.T) {
	withDetail := ErrBlocked.WithDetail("user u2")
	assert.ErrorIs(t, withDetail, ErrBlocked)
	assert.NotErrorIs(t, withDetail, ErrForbidden)
}

func TestWrapKeepsSentinel(t *testing.T) {
	assert.ErrorIs(t, ErrRateLimited.Wrap(), ErrRateLimited)
}

func TestNewDuplicate(t *testing.T) {
	ce := NewDuplicate("username")
	assert.Equal(t, CodeValidation, ce.Code)
	assert.Equal(t, "username already taken", ce.Msg)
}

func TestWrapNilStaysNil(t *testing.T) {
	assert.NoError(t, WrapMsg(nil, "ctx"))
}
