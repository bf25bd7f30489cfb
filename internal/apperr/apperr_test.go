package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaxonomy(t *testing.T) {
	v := Validation("bad %s", "input")
	assert.Equal(t, http.StatusBadRequest, v.Status)
	assert.Equal(t, CodeValidation, v.Code)
	assert.Equal(t, "bad input", v.Error())

	nf := NotFound("missing")
	assert.Equal(t, http.StatusNotFound, nf.Status)

	assert.True(t, IsValidation(v))
	assert.False(t, IsNotFound(v))
	assert.True(t, IsNotFound(nf))
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	ae := From(errors.New("disk on fire"))
	assert.Equal(t, CodeServer, ae.Code)
	assert.Equal(t, http.StatusInternalServerError, ae.Status)
	assert.NotContains(t, ae.Message, "disk", "internals must not leak to the wire")
}

func TestFromUnwrapsWrappedAppErrors(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NotFound("chat gone"))
	ae := From(wrapped)
	assert.Equal(t, CodeNotFound, ae.Code)
	assert.True(t, IsNotFound(wrapped))
}
