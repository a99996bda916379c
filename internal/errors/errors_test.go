package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := UnknownService("quantum-db")
	assert.Equal(t, `[UNKNOWN_SERVICE] no calculator registered for service "quantum-db"`, err.Error())
	assert.Equal(t, "quantum-db", err.Context["service"])

	wrapped := CatalogIntegrity("catalog rejected", stderrors.New("bad tier"))
	assert.Equal(t, "[CATALOG_INTEGRITY] catalog rejected: bad tier", wrapped.Error())
	assert.True(t, wrapped.Fatal())
	assert.False(t, RegionNotFound("mars-1").Fatal())
}

func TestIsTypeFollowsWrapping(t *testing.T) {
	base := RegionNotFound("mars-1")
	wrapped := fmt.Errorf("resolve region: %w", base)

	assert.True(t, IsType(base, TypeRegionNotFound))
	assert.True(t, IsType(wrapped, TypeRegionNotFound))
	assert.False(t, IsType(wrapped, TypeUnknownService))
	assert.False(t, IsType(stderrors.New("plain"), TypeRegionNotFound))
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("memory_mb must be >= 128")
	err := InvalidConfiguration("lambda", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Is(TypeInvalidConfiguration))
}
