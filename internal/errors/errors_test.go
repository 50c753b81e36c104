package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSetsMetadata(t *testing.T) {
	t.Parallel()

	base := NewStd("something broke")
	err := New(base).
		Component("dataset").
		Category(CategoryFileIO).
		Context("path", "/tmp/x").
		Build()

	var ee *EnhancedError
	require.True(t, As(err, &ee))
	assert.Equal(t, "dataset", ee.Component)
	assert.Equal(t, CategoryFileIO, ee.Category)
	assert.Equal(t, "/tmp/x", ee.GetContext()["path"])
	assert.Equal(t, "something broke", err.Error())
	assert.True(t, Is(err, base))
}

func TestBuildNilError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, New(nil).Category(CategoryFileIO).Build())
}

func TestDefaultCategory(t *testing.T) {
	t.Parallel()

	err := Newf("plain failure %d", 7).Build()
	assert.True(t, HasCategory(err, CategoryGeneric))
}

func TestCategoryPredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		category  ErrorCategory
		predicate func(error) bool
	}{
		{"not found", CategoryNotFound, IsNotFound},
		{"decode", CategoryImageDecode, IsDecodeError},
		{"copy", CategoryFileCopy, IsCopyError},
		{"io", CategoryFileIO, IsIOError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Newf("boom").Category(tt.category).Build()
			assert.True(t, tt.predicate(err))

			other := Newf("boom").Category(CategoryGeneric).Build()
			assert.False(t, tt.predicate(other))
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	t.Parallel()

	inner := Newf("missing").Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("collecting images: %w", inner)

	assert.True(t, IsNotFound(wrapped))
}

func TestContextCopyIsIsolated(t *testing.T) {
	t.Parallel()

	err := Newf("boom").Context("k", "v").Build()

	var ee *EnhancedError
	require.True(t, As(err, &ee))

	ctx := ee.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", ee.GetContext()["k"])
}
