// ABOUTME: Tests for MockStore implementation
// ABOUTME: Verifies copy semantics and failure injection

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore_CopiesValues(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, m.Put(ctx, "k", value))
	value[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMockStore_FailWrites(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	require.NoError(t, m.Put(ctx, "k", []byte("1")))

	m.FailWrites(ErrQuotaExceeded)
	assert.ErrorIs(t, m.Put(ctx, "k", []byte("2")), ErrQuotaExceeded)
	assert.ErrorIs(t, m.Delete(ctx, "k"), ErrQuotaExceeded)

	raw, ok := m.Raw("k")
	require.True(t, ok)
	assert.Equal(t, []byte("1"), raw)
	assert.Equal(t, 1, m.Puts())

	m.FailWrites(nil)
	assert.NoError(t, m.Put(ctx, "k", []byte("3")))
}

func TestMockStore_FailReads(t *testing.T) {
	m := NewMockStore()
	boom := errors.New("disk gone")
	m.FailReads(boom)

	_, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}
