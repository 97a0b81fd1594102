package memcreds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/lumenshop/storefront/internal/domain/auth"
	apperrors "github.com/lumenshop/storefront/internal/errors"
)

func TestStore_EmptyByDefault(t *testing.T) {
	store := New()

	_, ok := store.Get()
	assert.False(t, ok)
}

func TestStore_SetAndGet(t *testing.T) {
	store := New()

	err := store.Set(domainauth.Credentials{AccessToken: "tok", RefreshToken: "ref"})
	require.NoError(t, err)

	creds, ok := store.Get()
	require.True(t, ok)
	assert.Equal(t, "tok", creds.AccessToken)
	assert.Equal(t, "ref", creds.RefreshToken)
}

func TestStore_SetRejectsPartialPair(t *testing.T) {
	store := New()

	err := store.Set(domainauth.Credentials{AccessToken: "tok"})

	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestFactory_SharesOneStoreAcrossExchanges(t *testing.T) {
	factory := NewFactory()

	first := factory.ForExchange(nil, nil)
	require.NoError(t, first.Set(domainauth.Credentials{AccessToken: "tok", RefreshToken: "ref"}))

	second := factory.ForExchange(nil, nil)
	creds, ok := second.Get()
	require.True(t, ok)
	assert.Equal(t, "tok", creds.AccessToken)
}

func TestStore_Clear(t *testing.T) {
	store := New()
	require.NoError(t, store.Set(domainauth.Credentials{AccessToken: "tok", RefreshToken: "ref"}))

	store.Clear()

	_, ok := store.Get()
	assert.False(t, ok)
}
