package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/stockdesk/domain"
)

type memoryRepo struct {
	stored  *domain.Preferences
	saveErr error
}

func (r *memoryRepo) Load(context.Context) (*domain.Preferences, error) {
	if r.stored == nil {
		return nil, domain.ErrNotStored
	}
	p := *r.stored
	return &p, nil
}

func (r *memoryRepo) Save(_ context.Context, p domain.Preferences) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = &p
	return nil
}

func TestToE164BR(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"(11) 98765-4321", "+5511987654321", true},
		{"+55 11 98765-4321", "+5511987654321", true},
		{"11 8765-4321", "+5511987654321", true},
		{"5511987654321", "+5511987654321", true},
		{"1187654", "", false},
		{"", "", false},
		{"abc", "", false},
		{"551198765432100", "", false},
	}
	for _, tc := range cases {
		got, ok := ToE164BR(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestSetWhatsApp_RememberedIsPersisted(t *testing.T) {
	repo := &memoryRepo{}
	store := New(repo, nil)

	require.NoError(t, store.SetWhatsApp(context.Background(), "(11) 98765-4321", true))

	assert.Equal(t, "+5511987654321", store.WhatsApp())
	require.NotNil(t, repo.stored)
	assert.Equal(t, domain.Preferences{WhatsApp: "+5511987654321", RememberWhatsApp: true}, *repo.stored)
}

func TestSetWhatsApp_NotRememberedStaysInMemory(t *testing.T) {
	repo := &memoryRepo{}
	store := New(repo, nil)

	require.NoError(t, store.SetWhatsApp(context.Background(), "11987654321", false))

	assert.Equal(t, "+5511987654321", store.WhatsApp())
	assert.Equal(t, domain.Preferences{RememberWhatsApp: false}, *repo.stored)
}

func TestSetWhatsApp_InvalidNumber(t *testing.T) {
	repo := &memoryRepo{}
	store := New(repo, nil)

	err := store.SetWhatsApp(context.Background(), "123", true)
	assert.ErrorIs(t, err, ErrInvalidPhone)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Nil(t, repo.stored)
	assert.Empty(t, store.WhatsApp())
}

func TestClearWhatsApp(t *testing.T) {
	repo := &memoryRepo{}
	store := New(repo, nil)
	require.NoError(t, store.SetWhatsApp(context.Background(), "11987654321", true))

	require.NoError(t, store.ClearWhatsApp(context.Background()))
	assert.Equal(t, domain.Preferences{RememberWhatsApp: true}, store.Current())
	assert.Equal(t, domain.Preferences{RememberWhatsApp: true}, *repo.stored)
}

func TestRestore(t *testing.T) {
	store := New(&memoryRepo{}, nil)
	require.NoError(t, store.Restore(context.Background()))
	assert.Equal(t, domain.Preferences{RememberWhatsApp: true}, store.Current())

	repo := &memoryRepo{stored: &domain.Preferences{WhatsApp: "+5511987654321", RememberWhatsApp: true}}
	store = New(repo, nil)
	require.NoError(t, store.Restore(context.Background()))
	assert.Equal(t, "+5511987654321", store.WhatsApp())
}

func TestSaveFailureIsReported(t *testing.T) {
	store := New(&memoryRepo{saveErr: errors.New("disk full")}, nil)

	err := store.SetWhatsApp(context.Background(), "11987654321", true)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInternal))
	assert.Equal(t, "+5511987654321", store.WhatsApp())
}

func TestSubscribe(t *testing.T) {
	store := New(nil, nil)
	var got []domain.Preferences
	unsubscribe := store.Subscribe(func(p domain.Preferences) { got = append(got, p) })

	require.NoError(t, store.SetWhatsApp(context.Background(), "11987654321", true))
	unsubscribe()
	require.NoError(t, store.ClearWhatsApp(context.Background()))

	require.Len(t, got, 1)
	assert.Equal(t, "+5511987654321", got[0].WhatsApp)
}
