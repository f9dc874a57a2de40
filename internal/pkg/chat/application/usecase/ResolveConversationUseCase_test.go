package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "marketchat/internal/pkg/chat/application/domain"
)

func TestResolveConversationIdempotent(t *testing.T) {
	repo := newMemRepo()
	uc := NewResolveConversationUseCase(repo)
	listing := "L1"

	first, err := uc.Execute(context.Background(), ResolveConversationInput{
		UserID: "alice", CounterpartID: "bob", ListingID: &listing,
	})
	require.NoError(t, err)

	// Same thread from the counterpart's side.
	second, err := uc.Execute(context.Background(), ResolveConversationInput{
		UserID: "bob", CounterpartID: "alice", ListingID: &listing,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.conversationCount())
}

func TestResolveConversationScopesSeparately(t *testing.T) {
	repo := newMemRepo()
	uc := NewResolveConversationUseCase(repo)
	listing := "L1"

	scoped, err := uc.Execute(context.Background(), ResolveConversationInput{
		UserID: "alice", CounterpartID: "bob", ListingID: &listing,
	})
	require.NoError(t, err)

	unscoped, err := uc.Execute(context.Background(), ResolveConversationInput{
		UserID: "alice", CounterpartID: "bob",
	})
	require.NoError(t, err)

	assert.NotEqual(t, scoped.ID, unscoped.ID)
}

func TestResolveConversationRejectsSelf(t *testing.T) {
	uc := NewResolveConversationUseCase(newMemRepo())
	_, err := uc.Execute(context.Background(), ResolveConversationInput{
		UserID: "alice", CounterpartID: "alice",
	})
	assert.ErrorIs(t, err, chat.ErrSelfMessage)
}

func TestResolveConversationRequiresBothParties(t *testing.T) {
	uc := NewResolveConversationUseCase(newMemRepo())
	_, err := uc.Execute(context.Background(), ResolveConversationInput{UserID: "alice"})
	assert.Error(t, err)
}
