package controller_test

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	qport "marketchat/internal/infrastructure/queue/port"
	"marketchat/internal/infrastructure/realtime"
	chat "marketchat/internal/pkg/chat/application/domain"
	"marketchat/internal/pkg/chat/application/usecase"
	chathttp "marketchat/internal/pkg/chat/presentation/http"
	"marketchat/internal/pkg/chat/presentation/wire"
)

const identityHeader = "X-User-ID"

// memRepo is the in-memory repository backing the handler tests.
type memRepo struct {
	mu       sync.Mutex
	convs    map[string]chat.Conversation
	byID     map[string]chat.Conversation
	msgs     []chat.Message
	nextConv int
	nextMsg  int
}

func newMemRepo() *memRepo {
	return &memRepo{
		convs: make(map[string]chat.Conversation),
		byID:  make(map[string]chat.Conversation),
	}
}

func repoKey(userA, userB string, listingID *string) string {
	lo, hi := chat.NormalizePair(userA, userB)
	return lo + "|" + hi + "|" + chat.ScopeKey(listingID)
}

func (r *memRepo) FindConversation(_ context.Context, userA, userB string, listingID *string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.convs[repoKey(userA, userB, listingID)]; ok {
		c := conv
		return &c, nil
	}
	return nil, nil
}

func (r *memRepo) CreateConversation(_ context.Context, userA, userB string, listingID *string, at time.Time) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(userA, userB, listingID, at), nil
}

func (r *memRepo) FindOrCreateConversation(_ context.Context, userA, userB string, listingID *string, at time.Time) (chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := repoKey(userA, userB, listingID)
	if conv, ok := r.convs[key]; ok {
		if at.After(conv.LastActivityAt) {
			conv.LastActivityAt = at
			r.convs[key] = conv
			r.byID[conv.ID] = conv
		}
		return conv, nil
	}
	return r.createLocked(userA, userB, listingID, at), nil
}

func (r *memRepo) createLocked(userA, userB string, listingID *string, at time.Time) chat.Conversation {
	lo, hi := chat.NormalizePair(userA, userB)
	r.nextConv++
	conv := chat.Conversation{
		ID:             fmt.Sprintf("conv-%d", r.nextConv),
		UserLo:         lo,
		UserHi:         hi,
		ListingID:      chat.NormalizeScope(listingID),
		CreatedAt:      at,
		LastActivityAt: at,
	}
	r.convs[repoKey(userA, userB, listingID)] = conv
	r.byID[conv.ID] = conv
	return conv
}

func (r *memRepo) GetConversation(_ context.Context, id string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.byID[id]; ok {
		c := conv
		return &c, nil
	}
	return nil, nil
}

func (r *memRepo) ListConversationsByUser(_ context.Context, userID string) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Conversation
	for _, conv := range r.byID {
		if conv.UserLo == userID || conv.UserHi == userID {
			out = append(out, conv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivityAt.After(out[j].LastActivityAt)
	})
	return out, nil
}

func (r *memRepo) SaveMessage(_ context.Context, m chat.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextMsg++
	m.ID = fmt.Sprintf("msg-%d", r.nextMsg)
	r.msgs = append(r.msgs, m)
	return m.ID, nil
}

func (r *memRepo) ListMessagesByPair(_ context.Context, userA, userB string, listingID *string, limit, offset int) ([]chat.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	key := repoKey(userA, userB, listingID)
	var out []chat.Message
	for _, m := range r.msgs {
		if repoKey(m.SenderID, m.ReceiverID, m.ListingID) == key {
			out = append(out, m)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) messageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

// fakeQueue records enqueued tasks without processing them.
type fakeQueue struct {
	mu    sync.Mutex
	tasks []qport.Task
}

func (q *fakeQueue) Enqueue(_ context.Context, t qport.Task, _ ...qport.EnqueueOption) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	return fmt.Sprintf("task-%d", len(q.tasks)), nil
}

func (q *fakeQueue) Close() error { return nil }

var _ qport.Client = (*fakeQueue)(nil)

var errQueueDown = errors.New("queue down")

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, qport.Task, ...qport.EnqueueOption) (string, error) {
	return "", errQueueDown
}
func (failingQueue) Close() error { return nil }

// testEnv wires the chat surface onto a live test server.
type testEnv struct {
	repo *memRepo
	hub  *realtime.Hub
	srv  *httptest.Server
}

func newTestEnv(t *testing.T, queue qport.Client) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemRepo()
	hub := realtime.NewHub(nil)

	sendUC := usecase.NewSendMessageUseCase(repo, wire.NewHubNotifier(hub), nil)
	deps := chathttp.Deps{
		Hub:                   hub,
		SendMessageUC:         sendUC,
		GetMessagesUC:         usecase.NewGetMessagesUseCase(repo, nil),
		ListConversationsUC:   usecase.NewListConversationsUseCase(repo),
		ResolveConversationUC: usecase.NewResolveConversationUseCase(repo),
		Queue:                 queue,
	}

	r := gin.New()
	chathttp.RegisterRoutes(r.Group("/api/v1"), deps)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})

	return &testEnv{repo: repo, hub: hub, srv: srv}
}
