package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	cacheport "marketchat/internal/infrastructure/cache/port"
	chat "marketchat/internal/pkg/chat/application/domain"
)

// memRepo is an in-memory ChatRepository. FindOrCreateConversation takes the
// same lock for the whole check-and-insert, mirroring the uniqueness
// constraint the Postgres adapter relies on.
type memRepo struct {
	mu           sync.Mutex
	convsByKey   map[string]chat.Conversation
	convsByID    map[string]chat.Conversation
	msgs         []chat.Message
	nextConv     int
	nextMsg      int
	failSave     bool
	getConvCalls int
}

func newMemRepo() *memRepo {
	return &memRepo{
		convsByKey: make(map[string]chat.Conversation),
		convsByID:  make(map[string]chat.Conversation),
	}
}

func pairScopeKey(userA, userB string, listingID *string) string {
	lo, hi := chat.NormalizePair(userA, userB)
	return lo + "|" + hi + "|" + chat.ScopeKey(listingID)
}

func (r *memRepo) FindConversation(_ context.Context, userA, userB string, listingID *string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.convsByKey[pairScopeKey(userA, userB, listingID)]; ok {
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
	key := pairScopeKey(userA, userB, listingID)
	if conv, ok := r.convsByKey[key]; ok {
		if at.After(conv.LastActivityAt) {
			conv.LastActivityAt = at
			r.convsByKey[key] = conv
			r.convsByID[conv.ID] = conv
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
	r.convsByKey[pairScopeKey(userA, userB, listingID)] = conv
	r.convsByID[conv.ID] = conv
	return conv
}

func (r *memRepo) GetConversation(_ context.Context, id string) (*chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getConvCalls++
	if conv, ok := r.convsByID[id]; ok {
		c := conv
		return &c, nil
	}
	return nil, nil
}

func (r *memRepo) ListConversationsByUser(_ context.Context, userID string) ([]chat.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []chat.Conversation
	for _, conv := range r.convsByID {
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
	if r.failSave {
		return "", errors.New("storage unavailable")
	}
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
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	key := pairScopeKey(userA, userB, listingID)
	var out []chat.Message
	for _, m := range r.msgs {
		if pairScopeKey(m.SenderID, m.ReceiverID, m.ListingID) == key {
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

func (r *memRepo) conversationCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convsByID)
}

// fakeNotifier records pushes per receiver; only receivers marked online
// accept them.
type fakeNotifier struct {
	mu     sync.Mutex
	online map[string]bool
	pushed map[string][]chat.Message
}

func newFakeNotifier(onlineUsers ...string) *fakeNotifier {
	online := make(map[string]bool, len(onlineUsers))
	for _, u := range onlineUsers {
		online[u] = true
	}
	return &fakeNotifier{online: online, pushed: make(map[string][]chat.Message)}
}

func (n *fakeNotifier) NotifyNewMessage(receiverID string, m chat.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.online[receiverID] {
		return false
	}
	n.pushed[receiverID] = append(n.pushed[receiverID], m)
	return true
}

func (n *fakeNotifier) pushesFor(receiverID string) []chat.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]chat.Message(nil), n.pushed[receiverID]...)
}

// memCache is a minimal in-process cacheport.Cache.
type memCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemCache() *memCache {
	return &memCache{values: make(map[string]string)}
}

var _ cacheport.Cache = (*memCache)(nil)

func (c *memCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return "", cacheport.ErrMiss
}

func (c *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.values[k]; ok {
			delete(c.values, k)
			n++
		}
	}
	return n, nil
}

func (c *memCache) Ping(context.Context) error { return nil }
func (c *memCache) Close() error               { return nil }
