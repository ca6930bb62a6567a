package dispatch_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/noteduco342/lanchat-backend/internal/dispatch"
	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type fakeTokens map[string]uint

func (f fakeTokens) VerifyToken(token string) (uint, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return 0, errors.New("token rejected")
}

type recordingHistory struct {
	mu     sync.Mutex
	scopes []string
}

func (r *recordingHistory) InvalidateScope(scope models.Scope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = append(r.scopes, scope.Key())
	return nil
}

func (r *recordingHistory) InvalidateAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scopes = append(r.scopes, "*")
	return nil
}

func (r *recordingHistory) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.scopes...)
}

type recordingMirror struct {
	mu     sync.Mutex
	online map[uint]bool
}

func (r *recordingMirror) SetUserOnline(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.online[userID] = true
	return nil
}

func (r *recordingMirror) SetUserOffline(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.online, userID)
	return nil
}

type harness struct {
	engine   *dispatch.Engine
	users    *testutil.MockUserRepository
	messages *testutil.MockMessageRepository
	channels *testutil.MockChannelRepository
	cursors  *testutil.MockReadCursorRepository
	tokens   fakeTokens
	history  *recordingHistory
	mirror   *recordingMirror
	registry *prometheus.Registry

	mu    sync.Mutex
	now   time.Time
	conns int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		users:    testutil.NewMockUserRepository(),
		cursors:  testutil.NewMockReadCursorRepository(),
		tokens:   fakeTokens{},
		history:  &recordingHistory{},
		mirror:   &recordingMirror{online: map[uint]bool{}},
		registry: prometheus.NewRegistry(),
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.messages = testutil.NewMockMessageRepository(h.users)
	h.messages.Now = h.clock
	h.channels = testutil.NewMockChannelRepository(h.users)

	h.engine = dispatch.NewEngine(dispatch.Deps{
		Users:            h.users,
		Messages:         h.messages,
		Channels:         h.channels,
		Cursors:          h.cursors,
		Tokens:           h.tokens,
		Mirror:           h.mirror,
		History:          h.history,
		Metrics:          dispatch.NewMetrics(h.registry),
		Logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		MaxMessageLength: 50,
		Now:              h.clock,
		Async:            func(fn func()) { fn() },
	})
	return h
}

func (h *harness) clock() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.mu.Lock()
	h.now = h.now.Add(d)
	h.mu.Unlock()
}

func (h *harness) addUser(t *testing.T, username, nickname string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Username: username, Nickname: nickname, Role: role}
	require.NoError(t, h.users.Create(user))
	h.tokens["token-"+username] = user.ID
	return user
}

// connect admits user on a fresh connection.
func (h *harness) connect(user *models.User) *testutil.FakeConn {
	h.mu.Lock()
	h.conns++
	id := fmt.Sprintf("conn-%s-%d", user.Username, h.conns)
	h.mu.Unlock()

	conn := testutil.NewFakeConn(id)
	h.engine.Admit(user, conn)
	return conn
}

func resetAll(conns ...*testutil.FakeConn) {
	for _, c := range conns {
		c.Reset()
	}
}

func requireDispatchError(t *testing.T, err error, want *dispatch.Error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, want)
	require.Equal(t, want.Code, dispatch.CodeOf(err))
}

// metricValue sums every series of the named counter or gauge.
func metricValue(t *testing.T, h *harness, name string) float64 {
	t.Helper()
	families, err := h.registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				total += g.GetValue()
			}
		}
	}
	return total
}
