// Package dispatch is the realtime core: it admits connections, validates
// and persists chat events, and fans them out to the users who may see them.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/presence"
	"github.com/noteduco342/lanchat-backend/internal/repository"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (uint, error)
}

// PresenceMirror receives best-effort online/offline notifications, e.g. a
// shared cache other processes can read.
type PresenceMirror interface {
	SetUserOnline(userID uint) error
	SetUserOffline(userID uint) error
}

// HistoryInvalidator drops cached history pages.
type HistoryInvalidator interface {
	InvalidateScope(scope models.Scope) error
	InvalidateAll() error
}

// Deps are the collaborators of an Engine. Mirror, History and Metrics are optional.
type Deps struct {
	Users     repository.UserRepositoryInterface
	Messages  repository.MessageRepositoryInterface
	Channels  repository.ChannelRepositoryInterface
	Cursors   repository.ReadCursorRepositoryInterface
	Directory *presence.Directory
	Tokens    TokenVerifier

	Mirror  PresenceMirror
	History HistoryInvalidator
	Metrics *Metrics
	Logger  *slog.Logger

	Policy           MutationPolicy
	MaxMessageLength int

	// Now defaults to time.Now.
	Now func() time.Time
	// Async runs mention scans off the handler path; defaults to a goroutine.
	Async func(func())
}

// Engine handles every inbound realtime event. Handlers run one at a time so
// that every event sees the effects of the events handled before it.
type Engine struct {
	mu sync.Mutex

	users    repository.UserRepositoryInterface
	messages repository.MessageRepositoryInterface
	channels repository.ChannelRepositoryInterface
	cursors  repository.ReadCursorRepositoryInterface
	dir      *presence.Directory
	tokens   TokenVerifier

	mirror  PresenceMirror
	history HistoryInvalidator
	metrics *Metrics
	log     *slog.Logger

	policy    MutationPolicy
	maxLength int
	now       func() time.Time
	async     func(func())
}

func NewEngine(d Deps) *Engine {
	e := &Engine{
		users:     d.Users,
		messages:  d.Messages,
		channels:  d.Channels,
		cursors:   d.Cursors,
		dir:       d.Directory,
		tokens:    d.Tokens,
		mirror:    d.Mirror,
		history:   d.History,
		metrics:   d.Metrics,
		log:       d.Logger,
		policy:    d.Policy,
		maxLength: d.MaxMessageLength,
		now:       d.Now,
		async:     d.Async,
	}
	if e.dir == nil {
		e.dir = presence.NewDirectory()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.policy == (MutationPolicy{}) {
		e.policy = DefaultPolicy()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.async == nil {
		e.async = e.goAsync
	}
	return e
}

// Directory exposes the presence directory the engine fans out through.
func (e *Engine) Directory() *presence.Directory {
	return e.dir
}

func (e *Engine) goAsync(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.Error("background task panicked", "panic", fmt.Sprint(r))
			}
		}()
		fn()
	}()
}

// recipientsOf resolves the users allowed to see msg. Group messages go to
// whoever is present.
func (e *Engine) recipientsOf(msg *models.Message) ([]uint, error) {
	scope := models.ScopeOf(msg)
	switch scope.Kind {
	case models.ScopeChannel:
		return e.channels.GetMemberIDs(scope.ChannelID)
	case models.ScopePrivate:
		return []uint{msg.SenderID, msg.ToUserID}, nil
	default:
		return e.dir.OnlineIDs(), nil
	}
}

func (e *Engine) invalidate(scope models.Scope) {
	if e.history == nil {
		return
	}
	if err := e.history.InvalidateScope(scope); err != nil {
		e.log.Warn("history cache invalidation failed", "scope", scope.Key(), "error", err)
	}
}

func (e *Engine) invalidateAll() {
	if e.history == nil {
		return
	}
	if err := e.history.InvalidateAll(); err != nil {
		e.log.Warn("history cache invalidation failed", "scope", "all", "error", err)
	}
}

// reject records err and hands it back.
func (e *Engine) reject(err error) error {
	e.metrics.rejected(err)
	return err
}

// fail is reject for handlers with an originating connection, which is also
// told about storage failures through chat:error.
func (e *Engine) fail(origin presence.Conn, err error) error {
	if origin != nil && errors.Is(err, ErrPersistence) {
		_ = origin.Send(EventChatError, ErrorEvent{Error: ErrPersistence.Message, Code: ErrPersistence.Code})
	}
	return e.reject(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
