// Package presence keeps the process-wide map from user identity to the
// single live connection that currently represents that user.
package presence

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Conn is the outbound side of one live connection.
type Conn interface {
	// ID is unique per connection, so a replaced handle can be told apart
	// from the current one.
	ID() string
	Send(event string, payload interface{}) error
}

// Entry links a user to their active connection handle.
type Entry struct {
	UserID   uint
	Conn     Conn
	Username string
	Nickname string
	Avatar   string
}

// Profile is one row of the user:list snapshot.
type Profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
	Online   bool   `json:"online"`
}

// ProfilePatch carries the fields a profile update may change; nil means unchanged.
type ProfilePatch struct {
	Nickname *string
	Avatar   *string
}

// Directory is safe for concurrent use. Construct one per server instance.
type Directory struct {
	mu      sync.RWMutex
	entries map[uint]*Entry
}

func NewDirectory() *Directory {
	return &Directory{entries: make(map[uint]*Entry)}
}

// Register stores e, replacing any earlier entry for the same user
// (last-connect-wins). The replaced entry, if any, is returned.
func (d *Directory) Register(e Entry) *Entry {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.entries[e.UserID]
	entry := e
	d.entries[e.UserID] = &entry
	return prev
}

// Remove deletes the user's entry only if it still points at connID.
// It reports whether an entry was actually deleted.
func (d *Directory) Remove(userID uint, connID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[userID]
	if !ok || entry.Conn.ID() != connID {
		return false
	}
	delete(d.entries, userID)
	return true
}

// Lookup returns the live connection of userID.
func (d *Directory) Lookup(userID uint) (Conn, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entry, ok := d.entries[userID]
	if !ok {
		return nil, false
	}
	return entry.Conn, true
}

func (d *Directory) IsOnline(userID uint) bool {
	_, ok := d.Lookup(userID)
	return ok
}

// UpdateProfile patches the display fields of a live entry.
func (d *Directory) UpdateProfile(userID uint, patch ProfilePatch) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[userID]
	if !ok {
		return false
	}
	if patch.Nickname != nil {
		entry.Nickname = *patch.Nickname
	}
	if patch.Avatar != nil {
		entry.Avatar = *patch.Avatar
	}
	return true
}

// Snapshot returns every present user ordered by id.
func (d *Directory) Snapshot() []Profile {
	d.mu.RLock()
	users := make([]Profile, 0, len(d.entries))
	for userID, entry := range d.entries {
		users = append(users, Profile{
			ID:       userID,
			Username: entry.Username,
			Nickname: entry.Nickname,
			Avatar:   entry.Avatar,
			Online:   true,
		})
	}
	d.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

// OnlineIDs returns the ids of every present user in ascending order.
func (d *Directory) OnlineIDs() []uint {
	d.mu.RLock()
	ids := make([]uint, 0, len(d.entries))
	for userID := range d.entries {
		ids = append(ids, userID)
	}
	d.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// EmitTo sends event to each listed user that is present and returns how
// many connections it was handed to. Absent users simply miss the push.
func (d *Directory) EmitTo(userIDs []uint, event string, payload interface{}) int {
	sent := 0
	for _, conn := range d.connsFor(userIDs) {
		if err := conn.Send(event, payload); err == nil {
			sent++
		}
	}
	return sent
}

// EmitAll sends event to every present connection except the one whose id
// equals exceptConnID (pass "" to include everyone).
func (d *Directory) EmitAll(event string, payload interface{}, exceptConnID string) int {
	d.mu.RLock()
	conns := make([]Conn, 0, len(d.entries))
	for _, entry := range d.entries {
		if exceptConnID != "" && entry.Conn.ID() == exceptConnID {
			continue
		}
		conns = append(conns, entry.Conn)
	}
	d.mu.RUnlock()

	sent := 0
	for _, conn := range conns {
		if err := conn.Send(event, payload); err == nil {
			sent++
		}
	}
	return sent
}

func (d *Directory) connsFor(userIDs []uint) []Conn {
	d.mu.RLock()
	defer d.mu.RUnlock()

	conns := make([]Conn, 0, len(userIDs))
	for _, userID := range lo.Uniq(userIDs) {
		if entry, ok := d.entries[userID]; ok {
			conns = append(conns, entry.Conn)
		}
	}
	return conns
}
