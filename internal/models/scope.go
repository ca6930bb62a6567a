package models

import (
	"fmt"
)

type ScopeKind string

const (
	ScopeGroup   ScopeKind = "group"
	ScopePrivate ScopeKind = "private"
	ScopeChannel ScopeKind = "channel"
)

// Scope identifies one conversation: the group, a private pair seen from
// UserID's side, or a channel. It partitions messages, read cursors and
// recipient sets.
type Scope struct {
	Kind      ScopeKind
	UserID    uint
	PeerID    uint
	ChannelID uint
}

func GroupScope() Scope {
	return Scope{Kind: ScopeGroup}
}

func PrivateScope(userID, peerID uint) Scope {
	return Scope{Kind: ScopePrivate, UserID: userID, PeerID: peerID}
}

func ChannelScope(channelID uint) Scope {
	return Scope{Kind: ScopeChannel, ChannelID: channelID}
}

// ScopeOf returns the conversation a stored message belongs to, seen from
// the sender's side.
func ScopeOf(m *Message) Scope {
	if m.ChannelID != nil && *m.ChannelID != 0 {
		return ChannelScope(*m.ChannelID)
	}
	if m.ToUserID == 0 {
		return GroupScope()
	}
	return PrivateScope(m.SenderID, m.ToUserID)
}

// Key is the read-cursor conversation key: "group", "private:{peerId}" or
// "channel:{channelId}".
func (s Scope) Key() string {
	switch s.Kind {
	case ScopeChannel:
		return fmt.Sprintf("channel:%d", s.ChannelID)
	case ScopePrivate:
		return fmt.Sprintf("private:%d", s.PeerID)
	default:
		return string(ScopeGroup)
	}
}

// ForViewer flips a private scope so that viewer is on the UserID side.
func (s Scope) ForViewer(viewer uint) Scope {
	if s.Kind == ScopePrivate && viewer == s.PeerID && viewer != s.UserID {
		return PrivateScope(s.PeerID, s.UserID)
	}
	return s
}

// Contains reports whether m belongs to this conversation.
func (s Scope) Contains(m *Message) bool {
	if m == nil {
		return false
	}
	switch s.Kind {
	case ScopeChannel:
		return m.ChannelID != nil && *m.ChannelID == s.ChannelID
	case ScopeGroup:
		return m.ChannelID == nil && m.ToUserID == 0
	case ScopePrivate:
		if m.ChannelID != nil || m.ToUserID == 0 {
			return false
		}
		return (m.SenderID == s.UserID && m.ToUserID == s.PeerID) ||
			(m.SenderID == s.PeerID && m.ToUserID == s.UserID)
	}
	return false
}
