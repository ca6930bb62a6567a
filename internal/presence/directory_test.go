package presence_test

import (
	"testing"

	"github.com/noteduco342/lanchat-backend/internal/presence"
	"github.com/noteduco342/lanchat-backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestDirectoryRegisterReplacesEarlierEntry(t *testing.T) {
	dir := presence.NewDirectory()
	first := testutil.NewFakeConn("c1")
	second := testutil.NewFakeConn("c2")

	require.Nil(t, dir.Register(presence.Entry{UserID: 1, Conn: first, Nickname: "Alice"}))
	prev := dir.Register(presence.Entry{UserID: 1, Conn: second, Nickname: "Alice"})
	require.NotNil(t, prev)
	require.Equal(t, "c1", prev.Conn.ID())

	conn, ok := dir.Lookup(1)
	require.True(t, ok)
	require.Equal(t, "c2", conn.ID())
	require.Equal(t, 1, dir.Count())
}

func TestDirectoryRemoveIgnoresStaleHandle(t *testing.T) {
	dir := presence.NewDirectory()
	dir.Register(presence.Entry{UserID: 1, Conn: testutil.NewFakeConn("c1")})
	dir.Register(presence.Entry{UserID: 1, Conn: testutil.NewFakeConn("c2")})

	require.False(t, dir.Remove(1, "c1"))
	require.True(t, dir.IsOnline(1))

	require.True(t, dir.Remove(1, "c2"))
	require.False(t, dir.IsOnline(1))
	require.False(t, dir.Remove(1, "c2"))
}

func TestDirectorySnapshotIsOrdered(t *testing.T) {
	dir := presence.NewDirectory()
	dir.Register(presence.Entry{UserID: 3, Conn: testutil.NewFakeConn("c3"), Username: "carol", Nickname: "Carol"})
	dir.Register(presence.Entry{UserID: 1, Conn: testutil.NewFakeConn("c1"), Username: "alice", Nickname: "Alice"})

	snap := dir.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, uint(1), snap[0].ID)
	require.Equal(t, "Alice", snap[0].Nickname)
	require.True(t, snap[0].Online)
	require.Equal(t, uint(3), snap[1].ID)
	require.Equal(t, []uint{1, 3}, dir.OnlineIDs())
}

func TestDirectoryUpdateProfile(t *testing.T) {
	dir := presence.NewDirectory()
	dir.Register(presence.Entry{UserID: 1, Conn: testutil.NewFakeConn("c1"), Nickname: "Old", Avatar: "a.png"})

	nick := "New"
	require.True(t, dir.UpdateProfile(1, presence.ProfilePatch{Nickname: &nick}))
	require.False(t, dir.UpdateProfile(2, presence.ProfilePatch{Nickname: &nick}))

	snap := dir.Snapshot()
	require.Equal(t, "New", snap[0].Nickname)
	require.Equal(t, "a.png", snap[0].Avatar)
}

func TestDirectoryEmit(t *testing.T) {
	dir := presence.NewDirectory()
	c1 := testutil.NewFakeConn("c1")
	c2 := testutil.NewFakeConn("c2")
	c3 := testutil.NewFakeConn("c3")
	dir.Register(presence.Entry{UserID: 1, Conn: c1})
	dir.Register(presence.Entry{UserID: 2, Conn: c2})
	dir.Register(presence.Entry{UserID: 3, Conn: c3})

	require.Equal(t, 2, dir.EmitTo([]uint{1, 2, 2, 9}, "ping", nil))
	require.Equal(t, 1, c1.Count("ping"))
	require.Equal(t, 1, c2.Count("ping"))
	require.Equal(t, 0, c3.Count("ping"))

	require.Equal(t, 2, dir.EmitAll("hello", nil, "c1"))
	require.Equal(t, 0, c1.Count("hello"))
	require.Equal(t, 1, c3.Count("hello"))

	c2.Break()
	require.Equal(t, 2, dir.EmitAll("bye", nil, ""))
}
