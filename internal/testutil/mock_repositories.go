package testutil

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/noteduco342/lanchat-backend/internal/repository"
)

// MockUserRepository is an in-memory repository.UserRepositoryInterface.
type MockUserRepository struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint

	// Err, when set, is returned by every lookup.
	Err error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[uint]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Status == "" {
		user.Status = models.StatusActive
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) FindByID(id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if user, ok := m.users[id]; ok {
		out := *user
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) FindByUsername(username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, user := range m.users {
		if user.Username == username {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) Update(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) FindByIDs(ids []uint) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			out = append(out, *user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockUserRepository) ListMentionable() ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		out = append(out, models.User{ID: user.ID, Nickname: user.Nickname})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockMessageRepository is an in-memory repository.MessageRepositoryInterface.
// Ids are assigned sequentially, like a serial primary key.
type MockMessageRepository struct {
	mu       sync.Mutex
	messages map[uint]*models.Message
	nextID   uint
	users    *MockUserRepository

	// Now stamps CreatedAt on insert.
	Now func() time.Time
	// CreateErr, when set, makes Create fail without storing anything.
	CreateErr error
}

func NewMockMessageRepository(users *MockUserRepository) *MockMessageRepository {
	return &MockMessageRepository{
		messages: make(map[uint]*models.Message),
		nextID:   1,
		users:    users,
		Now:      time.Now,
	}
}

func (m *MockMessageRepository) Create(message *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	message.ID = m.nextID
	m.nextID++
	if message.CreatedAt.IsZero() {
		message.CreatedAt = m.Now()
	}
	if m.users != nil {
		if sender, err := m.users.FindByID(message.SenderID); err == nil {
			message.Sender = *sender
		}
	}
	stored := *message
	m.messages[message.ID] = &stored
	return nil
}

// Insert stores a message as-is, keeping a caller-chosen CreatedAt.
func (m *MockMessageRepository) Insert(message *models.Message) *models.Message {
	_ = m.Create(message)
	return message
}

func (m *MockMessageRepository) FindByID(id uint) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.messages[id]; ok {
		out := *msg
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockMessageRepository) MarkRevoked(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	msg.IsRevoked = true
	return nil
}

func (m *MockMessageRepository) UpdateContent(id uint, content string, editedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	msg.Content = content
	at := editedAt
	msg.EditedAt = &at
	return nil
}

func (m *MockMessageRepository) MaxIDIn(scope models.Scope) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var maxID uint
	for _, msg := range m.messages {
		if scope.Contains(msg) && msg.ID > maxID {
			maxID = msg.ID
		}
	}
	return maxID, nil
}

func (m *MockMessageRepository) FindInScope(scope models.Scope, limit, offset int) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Message
	for _, msg := range m.messages {
		if scope.Contains(msg) {
			all = append(all, *msg)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return []models.Message{}, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	// Senders are read back at query time, like a preload.
	if m.users != nil {
		for i := range all {
			if sender, err := m.users.FindByID(all[i].SenderID); err == nil {
				all[i].Sender = *sender
			}
		}
	}
	return all, nil
}

// MockChannelRepository is an in-memory repository.ChannelRepositoryInterface.
type MockChannelRepository struct {
	mu       sync.Mutex
	channels map[uint]*models.Channel
	members  map[uint]map[uint]bool
	users    *MockUserRepository
	nextID   uint
}

func NewMockChannelRepository(users *MockUserRepository) *MockChannelRepository {
	return &MockChannelRepository{
		channels: make(map[uint]*models.Channel),
		members:  make(map[uint]map[uint]bool),
		users:    users,
		nextID:   1,
	}
}

// CreateChannel adds a channel with the given members and returns its id.
func (m *MockChannelRepository) CreateChannel(name string, createdBy uint, memberIDs ...uint) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.channels[id] = &models.Channel{ID: id, Name: name, CreatedBy: createdBy}
	m.members[id] = make(map[uint]bool)
	for _, userID := range memberIDs {
		m.members[id][userID] = true
	}
	return id
}

func (m *MockChannelRepository) Create(channel *models.Channel, memberIDs []uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.channels {
		if existing.Name == channel.Name {
			return repository.ErrDuplicate
		}
	}
	channel.ID = m.nextID
	m.nextID++
	stored := *channel
	m.channels[channel.ID] = &stored
	m.members[channel.ID] = make(map[uint]bool, len(memberIDs))
	for _, userID := range memberIDs {
		m.members[channel.ID][userID] = true
	}
	return nil
}

func (m *MockChannelRepository) FindByID(id uint) (*models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[id]; ok {
		out := *ch
		return &out, nil
	}
	return nil, repository.ErrNotFound
}

func (m *MockChannelRepository) GetMemberIDs(channelID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uint, 0, len(m.members[channelID]))
	for userID := range m.members[channelID] {
		ids = append(ids, userID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *MockChannelRepository) GetMembers(channelID uint) ([]models.User, error) {
	ids, _ := m.GetMemberIDs(channelID)
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if m.users == nil {
			users = append(users, models.User{ID: id})
			continue
		}
		if user, err := m.users.FindByID(id); err == nil {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (m *MockChannelRepository) IsMember(channelID, userID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.members[channelID][userID], nil
}

func (m *MockChannelRepository) ReplaceMembers(channelID uint, userIDs []uint, addedBy uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[channelID]; !ok {
		return repository.ErrNotFound
	}
	m.members[channelID] = make(map[uint]bool, len(userIDs))
	for _, userID := range userIDs {
		m.members[channelID][userID] = true
	}
	return nil
}

func (m *MockChannelRepository) GetUserChannels(userID uint) ([]models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Channel
	for id, members := range m.members {
		if members[userID] {
			out = append(out, *m.channels[id])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockReadCursorRepository is an in-memory repository.ReadCursorRepositoryInterface.
type MockReadCursorRepository struct {
	mu      sync.Mutex
	cursors map[string]*models.ReadCursor
}

func NewMockReadCursorRepository() *MockReadCursorRepository {
	return &MockReadCursorRepository{cursors: make(map[string]*models.ReadCursor)}
}

func cursorKey(userID uint, conversationKey string) string {
	return fmt.Sprintf("%d#%s", userID, conversationKey)
}

func (m *MockReadCursorRepository) UpsertMonotonic(userID uint, conversationKey string, lastReadMessageID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cursorKey(userID, conversationKey)
	cur, ok := m.cursors[key]
	if !ok {
		m.cursors[key] = &models.ReadCursor{
			UserID:            userID,
			ConversationKey:   conversationKey,
			LastReadMessageID: lastReadMessageID,
			UpdatedAt:         time.Now(),
		}
		return nil
	}
	if lastReadMessageID > cur.LastReadMessageID {
		cur.LastReadMessageID = lastReadMessageID
	}
	cur.UpdatedAt = time.Now()
	return nil
}

func (m *MockReadCursorRepository) Get(userID uint, conversationKey string) (*models.ReadCursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.cursors[cursorKey(userID, conversationKey)]; ok {
		out := *cur
		return &out, nil
	}
	return nil, repository.ErrNotFound
}
