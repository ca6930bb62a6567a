package dispatch

import (
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/noteduco342/lanchat-backend/internal/models"
	"github.com/samber/lo"
)

// MatchMentions returns the candidates, other than the sender, whose
// "@nickname" occurs anywhere in content. The match is a plain substring
// search, so "@Bob" also matches inside "@Bobby".
func MatchMentions(content string, candidates []models.User, senderID uint) []models.User {
	eligible := lo.Filter(candidates, func(u models.User, _ int) bool {
		return u.ID != senderID && u.Nickname != ""
	})
	if len(eligible) == 0 || !strings.Contains(content, "@") {
		return nil
	}

	patterns := lo.Uniq(lo.Map(eligible, func(u models.User, _ int) string {
		return "@" + u.Nickname
	}))

	found, err := searchPatterns(content, patterns)
	if err != nil {
		found = make(map[string]bool, len(patterns))
		for _, p := range patterns {
			if strings.Contains(content, p) {
				found[p] = true
			}
		}
	}

	return lo.Filter(eligible, func(u models.User, _ int) bool {
		return found["@"+u.Nickname]
	})
}

// searchPatterns runs every pattern over content in one pass.
func searchPatterns(content string, patterns []string) (map[string]bool, error) {
	runes := make([][]rune, len(patterns))
	for i, p := range patterns {
		runes[i] = []rune(p)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(runes); err != nil {
		return nil, err
	}

	found := make(map[string]bool)
	for _, term := range m.MultiPatternSearch([]rune(content), false) {
		found[string(term.Word)] = true
	}
	return found, nil
}

// scanMentions notifies the present users named in msg. It runs after the
// message has been fanned out and never affects its delivery.
func (e *Engine) scanMentions(msg *models.Message, senderNickname string) {
	scope := models.ScopeOf(msg)

	var candidates []models.User
	var err error
	if scope.Kind == models.ScopeChannel {
		candidates, err = e.channels.GetMembers(scope.ChannelID)
	} else {
		candidates, err = e.users.ListMentionable()
	}
	if err != nil {
		e.log.Warn("mention scan skipped", "message_id", msg.ID, "error", err)
		return
	}

	delivered := 0
	for _, user := range MatchMentions(msg.Content, candidates, msg.SenderID) {
		conn, ok := e.dir.Lookup(user.ID)
		if !ok {
			continue
		}
		err := conn.Send(EventChatMentioned, MentionedEvent{
			MessageID:       msg.ID,
			From:            senderNickname,
			ConversationKey: scope.ForViewer(user.ID).Key(),
		})
		if err == nil {
			delivered++
		}
	}
	e.metrics.mentioned(delivered)
}
