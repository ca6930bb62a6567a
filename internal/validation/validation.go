package validation

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
	validate   = validator.New()

	ErrInvalidFilePayload = errors.New("file payload must be JSON with non-empty name and url")
)

const MaxNicknameLength = 30

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidateUsername(username string) bool {
	username = NormalizeUsername(username)
	return usernameRe.MatchString(username)
}

// ValidateNickname accepts 1..MaxNicknameLength characters after trimming.
func ValidateNickname(nickname string) bool {
	nickname = strings.TrimSpace(nickname)
	n := utf8.RuneCountInString(nickname)
	return n > 0 && n <= MaxNicknameLength
}

// ExceedsLength reports whether s is longer than max characters. max <= 0 disables the check.
func ExceedsLength(s string, max int) bool {
	return max > 0 && utf8.RuneCountInString(s) > max
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && utf8.RuneCountInString(s) > max {
		return string([]rune(s)[:max])
	}
	return s
}

// FilePayload is the structured content of a file message. Only name and
// url are checked; any other fields are left to the clients.
type FilePayload struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required"`
}

// ParseFilePayload decodes the content of a file message. Name and url must
// be non-empty after trimming.
func ParseFilePayload(content string) (*FilePayload, error) {
	var payload FilePayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &payload); err != nil {
		return nil, ErrInvalidFilePayload
	}
	payload.Name = strings.TrimSpace(payload.Name)
	payload.URL = strings.TrimSpace(payload.URL)
	if err := validate.Struct(payload); err != nil {
		return nil, ErrInvalidFilePayload
	}
	return &payload, nil
}
