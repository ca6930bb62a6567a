package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected bool
	}{
		{"Valid username", "john_doe", true},
		{"Valid username with numbers", "user123", true},
		{"Valid username minimum length", "abc", true},
		{"Valid username maximum length", "a1234567890123456789012345678901", true},
		{"Username too short", "ab", false},
		{"Username too long", "a12345678901234567890123456789012", false},
		{"Username with spaces", "john doe", false},
		{"Username with special chars", "john-doe", false},
		{"Username with uppercase", "JohnDoe", true},
		{"Empty username", "", false},
		{"Username with only numbers", "12345", true},
		{"Username with only underscores", "____", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateUsername(tt.username)
			if result != tt.expected {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, result, tt.expected)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected string
	}{
		{"Username with spaces", "  john_doe  ", "john_doe"},
		{"Username no spaces", "john_doe", "john_doe"},
		{"Username with leading space", "  john_doe", "john_doe"},
		{"Username with trailing space", "john_doe  ", "john_doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeUsername(tt.username)
			if result != tt.expected {
				t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.username, result, tt.expected)
			}
		})
	}
}

func TestTrimAndLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"Normal string", "hello world", 20, "hello world"},
		{"String with spaces", "  hello world  ", 20, "hello world"},
		{"String exceeding limit", "hello world this is too long", 10, "hello worl"},
		{"Empty string", "", 20, ""},
		{"String at limit", "hello", 5, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TrimAndLimit(tt.input, tt.limit)
			if result != tt.expected {
				t.Errorf("TrimAndLimit(%q, %d) = %q, want %q", tt.input, tt.limit, result, tt.expected)
			}
		})
	}
}

func TestValidateNickname(t *testing.T) {
	tests := []struct {
		name     string
		nickname string
		expected bool
	}{
		{"Plain nickname", "Bob", true},
		{"Padded nickname", "  Bob  ", true},
		{"Only spaces", "   ", false},
		{"Empty", "", false},
		{"At limit", "abcdefghijabcdefghijabcdefghij", true},
		{"Over limit", "abcdefghijabcdefghijabcdefghijk", false},
		{"Multibyte at limit", "你你你你你你你你你你", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, ValidateNickname(tt.nickname))
		})
	}
}

func TestExceedsLength(t *testing.T) {
	require.False(t, ExceedsLength("hello", 5))
	require.True(t, ExceedsLength("hello!", 5))
	require.False(t, ExceedsLength("anything at all", 0))
}

func TestParseFilePayload(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"Name and url", `{"name":"a.pdf","url":"/uploads/a.pdf"}`, false},
		{"With size and mime type", `{"name":"a.pdf","url":"/u/a","size":12,"mimeType":"application/pdf"}`, false},
		{"Missing url", `{"name":"a.pdf"}`, true},
		{"Blank name", `{"name":"   ","url":"/u/a"}`, true},
		{"Name is not a string", `{"name":1,"url":"/u/a"}`, true},
		{"Size as text", `{"name":"a.pdf","url":"/u/a.pdf","size":"1KB"}`, false},
		{"Negative size", `{"name":"a.pdf","url":"/u/a.pdf","size":-1}`, false},
		{"Numeric mime type", `{"name":"a.pdf","url":"/u/a.pdf","mimeType":5}`, false},
		{"Url is not a string", `{"name":"a.pdf","url":true}`, true},
		{"Null", `null`, true},
		{"Array", `[{"name":"a.pdf","url":"/u/a.pdf"}]`, true},
		{"Not JSON", `a.pdf`, true},
		{"Empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := ParseFilePayload(tt.content)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFilePayload)
				require.Nil(t, payload)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, payload.Name)
			require.NotEmpty(t, payload.URL)
		})
	}
}
