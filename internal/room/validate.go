package room

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultServerName qualifies bare user names given on the command line.
const DefaultServerName = "local"

var (
	ErrInvalidUserID = errors.New("invalid user id")
	ErrInvalidRoomID = errors.New("invalid room id")
)

var (
	localpartPattern = regexp.MustCompile(`^[a-z0-9._=/-]+$`)
	serverPattern    = regexp.MustCompile(`^[A-Za-z0-9.-]+(:[0-9]+)?$`)
	opaquePattern    = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// ValidateUserID checks the @localpart:server form.
func ValidateUserID(id string) error {
	local, server, ok := splitID(id, '@')
	if !ok || !localpartPattern.MatchString(local) || !serverPattern.MatchString(server) {
		return ErrInvalidUserID
	}
	return nil
}

// ValidateRoomID checks the !opaque:server form.
func ValidateRoomID(id string) error {
	opaque, server, ok := splitID(id, '!')
	if !ok || !opaquePattern.MatchString(opaque) || !serverPattern.MatchString(server) {
		return ErrInvalidRoomID
	}
	return nil
}

// NormalizeUserID lowercases a bare name or a full user id and qualifies bare
// names with server.
func NormalizeUserID(name, server string) (string, error) {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return "", ErrInvalidUserID
	}
	if !strings.HasPrefix(raw, "@") {
		if strings.TrimSpace(server) == "" {
			server = DefaultServerName
		}
		raw = "@" + raw + ":" + strings.TrimSpace(server)
	}
	local, srv, ok := splitID(raw, '@')
	if !ok {
		return "", ErrInvalidUserID
	}
	normalized := "@" + strings.ToLower(local) + ":" + srv
	if err := ValidateUserID(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

func splitID(id string, sigil byte) (string, string, bool) {
	value := strings.TrimSpace(id)
	if len(value) < 2 || value[0] != sigil {
		return "", "", false
	}
	rest := value[1:]
	idx := strings.IndexByte(rest, ':')
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}
