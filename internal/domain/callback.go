package domain

import (
	"errors"
	"strings"
)

// CallbackSeparator splits the post id from the answer key inside a
// callback token. Answer keys must never contain it; post ids are UUIDs
// and cannot.
const CallbackSeparator = "|"

// StatsKey - reserved pseudo answer key encoding the "show statistics"
// button instead of a vote.
const StatsKey = "__view_stats__"

var ErrBadCallback = errors.New("malformed callback token")

// EncodeCallback builds the opaque token carried by an answer button.
func EncodeCallback(postID, key string) string {
	return postID + CallbackSeparator + key
}

// ParseCallback splits a token back into post id and answer key. The
// split happens at the first separator, so a key that slipped through
// with a separator inside still round-trips intact.
func ParseCallback(token string) (postID, key string, err error) {
	postID, key, ok := strings.Cut(token, CallbackSeparator)
	if !ok || postID == "" || key == "" {
		return "", "", ErrBadCallback
	}
	return postID, key, nil
}

// ValidButtonKey reports whether text may be used as an answer key:
// non-empty, not the reserved stats key, and free of the separator.
func ValidButtonKey(key string) bool {
	if key == "" || key == StatsKey {
		return false
	}
	return !strings.Contains(key, CallbackSeparator)
}
