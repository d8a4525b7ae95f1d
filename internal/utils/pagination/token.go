package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncodeMultiFieldToken creates an opaque token from any number of string fields
func EncodeMultiFieldToken(fields ...string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(fields, "|")))
}

// DecodeMultiFieldToken decodes a token into its component fields
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}

// EncodeIndexToken creates a token pointing at the next record index of a per-project list.
// kind keeps a donations token from being replayed against expenses.
func EncodeIndexToken(kind string, projectID int64, nextIndex int64) string {
	return EncodeMultiFieldToken(kind, strconv.FormatInt(projectID, 10), strconv.FormatInt(nextIndex, 10))
}

// DecodeIndexToken returns the next index stored in token after checking it belongs to kind and projectID.
func DecodeIndexToken(token string, kind string, projectID int64) (int64, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return 0, err
	}
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid pagination token format (field count)")
	}
	if parts[0] != kind {
		return 0, fmt.Errorf("pagination token is for %s, not %s", parts[0], kind)
	}
	tokenProject, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || tokenProject != projectID {
		return 0, fmt.Errorf("pagination token does not belong to project %d", projectID)
	}
	next, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || next < 0 {
		return 0, fmt.Errorf("invalid pagination token format (index)")
	}
	return next, nil
}

// NextIndexToken returns the token for the page after one that started at fromIndex and
// returned pageLen records, or nil when total shows there is nothing left.
func NextIndexToken(kind string, projectID int64, fromIndex int64, pageLen int, total int64) *string {
	next := fromIndex + int64(pageLen)
	if pageLen == 0 || next >= total {
		return nil
	}
	token := EncodeIndexToken(kind, projectID, next)
	return &token
}
