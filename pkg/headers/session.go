package headers

import "strconv"

// FormatSession renders the Session header value: a bare decimal session
// id, per spec (Session ids are rendered as unsigned decimals).
func FormatSession(sessionID uint32) string {
	return strconv.FormatUint(uint64(sessionID), 10)
}
