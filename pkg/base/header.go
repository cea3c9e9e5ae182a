package base

import (
	"bufio"
	"net/http"
	"sort"
	"strings"
)

// HeaderValue is a header value; RTSP allows a header key to repeat, so a
// value is always a slice, mirroring how the teacher's Header type works.
type HeaderValue []string

// Header is the set of header fields of a Request or Response.
type Header map[string]HeaderValue

func headerKeyNormalize(in string) string {
	switch strings.ToLower(in) {
	case "cseq":
		return "CSeq"
	case "rtp-info":
		return "RTP-Info"
	case "www-authenticate":
		return "WWW-Authenticate"
	case "x-playnow":
		return "x-playNow"
	}
	return http.CanonicalHeaderKey(in)
}

// Get returns the first value associated with key, or "" if absent.
func (h Header) Get(key string) string {
	v, ok := h[headerKeyNormalize(key)]
	if !ok || len(v) == 0 {
		return ""
	}
	return v[0]
}

// Set assigns a single value to key, replacing any previous value.
func (h Header) Set(key, value string) {
	h[headerKeyNormalize(key)] = HeaderValue{value}
}

// Has reports whether key is present at all (used for presence-only flags
// such as x-playNow).
func (h Header) Has(key string) bool {
	_, ok := h[headerKeyNormalize(key)]
	return ok
}

// write serializes the header set, sorted by key for deterministic output,
// followed by the blank line that terminates an RTSP message.
func (h Header) write(bw *bufio.Writer) error {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range h[k] {
			if _, err := bw.WriteString(k + ": " + v + "\r\n"); err != nil {
				return err
			}
		}
	}

	_, err := bw.WriteString("\r\n")
	return err
}
