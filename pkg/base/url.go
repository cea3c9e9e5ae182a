package base

import "strings"

func stringsReverseIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// SplitPathQuery splits a path from its query string, at the first '?'.
func SplitPathQuery(pathAndQuery string) (string, string) {
	if i := strings.IndexByte(pathAndQuery, '?'); i >= 0 {
		return pathAndQuery[:i], pathAndQuery[i:]
	}
	return pathAndQuery, ""
}

// SplitURLSuffix splits a request path into urlPreSuffix and urlSuffix at
// the last '/' that precedes the query string. Both halves may be empty;
// a path with no '/' at all yields an empty urlPreSuffix.
func SplitURLSuffix(rawPath string) (preSuffix string, suffix string) {
	path, _ := SplitPathQuery(rawPath)
	path = strings.TrimPrefix(path, "/")

	i := stringsReverseIndexByte(path, '/')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}
