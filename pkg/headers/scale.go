package headers

import "strconv"

// DefaultScale is the Scale value implied when the header is absent.
const DefaultScale = 1.0

// ParseScale decodes a `Scale: f` header value.
func ParseScale(value string) (float64, bool, error) {
	if value == "" {
		return DefaultScale, false, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return DefaultScale, false, err
	}
	return f, true, nil
}
