package headers

import (
	"fmt"
	"strconv"
	"strings"
)

// Range holds a parsed Range header. SawRange distinguishes an absent
// header (Start=0, End=0, SawRange=false) from an explicit "npt=0-0".
type Range struct {
	Start    float64
	End      float64
	SawRange bool
}

// ParseRange decodes an `npt=start-end` Range header value. A missing end
// (`npt=start-`) leaves End at 0, mirroring an open-ended range.
func ParseRange(value string) (Range, error) {
	if value == "" {
		return Range{}, nil
	}

	if !strings.HasPrefix(value, "npt=") {
		return Range{}, fmt.Errorf("unsupported range unit (%s)", value)
	}
	body := value[len("npt="):]

	parts := strings.SplitN(body, "-", 2)
	start, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range start (%s)", body)
	}

	r := Range{Start: start, SawRange: true}
	if len(parts) == 2 && parts[1] != "" {
		end, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Range{}, fmt.Errorf("invalid range end (%s)", body)
		}
		r.End = end
	}
	return r, nil
}

// Format renders the response-side Range header, per the two allowed
// formats: open-ended when only the start is known, closed otherwise.
func (r Range) Format() string {
	if r.End <= 0 {
		return fmt.Sprintf("npt=%.3f-", r.Start)
	}
	return fmt.Sprintf("npt=%.3f-%.3f", r.Start, r.End)
}
