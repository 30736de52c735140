package cue

import (
	"fmt"
	"strconv"
	"strings"
)

// FramesPerSecond is the audio-CD frame rate, the finest addressable time
// unit in a cuesheet.
const FramesPerSecond = 75

// TimeCode is an exact position expressed as whole frames at 75 frames per
// second. It is always non-negative.
type TimeCode int64

// ParseTimeCode parses the conventional MM:SS:FF cuesheet form. Minutes may
// exceed two digits; seconds must be below 60 and frames below 75.
func ParseTimeCode(value string) (TimeCode, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("malformed timecode %q: want MM:SS:FF", value)
	}
	numbers := make([]int64, 3)
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed timecode %q: want MM:SS:FF", value)
		}
		numbers[i] = n
	}
	if numbers[1] >= 60 {
		return 0, fmt.Errorf("malformed timecode %q: seconds component must be below 60", value)
	}
	if numbers[2] >= FramesPerSecond {
		return 0, fmt.Errorf("malformed timecode %q: frame component must be below %d", value, FramesPerSecond)
	}
	return TimeCode((numbers[0]*60+numbers[1])*FramesPerSecond + numbers[2]), nil
}

// String renders the MM:SS:FF form. Parsing and re-rendering a valid
// timecode yields the identical string.
func (t TimeCode) String() string {
	frames := int64(t)
	ff := frames % FramesPerSecond
	seconds := frames / FramesPerSecond
	return fmt.Sprintf("%02d:%02d:%02d", seconds/60, seconds%60, ff)
}

// Seconds renders the position as decimal seconds for the external encoder,
// with microsecond precision and trailing zeros trimmed.
func (t TimeCode) Seconds() string {
	frames := int64(t)
	whole := frames / FramesPerSecond
	rem := frames % FramesPerSecond
	if rem == 0 {
		return strconv.FormatInt(whole, 10)
	}
	// Round the sub-second remainder to whole microseconds.
	micros := (rem*1_000_000 + FramesPerSecond/2) / FramesPerSecond
	frac := strings.TrimRight(fmt.Sprintf("%06d", micros), "0")
	return fmt.Sprintf("%d.%s", whole, frac)
}

// Add returns t advanced by d frames.
func (t TimeCode) Add(d TimeCode) TimeCode { return t + d }

// Sub returns the exact frame distance t-u. It panics if the result would
// be negative; callers order operands from the validated track model.
func (t TimeCode) Sub(u TimeCode) TimeCode {
	if u > t {
		panic("cue: negative timecode difference")
	}
	return t - u
}
