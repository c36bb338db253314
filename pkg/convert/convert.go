// Package convert contains the loose value conversions used when reading
// values from appliance APIs and command output.
package convert

import (
	"fmt"
	"strconv"
	"strings"
)

// Int64Loose converts anything into a int64 the forgiving way: leading
// whitespace is skipped, an optional sign and all following decimal digits
// are used and everything after that is ignored. Input without leading
// digits results in 0.
//
// ok is false whenever the input was not a clean integer, so callers can
// report malformed upstream data while still using the coerced value.
//
//	"42"     -> 42, true
//	"42%"    -> 42, false
//	"12.7"   -> 12, false
//	"abc"    -> 0, false
//	""       -> 0, false
func Int64Loose(raw interface{}) (num int64, ok bool) {
	switch val := raw.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case float64:
		return int64(val), float64(int64(val)) == val
	case nil:
		return 0, false
	}

	str := strings.TrimLeft(fmt.Sprintf("%v", raw), " \t\r\n")
	end := 0
	if end < len(str) && (str[end] == '-' || str[end] == '+') {
		end++
	}
	digits := end
	for end < len(str) && str[end] >= '0' && str[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	num, err := strconv.ParseInt(str[:end], 10, 64)
	if err != nil {
		// overflow, ParseInt returns the clamped value
		return num, false
	}

	return num, end == len(strings.TrimRight(str, " \t\r\n"))
}

// Num2String converts any number into a string
// errors will fall back to empty string
func Num2String(raw interface{}) string {
	s, _ := Num2StringE(raw)

	return s
}

// Num2StringE converts any number into a string
// errors will be returned
func Num2StringE(raw interface{}) (string, error) {
	switch num := raw.(type) {
	case float64:
		if strconv.FormatFloat(num, 'f', -1, 64) != fmt.Sprintf("%d", int64(num)) {
			return strconv.FormatFloat(num, 'f', -1, 64), nil
		}

		return fmt.Sprintf("%d", int64(num)), nil
	case int64:
		return fmt.Sprintf("%d", num), nil
	default:
		fNum, err := strconv.ParseFloat(fmt.Sprintf("%v", raw), 64)
		if err != nil {
			return "", fmt.Errorf("cannot convert %v (%T) into string", raw, raw)
		}

		return Num2StringE(fNum)
	}
}
