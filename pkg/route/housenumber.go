package route

import (
	"regexp"
	"strconv"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// ParseHouseNumber returns the first maximal run of decimal digits in address.
//
// Signs are ignored and leading zeros parse by value ("007" is 7). Addresses
// with no digits, or whose first run does not fit in an int64, yield an
// unknown house number. The function never fails.
func ParseHouseNumber(address string) HouseNumber {
	run := digitRun.FindString(address)
	if run == "" {
		return HouseNumber{}
	}

	n, err := strconv.ParseInt(run, 10, 64)
	if err != nil {
		return HouseNumber{}
	}

	return HouseNumber{Value: n, Known: true}
}
