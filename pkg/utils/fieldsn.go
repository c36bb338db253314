package utils

// Based on https://github.com/kevinwallace/fieldsn
// Copyright (c) 2014 Kevin Wallace <kevin@pentabarf.net>, MIT license

import (
	"unicode"
)

// FieldsN splits s at whitespace like strings.Fields, but into at most n
// fields. The last field keeps the remainder of the line, ex. the free
// text RAW_VALUE column of smartctl -A. n <= 0 returns nil.
func FieldsN(s string, n int) []string {
	if n <= 0 {
		return nil
	}

	fields := make([]string, 0, n)
	start := -1
	for idx, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				fields = append(fields, s[start:idx])
				start = -1
			}

			continue
		}
		if start == -1 {
			start = idx
			if len(fields)+1 == n {
				break
			}
		}
	}
	if start >= 0 {
		fields = append(fields, s[start:])
	}

	return fields
}
