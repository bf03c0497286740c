package services

import (
	"fmt"
	"path/filepath"
	"strings"
)

// titleTokenCount is the minimum underscore-delimited token count a
// filename needs before the positional display-title convention applies.
const titleTokenCount = 8

// DeriveTitle builds the display title the instrument operators expect
// from an underscore-delimited filename, e.g.
//
//	scan_26_05_2025_14_58_59_pico3.txt → "Pico 3 - 26/05/2025 14:58"
//
// Tokens 1-3 are day/month/year, 4-5 hour/minute, and the last
// character of token 7 is the sensor number. Filenames that do not
// follow the convention fall back to the bare stem.
func DeriveTitle(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	tokens := strings.Split(stem, "_")
	if len(tokens) < titleTokenCount {
		return stem
	}

	sensor := tokens[7]
	if sensor == "" {
		return stem
	}

	minute := tokens[5]
	if len(minute) < 2 {
		minute = strings.Repeat("0", 2-len(minute)) + minute
	}

	return fmt.Sprintf("Pico %c - %s/%s/%s %s:%s",
		sensor[len(sensor)-1], tokens[1], tokens[2], tokens[3], tokens[4], minute)
}
