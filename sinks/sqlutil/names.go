package sqlutil

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const CLPRE = "cl"

var (
	nonWord    = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	underscore = regexp.MustCompile(`_+`)
)

// SnakeName turns a header such as "ParkingAccessible", "DPAfterHours" or
// "Co-ordinates" into a lower snake case column name.
func SnakeName(raw string) string {
	item := nonWord.ReplaceAllString(strings.TrimSpace(raw), "_")

	runes := []rune(item)
	var sb strings.Builder
	sb.Grow(len(runes) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}

	return strings.Trim(underscore.ReplaceAllString(sb.String(), "_"), "_")
}

/*
GenCompliantNames generates column names from raw headers.

lower snake case, disallowed characters stripped. Reserved words are not
renamed since every identifier is quoted. If a name ends up empty it is
{prefix}{idx}; a name starting with a digit gets the same prefix in front.
Collisions get a counter suffix.
*/
func GenCompliantNames(rawnames []string, prefix string) []string {
	gorgeous := make([]string, len(rawnames))

	counter := map[string]int{}
	for idx, item := range rawnames {
		item = SnakeName(item)

		if len(item) == 0 {
			gorgeous[idx] = fmt.Sprintf("%s%d", prefix, idx)
			continue
		}

		if item[0] >= '0' && item[0] <= '9' {
			item = fmt.Sprintf("%s%d_%s", prefix, idx, item)
		}

		counter[item]++
		if counter[item] == 1 {
			gorgeous[idx] = item
		} else {
			gorgeous[idx] = fmt.Sprintf("%s%d", item, counter[item])
		}
	}
	return gorgeous
}

// GenColumnNames generates column names with the default prefix.
func GenColumnNames(rawheaders []string) []string {
	return GenCompliantNames(rawheaders, CLPRE)
}
