package sources

// Options configures how a driver reads its input.
type Options struct {
	Delimiter rune   // CSV field delimiter; 0 detects it from the header line
	Sheet     string // excel sheet name or html table id; empty selects the first
}

// candidates are tried in order; on a tie the earlier one wins.
var candidates = []rune{',', '\t', ';', '|'}

// DetectDelimiter picks the candidate that occurs most often in a header
// line, ignoring anything inside double quotes. An empty line or a line with
// no candidate yields a comma.
func DetectDelimiter(line string) rune {
	counts := make(map[rune]int, len(candidates))
	quoted := false
	for _, r := range line {
		if r == '"' {
			quoted = !quoted
			continue
		}
		if !quoted {
			counts[r]++
		}
	}

	winner, best := ',', 0
	for _, c := range candidates {
		if counts[c] > best {
			winner, best = c, counts[c]
		}
	}
	return winner
}
