package mimeconv

import "unicode/utf8"

// BuildCSVSample derives a bounded-length preview of a decoded CSV buffer,
// per spec.md §4.6: commas become spaces, quoted fields are unescaped,
// runs of whitespace collapse to a single space, and the result is
// truncated once it reaches s bytes. The usual cut is at the last word
// boundary followed by " ...", which can leave the result up to three bytes
// longer than s; for a single run-on "monster word" (last word boundary at
// or before s/2) the cut is mid-word at s-3 bytes followed by "...".
func BuildCSVSample(input string, s int) string {
	runes := []rune(input)
	sample := make([]byte, 0, s+4)

	inQuotes := false
	inSpace := false
	lastWordEnd := 0

	emit := func(r rune) {
		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		sample = append(sample, buf[:n]...)
	}

	truncated := false
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		var effective rune
		skip := false

		if inQuotes {
			if r == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					effective = '"'
					i++
				} else {
					inQuotes = false
					skip = true
				}
			} else {
				effective = r
			}
		} else {
			switch r {
			case '"':
				inQuotes = true
				skip = true
			case ',':
				effective = ' '
			default:
				effective = r
			}
		}

		if skip {
			continue
		}

		if effective <= 0x0020 || effective == 0x00A0 {
			if !inSpace {
				lastWordEnd = len(sample)
				emit(' ')
				inSpace = true
			}
		} else {
			emit(effective)
			inSpace = false
		}

		if len(sample) >= s {
			truncated = true
			break
		}
	}

	if !truncated {
		return string(sample)
	}

	if lastWordEnd <= s/2 {
		cut := s - 3
		if cut < 0 {
			cut = 0
		}
		if cut > len(sample) {
			cut = len(sample)
		}
		return string(sample[:cut]) + "..."
	}
	if lastWordEnd > len(sample) {
		lastWordEnd = len(sample)
	}
	return string(sample[:lastWordEnd]) + " ..."
}
