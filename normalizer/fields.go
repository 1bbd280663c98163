package normalizer

import (
	"encoding/json"
	"strings"

	"github.com/sansecio/lognorm/ast"
)

// consume applies the field's extraction rule at pos. It returns the end
// offset of the consumed span and the value to bind. Every kind consumes
// greedily and never backtracks.
func (s *segment) consume(line string, pos int) (end int, value any, ok bool) {
	f := s.field
	switch f.Kind {
	case ast.KindWord:
		end = scanWord(line, pos)
		ok = end > pos
	case ast.KindNumber:
		end, ok = scanNumber(line, pos)
	case ast.KindFloat:
		end, ok = scanFloat(line, pos)
	case ast.KindCharTo:
		i := strings.IndexByte(line[pos:], f.Delim)
		end, ok = pos+i, i >= 0
	case ast.KindCharSep:
		end, ok = len(line), true
		if i := strings.IndexByte(line[pos:], f.Delim); i >= 0 {
			end = pos + i
		}
	case ast.KindRest:
		end, ok = len(line), true
	case ast.KindIPv4:
		end, ok = scanIPv4(line, pos)
	case ast.KindRegex:
		loc := s.re.FindStringIndex(line[pos:])
		if loc != nil && loc[0] == 0 {
			end, ok = pos+loc[1], true
		}
	case ast.KindJSON:
		return scanJSON(line, pos)
	}
	if !ok {
		return 0, nil, false
	}
	return end, line[pos:end], true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func scanWord(line string, pos int) int {
	for pos < len(line) && !isSpace(line[pos]) {
		pos++
	}
	return pos
}

func scanDigits(line string, pos int) int {
	for pos < len(line) && isDigit(line[pos]) {
		pos++
	}
	return pos
}

func scanSign(line string, pos int) int {
	if pos < len(line) && (line[pos] == '-' || line[pos] == '+') {
		return pos + 1
	}
	return pos
}

func scanNumber(line string, pos int) (int, bool) {
	start := scanSign(line, pos)
	end := scanDigits(line, start)
	return end, end > start
}

func scanFloat(line string, pos int) (int, bool) {
	start := scanSign(line, pos)
	end := scanDigits(line, start)
	digits := end - start
	if end < len(line) && line[end] == '.' {
		frac := scanDigits(line, end+1)
		digits += frac - end - 1
		end = frac
	}
	return end, digits > 0
}

func scanIPv4(line string, pos int) (int, bool) {
	for octet := 0; octet < 4; octet++ {
		if octet > 0 {
			if pos >= len(line) || line[pos] != '.' {
				return 0, false
			}
			pos++
		}
		end := scanDigits(line, pos)
		n := end - pos
		if n == 0 || n > 3 {
			return 0, false
		}
		v := 0
		for _, c := range line[pos:end] {
			v = v*10 + int(c-'0')
		}
		if v > 255 {
			return 0, false
		}
		pos = end
	}
	return pos, true
}

// scanJSON decodes one object or array starting at pos. The decoder reports
// how many bytes the value used, so trailing text is left for the next
// segment.
func scanJSON(line string, pos int) (int, any, bool) {
	if pos >= len(line) || (line[pos] != '{' && line[pos] != '[') {
		return 0, nil, false
	}
	dec := json.NewDecoder(strings.NewReader(line[pos:]))
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, nil, false
	}
	return pos + int(dec.InputOffset()), v, true
}
