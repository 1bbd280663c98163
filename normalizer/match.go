package normalizer

import "strings"

// Match tries every template in file order and returns the first one that
// consumes the whole line. ok is false when no template matched.
//
// A template whose trailing rest field would bind an empty string only wins
// if no later template matches, so a line without trailing text prefers
// the sibling template that has no rest field.
func (r *Rules) Match(line string) (res Result, ok bool) {
	return r.match(line, r.all, r.prefilter.scan(line))
}

// MatchName is like Match but only tries templates of the named rule.
func (r *Rules) MatchName(line, name string) (res Result, ok bool) {
	candidates, found := r.byName[name]
	if !found {
		return Result{}, false
	}
	return r.match(line, candidates, r.prefilter.scan(line))
}

// MatchEach reports, for every rule name in file order, the first template
// of that name that matches line. The callback may stop the iteration.
func (r *Rules) MatchEach(line string, cb MatchCallback) error {
	found := r.prefilter.scan(line)
	for _, name := range r.names {
		res, ok := r.match(line, r.byName[name], found)
		if !ok {
			continue
		}
		abort, err := cb.RuleMatching(&res)
		if err != nil {
			return err
		}
		if abort {
			return nil
		}
	}
	return nil
}

func (r *Rules) match(line string, candidates []int, found []bool) (Result, bool) {
	var fallback *Result
	for _, idx := range candidates {
		cr := r.rules[idx]
		if !cr.admitted(found) {
			continue
		}
		fields, emptyRest, ok := cr.match(line)
		if !ok {
			continue
		}
		res := Result{Rule: cr.name, Line: cr.line, Fields: fields}
		if emptyRest {
			if fallback == nil {
				fallback = &res
			}
			continue
		}
		return res, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return Result{}, false
}

// match runs the template against line. emptyRest reports that the
// template ends with a rest field that bound nothing.
func (cr *compiledRule) match(line string) (fields map[string]any, emptyRest bool, ok bool) {
	fields = make(map[string]any)
	pos := 0
	last := 0

	for i := range cr.segments {
		s := &cr.segments[i]
		if s.field == nil {
			if !strings.HasPrefix(line[pos:], s.literal) {
				return nil, false, false
			}
			pos += len(s.literal)
			continue
		}

		end, value, ok := s.consume(line, pos)
		if !ok {
			return nil, false, false
		}
		if !s.field.Discard() {
			fields[s.field.Name] = value
		}
		last = end - pos
		pos = end
	}

	if pos != len(line) {
		return nil, false, false
	}
	return fields, cr.endsWithRest && last == 0, true
}
