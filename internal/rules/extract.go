package rules

import "fmt"

// Extract pulls the configuration value for key out of a document's raw
// text using the set's extractor regex. When the pattern has a capture
// group the first group is the value, otherwise the whole match is.
// The second return is false when the pattern matched nothing.
func (s *Set) Extract(key, text string) (string, bool, error) {
	re, ok := s.compiled[key]
	if !ok {
		return "", false, fmt.Errorf("rules: no extractor for config key %q", key)
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false, nil
	}
	if len(m) > 1 && m[1] != "" {
		return m[1], true, nil
	}
	return m[0], true, nil
}

// ExtractorSpan returns the full span of the first extractor match in text,
// plus the value within it. Used by the auto-fix path so a replacement stays
// inside the matched region instead of touching unrelated text.
func (s *Set) ExtractorSpan(key, text string) (start, end int, value string, ok bool) {
	re, found := s.compiled[key]
	if !found {
		return 0, 0, "", false
	}
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return 0, 0, "", false
	}
	start, end = loc[0], loc[1]
	if len(loc) > 3 && loc[2] >= 0 {
		value = text[loc[2]:loc[3]]
	} else {
		value = text[start:end]
	}
	return start, end, value, true
}
