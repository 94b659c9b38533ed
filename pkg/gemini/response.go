package gemini

import "strings"

// ResponseText returns the top-level text when present, otherwise the joined
// part texts of the first candidate that has any. It returns "" when the
// response carries no text at all.
func ResponseText(r Response) string {
	if r.Text != "" {
		return r.Text
	}
	for _, cand := range r.Candidates {
		if cand.Content == nil {
			continue
		}
		var texts []string
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				texts = append(texts, p.Text)
			}
		}
		if len(texts) > 0 {
			return strings.Join(texts, "\n")
		}
	}
	return ""
}
