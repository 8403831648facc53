package notes

import (
	"regexp"
	"strings"
)

var hashtag = regexp.MustCompile(`#(\w+)`)

// ExtractTags removes #hashtags from text and returns the trimmed remainder
// and the tags, lowercased and de-duplicated in order of first appearance.
func ExtractTags(text string) (content string, tags []string) {
	var found []string
	for _, m := range hashtag.FindAllStringSubmatch(text, -1) {
		found = append(found, m[1])
	}
	content = strings.TrimSpace(hashtag.ReplaceAllString(text, ""))
	return content, NormalizeTags(found)
}

// NormalizeTags lowercases, strips a leading '#', drops empties and
// duplicates. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
