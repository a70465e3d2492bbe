package notes

import "strings"

// TagSeparator joins the canonical stored form of a tag list.
const TagSeparator = ", "

// JoinTags canonicalizes an ordered tag list into the stored string form.
// Each tag is trimmed and empty tags are dropped, so the result always
// round-trips through SplitTags.
func JoinTags(tags []string) string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, TagSeparator)
}

// SplitTags reconstructs the ordered tag list from the stored string.
// Segments are trimmed and empty segments (e.g. from "a,,b") are discarded.
// Always returns a non-nil slice so it serializes as [] rather than null.
func SplitTags(s string) []string {
	out := []string{}
	for _, seg := range strings.Split(s, ",") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
