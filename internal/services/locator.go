package services

import (
	"log"
	"regexp"
	"strings"
)

// EntireDocument is the sentinel heading meaning "do not narrow".
const EntireDocument = "ENTIRE_DOCUMENT"

const (
	// Sections shorter than this are treated as a mis-match and discarded
	// in favor of the whole document.
	minSectionChars = 50
	// The short-section fallback only applies to documents longer than this.
	minDocumentChars = 100
)

// LocateSection returns the slice of fullText belonging to selectedHeading,
// using the heading that follows it in allHeadings as the end boundary.
//
// Matching is case-insensitive and line-anchored: the heading must occupy a
// line of its own, optionally indented and with trailing dots or spaces. The
// returned span starts after the heading's own line and ends where the next
// heading's line starts. LocateSection never fails: when the heading cannot
// be found, or the extracted span is implausibly short, it degrades to
// returning fullText unchanged. Callers cannot tell those two cases apart;
// that ambiguity is deliberate.
func LocateSection(fullText, selectedHeading string, allHeadings []string) string {
	heading := strings.TrimSpace(selectedHeading)
	if heading == "" || len(allHeadings) == 0 || fullText == "" {
		return fullText
	}
	if heading == EntireDocument || strings.Contains(strings.ToLower(heading), "entire document") {
		return fullText
	}

	start := headingStartPattern(heading).FindStringIndex(fullText)
	if start == nil {
		log.Printf("section %q not found in document text, using entire document", heading)
		return fullText
	}
	contentStart := start[1]

	end := len(fullText)
	if next := nextHeading(heading, allHeadings); next != "" {
		if loc := headingAnchorPattern(next).FindStringIndex(fullText[contentStart:]); loc != nil {
			end = contentStart + loc[0]
		}
	}

	section := fullText[contentStart:end]
	if len(section) < minSectionChars && len(fullText) > minDocumentChars {
		log.Printf("section %q is only %d chars, using entire document", heading, len(section))
		return fullText
	}
	return section
}

// headingStartPattern matches the heading line itself, consuming trailing
// punctuation and the line terminator so the match ends where content begins.
// The heading must occupy the whole line: a line that continues past the
// heading text is not a section start, otherwise the match would end mid-line
// and the next-heading anchor would treat that position as a line boundary.
func headingStartPattern(heading string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*` + regexp.QuoteMeta(heading) + `[ \t.]*(\r?\n|$)`)
}

// headingAnchorPattern matches the position where a heading's line starts.
func headingAnchorPattern(heading string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*` + regexp.QuoteMeta(heading))
}

// nextHeading returns the heading immediately after the selected one in the
// ordered heading list, or "" when the selected heading is last or absent.
// Duplicate headings resolve to the first occurrence.
func nextHeading(selected string, allHeadings []string) string {
	want := strings.ToLower(strings.TrimSpace(selected))
	for i, h := range allHeadings {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			if i+1 < len(allHeadings) {
				return strings.TrimSpace(allHeadings[i+1])
			}
			return ""
		}
	}
	return ""
}
