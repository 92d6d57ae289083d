// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
)

// Kind discriminates segment variants.
type Kind int

const (
	// KindText is a run of plain prose.
	KindText Kind = iota
	// KindCode is a fenced code block.
	KindCode
)

// Segment is one run of message content. For KindCode, Language is the fence
// info string and may be empty.
type Segment struct {
	Kind     Kind
	Language string
	Text     string
}

// fenceRE matches a complete fenced code block: opening fence with an
// optional alphabetic language tag, a newline, the code, and a closing fence
// on its own line. An unterminated fence does not match and stays prose.
var fenceRE = regexp.MustCompile("(?s)```([a-zA-Z]*)\n(.*?)\n```")

// Segments splits content into an ordered list of text and code segments.
// Text outside fences is preserved verbatim, whitespace included; only
// empty-string runs are skipped. Code segments are kept even when empty.
func Segments(content string) []Segment {
	var segs []Segment
	last := 0

	for _, loc := range fenceRE.FindAllStringSubmatchIndex(content, -1) {
		if text := content[last:loc[0]]; text != "" {
			segs = append(segs, Segment{Kind: KindText, Text: text})
		}
		segs = append(segs, Segment{
			Kind:     KindCode,
			Language: content[loc[2]:loc[3]],
			Text:     content[loc[4]:loc[5]],
		})
		last = loc[1]
	}

	if text := content[last:]; text != "" {
		segs = append(segs, Segment{Kind: KindText, Text: text})
	}
	return segs
}
