// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"testing"
)

func TestSegments_PlainText(t *testing.T) {
	segs := Segments("just some prose, no code")

	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Kind != KindText || segs[0].Text != "just some prose, no code" {
		t.Errorf("segment = %+v", segs[0])
	}
}

func TestSegments_CodeBetweenProse(t *testing.T) {
	content := "Here is the fix:\n```python\nprint('hi')\n```\nRun it and check."

	segs := Segments(content)

	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if segs[0].Kind != KindText {
		t.Errorf("segs[0].Kind = %v, want text", segs[0].Kind)
	}
	if segs[1].Kind != KindCode {
		t.Fatalf("segs[1].Kind = %v, want code", segs[1].Kind)
	}
	if segs[1].Language != "python" {
		t.Errorf("Language = %q, want python", segs[1].Language)
	}
	if segs[1].Text != "print('hi')" {
		t.Errorf("code = %q", segs[1].Text)
	}
	if segs[2].Kind != KindText {
		t.Errorf("segs[2].Kind = %v, want text", segs[2].Kind)
	}
}

func TestSegments_NoLanguageTag(t *testing.T) {
	segs := Segments("```\nplain block\n```")

	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Kind != KindCode || segs[0].Language != "" {
		t.Errorf("segment = %+v", segs[0])
	}
	if segs[0].Text != "plain block" {
		t.Errorf("code = %q", segs[0].Text)
	}
}

func TestSegments_MultipleBlocks(t *testing.T) {
	content := "First:\n```go\na := 1\n```\nThen:\n```js\nlet b = 2\n```"

	segs := Segments(content)

	if len(segs) != 4 {
		t.Fatalf("got %d segments, want 4", len(segs))
	}
	if segs[1].Language != "go" || segs[3].Language != "js" {
		t.Errorf("languages = %q, %q", segs[1].Language, segs[3].Language)
	}
}

func TestSegments_UnterminatedFenceStaysProse(t *testing.T) {
	content := "Careful:\n```go\nfunc main() {"

	segs := Segments(content)

	for _, seg := range segs {
		if seg.Kind == KindCode {
			t.Fatalf("unterminated fence parsed as code: %+v", seg)
		}
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
}

func TestSegments_MultilineCode(t *testing.T) {
	content := "```python\ndef f():\n    return 42\n```"

	segs := Segments(content)

	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Text != "def f():\n    return 42" {
		t.Errorf("code = %q", segs[0].Text)
	}
}

func TestSegments_WhitespaceAroundFencesPreserved(t *testing.T) {
	content := "\n\n```go\na := 1\n```\n\n"

	segs := Segments(content)

	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if segs[0].Kind != KindText || segs[0].Text != "\n\n" {
		t.Errorf("leading segment = %+v, want the blank run kept verbatim", segs[0])
	}
	if segs[1].Kind != KindCode {
		t.Errorf("segs[1] = %+v, want code", segs[1])
	}
	if segs[2].Kind != KindText || segs[2].Text != "\n\n" {
		t.Errorf("trailing segment = %+v, want the blank run kept verbatim", segs[2])
	}
}

func TestSegments_Empty(t *testing.T) {
	if segs := Segments(""); len(segs) != 0 {
		t.Errorf("got %d segments, want 0", len(segs))
	}
}
