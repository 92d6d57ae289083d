// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format splits message content into renderable segments.
//
// Assistant replies mix prose with fenced code blocks. The formatter is pure
// string parsing: it produces an ordered list of segments and leaves styling
// and syntax highlighting to the UI layer.
//
// # Key Types
//
//   - Segment: one run of plain text or one fenced code block
//
// # Usage
//
//	for _, seg := range format.Segments(msg.Content) {
//		switch seg.Kind {
//		case format.KindCode:
//			// render with highlighting, seg.Language may be ""
//		case format.KindText:
//			// render as prose
//		}
//	}
package format
