// Package syntax adapts a tree-sitter grammar and highlight query
// into the editor's syntax-colouring callback. The host picks the
// language and maps capture names onto its palette:
//
//	h, _ := syntax.New(golang.GetLanguage(), query, map[string]int{
//		"keyword": 1,
//		"string":  2,
//	})
//	ed.SetSyntaxColor(h.ColorFn(), nil)
package syntax

import (
	"context"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kobzarvs/qline"
)

type span struct {
	start, end, color int
}

// Highlighter parses a buffer on demand and serves monotonic colour
// spans from the query captures. Not safe for concurrent use, which
// matches the editor's single-threaded callback contract.
type Highlighter struct {
	parser *sitter.Parser
	query  *sitter.Query
	colors map[string]int

	src   string
	valid bool
	spans []span
}

// New compiles querySrc against lang. colors maps capture names to
// palette indices; unmapped captures render with the default colour.
func New(lang *sitter.Language, querySrc string, colors map[string]int) (*Highlighter, error) {
	query, err := sitter.NewQuery([]byte(querySrc), lang)
	if err != nil {
		return nil, err
	}
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	return &Highlighter{parser: parser, query: query, colors: colors}, nil
}

// ColorFn returns the callback to install with SetSyntaxColor.
func (h *Highlighter) ColorFn() qline.SyntaxColorFn {
	return func(buf string, _ any, offset int) (qline.ColorSpan, bool) {
		if offset >= len(buf) {
			return qline.ColorSpan{}, false
		}
		if !h.valid || buf != h.src {
			h.parse(buf)
		}

		// First span that still covers anything at or past offset.
		i := sort.Search(len(h.spans), func(i int) bool {
			return h.spans[i].end > offset
		})
		if i == len(h.spans) {
			return qline.ColorSpan{ByteEnd: len(buf), Color: -1}, true
		}
		s := h.spans[i]
		if s.start > offset {
			// Uncoloured gap up to the next span.
			return qline.ColorSpan{ByteEnd: s.start, Color: -1}, true
		}
		return qline.ColorSpan{ByteEnd: s.end, Color: s.color}, true
	}
}

// parse rebuilds the span list for buf.
func (h *Highlighter) parse(buf string) {
	h.src = buf
	h.valid = true
	h.spans = h.spans[:0]

	src := []byte(buf)
	tree, err := h.parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return
	}
	defer tree.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(h.query, tree.RootNode())

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			name := h.query.CaptureNameForId(capture.Index)
			color, ok := h.colors[name]
			if !ok {
				color = -1
			}
			start := int(capture.Node.StartByte())
			end := int(capture.Node.EndByte())
			if end <= start {
				continue
			}
			h.spans = append(h.spans, span{start: start, end: end, color: color})
		}
	}

	sort.Slice(h.spans, func(i, j int) bool {
		if h.spans[i].start != h.spans[j].start {
			return h.spans[i].start < h.spans[j].start
		}
		return h.spans[i].end > h.spans[j].end
	})

	// Drop spans swallowed by an earlier, wider capture so the served
	// sequence stays monotonic.
	kept := h.spans[:0]
	covered := 0
	for _, s := range h.spans {
		if s.start < covered {
			continue
		}
		kept = append(kept, s)
		covered = s.end
	}
	h.spans = kept
}
