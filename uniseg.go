package qline

import "github.com/rivo/uniseg"

// UAX29GraphemeSplitter is a fully conformant Unicode grapheme
// splitter backed by rivo/uniseg. Install it with
// SetGraphemeSplitter when the built-in heuristic is not enough:
//
//	ed.SetGraphemeSplitter(qline.UAX29GraphemeSplitter)
//	ed.SetGraphemeWidth(qline.UAX29GraphemeWidth)
func UAX29GraphemeSplitter(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	cluster, _, _, _ := uniseg.FirstGraphemeCluster(b, -1)
	return len(cluster)
}

// UAX29GraphemeWidth measures a grapheme using uniseg's East Asian
// width tables.
func UAX29GraphemeWidth(g []byte) int {
	return uniseg.StringWidth(string(g))
}
