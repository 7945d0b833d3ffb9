package content

import "sort"

// SortByDateDesc orders pages newest first. Pages without a date keep their
// relative order and sort after every dated page.
func SortByDateDesc(pages []*Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		di, iok := pages[i].Date()
		dj, jok := pages[j].Date()
		switch {
		case iok && jok:
			return di > dj
		case iok:
			return true
		default:
			return false
		}
	})
}

// MetadataOf returns the metadata maps of pages in order.
func MetadataOf(pages []*Page) []map[string]any {
	out := make([]map[string]any, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.Metadata)
	}
	return out
}
