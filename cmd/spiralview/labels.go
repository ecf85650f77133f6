package main

import "github.com/gogpu/spiral"

// visibleTiles returns the IDs of tiles whose label overlay would accept
// clicks in a w x h window.
func visibleTiles(eng spiral.Engine, w, h int) []string {
	var ids []string
	for _, p := range spiral.PlaceTiles(eng.Viewport(), eng.Tiles(), float64(w), float64(h), eng.Focused()) {
		if p.Interactive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
