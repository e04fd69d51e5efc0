// Package model turns a product configuration into one CSG tree. A Config
// names exactly one body (a flat plate with rounded top corners, or a
// tapered wedge) plus optional features: through-holes, rounded-corner
// masks, notches, an overlay wedge on the sloped face and a relief. Every
// product is a parameter set fed through the same recipe; there is no
// per-product code path.
package model
