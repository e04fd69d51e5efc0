// Package derive holds the pure parametric functions that turn a handful of
// independent design dimensions into the control values and sub-trees the
// assembler places: taper slope and local thickness, rounded-corner masks,
// sampled boundary curves and hole placement on a sloped face.
//
// All functions are deterministic. Angles are in degrees, matching the
// rotation convention of package csg.
package derive
