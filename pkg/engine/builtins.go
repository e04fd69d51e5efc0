package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/chazu/partgen/pkg/model"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms product script source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: top-thickness -> top_thickness
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPlate wraps a model.Plate body returned from `plate`.
type sexpPlate struct {
	plate model.Plate
}

func (p *sexpPlate) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(plate %gx%gx%g)", p.plate.Width, p.plate.Height, p.plate.Thickness)
}
func (p *sexpPlate) Type() *zygo.RegisteredType { return nil }

// sexpTaper wraps a model.Taper body returned from `taper`.
type sexpTaper struct {
	taper model.Taper
}

func (t *sexpTaper) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(taper %g %g->%g)", t.taper.Height, t.taper.TopThickness, t.taper.BottomThickness)
}
func (t *sexpTaper) Type() *zygo.RegisteredType { return nil }

type sexpHole struct {
	hole model.Hole
}

func (h *sexpHole) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(hole d=%g)", h.hole.Diameter)
}
func (h *sexpHole) Type() *zygo.RegisteredType { return nil }

type sexpNotch struct {
	notch model.Notch
}

func (n *sexpNotch) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(notch %gx%gx%g)", n.notch.Width, n.notch.Height, n.notch.Depth)
}
func (n *sexpNotch) Type() *zygo.RegisteredType { return nil }

type sexpCorners struct {
	corners model.Corners
}

func (c *sexpCorners) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(corners r=%g)", c.corners.Radius)
}
func (c *sexpCorners) Type() *zygo.RegisteredType { return nil }

type sexpOverlay struct {
	overlay model.Overlay
}

func (o *sexpOverlay) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(overlay %g+%g)", o.overlay.Offset, o.overlay.Span)
}
func (o *sexpOverlay) Type() *zygo.RegisteredType { return nil }

type sexpRelief struct {
	relief model.Relief
}

func (r *sexpRelief) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(relief depth=%g)", r.relief.Depth)
}
func (r *sexpRelief) Type() *zygo.RegisteredType { return nil }

type sexpMarker struct {
	marker model.ReliefMarker
}

func (m *sexpMarker) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(marker %gx%g)", m.marker.Width, m.marker.Height)
}
func (m *sexpMarker) Type() *zygo.RegisteredType { return nil }

// sexpPart is returned from `part` once the product has been recorded.
type sexpPart struct {
	name string
}

func (p *sexpPart) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(part %q)", p.name)
}
func (p *sexpPart) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// argReader pulls typed keyword values out of kwArgs for one builtin,
// keeping the first error and remembering which keywords were consumed.
type argReader struct {
	fn   string
	pa   kwArgs
	used map[string]bool
	err  error
}

func newArgReader(fn string, args []zygo.Sexp) *argReader {
	return &argReader{fn: fn, pa: parseArgs(args), used: make(map[string]bool)}
}

func (r *argReader) get(key string) (zygo.Sexp, bool) {
	r.used[key] = true
	if r.err != nil {
		return nil, false
	}
	v, ok := r.pa.kw[key]
	return v, ok
}

func (r *argReader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: %s: %w", r.fn, key, err)
	}
}

func (r *argReader) float(key string, dst *float64) {
	if v, ok := r.get(key); ok {
		f, err := toFloat64(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = f
	}
}

func (r *argReader) floatPtr(key string, dst **float64) {
	if v, ok := r.get(key); ok {
		f, err := toFloat64(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = &f
	}
}

func (r *argReader) int(key string, dst *int) {
	if v, ok := r.get(key); ok {
		n, err := toInt(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = n
	}
}

func (r *argReader) bool(key string, dst *bool) {
	if v, ok := r.get(key); ok {
		b, err := toBool(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		*dst = b
	}
}

func (r *argReader) holes(key string, dst *[]model.Hole) {
	if v, ok := r.get(key); ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			r.fail(key, err)
			return
		}
		for i, item := range items {
			h, ok := item.(*sexpHole)
			if !ok {
				r.fail(key, fmt.Errorf("entry %d: expected hole, got %T (%s)", i, item, item.SexpString(nil)))
				return
			}
			*dst = append(*dst, h.hole)
		}
	}
}

// done reports the first conversion error, then any keyword the builtin
// does not understand, and finally stray positional arguments beyond
// maxPositional.
func (r *argReader) done(maxPositional int) error {
	if r.err != nil {
		return r.err
	}
	var unknown []string
	for k := range r.pa.kw {
		if !r.used[k] {
			unknown = append(unknown, ":"+k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%s: unknown keyword %s", r.fn, strings.Join(unknown, ", "))
	}
	if len(r.pa.positional) > maxPositional {
		return fmt.Errorf("%s: unexpected positional argument %s", r.fn, r.pa.positional[maxPositional].SexpString(nil))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer; floats are accepted when they are whole.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean. A keyword given without a value counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// collector accumulates the products defined by one evaluation, in
// definition order.
type collector struct {
	configs []model.Config
	names   map[string]bool
}

func newCollector() *collector {
	return &collector{names: make(map[string]bool)}
}

// registerBuiltins installs the product DSL builtins into a zygomys
// environment. Every `part` call records one model.Config in c.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, c *collector) {

	// -----------------------------------------------------------------------
	// (plate :width 91.85 :height 44.2 :thickness 2.28 :corner-radius 15
	//        :corner-segments 50)
	// -----------------------------------------------------------------------
	env.AddFunction("plate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("plate", args)
		var p model.Plate
		r.float("width", &p.Width)
		r.float("height", &p.Height)
		r.float("thickness", &p.Thickness)
		r.float("corner-radius", &p.CornerRadius)
		r.int("corner-segments", &p.CornerSegments)
		if err := r.done(0); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPlate{plate: p}, nil
	})

	// -----------------------------------------------------------------------
	// (taper :height 151 :width 43.5 :top-thickness 23 :bottom-thickness 2
	//        :hole-clearance 2)
	// -----------------------------------------------------------------------
	env.AddFunction("taper", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("taper", args)
		var t model.Taper
		r.float("height", &t.Height)
		r.float("width", &t.Width)
		r.float("top-thickness", &t.TopThickness)
		r.float("bottom-thickness", &t.BottomThickness)
		r.float("hole-clearance", &t.HoleClearance)
		if err := r.done(0); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpTaper{taper: t}, nil
	})

	// -----------------------------------------------------------------------
	// (hole :from-top 16.5 :diameter 3.75 :z 10 :segments 64)
	// -----------------------------------------------------------------------
	env.AddFunction("hole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("hole", args)
		var h model.Hole
		r.floatPtr("from-top", &h.FromTop)
		r.floatPtr("from-bottom", &h.FromBottom)
		r.float("diameter", &h.Diameter)
		r.floatPtr("z", &h.Z)
		r.int("segments", &h.Segments)
		if err := r.done(0); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpHole{hole: h}, nil
	})

	// -----------------------------------------------------------------------
	// (notch :width 3 :height 4 :depth 1.2 :x 10 :y 0 :z 0)
	// -----------------------------------------------------------------------
	env.AddFunction("notch", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("notch", args)
		var n model.Notch
		r.float("width", &n.Width)
		r.float("height", &n.Height)
		r.float("depth", &n.Depth)
		r.floatPtr("x", &n.X)
		r.float("y", &n.Y)
		r.float("z", &n.Z)
		if err := r.done(0); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpNotch{notch: n}, nil
	})

	// -----------------------------------------------------------------------
	// (corners :radius 18 :top true :bottom true :segments 100)
	// -----------------------------------------------------------------------
	env.AddFunction("corners", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("corners", args)
		var k model.Corners
		r.float("radius", &k.Radius)
		r.bool("top", &k.Top)
		r.bool("bottom", &k.Bottom)
		r.int("segments", &k.Segments)
		if err := r.done(0); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpCorners{corners: k}, nil
	})

	// -----------------------------------------------------------------------
	// (overlay :offset 20 :span 40 :top-thickness 3 :bottom-thickness 1
	//          :width 20 :holes (list (hole ...)))
	// -----------------------------------------------------------------------
	env.AddFunction("overlay", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("overlay", args)
		var o model.Overlay
		r.float("offset", &o.Offset)
		r.float("span", &o.Span)
		r.float("top-thickness", &o.TopThickness)
		r.float("bottom-thickness", &o.BottomThickness)
		r.float("width", &o.Width)
		r.holes("holes", &o.Holes)
		if err := r.done(0); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpOverlay{overlay: o}, nil
	})

	// -----------------------------------------------------------------------
	// (marker :width 4 :height 1.35)
	// -----------------------------------------------------------------------
	env.AddFunction("marker", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("marker", args)
		var m model.ReliefMarker
		r.float("width", &m.Width)
		r.float("height", &m.Height)
		if err := r.done(0); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpMarker{marker: m}, nil
	})

	// -----------------------------------------------------------------------
	// (relief :top-offset 21 :bottom-offset 23 :depth 5 :raised true
	//         :overlap 0.2 :segments 100 :marker (marker ...))
	// -----------------------------------------------------------------------
	env.AddFunction("relief", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("relief", args)
		var rl model.Relief
		r.float("top-offset", &rl.TopOffset)
		r.float("bottom-offset", &rl.BottomOffset)
		r.float("depth", &rl.Depth)
		r.float("overlap", &rl.Overlap)
		r.int("segments", &rl.Segments)
		r.bool("raised", &rl.Raised)
		if v, ok := r.get("marker"); ok {
			m, ok := v.(*sexpMarker)
			if !ok {
				r.fail("marker", fmt.Errorf("expected marker, got %T (%s)", v, v.SexpString(nil)))
			} else {
				mk := m.marker
				rl.Marker = &mk
			}
		}
		if err := r.done(0); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpRelief{relief: rl}, nil
	})

	// -----------------------------------------------------------------------
	// (part "name" :segments 100 :body (taper ...) :holes (list ...)
	//       :corners (corners ...) :notches (list ...) :overlay (overlay ...)
	//       :relief (relief ...))
	// -----------------------------------------------------------------------
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		r := newArgReader("part", args)
		if len(r.pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(r.pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		if c.names[partName] {
			return zygo.SexpNull, fmt.Errorf("part: %q is already defined", partName)
		}

		cfg := model.Config{Name: partName}
		r.int("segments", &cfg.Segments)
		if v, ok := r.get("body"); ok {
			switch body := v.(type) {
			case *sexpPlate:
				p := body.plate
				cfg.Plate = &p
			case *sexpTaper:
				t := body.taper
				cfg.Taper = &t
			default:
				r.fail("body", fmt.Errorf("expected plate or taper, got %T (%s)", v, v.SexpString(nil)))
			}
		}
		r.holes("holes", &cfg.Holes)
		if v, ok := r.get("corners"); ok {
			if k, ok := v.(*sexpCorners); ok {
				kc := k.corners
				cfg.Corners = &kc
			} else {
				r.fail("corners", fmt.Errorf("expected corners, got %T (%s)", v, v.SexpString(nil)))
			}
		}
		if v, ok := r.get("notches"); ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				r.fail("notches", err)
			}
			for i, item := range items {
				n, ok := item.(*sexpNotch)
				if !ok {
					r.fail("notches", fmt.Errorf("entry %d: expected notch, got %T (%s)", i, item, item.SexpString(nil)))
					break
				}
				cfg.Notches = append(cfg.Notches, n.notch)
			}
		}
		if v, ok := r.get("overlay"); ok {
			if o, ok := v.(*sexpOverlay); ok {
				oc := o.overlay
				cfg.Overlay = &oc
			} else {
				r.fail("overlay", fmt.Errorf("expected overlay, got %T (%s)", v, v.SexpString(nil)))
			}
		}
		if v, ok := r.get("relief"); ok {
			if rl, ok := v.(*sexpRelief); ok {
				rc := rl.relief
				cfg.Relief = &rc
			} else {
				r.fail("relief", fmt.Errorf("expected relief, got %T (%s)", v, v.SexpString(nil)))
			}
		}
		if err := r.done(1); err != nil {
			return zygo.SexpNull, err
		}
		if cfg.Plate == nil && cfg.Taper == nil {
			return zygo.SexpNull, fmt.Errorf("part %q: :body is required", partName)
		}

		c.names[partName] = true
		c.configs = append(c.configs, cfg)
		return &sexpPart{name: partName}, nil
	})
}
