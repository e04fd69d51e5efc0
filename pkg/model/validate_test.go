package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paramErrors flattens a joined validation error.
func paramErrors(err error) []*ParamError {
	var out []*ParamError
	var walk func(error)
	walk = func(err error) {
		if j, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range j.Unwrap() {
				walk(e)
			}
			return
		}
		var pe *ParamError
		if errors.As(err, &pe) {
			out = append(out, pe)
		}
	}
	walk(err)
	return out
}

func fields(err error) []string {
	var out []string
	for _, pe := range paramErrors(err) {
		out = append(out, pe.Field)
	}
	return out
}

func wedge() Config {
	return Config{
		Name:  "w",
		Taper: &Taper{Height: 100, Width: 40, TopThickness: 10, BottomThickness: 2},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		fields []string
	}{
		{
			name:   "valid wedge",
			mutate: func(*Config) {},
		},
		{
			name:   "missing name",
			mutate: func(c *Config) { c.Name = "" },
			fields: []string{"name"},
		},
		{
			name:   "name with slash",
			mutate: func(c *Config) { c.Name = "a/b" },
			fields: []string{"name"},
		},
		{
			name:   "no body",
			mutate: func(c *Config) { c.Taper = nil },
			fields: []string{"body"},
		},
		{
			name:   "two bodies",
			mutate: func(c *Config) { c.Plate = &Plate{Width: 1, Height: 1, Thickness: 1} },
			fields: []string{"body"},
		},
		{
			name:   "zero height",
			mutate: func(c *Config) { c.Taper.Height = 0 },
			fields: []string{"taper.height", "taper"},
		},
		{
			name:   "no thickness",
			mutate: func(c *Config) { c.Taper.TopThickness, c.Taper.BottomThickness = 0, 0 },
			fields: []string{"taper"},
		},
		{
			name: "hole with both positions",
			mutate: func(c *Config) {
				c.Holes = []Hole{{FromTop: ptr(10), FromBottom: ptr(10), Diameter: 2}}
			},
			fields: []string{"holes[0]"},
		},
		{
			name:   "hole outside span",
			mutate: func(c *Config) { c.Holes = []Hole{{FromBottom: ptr(0.5), Diameter: 2}} },
			fields: []string{"holes[0]"},
		},
		{
			name:   "hole off the width",
			mutate: func(c *Config) { c.Holes = []Hole{{FromTop: ptr(50), Diameter: 2, Z: ptr(39.5)}} },
			fields: []string{"holes[0].z"},
		},
		{
			name:   "negative diameter",
			mutate: func(c *Config) { c.Holes = []Hole{{FromTop: ptr(50), Diameter: -1}} },
			fields: []string{"holes[0].diameter"},
		},
		{
			name:   "corners without an end",
			mutate: func(c *Config) { c.Corners = &Corners{Radius: 5} },
			fields: []string{"corners"},
		},
		{
			name:   "corners too large",
			mutate: func(c *Config) { c.Corners = &Corners{Radius: 60, Top: true, Bottom: true} },
			fields: []string{"corners.radius"},
		},
		{
			name:   "bottom corner too large",
			mutate: func(c *Config) { c.Corners = &Corners{Radius: 60, Bottom: true} },
			fields: []string{"corners.radius"},
		},
		{
			name:   "top corner may exceed half the height",
			mutate: func(c *Config) { c.Corners = &Corners{Radius: 60, Top: true} },
		},
		{
			name:   "top corner taller than body",
			mutate: func(c *Config) { c.Corners = &Corners{Radius: 120, Top: true} },
			fields: []string{"corners.radius"},
		},
		{
			name:   "zero bottom thickness",
			mutate: func(c *Config) { c.Taper.BottomThickness = 0 },
		},
		{
			name:   "relief offsets overlap",
			mutate: func(c *Config) { c.Relief = &Relief{TopOffset: 60, BottomOffset: 40, Depth: 1} },
			fields: []string{"relief.bottom_offset"},
		},
		{
			name:   "cut relief breaks through",
			mutate: func(c *Config) { c.Relief = &Relief{TopOffset: 10, BottomOffset: 10, Depth: 3} },
			fields: []string{"relief.depth"},
		},
		{
			name: "raised relief may be deep",
			mutate: func(c *Config) {
				c.Relief = &Relief{TopOffset: 10, BottomOffset: 10, Depth: 3, Raised: true}
			},
		},
		{
			name:   "overlay past the end",
			mutate: func(c *Config) { c.Overlay = &Overlay{Offset: 80, Span: 30, TopThickness: 1} },
			fields: []string{"overlay.span"},
		},
		{
			name: "overlay wider than body",
			mutate: func(c *Config) {
				c.Overlay = &Overlay{Offset: 10, Span: 30, TopThickness: 1, Width: 50}
			},
			fields: []string{"overlay.width"},
		},
		{
			name: "overlay hole",
			mutate: func(c *Config) {
				c.Overlay = &Overlay{Offset: 10, Span: 30, TopThickness: 1,
					Holes: []Hole{{FromTop: ptr(40), Diameter: 1}}}
			},
			fields: []string{"overlay.holes[0]"},
		},
		{
			name:   "notch wider than body",
			mutate: func(c *Config) { c.Notches = []Notch{{Width: 20, Height: 1, Depth: 1}} },
			fields: []string{"notches[0].width"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := wedge()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ElementsMatch(t, tt.fields, fields(err))
		})
	}
}

func TestAssembleReportsOversizedBottomCorner(t *testing.T) {
	cfg := wedge()
	cfg.Corners = &Corners{Radius: 60, Bottom: true}

	_, err := Assemble(cfg)
	require.Error(t, err)
	var pe *ParamError
	require.True(t, errors.As(err, &pe), "got %v", err)
	assert.Equal(t, "corners.radius", pe.Field)
}

func TestValidatePlate(t *testing.T) {
	plate := func() Config {
		return Config{Name: "p", Plate: &Plate{Width: 40, Height: 20, Thickness: 2, CornerRadius: 5}}
	}

	require.NoError(t, Validate(plate()))

	cfg := plate()
	cfg.Plate.CornerRadius = 20
	assert.ElementsMatch(t, []string{"plate.corner_radius", "plate.corner_radius"}, fields(Validate(cfg)))

	cfg = plate()
	cfg.Holes = []Hole{{FromTop: ptr(1), Diameter: 1}}
	cfg.Relief = &Relief{Depth: 1}
	assert.ElementsMatch(t, []string{"holes", "relief"}, fields(Validate(cfg)))
}

func TestParamErrorFromTags(t *testing.T) {
	cfg := wedge()
	cfg.Taper.Width = -3
	pes := paramErrors(Validate(cfg))
	require.Len(t, pes, 1)
	assert.Equal(t, "taper.width", pes[0].Field)
	assert.Equal(t, "gt=0", pes[0].Constraint)
	assert.Equal(t, -3.0, pes[0].Value)
	assert.Contains(t, pes[0].Error(), "taper.width")
}
