package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/partgen/pkg/engine"
	"github.com/chazu/partgen/pkg/model"
)

// resolve turns a command argument into product configurations. YAML files
// hold one product, scripts may define several, anything without a known
// extension is looked up as a preset name.
func (c *cli) resolve(ctx context.Context, arg string) ([]model.Config, error) {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".yaml", ".yml":
		cfg, err := model.LoadConfig(arg)
		if err != nil {
			return nil, err
		}
		return []model.Config{cfg}, nil

	case ".lisp", ".zy":
		eng := engine.NewEngine(engine.WithTimeout(c.timeout), engine.WithLogger(c.logger))
		cfgs, evalErrs, err := eng.EvaluateFile(ctx, arg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", arg, err)
		}
		if len(evalErrs) > 0 {
			errs := make([]error, len(evalErrs))
			for i, e := range evalErrs {
				errs[i] = e
			}
			return nil, fmt.Errorf("%s: %w", arg, errors.Join(errs...))
		}
		if len(cfgs) == 0 {
			return nil, fmt.Errorf("%s: script defines no parts", arg)
		}
		return cfgs, nil
	}

	cfg, ok := model.Preset(arg)
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", arg, strings.Join(model.PresetNames(), ", "))
	}
	return []model.Config{cfg}, nil
}
