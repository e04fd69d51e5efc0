package main

import (
	"context"
	"fmt"
	"time"

	"github.com/chazu/partgen/pkg/csg"
	"github.com/chazu/partgen/pkg/engine"
	"github.com/chazu/partgen/pkg/model"
	"github.com/chazu/partgen/pkg/openscad"
	"github.com/chazu/partgen/pkg/pipeline"
	"github.com/chazu/partgen/pkg/scad"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds the flag values shared by the subcommands.
type cli struct {
	outDir    string
	binary    string
	backend   string
	sceneOnly bool
	strict    bool
	verbose   bool
	timeout   time.Duration
	cells     int

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "partgen",
		Short:         "Generate parametric CSG parts and render them to meshes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initLogger()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "development logging at debug level")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", engine.EvalTimeout, "product script evaluation limit")

	build := &cobra.Command{
		Use:   "build <config.yaml|script.lisp|preset>...",
		Short: "Write the scene description and render a mesh for each product",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runBuild,
	}
	build.Flags().StringVarP(&c.outDir, "out", "o", ".", "output directory")
	build.Flags().StringVar(&c.binary, "openscad", openscad.DefaultBinary, "openscad executable")
	build.Flags().StringVar(&c.backend, "kernel", string(pipeline.BackendOpenSCAD), "mesh backend: openscad, sdfx or manifold")
	build.Flags().BoolVar(&c.sceneOnly, "scad-only", false, "write the scene description without rendering")
	build.Flags().BoolVar(&c.strict, "strict", false, "fail on geometry warnings")
	build.Flags().IntVar(&c.cells, "cells", 0, "sdfx mesh resolution along the longest axis")

	sceneCmd := &cobra.Command{
		Use:   "scad <config.yaml|script.lisp|preset>",
		Short: "Print the scene description of one product",
		Args:  cobra.ExactArgs(1),
		RunE:  c.runScad,
	}

	check := &cobra.Command{
		Use:   "check <config.yaml|script.lisp|preset>...",
		Short: "Validate products without writing anything",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.runCheck,
	}

	presets := &cobra.Command{
		Use:   "presets",
		Short: "List the built-in products",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range model.PresetNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	version := &cobra.Command{
		Use:   "kernel-version",
		Short: "Print the version reported by the openscad executable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openscad.NewRunner(c.binary, c.logger).Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
	version.Flags().StringVar(&c.binary, "openscad", openscad.DefaultBinary, "openscad executable")

	root.AddCommand(build, sceneCmd, check, presets, version)
	return root
}

func (c *cli) initLogger() error {
	var (
		l   *zap.Logger
		err error
	)
	if c.verbose {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	c.logger = l
	return nil
}

func (c *cli) runBuild(cmd *cobra.Command, args []string) error {
	backend, err := pipeline.ParseBackend(c.backend)
	if err != nil {
		return err
	}
	if c.sceneOnly {
		backend = pipeline.BackendNone
	}
	cfgs, err := c.resolveAll(cmd.Context(), args)
	if err != nil {
		return err
	}
	arts, err := pipeline.BuildAll(cmd.Context(), cfgs, pipeline.Options{
		OutDir:    c.outDir,
		Backend:   backend,
		Binary:    c.binary,
		MeshCells: c.cells,
		Strict:    c.strict,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	for _, a := range arts {
		if a.Mesh != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", a.Name, a.Scene, a.Mesh)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.Name, a.Scene)
		}
	}
	return nil
}

func (c *cli) runScad(cmd *cobra.Command, args []string) error {
	cfgs, err := c.resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(cfgs) != 1 {
		return fmt.Errorf("%s defines %d products, scad prints exactly one", args[0], len(cfgs))
	}
	cfg := cfgs[0]
	root, _, err := pipeline.Assemble(cfg)
	if err != nil {
		return err
	}
	return scad.Write(cmd.OutOrStdout(), root, scad.Options{Segments: cfg.WithDefaults().Segments})
}

func (c *cli) runCheck(cmd *cobra.Command, args []string) error {
	cfgs, err := c.resolveAll(cmd.Context(), args)
	if err != nil {
		return err
	}
	failed := 0
	for _, cfg := range cfgs {
		root, res, err := pipeline.Assemble(cfg)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: FAIL\n%v\n", cfg.Name, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d nodes, %s)\n", cfg.Name, csg.Count(root), csg.Fingerprint(root)[:12])
		for _, w := range res.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", w)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d products failed validation", failed, len(cfgs))
	}
	return nil
}

func (c *cli) resolveAll(ctx context.Context, args []string) ([]model.Config, error) {
	var out []model.Config
	for _, a := range args {
		cfgs, err := c.resolve(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, cfgs...)
	}
	return out, nil
}
