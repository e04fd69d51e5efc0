// Package pipeline runs a product from configuration to files: validate,
// assemble, check the tree, write the scene description and render a mesh
// with the selected backend.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/chazu/partgen/pkg/csg"
	"github.com/chazu/partgen/pkg/kernel"
	"github.com/chazu/partgen/pkg/kernel/manifold"
	"github.com/chazu/partgen/pkg/kernel/sdfx"
	"github.com/chazu/partgen/pkg/model"
	"github.com/chazu/partgen/pkg/openscad"
	"github.com/chazu/partgen/pkg/scad"
	"github.com/chazu/partgen/pkg/tessellate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Backend selects how the mesh is produced.
type Backend string

const (
	// BackendOpenSCAD renders the scene with the external openscad binary.
	BackendOpenSCAD Backend = "openscad"
	// BackendSdfx meshes the tree in-process with sdfx.
	BackendSdfx Backend = "sdfx"
	// BackendManifold meshes the tree in-process with the Manifold library.
	// It needs a build with the manifold tag.
	BackendManifold Backend = "manifold"
	// BackendNone writes the scene description only.
	BackendNone Backend = "none"
)

// ParseBackend maps a flag value to a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(s)); b {
	case BackendOpenSCAD, BackendSdfx, BackendManifold, BackendNone:
		return b, nil
	case "":
		return BackendOpenSCAD, nil
	}
	return "", fmt.Errorf("pipeline: unknown backend %q (want openscad, sdfx, manifold or none)", s)
}

// renderMu serializes mesh rendering.
var renderMu sync.Mutex

// ErrInvalidTree is wrapped by Build when the assembled tree fails
// structural validation.
var ErrInvalidTree = errors.New("pipeline: invalid tree")

// Options configures Build.
type Options struct {
	OutDir    string // defaults to the working directory
	Backend   Backend
	Binary    string // openscad executable; defaults to openscad.DefaultBinary
	MeshCells int    // sdfx resolution; defaults to sdfx.DefaultMeshCells
	// Strict turns tree validation warnings into a build failure.
	Strict bool
	Logger *zap.Logger
}

// Artifacts describes what Build produced.
type Artifacts struct {
	Name        string
	Scene       string // path of the scene description
	Mesh        string // path of the mesh, empty for BackendNone
	Nodes       int
	Fingerprint string
	Warnings    []csg.ValidationError
	Render      *openscad.Result // set for BackendOpenSCAD
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Assemble validates cfg, builds its tree and checks the tree. Warnings are
// returned, not treated as failures.
func Assemble(cfg model.Config) (*csg.Node, csg.ValidationResult, error) {
	root, err := model.Assemble(cfg)
	if err != nil {
		return nil, csg.ValidationResult{}, err
	}
	res := csg.Validate(root)
	if !res.OK() {
		errs := make([]error, len(res.Errors))
		for i, e := range res.Errors {
			errs[i] = e
		}
		return nil, res, fmt.Errorf("%w: %s: %w", ErrInvalidTree, cfg.Name, errors.Join(errs...))
	}
	return root, res, nil
}

// Build runs the full pipeline for one product and writes <name>.scad and,
// unless the backend is BackendNone, <name>.stl into opts.OutDir.
func Build(ctx context.Context, cfg model.Config, opts Options) (*Artifacts, error) {
	log := opts.logger().With(zap.String("product", cfg.Name))

	root, res, err := Assemble(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		log.Warn("degenerate geometry", zap.String("path", w.Path), zap.String("message", w.Message))
	}
	if opts.Strict && len(res.Warnings) > 0 {
		return nil, fmt.Errorf("pipeline: %s: %d validation warnings in strict mode", cfg.Name, len(res.Warnings))
	}

	dir := opts.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: output directory: %w", err)
	}

	art := &Artifacts{
		Name:        cfg.Name,
		Scene:       filepath.Join(dir, cfg.Name+".scad"),
		Nodes:       csg.Count(root),
		Fingerprint: csg.Fingerprint(root),
		Warnings:    res.Warnings,
	}
	segments := cfg.WithDefaults().Segments
	if err := scad.WriteFile(art.Scene, root, scad.Options{Segments: segments}); err != nil {
		return nil, err
	}
	log.Info("wrote scene", zap.String("path", art.Scene), zap.Int("nodes", art.Nodes))

	backend := opts.Backend
	if backend == "" {
		backend = BackendOpenSCAD
	}
	mesh := filepath.Join(dir, cfg.Name+".stl")

	if backend == BackendNone {
		return art, nil
	}

	// One kernel at a time, across every concurrent Build.
	renderMu.Lock()
	defer renderMu.Unlock()

	switch backend {

	case BackendOpenSCAD:
		runner := openscad.NewRunner(opts.Binary, log)
		result, err := runner.Render(ctx, art.Scene, mesh)
		if err != nil {
			return art, err
		}
		art.Mesh, art.Render = result.Mesh, result

	case BackendSdfx, BackendManifold:
		if err := ctx.Err(); err != nil {
			return art, err
		}
		k, err := inProcessKernel(backend, opts.MeshCells)
		if err != nil {
			return art, err
		}
		m, err := tessellate.Tessellate(root, k, cfg.Name)
		if err != nil {
			return art, err
		}
		if m.IsEmpty() {
			return art, fmt.Errorf("pipeline: %s: %s produced an empty mesh", cfg.Name, backend)
		}
		if err := m.WriteSTL(mesh); err != nil {
			return art, err
		}
		art.Mesh = mesh
		log.Info("meshed in process", zap.String("kernel", string(backend)), zap.Int("triangles", m.TriangleCount()))

	default:
		return art, fmt.Errorf("pipeline: unknown backend %q", backend)
	}
	return art, nil
}

func inProcessKernel(b Backend, cells int) (kernel.Kernel, error) {
	if b == BackendManifold {
		return manifold.New()
	}
	return sdfx.NewWithCells(cells), nil
}

// BuildAll builds several products. Validation, assembly and scene export
// run concurrently; mesh rendering is serialized so at most one kernel
// process runs at a time. Names must be unique because artifacts share
// opts.OutDir. Results keep the input order; the first failure cancels the
// remaining builds.
func BuildAll(ctx context.Context, cfgs []model.Config, opts Options) ([]*Artifacts, error) {
	seen := make(map[string]bool, len(cfgs))
	for _, c := range cfgs {
		if seen[c.Name] {
			return nil, fmt.Errorf("pipeline: duplicate product name %q", c.Name)
		}
		seen[c.Name] = true
	}

	out := make([]*Artifacts, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			art, err := Build(gctx, cfg, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Name, err)
			}
			out[i] = art
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
