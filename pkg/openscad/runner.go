// Package openscad drives the external OpenSCAD kernel that turns a scene
// description into a triangulated mesh.
package openscad

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultBinary is the kernel executable looked up on PATH.
const DefaultBinary = "openscad"

// ErrNoOutput is reported when the kernel exits cleanly without writing a
// non-empty mesh file.
var ErrNoOutput = errors.New("openscad: kernel produced no output file")

// KernelError is a failed kernel run with its captured streams. Rendering
// failures are deterministic for a given scene, so they are not retried.
type KernelError struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *KernelError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Stdout)
	}
	if e.Err == ErrNoOutput {
		if msg == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%v: %s", e.Err, msg)
	}
	if msg == "" {
		return fmt.Sprintf("openscad: exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("openscad: exit status %d: %s", e.ExitCode, msg)
}

func (e *KernelError) Unwrap() error { return e.Err }

// Result describes a successful render.
type Result struct {
	Mesh     string
	Bytes    int64
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner invokes the kernel as `<Binary> -o <mesh> <scene>`.
type Runner struct {
	Binary string
	Logger *zap.Logger
}

// NewRunner returns a Runner for binary, falling back to DefaultBinary.
func NewRunner(binary string, logger *zap.Logger) *Runner {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Binary: binary, Logger: logger}
}

func (r *Runner) binary() string {
	if r.Binary == "" {
		return DefaultBinary
	}
	return r.Binary
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Render runs the kernel synchronously on scene and writes mesh. Both
// output streams are captured and returned, never streamed. A stale mesh
// at the output path is removed first so a silent failure cannot pass for
// success.
func (r *Runner) Render(ctx context.Context, scene, mesh string) (*Result, error) {
	log := r.logger().With(zap.String("scene", scene), zap.String("mesh", mesh))

	if _, err := os.Stat(scene); err != nil {
		return nil, fmt.Errorf("openscad: scene: %w", err)
	}
	if err := os.Remove(mesh); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("openscad: removing stale mesh: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary(), "-o", mesh, scene)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running kernel", zap.String("binary", r.binary()))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("openscad: render %s: %w", scene, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			kerr := &KernelError{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Err:      err,
			}
			log.Warn("kernel failed", zap.Int("exit_code", kerr.ExitCode), zap.Duration("elapsed", elapsed))
			return nil, kerr
		}
		return nil, fmt.Errorf("openscad: starting %s: %w", r.binary(), err)
	}

	info, err := os.Stat(mesh)
	if err != nil || info.Size() == 0 {
		log.Warn("kernel wrote no mesh", zap.Duration("elapsed", elapsed))
		return nil, &KernelError{Stdout: stdout.String(), Stderr: stderr.String(), Err: ErrNoOutput}
	}

	log.Info("rendered mesh", zap.Int64("bytes", info.Size()), zap.Duration("elapsed", elapsed))
	return &Result{
		Mesh:     mesh,
		Bytes:    info.Size(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}, nil
}

// Version returns the first line the kernel prints for --version. OpenSCAD
// writes it to stderr.
func (r *Runner) Version(ctx context.Context) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary(), "--version")
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("openscad: %s --version: %w", r.binary(), err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(out.String()), "\n")
	return line, nil
}
