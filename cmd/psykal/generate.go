package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/psykal-lang/psykal/internal/cli/config"
	"github.com/psykal-lang/psykal/internal/compiler/errors"
	"github.com/psykal-lang/psykal/internal/compiler/metadata"
	"github.com/psykal-lang/psykal/internal/compiler/pipeline"
	"github.com/psykal-lang/psykal/internal/mesh"
)

var (
	generateKernels string
	generateOut     string
	generateJSON    bool
	generateVerbose bool
)

func init() {
	generateCmd.Flags().StringVar(&generateKernels, "kernels", "kernels", "Directory of kernel metadata files")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Output directory (default from psykal.yml)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Output errors in JSON format")
	generateCmd.Flags().BoolVar(&generateVerbose, "verbose", false, "Show per-stage pipeline output")
}

var generateCmd = &cobra.Command{
	Use:   "generate [algorithm file]",
	Short: "Synthesize the PSy layer for an algorithm file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := time.Now()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		outDir := generateOut
		if outDir == "" {
			outDir = cfg.Output.Dir
		}

		registry, err := loadKernels(generateKernels)
		if err != nil {
			return reportError(err)
		}

		alg, err := pipeline.LoadAlgorithmFile(args[0])
		if err != nil {
			return reportError(err)
		}

		opts := []pipeline.Option{}
		if generateVerbose {
			logger, lerr := zap.NewDevelopment()
			if lerr != nil {
				return lerr
			}
			defer logger.Sync()
			opts = append(opts, pipeline.WithLogger(logger))
		}

		p := pipeline.New(registry, topologyFromConfig(cfg), opts...)
		results := p.CompileAll(alg)

		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				if rerr := reportError(res.Err); rerr != nil {
					fmt.Fprintln(os.Stderr, rerr)
				}
				continue
			}
			path := filepath.Join(outDir, res.Unit+".psy")
			if werr := os.WriteFile(path, []byte(res.Schedule.Render()), 0o644); werr != nil {
				return fmt.Errorf("failed to write %s: %w", path, werr)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d invoke(s) failed", failed, len(results))
		}
		fmt.Printf("Synthesized %d invoke(s) in %s\n", len(results), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

// loadKernels parses every YAML file in the kernel directory into a registry
func loadKernels(dir string) (*metadata.Registry, error) {
	var paths []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matched, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matched...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no kernel metadata files found in %s", dir)
	}
	sort.Strings(paths)

	registry := metadata.NewRegistry()
	for _, path := range paths {
		desc, err := metadata.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if rerr := registry.Register(desc); rerr != nil {
			return nil, rerr
		}
	}
	return registry, nil
}

// topologyFromConfig builds a standalone topology: the fixed continuity
// table plus the mesh facts declared in psykal.yml.
func topologyFromConfig(cfg *config.Config) mesh.Topology {
	disjoint := make(map[string]bool, len(cfg.Mesh.DisjointSpaces))
	for _, space := range cfg.Mesh.DisjointSpaces {
		disjoint[space] = true
	}
	return &mesh.StaticTopology{
		Spaces:      metadata.StandardSpaces(),
		Disjoint:    disjoint,
		CleanDepths: cfg.Mesh.CleanDepths,
		MaxDepth:    cfg.Mesh.MaxHaloDepth,
	}
}

// reportError prints a generator error in the requested format and returns a
// terse error for the exit path.
func reportError(err error) error {
	genErr, ok := err.(*errors.GeneratorError)
	if !ok {
		return err
	}
	if generateJSON {
		if js, jerr := genErr.ToJSON(); jerr == nil {
			fmt.Fprintln(os.Stderr, js)
			return fmt.Errorf("synthesis failed [%s]", genErr.Code)
		}
	}
	fmt.Fprintln(os.Stderr, genErr.Format())
	return fmt.Errorf("synthesis failed [%s]", genErr.Code)
}
