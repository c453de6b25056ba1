package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psykal-lang/psykal/internal/cli/config"
	"github.com/psykal-lang/psykal/internal/compiler/pipeline"
)

var checkKernels string

func init() {
	checkCmd.Flags().StringVar(&checkKernels, "kernels", "kernels", "Directory of kernel metadata files")
}

var checkCmd = &cobra.Command{
	Use:   "check [algorithm file]",
	Short: "Validate kernel metadata and invoke binding without writing output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		registry, err := loadKernels(checkKernels)
		if err != nil {
			return reportError(err)
		}

		alg, err := pipeline.LoadAlgorithmFile(args[0])
		if err != nil {
			return reportError(err)
		}

		p := pipeline.New(registry, topologyFromConfig(cfg))
		results := p.CompileAll(alg)

		failed := 0
		for _, res := range results {
			if res.Err != nil {
				failed++
				reportError(res.Err)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d invoke(s) failed", failed, len(results))
		}

		fmt.Printf("OK: %d kernel(s), %d invoke(s)\n", registry.Len(), len(results))
		return nil
	},
}
