// gradtype type-checks the tensor-shape types of a dataflow graph described
// in a YAML model file.
//
// The model file lists the operator modules with their hyperparameters and
// the graph nodes in topological order:
//
//	modules:
//	  conv1: {kind: conv2d, in_channels: 3, out_channels: 8, kernel_size: 3, padding: 1}
//	graph:
//	  - {name: x, op: placeholder, type: [dyn, 3, 32, 32]}
//	  - {name: conv, op: call_module, target: conv1, args: [x]}
//	  - {op: output, args: [conv]}
//
// `gradtype check model.yaml` runs the checker and prints every node with
// its resolved type, or the first type error with its node context.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gomlx/gradtype/checker"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var rootCmd = &cobra.Command{
	Use:   "gradtype",
	Short: "Gradual tensor-shape type checker for dataflow graphs",
}

var checkCmd = &cobra.Command{
	Use:   "check <model.yaml>",
	Short: "Type-check the graph described in a YAML model file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		model, err := loadModel(args[0])
		if err != nil {
			return err
		}
		g, lookup, err := model.build()
		if err != nil {
			return err
		}
		if err := checker.New(lookup).Check(g); err != nil {
			return err
		}
		fmt.Print(g)
		return nil
	},
}

func main() {
	klog.InitFlags(nil)
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.AddCommand(checkCmd)
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		klog.Errorf("%+v", err)
		os.Exit(1)
	}
}
