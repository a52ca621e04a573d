package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JetF0x/RL-UPKSuite/exporter"
	"github.com/JetF0x/RL-UPKSuite/loader"
	"github.com/JetF0x/RL-UPKSuite/manifest"
	"github.com/JetF0x/RL-UPKSuite/wire"
)

func newExportCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export <container>",
		Short: "Load a container and export its filtered copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath, _ := cmd.Flags().GetString("manifest")
			man, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}

			name := args[0]
			if outPath == "" {
				outPath = name + ".exported.upk"
			}

			cache := loader.NewCache()
			ld := loader.New(cache, man, wire.DefaultCodecs())
			src, err := ld.Load(name)
			if err != nil {
				return err
			}

			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			exp, err := exporter.New(src, f, wire.DefaultCodecs(), ld.Registry)
			if err != nil {
				return err
			}
			if err := exp.Run(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s (%d exports, %d imports)\n",
				name, outPath, len(exp.ExportRows()), len(exp.ImportRows()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <name>.exported.upk)")
	return cmd
}
