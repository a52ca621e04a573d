package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JetF0x/RL-UPKSuite/loader"
	"github.com/JetF0x/RL-UPKSuite/manifest"
	"github.com/JetF0x/RL-UPKSuite/wire"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <container>",
		Short: "Load a container and everything it references",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath, _ := cmd.Flags().GetString("manifest")
			man, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}

			cache := loader.NewCache()
			ld := loader.New(cache, man, wire.DefaultCodecs())
			if _, err := ld.Load(args[0]); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range cache.Names() {
				digest, _ := cache.Digest(name)
				fmt.Fprintf(out, "loaded %s (blake3 %x)\n", name, digest[:8])
			}
			return nil
		},
	}
}
