package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JetF0x/RL-UPKSuite/manifest"
	"github.com/JetF0x/RL-UPKSuite/upk"
	"github.com/JetF0x/RL-UPKSuite/wire"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <container>",
		Short: "Decode a container and print its table summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath, _ := cmd.Flags().GetString("manifest")
			man, err := manifest.Load(manifestPath)
			if err != nil {
				return err
			}

			name := args[0]
			rc, err := man.Open(name)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return err
			}

			c, err := upk.Decode(data, name, wire.DefaultCodecs())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Container: %s\n", c.Name)
			fmt.Fprintf(out, "Version:   %d/%d (engine %d)\n",
				c.Summary.FileVersion, c.Summary.FileLicensee, c.Summary.EngineVersion)
			fmt.Fprintf(out, "Names:     %d\n", c.Names.Len())
			fmt.Fprintf(out, "Imports:   %d\n", len(c.Imports))
			fmt.Fprintf(out, "Exports:   %d\n", len(c.Exports))

			for i := range c.Exports {
				full, err := c.FullName(upk.FromExport(i))
				if err != nil {
					return err
				}
				row := &c.Exports[i]
				fmt.Fprintf(out, "  export %4d  %-40s %8d bytes @ %d\n",
					i, full, row.SerialSize, row.SerialOffset)
			}
			return nil
		},
	}
}
