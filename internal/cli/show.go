package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newShowCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored dashboard layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := newCommandContext(cmd, configPath)
			if err != nil {
				return err
			}
			eng, cleanup, err := cc.attachEngine()
			if err != nil {
				return err
			}
			defer cleanup()

			items := eng.Items()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(items)
			}
			fmt.Printf("dashboard %s: %d items, %d slots\n", cc.cfg.Dashboard, len(items), eng.SlotCount())
			for _, it := range items {
				fmt.Printf("  %-24s %dx%d at (%d,%d)\n", it.ID, it.Width, it.Height, it.StartX, it.StartY)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	return cmd
}
