package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamisoa/lego/internal/engine"
	"github.com/mamisoa/lego/internal/ui"
)

var downRemoveVolumes bool

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove the stack's containers",
	Long: `Stop every container belonging to the stack, remove them together with the
managed network, and optionally the managed volumes. External volumes are
always left in place.`,
	RunE: runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)
	downCmd.Flags().BoolVarP(&downRemoveVolumes, "volumes", "v", false, "also remove managed volumes")
}

func runDown(cmd *cobra.Command, args []string) error {
	cfg, st, err := loadStack(cmd)
	if err != nil {
		return err
	}

	eng, err := engine.Connect(cfg.Project)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Docker unavailable", err.Error(), "is the Docker daemon running?"))
		return err
	}
	eng.Progress = ui.Step

	fmt.Println(ui.Bold("Tearing down " + st.Name + "..."))

	if err := eng.Down(cmd.Context(), st, engine.DownOptions{RemoveVolumes: downRemoveVolumes}); err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Teardown failed", err.Error(), ""))
		return err
	}

	ui.Success(fmt.Sprintf("Stack %s is down", st.Name))
	if !downRemoveVolumes {
		fmt.Printf("  %s\n", ui.Hint("volumes kept; use --volumes to remove them"))
	}
	return nil
}
