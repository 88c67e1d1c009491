package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mamisoa/lego/internal/engine"
	"github.com/mamisoa/lego/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the runtime state of every service",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, st, err := loadStack(cmd)
	if err != nil {
		return err
	}

	eng, err := engine.Connect(cfg.Project)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Docker unavailable", err.Error(), "is the Docker daemon running?"))
		return err
	}

	statuses, err := eng.Status(cmd.Context(), st)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Status failed", err.Error(), ""))
		return err
	}

	fmt.Println(ui.Bold("Stack " + st.Name))
	running := 0
	for _, s := range statuses {
		var parts []string
		if len(s.Ports) > 0 {
			parts = append(parts, strings.Join(s.Ports, ", "))
		}
		if s.URL != "" {
			parts = append(parts, s.URL)
		}
		ui.StatusLine(s.State, s.Service, strings.Join(parts, "  "))
		if s.Running() {
			running++
		}
	}

	fmt.Println()
	if running == len(st.Services) {
		ui.Success(fmt.Sprintf("%d/%d services running", running, len(st.Services)))
	} else {
		ui.Warn(fmt.Sprintf("%d/%d services running", running, len(st.Services)))
	}
	return nil
}
