package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mamisoa/lego/internal/config"
	"github.com/mamisoa/lego/internal/engine"
	"github.com/mamisoa/lego/internal/stack"
	"github.com/mamisoa/lego/internal/ui"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Deploy the stack to the local Docker engine",
	Long: `Create the network and volumes, build or pull every image, and start the
containers in dependency order. Re-running against an unchanged stack is a
no-op; changed services are replaced.`,
	RunE: runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, st, err := loadStack(cmd)
	if err != nil {
		return err
	}

	if errs := st.Validate(); len(errs) > 0 {
		for _, ve := range errs {
			ui.ValidationErr(ve.Field, ve.Message, ve.Suggestion)
		}
		return fmt.Errorf("%d validation errors", len(errs))
	}

	eng, err := engine.Connect(cfg.Project)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Docker unavailable", err.Error(), "is the Docker daemon running?"))
		return err
	}
	eng.Progress = ui.Step

	fmt.Println(ui.Bold("Deploying " + st.Name + "..."))

	if err := eng.Up(cmd.Context(), st); err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Deploy failed", err.Error(), upHint(err)))
		return err
	}

	ui.Success(fmt.Sprintf("Stack %s is up (%d services)", st.Name, len(st.Services)))
	for _, name := range st.ServiceNames() {
		if url := st.Services[name].PublicURL(); url != "" {
			fmt.Printf("  %s %s\n", ui.Bold(name), ui.Hint(url))
		}
	}
	return nil
}

// loadStack resolves config, checks required environment variables, and
// loads the descriptor. Shared by up, down, status, and config.
func loadStack(cmd *cobra.Command) (*config.Config, *stack.Stack, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "run 'lego init' to set up your environment"))
		return nil, nil, err
	}

	env, err := stack.Environment(cfg.EnvFile)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to read "+cfg.EnvFile, err.Error(), ""))
		return nil, nil, err
	}
	required, err := stack.Requirements(cfg.Descriptor)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to read descriptor", err.Error(), "run 'lego init' to create one"))
		return nil, nil, err
	}
	if missing := stack.MissingEnv(required, env); len(missing) > 0 {
		for _, name := range missing {
			ui.ValidationErr("env."+name, "not set", "add "+name+" to "+cfg.EnvFile)
		}
		return nil, nil, fmt.Errorf("%d required variables unset", len(missing))
	}

	st, err := stack.Load(cmd.Context(), cfg.Descriptor, stack.Options{Name: cfg.Project, EnvFile: cfg.EnvFile})
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load descriptor", err.Error(), "run 'lego validate' for details"))
		return nil, nil, err
	}
	return cfg, st, nil
}

func upHint(err error) string {
	var re *engine.ResourceError
	switch {
	case errors.Is(err, engine.ErrExternalVolumeMissing):
		if errors.As(err, &re) {
			return fmt.Sprintf("create it first: docker volume create %s", re.Name)
		}
		return "create the external volume first"
	case errors.Is(err, engine.ErrExternalNetworkMissing):
		if errors.As(err, &re) {
			return fmt.Sprintf("create it first: docker network create %s", re.Name)
		}
		return "create the external network first"
	}
	return ""
}
