package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mamisoa/lego/internal/config"
	"github.com/mamisoa/lego/internal/engine"
	"github.com/mamisoa/lego/internal/stack"
	"github.com/mamisoa/lego/internal/ui"
	"github.com/mamisoa/lego/internal/util"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the descriptor and environment before deploying",
	Long: `Check that the compose descriptor parses, every referenced environment
variable is set, service definitions are consistent, and the credential
files the gmail service mounts are in place.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to load config", err.Error(), "run 'lego init' to set up your environment"))
		return err
	}

	fmt.Println(ui.Bold("Validating " + cfg.Descriptor + "..."))

	passed := 0
	failed := 0

	if _, err := os.Stat(cfg.Descriptor); err != nil {
		ui.ValidationErr("descriptor", cfg.Descriptor+" not found", "run 'lego init' or point --config at your lego.yml")
		fmt.Println()
		return fmt.Errorf("1 validation error")
	}
	ui.ValidationOK("descriptor", cfg.Descriptor)
	passed++

	env, err := stack.Environment(cfg.EnvFile)
	if err != nil {
		ui.ValidationErr("env_file", err.Error(), "")
		failed++
		env = map[string]string{}
	}

	required, err := stack.Requirements(cfg.Descriptor)
	if err != nil {
		ui.ValidationErr("descriptor", err.Error(), "")
		failed++
	}
	if missing := stack.MissingEnv(required, env); len(missing) > 0 {
		for _, name := range missing {
			ui.ValidationErr("env."+name, "not set", "add "+name+" to "+cfg.EnvFile+" or export it")
			failed++
		}
	} else if len(required) > 0 {
		ui.ValidationOK("environment", fmt.Sprintf("%d variables resolved", len(required)))
		passed++
	}

	st, err := stack.Load(cmd.Context(), cfg.Descriptor, stack.Options{Name: cfg.Project, EnvFile: cfg.EnvFile})
	if err != nil {
		ui.ValidationErr("descriptor", err.Error(), "")
		fmt.Println()
		return fmt.Errorf("%d validation errors", failed+1)
	}

	if errs := st.Validate(); len(errs) > 0 {
		for _, ve := range errs {
			ui.ValidationErr(ve.Field, ve.Message, ve.Suggestion)
			failed++
		}
	} else {
		ui.ValidationOK("services", fmt.Sprintf("%d services consistent", len(st.Services)))
		passed++
	}

	passed, failed = checkSecrets(cfg, env, passed, failed)
	passed, failed = checkExternals(cmd, cfg, st, passed, failed)

	fmt.Println()
	if failed == 0 {
		ui.Success(fmt.Sprintf("%d checks passed, 0 errors", passed))
		return nil
	}
	fmt.Printf("%d checks passed, %d errors\n", passed, failed)
	return fmt.Errorf("%d validation errors", failed)
}

// checkSecrets verifies the credential files the gmail service refuses to
// start without. The directory comes from lego.yml or SECRETS_DIR.
func checkSecrets(cfg *config.Config, env map[string]string, passed, failed int) (int, int) {
	dir := cfg.Secrets.Dir
	if dir == "" {
		dir = env["SECRETS_DIR"]
	}
	if dir == "" || len(cfg.Secrets.Files) == 0 {
		return passed, failed
	}
	dir = util.ExpandPath(dir)

	for _, name := range cfg.Secrets.Files {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			ui.ValidationErr("secrets."+name, path+" not found", "the gmail service exits at startup without it")
			failed++
			continue
		}
		ui.ValidationOK("secrets."+name, path)
		passed++
	}
	return passed, failed
}

// checkExternals asks the Docker engine whether the externally managed
// volumes and networks exist. Skipped when no engine is reachable; 'lego up'
// enforces the same requirement anyway.
func checkExternals(cmd *cobra.Command, cfg *config.Config, st *stack.Stack, passed, failed int) (int, int) {
	externals := 0
	for _, v := range st.Volumes {
		if v.External {
			externals++
		}
	}
	for _, n := range st.Networks {
		if n.External {
			externals++
		}
	}
	if externals == 0 {
		return passed, failed
	}

	eng, err := engine.Connect(cfg.Project)
	if err != nil {
		fmt.Printf("  %s\n", ui.Hint("docker unavailable; external resource check skipped"))
		return passed, failed
	}
	missing, err := eng.MissingExternals(cmd.Context(), st)
	if err != nil {
		fmt.Printf("  %s\n", ui.Hint("docker unreachable; external resource check skipped"))
		return passed, failed
	}
	for _, name := range missing {
		ui.ValidationErr("external."+name, "does not exist on the engine", "create it before 'lego up'")
		failed++
	}
	if len(missing) == 0 {
		ui.ValidationOK("externals", fmt.Sprintf("%d resources present", externals))
		passed++
	}
	return passed, failed
}
