package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mamisoa/lego/internal/ui"
	"github.com/mamisoa/lego/internal/wizard"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up the deployment environment interactively",
	Long: `Scan the working directory for an existing descriptor and credentials, then
ask for the environment values the stack needs and write them to .env. A
default descriptor is scaffolded when none exists.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	envPath := ".env"

	// Check if an env file already exists
	if _, err := os.Stat(envPath); err == nil {
		fmt.Printf("%s already exists.\n", envPath)
		fmt.Print("Overwrite? [y/N] ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Detect environment
	fmt.Println(ui.Bold("Scanning environment..."))
	detection := wizard.Detect(nil)

	// Run wizard
	answers, err := wizard.Run(detection)
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	// Generate env file
	content, err := wizard.GenerateEnv(*answers)
	if err != nil {
		return fmt.Errorf("generating env file: %w", err)
	}

	// Contains credentials-adjacent values, keep it private
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing env file: %w", err)
	}
	ui.Success(fmt.Sprintf("Created %s", envPath))

	if detection.Descriptor == "" {
		descriptorPath := filepath.Join("deploy", "docker-compose.yml")
		if err := os.MkdirAll(filepath.Dir(descriptorPath), 0755); err != nil {
			return fmt.Errorf("creating deploy dir: %w", err)
		}
		if err := os.WriteFile(descriptorPath, []byte(wizard.DefaultDescriptor), 0644); err != nil {
			return fmt.Errorf("writing descriptor: %w", err)
		}
		ui.Success(fmt.Sprintf("Created %s", descriptorPath))
	}

	if !detection.DockerAvailable {
		ui.Warn("docker was not found in PATH; install it before deploying")
	}

	fmt.Println()
	fmt.Printf("Next step: %s\n", ui.Bold("lego validate"))
	fmt.Printf("           %s\n", ui.Hint("then 'lego up' to deploy the stack"))

	return nil
}
