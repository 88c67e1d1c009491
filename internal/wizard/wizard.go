package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// Run executes the interactive wizard and returns the user's answers.
func Run(detection DetectionResult) (*EnvAnswers, error) {
	answers := &EnvAnswers{
		Timezone:   "Europe/Brussels",
		ScriptsDir: "./scripts",
		SecretsDir: "./secrets",
	}
	if detection.SecretsDir != "" {
		answers.SecretsDir = detection.SecretsDir
	}

	// Build detection summary
	var hints []string
	if detection.DockerAvailable {
		hints = append(hints, "docker found in PATH")
	} else {
		hints = append(hints, "docker NOT found; install it before 'lego up'")
	}
	if detection.Descriptor != "" {
		hints = append(hints, fmt.Sprintf("descriptor found: %s", detection.Descriptor))
	}
	if detection.SecretsDir != "" {
		hints = append(hints, fmt.Sprintf("credentials found in %s", detection.SecretsDir))
	}

	desc := "These values are interpolated into the compose descriptor."
	if len(hints) > 0 {
		desc += "\n\nAuto-detected:\n  " + strings.Join(hints, "\n  ")
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Subdomain").
				Description(desc).
				Placeholder("n8n").
				Validate(notEmpty("subdomain")).
				Value(&answers.Subdomain),
			huh.NewInput().
				Title("Domain name").
				Description("n8n will be reachable at https://<subdomain>.<domain>/").
				Placeholder("example.com").
				Validate(notEmpty("domain name")).
				Value(&answers.Domain),
			huh.NewInput().
				Title("Default mailbox").
				Description("The gmail service reads and drafts mail as this account").
				Placeholder("cabinet@example.com").
				Value(&answers.DefaultEmail),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Timezone").
				Description("Schedules inside n8n run in this timezone").
				Value(&answers.Timezone),
			huh.NewInput().
				Title("Scripts directory").
				Description("Host directory mounted into n8n at /data/py").
				Value(&answers.ScriptsDir),
			huh.NewInput().
				Title("Secrets directory").
				Description("Must hold service.json and credentials.json for the gmail service").
				Value(&answers.SecretsDir),
		),
	)

	if err := form.Run(); err != nil {
		return nil, err
	}

	return answers, nil
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
