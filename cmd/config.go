package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mamisoa/lego/internal/stack"
	"github.com/mamisoa/lego/internal/ui"
)

var configServicesOnly bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved descriptor",
	Long: `Load the descriptor, interpolate every environment variable, and print the
result. Useful for checking what 'lego up' would actually deploy.`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configServicesOnly, "services", false, "print service names only")
}

func runConfig(cmd *cobra.Command, args []string) error {
	_, st, err := loadStack(cmd)
	if err != nil {
		return err
	}

	if configServicesOnly {
		for _, name := range st.ServiceNames() {
			fmt.Println(name)
		}
		return nil
	}

	out, err := yaml.Marshal(resolvedView(st))
	if err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Failed to render descriptor", err.Error(), ""))
		return err
	}
	fmt.Printf("name: %s\n%s", st.Name, out)
	return nil
}

// view types mirror the compose shape so the output reads like the
// descriptor it came from, with every variable substituted.
type stackView struct {
	Services map[string]serviceView  `yaml:"services"`
	Volumes  map[string]resourceView `yaml:"volumes,omitempty"`
	Networks map[string]resourceView `yaml:"networks,omitempty"`
}

type serviceView struct {
	Image       string            `yaml:"image,omitempty"`
	Build       *buildView        `yaml:"build,omitempty"`
	Restart     string            `yaml:"restart,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Networks    []string          `yaml:"networks,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
}

type buildView struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile,omitempty"`
}

type resourceView struct {
	Driver   string `yaml:"driver,omitempty"`
	External bool   `yaml:"external,omitempty"`
}

func resolvedView(st *stack.Stack) stackView {
	view := stackView{Services: map[string]serviceView{}}

	for name, svc := range st.Services {
		sv := serviceView{
			Image:       svc.Image,
			Restart:     svc.Restart,
			Environment: svc.Env,
			Networks:    svc.Networks,
			DependsOn:   svc.DependsOn,
		}
		if svc.Build != nil {
			sv.Build = &buildView{Context: svc.Build.Context, Dockerfile: svc.Build.Dockerfile}
		}
		for _, p := range svc.Ports {
			sv.Ports = append(sv.Ports, p.String())
		}
		for _, m := range svc.Mounts {
			sv.Volumes = append(sv.Volumes, m.String())
		}
		view.Services[name] = sv
	}

	if len(st.Volumes) > 0 {
		view.Volumes = map[string]resourceView{}
		for name, v := range st.Volumes {
			view.Volumes[name] = resourceView{Driver: v.Driver, External: v.External}
		}
	}
	if len(st.Networks) > 0 {
		view.Networks = map[string]resourceView{}
		for name, n := range st.Networks {
			view.Networks[name] = resourceView{Driver: n.Driver, External: n.External}
		}
	}
	return view
}
