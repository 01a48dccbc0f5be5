package cli

import (
	"fmt"

	"github.com/cardflow/paygate/gateway"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := gateway.LoadConfig(configPath)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
