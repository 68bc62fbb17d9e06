package config

import (
	"os"
	"path/filepath"

	tunnelconfig "github.com/kfsoftware/ssh-ip-tunnel/pkg/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type configCmd struct {
	configPath string
	defaults   bool
	output     string
	force      bool
}

func (c *configCmd) validate() error {
	if c.defaults && c.configPath != "" {
		return errors.New("--defaults cannot be combined with --config")
	}
	return nil
}

func (c *configCmd) load() (tunnelconfig.Config, error) {
	if c.defaults {
		return tunnelconfig.Default(), nil
	}
	return tunnelconfig.Load(c.configPath)
}

func (c *configCmd) run(cmd *cobra.Command) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	data, err := tunnelconfig.Encode(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	if c.output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	target := c.output
	if target == "-" {
		if target, err = tunnelconfig.DefaultPath(); err != nil {
			return errors.Wrap(err, "failed to resolve default config path")
		}
	}
	if _, err := os.Stat(target); err == nil && !c.force {
		return errors.Errorf("%s already exists, use --force to overwrite", target)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(target))
	}
	if err := os.WriteFile(target, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", target)
	}
	log.Info().Msgf("Wrote config to %s", target)
	return nil
}

func NewConfigCmd() *cobra.Command {
	c := &configCmd{}
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print or write the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.configPath, _ = cmd.Flags().GetString("config")
			if err := c.validate(); err != nil {
				return err
			}
			return c.run(cmd)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&c.defaults, "defaults", false, "Use built-in defaults instead of loading a config file")
	flags.StringVarP(&c.output, "output", "o", "", "Write to this path instead of stdout ('-' for the default location)")
	flags.BoolVar(&c.force, "force", false, "Overwrite an existing file")
	return cmd
}
