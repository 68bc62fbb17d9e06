package tunnel

import (
	"context"
	"strings"

	"github.com/kfsoftware/ssh-ip-tunnel/pkg/config"
	"github.com/kfsoftware/ssh-ip-tunnel/pkg/process"
	"github.com/kfsoftware/ssh-ip-tunnel/pkg/tunnel"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const tunnelDesc = `
ssh-ip-tunnel opens a background SSH port forward to a remote device, checks
that the forward works and that the device has an ARM CPU, and then installs
a local public key into the device's authorized keys with ssh-copy-id.

The forward keeps running after the command exits.
`

type tunnelCmd struct {
	host               string
	user               string
	key                string
	port               uint16
	portSet            bool
	noKeyTransfer      bool
	skipArchValidation bool
	configPath         string
}

func (c *tunnelCmd) validate() error {
	if strings.TrimSpace(c.host) == "" {
		return errors.New("host is required")
	}
	if strings.TrimSpace(c.user) == "" {
		return errors.New("user is required")
	}
	return nil
}

// merge applies command line overrides on top of the loaded config.
func (c *tunnelCmd) merge(cfg config.Config) (config.Config, tunnel.Request) {
	req := tunnel.Request{
		Host:            c.host,
		User:            c.user,
		KeyPath:         cfg.DefaultKeyPath,
		Port:            cfg.DefaultPort,
		SkipKeyTransfer: c.noKeyTransfer,
	}
	if c.key != "" {
		req.KeyPath = c.key
	}
	if c.portSet {
		req.Port = c.port
	}
	if c.skipArchValidation {
		cfg.SkipArchValidation = true
	}
	return cfg, req
}

// validateRequest checks what only the merged request can tell: the key path
// may come from the config file, --key, or not matter at all.
func validateRequest(req tunnel.Request) error {
	if !req.SkipKeyTransfer && strings.TrimSpace(req.KeyPath) == "" {
		return errors.New("key path is required unless --no-key-transfer is set")
	}
	return nil
}

func (c *tunnelCmd) run(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	cfg, req := c.merge(cfg)
	if err := validateRequest(req); err != nil {
		return err
	}
	manager := tunnel.NewManager(cfg, process.NewLocalExecutor())
	return manager.Run(ctx, req)
}

func NewTunnelCmd() *cobra.Command {
	c := &tunnelCmd{}
	cmd := &cobra.Command{
		Use:   "ssh-ip-tunnel",
		Short: "tunnel SSH to an ARM device and deploy a public key",
		Long:  tunnelDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.validate(); err != nil {
				return err
			}
			c.portSet = cmd.Flags().Changed("port")
			c.configPath, _ = cmd.Flags().GetString("config")
			cmd.SilenceUsage = true
			return c.run(cmd.Context())
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&c.host, "host", "H", "", "IP address or hostname of the ARM device")
	flags.StringVarP(&c.user, "user", "u", "", "Username for SSH")
	flags.StringVarP(&c.key, "key", "k", "", "Path to the public key to transfer (default from config)")
	flags.Uint16VarP(&c.port, "port", "p", 0, "Local port to bind for the tunnel (default from config)")
	flags.BoolVar(&c.noKeyTransfer, "no-key-transfer", false, "Skip SSH key transfer")
	flags.BoolVar(&c.skipArchValidation, "skip-arch-validation", false, "Skip ARM architecture validation (use with caution)")

	cmd.MarkFlagRequired("host")
	cmd.MarkFlagRequired("user")
	return cmd
}
