package cmd

import (
	"github.com/kfsoftware/ssh-ip-tunnel/cmd/config"
	"github.com/kfsoftware/ssh-ip-tunnel/cmd/tunnel"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func NewCmdSSHIPTunnel() *cobra.Command {
	var verbose bool
	cmd := tunnel.NewTunnelCmd()
	cmd.SilenceErrors = true
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose && log.Logger.GetLevel() > zerolog.DebugLevel {
			log.Logger = log.Logger.Level(zerolog.DebugLevel)
		}
	}
	persistentFlags := cmd.PersistentFlags()
	persistentFlags.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	persistentFlags.String("config", "", "Configuration file path")

	cmd.AddCommand(config.NewConfigCmd())
	return cmd
}
