// Package bastion is the governance CLI. Because contract addresses in a
// deployment depend only on the deployment config, every command that needs
// chain state rebuilds the topology from the config file and works against
// that rehearsal copy.
package bastion

import (
	"github.com/spf13/cobra"
)

func BuildBastionCmd() *cobra.Command {
	var (
		proposalPath  string
		configPath    string
		chainSelector uint64
	)

	cmd := cobra.Command{
		Use:   "bastion",
		Short: "Manage bastion governance proposals",
		Long:  ``,
	}

	cmd.PersistentFlags().StringVar(&proposalPath, "proposal", "", "File path of the proposal to operate on")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "File path of the deployment config describing the topology")
	cmd.PersistentFlags().Uint64Var(&chainSelector, "selector", 0, "Chain selector for the command to operate on")

	cmd.AddCommand(buildDeployCmd(&configPath))
	cmd.AddCommand(buildCheckQuorumCmd(&proposalPath, &configPath, &chainSelector))
	cmd.AddCommand(buildSimulateCmd(&proposalPath, &configPath))
	cmd.AddCommand(newSignPrivateKeyCmd(&proposalPath))

	return &cmd
}
