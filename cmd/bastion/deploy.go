package bastion

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bastion-gov/bastion/deployment"
)

func buildDeployCmd(configPath *string) *cobra.Command {
	var manifestPath string

	cmd := cobra.Command{
		Use:   "deploy",
		Short: "Deploys the full governance topology and writes its manifest",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := rehearse(*configPath)
			if err != nil {
				fmt.Printf("Error deploying topology: %s\n", err)
				return err
			}

			file, err := os.Create(manifestPath)
			if err != nil {
				return err
			}
			defer file.Close()

			if err := deployment.WriteManifest(file, &d.Manifest); err != nil {
				return err
			}

			fmt.Printf("Wallet deployed at %s\n", d.Manifest.L1.Wallet.Hex())
			fmt.Printf("Delay queue deployed at %s\n", d.Manifest.L1.Queue.Hex())
			fmt.Printf("Upgrade authorizer deployed at %s\n", d.Manifest.L1.Authorizer.Hex())
			fmt.Printf("Relay deployed at %s\n", d.Manifest.L1.Relay.Hex())
			fmt.Printf("Manifest written to %s\n", manifestPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "manifest.json", "File path to write the deployment manifest to")

	return &cmd
}
