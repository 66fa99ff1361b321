package bastion

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bastion-gov/bastion"
)

func newSignPrivateKeyCmd(proposalPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sign-raw-private-key",
		Short: "Sign a proposal with a raw private key",
		Long:  `Configure a private key in a .env file (using the PRIVATE_KEY var) and sign a proposal with it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load Proposal
			plain, timelockProposal, err := loadProposal(*proposalPath)
			if err != nil {
				fmt.Printf("Error loading proposal: %s\n", err)
				return err
			}

			// Load Private Key
			pk, err := loadPrivateKey()
			if err != nil {
				fmt.Printf("Error loading private key: %s\n", err)
				return err
			}

			// Timelock proposals sign over their converted form, so the
			// signature matches the wrapped calls the wallet will see.
			signing := plain
			if timelockProposal != nil {
				converted, _, cerr := timelockProposal.Convert(cmd.Context(), converters(timelockProposal))
				if cerr != nil {
					fmt.Printf("Error converting proposal: %s\n", cerr)
					return cerr
				}

				signing = &converted
			}

			s, err := bastion.NewSignable(signing, nil)
			if err != nil {
				fmt.Printf("Error converting proposal to signable: %s\n", err)
				return err
			}

			sig, err := s.Sign(bastion.NewPrivateKeySigner(pk))
			if err != nil {
				fmt.Printf("Error signing proposal: %s\n", err)
				return err
			}

			// Write proposal back with the new signature appended
			file, err := os.Create(*proposalPath)
			if err != nil {
				fmt.Println("Error opening file:", err)
				return err
			}
			defer file.Close()

			if timelockProposal != nil {
				timelockProposal.Signatures = append(timelockProposal.Signatures, sig)

				return bastion.WriteTimelockProposal(file, timelockProposal)
			}

			plain.AppendSignature(sig)

			return bastion.WriteProposal(file, plain)
		},
	}
}
