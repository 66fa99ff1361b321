package bastion

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bastion-gov/bastion"
	"github.com/bastion-gov/bastion/types"
)

func buildCheckQuorumCmd(proposalPath, configPath *string, chainSelector *uint64) *cobra.Command {
	return &cobra.Command{
		Use:   "check-quorum",
		Short: "Determines whether the provided signatures meet the wallet's approval threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Checking quorum for proposal %s\n", *proposalPath)
			plain, timelockProposal, err := loadProposal(*proposalPath)
			if err != nil {
				fmt.Printf("Error loading proposal: %s\n", err)
				return err
			}

			d, err := rehearse(*configPath)
			if err != nil {
				fmt.Printf("Error deploying rehearsal topology: %s\n", err)
				return err
			}

			checking := plain
			if timelockProposal != nil {
				converted, _, cerr := timelockProposal.Convert(cmd.Context(), converters(timelockProposal))
				if cerr != nil {
					fmt.Printf("Error converting proposal: %s\n", cerr)
					return cerr
				}

				checking = &converted
			}

			ins, err := inspectors(d, checking)
			if err != nil {
				return err
			}

			s, err := bastion.NewSignable(checking, ins)
			if err != nil {
				fmt.Printf("Error converting proposal to signable: %s\n", err)
				return err
			}

			quorumMet, err := s.CheckQuorum(cmd.Context(), types.ChainSelector(*chainSelector))
			if err != nil {
				fmt.Printf("Error checking quorum: %s\n", err)
				return err
			}
			if !quorumMet {
				fmt.Println("Signature quorum not met!")
				return errors.New("signature quorum not met")
			}

			fmt.Println("Signature quorum met!")

			return nil
		},
	}
}
