package bastion

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/bastion-gov/bastion"
	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/deployment"
	"github.com/bastion-gov/bastion/internal/utils/safecast"
	"github.com/bastion-gov/bastion/sdk"
	"github.com/bastion-gov/bastion/sdk/fabric"
	"github.com/bastion-gov/bastion/types"
)

func buildSimulateCmd(proposalPath, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Replays a signed proposal against a fresh in-memory deployment of the topology",
		Long: `Deploys the topology described by the config, drives the proposal through the
wallet and, for schedule proposals, through the delay queue, then delivers any
bridge tickets the operations produced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

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

			running := plain
			if timelockProposal != nil {
				converted, _, cerr := timelockProposal.Convert(ctx, converters(timelockProposal))
				if cerr != nil {
					fmt.Printf("Error converting proposal: %s\n", cerr)
					return cerr
				}

				running = &converted
			}

			ins, err := inspectors(d, running)
			if err != nil {
				return err
			}
			s, err := bastion.NewSignable(running, ins)
			if err != nil {
				return err
			}

			quorumMet, err := s.ValidateSignatures(ctx)
			if err != nil {
				fmt.Printf("Error validating signatures: %s\n", err)
				return err
			}
			if !quorumMet {
				return errors.New("signature quorum not met")
			}

			execs, err := executors(d, running)
			if err != nil {
				return err
			}
			executable, err := bastion.NewExecutable(running, execs)
			if err != nil {
				return err
			}

			for sel := range running.ChainMetadata {
				if err := executable.AuthorizeRoot(ctx, sel); err != nil {
					fmt.Printf("Error authorizing root on chain %d: %s\n", sel, err)
					return err
				}
			}

			for i := range running.Operations {
				if _, err := executable.Execute(ctx, i); err != nil {
					fmt.Printf("Error executing operation %d: %s\n", i, err)
					return err
				}
			}
			fmt.Printf("Executed %d wallet transactions\n", len(running.Operations))

			if timelockProposal != nil && timelockProposal.Action == types.TimelockActionSchedule {
				if err := runQueue(ctx, d, timelockProposal); err != nil {
					return err
				}
			}

			if pending := d.Bridge.Pending(); len(pending) > 0 {
				for _, id := range pending {
					if err := d.Bridge.Deliver(id); err != nil {
						fmt.Printf("Error delivering ticket %d: %s\n", id, err)
						return err
					}
				}

				fmt.Printf("Delivered %d bridge tickets to L2\n", len(pending))
			}

			fmt.Println("Simulation complete")

			return nil
		},
	}
}

// runQueue waits out the proposal's delay on every chain it touches and
// executes the scheduled operations in order.
func runQueue(ctx context.Context, d *deployment.Deployment, proposal *bastion.TimelockProposal) error {
	sender := d.Config.Executor
	if sender == (common.Address{}) {
		// Open execution; any funded account can run ready operations.
		sender = d.Config.Deployer
	}

	envs := make(map[types.ChainSelector]*chain.Env, len(proposal.ChainMetadata))
	texecutors := make(map[types.ChainSelector]sdk.TimelockExecutor, len(proposal.ChainMetadata))
	for sel := range proposal.ChainMetadata {
		env, err := envFor(d, sel)
		if err != nil {
			return err
		}

		envs[sel] = env
		texecutors[sel] = fabric.NewTimelockExecutor(env, sender)
	}

	// Value bearing operations draw on the executor's balance when they run.
	funding := make(map[types.ChainSelector]*big.Int, len(envs))
	for _, op := range proposal.Operations {
		if op.Value != nil && op.Value.Sign() > 0 {
			total := funding[op.ChainSelector]
			if total == nil {
				total = big.NewInt(0)
			}

			funding[op.ChainSelector] = new(big.Int).Add(total, op.Value)
		}
	}
	for sel, total := range funding {
		envs[sel].Fund(sender, total)
	}

	seconds, err := safecast.Int64ToUint64(int64(proposal.Delay.Duration / time.Second))
	if err != nil {
		return err
	}
	for _, env := range envs {
		env.AdvanceTime(seconds)
	}
	fmt.Printf("Advanced chain time by %s\n", proposal.Delay)

	executable, err := bastion.NewTimelockExecutable(proposal, texecutors)
	if err != nil {
		return err
	}
	if err := executable.IsReady(ctx); err != nil {
		return err
	}

	for i := range proposal.Operations {
		if _, err := executable.Execute(ctx, i); err != nil {
			fmt.Printf("Error executing queued operation %d: %s\n", i, err)
			return err
		}
	}
	fmt.Printf("Executed %d operations on the delay queue\n", len(proposal.Operations))

	return nil
}
