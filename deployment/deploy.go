package deployment

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/bastion-gov/bastion/chain"
	"github.com/bastion-gov/bastion/crosschain"
	"github.com/bastion-gov/bastion/quorum"
	"github.com/bastion-gov/bastion/timelock"
	"github.com/bastion-gov/bastion/token"
	"github.com/bastion-gov/bastion/upgrades"
)

// Opt configures a deployment.
type Opt func(*deployOptions)

type deployOptions struct {
	lggr log.Logger
}

// WithLogger sets the logger handed to both chain envs.
func WithLogger(lggr log.Logger) Opt {
	return func(o *deployOptions) {
		o.lggr = lggr
	}
}

// Deployment is a wired topology: both chain envs, the bridge between them,
// and the manifest recording every deployed contract. The binding accessors
// are the operator surface over the deployed addresses.
type Deployment struct {
	Config   Config
	Manifest Manifest

	L1     *chain.Env
	L2     *chain.Env
	Bridge *crosschain.Bridge
}

// Deploy wires a full topology from the config.
//
// On L1 the quorum wallet fronts a delay queue, the queue owns the upgrade
// authorizer and the relay, the authorizer owns the proxy registrar, and the
// registrar administers the token proxy. On L2 a registrar owned by the
// aliased relay administers the token proxy, so every L2 governance action
// must arrive through the bridge.
func Deploy(cfg Config, opts ...Opt) (*Deployment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid deployment config: %w", err)
	}

	options := deployOptions{lggr: log.Root()}
	for _, opt := range opts {
		opt(&options)
	}

	envOpts := []chain.EnvOpt{chain.WithLogger(options.lggr)}
	if cfg.GenesisTime > 0 {
		envOpts = append(envOpts, chain.WithGenesisTime(cfg.GenesisTime))
	}

	d := &Deployment{
		Config: cfg,
		L1:     chain.NewEnv(cfg.L1Selector, envOpts...),
		L2:     chain.NewEnv(cfg.L2Selector, envOpts...),
	}
	d.Bridge = crosschain.NewBridge(d.L2)

	if err := d.deployL1(); err != nil {
		return nil, err
	}
	if err := d.deployL2(); err != nil {
		return nil, err
	}
	if err := d.describe(); err != nil {
		return nil, err
	}

	options.lggr.Info("deployment complete",
		"l1", uint64(cfg.L1Selector), "l2", uint64(cfg.L2Selector),
		"wallet", d.Manifest.L1.Wallet, "queue", d.Manifest.L1.Queue,
		"relay", d.Manifest.L1.Relay, "l2TokenProxy", d.Manifest.L2.TokenProxy)

	return d, nil
}

func (d *Deployment) deployL1() error {
	cfg := d.Config

	wallet, err := quorum.NewWallet(cfg.Owners, cfg.Threshold)
	if err != nil {
		return fmt.Errorf("build wallet: %w", err)
	}
	walletAddr, err := d.L1.Deploy(cfg.Deployer, wallet)
	if err != nil {
		return fmt.Errorf("deploy wallet: %w", err)
	}

	// The deployer holds the queue's admin role only until the roles below
	// are wired.
	queueAddr, err := d.L1.Deploy(cfg.Deployer, timelock.NewController(cfg.QueueDelay, cfg.Deployer))
	if err != nil {
		return fmt.Errorf("deploy queue: %w", err)
	}

	authorizerAddr, err := d.L1.Deploy(cfg.Deployer, upgrades.NewAuthorizer(cfg.UpgradeDelay, queueAddr))
	if err != nil {
		return fmt.Errorf("deploy authorizer: %w", err)
	}

	registrarAddr, err := d.L1.Deploy(cfg.Deployer, upgrades.NewRegistrar(authorizerAddr))
	if err != nil {
		return fmt.Errorf("deploy registrar: %w", err)
	}

	logicAddr, err := d.L1.Deploy(cfg.Deployer, upgrades.NewLogic(token.ControllerV1{}))
	if err != nil {
		return fmt.Errorf("deploy token logic: %w", err)
	}

	proxyAddr, err := upgrades.DeployProxy(d.L1, cfg.Deployer, logicAddr, registrarAddr)
	if err != nil {
		return fmt.Errorf("deploy token proxy: %w", err)
	}

	inboxAddr, err := d.L1.Deploy(cfg.Deployer, crosschain.NewInbox(d.Bridge))
	if err != nil {
		return fmt.Errorf("deploy inbox: %w", err)
	}

	relay, err := crosschain.NewRelay(queueAddr, inboxAddr)
	if err != nil {
		return fmt.Errorf("build relay: %w", err)
	}
	relayAddr, err := d.L1.Deploy(cfg.Deployer, relay)
	if err != nil {
		return fmt.Errorf("deploy relay: %w", err)
	}

	d.Manifest.L1 = L1Manifest{
		Selector:   cfg.L1Selector,
		Wallet:     walletAddr,
		Queue:      queueAddr,
		Authorizer: authorizerAddr,
		Registrar:  registrarAddr,
		TokenLogic: logicAddr,
		TokenProxy: proxyAddr,
		Relay:      relayAddr,
		Inbox:      inboxAddr,
	}

	if err := d.wireQueueRoles(); err != nil {
		return fmt.Errorf("wire queue roles: %w", err)
	}

	if err := bootstrapToken(d.L1Token(), cfg.Deployer, relayAddr, registrarAddr, queueAddr); err != nil {
		return fmt.Errorf("bootstrap l1 token: %w", err)
	}

	return nil
}

func (d *Deployment) deployL2() error {
	cfg := d.Config
	aliasedRelay := crosschain.Alias(d.Manifest.L1.Relay)

	registrarAddr, err := d.L2.Deploy(cfg.Deployer, upgrades.NewRegistrar(aliasedRelay))
	if err != nil {
		return fmt.Errorf("deploy l2 registrar: %w", err)
	}

	logicAddr, err := d.L2.Deploy(cfg.Deployer, upgrades.NewLogic(token.ControllerV1{}))
	if err != nil {
		return fmt.Errorf("deploy l2 token logic: %w", err)
	}

	proxyAddr, err := upgrades.DeployProxy(d.L2, cfg.Deployer, logicAddr, registrarAddr)
	if err != nil {
		return fmt.Errorf("deploy l2 token proxy: %w", err)
	}

	d.Manifest.L2 = L2Manifest{
		Selector:       cfg.L2Selector,
		Registrar:      registrarAddr,
		RegistrarOwner: aliasedRelay,
		TokenLogic:     logicAddr,
		TokenProxy:     proxyAddr,
	}

	if err := bootstrapToken(d.L2Token(), cfg.Deployer, d.Manifest.L1.Relay, registrarAddr, aliasedRelay); err != nil {
		return fmt.Errorf("bootstrap l2 token: %w", err)
	}

	return nil
}

// wireQueueRoles hands the queue to governance: the wallet proposes and
// cancels, the configured executor executes, and the queue administers its
// own roles from then on so role changes ride the delay like any other
// operation.
func (d *Deployment) wireQueueRoles() error {
	cfg := d.Config
	queue := d.Queue()

	grants := []struct {
		role    common.Hash
		account common.Address
	}{
		{timelock.RoleProposer, d.Manifest.L1.Wallet},
		{timelock.RoleCanceller, d.Manifest.L1.Wallet},
		{timelock.RoleExecutor, cfg.Executor},
		{timelock.RoleAdmin, d.Manifest.L1.Queue},
	}
	for _, g := range grants {
		if err := queue.GrantRole(cfg.Deployer, g.role, g.account); err != nil {
			return fmt.Errorf("grant %s: %w", timelock.RoleName(g.role), err)
		}
	}

	if err := queue.RevokeRole(cfg.Deployer, timelock.RoleAdmin, cfg.Deployer); err != nil {
		return fmt.Errorf("revoke deployer admin: %w", err)
	}

	return nil
}

// bootstrapToken initializes a token proxy through a temporary admin, links
// its cross-chain governance endpoint, and hands the role registry to the
// final admin. The upgrader grant lets versioned initializers run during
// upgrades, where the proxy admin is the sender they observe.
func bootstrapToken(b *token.Binding, deployer, governance, upgrader, admin common.Address) error {
	if err := b.Initialize(deployer, deployer); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := b.SetL1Governance(deployer, governance); err != nil {
		return fmt.Errorf("link governance: %w", err)
	}
	if err := b.GrantRole(deployer, token.RoleUpgrader, upgrader); err != nil {
		return fmt.Errorf("grant upgrader role: %w", err)
	}
	if err := b.GrantRole(deployer, token.RoleAdmin, admin); err != nil {
		return fmt.Errorf("grant admin role: %w", err)
	}
	if err := b.RevokeRole(deployer, token.RoleAdmin, deployer); err != nil {
		return fmt.Errorf("revoke deployer admin: %w", err)
	}

	return nil
}

// describe reads the governance parameters back from the deployed contracts
// so the manifest records on-chain truth rather than config intent.
func (d *Deployment) describe() error {
	d.Manifest.Version = ManifestVersion

	wallet := d.Wallet()
	owners, err := wallet.Owners()
	if err != nil {
		return fmt.Errorf("read owners: %w", err)
	}
	threshold, err := wallet.Threshold()
	if err != nil {
		return fmt.Errorf("read threshold: %w", err)
	}

	queue := d.Queue()
	minDelay, err := queue.GetMinDelay()
	if err != nil {
		return fmt.Errorf("read queue delay: %w", err)
	}
	upgradeDelay, err := d.Authorizer().UpgradeDelay()
	if err != nil {
		return fmt.Errorf("read upgrade delay: %w", err)
	}

	roles := make(map[common.Hash][]common.Address, 3)
	for _, role := range []common.Hash{timelock.RoleProposer, timelock.RoleCanceller, timelock.RoleExecutor} {
		members, err := queue.GetRoleMembers(role)
		if err != nil {
			return fmt.Errorf("read %s members: %w", timelock.RoleName(role), err)
		}
		roles[role] = members
	}

	d.Manifest.Params = Params{
		Owners:       owners,
		Threshold:    threshold,
		QueueDelay:   minDelay.Uint64(),
		UpgradeDelay: upgradeDelay.Uint64(),
		Proposers:    roles[timelock.RoleProposer],
		Cancellers:   roles[timelock.RoleCanceller],
		Executors:    roles[timelock.RoleExecutor],
	}

	return nil
}

// Wallet returns a binding over the L1 quorum wallet.
func (d *Deployment) Wallet() *quorum.Binding {
	return quorum.NewBinding(d.L1, d.Manifest.L1.Wallet)
}

// Queue returns a binding over the L1 delay queue.
func (d *Deployment) Queue() *timelock.Binding {
	return timelock.NewBinding(d.L1, d.Manifest.L1.Queue)
}

// Authorizer returns a binding over the L1 upgrade authorizer.
func (d *Deployment) Authorizer() *upgrades.AuthorizerBinding {
	return upgrades.NewAuthorizerBinding(d.L1, d.Manifest.L1.Authorizer)
}

// Registrar returns a binding over the L1 proxy registrar.
func (d *Deployment) Registrar() *upgrades.RegistrarBinding {
	return upgrades.NewRegistrarBinding(d.L1, d.Manifest.L1.Registrar)
}

// Relay returns a binding over the L1 relay.
func (d *Deployment) Relay() *crosschain.RelayBinding {
	return crosschain.NewRelayBinding(d.L1, d.Manifest.L1.Relay)
}

// Inbox returns a binding over the L1 bridge inbox.
func (d *Deployment) Inbox() *crosschain.InboxBinding {
	return crosschain.NewInboxBinding(d.L1, d.Manifest.L1.Inbox)
}

// L1Token returns a binding over the L1 token proxy.
func (d *Deployment) L1Token() *token.Binding {
	return token.NewBinding(d.L1, d.Manifest.L1.TokenProxy)
}

// L2Registrar returns a binding over the L2 proxy registrar.
func (d *Deployment) L2Registrar() *upgrades.RegistrarBinding {
	return upgrades.NewRegistrarBinding(d.L2, d.Manifest.L2.Registrar)
}

// L2Token returns a binding over the L2 token proxy.
func (d *Deployment) L2Token() *token.Binding {
	return token.NewBinding(d.L2, d.Manifest.L2.TokenProxy)
}
