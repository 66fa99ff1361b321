package deployment

import (
	"encoding/json"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/bastion-gov/bastion/types"
)

// ManifestVersion is the version written into new manifests.
const ManifestVersion = "v1"

// Manifest records a deployed topology: where every component lives on each
// chain and the governance parameters observed on chain after wiring. It is
// the artifact the CLI writes after a deployment and reads back to inspect
// one.
type Manifest struct {
	Version string     `json:"version" validate:"required"`
	L1      L1Manifest `json:"l1"`
	L2      L2Manifest `json:"l2"`
	Params  Params     `json:"params"`
}

// L1Manifest lists the governance stack on the settlement chain.
type L1Manifest struct {
	Selector   types.ChainSelector `json:"selector" validate:"required"`
	Wallet     common.Address      `json:"wallet" validate:"required"`
	Queue      common.Address      `json:"queue" validate:"required"`
	Authorizer common.Address      `json:"authorizer" validate:"required"`
	Registrar  common.Address      `json:"registrar" validate:"required"`
	TokenLogic common.Address      `json:"tokenLogic" validate:"required"`
	TokenProxy common.Address      `json:"tokenProxy" validate:"required"`
	Relay      common.Address      `json:"relay" validate:"required"`
	Inbox      common.Address      `json:"inbox" validate:"required"`
}

// L2Manifest lists the governed side on the execution chain. RegistrarOwner
// is the alias of the L1 relay, recorded so operators can verify the
// cross-chain authority without recomputing it.
type L2Manifest struct {
	Selector       types.ChainSelector `json:"selector" validate:"required"`
	Registrar      common.Address      `json:"registrar" validate:"required"`
	RegistrarOwner common.Address      `json:"registrarOwner" validate:"required"`
	TokenLogic     common.Address      `json:"tokenLogic" validate:"required"`
	TokenProxy     common.Address      `json:"tokenProxy" validate:"required"`
}

// Params is the governance configuration read back from the deployed
// contracts. Executors may contain the zero address, which means execution
// on the queue is open to anyone.
type Params struct {
	Owners       []common.Address `json:"owners" validate:"required,min=1"`
	Threshold    uint8            `json:"threshold" validate:"required"`
	QueueDelay   uint64           `json:"queueDelay" validate:"required"`
	UpgradeDelay uint64           `json:"upgradeDelay" validate:"required"`
	Proposers    []common.Address `json:"proposers" validate:"required,min=1"`
	Cancellers   []common.Address `json:"cancellers" validate:"required,min=1"`
	Executors    []common.Address `json:"executors" validate:"required,min=1"`
}

// NewManifest decodes a manifest from JSON and validates it.
func NewManifest(reader io.Reader) (*Manifest, error) {
	var out Manifest
	if err := json.NewDecoder(reader).Decode(&out); err != nil {
		return nil, err
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}

	return &out, nil
}

// WriteManifest validates the manifest and writes it to the writer as
// indented JSON.
func WriteManifest(w io.Writer, manifest *Manifest) error {
	if err := manifest.Validate(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(manifest)
}

// Validate checks the manifest against its struct tags.
func (m *Manifest) Validate() error {
	validate := validator.New()

	return validate.Struct(m)
}
