package deployment

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastion-gov/bastion/internal/testutils/chaintest"
)

func validManifest() Manifest {
	return Manifest{
		Version: ManifestVersion,
		L1: L1Manifest{
			Selector:   chaintest.L1Selector,
			Wallet:     common.HexToAddress("0x0000000000000000000000000000000000000011"),
			Queue:      common.HexToAddress("0x0000000000000000000000000000000000000012"),
			Authorizer: common.HexToAddress("0x0000000000000000000000000000000000000013"),
			Registrar:  common.HexToAddress("0x0000000000000000000000000000000000000014"),
			TokenLogic: common.HexToAddress("0x0000000000000000000000000000000000000015"),
			TokenProxy: common.HexToAddress("0x0000000000000000000000000000000000000016"),
			Relay:      common.HexToAddress("0x0000000000000000000000000000000000000017"),
			Inbox:      common.HexToAddress("0x0000000000000000000000000000000000000018"),
		},
		L2: L2Manifest{
			Selector:       chaintest.L2Selector,
			Registrar:      common.HexToAddress("0x0000000000000000000000000000000000000021"),
			RegistrarOwner: common.HexToAddress("0x0000000000000000000000000000000000000022"),
			TokenLogic:     common.HexToAddress("0x0000000000000000000000000000000000000023"),
			TokenProxy:     common.HexToAddress("0x0000000000000000000000000000000000000024"),
		},
		Params: Params{
			Owners:       testOwners,
			Threshold:    2,
			QueueDelay:   3600,
			UpgradeDelay: 7200,
			Proposers:    []common.Address{common.HexToAddress("0x0000000000000000000000000000000000000011")},
			Cancellers:   []common.Address{common.HexToAddress("0x0000000000000000000000000000000000000011")},
			Executors:    []common.Address{testExecutor},
		},
	}
}

func Test_Manifest_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		give     func() Manifest
		wantErrs []string
	}{
		{
			name:     "valid",
			give:     validManifest,
			wantErrs: []string{},
		},
		{
			name: "missing version",
			give: func() Manifest {
				m := validManifest()
				m.Version = ""

				return m
			},
			wantErrs: []string{
				"Key: 'Manifest.Version' Error:Field validation for 'Version' failed on the 'required' tag",
			},
		},
		{
			name: "zero addresses",
			give: func() Manifest {
				m := validManifest()
				m.L1.Wallet = common.Address{}
				m.L2.Registrar = common.Address{}

				return m
			},
			wantErrs: []string{
				"Key: 'Manifest.L1.Wallet' Error:Field validation for 'Wallet' failed on the 'required' tag",
				"Key: 'Manifest.L2.Registrar' Error:Field validation for 'Registrar' failed on the 'required' tag",
			},
		},
		{
			name: "missing selectors",
			give: func() Manifest {
				m := validManifest()
				m.L1.Selector = 0
				m.L2.Selector = 0

				return m
			},
			wantErrs: []string{
				"Key: 'Manifest.L1.Selector' Error:Field validation for 'Selector' failed on the 'required' tag",
				"Key: 'Manifest.L2.Selector' Error:Field validation for 'Selector' failed on the 'required' tag",
			},
		},
		{
			name: "missing params",
			give: func() Manifest {
				m := validManifest()
				m.Params.Owners = nil
				m.Params.Proposers = []common.Address{}

				return m
			},
			wantErrs: []string{
				"Key: 'Manifest.Params.Owners' Error:Field validation for 'Owners' failed on the 'required' tag",
				"Key: 'Manifest.Params.Proposers' Error:Field validation for 'Proposers' failed on the 'min' tag",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			give := tt.give()
			err := give.Validate()

			if len(tt.wantErrs) > 0 {
				require.Error(t, err)

				var errs validator.ValidationErrors
				if errors.As(err, &errs) {
					assert.Len(t, errs, len(tt.wantErrs))

					got := []string{}
					for _, e := range errs {
						got = append(got, e.Error())
					}
					assert.ElementsMatch(t, tt.wantErrs, got)
				} else {
					assert.ElementsMatch(t, tt.wantErrs, []string{err.Error()})
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func Test_NewManifest(t *testing.T) {
	t.Parallel()

	t.Run("success: decodes a written manifest", func(t *testing.T) {
		t.Parallel()

		give := validManifest()

		var buf bytes.Buffer
		require.NoError(t, WriteManifest(&buf, &give))

		got, err := NewManifest(&buf)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(give, *got))
	})

	t.Run("failure: invalid JSON", func(t *testing.T) {
		t.Parallel()

		got, err := NewManifest(strings.NewReader(`invalid`))
		require.Error(t, err)
		assert.Nil(t, got)
		require.EqualError(t, err, "invalid character 'i' looking for beginning of value")
	})

	t.Run("failure: incomplete manifest", func(t *testing.T) {
		t.Parallel()

		got, err := NewManifest(strings.NewReader(`{"version": "v1"}`))
		require.Error(t, err)
		assert.Nil(t, got)

		var errs validator.ValidationErrors
		require.ErrorAs(t, err, &errs)
	})
}

func Test_WriteManifest(t *testing.T) {
	t.Parallel()

	t.Run("success: round trips a deployed manifest", func(t *testing.T) {
		t.Parallel()

		d, err := Deploy(testConfig())
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, WriteManifest(&buf, &d.Manifest))

		got, err := NewManifest(&buf)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(d.Manifest, *got))
	})

	t.Run("failure: invalid manifest is not written", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := WriteManifest(&buf, &Manifest{})
		require.Error(t, err)
		assert.Equal(t, 0, buf.Len())
	})
}
