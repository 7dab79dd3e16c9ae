package derive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movedeploy/aptos-resource-publish/deploy"
	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

const (
	testPrivateKey      = "0xE4FD0E90D32CB98DC6AD64516A421E8C2731870217CDBA64203CEB158A866304"
	testSignerAddress   = "0x9b7a7333d1abd0e9c2a27d00a8a7a131d30d3b09908739d52693fe513e205c38"
	testResourceAddress = "0x26b197709cadc58500d5916c66cdfd9b070f375c50cf647fc2e7400188fb4965"
)

func TestNewCommand_Structure(t *testing.T) {
	t.Parallel()

	cmd := NewCommand(Config{Logger: logger.Nop()})

	assert.Equal(t, "derive", cmd.Use)

	a := cmd.Flags().Lookup("address")
	require.NotNil(t, a)
	assert.Equal(t, "a", a.Shorthand)

	s := cmd.Flags().Lookup("seed")
	require.NotNil(t, s)
	assert.Equal(t, "s", s.Shorthand)

	k := cmd.Flags().Lookup("private-key")
	require.NotNil(t, k)
	assert.Equal(t, "k", k.Shorthand)
}

func TestDerive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr string
	}{
		{
			name: "from address",
			args: []string{"-a", testSignerAddress, "-s", "seed1"},
			want: testResourceAddress + "\n",
		},
		{
			name: "from private key",
			args: []string{"-k", testPrivateKey, "--seed", "seed1"},
			want: testResourceAddress + "\n",
		},
		{
			name: "address wins over private key",
			args: []string{"-a", testSignerAddress, "-k", "0x01", "-s", "seed1"},
			want: testResourceAddress + "\n",
		},
		{
			name:    "invalid address",
			args:    []string{"-a", "0xzz", "-s", "seed1"},
			wantErr: "invalid Aptos address",
		},
		{
			name:    "invalid private key",
			args:    []string{"-k", "0x01", "-s", "seed1"},
			wantErr: "failed to parse private key",
		},
		{
			name:    "missing seed",
			args:    []string{"-a", testSignerAddress},
			wantErr: `required flag(s) "seed" not set`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := NewCommand(Config{Logger: logger.Test(t)})
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestSourceAddress_RequiresAddressOrKey(t *testing.T) {
	t.Parallel()

	_, err := sourceAddress("", "")
	require.ErrorIs(t, err, deploy.ErrInput)
	require.ErrorContains(t, err, "either --address or --private-key is required")
}
