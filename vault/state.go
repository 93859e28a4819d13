package vault

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	solanago "github.com/krazyTry/super-token-go/solana"
)

var VaultAccountDiscriminator = solanago.AccountDiscriminator(AccountKeyVault)

// VaultState is the on-chain record of a vault. Principal supply, yield supply
// and the TokenU custody balance move together.
type VaultState struct {
	// start of the term, unix seconds
	StartTime int64
	// end of the term, unix seconds
	EndTime int64

	MintY  solana.PublicKey
	MintP  solana.PublicKey
	MintU  solana.PublicKey
	TokenU solana.PublicKey
}

func (v *VaultState) Unmarshal(data []byte) error {
	if len(data) < VaultAccountSize {
		return fmt.Errorf("%w: %d bytes", ErrInvalidAccount, len(data))
	}
	if !bytes.Equal(data[:8], VaultAccountDiscriminator[:]) {
		return fmt.Errorf("%w: discriminator mismatch", ErrInvalidAccount)
	}
	return bin.NewBorshDecoder(data[8:VaultAccountSize]).Decode(v)
}

func (v *VaultState) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(VaultAccountDiscriminator[:])
	if err := bin.NewBorshEncoder(buf).Encode(*v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
