package swap

import (
	"github.com/gagliardetto/solana-go"

	solanago "github.com/krazyTry/super-token-go/solana"
)

// DerivePoolAuthority returns the address that owns a pool's reserves and
// mints its LP tokens. The only seed is the pool account key.
func DerivePoolAuthority(programID, pool solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solanago.FindProgramAddress(programID, pool.Bytes())
}
