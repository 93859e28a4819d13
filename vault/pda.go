package vault

import (
	"github.com/gagliardetto/solana-go"

	solanago "github.com/krazyTry/super-token-go/solana"
)

// DeriveVaultAddress returns the vault record address and bump for the
// underlying mint and term. The seeds are "vault", the mint, and the start and
// end unix times as decimal strings.
func DeriveVaultAddress(programID, underlyingMint solana.PublicKey, startTime, endTime int64) (solana.PublicKey, uint8, error) {
	return solanago.FindProgramAddress(programID, solanago.TaggedSeeds(VaultSeed, underlyingMint, startTime, endTime)...)
}
