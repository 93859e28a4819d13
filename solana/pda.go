package solana

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
)

// FindProgramAddress derives the off-curve address for seeds under programID.
// Bumps are tried from 255 down to and including 0; solana-go's version of this
// stops at 1, which the vault program does not.
func FindProgramAddress(programID solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8, error) {
	buf := make([][]byte, 0, len(seeds)+1)
	buf = append(buf, seeds...)
	buf = append(buf, nil)

	bump := uint8(255)
	for {
		buf[len(buf)-1] = []byte{bump}
		address, err := solana.CreateProgramAddress(buf, programID)
		if err == nil {
			return address, bump, nil
		}
		if bump == 0 {
			return solana.PublicKey{}, 0, ErrNoViableBump
		}
		bump--
	}
}

// TaggedSeeds builds the seed list tag | key | fields, with each integer field
// rendered as its base-10 string.
func TaggedSeeds(tag string, key solana.PublicKey, fields ...int64) [][]byte {
	seeds := make([][]byte, 0, len(fields)+2)
	seeds = append(seeds, []byte(tag), key.Bytes())
	for _, field := range fields {
		seeds = append(seeds, []byte(strconv.FormatInt(field, 10)))
	}
	return seeds
}
