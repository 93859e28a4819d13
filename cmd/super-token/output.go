package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/jedib0t/go-pretty/v6/table"

	solanago "github.com/krazyTry/super-token-go/solana"
	"github.com/krazyTry/super-token-go/swap"
)

type row = table.Row

func render(w io.Writer, title string, rows ...row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	t.AppendRows(rows)
	t.Render()
}

func signatures(sigs []solana.Signature) row {
	out := row{"Signatures"}
	for _, sig := range sigs {
		out = append(out, sig.String())
	}
	return out
}

// printError writes err with the program's logs or the partial state of a
// failed pool creation when there is any.
func printError(w io.Writer, err error) {
	if solanago.IsPrecondition(err) {
		fmt.Fprintf(w, "Error: precondition not met: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)

	var partial *swap.PartialPoolError
	if errors.As(err, &partial) {
		render(w, "Partially created pool "+partial.Pool.String(),
			row{"Failed stage", partial.Stage},
			row{"Reserve A", partial.ReserveA.String()},
			row{"Reserve B", partial.ReserveB.String()},
			row{"Committed", strconv.Itoa(len(partial.Committed))},
		)
	}

	var rejection *solanago.RejectionError
	if errors.As(err, &rejection) {
		for _, line := range rejection.Logs {
			fmt.Fprintln(w, "  "+line)
		}
	}
}
