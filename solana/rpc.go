package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// JSON-RPC code returned when preflight simulation of a transaction fails.
const simulationFailedCode = -32002

var statusPollInterval = 2 * time.Second

// RPCTransport talks to a cluster through the JSON-RPC and websocket APIs.
type RPCTransport struct {
	rpcClient  *rpc.Client
	wsClient   *ws.Client
	commitment rpc.CommitmentType
	logger     *zap.Logger
}

type RPCOption func(*RPCTransport)

func WithCommitment(commitment rpc.CommitmentType) RPCOption {
	return func(t *RPCTransport) {
		t.commitment = commitment
	}
}

func WithRPCLogger(logger *zap.Logger) RPCOption {
	return func(t *RPCTransport) {
		t.logger = logger
	}
}

// NewRPCTransport builds a transport over rpcClient. wsClient is used to wait
// for confirmations; when nil, signature statuses are polled instead.
func NewRPCTransport(rpcClient *rpc.Client, wsClient *ws.Client, opts ...RPCOption) *RPCTransport {
	t := &RPCTransport{
		rpcClient:  rpcClient,
		wsClient:   wsClient,
		commitment: rpc.CommitmentConfirmed,
		logger:     zap.NewNop(),
	}
	for _, fn := range opts {
		fn(t)
	}
	return t
}

func (t *RPCTransport) Submit(
	ctx context.Context,
	payer *solana.Wallet,
	instructions []solana.Instruction,
	signers ...*solana.Wallet,
) (solana.Signature, error) {
	blockhash, err := GetLatestBlockhash(ctx, t.rpcClient, t.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	keys := make(map[solana.PublicKey]*solana.PrivateKey, len(signers)+1)
	keys[payer.PublicKey()] = &payer.PrivateKey
	for _, signer := range signers {
		keys[signer.PublicKey()] = &signer.PrivateKey
	}
	if _, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		return keys[key]
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := t.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: t.commitment,
	})
	if err != nil {
		return solana.Signature{}, classifySendError(err)
	}
	t.logger.Debug("transaction sent", zap.Stringer("signature", sig), zap.Int("instructions", len(instructions)))

	if err = t.waitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

func (t *RPCTransport) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	if t.wsClient != nil {
		done, err := t.subscribeConfirmation(ctx, sig)
		if done || ctx.Err() != nil {
			return err
		}
		t.logger.Debug("signature subscription failed, polling", zap.Stringer("signature", sig), zap.Error(err))
	}

	ticker := time.NewTicker(statusPollInterval)
	defer ticker.Stop()
	for {
		statusResp, err := t.rpcClient.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			return fmt.Errorf("get signature status: %w", err)
		}
		if status := statusResp.Value[0]; status != nil {
			if status.Err != nil {
				return executionError(status.Err)
			}
			if reached(status.ConfirmationStatus, t.commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// reached reports whether a signature at status satisfies commitment.
func reached(status rpc.ConfirmationStatusType, commitment rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return commitment != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return commitment == rpc.CommitmentProcessed
	}
	return false
}

// subscribeConfirmation waits for sig at the transport's commitment. done is
// false when the subscription itself failed and the caller should poll.
func (t *RPCTransport) subscribeConfirmation(ctx context.Context, sig solana.Signature) (done bool, err error) {
	sub, err := t.wsClient.SignatureSubscribe(sig, t.commitment)
	if err != nil {
		return false, err
	}
	defer sub.Unsubscribe()

	result, err := sub.Recv(ctx)
	if err != nil {
		return false, err
	}
	if result.Value.Err != nil {
		return true, executionError(result.Value.Err)
	}
	return true, nil
}

// executionError carries the cluster's transaction error as is.
func executionError(value interface{}) *RejectionError {
	if raw, err := json.Marshal(value); err == nil {
		return &RejectionError{Reason: string(raw)}
	}
	return &RejectionError{Reason: fmt.Sprintf("%v", value)}
}

// classifySendError separates program rejections surfaced by preflight
// simulation from plain transport failures, which are returned as is.
func classifySendError(err error) error {
	var rpcErr *jsonrpc.RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != simulationFailedCode {
		return err
	}

	rejection := &RejectionError{Reason: rpcErr.Message, Err: err}
	if rpcErr.Data != nil {
		if raw, mErr := json.Marshal(rpcErr.Data); mErr == nil {
			for _, line := range gjson.GetBytes(raw, "logs").Array() {
				rejection.Logs = append(rejection.Logs, line.String())
			}
		}
	}
	return rejection
}

func (t *RPCTransport) FindTokenAccounts(ctx context.Context, owner, mint solana.PublicKey) ([]*Account, error) {
	resp, err := t.rpcClient.GetTokenAccountsByOwner(ctx, owner, &rpc.GetTokenAccountsConfig{
		Mint: &mint,
	}, &rpc.GetTokenAccountsOpts{
		Encoding:   solana.EncodingJSONParsed,
		Commitment: t.commitment,
	})
	if err != nil {
		return nil, err
	}

	/*
		{
			"parsed": {
				"info": {
					"mint": "...",
					"owner": "...",
					"state": "initialized",
					"tokenAmount": {"amount": "0", "decimals": 6, ...}
				},
				"type": "account"
			},
			"program": "spl-token",
			"space": 165
		}
	*/
	accounts := make([]*Account, 0, len(resp.Value))
	for _, v := range resp.Value {
		raw := v.Account.Data.GetRawJSON()
		info := gjson.GetBytes(raw, "parsed.info")
		if !info.Exists() {
			continue
		}
		accountMint, err := solana.PublicKeyFromBase58(info.Get("mint").String())
		if err != nil {
			return nil, fmt.Errorf("parse mint of %s: %w", v.Pubkey, err)
		}
		accountOwner, err := solana.PublicKeyFromBase58(info.Get("owner").String())
		if err != nil {
			return nil, fmt.Errorf("parse owner of %s: %w", v.Pubkey, err)
		}
		state := info.Get("state").String()
		accounts = append(accounts, &Account{
			Address:       v.Pubkey,
			Mint:          accountMint,
			Owner:         accountOwner,
			Amount:        info.Get("tokenAmount.amount").Uint(),
			IsInitialized: state != "uninitialized",
			IsFrozen:      state == "frozen",
		})
	}
	return accounts, nil
}

func (t *RPCTransport) GetAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	out, err := t.rpcClient.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Commitment: t.commitment,
		Encoding:   solana.EncodingBase64,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	if err != nil {
		return nil, err
	}
	if out == nil || out.Value == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	return out.Value.Data.GetBinary(), nil
}

func (t *RPCTransport) MinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	return t.rpcClient.GetMinimumBalanceForRentExemption(ctx, size, t.commitment)
}
