package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	gocache "github.com/patrickmn/go-cache"

	"github.com/trusthire/trusthire/internal/domain"
)

// reputationABI is the fixed call contract of the reputation registry.
// The ABI is a collaborator's surface, not something authored here.
const reputationABI = `[
	{"name":"getReputation","type":"function","stateMutability":"view",
	 "inputs":[{"name":"subject","type":"address"}],
	 "outputs":[{"name":"totalScore","type":"uint256"},{"name":"ratingCount","type":"uint256"}]},
	{"name":"submitRating","type":"function","stateMutability":"nonpayable",
	 "inputs":[{"name":"subject","type":"address"},{"name":"score","type":"uint8"}],
	 "outputs":[]}
]`

const (
	reputationCacheTTL = 5 * time.Minute
	receiptPollEvery   = 2 * time.Second
)

// boundContract is the slice of *bind.BoundContract the adapter uses.
type boundContract interface {
	Call(opts *bind.CallOpts, results *[]interface{}, method string, params ...interface{}) error
	Transact(opts *bind.TransactOpts, method string, params ...interface{}) (*types.Transaction, error)
}

// receiptReader resolves broadcast transactions to receipts.
type receiptReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// Adapter is a thin pass-through to the reputation contract. Writes
// return once broadcast; confirmation is a separate bounded wait.
type Adapter struct {
	contract boundContract
	receipts receiptReader
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	cache    *gocache.Cache
}

// Dial connects to the RPC endpoint and binds the contract.
func Dial(rpcURL, contractAddress, privateKeyHex string, chainID int64) (*Adapter, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain rpc: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(reputationABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse reputation abi: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse signer key: %w", err)
	}

	contract := bind.NewBoundContract(
		common.HexToAddress(contractAddress), parsed, client, client, client)

	return &Adapter{
		contract: contract,
		receipts: client,
		key:      key,
		chainID:  big.NewInt(chainID),
		cache:    gocache.New(reputationCacheTTL, 2*reputationCacheTTL),
	}, nil
}

// GetReputation reads the aggregate for an address, served from cache
// when fresh.
func (a *Adapter) GetReputation(ctx context.Context, address string) (domain.Reputation, error) {
	if cached, found := a.cache.Get(address); found {
		return cached.(domain.Reputation), nil
	}

	var out []interface{}
	err := a.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getReputation", common.HexToAddress(address))
	if err != nil {
		return domain.Reputation{}, domain.UnavailableError{Subsystem: "chain", Err: err}
	}
	if len(out) != 2 {
		return domain.Reputation{}, domain.UnavailableError{Subsystem: "chain", Err: fmt.Errorf("unexpected output arity %d", len(out))}
	}

	total, ok1 := out[0].(*big.Int)
	count, ok2 := out[1].(*big.Int)
	if !ok1 || !ok2 {
		return domain.Reputation{}, domain.UnavailableError{Subsystem: "chain", Err: fmt.Errorf("unexpected output types")}
	}

	rep := domain.Reputation{RatingCount: count.Int64()}
	if rep.RatingCount > 0 {
		rep.AverageScore = float64(total.Int64()) / float64(rep.RatingCount)
	}

	a.cache.Set(address, rep, gocache.DefaultExpiration)
	return rep, nil
}

// SubmitRating broadcasts a rating transaction and returns its hash.
// The caller must not assume the rating is final until WaitConfirmed
// succeeds for the returned hash.
func (a *Adapter) SubmitRating(ctx context.Context, address string, score int) (string, error) {
	if score < 1 || score > 5 {
		return "", domain.ValidationError{Field: "score", Reason: "must be between 1 and 5"}
	}

	opts, err := bind.NewKeyedTransactorWithChainID(a.key, a.chainID)
	if err != nil {
		return "", domain.UnavailableError{Subsystem: "chain", Err: err}
	}
	opts.Context = ctx

	tx, err := a.contract.Transact(opts, "submitRating", common.HexToAddress(address), uint8(score))
	if err != nil {
		return "", domain.UnavailableError{Subsystem: "chain", Err: err}
	}

	a.cache.Delete(address)
	return tx.Hash().Hex(), nil
}

// WaitConfirmed polls for the transaction receipt until the context
// deadline. Confirmation latency is unbounded, so the caller owns the
// deadline.
func (a *Adapter) WaitConfirmed(ctx context.Context, txHash string) error {
	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(receiptPollEvery)
	defer ticker.Stop()

	for {
		receipt, err := a.receipts.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted", txHash)
			}
			return nil
		}
		if err != ethereum.NotFound {
			return domain.UnavailableError{Subsystem: "chain", Err: err}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
