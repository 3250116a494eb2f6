package solana

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/go-resty/resty/v2"
)

// Jupiter swap modes: ExactIn fixes the input amount, ExactOut the output amount.
const (
	SwapModeExactIn  = "ExactIn"
	SwapModeExactOut = "ExactOut"
)

type JupiterClient struct {
	Base   string
	RPC    *rpc.Client
	Owner  solana.PrivateKey
	Commit rpc.CommitmentType
	Http   *resty.Client
}

type Quote struct {
	InputMint      string  `json:"inputMint"`
	OutputMint     string  `json:"outputMint"`
	InAmount       string  `json:"inAmount"`
	OutAmount      string  `json:"outAmount"`
	OtherAmount    string  `json:"otherAmountThreshold"`
	SwapMode       string  `json:"swapMode"`
	SlippageBps    int     `json:"slippageBps"`
	RoutePlan      any     `json:"routePlan"`
	PriceImpactPct string  `json:"priceImpactPct"`
	ContextSlot    uint64  `json:"contextSlot,omitempty"`
	TimeTaken      float64 `json:"timeTaken,omitempty"`
}

type swapRequest struct {
	UserPublicKey             string `json:"userPublicKey"`
	WrapAndUnwrapSol          bool   `json:"wrapAndUnwrapSol"`
	AsLegacyTransaction       bool   `json:"asLegacyTransaction"`
	UseTokenLedger            bool   `json:"useTokenLedger"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
	QuoteResponse             *Quote `json:"quoteResponse"`
}

func NewJupiterClient(rpcURL, base string, owner solana.PrivateKey, commit string) *JupiterClient {
	c := rpc.CommitmentConfirmed
	switch commit {
	case "processed":
		c = rpc.CommitmentProcessed
	case "finalized":
		c = rpc.CommitmentFinalized
	}
	return &JupiterClient{
		Base:   base,
		RPC:    rpc.New(rpcURL),
		Owner:  owner,
		Commit: c,
		Http:   resty.New().SetBaseURL(base).SetTimeout(8 * time.Second),
	}
}

// GetQuote asks Jupiter for the best route. amount is in smallest units of the input mint for
// ExactIn and of the output mint for ExactOut.
func (j *JupiterClient) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int, swapMode string) (*Quote, error) {
	if swapMode == "" {
		swapMode = SwapModeExactIn
	}
	var out Quote
	resp, err := j.Http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":        inputMint,
			"outputMint":       outputMint,
			"amount":           strconv.FormatUint(amount, 10),
			"slippageBps":      strconv.Itoa(slippageBps),
			"swapMode":         swapMode,
			"onlyDirectRoutes": "false",
		}).
		SetResult(&out).
		Get("/v6/quote")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("jupiter quote status %d: %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}

// BuildAndSendSwap asks Jupiter for a ready-to-sign transaction, signs it locally, then submits via RPC.
func (j *JupiterClient) BuildAndSendSwap(ctx context.Context, quote *Quote) (sig solana.Signature, err error) {
	var sr struct {
		SwapTransaction string `json:"swapTransaction"` // base64-encoded tx (unsigned)
	}
	resp, err := j.Http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(swapRequest{
			UserPublicKey:    j.Owner.PublicKey().String(),
			WrapAndUnwrapSol: true,
			QuoteResponse:    quote,
		}).
		Post("/v6/swap")
	if err != nil {
		return sig, err
	}
	if resp.StatusCode() != 200 {
		return sig, fmt.Errorf("jupiter swap status %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return sig, fmt.Errorf("decode swap response: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(sr.SwapTransaction)
	if err != nil {
		return sig, fmt.Errorf("decode tx: %w", err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return sig, fmt.Errorf("unmarshal tx: %w", err)
	}

	// Jupiter ships placeholder signatures; the wallet is the only signer.
	tx.Signatures = nil
	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(j.Owner.PublicKey()) {
			return &j.Owner
		}
		return nil
	})
	if err != nil {
		return sig, fmt.Errorf("sign: %w", err)
	}

	sig, err = j.RPC.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: j.Commit,
	})
	return sig, err
}
