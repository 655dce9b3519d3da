package domain

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/nftswap-engine/business/curve"
	"github.com/fd1az/nftswap-engine/internal/apperror"
	"github.com/fd1az/nftswap-engine/internal/asset"
)

// maxTradeFee caps the owner-set trade fee at 90%.
var maxTradeFee = decimal.RequireFromString("0.9")

// Config carries everything needed to construct a Pair.
type Config struct {
	Address        common.Address
	Owner          common.Address
	PoolType       PoolType
	Asset          *asset.Asset
	Collection     *asset.Collection
	Curve          curve.Curve
	SpotPrice      decimal.Decimal
	Delta          decimal.Decimal
	Fee            decimal.Decimal
	AssetRecipient common.Address
	Inventory      Inventory

	Ledger   TokenLedger
	Vault    ItemVault
	Protocol ProtocolConfig
	Sink     EventSink
}

// Pair is the trading aggregate: one collection against one fungible
// asset, priced by a bonding curve. All swaps are validate-then-commit
// under a single mutex, so a failed swap leaves no partial state.
type Pair struct {
	mu sync.Mutex

	address        common.Address
	owner          common.Address
	poolType       PoolType
	asset          *asset.Asset
	collection     *asset.Collection
	curve          curve.Curve
	assetRecipient common.Address

	spotPrice decimal.Decimal
	delta     decimal.Decimal
	fee       decimal.Decimal
	inventory Inventory

	ledger   TokenLedger
	vault    ItemVault
	protocol ProtocolConfig
	sink     EventSink
}

// NewPair validates the configuration and constructs the aggregate.
// TRADE pools default their asset recipient to the pair itself so fees
// and proceeds compound into the pool.
func NewPair(cfg Config) (*Pair, error) {
	if !cfg.PoolType.Valid() {
		return nil, apperror.New(apperror.CodePoolTypeInvalid)
	}
	if cfg.Asset == nil || cfg.Collection == nil {
		return nil, apperror.Validation(apperror.CodeRequiredField, "pair asset and collection")
	}
	if cfg.Curve == nil {
		return nil, apperror.Validation(apperror.CodeRequiredField, "pair curve")
	}
	if cfg.Ledger == nil || cfg.Vault == nil || cfg.Protocol == nil {
		return nil, apperror.Validation(apperror.CodeRequiredField, "pair settlement ports")
	}
	if !cfg.Curve.ValidateDelta(cfg.Delta) {
		return nil, apperror.Validation(apperror.CodeOutOfBounds, "delta not representable for curve "+cfg.Curve.Name())
	}
	if !cfg.Curve.ValidateSpotPrice(cfg.SpotPrice) {
		return nil, apperror.Validation(apperror.CodeOutOfBounds, "spot price not representable for curve "+cfg.Curve.Name())
	}
	if cfg.PoolType != PoolTypeTrade && !cfg.Fee.IsZero() {
		return nil, apperror.Validation(apperror.CodePoolTypeInvalid, "only TRADE pools carry a trade fee")
	}
	if cfg.Fee.IsNegative() || cfg.Fee.GreaterThanOrEqual(maxTradeFee) {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "trade fee must be in [0, 0.9)")
	}

	recipient := cfg.AssetRecipient
	if cfg.PoolType == PoolTypeTrade {
		recipient = cfg.Address
	} else if recipient == (common.Address{}) {
		recipient = cfg.Address
	}

	inv := cfg.Inventory
	if inv == nil {
		inv = NewOrderedInventory()
	}
	sink := cfg.Sink
	if sink == nil {
		sink = NopSink{}
	}

	return &Pair{
		address:        cfg.Address,
		owner:          cfg.Owner,
		poolType:       cfg.PoolType,
		asset:          cfg.Asset,
		collection:     cfg.Collection,
		curve:          cfg.Curve,
		assetRecipient: recipient,
		spotPrice:      cfg.SpotPrice,
		delta:          cfg.Delta,
		fee:            cfg.Fee,
		inventory:      inv,
		ledger:         cfg.Ledger,
		vault:          cfg.Vault,
		protocol:       cfg.Protocol,
		sink:           sink,
	}, nil
}

// SwapRequest identifies the parties to a swap. Router is the routing
// account fronting the funds, or zero for a direct swap; when set it
// must be on the factory allow-list.
type SwapRequest struct {
	Caller    common.Address
	Recipient common.Address
	Router    common.Address
}

// payer is the account debited on buys and credited on sells.
func (r SwapRequest) payer() common.Address {
	if r.Router != (common.Address{}) {
		return r.Router
	}
	return r.Caller
}

// SwapTokenForAnyItems buys numItems items chosen by the pair's
// inventory strategy. Returns the total input charged and the ids
// transferred. Fails with SLIPPAGE when the input exceeds maxCost and
// OUT_OF_STOCK when the pair holds fewer than numItems items.
func (p *Pair) SwapTokenForAnyItems(ctx context.Context, req SwapRequest, numItems int, maxCost asset.Amount) (asset.Amount, []uint64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkBuySide(req); err != nil {
		return asset.Amount{}, nil, err
	}
	ids, err := p.inventory.First(numItems)
	if err != nil {
		return asset.Amount{}, nil, err
	}
	input, quote, err := p.validateBuy(req, len(ids), maxCost)
	if err != nil {
		return asset.Amount{}, nil, err
	}
	if err := p.commitBuy(req, ids, input, quote); err != nil {
		return asset.Amount{}, nil, err
	}
	return input, ids, nil
}

// SwapTokenForSpecificItems buys exactly the listed items. Fails with
// ITEM_UNAVAILABLE if any id is not held by the pair; no partial fill.
func (p *Pair) SwapTokenForSpecificItems(ctx context.Context, req SwapRequest, itemIDs []uint64, maxCost asset.Amount) (asset.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.checkBuySide(req); err != nil {
		return asset.Amount{}, err
	}
	if len(itemIDs) == 0 {
		return asset.Amount{}, apperror.Validation(apperror.CodeInvalidInput, "empty item list")
	}
	for _, id := range itemIDs {
		if !p.inventory.Holds(id) {
			return asset.Amount{}, apperror.New(apperror.CodeItemUnavailable,
				apperror.WithContext(p.collection.Symbol()))
		}
	}
	input, quote, err := p.validateBuy(req, len(itemIDs), maxCost)
	if err != nil {
		return asset.Amount{}, err
	}
	if err := p.commitBuy(req, itemIDs, input, quote); err != nil {
		return asset.Amount{}, err
	}
	return input, nil
}

// SwapItemsForToken sells the listed items into the pair. Returns the
// net output credited to the recipient. Fails with SLIPPAGE when the
// output falls below minOutput.
func (p *Pair) SwapItemsForToken(ctx context.Context, req SwapRequest, itemIDs []uint64, minOutput asset.Amount) (asset.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.poolType.AllowsItemSells() {
		return asset.Amount{}, apperror.Validation(apperror.CodePoolTypeInvalid,
			p.poolType.String()+" pool does not buy items")
	}
	if err := p.checkRouter(req); err != nil {
		return asset.Amount{}, err
	}
	if len(itemIDs) == 0 {
		return asset.Amount{}, apperror.Validation(apperror.CodeInvalidInput, "empty item list")
	}
	for _, id := range itemIDs {
		owner, ok := p.vault.OwnerOf(id)
		if !ok || owner != req.Caller {
			return asset.Amount{}, apperror.New(apperror.CodeItemNotOwned,
				apperror.WithContext(p.collection.Symbol()))
		}
	}

	quote, err := p.curve.SellInfo(p.spotPrice, p.delta, len(itemIDs), p.fee, p.protocol.ProtocolFeeMultiplier())
	if err != nil {
		return asset.Amount{}, err
	}
	output := p.amountOf(quote.Value)

	if minOutput.Asset() != nil {
		below, err := output.LessThan(minOutput)
		if err != nil {
			return asset.Amount{}, apperror.Wrap(err, apperror.CodeInvalidInput, "minOutput asset")
		}
		if below {
			return asset.Amount{}, apperror.New(apperror.CodeSlippage,
				apperror.WithContext("output "+output.String()+" below minimum "+minOutput.String()))
		}
	}

	// The pair pays the output and the protocol fee from its balance;
	// the trade fee simply stays behind.
	owed := output.MustAdd(p.amountOf(quote.ProtocolFee))
	solvent, err := p.ledger.BalanceOf(p.address).GreaterThanOrEqual(owed)
	if err != nil {
		return asset.Amount{}, apperror.Wrap(err, apperror.CodeInternalError, "pair balance")
	}
	if !solvent {
		return asset.Amount{}, apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContext("pair cannot cover sell output"))
	}

	// Commit.
	if err := p.vault.Transfer(req.Caller, p.assetRecipient, itemIDs); err != nil {
		return asset.Amount{}, err
	}
	if p.assetRecipient == p.address {
		p.inventory.Add(itemIDs)
	}
	if err := p.ledger.Transfer(p.address, req.Recipient, output); err != nil {
		return asset.Amount{}, err
	}
	if quote.ProtocolFee.IsPositive() {
		if err := p.ledger.Transfer(p.address, p.protocol.ProtocolFeeRecipient(), p.amountOf(quote.ProtocolFee)); err != nil {
			return asset.Amount{}, err
		}
	}
	p.applySpotPrice(quote.NewSpotPrice)
	p.sink.SwapExecuted(SwapEvent{
		Pair:         p.address,
		Direction:    DirectionItemsForToken,
		Caller:       req.Caller,
		ItemIDs:      itemIDs,
		Value:        quote.Value,
		TradeFee:     quote.TradeFee,
		ProtocolFee:  quote.ProtocolFee,
		NewSpotPrice: quote.NewSpotPrice,
	})
	return output, nil
}

// QuoteBuy prices buying numItems without touching state.
func (p *Pair) QuoteBuy(numItems int) (curve.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.poolType.AllowsItemBuys() {
		return curve.Quote{}, apperror.Validation(apperror.CodePoolTypeInvalid,
			p.poolType.String()+" pool does not sell items")
	}
	return p.curve.BuyInfo(p.spotPrice, p.delta, numItems, p.fee, p.protocol.ProtocolFeeMultiplier())
}

// QuoteSell prices selling numItems without touching state.
func (p *Pair) QuoteSell(numItems int) (curve.Quote, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.poolType.AllowsItemSells() {
		return curve.Quote{}, apperror.Validation(apperror.CodePoolTypeInvalid,
			p.poolType.String()+" pool does not buy items")
	}
	return p.curve.SellInfo(p.spotPrice, p.delta, numItems, p.fee, p.protocol.ProtocolFeeMultiplier())
}

func (p *Pair) checkBuySide(req SwapRequest) error {
	if !p.poolType.AllowsItemBuys() {
		return apperror.Validation(apperror.CodePoolTypeInvalid,
			p.poolType.String()+" pool does not sell items")
	}
	return p.checkRouter(req)
}

func (p *Pair) checkRouter(req SwapRequest) error {
	if req.Router == (common.Address{}) {
		return nil
	}
	if !p.protocol.CallAllowed(req.Router) {
		return apperror.New(apperror.CodeUntrustedRouter,
			apperror.WithContext(req.Router.Hex()))
	}
	return nil
}

// validateBuy prices the buy and checks slippage and payer funds. No
// state is touched.
func (p *Pair) validateBuy(req SwapRequest, numItems int, maxCost asset.Amount) (asset.Amount, curve.Quote, error) {
	quote, err := p.curve.BuyInfo(p.spotPrice, p.delta, numItems, p.fee, p.protocol.ProtocolFeeMultiplier())
	if err != nil {
		return asset.Amount{}, curve.Quote{}, err
	}
	input := p.amountOf(quote.Value)

	if maxCost.Asset() != nil {
		over, err := input.GreaterThan(maxCost)
		if err != nil {
			return asset.Amount{}, curve.Quote{}, apperror.Wrap(err, apperror.CodeInvalidInput, "maxCost asset")
		}
		if over {
			return asset.Amount{}, curve.Quote{}, apperror.New(apperror.CodeSlippage,
				apperror.WithContext("input "+input.String()+" exceeds maximum "+maxCost.String()))
		}
	}

	funded, err := p.ledger.BalanceOf(req.payer()).GreaterThanOrEqual(input)
	if err != nil {
		return asset.Amount{}, curve.Quote{}, apperror.Wrap(err, apperror.CodeInternalError, "payer balance")
	}
	if !funded {
		return asset.Amount{}, curve.Quote{}, apperror.New(apperror.CodeInsufficientBalance,
			apperror.WithContext("payer cannot cover "+input.String()))
	}
	return input, quote, nil
}

// commitBuy settles a validated buy: input in, fees out, items out,
// spot price stepped.
func (p *Pair) commitBuy(req SwapRequest, ids []uint64, input asset.Amount, quote curve.Quote) error {
	if err := p.ledger.Transfer(req.payer(), p.address, input); err != nil {
		return err
	}
	if quote.ProtocolFee.IsPositive() {
		if err := p.ledger.Transfer(p.address, p.protocol.ProtocolFeeRecipient(), p.amountOf(quote.ProtocolFee)); err != nil {
			return err
		}
	}
	if p.assetRecipient != p.address {
		proceeds := p.amountOf(quote.Raw(true).Add(quote.TradeFee))
		if err := p.ledger.Transfer(p.address, p.assetRecipient, proceeds); err != nil {
			return err
		}
	}
	if err := p.vault.Transfer(p.address, req.Recipient, ids); err != nil {
		return err
	}
	if err := p.inventory.Remove(ids); err != nil {
		return err
	}
	p.applySpotPrice(quote.NewSpotPrice)
	p.sink.SwapExecuted(SwapEvent{
		Pair:         p.address,
		Direction:    DirectionTokenForItems,
		Caller:       req.Caller,
		ItemIDs:      ids,
		Value:        quote.Value,
		TradeFee:     quote.TradeFee,
		ProtocolFee:  quote.ProtocolFee,
		NewSpotPrice: quote.NewSpotPrice,
	})
	return nil
}

func (p *Pair) applySpotPrice(newSpot decimal.Decimal) {
	if newSpot.Equal(p.spotPrice) {
		return
	}
	old := p.spotPrice
	p.spotPrice = newSpot
	p.sink.SpotPriceUpdated(SpotPriceEvent{Pair: p.address, OldSpotPrice: old, NewSpotPrice: newSpot})
}

func (p *Pair) amountOf(v decimal.Decimal) asset.Amount {
	return asset.MustNewAmount(p.asset, v)
}

// -----------------------------------------------------------------------------
// Owner operations
// -----------------------------------------------------------------------------

func (p *Pair) requireOwner(caller common.Address) error {
	if caller != p.owner {
		return apperror.New(apperror.CodeUntrustedCaller,
			apperror.WithContext(caller.Hex()))
	}
	return nil
}

// SetSpotPrice reprices the pair. Owner only.
func (p *Pair) SetSpotPrice(caller common.Address, newSpot decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if !p.curve.ValidateSpotPrice(newSpot) {
		return apperror.Validation(apperror.CodeOutOfBounds, "spot price not representable for curve "+p.curve.Name())
	}
	p.applySpotPrice(newSpot)
	return nil
}

// SetDelta changes the curve step. Owner only.
func (p *Pair) SetDelta(caller common.Address, newDelta decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if !p.curve.ValidateDelta(newDelta) {
		return apperror.Validation(apperror.CodeOutOfBounds, "delta not representable for curve "+p.curve.Name())
	}
	p.delta = newDelta
	return nil
}

// SetFee changes the trade fee. Owner only, TRADE pools only.
func (p *Pair) SetFee(caller common.Address, newFee decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if p.poolType != PoolTypeTrade {
		return apperror.Validation(apperror.CodePoolTypeInvalid, "only TRADE pools carry a trade fee")
	}
	if newFee.IsNegative() || newFee.GreaterThanOrEqual(maxTradeFee) {
		return apperror.Validation(apperror.CodeInvalidInput, "trade fee must be in [0, 0.9)")
	}
	p.fee = newFee
	return nil
}

// SetAssetRecipient redirects pool proceeds. Owner only; TRADE pools
// always compound into themselves.
func (p *Pair) SetAssetRecipient(caller common.Address, recipient common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if p.poolType == PoolTypeTrade {
		return apperror.Validation(apperror.CodePoolTypeInvalid, "TRADE pools compound into the pair")
	}
	if recipient == (common.Address{}) {
		recipient = p.address
	}
	p.assetRecipient = recipient
	return nil
}

// DepositItems moves items from any holder into the pair inventory.
func (p *Pair) DepositItems(from common.Address, ids []uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.vault.Transfer(from, p.address, ids); err != nil {
		return err
	}
	p.inventory.Add(ids)
	return nil
}

// DepositToken moves fungible balance from any holder into the pair.
func (p *Pair) DepositToken(from common.Address, amount asset.Amount) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ledger.Transfer(from, p.address, amount)
}

// WithdrawItems removes items from the pair. Owner only.
func (p *Pair) WithdrawItems(caller, to common.Address, ids []uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	if err := p.inventory.Remove(ids); err != nil {
		return err
	}
	return p.vault.Transfer(p.address, to, ids)
}

// WithdrawToken removes fungible balance from the pair. Owner only.
func (p *Pair) WithdrawToken(caller, to common.Address, amount asset.Amount) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.requireOwner(caller); err != nil {
		return err
	}
	return p.ledger.Transfer(p.address, to, amount)
}

// -----------------------------------------------------------------------------
// Accessors and transaction support
// -----------------------------------------------------------------------------

func (p *Pair) Address() common.Address   { return p.address }
func (p *Pair) Owner() common.Address     { return p.owner }
func (p *Pair) Type() PoolType            { return p.poolType }
func (p *Pair) Asset() *asset.Asset       { return p.asset }
func (p *Pair) Collection() *asset.Collection { return p.collection }
func (p *Pair) Curve() curve.Curve        { return p.curve }

func (p *Pair) SpotPrice() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spotPrice
}

func (p *Pair) Delta() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delta
}

func (p *Pair) Fee() decimal.Decimal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fee
}

func (p *Pair) AssetRecipient() common.Address {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.assetRecipient
}

// HeldItems enumerates the pair inventory in selection order.
func (p *Pair) HeldItems() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inventory.Items()
}

// InventoryCount returns how many items the pair holds.
func (p *Pair) InventoryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inventory.Count()
}

// Balance returns the pair's fungible balance.
func (p *Pair) Balance() asset.Amount {
	return p.ledger.BalanceOf(p.address)
}

// State is a point-in-time copy of the mutable pair state, used by the
// strict-batch transaction boundary to roll back failed batches.
type State struct {
	SpotPrice decimal.Decimal
	Delta     decimal.Decimal
	Fee       decimal.Decimal
	Inventory Inventory
}

// Snapshot captures the mutable state.
func (p *Pair) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		SpotPrice: p.spotPrice,
		Delta:     p.delta,
		Fee:       p.fee,
		Inventory: p.inventory.Clone(),
	}
}

// Restore rewinds the mutable state to a snapshot.
func (p *Pair) Restore(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spotPrice = s.SpotPrice
	p.delta = s.Delta
	p.fee = s.Fee
	p.inventory = s.Inventory.Clone()
}
