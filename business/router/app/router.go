// Package app implements the batch router: multi-pair swap execution
// with strict (all-or-nothing) and robust (per-leg isolation) modes.
package app

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	factoryapp "github.com/fd1az/nftswap-engine/business/factory/app"
	pairdomain "github.com/fd1az/nftswap-engine/business/pair/domain"
	"github.com/fd1az/nftswap-engine/business/router/domain"
	"github.com/fd1az/nftswap-engine/internal/apm"
	"github.com/fd1az/nftswap-engine/internal/apperror"
	"github.com/fd1az/nftswap-engine/internal/asset"
	"github.com/fd1az/nftswap-engine/internal/logger"
)

// Router executes ordered batches of swap instructions against pairs
// registered in one factory. A router is bound to a single settlement
// asset; it fronts buy budgets from its own account and refunds the
// unspent remainder at the end of every call. The router holds no
// state between calls.
type Router struct {
	address common.Address
	factory *factoryapp.Factory
	asset   *asset.Asset
	ledger  pairdomain.TokenLedger

	log    logger.LoggerInterface
	tracer apm.Tracer

	legsExecuted metric.Int64Counter
	legsSkipped  metric.Int64Counter
}

// NewRouter creates a router settling in the given asset. The router's
// address must be put on the factory allow-list before pairs will
// accept its calls.
func NewRouter(addr common.Address, f *factoryapp.Factory, a *asset.Asset, log logger.LoggerInterface) *Router {
	if log == nil {
		log = logger.Nop()
	}
	meter := otel.Meter("router")
	legsExecuted, _ := meter.Int64Counter("router.legs_executed")
	legsSkipped, _ := meter.Int64Counter("router.legs_skipped")

	return &Router{
		address:      addr,
		factory:      f,
		asset:        a,
		ledger:       f.LedgerFor(a),
		log:          log,
		tracer:       apm.NewTracer("router"),
		legsExecuted: legsExecuted,
		legsSkipped:  legsSkipped,
	}
}

// Address returns the router's settlement account.
func (r *Router) Address() common.Address {
	return r.address
}

// -----------------------------------------------------------------------------
// Strict batches: any leg failure rolls the whole batch back.
// -----------------------------------------------------------------------------

// SwapTokenForAnyItems executes buy legs in order, all-or-nothing.
func (r *Router) SwapTokenForAnyItems(ctx context.Context, call domain.CallParams, legs []domain.BuyAny, budget decimal.Decimal) (domain.Result, error) {
	return r.execute(ctx, call, plan{op: "swap_token_for_any_items", buysAny: legs, budget: budget})
}

// SwapTokenForSpecificItems executes named-item buy legs in order,
// all-or-nothing.
func (r *Router) SwapTokenForSpecificItems(ctx context.Context, call domain.CallParams, legs []domain.BuySpecific, budget decimal.Decimal) (domain.Result, error) {
	return r.execute(ctx, call, plan{op: "swap_token_for_specific_items", buysSpecific: legs, budget: budget})
}

// SwapItemsForToken executes sell legs in order, all-or-nothing.
// Proceeds are paid to call.TokenRecipient at the end of the call.
func (r *Router) SwapItemsForToken(ctx context.Context, call domain.CallParams, legs []domain.Sell) (domain.Result, error) {
	return r.execute(ctx, call, plan{op: "swap_items_for_token", sells: legs})
}

// SwapItemsForTokenAndTokenForItems sells first, then buys, drawing
// buy-side funds from the supplied budget plus the sale proceeds.
// All-or-nothing.
func (r *Router) SwapItemsForTokenAndTokenForItems(ctx context.Context, call domain.CallParams, sells []domain.Sell, buys []domain.BuySpecific, budget decimal.Decimal) (domain.Result, error) {
	return r.execute(ctx, call, plan{op: "swap_items_for_token_and_token_for_items", sells: sells, buysSpecific: buys, budget: budget})
}

// -----------------------------------------------------------------------------
// Robust batches: a failing leg is skipped, later legs still execute.
// -----------------------------------------------------------------------------

// RobustSwapTokenForAnyItems executes buy legs in order, skipping any
// leg that fails or whose MaxCost exceeds the remaining budget.
func (r *Router) RobustSwapTokenForAnyItems(ctx context.Context, call domain.CallParams, legs []domain.BuyAny, budget decimal.Decimal) (domain.Result, error) {
	return r.execute(ctx, call, plan{op: "robust_swap_token_for_any_items", buysAny: legs, budget: budget, robust: true})
}

// RobustSwapTokenForSpecificItems executes named-item buy legs in
// order, skipping failures.
func (r *Router) RobustSwapTokenForSpecificItems(ctx context.Context, call domain.CallParams, legs []domain.BuySpecific, budget decimal.Decimal) (domain.Result, error) {
	return r.execute(ctx, call, plan{op: "robust_swap_token_for_specific_items", buysSpecific: legs, budget: budget, robust: true})
}

// RobustSwapItemsForToken executes sell legs in order, skipping
// failures.
func (r *Router) RobustSwapItemsForToken(ctx context.Context, call domain.CallParams, legs []domain.Sell) (domain.Result, error) {
	return r.execute(ctx, call, plan{op: "robust_swap_items_for_token", sells: legs, robust: true})
}

// RobustSwapItemsForTokenAndTokenForItems sells first, then buys, with
// every leg isolated.
func (r *Router) RobustSwapItemsForTokenAndTokenForItems(ctx context.Context, call domain.CallParams, sells []domain.Sell, buys []domain.BuySpecific, budget decimal.Decimal) (domain.Result, error) {
	return r.execute(ctx, call, plan{op: "robust_swap_items_for_token_and_token_for_items", sells: sells, buysSpecific: buys, budget: budget, robust: true})
}

// -----------------------------------------------------------------------------
// Shared batch engine
// -----------------------------------------------------------------------------

// plan is one batch call: sell legs run before buy legs, robust selects
// the failure mode.
type plan struct {
	op           string
	sells        []domain.Sell
	buysAny      []domain.BuyAny
	buysSpecific []domain.BuySpecific
	budget       decimal.Decimal
	robust       bool
}

func (p plan) buyCount() int {
	return len(p.buysAny) + len(p.buysSpecific)
}

// execute runs the batch state machine: deadline check, sell legs, buy
// legs, refund. Strict mode snapshots the engine up front and restores
// it on the first leg failure; robust mode relies on pairs being
// validate-then-commit, so a failed leg has no effects to undo.
func (r *Router) execute(ctx context.Context, call domain.CallParams, p plan) (domain.Result, error) {
	ctx, span := r.tracer.StartSpanFromContext(ctx, "router."+p.op)
	defer span.End()
	span.SetAttributes(
		attribute.Int("batch.sell_legs", len(p.sells)),
		attribute.Int("batch.buy_legs", p.buyCount()),
		attribute.Bool("batch.robust", p.robust),
	)

	res := domain.Result{
		Spent:    decimal.Zero,
		Received: decimal.Zero,
		Refunded: decimal.Zero,
	}

	if !call.Deadline.IsZero() && time.Now().After(call.Deadline) {
		err := apperror.New(apperror.CodeExpired,
			apperror.WithContext("deadline "+call.Deadline.UTC().Format(time.RFC3339)))
		span.NoticeError(err)
		return res, err
	}

	// A batch with zero instructions is a no-op: the budget is never
	// pulled, so the caller keeps it in full.
	if p.buyCount() == 0 && len(p.sells) == 0 {
		return res, nil
	}

	if p.budget.IsNegative() {
		return res, apperror.Validation(apperror.CodeInvalidInput, "negative budget")
	}
	if err := r.checkBudget(p); err != nil {
		span.NoticeError(err)
		return res, err
	}

	var snap factoryapp.EngineState
	if !p.robust {
		snap = r.factory.SnapshotState()
	}
	abort := func(err error) (domain.Result, error) {
		if !p.robust {
			r.factory.RestoreState(snap)
		}
		span.NoticeError(err)
		return domain.Result{Spent: decimal.Zero, Received: decimal.Zero, Refunded: decimal.Zero}, err
	}

	// Working balance: pulled budget plus sale proceeds, drawn down by
	// buys, refunded at the end.
	working := decimal.Zero
	if p.buyCount() > 0 && p.budget.IsPositive() {
		if err := r.ledger.Transfer(call.Caller, r.address, r.amountOf(p.budget)); err != nil {
			return abort(err)
		}
		working = p.budget
	}

	for _, leg := range p.sells {
		out, err := r.execSell(ctx, call, leg)
		if err != nil {
			if p.robust {
				r.skipLeg(ctx, span, p.op, err)
				res.Skipped++
				continue
			}
			return abort(err)
		}
		working = working.Add(out)
		res.Received = res.Received.Add(out)
		res.Executed++
	}

	for _, leg := range p.buysAny {
		if p.robust && leg.MaxCost.GreaterThan(working) {
			r.skipLeg(ctx, span, p.op, apperror.New(apperror.CodeInsufficientBudget,
				apperror.WithContext("remaining budget below leg bound")))
			res.Skipped++
			continue
		}
		cost, err := r.execBuyAny(ctx, call, leg)
		if err != nil {
			if p.robust {
				r.skipLeg(ctx, span, p.op, err)
				res.Skipped++
				continue
			}
			return abort(err)
		}
		working = working.Sub(cost)
		res.Spent = res.Spent.Add(cost)
		res.Executed++
	}

	for _, leg := range p.buysSpecific {
		if p.robust && leg.MaxCost.GreaterThan(working) {
			r.skipLeg(ctx, span, p.op, apperror.New(apperror.CodeInsufficientBudget,
				apperror.WithContext("remaining budget below leg bound")))
			res.Skipped++
			continue
		}
		cost, err := r.execBuySpecific(ctx, call, leg)
		if err != nil {
			if p.robust {
				r.skipLeg(ctx, span, p.op, err)
				res.Skipped++
				continue
			}
			return abort(err)
		}
		working = working.Sub(cost)
		res.Spent = res.Spent.Add(cost)
		res.Executed++
	}

	// Refund the unspent working balance, sale proceeds included.
	if working.IsPositive() {
		if err := r.ledger.Transfer(r.address, call.TokenRecipient, r.amountOf(working)); err != nil {
			return abort(err)
		}
		res.Refunded = working
	}

	r.legsExecuted.Add(ctx, int64(res.Executed), metric.WithAttributes(attribute.String("op", p.op)))
	r.log.Debug(ctx, "batch executed",
		"op", p.op,
		"executed", res.Executed,
		"skipped", res.Skipped,
		"spent", res.Spent.String(),
		"received", res.Received.String(),
		"refunded", res.Refunded.String(),
	)
	return res, nil
}

// checkBudget enforces the up-front funding rule for buy batches. In
// strict mode the supplied budget plus the guaranteed sell proceeds
// must cover the sum of buy-leg bounds; in robust mode an unfunded buy
// batch is rejected outright and anything else is settled per leg.
func (r *Router) checkBudget(p plan) error {
	if p.buyCount() == 0 {
		return nil
	}
	if p.robust {
		if !p.budget.IsPositive() {
			return apperror.New(apperror.CodeInsufficientBudget,
				apperror.WithContext("buy batch with no budget"))
		}
		return nil
	}

	required := decimal.Zero
	for _, leg := range p.buysAny {
		required = required.Add(leg.MaxCost)
	}
	for _, leg := range p.buysSpecific {
		required = required.Add(leg.MaxCost)
	}
	cover := p.budget
	for _, leg := range p.sells {
		cover = cover.Add(leg.MinOutput)
	}
	if cover.LessThan(required) {
		return apperror.New(apperror.CodeInsufficientBudget,
			apperror.WithContext("supplied "+cover.String()+" below required "+required.String()))
	}
	return nil
}

func (r *Router) execSell(ctx context.Context, call domain.CallParams, leg domain.Sell) (decimal.Decimal, error) {
	ctx, span := r.tracer.StartSpanFromContext(ctx, "router.leg.sell")
	defer span.End()
	span.SetAttributes(attribute.String("leg.pair", leg.Pair.Hex()))

	p, err := r.resolvePair(leg.Pair)
	if err != nil {
		span.NoticeError(err)
		return decimal.Zero, err
	}
	req := pairdomain.SwapRequest{
		Caller:    call.Caller,
		Recipient: r.address,
		Router:    r.address,
	}
	out, err := p.SwapItemsForToken(ctx, req, leg.ItemIDs, r.amountOf(leg.MinOutput))
	if err != nil {
		span.NoticeError(err)
		return decimal.Zero, err
	}
	return out.Decimal(), nil
}

func (r *Router) execBuyAny(ctx context.Context, call domain.CallParams, leg domain.BuyAny) (decimal.Decimal, error) {
	ctx, span := r.tracer.StartSpanFromContext(ctx, "router.leg.buy_any")
	defer span.End()
	span.SetAttributes(attribute.String("leg.pair", leg.Pair.Hex()))

	p, err := r.resolvePair(leg.Pair)
	if err != nil {
		span.NoticeError(err)
		return decimal.Zero, err
	}
	req := pairdomain.SwapRequest{
		Caller:    call.Caller,
		Recipient: call.ItemRecipient,
		Router:    r.address,
	}
	cost, _, err := p.SwapTokenForAnyItems(ctx, req, leg.NumItems, r.amountOf(leg.MaxCost))
	if err != nil {
		span.NoticeError(err)
		return decimal.Zero, err
	}
	return cost.Decimal(), nil
}

func (r *Router) execBuySpecific(ctx context.Context, call domain.CallParams, leg domain.BuySpecific) (decimal.Decimal, error) {
	ctx, span := r.tracer.StartSpanFromContext(ctx, "router.leg.buy_specific")
	defer span.End()
	span.SetAttributes(attribute.String("leg.pair", leg.Pair.Hex()))

	p, err := r.resolvePair(leg.Pair)
	if err != nil {
		span.NoticeError(err)
		return decimal.Zero, err
	}
	req := pairdomain.SwapRequest{
		Caller:    call.Caller,
		Recipient: call.ItemRecipient,
		Router:    r.address,
	}
	cost, err := p.SwapTokenForSpecificItems(ctx, req, leg.ItemIDs, r.amountOf(leg.MaxCost))
	if err != nil {
		span.NoticeError(err)
		return decimal.Zero, err
	}
	return cost.Decimal(), nil
}

// resolvePair looks the pair up in the factory and checks it settles in
// the router's asset.
func (r *Router) resolvePair(addr common.Address) (*pairdomain.Pair, error) {
	p, err := r.factory.PairByAddress(addr)
	if err != nil {
		return nil, err
	}
	if !p.Asset().Equals(r.asset) {
		return nil, apperror.Validation(apperror.CodeInvalidInput,
			"pair settles in "+p.Asset().Symbol()+", router settles in "+r.asset.Symbol())
	}
	return p, nil
}

func (r *Router) skipLeg(ctx context.Context, span apm.Span, op string, err error) {
	span.AddEvent("leg skipped")
	r.legsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	r.log.Debug(ctx, "leg skipped", "op", op, "reason", err.Error())
}

func (r *Router) amountOf(v decimal.Decimal) asset.Amount {
	return asset.MustNewAmount(r.asset, v)
}
