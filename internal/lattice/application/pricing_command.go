package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/binomialpricing/internal/lattice/domain"
	"github.com/wyfcoding/binomialpricing/pkg/logger"
	"github.com/wyfcoding/binomialpricing/pkg/metrics"
)

// ErrNonFiniteValue 树中数值溢出（如 S0*u^N 超出 float64 范围）或 u == v 时，公允价值为 NaN/Inf
var ErrNonFiniteValue = errors.New("non-finite option value")

// LatticePricingService 处理二叉树定价命令
type LatticePricingService struct {
	pricer    *domain.BinomialPricer
	recorder  metrics.Recorder
	precision int32
}

// NewLatticePricingService 创建新的 LatticePricingService 实例
// recorder 为 nil 时不记录指标
func NewLatticePricingService(pricer *domain.BinomialPricer, recorder metrics.Recorder, precision int32) *LatticePricingService {
	if pricer == nil {
		pricer = domain.NewBinomialPricer()
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &LatticePricingService{
		pricer:    pricer,
		recorder:  recorder,
		precision: precision,
	}
}

// PriceLattice 对单个期权构建二叉树并定价
func (s *LatticePricingService) PriceLattice(ctx context.Context, cmd PriceLatticeCommand) (*LatticePricingResult, error) {
	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)

	kind, err := domain.ParseOptionType(cmd.OptionType)
	if err != nil {
		s.fail(ctx, cmd, err)
		return nil, fmt.Errorf("price lattice %s: %w", cmd.Symbol, err)
	}
	style, err := domain.ParseOptionStyle(cmd.OptionStyle)
	if err != nil {
		s.fail(ctx, cmd, err)
		return nil, fmt.Errorf("price lattice %s: %w", cmd.Symbol, err)
	}

	in := domain.LatticeInput{
		Kind:         kind,
		Style:        style,
		Strike:       cmd.StrikePrice,
		S0:           cmd.UnderlyingPrice,
		Up:           cmd.UpFactor,
		Down:         cmd.DownFactor,
		RiskFreeRate: cmd.RiskFreeRate,
		Maturity:     cmd.Maturity,
		Steps:        cmd.Steps,
	}

	start := time.Now()
	lattices, err := s.pricer.Price(ctx, in)
	elapsed := time.Since(start)
	if err != nil {
		s.fail(ctx, cmd, err)
		return nil, fmt.Errorf("price lattice %s: %w", cmd.Symbol, err)
	}

	fair := lattices.FairValue()
	if math.IsNaN(fair) || math.IsInf(fair, 0) {
		err := fmt.Errorf("%w: %v", ErrNonFiniteValue, fair)
		s.fail(ctx, cmd, err)
		return nil, fmt.Errorf("price lattice %s: %w", cmd.Symbol, err)
	}
	s.recorder.RecordPricing(string(kind), string(style), metrics.ResultSuccess, elapsed.Seconds(), lattices.Value.Len())
	logger.Info(ctx, "lattice priced",
		"symbol", cmd.Symbol,
		"kind", kind,
		"style", style,
		"steps", cmd.Steps,
		"fair_value", fair,
		"duration", elapsed,
	)

	return &LatticePricingResult{
		RunID:        runID,
		Symbol:       cmd.Symbol,
		OptionType:   kind,
		OptionStyle:  style,
		Steps:        cmd.Steps,
		FairValue:    decimal.NewFromFloat(fair).Round(s.precision),
		Lattices:     lattices,
		CalculatedAt: time.Now().Unix(),
		Duration:     elapsed,
	}, nil
}

func (s *LatticePricingService) fail(ctx context.Context, cmd PriceLatticeCommand, err error) {
	kind, style := "UNKNOWN", "UNKNOWN"
	if t, perr := domain.ParseOptionType(cmd.OptionType); perr == nil {
		kind = string(t)
	}
	if st, perr := domain.ParseOptionStyle(cmd.OptionStyle); perr == nil {
		style = string(st)
	}
	s.recorder.RecordPricing(kind, style, metrics.ResultFailure, 0, 0)
	logger.Error(ctx, "lattice pricing failed", "symbol", cmd.Symbol, "error", err)
}

// BatchPriceLattices 批量定价，单个合约失败不影响其余合约
func (s *LatticePricingService) BatchPriceLattices(ctx context.Context, cmd BatchPriceLatticesCommand) (*BatchPricingResult, error) {
	if cmd.BatchID == "" {
		cmd.BatchID = uuid.NewString()
	}
	ctx = logger.ContextWithBatchID(ctx, cmd.BatchID)
	done := logger.LogDuration(ctx, "batch pricing finished", "contracts", len(cmd.Contracts))
	defer done()

	result := &BatchPricingResult{
		BatchID: cmd.BatchID,
		Results: make([]*LatticePricingResult, 0, len(cmd.Contracts)),
	}
	totalTime := 0.0

	for i, contract := range cmd.Contracts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		startTime := time.Now()
		res, err := s.PriceLattice(ctx, contract)
		totalTime += time.Since(startTime).Seconds()

		if err != nil {
			result.FailureCount++
			result.Failures = append(result.Failures, BatchFailure{Index: i, Symbol: contract.Symbol, Err: err})
			continue
		}
		result.Results = append(result.Results, res)
		result.SuccessCount++
	}

	if len(cmd.Contracts) > 0 {
		result.AverageTime = totalTime / float64(len(cmd.Contracts))
	}
	return result, nil
}
