package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/binomialpricing/internal/lattice/domain"
)

// PriceLatticeCommand 二叉树定价命令
type PriceLatticeCommand struct {
	Symbol          string
	OptionType      string // CALL / PUT，大小写不敏感
	OptionStyle     string // EUROPEAN / AMERICAN，大小写不敏感
	StrikePrice     float64
	UnderlyingPrice float64
	UpFactor        float64
	DownFactor      float64
	RiskFreeRate    float64
	Maturity        float64 // 年
	Steps           int
}

// BatchPriceLatticesCommand 批量定价命令
type BatchPriceLatticesCommand struct {
	BatchID   string
	Contracts []PriceLatticeCommand
}

// LatticePricingResult 单次定价结果
type LatticePricingResult struct {
	RunID        string
	Symbol       string
	OptionType   domain.OptionType
	OptionStyle  domain.OptionStyle
	Steps        int
	FairValue    decimal.Decimal
	Lattices     *domain.LatticeResult
	CalculatedAt int64
	Duration     time.Duration
}

// BatchFailure 批量定价中失败的合约
type BatchFailure struct {
	Index  int
	Symbol string
	Err    error
}

// BatchPricingResult 批量定价结果
type BatchPricingResult struct {
	BatchID      string
	Results      []*LatticePricingResult
	Failures     []BatchFailure
	SuccessCount int
	FailureCount int
	AverageTime  float64
}
