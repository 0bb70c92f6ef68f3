package domain

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// LatticeInput 二叉树模型输入
type LatticeInput struct {
	Kind         OptionType  // 期权类型
	Style        OptionStyle // 行权方式
	Strike       float64     // 执行价格
	S0           float64     // 标的资产当前价格
	Up           float64     // 上涨因子 u
	Down         float64     // 下跌因子 v
	RiskFreeRate float64     // 无风险利率
	Maturity     float64     // 到期时间 (年)
	Steps        int         // 步数 N
}

// LatticeResult 二叉树模型输出，三棵树共用 (i, j) 下标
type LatticeResult struct {
	Stock  *Lattice // 标的价格树
	Payoff *Lattice // 内在价值树
	Value  *Lattice // 期权价值树
}

// FairValue 返回根节点的期权价值，即当前公允价值
func (r *LatticeResult) FairValue() float64 {
	return r.Value.At(0, 0)
}

// BinomialPricer 实现了二叉树（CRR 形式的复制组合）定价
// 对较大的步数，逆推阶段按层并行计算。
type BinomialPricer struct {
	parallelThreshold int
	maxWorkers        int
}

// PricerOption 定价器选项
type PricerOption func(*BinomialPricer)

// WithParallelism 设置并行逆推：单层节点数不少于 threshold 时，
// 使用至多 workers 个 goroutine。threshold <= 0 表示关闭并行，workers <= 0 取 GOMAXPROCS。
func WithParallelism(threshold, workers int) PricerOption {
	return func(p *BinomialPricer) {
		p.parallelThreshold = threshold
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}
		p.maxWorkers = workers
	}
}

func NewBinomialPricer(opts ...PricerOption) *BinomialPricer {
	p := &BinomialPricer{maxWorkers: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PriceLattice 使用顺序实现对单个期权定价
func PriceLattice(in LatticeInput) (*LatticeResult, error) {
	return NewBinomialPricer().Price(context.Background(), in)
}

// Price 构建标的价格树与内在价值树，再自到期日逆推期权价值
// u == v 属于调用方的前置条件错误，不做检查。
func (p *BinomialPricer) Price(ctx context.Context, in LatticeInput) (*LatticeResult, error) {
	if !in.Kind.Valid() {
		return nil, newConfigError(InvalidOptionKind, in.Kind)
	}
	if !in.Style.Valid() {
		return nil, newConfigError(InvalidOptionStyle, in.Style)
	}
	if in.Steps < 0 {
		return nil, newConfigError(InvalidSteps, in.Steps)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := in.Steps
	res := &LatticeResult{
		Stock:  newLattice(n),
		Payoff: newLattice(n),
		Value:  newLattice(n),
	}
	intrinsic := func(s float64) float64 {
		v, _ := Payoff(in.Kind, s, in.Strike)
		return v
	}

	for i := 0; i <= n; i++ {
		for j := 0; j <= i; j++ {
			s := in.S0 * math.Pow(in.Up, float64(i-j)) * math.Pow(in.Down, float64(j))
			res.Stock.set(i, j, s)
			res.Payoff.set(i, j, intrinsic(s))
		}
	}

	// 到期日两种行权方式一致
	copy(res.Value.layer(n), res.Payoff.layer(n))
	if n == 0 {
		return res, nil
	}

	dt := in.Maturity / float64(n)
	step := inductionStep{
		up:       in.Up,
		down:     in.Down,
		spread:   in.Up - in.Down,
		growth:   math.Exp(in.RiskFreeRate * dt),
		american: in.Style == OptionStyleAmerican,
	}

	for i := n; i >= 1; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next := res.Value.layer(i)
		cur := res.Value.layer(i - 1)
		exercise := res.Payoff.layer(i - 1)

		if p.parallelThreshold <= 0 || p.maxWorkers <= 1 || i < p.parallelThreshold {
			step.apply(cur, next, exercise, 0, i)
			continue
		}
		if err := p.applyParallel(ctx, step, cur, next, exercise, i); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// applyParallel 将一层的节点切成连续区间并发计算，Wait 即层间屏障
func (p *BinomialPricer) applyParallel(ctx context.Context, step inductionStep, cur, next, exercise []float64, width int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers)

	chunk := (width + p.maxWorkers - 1) / p.maxWorkers
	for lo := 0; lo < width; lo += chunk {
		lo := lo // per-iteration copy; go 1.21 loop variables are shared across iterations
		hi := min(lo+chunk, width)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			step.apply(cur, next, exercise, lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// inductionStep 单步逆推所需的常量
type inductionStep struct {
	up, down float64
	spread   float64 // u - v
	growth   float64 // exp(r * dt)
	american bool
}

// apply 计算 cur[lo:hi]，next 为上一层（更靠近到期日）的期权价值
// next[j] 是上涨后继节点，next[j+1] 是下跌后继节点
func (s inductionStep) apply(cur, next, exercise []float64, lo, hi int) {
	for j := lo; j < hi; j++ {
		vu, vd := next[j], next[j+1]
		cont := (vu-vd)/s.spread + (s.up*vd-s.down*vu)/(s.spread*s.growth)
		if s.american {
			cont = math.Max(cont, exercise[j])
		}
		cur[j] = cont
	}
}
