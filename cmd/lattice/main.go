package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/wyfcoding/binomialpricing/internal/lattice/application"
	"github.com/wyfcoding/binomialpricing/internal/lattice/domain"
	"github.com/wyfcoding/binomialpricing/internal/lattice/interfaces/console"
	configpkg "github.com/wyfcoding/binomialpricing/pkg/config"
	"github.com/wyfcoding/binomialpricing/pkg/logger"
	"github.com/wyfcoding/binomialpricing/pkg/metrics"
)

const BootstrapName = "lattice"

type flags struct {
	configPath  string
	dumpMetrics bool
	cmd         application.PriceLatticeCommand
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:   "lattice",
		Short: "Price a European or American option on a binomial lattice",
		Long: `lattice builds the stock price, payoff and option value trees for a single
option and prints them. Example:

  lattice --kind put --style american --strike 100 --spot 100 --up 1.2 --down 0.8 --rate 0.05 --maturity 2 --steps 2`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, cmd.Flags().Changed("config"), cmd.OutOrStdout())
		},
	}

	fs := root.Flags()
	fs.StringVar(&f.configPath, "config", configpkg.GetEnv("LATTICE_CONFIG", "configs/lattice.toml"), "path to TOML config")
	fs.BoolVar(&f.dumpMetrics, "dump-metrics", false, "print collected metrics after pricing")
	fs.StringVar(&f.cmd.Symbol, "symbol", "SAMPLE", "label for the priced contract")
	fs.StringVar(&f.cmd.OptionType, "kind", "put", "option kind: call or put")
	fs.StringVar(&f.cmd.OptionStyle, "style", "european", "exercise style: european or american")
	fs.Float64Var(&f.cmd.StrikePrice, "strike", 100, "strike price")
	fs.Float64Var(&f.cmd.UnderlyingPrice, "spot", 100, "current underlying price S0")
	fs.Float64Var(&f.cmd.UpFactor, "up", 1.2, "up move factor u")
	fs.Float64Var(&f.cmd.DownFactor, "down", 0.8, "down move factor v")
	fs.Float64Var(&f.cmd.RiskFreeRate, "rate", 0.05, "risk-free rate")
	fs.Float64Var(&f.cmd.Maturity, "maturity", 2, "time to maturity in years")
	fs.IntVar(&f.cmd.Steps, "steps", 2, "number of lattice steps")
	return root
}

// run 显式传入 --config 时配置文件必须存在，否则缺失时回退到默认配置
func run(ctx context.Context, f *flags, explicitConfig bool, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var cfg *configpkg.Config
	var err error
	if explicitConfig {
		cfg, err = configpkg.Load(f.configPath)
	} else {
		cfg, err = configpkg.LoadWithDefaults(f.configPath)
	}
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	reg := prometheus.NewRegistry()
	var recorder metrics.Recorder = metrics.NopRecorder{}
	if cfg.Metrics.Enabled {
		m := metrics.New(cfg.Metrics.Namespace, BootstrapName)
		if err := m.Register(reg); err != nil {
			return err
		}
		recorder = metrics.NewDefaultRecorder(m)
	}

	pricer := domain.NewBinomialPricer(domain.WithParallelism(cfg.Pricer.ParallelThreshold, cfg.Pricer.MaxWorkers))
	svc := application.NewLatticePricingService(pricer, recorder, cfg.Pricer.Precision)

	res, err := svc.PriceLattice(ctx, f.cmd)
	if err != nil {
		return err
	}

	if err := console.NewRenderer(out, int(cfg.Pricer.Precision), cfg.Pricer.DisplaySteps).Render(res); err != nil {
		return err
	}
	if f.dumpMetrics {
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
		return metrics.WriteText(out, reg)
	}
	return nil
}
