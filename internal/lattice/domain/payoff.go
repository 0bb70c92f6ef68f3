package domain

import "math"

// Payoff 计算期权的内在价值（立即行权收益）
func Payoff(kind OptionType, assetPrice, strike float64) (float64, error) {
	switch kind {
	case OptionTypeCall:
		return math.Max(0, assetPrice-strike), nil
	case OptionTypePut:
		return math.Max(0, strike-assetPrice), nil
	default:
		return 0, newConfigError(InvalidOptionKind, kind)
	}
}

