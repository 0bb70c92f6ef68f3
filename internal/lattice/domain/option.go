// 包 二叉树期权定价服务的领域模型
package domain

import "strings"

// OptionType 期权类型
type OptionType string

const (
	OptionTypeCall OptionType = "CALL" // 看涨期权
	OptionTypePut  OptionType = "PUT"  // 看跌期权
)

// OptionStyle 行权方式
type OptionStyle string

const (
	OptionStyleEuropean OptionStyle = "EUROPEAN" // 仅到期日行权
	OptionStyleAmerican OptionStyle = "AMERICAN" // 允许提前行权
)

// Valid 判断期权类型是否为已知取值
func (t OptionType) Valid() bool {
	switch t {
	case OptionTypeCall, OptionTypePut:
		return true
	}
	return false
}

// Valid 判断行权方式是否为已知取值
func (s OptionStyle) Valid() bool {
	switch s {
	case OptionStyleEuropean, OptionStyleAmerican:
		return true
	}
	return false
}

// ParseOptionType 解析期权类型，大小写不敏感
func ParseOptionType(s string) (OptionType, error) {
	t := OptionType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", newConfigError(InvalidOptionKind, s)
	}
	return t, nil
}

// ParseOptionStyle 解析行权方式，大小写不敏感
func ParseOptionStyle(s string) (OptionStyle, error) {
	st := OptionStyle(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", newConfigError(InvalidOptionStyle, s)
	}
	return st, nil
}
