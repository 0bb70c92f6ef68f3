package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOptionKind  = errors.New("invalid option kind")
	ErrInvalidOptionStyle = errors.New("invalid option style")
	ErrInvalidSteps       = errors.New("invalid number of steps")
)

// ConfigErrorCode 参数错误类别
type ConfigErrorCode int

const (
	InvalidOptionKind ConfigErrorCode = iota + 1
	InvalidOptionStyle
	InvalidSteps
)

func (c ConfigErrorCode) String() string {
	switch c {
	case InvalidOptionKind:
		return "InvalidOptionKind"
	case InvalidOptionStyle:
		return "InvalidOptionStyle"
	case InvalidSteps:
		return "InvalidSteps"
	default:
		return fmt.Sprintf("ConfigErrorCode(%d)", int(c))
	}
}

// ConfigError 定价参数错误
// 属于调用方的前置条件错误，重试无意义，直接向上传递
type ConfigError struct {
	Code  ConfigErrorCode
	Value string
}

func newConfigError(code ConfigErrorCode, value any) *ConfigError {
	return &ConfigError{Code: code, Value: fmt.Sprint(value)}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %q", e.Unwrap(), e.Value)
}

// Unwrap 返回对应的哨兵错误，便于 errors.Is 判断
func (e *ConfigError) Unwrap() error {
	switch e.Code {
	case InvalidOptionKind:
		return ErrInvalidOptionKind
	case InvalidOptionStyle:
		return ErrInvalidOptionStyle
	case InvalidSteps:
		return ErrInvalidSteps
	default:
		return nil
	}
}
