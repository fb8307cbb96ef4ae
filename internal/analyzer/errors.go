package analyzer

import (
	"github.com/go-kratos/kratos/v2/errors"
)

// 两类失败的 reason
const (
	ReasonTransport = "TRANSPORT_ERROR"
	ReasonParse     = "PARSE_ERROR"
)

// newTransportError 模型服务调用未完成：网络、鉴权、配额
func newTransportError(cause error) error {
	return errors.ServiceUnavailable(ReasonTransport, "completion service call failed").WithCause(cause)
}

// newParseError 响应文本没有得到符合结构的值
func newParseError(cause error) error {
	return errors.New(422, ReasonParse, "response did not match the expected schema").WithCause(cause)
}

// IsTransportError 判断是否为模型服务调用失败
func IsTransportError(err error) bool {
	return err != nil && errors.Reason(err) == ReasonTransport
}

// IsParseError 判断是否为响应解析失败
func IsParseError(err error) bool {
	return err != nil && errors.Reason(err) == ReasonParse
}
