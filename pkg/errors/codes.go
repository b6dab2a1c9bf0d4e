package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeValidation         ErrorCode = "COMMON_008"
	ErrCodeSerialization      ErrorCode = "COMMON_009"
	ErrCodeDatabaseError      ErrorCode = "COMMON_010"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeExternalService    ErrorCode = "COMMON_012"
)

// Condition module error codes.
const (
	ErrCodeConditionNotFound      ErrorCode = "COND_001"
	ErrCodeConditionTextEmpty     ErrorCode = "COND_002"
	ErrCodeConditionStatusInvalid ErrorCode = "COND_003"
	ErrCodeCategoryInvalid        ErrorCode = "COND_004"
)

// Accumulation module error codes.
const (
	ErrCodeRuleInvalid       ErrorCode = "ACC_001"
	ErrCodeRuleNotFound      ErrorCode = "ACC_002"
	ErrCodeDedupFieldsEmpty  ErrorCode = "ACC_003"
	ErrCodeAggregationMethod ErrorCode = "ACC_004"
	ErrCodeItemInvalid       ErrorCode = "ACC_005"
	ErrCodeAggregationNoData ErrorCode = "ACC_006"
)

// Gap-closure module error codes.
const (
	ErrCodeGapTypeUnknown    ErrorCode = "GAP_001"
	ErrCodeGapOptionNotFound ErrorCode = "GAP_002"
)

// Market / competitor module error codes.
const (
	ErrCodeMarketDataInsufficient ErrorCode = "MKT_001"
	ErrCodeProfileInvalid         ErrorCode = "MKT_002"
)

// Batch orchestrator error codes.
const (
	ErrCodeBatchCancelled  ErrorCode = "BATCH_001"
	ErrCodeBatchItemFailed ErrorCode = "BATCH_002"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,

	ErrCodeConditionNotFound:      http.StatusNotFound,
	ErrCodeConditionTextEmpty:     http.StatusBadRequest,
	ErrCodeConditionStatusInvalid: http.StatusBadRequest,
	ErrCodeCategoryInvalid:        http.StatusBadRequest,

	ErrCodeRuleInvalid:       http.StatusBadRequest,
	ErrCodeRuleNotFound:      http.StatusNotFound,
	ErrCodeDedupFieldsEmpty:  http.StatusBadRequest,
	ErrCodeAggregationMethod: http.StatusBadRequest,
	ErrCodeItemInvalid:       http.StatusBadRequest,
	ErrCodeAggregationNoData: http.StatusOK,

	ErrCodeGapTypeUnknown:    http.StatusBadRequest,
	ErrCodeGapOptionNotFound: http.StatusNotFound,

	ErrCodeMarketDataInsufficient: http.StatusOK,
	ErrCodeProfileInvalid:         http.StatusBadRequest,

	ErrCodeBatchCancelled:  http.StatusConflict,
	ErrCodeBatchItemFailed: http.StatusInternalServerError,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
