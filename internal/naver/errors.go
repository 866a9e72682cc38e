package naver

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure reported by the Naver APIs.
type ErrorKind string

const (
	KindNaver             ErrorKind = "NAVER"
	KindIncorrectQuery    ErrorKind = "INCORRECT_QUERY"
	KindInvalidDisplay    ErrorKind = "INVALID_DISPLAY"
	KindInvalidStart      ErrorKind = "INVALID_START"
	KindInvalidSort       ErrorKind = "INVALID_SORT"
	KindInvalidSearchAPI  ErrorKind = "INVALID_SEARCH_API"
	KindMalformedEncoding ErrorKind = "MALFORMED_ENCODING"
	KindSystemError       ErrorKind = "SYSTEM_ERROR"
	KindAuthentication    ErrorKind = "AUTHENTICATION_FAILED"
	KindInvalidParameter  ErrorKind = "INVALID_PARAMETER"
	KindUnknown           ErrorKind = "UNKNOWN_NAVER"
)

// Error is a typed Naver failure. Code is the upstream errorCode, or the
// errorMessage when no code was sent.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Naver API Error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("Naver API Error: %s (%s)", e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNaver             = &Error{Kind: KindNaver, Message: "네이버 API 호출에 실패했습니다."}
	ErrIncorrectQuery    = &Error{Kind: KindIncorrectQuery, Message: "잘못된 쿼리요청입니다."}
	ErrInvalidDisplay    = &Error{Kind: KindInvalidDisplay, Message: "부적절한 display 값입니다."}
	ErrInvalidStart      = &Error{Kind: KindInvalidStart, Message: "부적절한 start 값입니다."}
	ErrInvalidSort       = &Error{Kind: KindInvalidSort, Message: "부적절한 sort 값입니다."}
	ErrInvalidSearchAPI  = &Error{Kind: KindInvalidSearchAPI, Message: "존재하지 않는 검색 api 입니다."}
	ErrMalformedEncoding = &Error{Kind: KindMalformedEncoding, Message: "잘못된 형식의 인코딩입니다."}
	ErrSystemError       = &Error{Kind: KindSystemError, Message: "네이버 서버에 문제가 발생했습니다."}
	ErrAuthentication    = &Error{Kind: KindAuthentication, Message: "API Key를 확인해주세요"}
	ErrInvalidParameter  = &Error{Kind: KindInvalidParameter, Message: "요청 파라미터 값이 잘못 되었습니다."}
	ErrUnknown           = &Error{Kind: KindUnknown, Message: "알 수 없는 에러가 발생했습니다."}
)

// errorTable is filled once at init and only read afterwards.
var errorTable = map[string]*Error{
	"SE01":            ErrIncorrectQuery,
	"SE02":            ErrInvalidDisplay,
	"SE03":            ErrInvalidStart,
	"SE04":            ErrInvalidSort,
	"SE05":            ErrInvalidSearchAPI,
	"SE06":            ErrMalformedEncoding,
	"SE99":            ErrSystemError,
	"024":             ErrAuthentication,
	"INVALID_REQUEST": ErrInvalidParameter,
	"SYSTEM_ERROR":    ErrSystemError,
}

// FromCode returns a fresh typed error for an upstream code.
func FromCode(code string) *Error {
	base, ok := errorTable[code]
	if !ok {
		base = ErrUnknown
	}
	return &Error{Kind: base.Kind, Code: code, Message: base.Message}
}

// KindOf returns the Naver kind carried by err, or "" for other errors.
func KindOf(err error) ErrorKind {
	var nerr *Error
	if errors.As(err, &nerr) {
		return nerr.Kind
	}
	return ""
}

func wrap(err error, msg string) *Error {
	return &Error{Kind: KindNaver, Message: msg, Err: err}
}
