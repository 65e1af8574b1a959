// Package response shapes every versed API reply into the webapi envelope:
// HTTP 200 with an in-body code, zero for success. Pipeline failures reach
// the client only as an errcode plus the user-facing message picked by the
// service layer; transport detail stays in the logs.
package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

// AsCodeErr pairs an errcode value with a message for the fail envelope.
func AsCodeErr(code uint32, msg string) error {
	return codeErr{code: code, msg: msg}
}

// Success writes data under a zero code. Handlers pass chat answers, song
// listings and index reports through here unchanged.
func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

// Error writes the fail envelope for an errcode. The HTTP status stays 200;
// clients dispatch on the body code.
func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, AsCodeErr(uint32(code), message))
}
