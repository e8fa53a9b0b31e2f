package mailer

import (
	"errors"
	"net/textproto"
	"regexp"
	"strings"
)

// enhancedCode matches a single-digit RFC 3463 enhanced status code of the
// permanent-failure class, e.g. "5.5.2".
var enhancedCode = regexp.MustCompile(`\b5\.\d\.\d\b`)

// Detail strings reported back to the chat in place of the raw SMTP reply.
const (
	emptyRecipientDetail   = "empty recipient string"
	malformedAddressDetail = "malformed address"
)

// Classify maps an SMTP submission error to the detail string reported back
// to the chat. Recipient-refusal rejections carrying a known enhanced code
// get a friendly reason; every other error is returned verbatim.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	detail := err.Error()
	if !recipientsRefused(err) {
		return detail
	}
	switch enhancedCode.FindString(detail) {
	case "5.5.2":
		return emptyRecipientDetail
	case "5.1.3":
		return malformedAddressDetail
	}
	return detail
}

// recipientsRefused reports whether err looks like the server refusing the
// envelope recipients: a permanent (5xx) SMTP reply, which net/smtp
// surfaces as a textproto.Error, or text that names the recipient.
//
// This over-approximates. gomail does not record which SMTP command drew
// the reply, so a permanent rejection from another stage (e.g. a DATA-time
// "554 5.5.2") gets the same friendly mapping as a true RCPT refusal.
func recipientsRefused(err error) bool {
	var reply *textproto.Error
	if errors.As(err, &reply) {
		return reply.Code >= 500 && reply.Code < 600
	}
	return strings.Contains(strings.ToLower(err.Error()), "recipient")
}
