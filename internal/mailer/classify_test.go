package mailer_test

import (
	"errors"
	"fmt"
	"net/textproto"
	"testing"

	"github.com/relaybot/sheetmail/internal/mailer"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "recipients refused with 5.5.2 maps to empty recipient",
			err:  &textproto.Error{Code: 555, Msg: "5.5.2 Syntax error, cannot decode response"},
			want: "empty recipient string",
		},
		{
			name: "recipients refused with 5.1.3 maps to malformed address",
			err:  &textproto.Error{Code: 553, Msg: "5.1.3 The recipient address is not a valid RFC 5321 address"},
			want: "malformed address",
		},
		{
			// Any permanent reply with a mapped code gets the friendly
			// reason, even when it came from a non-RCPT stage: gomail
			// does not say which command the server rejected.
			name: "permanent DATA-stage reply with 5.5.2 still maps",
			err:  &textproto.Error{Code: 554, Msg: "5.5.2 message rejected after DATA"},
			want: "empty recipient string",
		},
		{
			name: "wrapped SMTP reply is still classified",
			err:  fmt.Errorf("send mail: %w", &textproto.Error{Code: 553, Msg: "5.1.3 bad address syntax"}),
			want: "malformed address",
		},
		{
			name: "permanent reply with an unmapped code passes through",
			err:  &textproto.Error{Code: 550, Msg: "5.7.1 Access denied"},
			want: "550 5.7.1 Access denied",
		},
		{
			name: "permanent reply with no enhanced code passes through",
			err:  &textproto.Error{Code: 550, Msg: "Mailbox unavailable"},
			want: "550 Mailbox unavailable",
		},
		{
			name: "recipient text without a code passes through",
			err:  errors.New("server rejected one or more recipients"),
			want: "server rejected one or more recipients",
		},
		{
			name: "transport error passes through verbatim",
			err:  errors.New("dial tcp 142.250.0.1:465: connect: connection refused"),
			want: "dial tcp 142.250.0.1:465: connect: connection refused",
		},
		{
			name: "code present but not a recipient refusal passes through",
			err:  errors.New("TLS handshake mentioned 5.5.2 in its banner"),
			want: "TLS handshake mentioned 5.5.2 in its banner",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mailer.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("nil error yields empty detail", func(t *testing.T) {
		if got := mailer.Classify(nil); got != "" {
			t.Fatalf("Classify(nil) = %q, want empty", got)
		}
	})
}
