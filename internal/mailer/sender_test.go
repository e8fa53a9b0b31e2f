package mailer_test

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/relaybot/sheetmail/internal/mailer"
)

// The recipient checks run before the dialer is touched, so an unroutable
// host is safe here: reaching the network would fail the test loudly.
func TestSMTPSenderRejectsBadRecipientsClientSide(t *testing.T) {
	sender := mailer.NewSMTPSender("smtp.invalid", 465, "relay@example.com", "app-password", zap.NewNop())

	tests := []struct {
		name string
		to   string
		want string
	}{
		{name: "empty recipient", to: "", want: "empty recipient string"},
		{name: "whitespace recipient", to: "   ", want: "empty recipient string"},
		{name: "unparseable recipient", to: "not-an-address", want: "malformed address"},
		{name: "recipient with stray angle bracket", to: "a@b.com>", want: "malformed address"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := sender.Send(context.Background(), tc.to, "subject", "<p>body</p>")
			if res.Success {
				t.Fatal("Send() succeeded for an invalid recipient")
			}
			if res.ErrorDetail != tc.want {
				t.Fatalf("ErrorDetail = %q, want %q", res.ErrorDetail, tc.want)
			}
		})
	}
}
