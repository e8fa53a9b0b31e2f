package processor

import (
	"fmt"

	"github.com/relaybot/sheetmail/internal/domain"
)

const emptyQueueText = "ℹ️ Queue is empty: no rows pending dispatch."

// GenericFailureText is the report sent by the trigger boundary when a
// processing attempt dies on an unclassified failure.
func GenericFailureText(err error) string {
	return fmt.Sprintf("❌ Processing failed: %v", err)
}

// report formats the per-trigger outcome message. The row has already been
// popped by the time this is built.
func report(from, to string, delaySeconds int, result domain.SendResult) string {
	outcome := "✅ Sent successfully!"
	if !result.Success {
		outcome = fmt.Sprintf("❌ Error: %s", result.ErrorDetail)
	}
	return fmt.Sprintf(
		"✉️ Mail dispatched from account: %s\nTo: %s\nDelay applied: %d seconds\nResult: %s\n♻️ Queue row deleted.",
		from, to, delaySeconds, outcome,
	)
}
