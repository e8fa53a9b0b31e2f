package sheetqueue

import (
	"context"

	"github.com/relaybot/sheetmail/internal/domain"
)

// Client is the head-of-queue view of the spreadsheet. The sheet's first
// row is the only row a consumer ever touches: ReadFirstRow fetches it and
// DeleteFirstRow pops it. There is no transactional guarantee between the
// two calls — single-consumer deployment is a hard requirement.
//
// The Google implementation is in google.go; tests use MockClient.
type Client interface {
	ReadFirstRow(ctx context.Context) (domain.QueueRow, error)
	DeleteFirstRow(ctx context.Context) error
}

// Factory builds a fresh Client per processing invocation, so credential
// problems surface on the trigger that hits them rather than at startup.
type Factory func(ctx context.Context) (Client, error)
