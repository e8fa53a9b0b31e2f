package sheetqueue

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/relaybot/sheetmail/internal/domain"
)

// GoogleClient talks to a single spreadsheet through the Sheets v4 API
// using a service-account identity.
type GoogleClient struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	sheetID       int64
}

// NewGoogleClient authenticates with the raw service-account key JSON and
// binds to one sheet. A credential parse failure counts as QueueUnavailable:
// to the caller it is indistinguishable from an unreachable backend.
func NewGoogleClient(ctx context.Context, credentialsJSON []byte, spreadsheetID, sheetName string, sheetID int64) (*GoogleClient, error) {
	jwtCfg, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%w: parse service account key: %v", domain.ErrQueueUnavailable, err)
	}

	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("%w: build sheets service: %v", domain.ErrQueueUnavailable, err)
	}

	return &GoogleClient{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		sheetID:       sheetID,
	}, nil
}

// ReadFirstRow fetches the head-of-queue range SHEET!A1:D1. An absent or
// blank range comes back as the zero QueueRow, for which IsEmpty holds.
func (c *GoogleClient) ReadFirstRow(ctx context.Context) (domain.QueueRow, error) {
	rng := fmt.Sprintf("%s!A1:D1", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return domain.QueueRow{}, fmt.Errorf("%w: read %s: %v", domain.ErrQueueUnavailable, rng, err)
	}
	if len(resp.Values) == 0 {
		return domain.QueueRow{}, nil
	}
	return domain.RowFromCells(resp.Values[0]), nil
}

// DeleteFirstRow issues a structural delete of row index [0, 1). This is
// the queue's pop operation: it runs exactly once per processing attempt,
// whether or not the row was empty and whether or not the send succeeded.
func (c *GoogleClient) DeleteFirstRow(ctx context.Context) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    c.sheetID,
					Dimension:  "ROWS",
					StartIndex: 0,
					EndIndex:   1,
				},
			},
		}},
	}

	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: delete first row: %v", domain.ErrQueueUnavailable, err)
	}
	return nil
}

// GoogleFactory returns a Factory that builds a fresh GoogleClient on every
// call.
func GoogleFactory(credentialsJSON []byte, spreadsheetID, sheetName string, sheetID int64) Factory {
	return func(ctx context.Context) (Client, error) {
		return NewGoogleClient(ctx, credentialsJSON, spreadsheetID, sheetName, sheetID)
	}
}

// compile-time check that GoogleClient implements Client
var _ Client = (*GoogleClient)(nil)
