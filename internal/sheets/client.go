package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/Veraticus/glassline/internal/common"
	"github.com/Veraticus/glassline/internal/entry"
	"github.com/Veraticus/glassline/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Value input options for appends.
const (
	inputRaw         = "RAW"
	inputUserEntered = "USER_ENTERED"
)

// Client reads and appends rows of one worksheet.
type Client struct {
	service       *sheets.Service
	logger        *slog.Logger
	config        Config
	spreadsheetID string
}

// NewClient creates a client authenticated with the configured credentials.
func NewClient(ctx context.Context, config Config, logger *slog.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewClientWithService(service, config, logger), nil
}

// NewClientWithService wraps an existing service, e.g. one pointed at a test server.
func NewClientWithService(service *sheets.Service, config Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Worksheet == "" {
		config.Worksheet = DefaultWorksheet
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Client{
		service:       service,
		logger:        logger,
		config:        config,
		spreadsheetID: config.SpreadsheetID,
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = client.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// Name identifies the client as a record source in logs.
func (c *Client) Name() string {
	return "sheets " + c.config.Worksheet
}

// SpreadsheetID returns the configured or created spreadsheet.
func (c *Client) SpreadsheetID() string {
	return c.spreadsheetID
}

// Load reads the whole worksheet. The first row is the header; each later row becomes
// a record keyed by header. Numbers and dates are read unformatted so locale display
// settings do not change them.
func (c *Client) Load(ctx context.Context) ([]model.RawRecord, error) {
	if c.spreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id", common.ErrMissingConfig)
	}

	var resp *sheets.ValueRange
	err := common.WithRetry(ctx, func() error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.config.Worksheet).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("SERIAL_NUMBER").
			Context(ctx).
			Do()
		return classify(err)
	}, c.config.retryOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", c.config.Worksheet, err)
	}

	records := recordsFromValues(resp.Values)
	c.logger.Debug("read worksheet", "worksheet", c.config.Worksheet, "rows", len(records))
	return records, nil
}

// Append adds one shaped row below the existing data.
func (c *Client) Append(ctx context.Context, row entry.Row) error {
	return c.AppendRows(ctx, []entry.Row{row})
}

// AppendRows appends rows in batches. Rows of schemas that keep numbers as text are
// sent RAW so the spreadsheet does not reinterpret them; the rest are USER_ENTERED.
func (c *Client) AppendRows(ctx context.Context, rows []entry.Row) error {
	if c.spreadsheetID == "" {
		return fmt.Errorf("%w: spreadsheet id", common.ErrMissingConfig)
	}

	for start := 0; start < len(rows); {
		input := inputOption(rows[start].Schema)
		end := start
		values := make([][]any, 0, c.config.BatchSize)
		for end < len(rows) && len(values) < c.config.BatchSize && inputOption(rows[end].Schema) == input {
			values = append(values, rows[end].Values)
			end++
		}

		err := common.WithRetry(ctx, func() error {
			return c.appendValues(ctx, values, input)
		}, c.config.retryOptions())
		if err != nil {
			return fmt.Errorf("failed to append rows %d-%d: %w", start+1, end, err)
		}

		c.logger.Debug("appended batch", "worksheet", c.config.Worksheet, "rows", len(values), "input", input)
		start = end
	}

	return nil
}

func (c *Client) appendValues(ctx context.Context, values [][]any, input string) error {
	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, c.config.Worksheet+"!A1", &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}).
		ValueInputOption(input).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return classify(err)
}

// EnsureSpreadsheet verifies the configured spreadsheet, or creates one with header as
// its first row when no id is configured.
func (c *Client) EnsureSpreadsheet(ctx context.Context, header []string) (string, error) {
	if c.spreadsheetID != "" {
		if _, err := c.service.Spreadsheets.Get(c.spreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", c.spreadsheetID, err)
		}
		return c.spreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    c.config.SpreadsheetName,
			TimeZone: c.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{
				Properties: &sheets.SheetProperties{
					Title: c.config.Worksheet,
				},
			},
		},
	}

	created, err := c.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}
	c.spreadsheetID = created.SpreadsheetId

	c.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := c.appendValues(ctx, [][]any{headerRow}, inputRaw); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	if c.config.EnableFormatting {
		var sheetID int64
		if len(created.Sheets) > 0 && created.Sheets[0].Properties != nil {
			sheetID = created.Sheets[0].Properties.SheetId
		}
		if err := c.applyFormatting(ctx, sheetID, len(header)); err != nil {
			c.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	return c.spreadsheetID, nil
}

// applyFormatting bolds and freezes the header row and sizes the columns.
func (c *Client) applyFormatting(ctx context.Context, sheetID int64, columns int) error {
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   int64(columns),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   int64(columns),
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := c.service.Spreadsheets.BatchUpdate(c.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

func inputOption(schema entry.Schema) string {
	if schema.NumbersAsText {
		return inputRaw
	}
	return inputUserEntered
}

// classify marks API errors for WithRetry: rate limits and server errors are
// retried, other client errors are not.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
	case apiErr.Code >= http.StatusInternalServerError:
		return &common.RetryableError{Err: err, Retryable: true}
	default:
		return &common.RetryableError{Err: err, Retryable: false}
	}
}

// recordsFromValues keys each row by the header row. Short rows are padded with
// empty strings and rows with no values are skipped.
func recordsFromValues(values [][]any) []model.RawRecord {
	if len(values) == 0 {
		return nil
	}

	header := make([]string, len(values[0]))
	for i, h := range values[0] {
		header[i] = strings.TrimSpace(fmt.Sprint(h))
	}

	records := make([]model.RawRecord, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := make(model.RawRecord, len(header))
		empty := true
		for i, name := range header {
			if name == "" {
				continue
			}
			var v any = ""
			if i < len(row) && row[i] != nil {
				v = row[i]
			}
			if s, ok := v.(string); !ok || strings.TrimSpace(s) != "" {
				empty = false
			}
			rec[name] = v
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records
}
