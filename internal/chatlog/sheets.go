// Package chatlog records chat exchanges to a Google Sheets
// spreadsheet. Logging is best effort: any setup or append failure is
// logged and the chat keeps running.
package chatlog

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	sheetTitle = "Conversations"

	maxUserChars   = 5000
	maxAnswerChars = 10000
)

var headerRow = []interface{}{
	"Timestamp", "Session ID", "User Message", "Assistant Response", "Response Time (s)",
}

// Logger appends chat exchanges to a spreadsheet. A disabled Logger
// (from a failed New, or a nil receiver) silently drops appends.
type Logger struct {
	sheets        *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// New locates or creates the "<company> Chat Logs" spreadsheet inside
// folderID and returns a Logger bound to it. Errors here mean chat
// logging is unavailable; callers should log and continue without it.
func New(ctx context.Context, credentialsPath, companyName, folderID string, log zerolog.Logger) (*Logger, error) {
	creds := option.WithCredentialsFile(credentialsPath)

	sheetsSvc, err := sheets.NewService(ctx, creds, option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, creds, option.WithScopes(drive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	l := &Logger{
		sheets: sheetsSvc,
		log:    log.With().Str("component", "chatlog").Logger(),
	}

	title := companyName + " Chat Logs"
	id, err := findSpreadsheet(ctx, driveSvc, title, folderID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id, err = createSpreadsheet(ctx, sheetsSvc, driveSvc, title, folderID)
		if err != nil {
			return nil, err
		}
	}
	l.spreadsheetID = id

	if err := l.ensureHeader(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Append records one exchange. Failures are logged, never returned.
func (l *Logger) Append(ctx context.Context, sessionID, userMsg, answer string, elapsed time.Duration) {
	if l == nil || l.sheets == nil {
		return
	}

	row := []interface{}{
		time.Now().Format("2006-01-02 15:04:05"),
		sessionID,
		truncate(userMsg, maxUserChars),
		truncate(answer, maxAnswerChars),
		fmt.Sprintf("%.2f", elapsed.Seconds()),
	}
	_, err := l.sheets.Spreadsheets.Values.Append(l.spreadsheetID, sheetTitle,
		&sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		l.log.Warn().Err(err).Msg("failed to append chat log row")
	}
}

func findSpreadsheet(ctx context.Context, driveSvc *drive.Service, title, folderID string) (string, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet' and trashed = false", title)
	if folderID != "" {
		query += fmt.Sprintf(" and '%s' in parents", folderID)
	}
	list, err := driveSvc.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("search for log spreadsheet: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func createSpreadsheet(ctx context.Context, sheetsSvc *sheets.Service, driveSvc *drive.Service, title, folderID string) (string, error) {
	ss, err := sheetsSvc.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetTitle}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create log spreadsheet: %w", err)
	}

	if folderID != "" {
		_, err = driveSvc.Files.Update(ss.SpreadsheetId, nil).
			AddParents(folderID).
			SupportsAllDrives(true).
			Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("move log spreadsheet into folder: %w", err)
		}
	}
	return ss.SpreadsheetId, nil
}

// ensureHeader writes the column header if the sheet is still empty.
func (l *Logger) ensureHeader(ctx context.Context) error {
	resp, err := l.sheets.Spreadsheets.Values.Get(l.spreadsheetID, sheetTitle+"!A1:E1").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read log header: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}
	_, err = l.sheets.Spreadsheets.Values.Append(l.spreadsheetID, sheetTitle,
		&sheets.ValueRange{Values: [][]interface{}{headerRow}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write log header: %w", err)
	}
	return nil
}

// truncate caps s at max bytes, backing off to a rune boundary so the
// cut never produces invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
