// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultBaseURL  = "https://sheets.googleapis.com/v4/spreadsheets"
	timestampLayout = "2006-01-02 15:04:05"

	// Cap for the dialog message and response cells.
	maxCellRunes = 5000

	// defaultHTTPTimeout bounds token and append calls so a hung request
	// cannot wedge a chat session.
	defaultHTTPTimeout = 30 * time.Second
)

// Titles and statuses match the operators' spreadsheet and must not be
// renamed without migrating it.
const (
	consultationsSheet = "Консультации"
	ordersSheet        = "Заказы"
	dialogsSheet       = "Диалоги"

	statusNewConsultation = "Новая"
	statusNewOrder        = "Новый"
)

// worksheetSpec describes a worksheet the service maintains in the
// spreadsheet.
type worksheetSpec struct {
	title   string
	rows    int
	cols    int
	headers []string
}

var worksheetSpecs = []worksheetSpec{
	{
		title:   consultationsSheet,
		rows:    1000,
		cols:    10,
		headers: []string{"Дата и время", "ID пользователя", "Username", "Имя", "Телефон", "Статус"},
	},
	{
		title:   ordersSheet,
		rows:    1000,
		cols:    10,
		headers: []string{"Дата и время", "ID пользователя", "Username", "Информация о заказе", "Статус"},
	},
	{
		title:   dialogsSheet,
		rows:    10000,
		cols:    10,
		headers: []string{"Дата и время", "ID пользователя", "Username", "Имя", "Фамилия", "Сообщение пользователя", "Ответ бота", "Длина сообщения", "Длина ответа"},
	},
}

// ConsultationEntry is a manager-callback request logged to the
// consultations worksheet.
type ConsultationEntry struct {
	UserID   int64
	Username string
	Name     string
	Phone    string
}

// OrderEntry is an order request logged to the orders worksheet.
type OrderEntry struct {
	UserID   int64
	Username string
	Info     string
}

// DialogEntry is one question/answer exchange logged to the dialogs
// worksheet.
type DialogEntry struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	Message   string
	Response  string
}

// Service appends rows to a Google spreadsheet over the Sheets REST API,
// authenticating with a service account.
type Service struct {
	spreadsheetID string
	baseURL       string
	tokens        *tokenSource
	client        *http.Client
	logger        *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithHTTPClient sets the HTTP client used for both token exchange and
// Sheets API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) error {
		if client != nil {
			s.client = client
		}
		return nil
	}
}

// WithBaseURL overrides the Sheets API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(s *Service) error {
		if baseURL != "" {
			s.baseURL = strings.TrimSuffix(baseURL, "/")
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "sheets")
		return nil
	}
}

// New creates a Service for one spreadsheet.
func New(creds *Credentials, spreadsheetID string, opts ...Option) (*Service, error) {
	if creds == nil {
		return nil, ErrCredentialsRequired
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if spreadsheetID == "" {
		return nil, ErrSpreadsheetIDRequired
	}

	s := &Service{
		spreadsheetID: spreadsheetID,
		baseURL:       defaultBaseURL,
		client:        &http.Client{Timeout: defaultHTTPTimeout},
		logger:        slog.Default().With("component", "sheets"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.tokens = newTokenSource(creds, s.client)
	return s, nil
}

// EnsureWorksheets creates any of the consultations, orders and dialogs
// worksheets that are missing and writes their header rows.
func (s *Service) EnsureWorksheets(ctx context.Context) error {
	existing, err := s.worksheetTitles(ctx)
	if err != nil {
		return fmt.Errorf("list worksheets: %w", err)
	}

	for _, spec := range worksheetSpecs {
		if existing[spec.title] {
			continue
		}
		if err := s.addWorksheet(ctx, spec); err != nil {
			return fmt.Errorf("create worksheet %s: %w", spec.title, err)
		}
		if err := s.appendRow(ctx, spec.title, headerRow(spec.headers)); err != nil {
			return fmt.Errorf("write header row for %s: %w", spec.title, err)
		}
		s.logger.Info("created worksheet", "title", spec.title)
	}
	return nil
}

// LogConsultation appends a consultation request row.
func (s *Service) LogConsultation(ctx context.Context, entry ConsultationEntry) error {
	row := []any{
		time.Now().Format(timestampLayout),
		strconv.FormatInt(entry.UserID, 10),
		entry.Username,
		entry.Name,
		entry.Phone,
		statusNewConsultation,
	}
	return s.appendRow(ctx, consultationsSheet, row)
}

// LogOrder appends an order request row.
func (s *Service) LogOrder(ctx context.Context, entry OrderEntry) error {
	row := []any{
		time.Now().Format(timestampLayout),
		strconv.FormatInt(entry.UserID, 10),
		entry.Username,
		entry.Info,
		statusNewOrder,
	}
	return s.appendRow(ctx, ordersSheet, row)
}

// LogDialog appends one question/answer exchange. Long texts are
// truncated for the cell but the length columns report the full sizes.
func (s *Service) LogDialog(ctx context.Context, entry DialogEntry) error {
	row := []any{
		time.Now().Format(timestampLayout),
		strconv.FormatInt(entry.UserID, 10),
		entry.Username,
		entry.FirstName,
		entry.LastName,
		truncateRunes(entry.Message, maxCellRunes),
		truncateRunes(entry.Response, maxCellRunes),
		utf8.RuneCountInString(entry.Message),
		utf8.RuneCountInString(entry.Response),
	}
	return s.appendRow(ctx, dialogsSheet, row)
}

type spreadsheetMetadata struct {
	Sheets []struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
	} `json:"sheets"`
}

func (s *Service) worksheetTitles(ctx context.Context) (map[string]bool, error) {
	var meta spreadsheetMetadata
	u := fmt.Sprintf("%s/%s?fields=sheets.properties.title", s.baseURL, s.spreadsheetID)
	if err := s.doJSON(ctx, http.MethodGet, u, nil, &meta); err != nil {
		return nil, err
	}

	titles := make(map[string]bool, len(meta.Sheets))
	for _, sheet := range meta.Sheets {
		titles[sheet.Properties.Title] = true
	}
	return titles, nil
}

func (s *Service) addWorksheet(ctx context.Context, spec worksheetSpec) error {
	type gridProperties struct {
		RowCount    int `json:"rowCount"`
		ColumnCount int `json:"columnCount"`
	}
	type sheetProperties struct {
		Title          string         `json:"title"`
		GridProperties gridProperties `json:"gridProperties"`
	}
	type addSheet struct {
		Properties sheetProperties `json:"properties"`
	}
	type updateRequest struct {
		AddSheet addSheet `json:"addSheet"`
	}

	payload := struct {
		Requests []updateRequest `json:"requests"`
	}{
		Requests: []updateRequest{{
			AddSheet: addSheet{
				Properties: sheetProperties{
					Title: spec.title,
					GridProperties: gridProperties{
						RowCount:    spec.rows,
						ColumnCount: spec.cols,
					},
				},
			},
		}},
	}
	u := fmt.Sprintf("%s/%s:batchUpdate", s.baseURL, s.spreadsheetID)
	return s.doJSON(ctx, http.MethodPost, u, payload, nil)
}

func (s *Service) appendRow(ctx context.Context, worksheet string, row []any) error {
	u := fmt.Sprintf("%s/%s/values/%s:append?valueInputOption=USER_ENTERED&insertDataOption=INSERT_ROWS",
		s.baseURL, s.spreadsheetID, url.PathEscape(worksheet))
	payload := map[string]any{"values": [][]any{row}}
	if err := s.doJSON(ctx, http.MethodPost, u, payload, nil); err != nil {
		return fmt.Errorf("append to %s: %w", worksheet, err)
	}
	return nil
}

func (s *Service) doJSON(ctx context.Context, method, requestURL string, payload, out any) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("access token: %w", err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sheets API status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func headerRow(headers []string) []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
