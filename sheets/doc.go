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


// Package sheets appends consultation requests, orders and dialog
// transcripts to a Google spreadsheet.
//
// The service talks to the Sheets REST API directly and authenticates
// with a service account key: each request carries an access token
// obtained by exchanging an RS256-signed JWT assertion at the account's
// token URI. Tokens are cached and refreshed shortly before expiry.
//
// Usage:
//
//	creds, err := sheets.LoadCredentials("credentials.json")
//	if err != nil {
//	    return err
//	}
//	service, err := sheets.New(creds, spreadsheetID)
//	if err != nil {
//	    return err
//	}
//	if err := service.EnsureWorksheets(ctx); err != nil {
//	    return err
//	}
//	err = service.LogDialog(ctx, sheets.DialogEntry{
//	    UserID:   42,
//	    Message:  "Какой крем подойдет для сухой кожи?",
//	    Response: "Рекомендую увлажняющий крем Reviderm.",
//	})
//
// Append failures are returned as errors; the bot treats them as
// warnings so a broken spreadsheet never blocks replies to users.
package sheets
