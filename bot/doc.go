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


// Package bot runs the shop's Telegram front end.
//
// The Bot long-polls the Telegram Bot API and dispatches each chat's
// messages to its own session goroutine, so state transitions within a
// chat are sequential while chats never block each other. A session is
// either idle, in which case text goes to the assistant as a product
// question, or collecting a consultation or order request step by step
// (name, phone, and for orders the order details).
//
// Completed requests are posted to the managers' group chat and
// appended to Google Sheets; every exchange is also recorded in the
// dialogs worksheet. Both are best effort: a failed append or
// notification is logged and the user still gets a reply.
package bot
