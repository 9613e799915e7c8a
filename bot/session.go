package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/poiesic/shoplore/assistant"
)

// sessionQueueSize bounds how many unprocessed messages a single chat
// may queue before the update loop blocks on it.
const sessionQueueSize = 16

// sessionState tracks where a chat is in a request-collection flow.
type sessionState int

const (
	stateIdle sessionState = iota
	stateAwaitingName
	stateAwaitingPhone
	stateAwaitingOrderDetails
)

// requestKind distinguishes the two collection flows.
type requestKind int

const (
	requestConsultation requestKind = iota + 1
	requestOrder
)

// pendingRequest accumulates the data collected for a consultation or
// an order before it is submitted.
type pendingRequest struct {
	kind    requestKind
	user    assistant.UserRef
	name    string
	phone   string
	details string
}

// session serializes the handling of one chat's messages. Updates are
// queued on the channel and consumed by a single goroutine, so state
// and pending are only touched from that goroutine.
type session struct {
	updates chan *tgbotapi.Message
	state   sessionState
	pending *pendingRequest
}

func newSession() *session {
	return &session{updates: make(chan *tgbotapi.Message, sessionQueueSize)}
}

// reset returns the session to the idle state and drops any partially
// collected request.
func (s *session) reset() {
	s.state = stateIdle
	s.pending = nil
}
