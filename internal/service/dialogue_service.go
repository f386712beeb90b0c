package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/study-resource-bot/internal/models"
	"github.com/noah-isme/study-resource-bot/pkg/messages"
	"github.com/noah-isme/study-resource-bot/pkg/messaging"
)

// Dialogue branches, used as metric labels and in logs.
const (
	BranchGreeting      = "greeting"
	BranchSearchHit     = "search_hit"
	BranchNoMatch       = "no_match"
	BranchSearchError   = "search_error"
	BranchEnterQA       = "enter_qa"
	BranchContinue      = "continue_retrieving"
	BranchInvalidChoice = "invalid_choice"
	BranchAnswer        = "qa_answer"
	BranchLostNotes     = "qa_lost_notes"
	BranchSessionError  = "session_error"
)

const (
	choiceAskQuestions  = "1"
	choiceKeepSearching = "2"
)

type criteriaExtractor interface {
	Extract(ctx context.Context, utterance string, subjects []string) models.Criteria
}

type resourceFilter interface {
	Subjects() []string
	Filter(criteria models.Criteria) []models.Resource
}

type documentReader interface {
	CombinedText(ctx context.Context, documentIDs []string) string
}

type questionAnswerer interface {
	Answer(ctx context.Context, notes, question string) string
}

// DialogueParams wires the dialogue's collaborators.
type DialogueParams struct {
	Catalog   resourceFilter
	Extractor criteriaExtractor
	Documents documentReader
	QA        questionAnswerer
	Sessions  *SessionService
	Messenger messaging.Messenger
	Messages  messages.Messages
	Metrics   *MetricsService
	Logger    *zap.Logger
}

// DialogueService is the per-user conversation state machine: idle users
// search, users with results choose between QA and searching again, and
// users in QA get answers grounded in their documents.
type DialogueService struct {
	catalog   resourceFilter
	extractor criteriaExtractor
	documents documentReader
	qa        questionAnswerer
	sessions  *SessionService
	messenger messaging.Messenger
	msgs      messages.Messages
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewDialogueService constructs the state machine.
func NewDialogueService(p DialogueParams) *DialogueService {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	msgs := p.Messages
	if msgs.OptionsPrompt == "" {
		msgs = messages.Default()
	}
	return &DialogueService{
		catalog:   p.Catalog,
		extractor: p.Extractor,
		documents: p.Documents,
		qa:        p.QA,
		sessions:  p.Sessions,
		messenger: p.Messenger,
		msgs:      msgs,
		metrics:   p.Metrics,
		logger:    logger,
	}
}

// Handle processes one inbound message from userID and sends exactly one
// reply through the messenger. Messages from the same user are handled one
// at a time. The reply is also returned; delivery errors are logged only.
func (d *DialogueService) Handle(ctx context.Context, userID, body string) string {
	unlock := d.sessions.Lock(userID)
	defer unlock()

	text := strings.TrimSpace(body)
	reply, branch := d.route(ctx, userID, text)

	d.metrics.RecordTransition(branch)
	d.logger.Info("message handled", zap.String("from", userID), zap.String("branch", branch))

	if err := d.messenger.Send(ctx, userID, reply); err != nil {
		d.metrics.RecordDeliveryError()
		d.logger.Error("reply delivery failed", zap.String("to", userID), zap.Error(err))
	}
	return reply
}

func (d *DialogueService) route(ctx context.Context, userID, text string) (string, string) {
	session, err := d.sessions.Get(ctx, userID)
	if err != nil {
		d.logger.Error("session lookup failed", zap.String("user", userID), zap.Error(err))
		return d.msgs.GenericError, BranchSessionError
	}
	if session == nil {
		return d.search(ctx, userID, text)
	}

	switch session.Mode {
	case models.SessionModeAwaitingChoice:
		return d.choose(ctx, session, text)
	case models.SessionModeQA:
		return d.answer(ctx, session, text)
	default:
		d.logger.Warn("discarding session with unknown mode", zap.String("user", userID), zap.String("mode", string(session.Mode)))
		if err := d.sessions.End(ctx, userID); err != nil {
			d.logger.Error("session delete failed", zap.String("user", userID), zap.Error(err))
		}
		return d.search(ctx, userID, text)
	}
}

// choose resolves the follow-up choice after a successful search. Anything
// other than "1" or "2" re-prompts and leaves the session as it was.
func (d *DialogueService) choose(ctx context.Context, session *models.Session, text string) (string, string) {
	switch text {
	case choiceAskQuestions:
		if err := d.sessions.SetMode(ctx, session, models.SessionModeQA); err != nil {
			d.logger.Error("session update failed", zap.String("user", session.UserID), zap.Error(err))
			return d.msgs.GenericError, BranchSessionError
		}
		return d.msgs.QAWelcome, BranchEnterQA
	case choiceKeepSearching:
		if err := d.sessions.End(ctx, session.UserID); err != nil {
			d.logger.Error("session delete failed", zap.String("user", session.UserID), zap.Error(err))
			return d.msgs.GenericError, BranchSessionError
		}
		return d.msgs.ContinueRetrieving, BranchContinue
	default:
		return d.msgs.WithOptions(d.msgs.InvalidChoice), BranchInvalidChoice
	}
}

// answer treats every message in QA mode as a question. A session without
// documents stays in QA and reports the lost notes.
func (d *DialogueService) answer(ctx context.Context, session *models.Session, question string) (string, string) {
	if len(session.DocumentIDs) == 0 {
		d.logger.Warn("qa session has no documents", zap.String("user", session.UserID))
		return d.msgs.WithOptions(d.msgs.LostNotes), BranchLostNotes
	}

	notes := d.documents.CombinedText(ctx, session.DocumentIDs)
	reply := d.qa.Answer(ctx, notes, question)

	if err := d.sessions.Touch(ctx, session); err != nil {
		d.logger.Warn("session refresh failed", zap.String("user", session.UserID), zap.Error(err))
	}
	return d.msgs.WithOptions(reply), BranchAnswer
}

// search runs normalize, extract and filter. Any failure, including a
// panic, becomes the generic error reply and no session is written.
func (d *DialogueService) search(ctx context.Context, userID, text string) (reply string, branch string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("search failed", zap.String("user", userID), zap.Any("panic", r))
			reply, branch = d.msgs.GenericError, BranchSearchError
		}
	}()

	if text == "" {
		return d.msgs.Greeting, BranchGreeting
	}

	normalized := NormalizeQuery(text)
	criteria := d.extractor.Extract(ctx, normalized, d.catalog.Subjects())
	d.logger.Debug("criteria extracted", zap.String("query", normalized), zap.Any("criteria", criteria))
	if !criteria.IsSearch() {
		return d.msgs.Greeting, BranchGreeting
	}

	results := d.catalog.Filter(criteria)
	d.metrics.ObserveSearch(len(results))
	if len(results) == 0 {
		return d.msgs.NoMatches, BranchNoMatch
	}

	links := make([]string, len(results))
	ids := make([]string, len(results))
	for i, r := range results {
		links[i] = r.Link
		ids[i] = r.ID
	}

	if _, err := d.sessions.Start(ctx, userID, ids); err != nil {
		d.logger.Error("session create failed", zap.String("user", userID), zap.Error(err))
		return d.msgs.GenericError, BranchSearchError
	}
	return d.msgs.WithOptions(d.msgs.Found(links)), BranchSearchHit
}
