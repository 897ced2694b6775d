package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/queryforge/internal/service"
)

const cookieName = "queryforge"

// Session cookie keys.
const (
	keyUserID    = "user_id"
	keySessionID = "session_id"
	keyStage     = "stage"
)

// Stage is how far the current query session has progressed.
type Stage string

// Workflow stages.
const (
	StageNone      Stage = ""
	StageSuggested Stage = "suggested"
	StageGenerated Stage = "generated"
	StageExecuted  Stage = "executed"
)

// Step is a workflow operation that moves a query session forward.
type Step int

// Workflow steps.
const (
	StepSuggest Step = iota
	StepGenerate
	StepExecute
)

// Workflow is the query-session state kept in the cookie.
type Workflow struct {
	SessionID string
	Stage     Stage
}

func (w Workflow) open() bool {
	return w.SessionID != "" && (w.Stage == StageSuggested || w.Stage == StageGenerated)
}

// Advance applies step to cur. It returns the new state and whether a new
// query session was started.
//
// A suggestion always starts a session. A generation joins a session that
// has not generated yet. An execution joins any open session and closes it.
// Anything else starts a new session.
func Advance(cur Workflow, step Step, newID func() string) (Workflow, bool) {
	switch step {
	case StepSuggest:
		return Workflow{SessionID: newID(), Stage: StageSuggested}, true
	case StepGenerate:
		if cur.open() && cur.Stage == StageSuggested {
			return Workflow{SessionID: cur.SessionID, Stage: StageGenerated}, false
		}
		return Workflow{SessionID: newID(), Stage: StageGenerated}, true
	case StepExecute:
		if cur.open() {
			return Workflow{SessionID: cur.SessionID, Stage: StageExecuted}, false
		}
		return Workflow{SessionID: newID(), Stage: StageExecuted}, true
	}
	return cur, false
}

func newSessionStore(secret string) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.MaxAge(86400 * 30) // 30 days
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}

// pendingWorkflow is a caller's cookie session with the workflow step the
// current request would apply.
type pendingWorkflow struct {
	sess *sessions.Session
	cur  Workflow
	next Workflow
	attr service.Attribution
}

// attribute works out the caller's attribution for step without touching the
// cookie. A non-empty explicit id overrides the cookie's query session and
// never starts a new one.
func (s *Server) attribute(r *http.Request, step Step, explicit string) *pendingWorkflow {
	sess, err := s.sessions.Get(r, cookieName)
	if err != nil {
		// A cookie signed with an old secret decodes to a fresh session.
		s.logger.Debug("discarding unreadable session cookie", "error", err)
	}

	userID, _ := sess.Values[keyUserID].(string)
	if userID == "" {
		userID = uuid.NewString()
		sess.Values[keyUserID] = userID
	}

	cur := Workflow{}
	cur.SessionID, _ = sess.Values[keySessionID].(string)
	stage, _ := sess.Values[keyStage].(string)
	cur.Stage = Stage(stage)

	next, starts := Advance(cur, step, uuid.NewString)
	if explicit != "" {
		next.SessionID = explicit
		starts = false
	}

	return &pendingWorkflow{
		sess: sess,
		cur:  cur,
		next: next,
		attr: service.Attribution{UserID: userID, SessionID: next.SessionID, StartsSession: starts},
	}
}

// commit writes the cookie. The workflow only advances when the step
// succeeded, so a rejected request leaves the caller's query session as it was.
// It must run before the response is written.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, p *pendingWorkflow, succeeded bool) {
	wf := p.cur
	if succeeded {
		wf = p.next
	}
	p.sess.Values[keySessionID] = wf.SessionID
	p.sess.Values[keyStage] = string(wf.Stage)
	if err := p.sess.Save(r, w); err != nil {
		s.logger.Error("failed to save session cookie", "error", err)
	}
}
