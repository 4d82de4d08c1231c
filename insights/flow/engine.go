// Package flow is the conversation engine: it maps (session, event) to a new
// session and a list of effects, independent of the bot transport.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/m3rciful/insightbot/core/logger"
	"github.com/m3rciful/insightbot/core/telegram/format"
	"github.com/m3rciful/insightbot/core/telegram/state"
	"github.com/m3rciful/insightbot/insights/domain"
)

const component = "flow"

// Store is the part of the record store the engine uses.
type Store interface {
	Save(ctx context.Context, d domain.Draft, ownerID int64) (domain.Insight, error)
	CountByRegion(ctx context.Context) map[string]int
	CountByIndustry(ctx context.Context, region string) map[string]int
	ListAll(ctx context.Context) []domain.Insight
	ListFiltered(ctx context.Context, f domain.Filter) []domain.Insight
	Total(ctx context.Context) int
}

// Exporter renders records into a file and returns its path.
type Exporter interface {
	Export(ctx context.Context, records []domain.Insight, userID int64) (string, error)
}

const lockStripes = 64

// defaultDocumentName marks documents sent without a name so they are not
// mistaken for photos later.
const defaultDocumentName = "document"

// Engine runs both wizards over a shared per-user session slot.
type Engine struct {
	store    Store
	exporter Exporter
	sessions state.Store[Session]

	locks [lockStripes]sync.Mutex
}

// NewEngine wires the engine to its collaborators.
func NewEngine(store Store, exporter Exporter, sessions state.Store[Session]) *Engine {
	return &Engine{store: store, exporter: exporter, sessions: sessions}
}

func (e *Engine) lock(userID int64) func() {
	idx := userID % lockStripes
	if idx < 0 {
		idx = -idx
	}
	m := &e.locks[idx]
	m.Lock()
	return m.Unlock
}

// InProgress reports whether userID has an active wizard.
func (e *Engine) InProgress(ctx context.Context, userID int64) bool {
	s, ok, err := e.sessions.Get(ctx, userID)
	if err != nil {
		logger.Warn(ctx, component, "session.get",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return false
	}
	return ok && !s.Idle()
}

// Handle applies ev for userID. Updates of one user are serialized.
// The error reports session storage failures only.
func (e *Engine) Handle(ctx context.Context, userID int64, ev Event) ([]Effect, error) {
	unlock := e.lock(userID)
	defer unlock()

	sess, _, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("flow: load session: %w", err)
	}

	t := &turn{engine: e, ctx: ctx, userID: userID, sess: sess, next: sess}
	_, t.edit = ev.(Button)
	t.dispatch(ev)

	if err := e.persist(ctx, userID, t.next); err != nil {
		return t.effects, err
	}
	if t.next.Step() != sess.Step() || t.next.Mode() != sess.Mode() {
		logger.Debug(ctx, component, "session.transition",
			slog.String("status", "ok"),
			slog.String("from", sess.Mode()+"/"+string(sess.Step())),
			slog.String("step", t.next.Mode()+"/"+string(t.next.Step())),
		)
	}
	return t.effects, nil
}

func (e *Engine) persist(ctx context.Context, userID int64, s Session) error {
	if s.Idle() {
		if err := e.sessions.Clear(ctx, userID); err != nil {
			return fmt.Errorf("flow: clear session: %w", err)
		}
		return nil
	}
	if err := e.sessions.Put(ctx, userID, s); err != nil {
		return fmt.Errorf("flow: save session: %w", err)
	}
	return nil
}

// turn accumulates the outcome of one event.
type turn struct {
	engine  *Engine
	ctx     context.Context
	userID  int64
	sess    Session
	next    Session
	edit    bool
	effects []Effect
}

func (t *turn) reply(text string, kb *Keyboard) {
	t.effects = append(t.effects, Reply{Text: text, Keyboard: kb, Edit: t.edit})
}

func (t *turn) alert(text string) {
	t.effects = append(t.effects, Alert{Text: text})
}

func (t *turn) clear() { t.next = Session{} }

func (t *turn) dispatch(ev Event) {
	switch ev := ev.(type) {
	case Command:
		t.command(ev)
	case Button:
		t.button(ev)
	case Text:
		t.text(ev.Body)
	case Document:
		t.attachment(ev.Ref, &ev.Name, false)
	case Photo:
		t.attachment(ev.Ref, nil, true)
	}
}

func (t *turn) command(cmd Command) {
	switch cmd.Name {
	case CmdStart:
		t.clear()
		t.reply(welcomeText(cmd.FirstName), mainMenu())
	case CmdHelp:
		t.reply(textHelp, nil)
	case CmdCancel:
		t.clear()
		t.reply(textCancelled, mainMenu())
	case CmdStats:
		st := t.engine.store
		t.reply(statsText(st.Total(t.ctx), st.CountByRegion(t.ctx), st.CountByIndustry(t.ctx, "")), nil)
	default:
		t.reply(textUnknown, nil)
	}
}

func (t *turn) button(b Button) {
	switch b.Action {
	case ActMenu:
		t.clear()
		t.reply(textMainMenu, mainMenu())
		return
	case ActAbout:
		t.reply(textAbout, backToMenu("🔙 В меню"))
		return
	case ActNew:
		t.next = creating(StepRegion, domain.Draft{})
		t.reply(textChooseRegion, regionKeyboard(t.engine.store.CountByRegion(t.ctx)))
		logger.Info(t.ctx, component, "create.start", slog.String("status", "ok"))
		return
	case ActSearch:
		t.next = searching(Search{Step: StepRegion})
		t.reply(textChooseRegionFor, regionKeyboard(t.engine.store.CountByRegion(t.ctx)))
		logger.Info(t.ctx, component, "search.start", slog.String("status", "ok"))
		return
	case ActExport:
		t.export()
		return
	}

	switch {
	case t.sess.Create != nil:
		t.createButton(*t.sess.Create, b)
	case t.sess.Search != nil:
		t.searchButton(*t.sess.Search, b)
	default:
		t.alert(textStale)
	}
}

func (t *turn) region(arg string) (string, bool) {
	r, ok := pick(domain.Regions, arg)
	if !ok {
		t.alert(textStale)
	}
	return r, ok
}

func (t *turn) industry(arg string) (string, bool) {
	ind, ok := pick(domain.Industries, arg)
	if !ok {
		t.alert(textStale)
	}
	return ind, ok
}

func (t *turn) createButton(c Creation, b Button) {
	switch {
	case b.Action == ActRegion && c.Step == StepRegion:
		r, ok := t.region(b.Arg)
		if !ok {
			return
		}
		c.Draft.MacroRegion = r
		c.Step = StepIndustry
		t.next = Session{Create: &c}
		t.reply(textChooseIndustry, industryKeyboard(t.engine.store.CountByIndustry(t.ctx, r)))
	case b.Action == ActIndustry && c.Step == StepIndustry:
		ind, ok := t.industry(b.Arg)
		if !ok {
			return
		}
		c.Draft.Industry = ind
		c.Step = StepTheme
		t.next = Session{Create: &c}
		t.reply(textAskTheme, nil)
	case b.Action == ActBackRegions && c.Step == StepIndustry:
		c.Step = StepRegion
		c.Draft.MacroRegion = ""
		t.next = Session{Create: &c}
		t.reply(textChooseRegion, regionKeyboard(t.engine.store.CountByRegion(t.ctx)))
	case b.Action == ActAttach && c.Step == StepAttachChoice:
		c.Step = StepAttachPayload
		t.next = Session{Create: &c}
		t.reply(textSendFile, nil)
	case b.Action == ActSkip && c.Step == StepAttachChoice:
		t.finalize(c.Draft)
	default:
		t.alert(textStale)
	}
}

func (t *turn) searchButton(s Search, b Button) {
	switch {
	case b.Action == ActRegion && s.Step == StepRegion:
		r, ok := t.region(b.Arg)
		if !ok {
			return
		}
		s.Filter.MacroRegion = r
		s.Step = StepIndustry
		t.next = searching(s)
		t.reply(textChooseIndustry, industryKeyboard(t.engine.store.CountByIndustry(t.ctx, r)))
	case b.Action == ActBackRegions && s.Step == StepIndustry:
		t.next = searching(Search{Step: StepRegion})
		t.reply(textChooseRegionFor, regionKeyboard(t.engine.store.CountByRegion(t.ctx)))
	case b.Action == ActIndustry && s.Step == StepIndustry:
		ind, ok := t.industry(b.Arg)
		if !ok {
			return
		}
		s.Filter.Industry = ind
		t.runSearch(s.Filter)
	case s.Step == StepViewing:
		t.viewingButton(s, b)
	default:
		t.alert(textStale)
	}
}

func (t *turn) runSearch(f domain.Filter) {
	results := t.engine.store.ListFiltered(t.ctx, f)
	logger.Info(t.ctx, component, "search.results",
		slog.String("status", "ok"),
		slog.String("region", f.MacroRegion),
		slog.String("industry", f.Industry),
		slog.Int("count", len(results)),
	)
	if len(results) == 0 {
		t.clear()
		t.reply(noRecordsText(f), backToMenu("⬅️ Назад"))
		return
	}
	s := Search{Step: StepViewing, Filter: f, Results: results}
	t.next = searching(s)
	t.reply(insightText(results[0], 0, len(results)), viewingKeyboard(&s))
}

func (t *turn) viewingButton(s Search, b Button) {
	switch b.Action {
	case ActNext, ActPrev:
		delta := 1
		if b.Action == ActPrev {
			delta = -1
		}
		s.move(delta)
		t.next = searching(s)
		cur, _ := s.current()
		t.reply(insightText(cur, s.Cursor, len(s.Results)), viewingKeyboard(&s))
	case ActFile:
		cur, ok := s.current()
		if !ok || !cur.HasAttachment() {
			t.alert(textNoFile)
			return
		}
		t.effects = append(t.effects, SendAttachment{
			Ref:       *cur.AttachmentRef,
			Filename:  format.StringOr(cur.AttachmentFilename, ""),
			Photo:     cur.IsPhoto(),
			Caption:   attachmentCaption(cur),
			FailAlert: textDownloadFailed,
		})
	case ActFilters:
		t.reply(filtersText(s.Filter), filtersKeyboard())
	default:
		t.alert(textStale)
	}
}

func (t *turn) text(body string) {
	c := t.sess.Create
	switch {
	case c != nil && c.Step == StepTheme:
		if err := domain.ValidateTheme(body); err != nil {
			msg := textThemeTooLong
			if strings.TrimSpace(body) == "" {
				msg = textThemeEmpty
			}
			logger.Debug(t.ctx, component, "create.theme_rejected",
				slog.String("status", "skip"),
				slog.String("reason", err.Error()),
			)
			t.reply(msg, nil)
			return
		}
		next := *c
		next.Draft.Theme = body
		next.Step = StepDescription
		t.next = Session{Create: &next}
		t.reply(textAskDescription, nil)
	case c != nil && c.Step == StepDescription:
		if strings.TrimSpace(body) == "" {
			t.reply(textDescEmpty, nil)
			return
		}
		next := *c
		next.Draft.Description = body
		next.Step = StepAttachChoice
		t.next = Session{Create: &next}
		t.reply(textAttachChoice, attachKeyboard())
	case c != nil && c.Step == StepAttachPayload:
		t.reply(textExpectFile, nil)
	case !t.sess.Idle():
		t.reply(textUseButtons, nil)
	default:
		t.reply(textUnknown, nil)
	}
}

func (t *turn) attachment(ref string, name *string, photo bool) {
	c := t.sess.Create
	if c == nil || (c.Step != StepAttachPayload && c.Step != StepAttachChoice) {
		switch {
		case c != nil && (c.Step == StepTheme || c.Step == StepDescription):
			t.reply(textExpectText, nil)
		case !t.sess.Idle():
			t.reply(textUseButtons, nil)
		default:
			t.reply(textUnknown, nil)
		}
		return
	}
	d := c.Draft
	d.AttachmentRef = &ref
	if !photo {
		fn := defaultDocumentName
		if name != nil && strings.TrimSpace(*name) != "" {
			fn = *name
		}
		d.AttachmentFilename = &fn
	}
	t.finalize(d)
}

func (t *turn) finalize(d domain.Draft) {
	t.clear()
	saved, err := t.engine.store.Save(t.ctx, d, t.userID)
	if err != nil {
		logger.Error(t.ctx, component, "create.save",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		t.reply(saveFailedText(err), mainMenu())
		return
	}
	logger.Info(t.ctx, component, "create.save",
		slog.String("status", "ok"),
		slog.Int64("insight_id", saved.ID),
		slog.Bool("attachment", saved.HasAttachment()),
	)
	t.reply(createdText(saved), mainMenu())
}

func (t *turn) export() {
	records := t.engine.store.ListAll(t.ctx)
	if len(records) == 0 {
		t.alert(textNoExportData)
		return
	}
	path, err := t.engine.exporter.Export(t.ctx, records, t.userID)
	if err != nil {
		logger.Error(t.ctx, component, "export",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		t.alert(textExportFailed)
		return
	}
	t.effects = append(t.effects, SendFile{
		Path:      path,
		Caption:   exportCaption(len(records)),
		FailAlert: textExportFailed,
	})
}
