package tui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nao1215/anonyreport/internal/api"
	"github.com/nao1215/anonyreport/internal/message"
	"github.com/nao1215/anonyreport/internal/model"
	"github.com/nao1215/anonyreport/internal/submission"
	"github.com/nao1215/anonyreport/internal/survey"
)

// visibleOptions bounds how many options of a long region list are shown.
const visibleOptions = 8

// Controller is the part of *survey.Controller the model drives.
type Controller interface {
	View() survey.StepView
	Answer(ctx context.Context, field model.Field, values ...string) error
	Advance(ctx context.Context) (bool, error)
	Retreat() (bool, error)
	Submit(ctx context.Context) (submission.Outcome, error)
}

// RegionSource lists the regions below a parent path.
// *api.Client satisfies it.
type RegionSource interface {
	Children(ctx context.Context, parents ...string) ([]string, error)
}

// Messages produced by the model's own commands.
type (
	answeredMsg struct {
		field model.Field
		value string
		err   error
	}
	intentMsg    struct{ err error }
	submittedMsg struct{ err error }
	regionsMsg   struct {
		level   model.RegionLevel
		parents []string
		names   []string
		err     error
	}
)

// Model is the bubbletea model of the questionnaire.
type Model struct {
	ctx     context.Context
	ctrl    Controller
	regions RegionSource
	loc     *message.Localizer

	view   survey.StepView
	group  int
	cursor int

	// options holds the loaded region names per location field.
	options map[model.Field][]string
	loading map[model.Field]bool

	errText    string
	notice     string
	submitting bool
	confirmed  bool
	outcome    submission.Outcome
	quitting   bool
}

// New creates a model showing the controller's active step.
func New(ctx context.Context, ctrl Controller, regions RegionSource, loc *message.Localizer) Model {
	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		regions: regions,
		loc:     loc,
		options: make(map[model.Field][]string),
		loading: make(map[model.Field]bool),
	}
	m.setView(ctrl.View())
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Confirmed returns the accepted outcome once the respondent submitted.
func (m Model) Confirmed() (submission.Outcome, bool) {
	return m.outcome, m.confirmed
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case stepMsg:
		m.setView(msg.view)
	case errorMsg:
		m.errText = m.describe(msg.err)
	case clearErrorMsg:
		m.errText = ""
	case loadRegionsMsg:
		return m, m.loadRegions()
	case submittingMsg:
		m.submitting = msg.submitting
	case confirmedMsg:
		m.confirmed = true
		m.outcome = msg.outcome
		m.notice = ""
		m.errText = ""
	case noticeMsg:
		m.notice = m.loc.Notice(msg.notice)
	case answeredMsg:
		return m.handleAnswered(msg)
	case intentMsg:
		if errors.Is(msg.err, survey.ErrInvalidAnswer) || errors.Is(msg.err, survey.ErrUnknownStep) {
			m.errText = m.describe(msg.err)
		}
	case submittedMsg:
		m.submitting = false
	case regionsMsg:
		m.handleRegions(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirmed {
		if key == "enter" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	groups := len(m.view.Question.Groups)
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.groupOptions(m.group))-1 {
			m.cursor++
		}
	case "tab":
		if groups > 1 {
			m.focus((m.group + 1) % groups)
		}
	case "shift+tab":
		if groups > 1 {
			m.focus((m.group - 1 + groups) % groups)
		}
	case " ", "space", "enter":
		return m, m.choose()
	case "right", "n":
		if !m.view.CanSubmit {
			return m, m.advance()
		}
	case "left", "b":
		if m.view.CanRetreat {
			return m, m.retreat()
		}
	case "s":
		if m.view.CanSubmit && !m.submitting {
			m.submitting = true
			return m, m.submit()
		}
	}
	return m, nil
}

// setView switches to a newly active step.
func (m *Model) setView(view survey.StepView) {
	m.view = view
	m.focus(0)
}

// focus moves to group i and puts the cursor on its selected option.
func (m *Model) focus(i int) {
	m.group = i
	m.cursor = m.selectedIndex()
}

func (m Model) selectedIndex() int {
	field, ok := m.groupField(m.group)
	if !ok {
		return 0
	}
	value := m.answer(field)
	idx := slices.IndexFunc(m.groupOptions(m.group), func(o model.Option) bool { return o.Value == value })
	return max(idx, 0)
}

func (m Model) groupField(i int) (model.Field, bool) {
	groups := m.view.Question.Groups
	if i < 0 || i >= len(groups) {
		return "", false
	}
	return groups[i].Field, true
}

// groupOptions returns the options of group i; region selects use the
// loaded names.
func (m Model) groupOptions(i int) []model.Option {
	groups := m.view.Question.Groups
	if i < 0 || i >= len(groups) {
		return nil
	}

	g := groups[i]
	if g.Kind == model.InputRadio {
		return g.Options
	}

	names := m.options[g.Field]
	opts := make([]model.Option, len(names))
	for j, n := range names {
		opts[j] = model.Option{Value: n, Label: n}
	}
	return opts
}

func (m Model) answer(f model.Field) string {
	if m.view.Answers == nil {
		return ""
	}
	return m.view.Answers.Get(f)
}

func (m Model) choose() tea.Cmd {
	field, ok := m.groupField(m.group)
	opts := m.groupOptions(m.group)
	if !ok || m.cursor >= len(opts) {
		return nil
	}

	value := opts[m.cursor].Value
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return answeredMsg{field: field, value: value, err: ctrl.Answer(ctx, field, value)}
	}
}

func (m Model) handleAnswered(msg answeredMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if !errors.Is(msg.err, survey.ErrSessionComplete) {
			m.errText = m.describe(msg.err)
		}
		return m, nil
	}

	if m.view.Answers == nil {
		m.view.Answers = model.NewAnswerSet()
	}
	m.view.Answers.Set(msg.field, msg.value)

	switch msg.field {
	case model.FieldDepartment:
		m.view.Answers.Clear(model.FieldProvince)
		m.view.Answers.Clear(model.FieldDistrict)
		delete(m.options, model.FieldProvince)
		delete(m.options, model.FieldDistrict)
		m.focus(1)
		return m, m.fetch(model.LevelProvince, msg.value)
	case model.FieldProvince:
		m.view.Answers.Clear(model.FieldDistrict)
		delete(m.options, model.FieldDistrict)
		m.focus(2)
		return m, m.fetch(model.LevelDistrict, m.answer(model.FieldDepartment), msg.value)
	}
	return m, nil
}

func (m Model) advance() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Advance(ctx)
		return intentMsg{err: err}
	}
}

func (m Model) retreat() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Retreat()
		return intentMsg{err: err}
	}
}

func (m Model) submit() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Submit(ctx)
		return submittedMsg{err: err}
	}
}

// fetch loads the regions below parents.
func (m Model) fetch(level model.RegionLevel, parents ...string) tea.Cmd {
	m.loading[level.Field()] = true
	ctx, regions := m.ctx, m.regions
	return func() tea.Msg {
		names, err := regions.Children(ctx, parents...)
		return regionsMsg{level: level, parents: parents, names: names, err: err}
	}
}

// loadRegions fills every location list that has a selected parent but no
// options yet, which also restores the lists after retreat and re-advance.
func (m Model) loadRegions() tea.Cmd {
	var cmds []tea.Cmd
	if len(m.options[model.FieldDepartment]) == 0 {
		cmds = append(cmds, m.fetch(model.LevelDepartment))
	}
	dep := m.answer(model.FieldDepartment)
	if dep != "" && len(m.options[model.FieldProvince]) == 0 {
		cmds = append(cmds, m.fetch(model.LevelProvince, dep))
	}
	if prov := m.answer(model.FieldProvince); dep != "" && prov != "" && len(m.options[model.FieldDistrict]) == 0 {
		cmds = append(cmds, m.fetch(model.LevelDistrict, dep, prov))
	}
	return tea.Batch(cmds...)
}

// handleRegions stores a lookup result unless its parents are no longer selected.
func (m *Model) handleRegions(msg regionsMsg) {
	parents := model.LocationFields()
	for i, p := range msg.parents {
		if m.answer(parents[i]) != p {
			return
		}
	}

	field := msg.level.Field()
	m.loading[field] = false
	if msg.err != nil {
		m.errText = m.loc.T(message.IDLoadError, map[string]any{"Level": msg.level.String()})
		return
	}

	m.options[field] = msg.names
	if f, ok := m.groupField(m.group); ok && f == field {
		m.cursor = m.selectedIndex()
	}
}

// describe turns an error into the text shown to the respondent.
func (m Model) describe(err error) string {
	var rejected *api.RejectedError
	switch {
	case errors.Is(err, survey.ErrIncompleteStep):
		return m.loc.T(message.IDSelectOption, nil)
	case errors.Is(err, submission.ErrLocationMissing):
		return m.loc.T(message.IDLocationMissing, nil)
	case errors.As(err, &rejected):
		detail := rejected.Body
		if detail == "" {
			detail = fmt.Sprintf("%d %s", rejected.StatusCode, http.StatusText(rejected.StatusCode))
		}
		return m.loc.T(message.IDServerError, map[string]any{"Detail": detail})
	case errors.Is(err, api.ErrUnreachable), errors.Is(err, context.DeadlineExceeded):
		return m.loc.T(message.IDConnectionError, nil)
	default:
		return err.Error()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("anonyreport"))
	b.WriteString("\n\n")

	if m.confirmed {
		b.WriteString(boxStyle.Render(selectedStyle.Render(m.loc.T(message.IDSubmitted, nil))))
		b.WriteString("\n\n")
		b.WriteString(footerStyle.Render("enter · q"))
		return b.String()
	}

	b.WriteString(progressBar(m.view.Progress))
	b.WriteString("\n\n")
	b.WriteString(promptStyle.Render(m.view.Question.Prompt))
	b.WriteString("\n\n")

	for i, g := range m.view.Question.Groups {
		m.renderGroup(&b, i, g)
	}

	if m.view.CanSubmit {
		if m.submitting {
			b.WriteString(mutedStyle.Render(m.loc.T(message.IDSubmitting, nil)))
		} else {
			b.WriteString(boxStyle.Render(m.loc.T(message.IDButtonSubmit, nil)))
		}
		b.WriteString("\n")
	}

	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	hint := message.IDHintNavigation
	if m.view.CanSubmit {
		hint = message.IDHintLocation
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.loc.T(hint, nil)))
	return b.String()
}

func (m Model) renderGroup(b *strings.Builder, i int, g model.InputGroup) {
	focused := i == m.group
	if g.Label != "" {
		if focused {
			b.WriteString(cursorStyle.Render(g.Label))
		} else {
			b.WriteString(labelStyle.Render(g.Label))
		}
		b.WriteString("\n")
	}

	selected := m.answer(g.Field)
	opts := m.groupOptions(i)

	if g.Kind == model.InputSelect && (len(opts) == 0 || !focused) {
		text := selected
		if text == "" {
			text = m.placeholder(g.Field)
		}
		b.WriteString("  " + mutedStyle.Render(text) + "\n\n")
		return
	}

	start, end := 0, len(opts)
	if g.Kind == model.InputSelect && len(opts) > visibleOptions {
		start = min(max(m.cursor-visibleOptions/2, 0), len(opts)-visibleOptions)
		end = start + visibleOptions
	}

	for j := start; j < end; j++ {
		o := opts[j]
		pointer := "  "
		if focused && j == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		marker := "( )"
		if o.Value == selected {
			marker = selectedStyle.Render("(•)")
		}
		b.WriteString(pointer + marker + " " + o.Label + "\n")
	}
	b.WriteString("\n")
}

// placeholder is shown in place of an empty region list.
func (m Model) placeholder(field model.Field) string {
	if m.loading[field] {
		return m.loc.T(message.IDLoading, nil)
	}

	fields := model.LocationFields()
	idx := slices.Index(fields, field)
	if idx > 0 && m.answer(fields[idx-1]) == "" {
		return m.loc.T(message.IDSelectParentFirst, map[string]any{"Parent": fields[idx-1].String()})
	}
	return m.loc.T(message.IDSelectPrompt, map[string]any{"Level": field.String()})
}

// progressBar renders p in [0, 1] as a bar and a percentage.
func progressBar(p float64) string {
	filled := min(max(int(p*progressWidth+0.5), 0), progressWidth)
	return barFullStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", progressWidth-filled)) +
		fmt.Sprintf(" %3.0f%%", p*100)
}
