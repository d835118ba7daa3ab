// GiveBox - Donation Checkout Wizard
// Copyright (C) 2026 Cloud Exit B.V.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cloud-exit/givebox/internal/checkout"
)

const sidebarWidth = 18

// Options configures the checkout screen.
type Options struct {
	Campaign            string
	Tagline             string
	Currency            string
	PresetAmounts       []float64
	Frequency           checkout.Frequency
	NotificationTimeout time.Duration
	Processor           checkout.Processor // nil means the simulated processor
	Views               []checkout.View    // extra notification sinks, e.g. the ledger
}

// allFields lists every text input in screen order.
var allFields = append(append([]checkout.Field{}, checkout.DetailFields...), checkout.PaymentFields...)

type submitDoneMsg struct {
	receipt checkout.Receipt
	err     error
}

type toastExpiredMsg struct{ id int }

// Model is the root bubbletea model for the checkout.
type Model struct {
	machine *checkout.Machine
	notes   *notifier
	opts    Options

	step  checkout.Step
	state checkout.WizardState

	// Amount step: cursor over preset buttons, the last slot is the custom input.
	amountCursor int
	presetIndex  int // selected preset, -1 for none
	customInput  textinput.Model

	inputs      []textinput.Model // parallel to allFields
	fieldCursor int
	invalid     map[checkout.Field]bool

	sidebarFocused bool
	sidebarCursor  int

	toast   notice
	toastID int

	submitting bool
	spinner    spinner.Model

	receipts []checkout.Receipt
	width    int
	height   int
	quitting bool
}

// NewModel creates a checkout model and its state machine.
func NewModel(opts Options) Model {
	notes := newNotifier(opts.Campaign, opts.Currency)
	var view checkout.View = notes
	if len(opts.Views) > 0 {
		view = checkout.MultiView(append([]checkout.View{notes}, opts.Views...))
	}
	machine := checkout.New(view,
		checkout.WithProcessor(opts.Processor),
		checkout.WithFrequency(opts.Frequency),
	)

	custom := textinput.New()
	custom.Prompt = "$"
	custom.Placeholder = "Other amount"
	custom.CharLimit = 9
	custom.Width = 12

	inputs := make([]textinput.Model, len(allFields))
	for i, f := range allFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.Label()
		ti.CharLimit = 64
		ti.Width = 32
		switch f {
		case checkout.FieldCardNumber:
			ti.CharLimit = 23
			ti.Placeholder = "1234 5678 9012 3456"
		case checkout.FieldExpiryDate:
			ti.CharLimit = 5
			ti.Placeholder = "MM/YY"
		case checkout.FieldCVV:
			ti.CharLimit = 4
			ti.EchoMode = textinput.EchoPassword
		}
		inputs[i] = ti
	}

	m := Model{
		machine:     machine,
		notes:       notes,
		opts:        opts,
		presetIndex: -1,
		customInput: custom,
		inputs:      inputs,
		invalid:     make(map[checkout.Field]bool),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.state = machine.State()
	m.step = m.state.ActiveStep
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toastExpiredMsg:
		if msg.id == m.toastID {
			m.toast = notice{}
		}
		return m, nil

	case submitDoneMsg:
		return m.handleSubmitDone(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}

		if msg.String() == "tab" {
			m.sidebarFocused = !m.sidebarFocused
			if m.sidebarFocused {
				m.sidebarCursor = int(m.step)
			}
			return m.refocus(), nil
		}

		if m.sidebarFocused {
			return m.updateSidebar(msg)
		}

		switch m.step {
		case checkout.StepAmount:
			return m.updateAmount(msg)
		case checkout.StepDetails, checkout.StepPayment:
			return m.updateFields(msg)
		}
	}

	return m.updateFocusedInput(msg)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.step {
	case checkout.StepAmount:
		content = m.viewAmount()
	case checkout.StepDetails:
		content = m.viewFields(checkout.StepDetails, "Your details", checkout.DetailFields)
	case checkout.StepPayment:
		content = m.viewPayment()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Donate to " + m.opts.Campaign))
	b.WriteString("\n")
	if m.opts.Tagline != "" {
		b.WriteString(subtitleStyle.Render(m.opts.Tagline))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), " "+content))
	if t := m.renderToast(); t != "" {
		b.WriteString("\n\n")
		b.WriteString(t)
	}
	return b.String()
}

// Receipts returns every donation completed in this session.
func (m Model) Receipts() []checkout.Receipt { return m.receipts }

// Machine exposes the underlying state machine.
func (m Model) Machine() *checkout.Machine { return m.machine }

func (m Model) quit() (tea.Model, tea.Cmd) {
	// Close cancels an in-flight submission; its result is dropped.
	_ = m.machine.Close()
	m.quitting = true
	return m, tea.Quit
}

// --- Machine notifications ---

// applyNotices syncs with the machine and turns queued notifications into
// the toast, invalid field marks, and focus.
func (m Model) applyNotices() (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.state = m.machine.State()
	if m.step != m.state.ActiveStep {
		m.step = m.state.ActiveStep
		m.fieldCursor = 0
	}

	for _, n := range m.notes.drain() {
		if n.kind == noticeSuccess {
			m.invalid = make(map[checkout.Field]bool)
		}
		if len(n.invalid) > 0 {
			m.invalid = make(map[checkout.Field]bool)
			for _, f := range n.invalid {
				m.invalid[f] = true
			}
			m = m.focusField(n.invalid[0])
		}
		if n.text != "" {
			m.toast = n
			m.toastID++
			cmd = m.expireToast()
		}
	}
	return m.refocus(), cmd
}

func (m Model) expireToast() tea.Cmd {
	d := m.opts.NotificationTimeout
	if d <= 0 {
		return nil
	}
	id := m.toastID
	return tea.Tick(d, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m Model) showToast(kind noticeKind, text string) (Model, tea.Cmd) {
	m.toast = notice{kind: kind, text: text}
	m.toastID++
	return m, m.expireToast()
}

func (m Model) renderToast() string {
	switch m.toast.kind {
	case noticeSuccess:
		return toastSuccessStyle.Render("✓ " + m.toast.text)
	case noticeError:
		return toastErrorStyle.Render("! " + m.toast.text)
	case noticeInfo:
		return toastInfoStyle.Render("i " + m.toast.text)
	}
	return ""
}

// --- Focus handling ---

func stepFields(step checkout.Step) []checkout.Field {
	switch step {
	case checkout.StepDetails:
		return checkout.DetailFields
	case checkout.StepPayment:
		return checkout.PaymentFields
	}
	return nil
}

func inputIndex(f checkout.Field) int {
	for i, af := range allFields {
		if af == f {
			return i
		}
	}
	return -1
}

func (m Model) focusField(f checkout.Field) Model {
	if f == checkout.FieldAmount && m.step == checkout.StepAmount {
		m.amountCursor = len(m.opts.PresetAmounts)
		return m
	}
	for i, sf := range stepFields(m.step) {
		if sf == f {
			m.fieldCursor = i
		}
	}
	return m
}

// refocus moves terminal focus to the input under the cursor.
func (m Model) refocus() Model {
	m.customInput.Blur()
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	if m.sidebarFocused {
		return m
	}
	switch m.step {
	case checkout.StepAmount:
		if m.amountCursor == len(m.opts.PresetAmounts) {
			m.customInput.Focus()
		}
	default:
		fields := stepFields(m.step)
		if m.fieldCursor >= len(fields) {
			m.fieldCursor = len(fields) - 1
		}
		if m.fieldCursor >= 0 && len(fields) > 0 {
			m.inputs[inputIndex(fields[m.fieldCursor])].Focus()
		}
	}
	return m
}

func (m Model) form() checkout.Form {
	var f checkout.Form
	for i, field := range allFields {
		f.Set(field, m.inputs[i].Value())
	}
	return f
}

func (m Model) clearForm() Model {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.customInput.SetValue("")
	m.presetIndex = -1
	m.amountCursor = 0
	m.fieldCursor = 0
	m.invalid = make(map[checkout.Field]bool)
	return m
}

// updateFocusedInput forwards non-key messages (cursor blink) to the input
// that has focus.
func (m Model) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.step {
	case checkout.StepAmount:
		m.customInput, cmd = m.customInput.Update(msg)
	default:
		fields := stepFields(m.step)
		if m.fieldCursor < len(fields) {
			idx := inputIndex(fields[m.fieldCursor])
			m.inputs[idx], cmd = m.inputs[idx].Update(msg)
		}
	}
	return m, cmd
}

// --- Amount Step ---

func (m Model) selectPreset(i int) Model {
	if i < 0 || i >= len(m.opts.PresetAmounts) {
		return m
	}
	if err := m.machine.SelectAmount(m.opts.PresetAmounts[i]); err == nil {
		m.presetIndex = i
		m.amountCursor = i
		m.customInput.SetValue("")
	}
	return m
}

func (m Model) toggleFrequency() Model {
	next := checkout.FrequencyMonthly
	if m.state.SelectedFrequency == checkout.FrequencyMonthly {
		next = checkout.FrequencyOnce
	}
	return m.setFrequency(next)
}

func (m Model) setFrequency(f checkout.Frequency) Model {
	if err := m.machine.SelectFrequency(f); err == nil {
		m.state = m.machine.State()
	}
	return m
}

func (m Model) updateAmount(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	presets := len(m.opts.PresetAmounts)
	onCustom := m.amountCursor == presets

	switch key.String() {
	case "left":
		if m.amountCursor > 0 {
			m.amountCursor--
		}
		return m.refocus(), nil
	case "right":
		if m.amountCursor < presets {
			m.amountCursor++
		}
		return m.refocus(), nil
	case "ctrl+f":
		return m.toggleFrequency(), nil
	case "enter":
		if !onCustom {
			m = m.selectPreset(m.amountCursor)
		}
		_, _ = m.machine.AttemptCompleteStep(checkout.StepAmount, m.form())
		return m.applyNotices()
	}

	if onCustom {
		var cmd tea.Cmd
		m.customInput, cmd = m.customInput.Update(key)
		v, err := checkout.ParseAmount(m.customInput.Value())
		if err != nil {
			v = 0
		}
		_ = m.machine.SelectAmount(v)
		m.presetIndex = -1
		m.state = m.machine.State()
		return m, cmd
	}

	switch s := key.String(); s {
	case "h":
		if m.amountCursor > 0 {
			m.amountCursor--
		}
	case "l":
		if m.amountCursor < presets {
			m.amountCursor++
		}
		return m.refocus(), nil
	case " ":
		m = m.selectPreset(m.amountCursor)
	case "f":
		m = m.toggleFrequency()
	case "o":
		m = m.setFrequency(checkout.FrequencyOnce)
	case "m":
		m = m.setFrequency(checkout.FrequencyMonthly)
	case "q":
		return m.quit()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m = m.selectPreset(int(s[0]-'0') - 1)
	}
	m.state = m.machine.State()
	return m, nil
}

func (m Model) viewAmount() string {
	var b strings.Builder
	b.WriteString(stepTitle(checkout.StepAmount, "Choose an amount"))
	b.WriteString("\n\n")

	buttons := make([]string, 0, len(m.opts.PresetAmounts))
	for i, a := range m.opts.PresetAmounts {
		style := amountButtonStyle
		switch {
		case i == m.presetIndex:
			style = amountButtonSelectedStyle
		case i == m.amountCursor:
			style = amountButtonActiveStyle
		}
		buttons = append(buttons, style.Render(checkout.FormatCurrency(a, m.opts.Currency)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, buttons...))
	b.WriteString("\n")

	prefix := "  "
	if m.amountCursor == len(m.opts.PresetAmounts) {
		prefix = cursorStyle.Render("> ")
	}
	label := "Custom amount: "
	if m.invalid[checkout.FieldAmount] {
		label = invalidStyle.Render(label)
	}
	b.WriteString(prefix + label + m.customInput.View() + "\n\n")

	b.WriteString("  Frequency: ")
	for _, f := range []checkout.Frequency{checkout.FrequencyOnce, checkout.FrequencyMonthly} {
		if m.state.SelectedFrequency == f {
			b.WriteString(selectedStyle.Render("(•) " + f.Label()))
		} else {
			b.WriteString(dimStyle.Render("( ) " + f.Label()))
		}
		b.WriteString("  ")
	}
	b.WriteString("\n")

	if m.state.SelectedAmount > 0 {
		b.WriteString(fmt.Sprintf("\n  Selected: %s %s\n",
			selectedStyle.Render(checkout.FormatCurrency(m.state.SelectedAmount, m.opts.Currency)),
			dimStyle.Render(strings.ToLower(m.state.SelectedFrequency.Label()))))
	}

	b.WriteString(helpStyle.Render("←/→ move, Space select, o/m frequency, Enter continue, Tab steps, q quit"))
	return b.String()
}

// --- Details and Payment Steps ---

func (m Model) updateFields(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	fields := stepFields(m.step)

	switch key.String() {
	case "up", "shift+tab":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
		return m.refocus(), nil
	case "down":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
		}
		return m.refocus(), nil
	case "esc":
		if m.submitting {
			return m, nil
		}
		_ = m.machine.RequestStep(m.step - 1)
		return m.applyNotices()
	case "ctrl+s":
		return m.completeStep()
	case "enter":
		if m.fieldCursor < len(fields)-1 {
			m.fieldCursor++
			return m.refocus(), nil
		}
		return m.completeStep()
	}

	if m.submitting {
		return m, nil
	}

	field := fields[m.fieldCursor]
	idx := inputIndex(field)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(key)

	if key.Type != tea.KeyBackspace {
		switch field {
		case checkout.FieldCardNumber:
			m.inputs[idx].SetValue(checkout.FormatCardNumber(m.inputs[idx].Value()))
			m.inputs[idx].CursorEnd()
		case checkout.FieldExpiryDate:
			m.inputs[idx].SetValue(checkout.FormatExpiry(m.inputs[idx].Value()))
			m.inputs[idx].CursorEnd()
		}
	}
	delete(m.invalid, field)
	return m, cmd
}

func (m Model) completeStep() (tea.Model, tea.Cmd) {
	if m.step == checkout.StepDetails {
		_, _ = m.machine.AttemptCompleteStep(checkout.StepDetails, m.form())
		return m.applyNotices()
	}

	if m.submitting || m.machine.Submitting() {
		return m.showToast(noticeInfo, "Your donation is already being processed.")
	}
	m.submitting = true
	return m, tea.Batch(m.spinner.Tick, submitDonation(m.machine, m.form()))
}

func submitDonation(machine *checkout.Machine, form checkout.Form) tea.Cmd {
	return func() tea.Msg {
		r, err := machine.SubmitDonation(context.Background(), form)
		return submitDoneMsg{receipt: r, err: err}
	}
}

func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false
	if errors.Is(msg.err, checkout.ErrClosed) {
		return m, nil
	}
	if msg.err == nil {
		m.receipts = append(m.receipts, msg.receipt)
		m = m.clearForm()
		return m.applyNotices()
	}

	var verr *checkout.ValidationError
	if errors.As(msg.err, &verr) {
		return m.applyNotices()
	}
	m, _ = m.applyNotices()
	return m.showToast(noticeError, "Payment failed: "+msg.err.Error())
}

func (m Model) viewFields(step checkout.Step, title string, fields []checkout.Field) string {
	var b strings.Builder
	b.WriteString(stepTitle(step, title))
	b.WriteString("\n\n")
	for i, f := range fields {
		prefix := "  "
		if i == m.fieldCursor && !m.sidebarFocused {
			prefix = cursorStyle.Render("> ")
		}
		label := fmt.Sprintf("%-15s", f.Label())
		if m.invalid[f] {
			label = invalidStyle.Render(label)
		}
		b.WriteString(prefix + label + " " + m.inputs[inputIndex(f)].View() + "\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ move, Enter next/continue, Esc back, Tab steps, Ctrl+C quit"))
	return b.String()
}

func (m Model) viewPayment() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  Donation: %s (%s)\n\n",
		selectedStyle.Render(checkout.FormatCurrency(m.state.SelectedAmount, m.opts.Currency)),
		m.state.SelectedFrequency.Label()))
	b.WriteString(m.viewFields(checkout.StepPayment, "Payment", checkout.PaymentFields))
	b.WriteString("\n\n")
	if m.submitting {
		b.WriteString(m.spinner.View() + " Processing...")
	} else {
		b.WriteString(cursorStyle.Render(fmt.Sprintf("[ Donate %s ]", checkout.FormatCurrency(m.state.SelectedAmount, m.opts.Currency))))
	}
	return b.String()
}

// --- Sidebar Navigation ---

func stepTitle(step checkout.Step, title string) string {
	return titleStyle.Render(fmt.Sprintf("Step %d/%d — %s", int(step)+1, len(checkout.Steps), title))
}

// renderSidebar returns the step list. Locked steps are dimmed.
func (m Model) renderSidebar() string {
	var b strings.Builder
	for i, s := range checkout.Steps {
		prefix := "  "
		if m.sidebarFocused && m.sidebarCursor == i {
			prefix = cursorStyle.Render("> ")
		}
		label := fmt.Sprintf("%d. %s", i+1, s.Label())

		var line string
		switch {
		case s == m.step:
			line = sidebarActiveStyle.Render(">> " + label)
		case m.state.Completion.Done(s):
			line = sidebarCompletedStyle.Render(label + " ✓")
		case !m.machine.CanAccess(s):
			line = dimStyle.Render(label + " 🔒")
		default:
			line = label
		}
		b.WriteString(prefix + line + "\n")
	}

	style := sidebarStyle
	if m.sidebarFocused {
		style = sidebarFocusedStyle
	}
	return style.Render(b.String())
}

// updateSidebar handles keys when the sidebar is focused.
func (m Model) updateSidebar(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.sidebarCursor > 0 {
			m.sidebarCursor--
		}
	case "down", "j":
		if m.sidebarCursor < len(checkout.Steps)-1 {
			m.sidebarCursor++
		}
	case "1", "2", "3":
		m.sidebarCursor = int(key.String()[0]-'0') - 1
		return m.jumpToStep(checkout.Steps[m.sidebarCursor])
	case "enter":
		return m.jumpToStep(checkout.Steps[m.sidebarCursor])
	case "esc":
		m.sidebarFocused = false
		return m.refocus(), nil
	}
	return m, nil
}

func (m Model) jumpToStep(step checkout.Step) (tea.Model, tea.Cmd) {
	m.sidebarFocused = false
	if m.submitting {
		return m.refocus(), nil
	}
	_ = m.machine.RequestStep(step)
	return m.applyNotices()
}
