// Package settings provides the settings configuration view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repochat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repochat/internal/core/domain"
	"github.com/custodia-labs/repochat/internal/core/ports/driving"
)

// Section tracks which settings section is active.
type Section int

const (
	SectionOverview Section = iota
	SectionAPIKey
	SectionLLM
	SectionVector
)

// Overview rows, in display order.
const (
	rowAPIKey = iota
	rowLLM
	rowVector
	rowCount
)

const (
	keyUp   = "up"
	keyDown = "down"
)

// View is the settings configuration view.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	settingsService driving.SettingsService

	settings *domain.AppSettings
	err      error
	notice   string

	section  Section
	selected int
	keyInput *input.Field

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, km *keymap.KeyMap, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:          s,
		keymap:          km,
		settingsService: settingsService,
		section:         SectionOverview,
		keyInput:        input.NewSecretInput(s),
	}
}

// Init initialises the view and loads settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

func (v *View) loadSettings() tea.Cmd {
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		settings, err := v.settingsService.Get()
		return messages.SettingsLoaded{Settings: settings, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.settings = msg.Settings
			v.err = nil
		}
		return v, nil

	case messages.APIKeySaved:
		return v.handleSaved(msg.Err, "API key saved")

	case messages.SettingsSaved:
		return v.handleSaved(msg.Err, "Settings saved")

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleSaved(err error, notice string) (*View, tea.Cmd) {
	if err != nil {
		v.err = err
		v.notice = ""
		return v, nil
	}
	v.err = nil
	v.notice = notice
	v.section = SectionOverview
	return v, v.loadSettings()
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Back) {
		if v.section == SectionOverview {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewChat}
			}
		}
		v.leaveSection()
		return v, nil
	}

	switch v.section {
	case SectionAPIKey:
		return v.handleAPIKeyKeys(msg)
	case SectionLLM:
		return v.handleChoiceKeys(msg, len(domain.AllLLMProviders()), v.setLLMProvider)
	case SectionVector:
		return v.handleChoiceKeys(msg, len(domain.AllVectorBackends()), v.setVectorBackend)
	default:
		return v.handleOverviewKeys(msg)
	}
}

func (v *View) handleOverviewKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.EditKey) {
		return v, v.enterAPIKey()
	}

	switch msg.String() {
	case keyUp:
		if v.selected > 0 {
			v.selected--
		}
	case keyDown:
		if v.selected < rowCount-1 {
			v.selected++
		}
	default:
		if !key.Matches(msg, v.keymap.Submit) {
			return v, nil
		}
		switch v.selected {
		case rowAPIKey:
			return v, v.enterAPIKey()
		case rowLLM:
			v.section = SectionLLM
			v.selected = v.llmProviderIndex()
		case rowVector:
			v.section = SectionVector
			v.selected = v.vectorBackendIndex()
		}
	}
	return v, nil
}

func (v *View) handleAPIKeyKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	if key.Matches(msg, v.keymap.Submit) {
		return v, v.saveAPIKey(v.keyInput.Value())
	}
	var cmd tea.Cmd
	v.keyInput, cmd = v.keyInput.Update(msg)
	return v, cmd
}

func (v *View) handleChoiceKeys(msg tea.KeyMsg, count int, apply func(int) tea.Cmd) (*View, tea.Cmd) {
	switch {
	case msg.String() == keyUp:
		if v.selected > 0 {
			v.selected--
		}
	case msg.String() == keyDown:
		if v.selected < count-1 {
			v.selected++
		}
	case key.Matches(msg, v.keymap.Submit):
		return v, apply(v.selected)
	}
	return v, nil
}

func (v *View) enterAPIKey() tea.Cmd {
	v.section = SectionAPIKey
	v.notice = ""
	v.keyInput.Reset()
	return v.keyInput.Focus()
}

func (v *View) leaveSection() {
	switch v.section {
	case SectionAPIKey:
		v.keyInput.Reset()
		v.keyInput.Blur()
		v.selected = rowAPIKey
	case SectionLLM:
		v.selected = rowLLM
	case SectionVector:
		v.selected = rowVector
	}
	v.section = SectionOverview
}

func (v *View) saveAPIKey(apiKey string) tea.Cmd {
	apiKey = strings.TrimSpace(apiKey)
	v.keyInput.Reset()
	v.keyInput.Blur()
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.APIKeySaved{Err: fmt.Errorf("settings service not available")}
		}
		return messages.APIKeySaved{Err: v.settingsService.SetAPIKey(apiKey)}
	}
}

// setLLMProvider keeps the stored key so switching providers never clears it.
func (v *View) setLLMProvider(index int) tea.Cmd {
	providers := domain.AllLLMProviders()
	if index < 0 || index >= len(providers) {
		return nil
	}
	provider := providers[index]
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		apiKey := ""
		if v.settings != nil {
			apiKey = v.settings.LLM.APIKey
		}
		model := domain.DefaultLLMModels()[provider]
		return messages.SettingsSaved{Err: v.settingsService.SetLLMProvider(provider, model, apiKey)}
	}
}

func (v *View) setVectorBackend(index int) tea.Cmd {
	backends := domain.AllVectorBackends()
	if index < 0 || index >= len(backends) {
		return nil
	}
	backend := backends[index]
	return func() tea.Msg {
		if v.settingsService == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		host, port := domain.DefaultVectorHost, domain.DefaultVectorPort
		if v.settings != nil {
			host, port = v.settings.VectorIndex.Host, v.settings.VectorIndex.Port
		}
		return messages.SettingsSaved{Err: v.settingsService.SetVectorBackend(backend, host, port)}
	}
}

func (v *View) llmProviderIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, p := range domain.AllLLMProviders() {
		if p == v.settings.LLM.Provider {
			return i
		}
	}
	return 0
}

func (v *View) vectorBackendIndex() int {
	if v.settings == nil {
		return 0
	}
	for i, b := range domain.AllVectorBackends() {
		if b == v.settings.VectorIndex.Backend {
			return i
		}
	}
	return 0
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	} else if v.notice != "" {
		b.WriteString(v.styles.Success.Render(v.notice))
		b.WriteString("\n\n")
	}

	if v.settings == nil {
		b.WriteString(v.styles.Muted.Render("Loading settings..."))
		b.WriteString("\n")
		return b.String()
	}

	switch v.section {
	case SectionAPIKey:
		b.WriteString(v.renderAPIKey())
	case SectionLLM:
		b.WriteString(v.renderChoices("LLM Provider", llmChoices(), v.llmProviderIndex()))
	case SectionVector:
		b.WriteString(v.renderChoices("Vector Backend", vectorChoices(), v.vectorBackendIndex()))
	default:
		b.WriteString(v.renderOverview())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())
	return b.String()
}

func (v *View) renderOverview() string {
	s := v.settings
	var b strings.Builder

	rows := []string{
		fmt.Sprintf("API Key:        %s", keyStatus(s.LLM.APIKey)),
		fmt.Sprintf("LLM Provider:   %s (%s, temperature %.1f)", s.LLM.Provider, s.LLM.Model, s.LLM.Temperature),
		fmt.Sprintf("Vector Backend: %s", vectorSummary(s.VectorIndex)),
	}
	for i, row := range rows {
		b.WriteString(v.renderRow(row, i == v.selected))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Embedding: %s (%s)", s.Embedding.Provider, s.Embedding.Model)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Retrieval: top %d", s.Retrieval.TopK)))
	b.WriteString("\n")
	return b.String()
}

func (v *View) renderAPIKey() string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("API Key"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("Current: %s", keyStatus(v.settings.LLM.APIKey))))
	b.WriteString("\n")
	b.WriteString(v.keyInput.View())
	b.WriteString("\n")
	return b.String()
}

type choice struct {
	name        string
	description string
}

func llmChoices() []choice {
	providers := domain.AllLLMProviders()
	out := make([]choice, len(providers))
	for i, p := range providers {
		out[i] = choice{name: p.String(), description: p.Description()}
	}
	return out
}

func vectorChoices() []choice {
	backends := domain.AllVectorBackends()
	out := make([]choice, len(backends))
	for i, b := range backends {
		out[i] = choice{name: b.String(), description: b.Description()}
	}
	return out
}

func (v *View) renderChoices(title string, choices []choice, current int) string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(title))
	b.WriteString("\n\n")
	for i, c := range choices {
		line := c.name
		if i == current {
			line += " (current)"
		}
		line += " - " + c.description
		b.WriteString(v.renderRow(line, i == v.selected))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) renderRow(text string, selected bool) string {
	if selected {
		return v.styles.Selected.Render("> " + text)
	}
	return v.styles.Normal.Render("  " + text)
}

func (v *View) renderHelp() string {
	var hint string
	switch v.section {
	case SectionAPIKey:
		hint = "enter: save | esc: cancel"
	case SectionLLM, SectionVector:
		hint = "up/down: select | enter: apply | esc: cancel"
	default:
		hint = "up/down: select | enter: edit | k: set API key | esc: back"
	}
	return v.styles.Help.Render(hint)
}

func keyStatus(apiKey string) string {
	if apiKey == "" {
		return "Not set"
	}
	return "Set"
}

func vectorSummary(vi domain.VectorIndexSettings) string {
	if vi.Backend == domain.VectorBackendMilvus {
		return fmt.Sprintf("%s at %s, collection %s", vi.Backend, vi.Address(), vi.Collection)
	}
	return fmt.Sprintf("%s, collection %s", vi.Backend, vi.Collection)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.keyInput.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Section returns the active section.
func (v *View) Section() Section {
	return v.section
}

// Selected returns the selected row in the active section.
func (v *View) Selected() int {
	return v.selected
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Notice returns the last success message.
func (v *View) Notice() string {
	return v.notice
}

// Reset returns to the overview and reloads settings.
func (v *View) Reset() tea.Cmd {
	v.leaveSection()
	v.selected = 0
	v.err = nil
	v.notice = ""
	return v.loadSettings()
}
