package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"flipbutton/internal/button"
	"flipbutton/internal/fs"
	"flipbutton/internal/objecturl"
)

// Lookup resolves image references to their registered data.
type Lookup interface {
	Lookup(ref string) (*objecturl.Entry, bool)
}

// Source supplies the latest button View.
type Source interface {
	Current() button.View
}

type dispatchFunc func(button.Event)

// model draws the button and, while a prompt is open, the file picker.
type model struct {
	dispatch dispatchFunc
	source   Source
	refs     Lookup
	styles   styles

	size tea.WindowSizeMsg

	// Set while a prompt is open.
	reply chan pickReply
	fp    filepicker.Model
}

func newModel(dispatch dispatchFunc, source Source, refs Lookup) model {
	return model{
		dispatch: dispatch,
		source:   source,
		refs:     refs,
		styles:   defaultStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) picking() bool {
	return m.reply != nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
		if m.picking() {
			var cmd tea.Cmd
			m.fp, cmd = m.fp.Update(msg)
			return m, cmd
		}
		return m, nil

	case redrawMsg:
		return m, nil

	case openPickerMsg:
		return m.openPicker(msg)

	case closePickerMsg:
		if m.reply == msg.reply {
			m.reply = nil
		}
		return m, nil
	}

	if m.picking() {
		return m.updatePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case " ", "space", "enter":
			m.dispatch(button.Interaction{})
		case "o":
			m.dispatch(button.Interaction{Modifier: true})
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.dispatch(button.Interaction{Modifier: msg.Shift})
		}
	}
	return m, nil
}

func (m model) openPicker(msg openPickerMsg) (tea.Model, tea.Cmd) {
	// A newer prompt replaces the open one.
	m.answer(pickReply{err: button.ErrEmptySelection})

	fp := filepicker.New()
	fp.AllowedTypes = fs.ImageExtensions
	fp.CurrentDirectory = msg.startDir
	fp.AutoHeight = true
	if m.size.Height > 0 {
		fp, _ = fp.Update(m.size)
	}

	m.fp = fp
	m.reply = msg.reply
	return m, m.fp.Init()
}

func (m model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			m.answer(pickReply{err: button.ErrEmptySelection})
			return m, tea.Quit
		case "esc":
			m.answer(pickReply{err: button.ErrEmptySelection})
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.fp, cmd = m.fp.Update(msg)

	if ok, path := m.fp.DidSelectFile(msg); ok {
		f, err := fs.ReadImage(path)
		if err != nil {
			m.answer(pickReply{err: fmt.Errorf("%w: %w", button.ErrPicker, err)})
		} else {
			m.answer(pickReply{file: f})
		}
		return m, nil
	}
	return m, cmd
}

// answer replies to the open prompt, if any, and closes it.
func (m *model) answer(r pickReply) {
	if m.reply == nil {
		return
	}
	m.reply <- r
	m.reply = nil
}

func (m model) View() string {
	if m.picking() {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.styles.title.Render("Choose an image"),
			m.fp.View(),
			m.styles.help.Render("enter: select • esc: cancel"),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderButton(m.source.Current(), m.refs, m.styles),
		m.styles.help.Render("click/space: flip • shift+click/o: choose image • q: quit"),
	)
}

// renderButton draws one View. Images cannot be drawn in a terminal, so a
// custom face shows the image's name and type instead.
func renderButton(v button.View, refs Lookup, st styles) string {
	switch {
	case v.HasClass(button.ClassCustom):
		lines := []string{st.caption.Render(v.Caption)}
		if e, ok := refs.Lookup(v.Background); ok {
			lines = append(lines, e.Name, st.detail.Render(fmt.Sprintf("%s, %s", e.Type, humanSize(e.Size))))
		} else {
			lines = append(lines, st.detail.Render("missing image"))
		}
		return st.custom.Render(strings.Join(lines, "\n"))
	case v.HasClass(button.ClassPressed):
		return st.pressed.Render(st.caption.Render("PRESSED"))
	case v.HasClass(button.ClassExamine):
		return st.examine.Render(st.caption.Render("PRESS ME"))
	default:
		return st.detail.Render("loading…")
	}
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
