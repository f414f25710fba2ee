package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/ytdown/internal/tui/styles"
)

// Layout constants for lists
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// Row is one list entry. Subtitle renders on a second line when set.
type Row struct {
	Title    string
	Subtitle string
	Trailing string
}

// FilterHit is a row index produced by a FilterFunc. MatchedIndexes are
// byte offsets into the row title to highlight.
type FilterHit struct {
	Index          int
	MatchedIndexes []int
}

// FilterFunc ranks rows against query.
type FilterFunc func(query string) []FilterHit

// List is a scrollable, filterable list of rows. Selection is always
// reported as an index into the rows passed to SetRows, regardless of
// filtering.
type List struct {
	rows   []Row
	filter FilterFunc

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title     string
	emptyText string

	// active marks the row currently playing; -1 for none
	active int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	hits         []FilterHit // nil when no filter is applied
}

// NewList creates an empty list. filter may be nil to disable filtering.
func NewList(title string, filter FilterFunc) *List {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.PromptStyle = styles.FilterPromptStyle
	ti.Placeholder = "filter"
	ti.CharLimit = 100

	return &List{
		title:       title,
		filter:      filter,
		emptyText:   "No items",
		active:      -1,
		filterInput: ti,
	}
}

// Update handles navigation and filter input.
func (l *List) Update(msg tea.Msg) (*List, tea.Cmd) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	// Typing into the filter
	if l.filterActive && l.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, ListKeys.Escape):
				l.clearFilter()
				return l, nil
			case key.Matches(keyMsg, ListKeys.Accept):
				l.filterInput.Blur()
				return l, nil
			case keyMsg.String() == "backspace" && l.filterInput.Value() == "":
				l.clearFilter()
				return l, nil
			}
		}

		var cmd tea.Cmd
		l.filterInput, cmd = l.filterInput.Update(msg)
		l.applyFilter()
		return l, cmd
	}

	if !isKey {
		return l, nil
	}

	if l.filterActive {
		switch {
		case key.Matches(keyMsg, ListKeys.Escape):
			l.clearFilter()
			return l, nil
		case key.Matches(keyMsg, ListKeys.Filter):
			l.filterInput.Focus()
			return l, textinput.Blink
		}
	}

	count := l.visibleCount()
	if count == 0 {
		return l, nil
	}

	switch {
	case key.Matches(keyMsg, ListKeys.Down):
		if l.cursor < count-1 {
			l.cursor++
			l.ensureVisible()
		}
	case key.Matches(keyMsg, ListKeys.Up):
		if l.cursor > 0 {
			l.cursor--
			l.ensureVisible()
		}
	case key.Matches(keyMsg, ListKeys.Home):
		l.cursor = 0
		l.offset = 0
	case key.Matches(keyMsg, ListKeys.End):
		l.cursor = count - 1
		l.ensureVisible()
	case key.Matches(keyMsg, ListKeys.HalfDown):
		l.cursor += max(1, l.maxVisible/2)
		if l.cursor >= count {
			l.cursor = count - 1
		}
		l.ensureVisible()
	case key.Matches(keyMsg, ListKeys.HalfUp):
		l.cursor -= max(1, l.maxVisible/2)
		if l.cursor < 0 {
			l.cursor = 0
		}
		l.ensureVisible()
	}
	return l, nil
}

// View renders the list inside a border.
func (l *List) View() string {
	style := styles.InactiveBorder
	if l.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(0, l.width-frameW)).
		Height(max(0, l.height-frameH)).
		Render(l.renderContent())
}

// SetRows replaces the rows, clearing filter and selection.
func (l *List) SetRows(rows []Row) {
	l.rows = rows
	l.cursor = 0
	l.offset = 0
	l.active = -1
	l.clearFilter()
}

// Len returns the number of rows, ignoring the filter.
func (l *List) Len() int {
	return len(l.rows)
}

// SetSize sets outer dimensions.
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.recalcMaxVisible()
	l.ensureVisible()
}

// SetFocused toggles the focus border.
func (l *List) SetFocused(focused bool) {
	l.focused = focused
}

// Focused reports whether the list has focus.
func (l *List) Focused() bool {
	return l.focused
}

// SetEmptyText sets the placeholder shown when there are no rows.
func (l *List) SetEmptyText(text string) {
	l.emptyText = text
}

// SetActive marks the row at index as active (now playing); -1 clears it.
func (l *List) SetActive(index int) {
	l.active = index
}

// SelectedIndex returns the selected row's index into the unfiltered rows,
// or -1 when nothing is selectable.
func (l *List) SelectedIndex() int {
	if l.visibleCount() == 0 {
		return -1
	}
	return l.mapIndex(l.cursor)
}

// Select moves the cursor to the row at index. A filter hiding that row is
// cleared.
func (l *List) Select(index int) {
	if index < 0 || index >= len(l.rows) {
		return
	}
	if l.hits != nil {
		for i, h := range l.hits {
			if h.Index == index {
				l.cursor = i
				l.ensureVisible()
				return
			}
		}
		l.clearFilter()
	}
	l.cursor = index
	l.ensureVisible()
}

// ToggleFilter activates the filter input.
func (l *List) ToggleFilter() tea.Cmd {
	if l.filter == nil {
		return nil
	}
	l.filterActive = true
	l.filterInput.Focus()
	l.recalcMaxVisible()
	return textinput.Blink
}

// IsFiltering returns true if filter mode is active
func (l *List) IsFiltering() bool {
	return l.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (l *List) IsFilterTyping() bool {
	return l.filterActive && l.filterInput.Focused()
}

// ClearFilter deactivates the filter and shows all rows
func (l *List) ClearFilter() {
	l.clearFilter()
}

// Internal methods

func (l *List) rowHeight() int {
	for _, r := range l.rows {
		if r.Subtitle != "" {
			return 2
		}
	}
	return 1
}

func (l *List) recalcMaxVisible() {
	// Reserve space for: title line + scroll indicators
	interior := l.height - BorderHeight - ScrollIndicatorLines - 1
	if l.filterActive {
		interior--
	}
	l.maxVisible = interior / l.rowHeight()
	if l.maxVisible < 1 {
		l.maxVisible = 1
	}
}

func (l *List) ensureVisible() {
	if l.maxVisible <= 0 {
		return
	}
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+l.maxVisible {
		l.offset = l.cursor - l.maxVisible + 1
	}
}

func (l *List) clearFilter() {
	l.filterActive = false
	l.filterQuery = ""
	l.hits = nil
	l.filterInput.SetValue("")
	l.filterInput.Blur()
	l.recalcMaxVisible()
}

func (l *List) applyFilter() {
	query := l.filterInput.Value()
	l.filterQuery = query

	if query == "" || l.filter == nil {
		l.hits = nil
		return
	}

	l.hits = l.filter(query)
	if l.hits == nil {
		l.hits = []FilterHit{}
	}
	l.cursor = 0
	l.offset = 0
}

func (l *List) visibleCount() int {
	if l.hits != nil {
		return len(l.hits)
	}
	return len(l.rows)
}

func (l *List) mapIndex(i int) int {
	if l.hits != nil && i < len(l.hits) {
		return l.hits[i].Index
	}
	return i
}

func (l *List) matchedAt(i int) []int {
	if l.hits != nil && i < len(l.hits) {
		return l.hits[i].MatchedIndexes
	}
	return nil
}

// Rendering

func (l *List) renderContent() string {
	itemWidth := l.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(l.title, itemWidth))

	count := l.visibleCount()
	if count == 0 {
		empty := styles.DimStyle.Render(l.emptyText)
		if l.filterActive && l.filterQuery != "" {
			empty = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n \n" + empty + "\n "
		if l.filterActive {
			content += "\n" + l.renderFilterBar()
		}
		return content
	}

	end := l.offset + l.maxVisible
	if end > count {
		end = count
	}

	var lines []string
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderRow(i, itemWidth))
	}

	// Always reserve space for header and footer to prevent layout shifts
	header := " "
	if l.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if l.filterActive {
		content += "\n" + l.renderFilterBar()
	}
	return content
}

func (l *List) renderRow(i, width int) string {
	selected := i == l.cursor && l.focused
	idx := l.mapIndex(i)
	row := l.rows[idx]

	marker := "  "
	if idx == l.active {
		marker = "▶ "
	}

	trailing := ""
	if row.Trailing != "" {
		trailing = "  " + row.Trailing
	}
	titleWidth := width - 2 - len([]rune(marker)) - len([]rune(trailing))
	title := styles.Truncate(row.Title, titleWidth)

	parts := []styles.RowPart{{Text: marker, Foreground: &styles.Accent}}
	if matched := l.matchedAt(i); len(matched) > 0 && title == row.Title {
		parts = append(parts, styles.RowPart{Text: styles.RenderHighlighted(title, matched, selected), Styled: true})
	} else {
		parts = append(parts, styles.RowPart{Text: title})
	}
	if trailing != "" {
		parts = append(parts, styles.RowPart{Text: trailing, Foreground: &styles.DimGray})
	}

	line := styles.RenderListRow(parts, selected, width)
	if row.Subtitle == "" {
		return line
	}
	sub := styles.RenderListRow([]styles.RowPart{
		{Text: "  " + styles.Truncate(row.Subtitle, width-4), Foreground: &styles.DimGray},
	}, selected, width)
	return line + "\n" + sub
}

func (l *List) renderFilterBar() string {
	countStr := ""
	if l.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", l.visibleCount(), len(l.rows)))
	}
	return l.filterInput.View() + countStr
}
