// Package status reports pipeline stage progress and downstream task
// progress parsed from the executor's stdout. It supports accessible
// (plain-text) and rich (coloured) rendering, plus a verbose per-stage
// timing wrapper. Rich-mode colour uses github.com/fatih/color.
package status

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Stage identifies one of the six fixed pipeline stages.
type Stage int

const (
	StageIngest Stage = iota
	StageParse
	StageExpand
	StageIR
	StageSynthesize
	StageExecute
	stageCount
)

var stageKeys = [stageCount]string{
	"stage.ingest",
	"stage.parse",
	"stage.expand",
	"stage.ir",
	"stage.synth",
	"stage.execute",
}

// key returns the message-catalogue key for s. The StageExecute message takes
// the external tool name as its argument, which NewEvent supplies.
func (s Stage) key() string {
	if int(s) < len(stageKeys) {
		return stageKeys[s]
	}
	return "stage.execute"
}

// Event is one (current_index, total, localised_description) stage
// notification.
type Event struct {
	Stage       Stage
	Index       int // 1-based
	Total       int
	Description string
}

// Localizer renders a message-catalogue key to localised text. Satisfied by
// *i18n.Catalogue; expressed as an interface here so this package does not
// import internal/i18n directly.
type Localizer interface {
	T(key string, args ...any) string
}

// Reporter receives stage and task-progress events.
type Reporter interface {
	Stage(ev Event)
	Task(current, total uint32, description string)
	Done()
}

// NewEvent builds an Event for stage at position index of total, resolving
// its description from loc. executorName is only consulted for
// StageExecute, whose description is parameterised by which external tool
// is being invoked.
func NewEvent(loc Localizer, stage Stage, index, total int, executorName string) Event {
	desc := loc.T(stage.key())
	if stage == StageExecute {
		desc = loc.T(stage.key(), executorName)
	}
	return Event{Stage: stage, Index: index, Total: total, Description: desc}
}

// AccessibleReporter renders plain text with no animation or colour, one
// line per event, to w.
type AccessibleReporter struct {
	W io.Writer
}

func (r *AccessibleReporter) Stage(ev Event) {
	fmt.Fprintf(r.W, "[%d/%d] %s\n", ev.Index, ev.Total, ev.Description)
}

func (r *AccessibleReporter) Task(current, total uint32, description string) {
	fmt.Fprintf(r.W, "[%d/%d] %s\n", current, total, description)
}

func (r *AccessibleReporter) Done() {}

// RichReporter renders coloured, single-line-updated progress via
// github.com/fatih/color. Emoji prefixes are included unless SuppressEmoji
// is set (resolved from NETSUKE_NO_EMOJI by the caller).
type RichReporter struct {
	W             io.Writer
	SuppressEmoji bool
}

var (
	stageColor = color.New(color.FgCyan, color.Bold)
	taskColor  = color.New(color.FgGreen)
)

func (r *RichReporter) Stage(ev Event) {
	prefix := "▶ " // ▶
	if r.SuppressEmoji {
		prefix = ""
	}
	stageColor.Fprintf(r.W, "%s[%d/%d] %s\n", prefix, ev.Index, ev.Total, ev.Description)
}

func (r *RichReporter) Task(current, total uint32, description string) {
	prefix := "⚙ " // ⚙
	if r.SuppressEmoji {
		prefix = ""
	}
	taskColor.Fprintf(r.W, "\r%s[%d/%d] %s", prefix, current, total, description)
	if current == total {
		fmt.Fprintln(r.W)
	}
}

func (r *RichReporter) Done() {}

// Accessible resolves whether output should use the accessible (plain-text)
// renderer: an explicit flag wins; otherwise NO_COLOR (any value) or
// TERM=dumb enables it; the default is rich.
func Accessible(explicit *bool, noColorEnv, term string) bool {
	if explicit != nil {
		return *explicit
	}
	if noColorEnv != "" {
		return true
	}
	return term == "dumb"
}

// SuppressEmoji resolves analogously to Accessible, for NETSUKE_NO_EMOJI.
func SuppressEmoji(explicit *bool, noEmojiEnv string) bool {
	if explicit != nil {
		return *explicit
	}
	return noEmojiEnv != ""
}

// NewReporter constructs the appropriate Reporter for accessible.
func NewReporter(w io.Writer, accessible, suppressEmoji bool) Reporter {
	if accessible {
		return &AccessibleReporter{W: w}
	}
	return &RichReporter{W: w, SuppressEmoji: suppressEmoji}
}
