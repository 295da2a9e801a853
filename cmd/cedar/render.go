package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"

	"cedarstate"
	"cedarstate/patch"
)

// renderer prints scenario transitions. Colors follow the usual diff
// convention: green additions, red removals, yellow replacements.
type renderer struct {
	w   io.Writer
	dmp *diffmatchpatch.DiffMatchPatch

	add    *color.Color
	remove *color.Color
	change *color.Color
	dim    *color.Color
}

func newRenderer(w io.Writer, colorize bool) *renderer {
	r := &renderer{
		w:      w,
		dmp:    diffmatchpatch.New(),
		add:    color.New(color.FgGreen),
		remove: color.New(color.FgRed),
		change: color.New(color.FgYellow),
		dim:    color.New(color.Faint),
	}
	if !colorize {
		for _, c := range []*color.Color{r.add, r.remove, r.change, r.dim} {
			c.DisableColor()
		}
	}
	return r
}

func (r *renderer) registered(key string, value any, diffTracked bool) {
	mode := "plain"
	if diffTracked {
		mode = "diff-tracked"
	}
	fmt.Fprintf(r.w, "registered %q (%s) = %s\n", key, mode, compactJSON(value))
}

func (r *renderer) stepHeader(i int, op, key string) {
	fmt.Fprintf(r.w, "\n[%d] %s %s\n", i+1, op, key)
}

func (r *renderer) decision(op string, applied bool) {
	if applied {
		fmt.Fprintf(r.w, "  %s applied\n", op)
		return
	}
	r.dim.Fprintf(r.w, "  %s was a no-op\n", op)
}

func (r *renderer) failed(err error) {
	r.remove.Fprintf(r.w, "  step failed: %v\n", err)
}

func (r *renderer) showState(key string, clean, computed any) {
	fmt.Fprintf(r.w, "  clean:    %s\n", compactJSON(clean))
	fmt.Fprintf(r.w, "  computed: %s\n", compactJSON(computed))
}

func (r *renderer) diffState(d *cedarstate.DiffHistoryState) {
	state := "CLEAN"
	if d.DiffState.IsDiffMode {
		state = "DIFF_PENDING"
	}
	fmt.Fprintf(r.w, "  state=%s history=%d redo=%d\n",
		state, len(d.History), len(d.RedoStack))
	for _, op := range d.DiffState.Patches {
		r.renderOp(op, d.DiffState.OldState)
	}
}

func (r *renderer) renderOp(op patch.Op, oldDoc any) {
	switch op.Kind {
	case patch.OpAdd:
		r.add.Fprintf(r.w, "    + %s = %s\n", op.Path, compactJSON(op.Value))
	case patch.OpRemove:
		r.remove.Fprintf(r.w, "    - %s\n", op.Path)
	case patch.OpReplace:
		if old, next, ok := stringPair(oldDoc, op); ok && strings.Contains(next, "\n") {
			r.change.Fprintf(r.w, "    ~ %s\n", op.Path)
			r.renderLineDiff(old, next)
			return
		}
		r.change.Fprintf(r.w, "    ~ %s = %s\n", op.Path, compactJSON(op.Value))
	default:
		fmt.Fprintf(r.w, "    %s\n", op)
	}
}

// renderLineDiff prints a line-level diff of a multi-line string
// replacement, using a line reduction to keep the ops on line boundaries.
func (r *renderer) renderLineDiff(old, next string) {
	a, b, lines := r.dmp.DiffLinesToChars(old, next)
	diffs := r.dmp.DiffCharsToLines(r.dmp.DiffMain(a, b, false), lines)
	for _, d := range diffs {
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				r.add.Fprintf(r.w, "      +%s\n", line)
			case diffmatchpatch.DiffDelete:
				r.remove.Fprintf(r.w, "      -%s\n", line)
			default:
				r.dim.Fprintf(r.w, "       %s\n", line)
			}
		}
	}
}

// stringPair extracts the old and new strings for a replace op when both
// sides are strings.
func stringPair(oldDoc any, op patch.Op) (string, string, bool) {
	next, ok := op.Value.(string)
	if !ok {
		return "", "", false
	}
	prev, err := patch.Get(oldDoc, op.Path)
	if err != nil {
		return "", "", false
	}
	old, ok := prev.(string)
	return old, next, ok
}

func compactJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
