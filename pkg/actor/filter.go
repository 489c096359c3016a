package actor

import (
	"github.com/openearth/openclimate/pkg/diag"
	"github.com/openearth/openclimate/pkg/model"
)

// FilterBySection keeps the present overviews that carry a non-empty
// section, in their original relative order. Every present overview that is
// dropped produces one IncompleteData diagnostic, including one whose section
// failed to decode.
//
// Absent slots are skipped without a diagnostic: Overviews already emitted a
// NotFound for them, so a fetch followed by a filter reports each missing
// actor once.
func FilterBySection(c Collection, section model.Section, sink diag.Sink) []*model.Overview {
	if sink == nil {
		sink = diag.Discard
	}

	out := make([]*model.Overview, 0, len(c))
	for _, o := range c {
		if o == nil {
			continue
		}
		if err := o.SectionErr(section); err != nil {
			sink.Emit(diag.MalformedSection(o.ActorID, string(section), err))
			continue
		}
		if !o.HasSection(section) {
			sink.Emit(diag.IncompleteData(o.ActorID, string(section)))
			continue
		}
		out = append(out, o)
	}
	return out
}
