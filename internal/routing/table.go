package routing

// Table holds the static routing edges and trigger prefixes. Like role
// membership it is configuration loaded once at startup; lookups never fail,
// an unknown role simply has no targets.
type Table struct {
	targets  map[string][]string
	triggers map[string][]string
}

func New(targets map[string][]string, triggers map[string][]string) *Table {
	t := &Table{
		targets:  make(map[string][]string, len(targets)),
		triggers: make(map[string][]string, len(triggers)),
	}
	for role, dests := range targets {
		t.targets[role] = append([]string(nil), dests...)
	}
	for prefix, dests := range triggers {
		t.triggers[prefix] = append([]string(nil), dests...)
	}
	return t
}

// TargetsFor returns the roles that receive traffic sent by senderRole.
func (t *Table) TargetsFor(senderRole string) []string {
	dests := t.targets[senderRole]
	out := make([]string, len(dests))
	copy(out, dests)
	return out
}

// TriggerTargets returns the explicit target roles for a trigger prefix.
// The second return is false when the prefix is not recognized, in which case
// the caller falls back to default routing.
func (t *Table) TriggerTargets(prefix string) ([]string, bool) {
	dests, ok := t.triggers[prefix]
	if !ok {
		return nil, false
	}
	out := make([]string, len(dests))
	copy(out, dests)
	return out, true
}
