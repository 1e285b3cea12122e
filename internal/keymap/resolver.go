package keymap

import (
	"golang.org/x/xerrors"
)

var errUnknownAction = xerrors.New("unknown action")

// IsUnknownActionError evaluates if the given error reports an override for
// an action that does not exist.
func IsUnknownActionError(err error) bool {
	return xerrors.Is(err, errUnknownAction)
}

// Resolver maps key strings to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys, in binding order
}

// NewResolver creates a resolver from bindings. Overrides, keyed by action
// name, replace every default key of that action.
func NewResolver(bindings []Binding, overrides map[string][]string) (*Resolver, error) {
	byAction := make(map[Action][]string, len(bindings))
	var order []Action
	for _, b := range bindings {
		if _, seen := byAction[b.Action]; !seen {
			order = append(order, b.Action)
		}
		byAction[b.Action] = append(byAction[b.Action], b.Keys...)
	}

	for name, keys := range overrides {
		action := Action(name)
		if _, ok := byAction[action]; !ok {
			return nil, xerrors.Errorf("%q: %w", name, errUnknownAction)
		}
		byAction[action] = keys
	}

	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string, len(byAction)),
	}
	for _, action := range order {
		keys := dedupe(byAction[action])
		r.byAction[action] = keys
		for _, key := range keys {
			// an overridden key moves to its new action
			if _, taken := r.bindings[key]; !taken || overrides[string(action)] != nil {
				r.bindings[key] = action
			}
		}
	}
	return r, nil
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	var keys []string
	for _, k := range r.byAction[action] {
		if r.bindings[k] == action {
			keys = append(keys, k)
		}
	}
	return keys
}

func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
