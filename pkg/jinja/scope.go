package jinja

// scope is a mapping from name to value, chained to a parent scope. Lookups
// fall through to the parent, so macro bodies close over their defining
// context. Scopes are created per render and per macro invocation or loop
// iteration; no scope ever outlives its render.
type scope struct {
	vars   map[string]interface{}
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]interface{}), parent: parent}
}

// lookup walks the parent chain. A missing name yields Undefined, never an
// error.
func (s *scope) lookup(name string) interface{} {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v
		}
	}
	return Undefined
}

func (s *scope) set(name string, v interface{}) {
	s.vars[name] = v
}
