package session

// Session es el estado de una sesion durante una request. No se comparte
// entre requests.
type Session struct {
	id     string
	values map[string]string
	dirty  bool
}

func newSession(id string, values map[string]string) *Session {
	if values == nil {
		values = make(map[string]string)
	}
	return &Session{id: id, values: values}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Session) Set(key, value string) {
	s.values[key] = value
	s.dirty = true
}

// Dirty indica si hay cambios pendientes de persistir.
func (s *Session) Dirty() bool {
	return s.dirty
}
