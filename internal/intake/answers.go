package intake

import (
	"strings"

	"github.com/ashureev/talentscout/internal/domain"
)

// AnswerStore holds fixed answers keyed by field and generated-question
// answers by position. Writes overwrite in place.
type AnswerStore struct {
	order   []string
	fixed   map[string]string
	dynamic []string
}

// NewAnswerStore returns an empty store.
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{fixed: make(map[string]string)}
}

// SetFixed stores value for key. The first write of a key fixes its
// position in iteration order.
func (a *AnswerStore) SetFixed(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrBlankAnswer
	}
	if _, ok := a.fixed[key]; !ok {
		a.order = append(a.order, key)
	}
	a.fixed[key] = value
	return nil
}

// SetDynamic stores the answer at index, appending when index equals the
// current length. An index past the end panics: it would leave a gap.
func (a *AnswerStore) SetDynamic(index int, value string) error {
	if index < 0 || index > len(a.dynamic) {
		violate("SetDynamic", "index %d outside [0, %d]", index, len(a.dynamic))
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrBlankAnswer
	}
	if index == len(a.dynamic) {
		a.dynamic = append(a.dynamic, value)
		return nil
	}
	a.dynamic[index] = value
	return nil
}

// Fixed returns the stored value for key.
func (a *AnswerStore) Fixed(key string) (string, bool) {
	v, ok := a.fixed[key]
	return v, ok
}

// Dynamic returns the stored answer at index.
func (a *AnswerStore) Dynamic(index int) (string, bool) {
	if index < 0 || index >= len(a.dynamic) {
		return "", false
	}
	return a.dynamic[index], true
}

// FixedLen reports how many fixed keys have an answer.
func (a *AnswerStore) FixedLen() int { return len(a.order) }

// DynamicLen reports how many generated questions have an answer.
func (a *AnswerStore) DynamicLen() int { return len(a.dynamic) }

// AnswerSnapshot is a detached copy of an AnswerStore.
type AnswerSnapshot struct {
	Fixed   []domain.Field
	Dynamic []string
}

// Snapshot copies the current answers. The result shares no memory with the store.
func (a *AnswerStore) Snapshot() AnswerSnapshot {
	snap := AnswerSnapshot{
		Fixed:   make([]domain.Field, 0, len(a.order)),
		Dynamic: make([]string, len(a.dynamic)),
	}
	for _, k := range a.order {
		snap.Fixed = append(snap.Fixed, domain.Field{Key: k, Value: a.fixed[k]})
	}
	copy(snap.Dynamic, a.dynamic)
	return snap
}
