// Package memvars is a reference VariableResolver/QuestionResolver
// implementation backed by an in-memory map, used by the demonstration
// CLI and by tests. A real host embeds the engine over its own survey
// storage; this package exists to make the engine runnable standalone.
package memvars

import (
	"fmt"
	"sync"

	expression "github.com/limesurvey/expression-engine"
)

// Variable is one entry of the store: a stored value plus the
// attributes a VariableReference's .attr suffix can read.
type Variable struct {
	Value     expression.Value
	Attrs     map[string]expression.Value
	ReadWrite bool
}

// Store is a concurrency-safe, in-memory implementation of
// expression.VariableResolver and expression.QuestionResolver.
type Store struct {
	mu        sync.RWMutex
	vars      map[string]*Variable
	questions map[string]*expression.Question
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		vars:      map[string]*Variable{},
		questions: map[string]*expression.Question{},
	}
}

// Set installs or replaces a variable. attrs may be nil.
func (s *Store) Set(name string, value expression.Value, readWrite bool, attrs map[string]expression.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vars[name] = &Variable{Value: value, Attrs: attrs, ReadWrite: readWrite}
}

// SetQuestion registers a question, addressable by GetByCode(code).
func (s *Store) SetQuestion(code string, q *expression.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[code] = q
}

// Read implements expression.VariableResolver.
func (s *Store) Read(name string, attr *string, groupSeq, questionSeq int) (expression.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	if !ok {
		return expression.Value{}, fmt.Errorf("memvars: unknown variable %q", name)
	}
	if attr == nil {
		return v.Value, nil
	}
	switch *attr {
	case "readWrite":
		return expression.StringValue(yesNo(v.ReadWrite), 0, expression.OriginString), nil
	default:
		if a, ok := v.Attrs[*attr]; ok {
			return a, nil
		}
		return expression.Value{}, fmt.Errorf("memvars: variable %q has no attribute %q", name, *attr)
	}
}

// Write implements expression.VariableResolver. op is carried but
// unused: the store has no distinct assignment operators to apply.
func (s *Store) Write(op, name string, value expression.Value) (expression.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vars[name]
	if !ok {
		return expression.Value{}, fmt.Errorf("memvars: unknown variable %q", name)
	}
	if !v.ReadWrite {
		return expression.Value{}, fmt.Errorf("memvars: variable %q is not writable", name)
	}
	v.Value = value
	return value, nil
}

// GetByCode implements expression.QuestionResolver.
func (s *Store) GetByCode(code string) (*expression.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[code]
	return q, ok
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}
