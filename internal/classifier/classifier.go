// Package classifier maps free-text symptom descriptions to a specialist category.
package classifier

import "strings"

// Rule pairs a keyword set with the specialist it selects.
type Rule struct {
	Keywords   []string
	Specialist string
}

// Matches reports whether any keyword occurs in the lower-cased text.
func (r Rule) Matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// GeneralPhysician is the catch-all specialist.
const GeneralPhysician = "General Physician"

// DefaultRules is the ordered rule list used by the intake chat. Order is a
// priority list: the first matching rule wins.
var DefaultRules = []Rule{
	{Keywords: []string{"chest pain", "heart", "palpitation"}, Specialist: "Cardiologist"},
	{Keywords: []string{"headache", "migraine", "seizure", "numbness"}, Specialist: "Neurologist"},
	{Keywords: []string{"fever", "cough", "cold", "flu"}, Specialist: GeneralPhysician},
	{Keywords: []string{"stomach", "abdomen", "vomit", "diarrhea", "acidity"}, Specialist: "Gastroenterologist"},
	{Keywords: []string{"breathing", "breathless", "asthma", "wheez"}, Specialist: "Pulmonologist"},
	{Keywords: []string{"joint", "knee", "back pain", "fracture", "bone"}, Specialist: "Orthopedist"},
	{Keywords: []string{"skin", "rash", "itching", "acne"}, Specialist: "Dermatologist"},
	{Keywords: []string{"eye", "vision", "blurry"}, Specialist: "Ophthalmologist"},
	{Keywords: []string{"earache", "ear pain", "hearing", "throat", "sinus"}, Specialist: "ENT Specialist"},
}

// Classifier evaluates rules in order, first match wins.
type Classifier struct {
	rules    []Rule
	fallback string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithFallback makes Classify return specialist instead of a miss.
func WithFallback(specialist string) Option {
	return func(c *Classifier) {
		c.fallback = specialist
	}
}

// New creates a classifier over rules. Keywords are lower-cased once here.
func New(rules []Rule, opts ...Option) *Classifier {
	c := &Classifier{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kws = append(kws, strings.ToLower(kw))
		}
		c.rules = append(c.rules, Rule{Keywords: kws, Specialist: r.Specialist})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns a classifier over DefaultRules without a fallback.
func Default() *Classifier {
	return New(DefaultRules)
}

// Classify returns the specialist of the first matching rule. When nothing
// matches it returns the fallback, and ok is false if there is none.
func (c *Classifier) Classify(text string) (specialist string, ok bool) {
	lowered := strings.ToLower(text)
	for _, r := range c.rules {
		if r.Matches(lowered) {
			return r.Specialist, true
		}
	}
	if c.fallback != "" {
		return c.fallback, false
	}
	return "", false
}

// Rules returns a copy of the configured rules.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}
