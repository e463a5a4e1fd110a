package mockapi

import "fmt"

// Demo credentials created by SeedDemo.
const (
	DemoUser     = "demo"
	DemoPassword = "demo"
)

var demoWords = []struct{ foreign, native, category string }{
	{"cat", "кот", "nouns"},
	{"dog", "собака", "nouns"},
	{"house", "дом", "nouns"},
	{"to run", "бежать", "verbs"},
	{"to read", "читать", "verbs"},
	{"quickly", "быстро", "adverbs"},
}

var demoTerms = []struct{ term, definition, info string }{
	{"idempotent", "yields the same result when applied more than once", "HTTP GET, PUT and DELETE are idempotent"},
	{"mutex", "a lock granting one holder exclusive access", ""},
	{"backoff", "a growing delay between retries", "often exponential with jitter"},
}

// SeedDemo registers the demo user and fills the foreign and glossary
// collections, when present, with sample items.
func (s *Server) SeedDemo() error {
	if err := s.AddUser(DemoUser, DemoPassword); err != nil {
		return err
	}
	if s.hasCollection("foreign") {
		for _, w := range demoWords {
			fields := map[string]string{"foreign_word": w.foreign, "native_word": w.native}
			if _, err := s.AddItem("foreign", fields, w.category); err != nil {
				return fmt.Errorf("seed word %q: %w", w.foreign, err)
			}
		}
	}
	if s.hasCollection("glossary") {
		for _, g := range demoTerms {
			fields := map[string]string{"term": g.term, "definition": g.definition}
			if g.info != "" {
				fields["info"] = g.info
			}
			if _, err := s.AddItem("glossary", fields, "computing"); err != nil {
				return fmt.Errorf("seed term %q: %w", g.term, err)
			}
		}
	}
	return nil
}

func (s *Server) hasCollection(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collection(name) != nil
}
