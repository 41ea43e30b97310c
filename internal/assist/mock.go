package assist

import "context"

// MockCompleter is a canned completer for tests.
type MockCompleter struct {
	Response string
	Err      error
	Prompts  []string // records what was asked
}

func (m *MockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}
