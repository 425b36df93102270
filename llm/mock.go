package llm

import "context"

// MockLLM is a test double that returns canned responses.
type MockLLM struct {
	Response string
	// ResponseFunc, when set, overrides Response.
	ResponseFunc func(prompt string) string
	Err          error

	// Prompts records every prompt passed to Complete or Stream, and the
	// last user message of every Chat call.
	Prompts []string
}

func (m *MockLLM) Complete(_ context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Prompts = append(m.Prompts, prompt)
	if m.ResponseFunc != nil {
		return m.ResponseFunc(prompt), nil
	}
	return m.Response, nil
}

func (m *MockLLM) Chat(_ context.Context, messages []ChatMessage) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	var prompt string
	for _, msg := range messages {
		if msg.Role == RoleUser {
			prompt = msg.Content
		}
	}
	m.Prompts = append(m.Prompts, prompt)
	if m.ResponseFunc != nil {
		return m.ResponseFunc(prompt), nil
	}
	return m.Response, nil
}

func (m *MockLLM) Stream(_ context.Context, prompt string) (<-chan string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Prompts = append(m.Prompts, prompt)
	response := m.Response
	if m.ResponseFunc != nil {
		response = m.ResponseFunc(prompt)
	}
	tokens := make(chan string, 1)
	tokens <- response
	close(tokens)
	return tokens, nil
}

var _ LLM = (*MockLLM)(nil)
