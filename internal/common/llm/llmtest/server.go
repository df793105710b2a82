// Package llmtest provides an in-process OpenAI-compatible server for tests.
package llmtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Server answers /v1/chat/completions and /v1/embeddings.
//
// Chat replies are chosen by the first rule whose substring appears in the
// prompt; Fallback is used otherwise. Embeddings come from EmbedFunc.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	rules     []rule
	Fallback  string
	EmbedFunc func(text string) []float32
	prompts   []string
	failChat  bool
}

type rule struct {
	contains string
	reply    string
}

func NewServer() *Server {
	s := &Server{
		Fallback: "general",
		EmbedFunc: func(text string) []float32 {
			return []float32{float32(len(text)), 1}
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", s.handleChat)
	mux.HandleFunc("/v1/embeddings", s.handleEmbeddings)
	s.Server = httptest.NewServer(mux)
	return s
}

// BaseURL is the value for config.LLMConfig.BaseURL.
func (s *Server) BaseURL() string {
	return s.URL + "/v1"
}

// Reply registers a canned reply for prompts containing substr.
func (s *Server) Reply(substr, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rule{contains: substr, reply: reply})
}

// FailChat makes every chat completion return HTTP 400.
func (s *Server) FailChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failChat = true
}

// Prompts returns every chat prompt received so far.
func (s *Server) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var prompt string
	if len(req.Messages) > 0 {
		prompt = req.Messages[len(req.Messages)-1].Content
	}

	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	fail := s.failChat
	reply := s.Fallback
	for _, rl := range s.rules {
		if strings.Contains(prompt, rl.contains) {
			reply = rl.reply
			break
		}
	}
	s.mu.Unlock()

	if fail {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not loaded","type":"invalid_request_error"}}`))
		return
	}

	writeJSON(w, map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1,
		"model":   req.Model,
		"choices": []map[string]interface{}{
			{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			},
		},
	})
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := make([]map[string]interface{}, len(req.Input))
	for i, text := range req.Input {
		data[i] = map[string]interface{}{
			"object":    "embedding",
			"index":     i,
			"embedding": s.EmbedFunc(text),
		}
	}

	writeJSON(w, map[string]interface{}{
		"object": "list",
		"model":  req.Model,
		"data":   data,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
