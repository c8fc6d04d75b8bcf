// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
//
// Chunk generation supports streaming: partial output is forwarded to
// the caller's StreamFunc while the call is in flight. Rate-limit and
// overload failures from either service are classified into typed
// *retry.ThrottleError values carrying any server wait hint, so the
// retry orchestrator can compute waits from data.
package openai
