// Package providers implements the Completer interface for each supported LLM
// provider.
//
// Supported providers: OpenAI (GPT), Anthropic (Claude), Google (Gemini), and
// Ollama / LM Studio for local models through their OpenAI-compatible
// endpoint. Each provider wraps the vendor's Go SDK with the SDK's own retries
// disabled.
//
// All providers share a common retry helper with exponential back-off on
// rate-limit and server errors. Authentication failures are never retried and
// can be detected with [IsAuthError]. Base URLs can be overridden through the
// environment so tests can redirect calls to local httptest servers.
//
// Use [New] to obtain a Completer by provider name and model string.
package providers
