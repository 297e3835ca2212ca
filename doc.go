// Package openai is a thin typed client for the OpenAI HTTP API: models,
// chat completions (plain and streamed), legacy text completions, edits,
// embeddings and image generation.
//
// Each call serializes an arguments struct to JSON, sends it with bearer
// authentication and decodes the reply. Non-2xx replies become *APIError.
// There is no retry, caching or rate limiting.
//
//	client := openai.New("") // reads OPENAI_API_KEY
//	args := openai.NewChatArguments("gpt-4o-mini",
//	    openai.UserMessage("Hello!"),
//	).WithTemperature(0.2)
//	completion, err := client.CreateChat(ctx, args)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(completion)
//
// Spans, logs and metrics are emitted when an observability.Provider is set
// with WithObserver (see observability/slogobs) or a metrics sink with
// WithMetrics (see observability/promobs).
package openai
