package gemini_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kart-io/rafiq/pkg/llm"
	_ "github.com/kart-io/rafiq/pkg/llm/gemini"
)

// Creating a Gemini provider with a basic configuration.
func ExampleNewProvider_basic() {
	provider, err := llm.NewProvider("gemini", map[string]any{
		"api_key": "YOUR_GEMINI_API_KEY",
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("provider name:", provider.Name())
	// Output: provider name: gemini
}

// Running a multi-turn conversation with the Chat method.
func ExampleProvider_Chat() {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Println("skipping example: GEMINI_API_KEY is not set")
		return
	}

	provider, err := llm.NewProvider("gemini", map[string]any{
		"api_key":    os.Getenv("GEMINI_API_KEY"),
		"chat_model": "gemini-2.0-flash",
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are a helpful banking assistant."},
		{Role: llm.RoleUser, Content: "What documents do I need to open an account?"},
	}

	response, err := provider.Chat(ctx, messages)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response)
}

// Generating vector embeddings for a batch of texts with the Embed method.
func ExampleProvider_Embed() {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Println("skipping example: GEMINI_API_KEY is not set")
		return
	}

	provider, err := llm.NewProvider("gemini", map[string]any{
		"api_key": os.Getenv("GEMINI_API_KEY"),
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	texts := []string{
		"Interest rates on fixed deposits are reviewed quarterly.",
		"Cheque books can be requested through any branch.",
	}

	embeddings, err := provider.Embed(ctx, texts)
	if err != nil {
		log.Fatal(err)
	}

	for i, emb := range embeddings {
		fmt.Printf("text %d has %d dimensions\n", i+1, len(emb))
	}
}

// Producing text from a single prompt with the Generate method.
func ExampleProvider_Generate() {
	if os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Println("skipping example: GEMINI_API_KEY is not set")
		return
	}

	provider, err := llm.NewProvider("gemini", map[string]any{
		"api_key":    os.Getenv("GEMINI_API_KEY"),
		"chat_model": "gemini-2.0-flash",
	})
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	response, err := provider.Generate(
		ctx,
		"List the fees that apply to international wire transfers.",
		"You are a concise customer support agent.",
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Response:", response)
}
