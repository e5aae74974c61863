package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"

	appconfig "github.com/coastlineai/sentinel/internal/config"
	"github.com/coastlineai/sentinel/internal/llm"
	"github.com/coastlineai/sentinel/pkg/logging"

	"github.com/coastlineai/sentinel/cmd/mainconfig"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	system := []string{
		"You are a crisis-aware assistant. Never invent hotline numbers or services. " +
			"If a resource is unverified, say so plainly.",
	}
	messages := []llm.Message{
		{Role: llm.RoleUser, Content: "I've been having a really hard week and don't know who to talk to."},
	}
	req := llm.Request{
		System:      system,
		Messages:    messages,
		MaxTokens:   200,
		Temperature: 0.7,
	}

	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("model provider smoke test")
	fmt.Println(strings.Repeat("=", 60))

	geminiKey := cfg.GeminiAPIKey
	if geminiKey != "" {
		fmt.Println("\n[1] testing gemini directly...")
		geminiClient, err := llm.NewGeminiClient(ctx, geminiKey, cfg.GeminiModelID)
		if err != nil {
			fmt.Printf("    FAILED to create gemini client: %v\n", err)
		} else {
			runOnce(ctx, "gemini", geminiClient, req)
		}
	} else {
		fmt.Println("\n[1] skipping gemini test (GEMINI_API_KEY not set)")
	}

	if cfg.BedrockModelID != "" {
		fmt.Println("\n[2] testing bedrock directly...")
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			fmt.Printf("    FAILED to load aws config: %v\n", err)
		} else {
			bedrockClient := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
			runOnce(ctx, "bedrock", bedrockClient, req)
		}
	} else {
		fmt.Println("\n[2] skipping bedrock test (BEDROCK_MODEL_ID not set)")
	}

	if cfg.BedrockModelID != "" && geminiKey != "" {
		fmt.Println("\n[3] testing fallback client (bedrock primary, gemini fallback)...")
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			fmt.Printf("    FAILED to load aws config: %v\n", err)
		} else {
			bedrockClient := llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
			geminiClient, err := llm.NewGeminiClient(ctx, geminiKey, cfg.GeminiModelID)
			if err != nil {
				fmt.Printf("    FAILED to create gemini client: %v\n", err)
			} else {
				fallback := llm.NewFallbackClient(bedrockClient, geminiClient, logger)
				runOnce(ctx, "fallback", fallback, req)
			}
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("done")
	os.Exit(0)
}

func runOnce(ctx context.Context, label string, client llm.Client, req llm.Request) {
	start := time.Now()
	resp, err := client.Complete(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("    %s error (%v): %v\n", label, elapsed.Round(time.Millisecond), err)
		return
	}
	fmt.Printf("    %s response (%v):\n", label, elapsed.Round(time.Millisecond))
	fmt.Printf("    %s\n", resp.Text)
	fmt.Printf("    tokens: in=%d out=%d\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
}
