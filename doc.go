// DineRec - Conversational Restaurant Recommendations in Go
//
// DineRec is a conversational restaurant recommendation service. Users
// describe what they want to eat in plain language (English or Chinese),
// the service extracts structured dining preferences, confirms them, and
// then runs an asynchronous recommendation task whose progress can be
// polled while a staged agent pipeline searches, filters and summarizes
// candidate restaurants.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/smallnest/dinerec
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"time"
//
//		"github.com/smallnest/dinerec/conversation"
//		"github.com/smallnest/dinerec/intent"
//	)
//
//	func main() {
//		classifier, _ := intent.NewLLMClassifier("") // uses OPENAI_API_KEY
//		svc := conversation.NewService(classifier)
//
//		ctx := context.Background()
//		out, _ := svc.ProcessMessage(ctx, "u1", "I want spicy food near Chinatown")
//		fmt.Println(out.Reply) // confirmation question
//
//		out, _ = svc.ProcessMessage(ctx, "u1", "yes")
//		for {
//			task, _ := svc.Tasks().Get(out.TaskID)
//			fmt.Printf("[%d%%] %s\n", task.Progress, task.Message)
//			if task.Status == conversation.TaskCompleted {
//				fmt.Println(conversation.RenderResultMarkdown(task.Result))
//				break
//			}
//			time.Sleep(500 * time.Millisecond)
//		}
//	}
//
// # Package Structure
//
// conversation/
// The dialogue layer: intent-driven state machine, confirmation rounds,
// asynchronous task manager, and result rendering.
//
// intent/
// Message classification. An LLM-backed classifier extracts intent,
// preferences and profile updates; a rule-based classifier serves as an
// offline fallback.
//
// agent/
// The staged recommendation pipeline (planning, execution, summary) with
// ordered progress events and offline replay of recorded runs.
//
// tool/
// External retrieval tools behind a closed registry with bounded
// per-call timeouts.
//
// recommend/
// Pure preference filtering, ranking and confidence scoring over the
// restaurant dataset.
//
// store/
// Persistence interfaces with in-memory, file, Redis, SQLite and
// PostgreSQL backends:
//
//	ctxStore := redis.NewContextStore(redis.RedisOptions{
//		Addr: "localhost:6379",
//		TTL:  30 * time.Minute,
//	})
//	svc := conversation.NewService(classifier,
//		conversation.WithContextStore(ctxStore))
//
// log/
// Simple logging utilities with a golog-backed implementation.
//
// # Configuration
//
// The library reads the following environment variables:
//
//   - OPENAI_API_KEY: API key for the LLM classifier and agents
package dinerec // import "github.com/smallnest/dinerec"
