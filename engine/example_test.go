package engine_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/toolguard/engine"
	"github.com/jonwraymond/toolguard/policy"
	"github.com/jonwraymond/toolguard/resilience"
)

func ExampleEngine_Execute() {
	eng := engine.New(engine.Config{})

	// The default table routes github tools through shared circuits with
	// per-category budgets. Unclassified errors are not retried.
	err := eng.Execute(context.Background(), "search_code", func(ctx context.Context) error {
		return errors.New("bad credentials")
	})

	fmt.Println(err)
	// Output:
	// bad credentials
}

func ExampleEngine_ExecuteWithFallback() {
	table := policy.NewTable(
		map[policy.Category]policy.CategoryConfig{
			"lookup": {
				Timeout: time.Second,
				Retry:   resilience.RetryPolicy{MaxAttempts: 1},
				Circuit: resilience.CircuitPolicy{FailureThreshold: 1, ResetTimeout: time.Minute},
			},
		},
		map[string]policy.Route{
			"package_info": {Category: "lookup", Circuit: "package-registry"},
		},
	)
	eng := engine.New(engine.Config{Table: table})

	// The first failure opens the circuit.
	_ = eng.Execute(context.Background(), "package_info", func(ctx context.Context) error {
		return errors.New("registry down")
	})

	// While open, the fallback answers instead of a rejection error.
	err := eng.ExecuteWithFallback(context.Background(), "package_info",
		func(ctx context.Context) error { return errors.New("unreachable") },
		func(ctx context.Context) error {
			fmt.Println("serving cached metadata")
			return nil
		})

	fmt.Println("err:", err)
	// Output:
	// serving cached metadata
	// err: <nil>
}

func ExampleDo() {
	eng := engine.New(engine.Config{})

	content, err := engine.Do(context.Background(), eng, "read_file",
		func(ctx context.Context) (string, error) {
			return "package main", nil
		})

	fmt.Println(content, err)
	// Output:
	// package main <nil>
}
