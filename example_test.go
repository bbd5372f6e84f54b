package taskpool_test

import (
	"fmt"

	taskpool "github.com/joeycumines/go-taskpool"
)

// Demonstrates the basic submit-and-get round trip.
func ExampleSubmit() {
	pool, err := taskpool.New(taskpool.WithThreadCount(2))
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	fut := taskpool.Submit(pool, func() (int, error) {
		return 42, nil
	})

	v, err := fut.Get()
	fmt.Println(v, err)

	// Output:
	// 42 <nil>
}

// Demonstrates lazy arguments: the summing task is submitted before its
// input exists, sits in the waiting set without occupying a worker, and runs
// once the producing future settles.
func ExampleAwait() {
	pool, err := taskpool.New(taskpool.WithThreadCount(2))
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	numbers := taskpool.Submit(pool, func() ([]int, error) {
		return []int{1, 2, 3, 4}, nil
	})

	sum := taskpool.Submit1(pool, func(xs []int) (int, error) {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total, nil
	}, taskpool.Await(numbers))

	v, _ := sum.Get()
	fmt.Println(v)

	// Output:
	// 10
}

// Demonstrates pipeline composition with wait-on-close semantics.
func ExamplePipe() {
	pool, err := taskpool.New(taskpool.WithThreadCount(2))
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	pl := taskpool.PipeThen(
		taskpool.Pipe(pool, func() (string, error) {
			return "hello", nil
		}),
		func(s string) (string, error) {
			return s + ", world", nil
		},
	)
	defer pl.Close()

	v, _ := pl.Get()
	fmt.Println(v)

	// Output:
	// hello, world
}

// Demonstrates cooperative cancellation via the stop token.
func ExampleSubmitToken() {
	pool, err := taskpool.New(taskpool.WithThreadCount(1))
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	started := make(chan struct{})
	fut := taskpool.SubmitToken(pool, func(tok taskpool.StopToken) (string, error) {
		close(started)
		<-tok.Done()
		return "", tok.Err()
	})

	<-started
	pool.Abort()

	_, err = fut.Get()
	fmt.Println(err)

	// Output:
	// taskpool: pool stopped
}
