package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.viam.com/test"
	gutils "go.viam.com/utils"
)

func TestRunInParallel(t *testing.T) {
	wait100ms := func(ctx context.Context) error {
		gutils.SelectContextOrWait(ctx, 100*time.Millisecond)
		return ctx.Err()
	}

	elapsed, err := RunInParallel(context.Background(), []SimpleFunc{wait100ms, wait100ms})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, elapsed, test.ShouldBeLessThan, 190*time.Millisecond)

	errFunc := func(ctx context.Context) error {
		return errors.New("bad")
	}

	elapsed, err = RunInParallel(context.Background(), []SimpleFunc{wait100ms, wait100ms, errFunc})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "bad")
	test.That(t, elapsed, test.ShouldBeLessThan, 90*time.Millisecond)

	panicFunc := func(ctx context.Context) error {
		panic(1)
	}

	_, err = RunInParallel(context.Background(), []SimpleFunc{panicFunc})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "panic")
}

func TestRunInParallelRunsAll(t *testing.T) {
	var count atomic.Int32
	fs := make([]SimpleFunc, 6)
	for i := range fs {
		fs[i] = func(ctx context.Context) error {
			count.Add(1)
			return nil
		}
	}
	_, err := RunInParallel(context.Background(), fs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, count.Load(), test.ShouldEqual, 6)
}

func TestRunInParallelKeepsEveryFailure(t *testing.T) {
	fail := func(msg string) SimpleFunc {
		return func(ctx context.Context) error { return errors.New(msg) }
	}
	_, err := RunInParallel(context.Background(), []SimpleFunc{fail("left"), fail("right")})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "left; right")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunInParallel(ctx, []SimpleFunc{func(ctx context.Context) error { return ctx.Err() }})
	test.That(t, err, test.ShouldBeError, context.Canceled)
}
