// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package otlbsim_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/petenewcomb/lbsim-go"
	"github.com/petenewcomb/lbsim-go/otlbsim"
	"github.com/petenewcomb/lbsim-go/topology"
	"github.com/petenewcomb/lbsim-go/workload"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func fakeWork(_ context.Context, load int, _ workload.OpKind) (time.Duration, error) {
	return time.Duration(load) * time.Millisecond, nil
}

// useRecorder installs a global tracer provider that records finished spans
// for the duration of the test.
func useRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return tp, recorder
}

func TestComputeSpansNestUnderIterations(t *testing.T) {
	chk := require.New(t)
	tp, recorder := useRecorder(t)
	restore := zap.ReplaceGlobals(zaptest.NewLogger(t))
	defer restore()

	w := &workload.Funcs{
		Tasks:            4,
		Iterations:       4,
		Frequency:        2,
		Kind:             topology.Ring,
		LoadFunc:         func(task, iteration, _ int) int { return task + iteration },
		MessageCountFunc: func(int, int, int) int { return 1 },
	}
	_, err := lbsim.Run(context.Background(), w, &lbsim.Options{
		Units:    2,
		Work:     otlbsim.InstrumentedWork("compute", fakeWork),
		Balancer: otlbsim.InstrumentedBalancer("balance", lbsim.GreedyBalancer{}),
		Tracer:   tp.Tracer("test"),
	})
	chk.NoError(err)

	byName := map[string][]sdktrace.ReadOnlySpan{}
	for _, s := range recorder.Ended() {
		byName[s.Name()] = append(byName[s.Name()], s)
	}
	chk.Len(byName["iteration"], 4)
	chk.Len(byName["rebalance"], 1)
	chk.Len(byName["compute"], 16)
	chk.Len(byName["balance"], 1)

	iterations := map[string]bool{}
	for _, s := range byName["iteration"] {
		iterations[s.SpanContext().SpanID().String()] = true
	}
	for _, s := range byName["compute"] {
		chk.True(iterations[s.Parent().SpanID().String()], "compute span parent %v", s.Parent().SpanID())
		chk.True(s.Parent().IsRemote())
	}
	chk.Equal(byName["rebalance"][0].SpanContext().SpanID(), byName["balance"][0].Parent().SpanID())
}

func TestTracedWorkRecordsErrors(t *testing.T) {
	chk := require.New(t)
	_, recorder := useRecorder(t)
	boom := errors.New("boom")
	work := otlbsim.TracedWork("compute", func(context.Context, int, workload.OpKind) (time.Duration, error) {
		return time.Millisecond, boom
	})
	elapsed, err := work(context.Background(), 3, workload.Float)
	chk.ErrorIs(err, boom)
	chk.Equal(time.Millisecond, elapsed)

	spans := recorder.Ended()
	chk.Len(spans, 1)
	chk.Equal(codes.Error, spans[0].Status().Code)
	chk.Len(spans[0].Events(), 1)
}

func TestLoggedBalancerPassesThrough(t *testing.T) {
	chk := require.New(t)
	restore := zap.ReplaceGlobals(zaptest.NewLogger(t))
	defer restore()
	b := otlbsim.LoggedBalancer("balance", lbsim.RoundRobinBalancer{})
	loads := []lbsim.TaskLoad{{Task: 0, Unit: 0}, {Task: 1, Unit: 1}, {Task: 2, Unit: 0}}
	want, err := lbsim.RoundRobinBalancer{}.Balance(context.Background(), loads, 2)
	chk.NoError(err)
	got, err := b.Balance(context.Background(), loads, 2)
	chk.NoError(err)
	chk.Equal(want, got)
}
