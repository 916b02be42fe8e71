package exclproc

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitPending(t *testing.T, p *Proc) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !p.Pending() {
		if time.Now().After(deadline) {
			t.Fatal("request never became pending")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestDoRunsOnProcessor(t *testing.T) {
	p := New()
	ran := false
	errc := make(chan error, 1)
	go func() {
		errc <- p.Do(context.Background(), func() { ran = true })
	}()

	waitPending(t, p)
	if !p.ProcessOrWait() {
		t.Fatal("expected a procedure to run")
	}
	if err := <-errc; err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !ran {
		t.Error("procedure did not run")
	}
	if p.Pending() {
		t.Error("expected nothing pending after processing")
	}
}

func TestDoBlocksUntilProcessed(t *testing.T) {
	p := New()
	errc := make(chan error, 1)
	go func() {
		errc <- p.Do(context.Background(), func() {})
	}()

	waitPending(t, p)
	select {
	case <-errc:
		t.Fatal("Do returned before the procedure ran")
	case <-time.After(20 * time.Millisecond):
	}
	p.ProcessOrWait()
	<-errc
}

func TestProcessOrWaitIdle(t *testing.T) {
	p := New()
	if p.Pending() {
		t.Error("expected nothing pending")
	}
	if p.ProcessOrWait() {
		t.Error("expected no procedure to run")
	}
}

func TestDoAfterClose(t *testing.T) {
	p := New()
	p.Close()
	p.Close()
	if err := p.Do(context.Background(), func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestCloseReleasesWaiter(t *testing.T) {
	p := New()
	errc := make(chan error, 1)
	go func() {
		errc <- p.Do(context.Background(), func() {})
	}()
	waitPending(t, p)
	p.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do did not return after Close")
	}
}

func TestDoContextCanceled(t *testing.T) {
	p := New()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- p.Do(ctx, func() {})
	}()
	waitPending(t, p)
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
