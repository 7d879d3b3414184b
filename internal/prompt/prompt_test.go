package prompt_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"shuffle/internal/prompt"
)

func TestConsoleConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
		{"y", true},
		{"", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		console := prompt.NewConsole(strings.NewReader(tc.input), &out).Interactive(true)
		got, err := console.Confirm(context.Background(), "Try again?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("Confirm(%q) = %v, want %v", tc.input, got, tc.want)
		}
		if out.String() != "Try again? [y/N]: " {
			t.Errorf("prompt output = %q", out.String())
		}
	}
}

func TestConsoleNonInteractiveAnswersNo(t *testing.T) {
	var out bytes.Buffer
	console := prompt.NewConsole(strings.NewReader("y\n"), &out)
	got, err := console.Confirm(context.Background(), "Try again?")
	if err != nil || got {
		t.Fatalf("expected (false, nil), got (%v, %v)", got, err)
	}
	if out.Len() != 0 {
		t.Fatalf("non-interactive console should not print, got %q", out.String())
	}
}

func TestConsoleCancelled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	console := prompt.NewConsole(reader, io.Discard).Interactive(true)
	if _, err := console.Confirm(ctx, "Try again?"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConsoleAnswerAfterCancelGoesToNextQuestion(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()
	console := prompt.NewConsole(reader, io.Discard).Interactive(true)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := console.Confirm(ctx, "First?"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}

	go func() {
		_, _ = io.WriteString(writer, "y\n")
	}()
	done := make(chan bool, 1)
	go func() {
		ok, _ := console.Confirm(context.Background(), "Second?")
		done <- ok
	}()
	select {
	case ok := <-done:
		if !ok {
			t.Fatal("second question lost its answer")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second Confirm never received the typed line")
	}
}

func TestFixed(t *testing.T) {
	if ok, _ := prompt.Fixed(true).Confirm(context.Background(), "?"); !ok {
		t.Fatal("Fixed(true) should confirm")
	}
	if ok, _ := prompt.Fixed(false).Confirm(context.Background(), "?"); ok {
		t.Fatal("Fixed(false) should decline")
	}
}
