package protocol

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestLineReaderSplitsAndSkipsBlanks(t *testing.T) {
	input := "{\"action\":\"register\"}\n\n   \n{\"action\":\"login\"}\n"
	lr := NewLineReader(strings.NewReader(input))

	first, err := lr.Next()
	if err != nil {
		t.Fatalf("first line: %v", err)
	}
	if string(first) != `{"action":"register"}` {
		t.Fatalf("unexpected first line: %q", first)
	}

	second, err := lr.Next()
	if err != nil {
		t.Fatalf("second line: %v", err)
	}
	if string(second) != `{"action":"login"}` {
		t.Fatalf("unexpected second line: %q", second)
	}

	if _, err := lr.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestLineReaderHandlesFragmentedReads(t *testing.T) {
	input := "{\"action\":\"typing\",\"recipient\":\"bob\"}\n{\"action\":\"login\"}\n"
	lr := NewLineReader(iotest.OneByteReader(strings.NewReader(input)))

	first, err := lr.Next()
	if err != nil {
		t.Fatalf("first line: %v", err)
	}
	if string(first) != `{"action":"typing","recipient":"bob"}` {
		t.Fatalf("unexpected first line: %q", first)
	}

	second, err := lr.Next()
	if err != nil {
		t.Fatalf("second line: %v", err)
	}
	if string(second) != `{"action":"login"}` {
		t.Fatalf("unexpected second line: %q", second)
	}
}

func TestLineReaderDropsUnterminatedTail(t *testing.T) {
	lr := NewLineReader(strings.NewReader(`{"action":"login"`))
	if _, err := lr.Next(); err != io.EOF {
		t.Fatalf("expected EOF for unterminated line, got %v", err)
	}
}

func TestDecodeAction(t *testing.T) {
	testCases := []struct {
		name   string
		line   string
		action string
		ok     bool
	}{
		{name: "valid", line: `{"action":"register","username":"alice"}`, action: "register", ok: true},
		{name: "garbage", line: `{not json`, ok: false},
		{name: "no_action", line: `{"username":"alice"}`, ok: false},
		{name: "non_object", line: `42`, ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			action, ok := DecodeAction([]byte(tc.line))
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if action != tc.action {
				t.Fatalf("expected action %q, got %q", tc.action, action)
			}
		})
	}
}
