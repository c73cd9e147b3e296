package document

import "testing"

func TestNew(t *testing.T) {
	b := New("test.txt", "one\ntwo\nthree")

	if b.Name() != "test.txt" {
		t.Errorf("Name = %q, want %q", b.Name(), "test.txt")
	}
	if b.ID() == "" {
		t.Error("ID should be assigned")
	}
	if !b.Loaded() {
		t.Error("new buffer should be loaded")
	}
	if b.LineCount() != 3 {
		t.Errorf("LineCount = %d, want 3", b.LineCount())
	}
	if got := b.Line(1); got != "two" {
		t.Errorf("Line(1) = %q, want %q", got, "two")
	}
	if got := b.Line(99); got != "" {
		t.Errorf("Line(99) = %q, want empty", got)
	}
	if got := b.Text(); got != "one\ntwo\nthree" {
		t.Errorf("Text = %q", got)
	}
}

func TestNewEmpty(t *testing.T) {
	b := New("empty", "")
	if b.LineCount() != 1 {
		t.Errorf("empty buffer LineCount = %d, want 1", b.LineCount())
	}
}

func TestUniqueIDs(t *testing.T) {
	a, b := New("a", ""), New("b", "")
	if a.ID() == b.ID() {
		t.Error("two buffers share an ID")
	}
}

func TestOptions(t *testing.T) {
	b := New("t", "x")

	if b.Option(OptSpell) {
		t.Error("spell should default off")
	}
	if !b.Option(OptLegacyHighlight) {
		t.Error("legacy highlighter should default on")
	}

	b.SetOption(OptSpell, true)
	if !b.Option(OptSpell) {
		t.Error("SetOption did not stick")
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		end       int
		lines     []string
		wantText  string
		wantCount int
	}{
		{"replace middle", 1, 2, []string{"TWO"}, "one\nTWO\nthree", 3},
		{"delete rows", 0, 2, nil, "three", 1},
		{"insert rows", 1, 1, []string{"a", "b"}, "one\na\nb\ntwo\nthree", 5},
		{"clamp end", 2, 99, []string{"last"}, "one\ntwo\nlast", 3},
		{"clamp negative start", -5, 1, []string{"first"}, "first\ntwo\nthree", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("t", "one\ntwo\nthree")
			b.Replace(tt.start, tt.end, tt.lines)
			if got := b.Text(); got != tt.wantText {
				t.Errorf("Text = %q, want %q", got, tt.wantText)
			}
			if got := b.LineCount(); got != tt.wantCount {
				t.Errorf("LineCount = %d, want %d", got, tt.wantCount)
			}
		})
	}
}

func TestReplaceNotifiesListeners(t *testing.T) {
	b := New("t", "one\ntwo\nthree")

	type change struct{ start, oldEnd, newEnd int }
	var got []change
	b.OnChange(func(s, o, n int) { got = append(got, change{s, o, n}) })

	b.Replace(1, 2, []string{"a", "b"})

	if len(got) != 1 {
		t.Fatalf("notifications = %d, want 1", len(got))
	}
	if got[0] != (change{1, 2, 3}) {
		t.Errorf("notification = %+v, want {1 2 3}", got[0])
	}
}

func TestSetLine(t *testing.T) {
	b := New("t", "one\ntwo")
	b.SetLine(0, "ONE")
	if got := b.Line(0); got != "ONE" {
		t.Errorf("Line(0) = %q, want %q", got, "ONE")
	}
	if b.LineCount() != 2 {
		t.Errorf("LineCount = %d, want 2", b.LineCount())
	}
}

func TestUnloadBlocksEdits(t *testing.T) {
	b := New("t", "one")
	b.Unload()

	if b.Loaded() {
		t.Error("Unload did not stick")
	}

	notified := false
	b.OnChange(func(_, _, _ int) { notified = true })
	b.SetLine(0, "changed")

	if got := b.Line(0); got != "one" {
		t.Errorf("unloaded buffer edited: %q", got)
	}
	if notified {
		t.Error("unloaded buffer notified listeners")
	}
}
