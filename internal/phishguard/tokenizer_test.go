package phishguard

import (
	"os"
	"path/filepath"
	"testing"
)

func writeVocab(t *testing.T, tokens []string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	data := ""
	for _, tok := range tokens {
		data += tok + "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	return path
}

func newTestTokenizer(t *testing.T) *WordPieceTokenizer {
	t.Helper()
	path := writeVocab(t, []string{
		"[PAD]", "[UNK]", "[CLS]", "[SEP]",
		"verify", "your", "account", "ur", "##gent",
	})
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}
	return tok
}

func TestEncode_KnownWords(t *testing.T) {
	tok := newTestTokenizer(t)

	ids, attn := tok.Encode("Verify your account", 8)
	// [CLS] verify your account [SEP] [PAD] [PAD] [PAD]
	want := []int64{2, 4, 5, 6, 3, 0, 0, 0}
	if len(ids) != 8 {
		t.Fatalf("ids length = %d", len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}

	wantAttn := []int64{1, 1, 1, 1, 1, 0, 0, 0}
	for i := range wantAttn {
		if attn[i] != wantAttn[i] {
			t.Fatalf("attn = %v, want %v", attn, wantAttn)
		}
	}
}

func TestEncode_WordPieceSplitting(t *testing.T) {
	tok := newTestTokenizer(t)

	ids, _ := tok.Encode("urgent", 6)
	// [CLS] ur ##gent [SEP] [PAD] [PAD]
	want := []int64{2, 7, 8, 3, 0, 0}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestEncode_UnknownWordMapsToUNK(t *testing.T) {
	tok := newTestTokenizer(t)

	ids, _ := tok.Encode("zzzzz", 5)
	if ids[1] != 1 {
		t.Fatalf("expected [UNK] id 1, got %v", ids)
	}
}

func TestEncode_TruncatesToSeqLen(t *testing.T) {
	tok := newTestTokenizer(t)

	ids, attn := tok.Encode("verify your account verify your account verify your account", 5)
	if len(ids) != 5 || len(attn) != 5 {
		t.Fatalf("lengths = %d, %d", len(ids), len(attn))
	}
	if ids[0] != 2 {
		t.Fatalf("expected leading [CLS], got %v", ids)
	}
	if ids[4] != 3 {
		t.Fatalf("expected trailing [SEP], got %v", ids)
	}
	for _, a := range attn {
		if a != 1 {
			t.Fatalf("expected full attention on truncated input, got %v", attn)
		}
	}
}

func TestEncode_ZeroSeqLen(t *testing.T) {
	tok := newTestTokenizer(t)
	ids, attn := tok.Encode("verify", 0)
	if ids != nil || attn != nil {
		t.Fatalf("expected nil for zero seqLen, got %v %v", ids, attn)
	}
}
