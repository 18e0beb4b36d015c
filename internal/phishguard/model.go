package phishguard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Model wraps the ONNX session and tokenizer for the binary
// phishing/safe text classifier. The session and its tensors are allocated
// once at load time; inference is serialized by an internal mutex because
// the pre-allocated tensors are reused across calls.
type Model struct {
	session   *ort.AdvancedSession
	tokenizer *WordPieceTokenizer
	labels    []string
	seqLen    int

	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]

	mu sync.Mutex
}

// Load initializes the ONNX session, tokenizer, and label map from a bundle
// directory containing phishguard.onnx, label_map.json, and
// tokenizer/vocab.txt.
func Load(bundleDir string, seqLen int) (*Model, error) {
	if bundleDir == "" {
		return nil, errors.New("bundleDir is empty")
	}
	if seqLen <= 0 {
		seqLen = 256
	}

	libPath := resolveSharedLibraryPath(bundleDir)
	if libPath == "" {
		return nil, fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	modelPath := filepath.Join(bundleDir, "phishguard.onnx")
	labelsPath := filepath.Join(bundleDir, "label_map.json")
	vocabPath := filepath.Join(bundleDir, "tokenizer", "vocab.txt")

	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}

	labels, err := loadLabels(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}

	tokenizer, err := LoadWordPieceTokenizer(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	inputShape := ort.NewShape(1, int64(seqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(labels))))
	if err != nil {
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Model{
		session:       session,
		tokenizer:     tokenizer,
		labels:        labels,
		seqLen:        seqLen,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
	}, nil
}

// Classify runs inference and returns the predicted label with the softmax
// probability of that label.
func (m *Model) Classify(ctx context.Context, text string) (string, float64, error) {
	if m == nil || m.session == nil || m.tokenizer == nil {
		return "", 0, errors.New("phishguard model not initialized")
	}
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	inputIDs, attn := m.tokenizer.Encode(text, m.seqLen)

	m.mu.Lock()
	defer m.mu.Unlock()

	copy(m.inputIDs.GetData(), inputIDs)
	copy(m.attentionMask.GetData(), attn)

	if err := m.session.Run(); err != nil {
		return "", 0, fmt.Errorf("onnx run: %w", err)
	}

	logits := m.output.GetData()
	if len(logits) == 0 {
		return "", 0, errors.New("empty logits from model")
	}

	probs := softmax(logits)
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	if best >= len(m.labels) {
		return "", 0, fmt.Errorf("predicted index %d outside label map", best)
	}
	return m.labels[best], float64(probs[best]), nil
}

func softmax(logits []float32) []float64 {
	max := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > max {
			max = float64(l)
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(float64(l) - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		return arr, nil
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	out := make([]string, len(m))
	for k, v := range m {
		idx, convErr := strconv.Atoi(k)
		if convErr != nil {
			return nil, fmt.Errorf("invalid label index %q: %w", k, convErr)
		}
		if idx < 0 || idx >= len(m) {
			return nil, fmt.Errorf("label index %d out of range", idx)
		}
		out[idx] = v
	}
	return out, nil
}

// resolveSharedLibraryPath locates a platform-specific onnxruntime shared
// library. ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common
// names and locations are probed.
func resolveSharedLibraryPath(bundleDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		bundleDir,
		filepath.Join(bundleDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
