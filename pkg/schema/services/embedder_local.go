package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/parole-du-moment-api/pkg/schema/config"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// LocalEmbedder implements Embedder with an ONNX sentence-embedding model
// running in-process. The default model is a multilingual MiniLM export,
// which keeps French queries working without a network dependency.
type LocalEmbedder struct {
	cfg       *config.Config
	tokenizer *tokenizer.Tokenizer
	session   *ort.DynamicAdvancedSession
	maxSeqLen int

	// ONNX Runtime sessions share input/output bindings; serialize Run calls.
	mu sync.Mutex
}

// NewLocalEmbedder loads the tokenizer and ONNX model from disk
func NewLocalEmbedder(cfg *config.Config) (*LocalEmbedder, error) {
	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", cfg.TokenizerPath, err)
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(cfg.OnnxLibraryPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.OnnxModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load ONNX model %s: %w", cfg.OnnxModelPath, err)
	}

	maxSeqLen := cfg.MaxSequenceLen
	if maxSeqLen <= 0 {
		maxSeqLen = 128
	}

	return &LocalEmbedder{
		cfg:       cfg,
		tokenizer: tk,
		session:   session,
		maxSeqLen: maxSeqLen,
	}, nil
}

// Close releases the ONNX session
func (e *LocalEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		err := e.session.Destroy()
		e.session = nil
		return err
	}
	return nil
}

// Embed generates a unit-normalized embedding for a single text.
// The task type is ignored: the local model is symmetric.
func (e *LocalEmbedder) Embed(ctx context.Context, text string, _ TaskType) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	encoding, err := e.tokenizer.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize text: %w", err)
	}

	ids := encoding.Ids
	mask := encoding.AttentionMask
	types := encoding.TypeIds
	if len(ids) > e.maxSeqLen {
		ids = ids[:e.maxSeqLen]
		mask = mask[:e.maxSeqLen]
		types = types[:e.maxSeqLen]
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("tokenizer produced no tokens")
	}

	seqLen := len(ids)
	inputIDs := make([]int64, seqLen)
	attentionMask := make([]int64, seqLen)
	tokenTypes := make([]int64, seqLen)
	for i := 0; i < seqLen; i++ {
		inputIDs[i] = int64(ids[i])
		attentionMask[i] = int64(mask[i])
		tokenTypes[i] = int64(types[i])
	}

	shape := ort.NewShape(1, int64(seqLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typesTensor, err := ort.NewTensor(shape, tokenTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to create token type tensor: %w", err)
	}
	defer typesTensor.Destroy()

	outputs := []ort.Value{nil}

	e.mu.Lock()
	runErr := e.session.Run([]ort.Value{idsTensor, maskTensor, typesTensor}, outputs)
	e.mu.Unlock()
	if runErr != nil {
		return nil, fmt.Errorf("ONNX inference failed: %w", runErr)
	}

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected ONNX output type %T", outputs[0])
	}
	defer hidden.Destroy()

	dims := hidden.GetShape()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected ONNX output rank %d", len(dims))
	}
	hiddenSize := int(dims[2])

	return meanPool(hidden.GetData(), attentionMask, seqLen, hiddenSize), nil
}

// EmbedBatch embeds texts one at a time through the single session
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string, taskType TaskType) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t, taskType)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// meanPool averages token vectors weighted by the attention mask and
// normalizes the result to unit length.
func meanPool(hidden []float32, mask []int64, seqLen, hiddenSize int) []float64 {
	pooled := make([]float64, hiddenSize)
	var count float64
	for t := 0; t < seqLen; t++ {
		if mask[t] == 0 {
			continue
		}
		count++
		base := t * hiddenSize
		for j := 0; j < hiddenSize; j++ {
			pooled[j] += float64(hidden[base+j])
		}
	}
	if count > 0 {
		for j := range pooled {
			pooled[j] /= count
		}
	}
	return normalizeVector(pooled)
}
