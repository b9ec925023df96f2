package vad

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/keyscribe/dictation-engine/pkg/audio"
)

// neuralWindowSamples and neuralStateSize match the Silero VAD v5 input
// contract: 512 float32 samples (32ms at 16kHz) and a [2,1,128] hidden
// state.
const (
	neuralWindowSamples = 512
	neuralStateSize     = 128
	neuralSampleRate    = 16000
)

var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// NeuralPolicy runs a Silero-shaped ONNX voice-activity model: PCM is
// accumulated into fixed 512-sample windows, each window is scored by the
// model, and the RNN hidden state carries forward between calls so the
// verdict tracks context across chunks.
type NeuralPolicy struct {
	mu sync.Mutex

	session *ort.AdvancedSession

	inputTensor  *ort.Tensor[float32]
	stateTensor  *ort.Tensor[float32]
	srTensor     *ort.Tensor[int64]
	outputTensor *ort.Tensor[float32]
	stateNTensor *ort.Tensor[float32]

	pcmBuf    []float32
	threshold float64
	lastProb  float64
}

// NewNeuralPolicy loads the ONNX model at modelPath and allocates the
// tensors for inference. sharedLibPath points at the onnxruntime shared
// library (platform-specific .so/.dll/.dylib); it is resolved once per
// process.
func NewNeuralPolicy(modelPath, sharedLibPath string, threshold float64) (*NeuralPolicy, error) {
	ortInitOnce.Do(func() {
		if sharedLibPath != "" {
			ort.SetSharedLibraryPath(sharedLibPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("neural vad: initialize onnxruntime: %w", ortInitErr)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, neuralWindowSamples))
	if err != nil {
		return nil, fmt.Errorf("neural vad: create input tensor: %w", err)
	}
	stateTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, neuralStateSize))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("neural vad: create state tensor: %w", err)
	}
	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{neuralSampleRate})
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		return nil, fmt.Errorf("neural vad: create sr tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		return nil, fmt.Errorf("neural vad: create output tensor: %w", err)
	}
	stateNTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(2, 1, neuralStateSize))
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("neural vad: create stateN tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		[]ort.Value{inputTensor, stateTensor, srTensor},
		[]ort.Value{outputTensor, stateNTensor},
		nil,
	)
	if err != nil {
		inputTensor.Destroy()
		stateTensor.Destroy()
		srTensor.Destroy()
		outputTensor.Destroy()
		stateNTensor.Destroy()
		return nil, fmt.Errorf("neural vad: create session: %w", err)
	}

	return &NeuralPolicy{
		session:      session,
		inputTensor:  inputTensor,
		stateTensor:  stateTensor,
		srTensor:     srTensor,
		outputTensor: outputTensor,
		stateNTensor: stateNTensor,
		pcmBuf:       make([]float32, 0, neuralWindowSamples*2),
		threshold:    threshold,
	}, nil
}

// Classify buffers the chunk's PCM and runs inference for every complete
// 512-sample window accumulated so far, returning the most recent
// probability. If the chunk didn't complete a window, it returns the
// previous verdict unchanged rather than guessing.
func (p *NeuralPolicy) Classify(chunk audio.Chunk) (bool, float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	samples := pcmToFloat32(chunk.Samples)
	p.pcmBuf = append(p.pcmBuf, samples...)

	for len(p.pcmBuf) >= neuralWindowSamples {
		prob, err := p.infer(p.pcmBuf[:neuralWindowSamples])
		p.pcmBuf = p.pcmBuf[neuralWindowSamples:]
		if err != nil {
			continue
		}
		p.lastProb = prob
	}
	return p.lastProb >= p.threshold, p.lastProb
}

func (p *NeuralPolicy) infer(window []float32) (float64, error) {
	copy(p.inputTensor.GetData(), window)
	if err := p.session.Run(); err != nil {
		return 0, fmt.Errorf("neural vad: inference: %w", err)
	}
	prob := p.outputTensor.GetData()[0]
	copy(p.stateTensor.GetData(), p.stateNTensor.GetData())
	return float64(prob), nil
}

func (p *NeuralPolicy) SetThreshold(threshold float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.threshold = threshold
}

// Reset clears the hidden state and PCM buffer.
func (p *NeuralPolicy) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clearFloat32(p.stateTensor.GetData())
	p.pcmBuf = p.pcmBuf[:0]
	p.lastProb = 0
}

func (p *NeuralPolicy) Name() string { return "neural" }

// Close releases the ONNX Runtime resources. Safe to call multiple times.
func (p *NeuralPolicy) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		p.session.Destroy()
		p.session = nil
	}
	if p.inputTensor != nil {
		p.inputTensor.Destroy()
		p.inputTensor = nil
	}
	if p.stateTensor != nil {
		p.stateTensor.Destroy()
		p.stateTensor = nil
	}
	if p.srTensor != nil {
		p.srTensor.Destroy()
		p.srTensor = nil
	}
	if p.outputTensor != nil {
		p.outputTensor.Destroy()
		p.outputTensor = nil
	}
	if p.stateNTensor != nil {
		p.stateNTensor.Destroy()
		p.stateNTensor = nil
	}
	return nil
}

func pcmToFloat32(buf []byte) []float32 {
	n := len(buf) / 2
	if n == 0 {
		return nil
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		u := uint16(buf[2*i]) | uint16(buf[2*i+1])<<8
		out[i] = float32(int16(u)) / 32768.0
	}
	return out
}

func clearFloat32(s []float32) {
	for i := range s {
		s[i] = 0
	}
}
