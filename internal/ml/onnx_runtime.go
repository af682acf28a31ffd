package ml

import (
	"fmt"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"lungrisk/pkg/errors"
)

// ONNXOptions names the graph inputs and outputs of an exported classifier.
type ONNXOptions struct {
	RuntimeLib  string
	InputName   string
	LabelOutput string
	ProbaOutput string
}

var onnxInitMu sync.Mutex

// InitONNXRuntime initializes the ONNX runtime environment once per process.
func InitONNXRuntime(sharedLib string) error {
	onnxInitMu.Lock()
	defer onnxInitMu.Unlock()

	if onnxruntime.IsInitialized() {
		return nil
	}
	if sharedLib != "" {
		onnxruntime.SetSharedLibraryPath(sharedLib)
	}
	if err := onnxruntime.InitializeEnvironment(); err != nil {
		return errors.Wrap(err, "failed to initialize ONNX runtime")
	}
	return nil
}

// ONNXModel wraps an ONNX Runtime session for a binary classifier exported
// with a [1, n] float32 input, an int64 label output and, optionally, a
// [1, 2] float32 probability output (zipmap disabled).
type ONNXModel struct {
	session     *onnxruntime.DynamicAdvancedSession
	inputName   string
	outputNames []string
	hasProba    bool
}

// LoadONNXModel loads an ONNX model from file. A width above zero must match
// the last input dimension unless that dimension is dynamic.
func LoadONNXModel(modelPath string, opts ONNXOptions, width int) (*ONNXModel, error) {
	if err := InitONNXRuntime(opts.RuntimeLib); err != nil {
		return nil, err
	}

	inputs, outputs, err := onnxruntime.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("inspect %s: %w", modelPath, err))
	}
	if err := checkInputWidth(inputs, opts.InputName, width); err != nil {
		return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("%s: %w", modelPath, err))
	}

	hasLabel, hasProba := false, false
	for _, o := range outputs {
		switch o.Name {
		case opts.LabelOutput:
			hasLabel = true
		case opts.ProbaOutput:
			hasProba = o.OrtValueType == onnxruntime.ONNXTypeTensor
		}
	}
	if !hasLabel {
		return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("%s: missing output %q", modelPath, opts.LabelOutput))
	}

	outputNames := []string{opts.LabelOutput}
	if hasProba {
		outputNames = append(outputNames, opts.ProbaOutput)
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{opts.InputName}, outputNames, options)
	if err != nil {
		return nil, errors.Join(errors.ErrModelArtifact, fmt.Errorf("load %s: %w", modelPath, err))
	}

	return &ONNXModel{
		session:     session,
		inputName:   opts.InputName,
		outputNames: outputNames,
		hasProba:    hasProba,
	}, nil
}

func checkInputWidth(inputs []onnxruntime.InputOutputInfo, name string, width int) error {
	for _, in := range inputs {
		if in.Name != name {
			continue
		}
		dims := in.Dimensions
		if width > 0 && len(dims) > 0 && dims[len(dims)-1] > 0 && dims[len(dims)-1] != int64(width) {
			return errors.Newf("input %q takes %d features, want %d", name, dims[len(dims)-1], width)
		}
		return nil
	}
	return errors.Newf("missing input %q", name)
}

// HasProbability reports whether the graph exposes class probabilities.
func (m *ONNXModel) HasProbability() bool {
	return m.hasProba
}

// run executes the graph once and returns the label and, when available, the probabilities.
func (m *ONNXModel) run(features []float64) (int64, [2]float64, error) {
	if m.session == nil {
		return 0, [2]float64{}, errors.New("model session is nil")
	}

	input := make([]float32, len(features))
	for i, v := range features {
		input[i] = float32(v)
	}
	inputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, int64(len(input))), input)
	if err != nil {
		return 0, [2]float64{}, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	labelTensor, err := onnxruntime.NewEmptyTensor[int64](onnxruntime.NewShape(1))
	if err != nil {
		return 0, [2]float64{}, errors.Wrap(err, "failed to create label output tensor")
	}
	defer labelTensor.Destroy()

	outputs := []onnxruntime.Value{labelTensor}

	var probaTensor *onnxruntime.Tensor[float32]
	if m.hasProba {
		probaTensor, err = onnxruntime.NewEmptyTensor[float32](onnxruntime.NewShape(1, 2))
		if err != nil {
			return 0, [2]float64{}, errors.Wrap(err, "failed to create probability output tensor")
		}
		defer probaTensor.Destroy()
		outputs = append(outputs, probaTensor)
	}

	if err := m.session.Run([]onnxruntime.Value{inputTensor}, outputs); err != nil {
		return 0, [2]float64{}, errors.Wrap(err, "inference failed")
	}

	label := labelTensor.GetData()[0]
	proba := DefaultProbabilities
	if probaTensor != nil {
		data := probaTensor.GetData()
		proba = [2]float64{float64(data[0]), float64(data[1])}
	}
	return label, proba, nil
}

func (m *ONNXModel) Predict(features []float64) (int64, error) {
	label, _, err := m.run(features)
	return label, err
}

func (m *ONNXModel) PredictProba(features []float64) ([2]float64, error) {
	_, p, err := m.PredictWithProba(features)
	return p, err
}

// PredictWithProba runs the session once for both outputs.
func (m *ONNXModel) PredictWithProba(features []float64) (int64, [2]float64, error) {
	if !m.hasProba {
		return 0, [2]float64{}, errors.New("model has no probability output")
	}
	return m.run(features)
}

// Destroy cleans up the ONNX session
func (m *ONNXModel) Destroy() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}

// LoadONNXHandle loads an ONNX artifact and tags it by its outputs.
func LoadONNXHandle(name, path string, opts ONNXOptions, width int, scaler *Scaler) (*Handle, error) {
	model, err := LoadONNXModel(path, opts, width)
	if err != nil {
		return nil, err
	}

	var h *Handle
	if model.HasProbability() {
		h = NewProbabilisticHandle(name, model, scaler)
	} else {
		h = NewLabelOnlyHandle(name, model, scaler)
	}
	h.format = "onnx"
	h.closer = model.Destroy
	return h, nil
}
