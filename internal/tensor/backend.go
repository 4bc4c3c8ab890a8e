package tensor

// Backend is the fixed kernel contract every compute backend must implement.
// Any alternate device/dtype backend that matches this set with identical
// observable behavior is substitutable behind the differentiable facade.
//
// Kernel failures (shape mismatch, invalid parameter, unsupported dtype) are
// fatal to the call: implementations panic with a description naming the
// offending shapes. Every kernel returns a freshly allocated RawTensor and
// never mutates its operands.
type Backend interface {
	// Element-wise binary operations over equal-shape operands.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor
	Pow(a, b *RawTensor) *RawTensor

	// Broadcast-scalar (T0) variants.
	AddScalar(a *RawTensor, s float64) *RawTensor
	SubScalar(a *RawTensor, s float64) *RawTensor
	MulScalar(a *RawTensor, s float64) *RawTensor
	DivScalar(a *RawTensor, s float64) *RawTensor
	PowScalar(a *RawTensor, s float64) *RawTensor

	// Element-wise unary operations.
	Neg(a *RawTensor) *RawTensor
	Abs(a *RawTensor) *RawTensor
	Sign(a *RawTensor) *RawTensor
	Exp(a *RawTensor) *RawTensor
	Log(a *RawTensor) *RawTensor
	Sqrt(a *RawTensor) *RawTensor
	Sin(a *RawTensor) *RawTensor
	Cos(a *RawTensor) *RawTensor
	Tanh(a *RawTensor) *RawTensor

	// Comparisons over equal-shape operands, producing Bool tensors.
	Eq(a, b *RawTensor) *RawTensor
	Ne(a, b *RawTensor) *RawTensor
	Gt(a, b *RawTensor) *RawTensor
	Lt(a, b *RawTensor) *RawTensor
	Ge(a, b *RawTensor) *RawTensor
	Le(a, b *RawTensor) *RawTensor

	// Reductions.
	Sum(a *RawTensor) *RawTensor  // scalar result, shape []
	Mean(a *RawTensor) *RawTensor // scalar result, shape []
	ArgMax(a *RawTensor) []int    // multi-index of the maximum element
	ArgMin(a *RawTensor) []int    // multi-index of the minimum element

	// Linear algebra.
	MatMul(a, b *RawTensor) *RawTensor // 2-D only

	// Structural operations.
	Transpose(a *RawTensor) *RawTensor // 2-D only
	Reshape(a *RawTensor, shape Shape) *RawTensor
	Squeeze(a *RawTensor, axis int) *RawTensor
	Unsqueeze(a *RawTensor, axis int) *RawTensor
	Flip(a *RawTensor, axes []int) *RawTensor
	Dilate(a *RawTensor, dilations []int) *RawTensor
	Undilate(a *RawTensor, dilations []int) *RawTensor
	Stack(ts []*RawTensor) *RawTensor
	Unstack(a *RawTensor) []*RawTensor
	Slice(a *RawTensor, bounds [][2]int) *RawTensor
	SliceScatter(grad *RawTensor, bounds [][2]int, shape Shape) *RawTensor
	Cast(a *RawTensor, dtype DataType) *RawTensor

	// Convolution (cross-correlation, kernel not flipped).
	Conv1D(input, kernel *RawTensor, stride, padding int) *RawTensor
	Conv1DInputBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	Conv1DKernelBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor

	// Pooling. The 2-D kernels are the only primitive; 1-D and 3-D pooling
	// route through them with singleton spatial axes.
	AvgPool2D(a *RawTensor, kernel, stride, padding [2]int, ceilMode, includePad bool) *RawTensor
	AvgPool2DBackward(grad *RawTensor, inputShape Shape, kernel, stride, padding [2]int, ceilMode, includePad bool) *RawTensor
	MaxPool2D(a *RawTensor, kernel, stride, padding [2]int) *RawTensor
	MaxPool2DBackward(a, grad *RawTensor, kernel, stride, padding [2]int) *RawTensor
	MaxPool2DTangent(a, tangent *RawTensor, kernel, stride, padding [2]int) *RawTensor

	// Random generation, consuming the backend-owned random source.
	RandomUniform(shape Shape, dtype DataType, low, high float64) *RawTensor
	RandomNormal(shape Shape, dtype DataType, mean, stddev float64) *RawTensor
	Multinomial(probs *RawTensor, numSamples int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
