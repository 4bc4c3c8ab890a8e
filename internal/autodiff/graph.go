package autodiff

import (
	"github.com/gomlx/exceptions"

	"github.com/fwaris/DiffSharp/internal/tensor"
)

// node is one arena entry: the operation that produced a value, the arena
// indices of its operands, and the value itself. Leaves have a nil op.
type node struct {
	op       *Op
	operands []int
	primal   *tensor.RawTensor
}

// Graph is the reverse-mode tape: an append-only arena of nodes in
// execution order. Because every operand of a node is recorded before the
// node itself, a single backward scan from any result index visits nodes in
// reverse topological order, so each node's adjoint is complete before it
// is propagated to its operands.
//
// A Graph is not safe for concurrent use.
type Graph struct {
	backend  tensor.Backend
	nodes    []node
	adjoints []*tensor.RawTensor
}

// NewGraph creates an empty tape bound to a backend.
func NewGraph(bk tensor.Backend) *Graph {
	return &Graph{backend: bk}
}

// Backend returns the kernel backend the tape records against.
func (g *Graph) Backend() tensor.Backend {
	return g.backend
}

// Len returns the number of recorded nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// leaf appends an input node with no producing operation.
func (g *Graph) leaf(primal *tensor.RawTensor) int {
	g.nodes = append(g.nodes, node{primal: primal})
	return len(g.nodes) - 1
}

// record appends an operation node.
func (g *Graph) record(op *Op, operands []int, primal *tensor.RawTensor) int {
	g.nodes = append(g.nodes, node{op: op, operands: operands, primal: primal})
	return len(g.nodes) - 1
}

// primals gathers the operand primals of a node.
func (g *Graph) primals(ids []int) []*tensor.RawTensor {
	in := make([]*tensor.RawTensor, len(ids))
	for i, id := range ids {
		in[i] = g.nodes[id].primal
	}
	return in
}

// Backward seeds the adjoint of the node at result and propagates adjoints
// back through the tape. A nil seed means a ones tensor of the result's
// shape. Earlier adjoints are discarded; each call accumulates from scratch,
// so a value reached along several paths receives the sum of the per-path
// contributions.
func (g *Graph) Backward(result int, seed *tensor.RawTensor) {
	if result < 0 || result >= len(g.nodes) {
		exceptions.Panicf("autodiff: backward from node %d, but tape has %d nodes", result, len(g.nodes))
	}
	out := g.nodes[result].primal
	if seed == nil {
		seed = tensor.Ones(out.Shape(), out.DType(), out.Device())
	}
	if !seed.Shape().Equal(out.Shape()) {
		exceptions.Panicf("autodiff: seed shape %v does not match result shape %v", seed.Shape(), out.Shape())
	}

	g.adjoints = make([]*tensor.RawTensor, len(g.nodes))
	g.adjoints[result] = seed
	for i := result; i >= 0; i-- {
		n := &g.nodes[i]
		adj := g.adjoints[i]
		if adj == nil || n.op == nil {
			continue
		}
		grads := rules(n.op.Kind).reverse(n.op, g.backend, n.primal, g.primals(n.operands), adj)
		for j, id := range n.operands {
			g.accumulate(id, grads[j])
		}
	}
}

func (g *Graph) accumulate(id int, grad *tensor.RawTensor) {
	if g.adjoints[id] == nil {
		g.adjoints[id] = grad
		return
	}
	g.adjoints[id] = g.backend.Add(g.adjoints[id], grad)
}

// Adjoint returns the adjoint accumulated for a node by the last Backward
// call, or a zero tensor if no gradient reached it.
func (g *Graph) Adjoint(id int) *tensor.RawTensor {
	if id < 0 || id >= len(g.nodes) {
		exceptions.Panicf("autodiff: adjoint of node %d, but tape has %d nodes", id, len(g.nodes))
	}
	if g.adjoints == nil || g.adjoints[id] == nil {
		p := g.nodes[id].primal
		return tensor.Zeros(p.Shape(), p.DType(), p.Device())
	}
	return g.adjoints[id]
}
