package domain

// Lattice 二叉树的三角形节点存储
// 第 i 层有 i+1 个节点，按下跌次数 j 升序排列，全部节点放在一块连续内存中。
// 定价完成后只读。
type Lattice struct {
	steps int
	nodes []float64
}

func newLattice(steps int) *Lattice {
	return &Lattice{
		steps: steps,
		nodes: make([]float64, nodeCount(steps)),
	}
}

// nodeCount 返回 0..steps 共 steps+1 层的节点总数
func nodeCount(steps int) int {
	return (steps + 1) * (steps + 2) / 2
}

func layerOffset(i int) int {
	return i * (i + 1) / 2
}

// Steps 返回步数 N（层数为 N+1）
func (l *Lattice) Steps() int {
	return l.steps
}

// Len 返回节点总数
func (l *Lattice) Len() int {
	return len(l.nodes)
}

// At 返回节点 (i, j) 的值，越界时 panic
func (l *Lattice) At(i, j int) float64 {
	if i < 0 || i > l.steps || j < 0 || j > i {
		panic("lattice: node index out of range")
	}
	return l.nodes[layerOffset(i)+j]
}

func (l *Lattice) set(i, j int, v float64) {
	l.nodes[layerOffset(i)+j] = v
}

// layer 返回第 i 层的底层切片，仅供包内写入
func (l *Lattice) layer(i int) []float64 {
	off := layerOffset(i)
	return l.nodes[off : off+i+1 : off+i+1]
}

// Layer 返回第 i 层节点的副本
func (l *Lattice) Layer(i int) []float64 {
	if i < 0 || i > l.steps {
		panic("lattice: layer index out of range")
	}
	out := make([]float64, i+1)
	copy(out, l.layer(i))
	return out
}

// Layers 以 层号 -> 节点序列 的形式导出整棵树
func (l *Lattice) Layers() map[int][]float64 {
	out := make(map[int][]float64, l.steps+1)
	for i := 0; i <= l.steps; i++ {
		out[i] = l.Layer(i)
	}
	return out
}
