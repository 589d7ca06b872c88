package bvh

import (
	"math"
	"slices"
	"sort"

	"github.com/gekko3d/raycast"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxLeafSize is the largest number of volumes kept in one leaf.
const MaxLeafSize = 4

type Node struct {
	Min       mgl32.Vec3
	Max       mgl32.Vec3
	Left      int32
	Right     int32
	LeafFirst int32
	LeafCount int32
}

func (n *Node) IsLeaf() bool {
	return n.Left == -1 && n.Right == -1
}

type item struct {
	Min      mgl32.Vec3
	Max      mgl32.Vec3
	Centroid mgl32.Vec3
	Index    int
}

// Tree is a bounding volume hierarchy over a fixed set of volumes. It is a
// BoundingVolumeProvider on its own (yielding every volume) and narrows the
// candidate set per ray through ForRay.
type Tree struct {
	volumes []raycast.BoundingVolume
	items   []item
	nodes   []Node
	// Volumes without bounds are candidates for every ray.
	unbounded []int
}

func Build(volumes []raycast.BoundingVolume) *Tree {
	t := &Tree{volumes: volumes}

	for i, v := range volumes {
		var b *raycast.AABB
		if bv, ok := v.(raycast.BoundedVolume); ok {
			b = bv.Bounds()
		}
		if b == nil {
			t.unbounded = append(t.unbounded, i)
			continue
		}
		t.items = append(t.items, item{
			Min:      b.Min,
			Max:      b.Max,
			Centroid: b.Center(),
			Index:    i,
		})
	}

	if len(t.items) > 0 {
		t.recursiveBuild(0, len(t.items))
	}
	return t
}

func (t *Tree) recursiveBuild(first, last int) int32 {
	idx := int32(len(t.nodes))
	t.nodes = append(t.nodes, Node{Left: -1, Right: -1, LeafFirst: -1, LeafCount: 0})

	items := t.items[first:last]

	minB := mgl32.Vec3{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))}
	maxB := mgl32.Vec3{float32(math.Inf(-1)), float32(math.Inf(-1)), float32(math.Inf(-1))}
	cMin, cMax := minB, maxB
	for _, it := range items {
		for a := 0; a < 3; a++ {
			minB[a] = min(minB[a], it.Min[a])
			maxB[a] = max(maxB[a], it.Max[a])
			cMin[a] = min(cMin[a], it.Centroid[a])
			cMax[a] = max(cMax[a], it.Centroid[a])
		}
	}

	t.nodes[idx].Min = minB
	t.nodes[idx].Max = maxB

	if len(items) <= MaxLeafSize {
		t.nodes[idx].LeafFirst = int32(first)
		t.nodes[idx].LeafCount = int32(len(items))
		return idx
	}

	// Split on the axis where centroids spread the most.
	extent := cMax.Sub(cMin)
	axis := 0
	if extent.Y() > extent.X() {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Centroid[axis] < items[j].Centroid[axis]
	})

	mid := first + len(items)/2
	left := t.recursiveBuild(first, mid)
	right := t.recursiveBuild(mid, last)
	t.nodes[idx].Left = left
	t.nodes[idx].Right = right

	return idx
}

func (t *Tree) Nodes() []Node {
	return t.nodes
}

func (t *Tree) BoundingVolumes() []raycast.BoundingVolume {
	return t.volumes
}

// ForRay returns the volumes whose leaf boxes the ray crosses, plus any
// unbounded volumes, in their original order.
func (t *Tree) ForRay(ray raycast.Ray) raycast.VolumeList {
	indices := slices.Clone(t.unbounded)

	if len(t.nodes) > 0 {
		stack := []int32{0}
		for len(stack) > 0 {
			n := &t.nodes[stack[len(stack)-1]]
			stack = stack[:len(stack)-1]

			box := raycast.AABB{Min: n.Min, Max: n.Max}
			if _, ok := box.IntersectDistance(ray); !ok {
				continue
			}
			if n.IsLeaf() {
				for _, it := range t.items[n.LeafFirst : n.LeafFirst+n.LeafCount] {
					indices = append(indices, it.Index)
				}
				continue
			}
			stack = append(stack, n.Left, n.Right)
		}
	}

	slices.Sort(indices)
	out := make(raycast.VolumeList, len(indices))
	for i, idx := range indices {
		out[i] = t.volumes[idx]
	}
	return out
}

// RayProvider binds a tree to one ray so it can be handed to the service.
type RayProvider struct {
	Tree *Tree
	Ray  raycast.Ray
}

func (p RayProvider) BoundingVolumes() []raycast.BoundingVolume {
	if p.Tree == nil {
		return nil
	}
	return p.Tree.ForRay(p.Ray)
}
