package main

import (
	"fmt"

	"github.com/wippyai/icewire/decoder"
)

// treeNode is a display node in the slice tree: one per class/exception
// slice, or one leaf for a value this dumper couldn't further decompose
// (nil, or a type resolved by an application-registered factory that
// doesn't expose its own slice history).
type treeNode struct {
	label    string
	bytes    []byte
	children []*treeNode
}

// buildTree turns a decoded top-level value into a display tree. Without
// any registered factories, v is almost always an *decoder.UnknownSlicedClass;
// each of its slices becomes a node, and any instances the slice's
// indirection table resolved become that node's children. A
// decoder.UserException value gets a single leaf node.
func buildTree(v any) *treeNode {
	if v == nil {
		return &treeNode{label: "<nil>"}
	}

	switch val := v.(type) {
	case *decoder.UnknownSlicedClass:
		root := &treeNode{label: fmt.Sprintf("class %s", val.TypeID)}
		appendSlices(root, val.SlicedData)
		return root
	case decoder.UserException:
		return &treeNode{label: fmt.Sprintf("exception %s: %s", fmt.Sprintf("%T", val), val.Error())}
	default:
		return &treeNode{label: fmt.Sprintf("%T", v)}
	}
}

func appendSlices(root *treeNode, sd *decoder.SlicedData) {
	if sd == nil {
		return
	}
	for _, slice := range sd.Slices {
		child := &treeNode{
			label: fmt.Sprintf("%s (%d bytes)", slice.TypeID, len(slice.Bytes)),
			bytes: slice.Bytes,
		}
		for _, inst := range slice.Instances {
			child.children = append(child.children, buildTree(inst))
		}
		root.children = append(root.children, child)
	}
}
