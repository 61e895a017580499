package flattree

import (
	"fmt"
	"io"
	"strings"
)

type nodeids[T comparable] struct {
	idTable map[*Node[T]]int
	max     int
}

func newtable[T comparable]() nodeids[T] {
	return nodeids[T]{
		idTable: make(map[*Node[T]]int),
		max:     1,
	}
}

func (ids nodeids[T]) find(node *Node[T]) int {
	return ids.idTable[node]
}

func (ids *nodeids[T]) alloc(node *Node[T]) int {
	if id := ids.find(node); id > 0 {
		return id
	}
	ids.idTable[node] = ids.max
	ids.max++
	return ids.max - 1
}

// ToDot outputs the materialized node tree of a model in Graphviz DOT format
// (for debugging purposes). Visible nodes are filled, and every node is
// labeled with its item, its row and its count of visible descendants.
func ToDot[T comparable](m *Model[T], w io.Writer) error {
	var b strings.Builder
	b.WriteString("strict digraph {\n")
	b.WriteString("\tnode [fontname=Arial,fontsize=12];\n")
	ids := newtable[T]()
	var nodelist, edgelist strings.Builder
	root := ids.alloc(m.sentinel)
	fmt.Fprintf(&nodelist, "\"%d\" %s;\n", root, sentinelNode())
	m.walkMaterialized(m.sentinel, func(n *Node[T]) {
		ID := ids.alloc(n)
		if n != m.sentinel {
			label := fmt.Sprintf("%s\\n+%d", escapeDot(fmt.Sprint(n.item)), n.visibleDesc)
			if pos, ok := n.FlattenedIndex(); ok {
				label = fmt.Sprintf("%s @%d", label, pos)
			}
			fmt.Fprintf(&nodelist, "\"%d\" [label=\"%s\" %s];\n", ID, label, nodeDotStyles(n))
		}
		for _, c := range n.kids.slice() {
			fmt.Fprintf(&edgelist, "\"%d\" -> \"%d\";\n", ID, ids.alloc(c))
		}
	})
	b.WriteString(nodelist.String())
	b.WriteString(edgelist.String())
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	if err != nil {
		tracer().Errorf("flattree DOT: %s", err.Error())
	}
	return err
}

func sentinelNode() string {
	return "[label=\"\",color=black,shape=circle,fixedsize=true,width=.2]"
}

func nodeDotStyles[T comparable](n *Node[T]) string {
	s := ",shape=box"
	if n.expanded {
		s += ",style=\"rounded,filled\""
	} else {
		s += ",style=filled"
	}
	if n.IsVisible() {
		s += ",color=black,fillcolor=\"#a3d7e4\""
	} else {
		s += ",color=gray,fillcolor=white"
	}
	return s
}

func escapeDot(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
