/*
 * TraceStore
 *
 * Copyright 2016 Matthias Ladkau. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package graph

import (
	"fmt"

	"github.com/krotik/tracestore/graph/data"
	"github.com/krotik/tracestore/graph/util"
)

/*
Pipeline describes a multi step traversal which starts from a single node.
Each step transforms the current set of traversers. A traverser remembers
the nodes which were marked on its way so a later step can jump back to them.
A pipeline does nothing until one of its terminal functions (All, First or
Count) is called. All steps are evaluated under a single reader lock.
*/
type Pipeline struct {
	gm    *Manager       // Graph manager to traverse
	part  string         // Partition to traverse
	steps []pipelineStep // Steps of this pipeline
}

/*
traverser is a position in the graph together with its marks.
*/
type traverser struct {
	node  data.Node            // Current node
	marks map[string]data.Node // Marked nodes on the way to the current node
}

/*
pipelineStep is a single step of a pipeline.
*/
type pipelineStep func(in []*traverser) ([]*traverser, error)

/*
NewPipeline creates a new traversal pipeline for a partition of a graph.
*/
func NewPipeline(gm *Manager, part string) *Pipeline {
	return &Pipeline{gm, part, nil}
}

/*
Start sets the start node of the pipeline. The pipeline produces no results
if the node does not exist.
*/
func (p *Pipeline) Start(key string, kind string) *Pipeline {
	p.steps = append(p.steps, func(in []*traverser) ([]*traverser, error) {

		sm, err := p.gm.getNodeStorage(p.part, kind, false)
		if err != nil || sm == nil {
			return nil, err
		}

		node, err := p.gm.readNode(key, kind, sm)
		if err != nil || node == nil {
			return nil, err
		}

		return []*traverser{{node, nil}}, nil
	})

	return p
}

/*
Out follows all edges of a given kind from the current nodes in their
direction (current node is the source).
*/
func (p *Pipeline) Out(edgeKind string) *Pipeline {
	return p.follow(fmt.Sprintf("%s:%s:%s:", data.RoleSource, edgeKind, data.RoleTarget))
}

/*
In follows all edges of a given kind against their direction (current
node is the target).
*/
func (p *Pipeline) In(edgeKind string) *Pipeline {
	return p.follow(fmt.Sprintf("%s:%s:%s:", data.RoleTarget, edgeKind, data.RoleSource))
}

/*
follow adds a step which follows a partial edge spec.
*/
func (p *Pipeline) follow(spec string) *Pipeline {
	p.steps = append(p.steps, func(in []*traverser) ([]*traverser, error) {
		var out []*traverser

		for _, t := range in {
			nodes, _, err := p.gm.traverseMulti(p.part, t.node.Key(), t.node.Kind(), spec, true)
			if err != nil {
				return nil, err
			}

			for _, n := range nodes {
				if n != nil {
					out = append(out, &traverser{n, t.marks})
				}
			}
		}

		return out, nil
	})

	return p
}

/*
Has keeps only nodes which have a given attribute value. Values are compared
by their string representation.
*/
func (p *Pipeline) Has(attr string, value interface{}) *Pipeline {
	expected := fmt.Sprint(value)

	return p.Filter(func(node data.Node) (bool, error) {
		val := node.Attr(attr)
		return val != nil && fmt.Sprint(val) == expected, nil
	})
}

/*
HasKey keeps only the node with a given key.
*/
func (p *Pipeline) HasKey(key string) *Pipeline {
	return p.Filter(func(node data.Node) (bool, error) {
		return node.Key() == key, nil
	})
}

/*
Filter keeps only nodes for which a given function returns true.
*/
func (p *Pipeline) Filter(f func(node data.Node) (bool, error)) *Pipeline {
	p.steps = append(p.steps, func(in []*traverser) ([]*traverser, error) {
		var out []*traverser

		for _, t := range in {
			ok, err := f(t.node)
			if err != nil {
				return nil, err
			} else if ok {
				out = append(out, t)
			}
		}

		return out, nil
	})

	return p
}

/*
FilterPipeline keeps only nodes for which a sub pipeline, started at the node,
produces at least one result. The sub pipeline must not have a Start step.
*/
func (p *Pipeline) FilterPipeline(sub func(sp *Pipeline) *Pipeline) *Pipeline {
	return p.Filter(func(node data.Node) (bool, error) {
		sp := sub(NewPipeline(p.gm, p.part))

		res, err := sp.run([]*traverser{{node, nil}})

		return len(res) > 0, err
	})
}

/*
As marks the current nodes with a given name.
*/
func (p *Pipeline) As(mark string) *Pipeline {
	p.steps = append(p.steps, func(in []*traverser) ([]*traverser, error) {
		out := make([]*traverser, 0, len(in))

		for _, t := range in {
			marks := make(map[string]data.Node, len(t.marks)+1)
			for k, v := range t.marks {
				marks[k] = v
			}
			marks[mark] = t.node

			out = append(out, &traverser{t.node, marks})
		}

		return out, nil
	})

	return p
}

/*
Back jumps back to the nodes which were marked with a given name.
*/
func (p *Pipeline) Back(mark string) *Pipeline {
	p.steps = append(p.steps, func(in []*traverser) ([]*traverser, error) {
		out := make([]*traverser, 0, len(in))

		for _, t := range in {
			node, ok := t.marks[mark]
			if !ok {
				return nil, &util.GraphError{
					Type:   util.ErrInvalidData,
					Detail: "Unknown pipeline mark: " + mark,
				}
			}

			out = append(out, &traverser{node, t.marks})
		}

		return out, nil
	})

	return p
}

/*
Dedup removes traversers which point to a node which was already seen.
*/
func (p *Pipeline) Dedup() *Pipeline {
	p.steps = append(p.steps, func(in []*traverser) ([]*traverser, error) {
		var out []*traverser

		seen := make(map[string]bool)

		for _, t := range in {
			id := t.node.Kind() + "#" + t.node.Key()

			if !seen[id] {
				seen[id] = true
				out = append(out, t)
			}
		}

		return out, nil
	})

	return p
}

/*
All evaluates the pipeline and returns all resulting nodes.
*/
func (p *Pipeline) All() ([]data.Node, error) {

	// Take reader lock

	p.gm.mutex.RLock()
	defer p.gm.mutex.RUnlock()

	res, err := p.run(nil)
	if err != nil {
		return nil, err
	}

	nodes := make([]data.Node, 0, len(res))
	for _, t := range res {
		nodes = append(nodes, t.node)
	}

	return nodes, nil
}

/*
First evaluates the pipeline and returns the first resulting node or nil
if there are no results.
*/
func (p *Pipeline) First() (data.Node, error) {
	nodes, err := p.All()
	if err != nil || len(nodes) == 0 {
		return nil, err
	}

	return nodes[0], nil
}

/*
Count evaluates the pipeline and returns the number of results.
*/
func (p *Pipeline) Count() (int, error) {
	nodes, err := p.All()
	return len(nodes), err
}

/*
run executes all pipeline steps. The caller must hold the reader lock.
*/
func (p *Pipeline) run(start []*traverser) ([]*traverser, error) {
	var err error

	cur := start

	for _, step := range p.steps {
		if cur, err = step(cur); err != nil {
			return nil, err
		}
	}

	return cur, nil
}
