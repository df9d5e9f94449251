// Package graph implements the in-memory computation graph model used by
// the NetIR serializer.
//
// A Graph is an ordered, acyclic collection of Nodes connected by typed
// data-flow edges. Nodes carry input and output ports (element type plus
// a partial shape), an insertion-ordered attribute bag, and a runtime
// metadata side channel. Shapes may be partially or fully dynamic; the
// serializer concretizes them before emission.
//
// The package also provides the pieces the serializer needs from its
// graph collaborator:
//
//   - a stable deterministic topological ordering (OrderedNodes)
//   - deep cloning, including nested control-flow sub-graphs (Clone)
//   - shape/type re-inference (ValidateAndInferTypes)
//   - per-node constant folding (Node.ConstantFold)
//   - generic attribute presentation (Node.VisitAttributes)
package graph
