// Package serialize converts an in-memory computation graph into the
// NetIR on-disk representation: an XML topology document and a
// companion raw binary blob holding constant tensor payloads.
//
//	Topology structure:
//	  <net name="..." version="10">
//	    <layers>
//	      <layer id="0" name="..." type="..." version="opsetN">
//	        <data .../>            (omitted when empty)
//	        <input> <port id="0"> <dim>...</dim> </port> </input>
//	        <output> <port id="1" precision="FP32"> ... </port> </output>
//	      </layer>
//	    </layers>
//	    <edges>
//	      <edge from-layer="0" from-port="0" to-layer="1" to-port="0"/>
//	    </edges>
//	  </net>
//
// Layer ids follow the graph's stable topological order. Port ids are
// numbered input-ports-then-output-ports per layer; edge source ports
// are therefore offset past the source layer's input count. Constant
// payloads are appended to the binary blob as raw bytes, referenced by
// offset and size attributes. No header, no padding, no compression.
//
// Graphs with dynamic shapes are concretized once before emission (see
// resolveDynamicShapes) and restored afterwards, so a run never has a
// net effect on its subject graph.
package serialize
