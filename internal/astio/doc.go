// Package astio reads and writes syntax forests.
//
// The parser lives outside this repository; it hands over each source file
// as a YAML document holding the units it parsed and, optionally, the source
// text the spans point into. A set of documents can be packed into a
// msgpack cache file (.kfo) that loads without re-parsing YAML.
package astio
