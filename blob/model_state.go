package blob

// ModelState is the library-neutral form of a whole ensemble: ordered
// tree states plus the metadata the model header records. The model
// codec owns this structure exclusively; serialization hooks produce it
// on encode and consume it on decode, and it never outlives a single
// save or load operation.
type ModelState struct {
	// LeafValueWidth is the number of values per node in the value
	// column, shared by every tree.
	LeafValueWidth int

	// Library tags the producing library and schema generation, e.g.
	// "treepack/1". Recorded on encode, reported back on decode.
	Library string

	// Trees holds the per-tree states in original tree order.
	Trees []*TreeState
}
